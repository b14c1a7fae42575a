package vtest

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/reconcile/pkg/async"
	"github.com/vango-dev/reconcile/pkg/dom"
	"github.com/vango-dev/reconcile/pkg/dom/htmldom"
	"github.com/vango-dev/reconcile/pkg/render"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// Timeout bounds every wait of a Harness.
var Timeout = 5 * time.Second

// Harness is a container rendering into the body of a fresh document.
type Harness struct {
	tb       testing.TB
	Doc      *htmldom.Document
	C        *render.Container
	Registry *render.Registry
}

// New creates a harness whose container logs nowhere and resolves
// components from h.Registry. The container is closed when the test ends.
//
// Example:
//
//	h := vtest.New(t)
//	card := h.Registry.Register("card", Card)
//	h.Render(Div(Component(card)))
//	h.ExpectContains("<h2>")
func New(tb testing.TB, opts ...render.Option) *Harness {
	tb.Helper()
	h := &Harness{
		tb:       tb,
		Doc:      htmldom.NewDocument(),
		Registry: render.NewRegistry(),
	}
	opts = append([]render.Option{
		render.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		render.WithLoader(h.Registry),
	}, opts...)
	c, err := render.New(h.Doc.Body(), opts...)
	if err != nil {
		tb.Fatalf("render.New() error = %v", err)
	}
	h.C = c
	tb.Cleanup(func() { _ = c.Close(context.Background()) })
	return h
}

func (h *Harness) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), Timeout)
}

// Render renders tree into the body and waits for the commit.
func (h *Harness) Render(tree *vdom.Node) *render.RenderContext {
	h.tb.Helper()
	return h.Await(h.C.Render(context.Background(), tree))
}

// Await waits for p, failing the test on error.
func (h *Harness) Await(p *async.Promise[*render.RenderContext]) *render.RenderContext {
	h.tb.Helper()
	ctx, cancel := h.context()
	defer cancel()
	rc, err := p.Await(ctx)
	if err != nil {
		h.tb.Fatalf("render error = %v", err)
	}
	return rc
}

// Notify marks hosts dirty in one loop task and waits for their batch.
func (h *Harness) Notify(hosts ...dom.Element) *render.RenderContext {
	h.tb.Helper()
	var p *async.Promise[*render.RenderContext]
	h.Do(func() {
		for _, host := range hosts {
			var err error
			if p, err = h.C.NotifyRender(host); err != nil {
				h.tb.Errorf("NotifyRender() error = %v", err)
			}
		}
	})
	if p == nil {
		h.tb.FailNow()
	}
	return h.Await(p)
}

// Do runs fn on the container loop.
func (h *Harness) Do(fn func()) {
	h.tb.Helper()
	ctx, cancel := h.context()
	defer cancel()
	if err := h.C.Do(ctx, fn); err != nil {
		h.tb.Fatalf("Do() error = %v", err)
	}
}

// HTML returns the serialized body content.
func (h *Harness) HTML() string {
	h.tb.Helper()
	var markup string
	h.Do(func() { markup = htmldom.InnerHTML(h.Doc.Body()) })
	return markup
}

// Find returns the first element with tag under the body, in document
// order, or nil.
func (h *Harness) Find(tag string) dom.Element {
	var found dom.Element
	h.Do(func() { found = Find(h.Doc.Body(), tag) })
	return found
}

// Find returns the first element with tag under n, in document order.
func Find(n dom.Node, tag string) dom.Element {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		el, ok := dom.AsElement(c)
		if !ok {
			continue
		}
		if el.LocalName() == tag {
			return el
		}
		if found := Find(el, tag); found != nil {
			return found
		}
	}
	return nil
}

// ExpectHTML asserts the body content, with engine markers removed,
// equals want.
func (h *Harness) ExpectHTML(want string) {
	h.tb.Helper()
	if got := StripMarkers(h.HTML()); got != want {
		h.tb.Errorf("HTML() = %s, want %s", got, want)
	}
}

// ExpectContains asserts that the body content contains expected.
//
// Example:
//
//	h.ExpectContains(`<li>milk</li>`)
func (h *Harness) ExpectContains(expected string) {
	h.tb.Helper()
	markup := StripMarkers(h.HTML())
	if !strings.Contains(markup, expected) {
		h.tb.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(markup, 500))
	}
}

// ExpectNotContains asserts that the body content does not contain
// unexpected.
func (h *Harness) ExpectNotContains(unexpected string) {
	h.tb.Helper()
	markup := StripMarkers(h.HTML())
	if strings.Contains(markup, unexpected) {
		h.tb.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(markup, 500))
	}
}

// ExpectAttribute asserts that the first tag element has attr=value.
func (h *Harness) ExpectAttribute(tag, attr, value string) {
	h.tb.Helper()
	var (
		got   string
		found bool
	)
	h.Do(func() {
		if el := Find(h.Doc.Body(), tag); el != nil {
			got, found = el.GetAttribute(attr)
		}
	})
	if !found || got != value {
		h.tb.Errorf("<%s> %s = %q (present %v), want %q", tag, attr, got, found, value)
	}
}

// RenderToString renders tree into a fresh document body and returns
// the serialized body content, markers included.
func RenderToString(tree *vdom.Node, opts ...render.Option) (string, error) {
	doc := htmldom.NewDocument()
	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()
	opts = append([]render.Option{
		render.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	c, err := render.New(doc.Body(), opts...)
	if err != nil {
		return "", err
	}
	defer c.Close(ctx)
	if _, err := c.Render(ctx, tree).Await(ctx); err != nil {
		return "", err
	}
	var markup string
	err = c.Do(ctx, func() { markup = htmldom.InnerHTML(doc.Body()) })
	return markup, err
}

var (
	markerAttr  = regexp.MustCompile(` q:[a-z]+(="[^"]*")?`)
	markerClass = regexp.MustCompile(`\s*(💎|⭐️)[^\s"]*`)
	emptyClass  = regexp.MustCompile(` class=""`)
)

// StripMarkers removes the q: attributes and style id classes the
// engine writes, leaving the markup a test author wrote.
func StripMarkers(markup string) string {
	markup = markerAttr.ReplaceAllString(markup, "")
	markup = markerClass.ReplaceAllString(markup, "")
	return emptyClass.ReplaceAllString(markup, "")
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
