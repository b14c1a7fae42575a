package render_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/async"
	"github.com/vango-dev/reconcile/pkg/dom"
	"github.com/vango-dev/reconcile/pkg/dom/htmldom"
	"github.com/vango-dev/reconcile/pkg/render"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestContainer(t *testing.T, opts ...render.Option) (*htmldom.Document, *render.Container) {
	t.Helper()
	doc := htmldom.NewDocument()
	opts = append([]render.Option{render.WithLogger(quietLogger())}, opts...)
	c, err := render.New(doc.Body(), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return doc, c
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func mustRender(t *testing.T, c *render.Container, tree *vdom.Node) *render.RenderContext {
	t.Helper()
	return mustAwait(t, c.Render(testContext(t), tree))
}

func mustAwait(t *testing.T, p *async.Promise[*render.RenderContext]) *render.RenderContext {
	t.Helper()
	rc, err := p.Await(testContext(t))
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	return rc
}

func mustNotify(t *testing.T, c *render.Container, hosts ...dom.Element) *render.RenderContext {
	t.Helper()
	var p *async.Promise[*render.RenderContext]
	err := c.Do(testContext(t), func() {
		for _, h := range hosts {
			var err error
			if p, err = c.NotifyRender(h); err != nil {
				t.Errorf("NotifyRender() error = %v", err)
			}
		}
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if p == nil {
		t.FailNow()
	}
	return mustAwait(t, p)
}

// element returns the element child of parent at index i, counting
// element children only.
func element(t *testing.T, parent dom.Node, i int) dom.Element {
	t.Helper()
	n := 0
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		if el, ok := dom.AsElement(c); ok {
			if n == i {
				return el
			}
			n++
		}
	}
	t.Fatalf("%s has no element child %d", parent.NodeName(), i)
	return nil
}

func firstByTag(n dom.Node, tag string) dom.Element {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		el, ok := dom.AsElement(c)
		if !ok {
			continue
		}
		if el.LocalName() == tag {
			return el
		}
		if found := firstByTag(el, tag); found != nil {
			return found
		}
	}
	return nil
}

// codes returns the error codes of errs, in order.
func codes(errs []error) []string {
	var out []string
	for _, err := range errs {
		if e := errors.FromError(err, ""); e != nil {
			out = append(out, e.Code)
		}
	}
	return out
}

func keyOf(n dom.Node) string {
	el, ok := dom.AsElement(n)
	if !ok {
		return ""
	}
	k, _ := el.GetAttribute("q:key")
	return k
}
