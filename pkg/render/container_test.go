package render_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	rerrors "github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/dom/htmldom"
	"github.com/vango-dev/reconcile/pkg/metrics"
	"github.com/vango-dev/reconcile/pkg/render"
	. "github.com/vango-dev/reconcile/pkg/vdom"
)

func TestNewRejectsBadRoot(t *testing.T) {
	doc := htmldom.NewDocument()
	text := doc.CreateTextNode("x")
	if _, err := render.New(text); !rerrors.Is(err, "R002") {
		t.Errorf("New(text) error = %v, want R002", err)
	}
	if _, err := render.New(nil); !rerrors.Is(err, "R002") {
		t.Errorf("New(nil) error = %v, want R002", err)
	}

	c, err := render.New(doc.Body(), render.WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close(context.Background())
	if _, err := render.New(doc.Body()); !rerrors.Is(err, "R002") {
		t.Errorf("second New() error = %v, want R002", err)
	}
	if render.ContainerOf(doc.Body()) != c {
		t.Error("ContainerOf(root) should return the container")
	}
}

func TestNotifyRenderRequiresHost(t *testing.T) {
	doc, c := newTestContainer(t)
	mustRender(t, c, Div())
	if _, err := c.NotifyRender(element(t, doc.Body(), 0)); !rerrors.Is(err, "R003") {
		t.Errorf("NotifyRender(div) error = %v, want R003", err)
	}
}

func TestClosedContainer(t *testing.T) {
	doc, c := newTestContainer(t)
	if err := c.Close(testContext(t)); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(testContext(t)); !rerrors.Is(err, "R006") {
		t.Errorf("second Close() error = %v, want R006", err)
	}
	if _, err := c.Render(testContext(t), Div()).Await(testContext(t)); !rerrors.Is(err, "R006") {
		t.Errorf("Render() after Close error = %v, want R006", err)
	}
	if err := c.Do(testContext(t), func() {}); !rerrors.Is(err, "R006") {
		t.Errorf("Do() after Close error = %v, want R006", err)
	}
	if _, err := c.NotifyRender(doc.Body()); !rerrors.Is(err, "R006") {
		t.Errorf("NotifyRender() after Close error = %v, want R006", err)
	}
	if render.ContainerOf(doc.Body()) != nil {
		t.Error("closed container still owns its root")
	}
}

func TestPackageRender(t *testing.T) {
	doc := htmldom.NewDocument()
	ctx := testContext(t)
	rc, err := render.Render(ctx, doc.Body(), P("one"), render.WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	c := render.ContainerOf(doc.Body())
	if c == nil {
		t.Fatal("Render did not attach a container")
	}
	defer c.Close(context.Background())
	if rc.Kind() != "render" || rc.ID() == "" {
		t.Errorf("Kind() = %q, ID() = %q", rc.Kind(), rc.ID())
	}

	p := element(t, doc.Body(), 0)
	rc, err = render.Render(ctx, doc.Body(), P("two"))
	if err != nil {
		t.Fatal(err)
	}
	if element(t, doc.Body(), 0) != p {
		t.Error("second Render did not reuse the container's nodes")
	}
	if got := p.TextContent(); got != "two" {
		t.Errorf("TextContent() = %q, want two", got)
	}
}

func TestCommitHooksAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(metrics.WithRegistry(reg))
	var kinds []string
	_, c := newTestContainer(t,
		render.WithMetrics(m),
		render.WithCommitHook(func(rc *render.RenderContext) { kinds = append(kinds, rc.Kind()) }),
	)
	mustRender(t, c, Div(P("a")))
	mustRender(t, c, Div(P("b")))
	if len(kinds) != 2 || kinds[0] != "render" {
		t.Errorf("hooks saw %v", kinds)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "reconcile_passes_total" {
			found = true
			if got := f.GetMetric()[0].GetCounter().GetValue(); got != 2 {
				t.Errorf("passes_total = %v, want 2", got)
			}
		}
	}
	if !found {
		t.Error("reconcile_passes_total not registered")
	}
}
