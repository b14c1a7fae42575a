package render_test

import (
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	rerrors "github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/render"
	. "github.com/vango-dev/reconcile/pkg/vdom"
)

func TestComponentRender(t *testing.T) {
	reg := render.NewRegistry()
	greeting := reg.Register("greeting", func(s *render.Scope, props Props) (*Node, error) {
		return P("hello ", props["name"].(string)), nil
	})
	doc, c := newTestContainer(t, render.WithLoader(reg))
	rc := mustRender(t, c, Div(Component(greeting, Attr{Key: "name", Value: "ada"})))

	host := element(t, element(t, doc.Body(), 0), 0)
	if !host.HasAttribute("q:host") {
		t.Error("host is missing q:host")
	}
	if id, _ := host.GetAttribute("q:id"); id == "" {
		t.Error("host is missing q:id")
	}
	if got := host.TextContent(); got != "hello ada" {
		t.Errorf("TextContent() = %q, want %q", got, "hello ada")
	}
	if r := rc.Rendered(); len(r) != 1 || r[0] != host {
		t.Errorf("Rendered() = %v, want the host", r)
	}
}

func TestComponentRendersOnlyOnPropChange(t *testing.T) {
	reg := render.NewRegistry()
	var renders atomic.Int32
	label := reg.Register("label", func(s *render.Scope, props Props) (*Node, error) {
		renders.Add(1)
		return Span(props["text"].(string)), nil
	})
	_, c := newTestContainer(t, render.WithLoader(reg))
	tree := func(text string) *Node {
		return Div(Component(label, Attr{Key: "text", Value: text}))
	}

	mustRender(t, c, tree("a"))
	rc := mustRender(t, c, tree("a"))
	if n := len(rc.Operations()); n != 0 {
		t.Errorf("unchanged props queued %v", rc.Operations())
	}
	mustRender(t, c, tree("b"))
	if got := renders.Load(); got != 2 {
		t.Errorf("renders = %d, want 2", got)
	}
}

func TestHostProps(t *testing.T) {
	reg := render.NewRegistry()
	ref := reg.Register("card", func(s *render.Scope, props Props) (*Node, error) {
		return Host(Class("card"), Attr{Key: "role", Value: "region"}, P("body")), nil
	})
	ref.StyleID = "c1"
	doc, c := newTestContainer(t, render.WithLoader(reg))
	mustRender(t, c, Component(ref, HostAttr("class", "wide"), HostAttr("id", "main")))

	host := element(t, doc.Body(), 0)
	class, _ := host.GetAttribute("class")
	if diff := cmp.Diff([]string{"wide", "card", "💎c1"}, strings.Fields(class)); diff != "" {
		t.Errorf("class mismatch (-want +got):\n%s", diff)
	}
	if got, _ := host.GetAttribute("role"); got != "region" {
		t.Errorf("role = %q, want region", got)
	}
	if got, _ := host.GetAttribute("id"); got != "main" {
		t.Errorf("id = %q, want main", got)
	}
	p := element(t, host, 0)
	if got, _ := p.GetAttribute("class"); got != "⭐️c1" {
		t.Errorf("content class = %q, want ⭐️c1", got)
	}
}

func TestUnknownComponent(t *testing.T) {
	_, c := newTestContainer(t)
	rc := mustRender(t, c, Component(&ComponentRef{Name: "missing"}))
	if diff := cmp.Diff([]string{"R004"}, codes(rc.Errors())); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderErrorIsolation(t *testing.T) {
	reg := render.NewRegistry()
	fail := false
	broken := reg.Register("broken", func(s *render.Scope, props Props) (*Node, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return Span("ok"), nil
	})
	panicky := reg.Register("panicky", func(s *render.Scope, props Props) (*Node, error) {
		panic("bad render")
	})
	fine := reg.Register("fine", func(s *render.Scope, props Props) (*Node, error) {
		return Span(props["n"].(string)), nil
	})
	doc, c := newTestContainer(t, render.WithLoader(reg))

	tree := func(n string) *Node {
		return Div(
			Component(broken, Attr{Key: "n", Value: n}),
			Component(panicky),
			Component(fine, Attr{Key: "n", Value: n}),
		)
	}
	rc := mustRender(t, c, tree("1"))
	if diff := cmp.Diff([]string{"R020"}, codes(rc.Errors())); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
	e := rerrors.FromError(rc.Errors()[0], "")
	if got := e.Field("component"); got != "panicky" {
		t.Errorf("component field = %v, want panicky", got)
	}

	fail = true
	rc = mustRender(t, c, tree("2"))
	if diff := cmp.Diff([]string{"R020"}, codes(rc.Errors())); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
	div := element(t, doc.Body(), 0)
	if got := element(t, div, 0).TextContent(); got != "ok" {
		t.Errorf("broken host = %q, want its previous content", got)
	}
	if got := element(t, div, 2).TextContent(); got != "2" {
		t.Errorf("fine host = %q, want 2", got)
	}
}

func TestLazyComponent(t *testing.T) {
	reg := render.NewRegistry()
	var loads atomic.Int32
	lazy := reg.RegisterLazy("lazy", func() (render.RenderFn, error) {
		loads.Add(1)
		return func(s *render.Scope, props Props) (*Node, error) {
			return Em("loaded"), nil
		}, nil
	})
	doc, c := newTestContainer(t, render.WithLoader(reg))
	mustRender(t, c, Div(Component(lazy), Component(lazy)))

	div := element(t, doc.Body(), 0)
	for i := 0; i < 2; i++ {
		if got := element(t, div, i).TextContent(); got != "loaded" {
			t.Errorf("host %d = %q, want loaded", i, got)
		}
	}
	if got := loads.Load(); got != 1 {
		t.Errorf("loads = %d, want 1", got)
	}
}

func TestLazyComponentFailure(t *testing.T) {
	reg := render.NewRegistry()
	lazy := reg.RegisterLazy("lazy", func() (render.RenderFn, error) {
		return nil, errors.New("network down")
	})
	_, c := newTestContainer(t, render.WithLoader(reg))
	rc := mustRender(t, c, Div(Component(lazy), P("sibling")))
	if diff := cmp.Diff([]string{"R021"}, codes(rc.Errors())); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestScopeState(t *testing.T) {
	reg := render.NewRegistry()
	var hostID string
	counter := reg.Register("counter", func(s *render.Scope, props Props) (*Node, error) {
		n, _ := s.State()["n"].(int)
		n++
		s.State()["n"] = n
		hostID = s.ID()
		return Textf("%d", n), nil
	})
	doc, c := newTestContainer(t, render.WithLoader(reg))
	mustRender(t, c, Component(counter))
	host := element(t, doc.Body(), 0)

	mustNotify(t, c, host)
	mustNotify(t, c, host)
	if got := host.TextContent(); got != "3" {
		t.Errorf("TextContent() = %q, want 3", got)
	}
	if id, _ := host.GetAttribute("q:id"); id != hostID {
		t.Errorf("Scope.ID() = %q, want %q", hostID, id)
	}
}

func TestComponentReplacedByOther(t *testing.T) {
	reg := render.NewRegistry()
	a := reg.Register("a", func(s *render.Scope, props Props) (*Node, error) { return Text("A"), nil })
	b := reg.Register("b", func(s *render.Scope, props Props) (*Node, error) { return Text("B"), nil })
	doc, c := newTestContainer(t, render.WithLoader(reg))
	mustRender(t, c, Component(a))
	first := element(t, doc.Body(), 0)

	mustRender(t, c, Component(b))
	second := element(t, doc.Body(), 0)
	if first == second {
		t.Error("host of a different component was reused")
	}
	if got := second.TextContent(); got != "B" {
		t.Errorf("TextContent() = %q, want B", got)
	}
}
