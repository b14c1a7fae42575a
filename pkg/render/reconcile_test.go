package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/reconcile/pkg/dom"
	"github.com/vango-dev/reconcile/pkg/dom/htmldom"
	"github.com/vango-dev/reconcile/pkg/render"
	. "github.com/vango-dev/reconcile/pkg/vdom"
)

func list(keys ...string) *Node {
	items := make([]any, len(keys))
	for i, k := range keys {
		items[i] = Li(Key(k), k)
	}
	return Ul(items...)
}

func TestRenderMarkup(t *testing.T) {
	doc, c := newTestContainer(t)
	mustRender(t, c, Div(ID("app"),
		H1("Title"),
		list("a", "b"),
		Input(Type("text"), Value("x")),
	))

	want := `<div id="app"><h1>Title</h1><ul><li q:key="a">a</li><li q:key="b">b</li></ul><input type="text" value="x"/></div>`
	if got := htmldom.InnerHTML(doc.Body()); got != want {
		t.Errorf("markup mismatch (-want +got):\n%s", cmp.Diff(want, got))
	}
}

func TestRenderIdempotent(t *testing.T) {
	tree := func() *Node {
		return Div(ID("app"), Class("card", "open"),
			list("a", "b", "c"),
			Span(Style(map[string]string{"color": "red", "margin": "0"}), "text"),
			Input(Value("x"), Checked(true), Type("checkbox")),
			Button(OnClick(func() {}), "go"),
			Data("id", "7"),
		)
	}
	_, c := newTestContainer(t)
	first := mustRender(t, c, tree())
	if len(first.Operations()) == 0 {
		t.Fatal("first render queued no operations")
	}
	second := mustRender(t, c, tree())
	if n := len(second.Operations()); n != 0 {
		t.Errorf("second render queued %d operations, want 0: %v", n, second.Operations())
	}
	if n := len(second.Errors()); n != 0 {
		t.Errorf("second render errors = %v", second.Errors())
	}
}

func TestIdentityPreserved(t *testing.T) {
	doc, c := newTestContainer(t)
	mustRender(t, c, Div(P("one"), Span("two")))
	div := element(t, doc.Body(), 0)
	p := element(t, div, 0)
	span := element(t, div, 1)

	mustRender(t, c, Div(P("uno"), Span("two"), Em("three")))
	if got := element(t, doc.Body(), 0); got != div {
		t.Error("div was replaced")
	}
	if got := element(t, div, 0); got != p {
		t.Error("p was replaced")
	}
	if got := element(t, div, 1); got != span {
		t.Error("span was replaced")
	}
	if got := p.TextContent(); got != "uno" {
		t.Errorf("p text = %q, want %q", got, "uno")
	}
}

func TestKeyedReorder(t *testing.T) {
	tests := []struct {
		name string
		from []string
		to   []string
	}{
		{"rotate right", []string{"1", "2", "3"}, []string{"3", "1", "2"}},
		{"rotate left", []string{"1", "2", "3"}, []string{"2", "3", "1"}},
		{"reverse", []string{"1", "2", "3", "4"}, []string{"4", "3", "2", "1"}},
		{"swap ends", []string{"1", "2", "3"}, []string{"3", "2", "1"}},
		{"shuffle", []string{"1", "2", "3", "4", "5"}, []string{"2", "5", "1", "4", "3"}},
		{"subset", []string{"1", "2", "3", "4"}, []string{"4", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, c := newTestContainer(t)
			mustRender(t, c, list(tt.from...))
			ul := element(t, doc.Body(), 0)
			byKey := make(map[string]dom.Node)
			for _, n := range dom.Children(ul) {
				byKey[keyOf(n)] = n
			}

			rc := mustRender(t, c, list(tt.to...))
			if rc.Perf().Created != 0 {
				t.Errorf("Created = %d, want 0", rc.Perf().Created)
			}
			var got []string
			for _, n := range dom.Children(ul) {
				got = append(got, keyOf(n))
				if byKey[keyOf(n)] != n {
					t.Errorf("item %s was recreated", keyOf(n))
				}
			}
			if diff := cmp.Diff(tt.to, got); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestKeyedInsertAndRemove(t *testing.T) {
	tests := []struct {
		name    string
		from    []string
		to      []string
		created int // items and their text nodes
		removed int
	}{
		{"append", []string{"a"}, []string{"a", "b", "c"}, 4, 0},
		{"prepend", []string{"c"}, []string{"a", "b", "c"}, 4, 0},
		{"insert middle", []string{"a", "d"}, []string{"a", "b", "c", "d"}, 4, 0},
		{"remove middle", []string{"a", "b", "c"}, []string{"a", "c"}, 0, 1},
		{"replace all", []string{"a", "b"}, []string{"x", "y"}, 4, 2},
		{"clear", []string{"a", "b"}, nil, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, c := newTestContainer(t)
			mustRender(t, c, list(tt.from...))
			rc := mustRender(t, c, list(tt.to...))
			if got := rc.Perf().Created; got != tt.created {
				t.Errorf("Created = %d, want %d", got, tt.created)
			}
			if got := rc.Perf().Removed; got != tt.removed {
				t.Errorf("Removed = %d, want %d", got, tt.removed)
			}
			var keys []string
			for _, n := range dom.Children(element(t, doc.Body(), 0)) {
				keys = append(keys, keyOf(n))
			}
			if diff := cmp.Diff(tt.to, keys); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTagChangeReplaces(t *testing.T) {
	doc, c := newTestContainer(t)
	mustRender(t, c, Div(Span(Key("k"), "a")))
	old := element(t, element(t, doc.Body(), 0), 0)

	mustRender(t, c, Div(Em(Key("k"), "a")))
	got := element(t, element(t, doc.Body(), 0), 0)
	if got == old {
		t.Fatal("element with a new tag was patched in place")
	}
	if got.LocalName() != "em" {
		t.Errorf("LocalName() = %q, want em", got.LocalName())
	}
	if old.ParentNode() != nil {
		t.Error("old element is still attached")
	}
}

func TestTextPatch(t *testing.T) {
	doc, c := newTestContainer(t)
	mustRender(t, c, P("hello"))
	text := element(t, doc.Body(), 0).FirstChild()

	rc := mustRender(t, c, P("world"))
	if got := element(t, doc.Body(), 0).FirstChild(); got != text {
		t.Error("text node was replaced")
	}
	if got := text.(dom.CharacterData).Data(); got != "world" {
		t.Errorf("Data() = %q, want world", got)
	}
	if len(rc.Operations()) != 1 || rc.Operations()[0].Kind != render.OpSetText {
		t.Errorf("Operations() = %v, want one SetText", rc.Operations())
	}
}

func TestSkipRender(t *testing.T) {
	doc, c := newTestContainer(t)
	mustRender(t, c, Div(SkipRender(Span("fallback"))))
	div := element(t, doc.Body(), 0)
	if got := div.TextContent(); got != "fallback" {
		t.Fatalf("empty parent: TextContent() = %q, want fallback", got)
	}

	mustRender(t, c, Div(Span("real")))
	rc := mustRender(t, c, Div(SkipRender(Span("fallback"))))
	if got := div.TextContent(); got != "real" {
		t.Errorf("TextContent() = %q, want real", got)
	}
	if n := len(rc.Operations()); n != 0 {
		t.Errorf("Operations() = %v, want none", rc.Operations())
	}
}

func TestNamespaces(t *testing.T) {
	doc, c := newTestContainer(t)
	mustRender(t, c, Div(Svg(ViewBox("0 0 10 10"),
		G(Circle()),
		ForeignObject(Div(Span("html"))),
	)))
	svg := firstByTag(doc.Body(), "svg")
	if svg == nil {
		t.Fatal("no svg element")
	}

	tests := []struct {
		tag  string
		want string
	}{
		{"svg", dom.NamespaceSVG},
		{"g", dom.NamespaceSVG},
		{"circle", dom.NamespaceSVG},
		{"foreignObject", dom.NamespaceSVG},
		{"span", dom.NamespaceHTML},
	}
	for _, tt := range tests {
		el := firstByTag(doc.Body(), tt.tag)
		if el == nil {
			t.Errorf("no %s element", tt.tag)
			continue
		}
		if got := el.NamespaceURI(); got != tt.want {
			t.Errorf("%s namespace = %q, want %q", tt.tag, got, tt.want)
		}
	}
	if got, _ := svg.GetAttribute("viewBox"); got != "0 0 10 10" {
		t.Errorf("viewBox = %q", got)
	}
}

func TestInnerHTMLIsStatic(t *testing.T) {
	doc, c := newTestContainer(t)
	mustRender(t, c, Div(InnerHTML("<b>bold</b>"), Span("ignored")))
	div := element(t, doc.Body(), 0)
	if got := htmldom.InnerHTML(div); got != "<b>bold</b>" {
		t.Errorf("InnerHTML = %q", got)
	}
	if !div.HasAttribute("q:static") {
		t.Error("missing q:static marker")
	}
	rc := mustRender(t, c, Div(InnerHTML("<b>bold</b>"), Span("ignored")))
	if n := len(rc.Operations()); n != 0 {
		t.Errorf("Operations() = %v, want none", rc.Operations())
	}
}

func TestHostNodeOutsideComponent(t *testing.T) {
	_, c := newTestContainer(t)
	rc := mustRender(t, c, Div(Host(Span("x"))))
	if diff := cmp.Diff([]string{"R005"}, codes(rc.Errors())); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestHydrateReusesMarkup(t *testing.T) {
	doc, err := htmldom.ParseString(`<html><body><ul><li q:key="a">a</li><li q:key="b">b</li></ul></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	c, err := render.New(doc.Body(), render.WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close(testContext(t))

	ul := element(t, doc.Body(), 0)
	a := element(t, ul, 0)
	rc := mustRender(t, c, list("a", "b"))
	if n := len(rc.Operations()); n != 0 {
		t.Errorf("Operations() = %v, want none", rc.Operations())
	}
	if element(t, ul, 0) != a {
		t.Error("hydrated element was replaced")
	}
}
