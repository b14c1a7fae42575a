package vdom

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// Sectioning elements

func Header(args ...any) *Node  { return El("header", args...) }
func Footer(args ...any) *Node  { return El("footer", args...) }
func Main(args ...any) *Node    { return El("main", args...) }
func Nav(args ...any) *Node     { return El("nav", args...) }
func Section(args ...any) *Node { return El("section", args...) }
func Article(args ...any) *Node { return El("article", args...) }
func Aside(args ...any) *Node   { return El("aside", args...) }
func H1(args ...any) *Node      { return El("h1", args...) }
func H2(args ...any) *Node      { return El("h2", args...) }
func H3(args ...any) *Node      { return El("h3", args...) }

// Grouping elements

func Div(args ...any) *Node  { return El("div", args...) }
func P(args ...any) *Node    { return El("p", args...) }
func Span(args ...any) *Node { return El("span", args...) }
func Pre(args ...any) *Node  { return El("pre", args...) }
func Ul(args ...any) *Node   { return El("ul", args...) }
func Ol(args ...any) *Node   { return El("ol", args...) }
func Li(args ...any) *Node   { return El("li", args...) }
func Hr(args ...any) *Node   { return El("hr", args...) }

// Text-level elements

func A(args ...any) *Node      { return El("a", args...) }
func Strong(args ...any) *Node { return El("strong", args...) }
func Em(args ...any) *Node     { return El("em", args...) }
func B(args ...any) *Node      { return El("b", args...) }
func I(args ...any) *Node      { return El("i", args...) }
func Small(args ...any) *Node  { return El("small", args...) }
func Code(args ...any) *Node   { return El("code", args...) }
func Br(args ...any) *Node     { return El("br", args...) }

// Form elements

func Form(args ...any) *Node     { return El("form", args...) }
func Input(args ...any) *Node    { return El("input", args...) }
func Textarea(args ...any) *Node { return El("textarea", args...) }
func Select(args ...any) *Node   { return El("select", args...) }
func Option(args ...any) *Node   { return El("option", args...) }
func Button(args ...any) *Node   { return El("button", args...) }
func Label(args ...any) *Node    { return El("label", args...) }

// Table elements

func Table(args ...any) *Node { return El("table", args...) }
func Tbody(args ...any) *Node { return El("tbody", args...) }
func Tr(args ...any) *Node    { return El("tr", args...) }
func Td(args ...any) *Node    { return El("td", args...) }
func Th(args ...any) *Node    { return El("th", args...) }

// Media elements

func Img(args ...any) *Node { return El("img", args...) }

// SVG elements. Svg switches its subtree to the SVG namespace and
// ForeignObject switches back to HTML.

func Svg(args ...any) *Node           { return El("svg", args...) }
func G(args ...any) *Node             { return El("g", args...) }
func Path(args ...any) *Node          { return El("path", args...) }
func Circle(args ...any) *Node        { return El("circle", args...) }
func Rect(args ...any) *Node          { return El("rect", args...) }
func ForeignObject(args ...any) *Node { return El("foreignObject", args...) }
