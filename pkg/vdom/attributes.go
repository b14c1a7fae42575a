package vdom

import (
	"fmt"
	"sort"
	"strings"
)

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", NormalizeClass(classes)) }

// Classes sets the class attribute from strings, string slices and
// map[string]bool toggles.
func Classes(values ...any) Attr { return attr("class", NormalizeClass(values)) }

// Key creates a key attribute for reconciliation.
// The key is converted to a string using fmt.
func Key(key any) Attr { return attr("key", KeyString(key)) }

// SlotName selects the slot a projected child is placed in.
func SlotName(name string) Attr { return attr("q:slot", name) }

// HostAttr sets an attribute on the host element of the component the
// node is passed to.
func HostAttr(name string, value any) Attr { return attr(HostPrefix+name, value) }

// HostPrefix marks component props that belong to the host element.
const HostPrefix = "host:"

// Style sets inline style declarations. Declarations are diffed one by
// one against the previous render.
func Style(decls map[string]string) Attr { return attr("style", decls) }

// InnerHTML replaces the element's children with markup. The element's
// children are then never reconciled.
func InnerHTML(markup string) Attr { return attr("innerHTML", markup) }

// Data attributes

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Aria creates an aria-* attribute.
func Aria(key string, value any) Attr { return attr("aria-"+key, value) }

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// Form attributes

// Name sets the name attribute.
func Name(name string) Attr { return attr("name", name) }

// Value sets the live value of a form control.
func Value(value string) Attr { return attr("value", value) }

// Checked sets the live checked state of a checkbox or radio input.
func Checked(checked bool) Attr { return attr("checked", checked) }

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Placeholder sets the placeholder attribute.
func Placeholder(text string) Attr { return attr("placeholder", text) }

// Disabled sets the disabled attribute.
func Disabled() Attr { return attr("disabled", true) }

// Other attributes

// Href sets the href attribute.
func Href(url string) Attr { return attr("href", url) }

// Src sets the src attribute.
func Src(url string) Attr { return attr("src", url) }

// Alt sets the alt attribute.
func Alt(text string) Attr { return attr("alt", text) }

// Hidden sets the hidden attribute.
func Hidden() Attr { return attr("hidden", true) }

// TitleAttr sets the title attribute.
func TitleAttr(title string) Attr { return attr("title", title) }

// TabIndex sets the tabindex attribute.
func TabIndex(index int) Attr { return attr("tabindex", index) }

// ViewBox sets the viewBox attribute of an svg element.
func ViewBox(box string) Attr { return attr("viewBox", box) }

// NormalizeClass flattens a class value into a single space-joined
// string. It accepts strings, string slices, []any and map[string]bool
// (keys with a true value, sorted).
func NormalizeClass(v any) string {
	var parts []string
	collectClasses(v, &parts)
	return strings.Join(parts, " ")
}

func collectClasses(v any, parts *[]string) {
	switch c := v.(type) {
	case nil:
	case string:
		*parts = append(*parts, strings.Fields(c)...)
	case []string:
		for _, s := range c {
			collectClasses(s, parts)
		}
	case []any:
		for _, s := range c {
			collectClasses(s, parts)
		}
	case map[string]bool:
		keys := make([]string, 0, len(c))
		for k, on := range c {
			if on {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			collectClasses(k, parts)
		}
	default:
		*parts = append(*parts, fmt.Sprint(c))
	}
}
