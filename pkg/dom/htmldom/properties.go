package htmldom

import (
	"fmt"
	"strconv"
)

type propKind uint8

const (
	stringProp propKind = iota
	boolProp
	intProp
)

// propSpec describes a reflected element property.
type propSpec struct {
	attr string
	kind propKind
	// tags restricts the property to some elements; nil means all.
	tags map[string]bool
	// live properties keep their own state once assigned or edited and
	// no longer follow their attribute.
	live bool
}

func tagSet(tags ...string) map[string]bool {
	m := make(map[string]bool, len(tags))
	for _, t := range tags {
		m[t] = true
	}
	return m
}

var (
	formControls = tagSet("input", "select", "textarea", "button", "option", "output", "progress", "meter", "li", "param", "data")
	linkTags     = tagSet("a", "area", "link", "base")
	srcTags      = tagSet("img", "script", "iframe", "audio", "video", "source", "track", "input", "embed")
)

var properties = map[string]propSpec{
	"id":              {attr: "id"},
	"className":       {attr: "class"},
	"title":           {attr: "title"},
	"lang":            {attr: "lang"},
	"dir":             {attr: "dir"},
	"hidden":          {attr: "hidden", kind: boolProp},
	"tabIndex":        {attr: "tabindex", kind: intProp},
	"accessKey":       {attr: "accesskey"},
	"draggable":       {attr: "draggable", kind: boolProp},
	"contentEditable": {attr: "contenteditable"},
	"innerText":       {},

	"value":          {attr: "value", tags: formControls, live: true},
	"defaultValue":   {attr: "value", tags: tagSet("input", "textarea")},
	"checked":        {attr: "checked", kind: boolProp, tags: tagSet("input"), live: true},
	"defaultChecked": {attr: "checked", kind: boolProp, tags: tagSet("input")},
	"selected":       {attr: "selected", kind: boolProp, tags: tagSet("option"), live: true},
	"disabled":       {attr: "disabled", kind: boolProp, tags: tagSet("input", "select", "textarea", "button", "fieldset", "optgroup", "option")},
	"readOnly":       {attr: "readonly", kind: boolProp, tags: tagSet("input", "textarea")},
	"required":       {attr: "required", kind: boolProp, tags: tagSet("input", "select", "textarea")},
	"multiple":       {attr: "multiple", kind: boolProp, tags: tagSet("input", "select")},
	"placeholder":    {attr: "placeholder", tags: tagSet("input", "textarea")},
	"name":           {attr: "name", tags: tagSet("input", "select", "textarea", "button", "form", "iframe", "meta", "output", "fieldset", "slot")},
	"type":           {attr: "type", tags: tagSet("input", "button", "script", "style", "link", "source", "ol", "embed", "object")},
	"maxLength":      {attr: "maxlength", kind: intProp, tags: tagSet("input", "textarea")},
	"href":           {attr: "href", tags: linkTags},
	"target":         {attr: "target", tags: tagSet("a", "area", "base", "form")},
	"rel":            {attr: "rel", tags: tagSet("a", "area", "link")},
	"src":            {attr: "src", tags: srcTags},
	"alt":            {attr: "alt", tags: tagSet("img", "area", "input")},
	"htmlFor":        {attr: "for", tags: tagSet("label", "output")},
	"colSpan":        {attr: "colspan", kind: intProp, tags: tagSet("td", "th")},
	"rowSpan":        {attr: "rowspan", kind: intProp, tags: tagSet("td", "th")},
	"open":           {attr: "open", kind: boolProp, tags: tagSet("details", "dialog")},
	"action":         {attr: "action", tags: tagSet("form")},
	"method":         {attr: "method", tags: tagSet("form")},
}

func (e *Element) spec(name string) (propSpec, bool) {
	if e.n.Namespace != "" {
		return propSpec{}, false
	}
	s, ok := properties[name]
	if !ok || (s.tags != nil && !s.tags[e.n.Data]) {
		return propSpec{}, false
	}
	return s, true
}

// HasProperty reports whether the element exposes a property with this
// exact, case-sensitive name.
func (e *Element) HasProperty(name string) bool {
	switch name {
	case "textContent", "innerHTML":
		return true
	}
	_, ok := e.spec(name)
	return ok
}

// Property reads a live property.
func (e *Element) Property(name string) (any, bool) {
	switch name {
	case "textContent", "innerText":
		return e.TextContent(), true
	case "innerHTML":
		return InnerHTML(e), true
	}
	s, ok := e.spec(name)
	if !ok {
		return nil, false
	}
	if s.live {
		if v, ok := e.live[name]; ok {
			return v, true
		}
	}
	raw, has := e.GetAttribute(s.attr)
	switch s.kind {
	case boolProp:
		return has, true
	case intProp:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, true
		}
		return n, true
	default:
		return raw, true
	}
}

// SetProperty assigns a property. Reflected and live properties write
// through to their attribute.
func (e *Element) SetProperty(name string, value any) error {
	switch name {
	case "textContent", "innerText":
		s, err := coerceString(name, value)
		if err != nil {
			return err
		}
		e.setTextContent(s)
		return nil
	case "innerHTML":
		s, err := coerceString(name, value)
		if err != nil {
			return err
		}
		return e.SetInnerHTML(s)
	}
	s, ok := e.spec(name)
	if !ok {
		return fmt.Errorf("htmldom: <%s> has no property %q", e.n.Data, name)
	}
	switch s.kind {
	case boolProp:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("htmldom: property %q wants bool, got %T", name, value)
		}
		if s.live {
			e.setLive(name, b)
		}
		if b {
			return e.SetAttribute(s.attr, "")
		}
		e.RemoveAttribute(s.attr)
		return nil
	case intProp:
		n, err := coerceInt(name, value)
		if err != nil {
			return err
		}
		return e.SetAttribute(s.attr, strconv.Itoa(n))
	default:
		str, err := coerceString(name, value)
		if err != nil {
			return err
		}
		if s.live {
			e.setLive(name, str)
		}
		return e.SetAttribute(s.attr, str)
	}
}

func coerceString(name string, v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case fmt.Stringer:
		return x.String(), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(x), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("htmldom: property %q wants string, got %T", name, v)
	}
}

func coerceInt(name string, v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int32:
		return int(x), nil
	case int64:
		return int(x), nil
	case float64:
		return int(x), nil
	case string:
		n, err := strconv.Atoi(x)
		if err != nil {
			return 0, fmt.Errorf("htmldom: property %q wants integer, got %q", name, x)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("htmldom: property %q wants integer, got %T", name, v)
	}
}
