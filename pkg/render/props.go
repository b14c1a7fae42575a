package render

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/dom"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// PropWriter writes view node props onto live elements by queueing
// operations on the render context. It reports whether anything changed.
type PropWriter interface {
	ApplyProps(rc *RenderContext, el dom.Element, props vdom.Props, isSVG bool) bool
}

// Patcher is the default PropWriter.
//
// Event keys go to the EventRegistrar. data-*, aria-* and every key of an
// SVG element are written as attributes; other keys use a same-named live
// property when the element has one and fall back to attributes. Style
// declarations are diffed one by one; value and checked are compared with
// the live property so user edits are overridden.
type Patcher struct {
	Events EventRegistrar
}

// NewPatcher returns a Patcher routing handlers to events, or to the
// default listener table when events is nil.
func NewPatcher(events EventRegistrar) *Patcher {
	return &Patcher{Events: events}
}

type propsKey struct{}

// AppliedProps returns the props last written on el.
func AppliedProps(el dom.Element) vdom.Props {
	p, _ := el.UserData(propsKey{}).(vdom.Props)
	return p
}

func (pt *Patcher) events() EventRegistrar {
	if pt.Events == nil {
		return Listeners{}
	}
	return pt.Events
}

// ApplyProps implements PropWriter.
func (pt *Patcher) ApplyProps(rc *RenderContext, el dom.Element, props vdom.Props, isSVG bool) bool {
	prev := AppliedProps(el)
	next := normalizeProps(props)
	el.SetUserData(propsKey{}, next)
	rc.OnRollback(func() { el.SetUserData(propsKey{}, prev) })

	dirty := false
	for _, k := range sortedKeys(prev) {
		if _, ok := next[k]; ok {
			continue
		}
		if pt.remove(rc, el, k, prev[k]) {
			dirty = true
		}
	}
	for _, k := range sortedKeys(next) {
		old, had := prev[k]
		if !had {
			old = nil
		}
		if pt.set(rc, el, k, old, next[k], isSVG) {
			dirty = true
		}
	}
	return dirty
}

func normalizeProps(props vdom.Props) vdom.Props {
	out := make(vdom.Props, len(props))
	for k, v := range props {
		switch k {
		case "children", "key":
			continue
		case "class":
			if c := vdom.NormalizeClass(v); c != "" {
				out[k] = c
			}
			continue
		}
		if v != nil {
			out[k] = v
		}
	}
	return out
}

func sortedKeys(p vdom.Props) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// forceAttribute reports whether k bypasses live properties.
func forceAttribute(el dom.Element, k string, isSVG bool) bool {
	return isSVG ||
		strings.HasPrefix(k, "data-") ||
		strings.HasPrefix(k, "aria-") ||
		strings.Contains(k, ":") ||
		!el.HasProperty(k)
}

func (pt *Patcher) set(rc *RenderContext, el dom.Element, k string, old, v any, isSVG bool) bool {
	switch {
	case vdom.IsEventKey(k):
		return pt.setListener(rc, el, k, old, v)
	case k == "style":
		return setStyle(rc, el, styleMap(old), styleMap(v))
	case k == "innerHTML":
		markup := fmt.Sprint(v)
		if prev, ok := old.(string); ok && prev == markup && el.HasAttribute(attrStatic) {
			return false
		}
		rc.Enqueue(Operation{Kind: OpSetInnerHTML, Target: el, Value: markup}, func() error {
			return el.SetInnerHTML(markup)
		})
		rc.Enqueue(Operation{Kind: OpSetAttribute, Target: el, Name: attrStatic, Value: ""}, func() error {
			return el.SetAttribute(attrStatic, "")
		})
		return true
	case forceAttribute(el, k, isSVG):
		return setAttribute(rc, el, k, v)
	case k == "value" || k == "checked":
		want := liveValue(k, v)
		if live, _ := el.Property(k); live == want {
			return false
		}
		return setProperty(rc, el, k, want)
	default:
		live, _ := el.Property(k)
		if _, ok := live.(bool); ok {
			v = truthy(v)
		}
		if sameProperty(live, v) {
			return false
		}
		return setProperty(rc, el, k, v)
	}
}

func (pt *Patcher) remove(rc *RenderContext, el dom.Element, k string, old any) bool {
	switch {
	case vdom.IsEventKey(k):
		return pt.setListener(rc, el, k, old, nil)
	case k == "style":
		return setStyle(rc, el, styleMap(old), nil)
	case k == "innerHTML":
		return removeAttribute(rc, el, attrStatic)
	case (k == "value" || k == "checked") && el.HasProperty(k):
		zero := liveValue(k, nil)
		changed := false
		if live, _ := el.Property(k); live != zero {
			changed = setProperty(rc, el, k, zero)
		}
		return removeAttribute(rc, el, k) || changed
	default:
		return removeAttribute(rc, el, k)
	}
}

func setProperty(rc *RenderContext, el dom.Element, k string, v any) bool {
	rc.Enqueue(Operation{Kind: OpSetProperty, Target: el, Name: k, Value: v}, func() error {
		return el.SetProperty(k, v)
	})
	return true
}

func setAttribute(rc *RenderContext, el dom.Element, k string, v any) bool {
	s, present := attrString(k, v)
	if !present {
		return removeAttribute(rc, el, k)
	}
	if cur, has := el.GetAttribute(k); has && cur == s {
		return false
	}
	rc.Enqueue(Operation{Kind: OpSetAttribute, Target: el, Name: k, Value: s}, func() error {
		if err := el.SetAttribute(k, s); err != nil {
			return errors.New("R040").With("attribute", k).With("value", s).Wrap(err)
		}
		return nil
	})
	return true
}

func removeAttribute(rc *RenderContext, el dom.Element, k string) bool {
	if !el.HasAttribute(k) {
		return false
	}
	rc.Enqueue(Operation{Kind: OpRemoveAttribute, Target: el, Name: k}, func() error {
		el.RemoveAttribute(k)
		return nil
	})
	return true
}

// attrString formats an attribute value. nil and false mean absent; true
// is the empty value, except for data-* and aria-* which spell it out.
func attrString(k string, v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case bool:
		if strings.HasPrefix(k, "data-") || strings.HasPrefix(k, "aria-") {
			return strconv.FormatBool(x), true
		}
		return "", x
	case string:
		return x, true
	case fmt.Stringer:
		return x.String(), true
	default:
		return fmt.Sprint(x), true
	}
}

// liveValue converts a value or checked prop to the property's type.
func liveValue(k string, v any) any {
	if k == "checked" {
		return truthy(v)
	}
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func sameProperty(live, v any) bool {
	if lb, ok := live.(bool); ok {
		vb, isBool := v.(bool)
		return isBool && lb == vb
	}
	return fmt.Sprint(live) == fmt.Sprint(v)
}

// truthy converts a value written to a boolean property: nil, false,
// zero numbers and the empty string are false.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	default:
		return true
	}
}

// styleMap accepts map[string]string, map[string]any and "a: b; c: d".
func styleMap(v any) map[string]string {
	switch s := v.(type) {
	case nil:
		return nil
	case map[string]string:
		return s
	case map[string]any:
		out := make(map[string]string, len(s))
		for k, val := range s {
			if val != nil {
				out[k] = fmt.Sprint(val)
			}
		}
		return out
	case string:
		out := make(map[string]string)
		for _, decl := range strings.Split(s, ";") {
			name, value, ok := strings.Cut(decl, ":")
			if name = strings.TrimSpace(name); ok && name != "" {
				out[name] = strings.TrimSpace(value)
			}
		}
		return out
	default:
		return nil
	}
}

// setStyle queues one operation per changed declaration.
func setStyle(rc *RenderContext, el dom.Element, old, next map[string]string) bool {
	dirty := false
	for _, name := range sortedStyleKeys(old) {
		if _, ok := next[name]; ok {
			continue
		}
		if _, has := el.StyleProperty(name); !has {
			continue
		}
		name := name
		rc.Enqueue(Operation{Kind: OpRemoveStyle, Target: el, Name: name}, func() error {
			el.RemoveStyleProperty(name)
			return nil
		})
		dirty = true
	}
	for _, name := range sortedStyleKeys(next) {
		value := next[name]
		if live, has := el.StyleProperty(name); has && live == value {
			continue
		}
		name := name
		rc.Enqueue(Operation{Kind: OpSetStyle, Target: el, Name: name, Value: value}, func() error {
			if err := el.SetStyleProperty(name, value); err != nil {
				return errors.New("R041").With("property", name).With("value", value).Wrap(err)
			}
			return nil
		})
		dirty = true
	}
	return dirty
}

func sortedStyleKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// setListener registers, replaces or removes an event handler. A new
// handler for an already registered key is swapped in place.
func (pt *Patcher) setListener(rc *RenderContext, el dom.Element, key string, old, handler any) bool {
	scope, name, _ := vdom.ParseEventKey(key)
	events := pt.events()
	if old != nil && handler != nil {
		if err := events.SetListener(el, scope, name, handler); err != nil {
			rc.Report(errors.New("R007").With("event", key).Wrap(err))
		}
		return false
	}
	rc.Enqueue(Operation{Kind: OpSetListener, Target: el, Name: scope + name, Value: handler}, func() error {
		return events.SetListener(el, scope, name, handler)
	})
	return true
}

// sameValue is shallow equality for component props: comparable values
// by ==, maps, slices, funcs and pointers by identity.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Func, reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	if !va.Type().Comparable() {
		return reflect.DeepEqual(a, b)
	}
	defer func() { _ = recover() }()
	return a == b
}

func sameProps(a, b vdom.Props) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || !sameValue(v, w) {
			return false
		}
	}
	return true
}
