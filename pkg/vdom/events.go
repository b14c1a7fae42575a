package vdom

import "strings"

// event creates an EventHandler for an element-scoped event.
// The name is prefixed with "on:" (e.g., "click" becomes "on:click").
func event(name string, handler any) EventHandler {
	return EventHandler{Event: "on:" + name, Handler: handler}
}

// On handles an arbitrary element event.
func On(name string, handler any) EventHandler { return event(name, handler) }

// OnDocument handles an event dispatched on the document.
func OnDocument(name string, handler any) EventHandler {
	return EventHandler{Event: "on-document:" + name, Handler: handler}
}

// OnWindow handles an event dispatched on the window.
func OnWindow(name string, handler any) EventHandler {
	return EventHandler{Event: "on-window:" + name, Handler: handler}
}

// Mouse events

// OnClick handles click events.
func OnClick(handler any) EventHandler { return event("click", handler) }

// OnDblClick handles double-click events.
func OnDblClick(handler any) EventHandler { return event("dblclick", handler) }

// OnMouseEnter handles mouseenter events.
func OnMouseEnter(handler any) EventHandler { return event("mouseenter", handler) }

// OnMouseLeave handles mouseleave events.
func OnMouseLeave(handler any) EventHandler { return event("mouseleave", handler) }

// Keyboard events

// OnKeyDown handles keydown events.
func OnKeyDown(handler any) EventHandler { return event("keydown", handler) }

// OnKeyUp handles keyup events.
func OnKeyUp(handler any) EventHandler { return event("keyup", handler) }

// Form events

// OnInput handles input events (fired when value changes).
func OnInput(handler any) EventHandler { return event("input", handler) }

// OnChange handles change events (fired when value is committed).
func OnChange(handler any) EventHandler { return event("change", handler) }

// OnSubmit handles form submit events.
func OnSubmit(handler any) EventHandler { return event("submit", handler) }

// OnFocus handles focus events.
func OnFocus(handler any) EventHandler { return event("focus", handler) }

// OnBlur handles blur events.
func OnBlur(handler any) EventHandler { return event("blur", handler) }

// Event scopes.
const (
	ScopeElement  = "on:"
	ScopeDocument = "on-document:"
	ScopeWindow   = "on-window:"
)

// IsEventKey reports whether a prop key names an event handler:
// "on:<event>", "on-document:<event>", "on-window:<event>" or "on"
// followed by an upper-case letter, each with an optional trailing "$".
func IsEventKey(key string) bool {
	_, _, ok := ParseEventKey(key)
	return ok
}

// ParseEventKey splits an event prop key into its scope and lower-case
// event name.
func ParseEventKey(key string) (scope, name string, ok bool) {
	key = strings.TrimSuffix(key, "$")
	for _, s := range []string{ScopeElement, ScopeDocument, ScopeWindow} {
		if rest, found := strings.CutPrefix(key, s); found {
			if rest == "" {
				return "", "", false
			}
			return s, strings.ToLower(rest), true
		}
	}
	if len(key) > 2 && strings.HasPrefix(key, "on") && key[2] >= 'A' && key[2] <= 'Z' {
		return ScopeElement, strings.ToLower(key[2:]), true
	}
	return "", "", false
}
