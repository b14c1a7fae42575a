package render

import (
	"fmt"

	"github.com/vango-dev/reconcile/pkg/dom"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// EventRegistrar receives the event handlers found in props. A nil
// handler removes the listener.
type EventRegistrar interface {
	SetListener(el dom.Element, scope, event string, handler any) error
}

// Listeners is the default EventRegistrar. It keeps handlers in a table
// stored in the element's user data.
type Listeners struct{}

type listenersKey struct{}

// SetListener implements EventRegistrar.
func (Listeners) SetListener(el dom.Element, scope, event string, handler any) error {
	table, _ := el.UserData(listenersKey{}).(map[string]any)
	if handler == nil {
		delete(table, scope+event)
		return nil
	}
	if table == nil {
		table = make(map[string]any)
		el.SetUserData(listenersKey{}, table)
	}
	table[scope+event] = handler
	return nil
}

// ListenersOf returns a copy of the handlers registered on el by
// Listeners, keyed by scope and event name ("on:click").
func ListenersOf(el dom.Element) map[string]any {
	table, _ := el.UserData(listenersKey{}).(map[string]any)
	out := make(map[string]any, len(table))
	for k, v := range table {
		out[k] = v
	}
	return out
}

// Dispatch invokes the element-scoped handler for event on el. Handlers
// may be func(), func(any), func(dom.Element) or func(any) error. It
// reports whether a handler was found.
//
// Dispatch runs the handler on the calling goroutine; call it from
// Container.Do when the handler touches the document.
func Dispatch(el dom.Element, event string, arg any) (bool, error) {
	table, _ := el.UserData(listenersKey{}).(map[string]any)
	h, ok := table[vdom.ScopeElement+event]
	if !ok {
		return false, nil
	}
	switch fn := h.(type) {
	case func():
		fn()
	case func(any):
		fn(arg)
	case func(dom.Element):
		fn(el)
	case func(any) error:
		return true, fn(arg)
	default:
		return true, fmt.Errorf("render: unsupported handler type %T for %q", h, event)
	}
	return true, nil
}
