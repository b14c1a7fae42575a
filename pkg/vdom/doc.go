// Package vdom provides the view node model consumed by the reconciler.
//
// A view node is an immutable description of a desired piece of UI: an
// element, a text run, a fragment, the host marker of a component, a
// component reference, a skip sentinel, or a pending subtree waiting on a
// promise. The reconciler reads view nodes and never writes to them.
//
// # Building trees
//
// Elements are created using variadic factory functions:
//
//	Div(Class("card"), Key(item.ID),
//	    H1(Text("Title")),
//	    Slot("footer", Text("no footer")),
//	    OnClick(handler),
//	)
//
// New is the checked constructor: it returns a structural error for a
// malformed type or child instead of panicking.
//
// # Components
//
// Component creates a reference to a component; its children are projected
// into the component's named slots, selected by the SlotName attribute.
//
// # Async subtrees
//
// Await wraps a promise of a subtree. Flatten inlines settled promises and
// reports the ones still blocking a children list.
package vdom
