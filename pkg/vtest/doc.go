// Package vtest provides testing helpers for reconciled views.
//
// A Harness owns a container rendering into the body of a fresh
// htmldom document and fails the test on any render error:
//
//	func TestTodoList(t *testing.T) {
//	    h := vtest.New(t)
//	    h.Render(Ul(Li(Key("a"), "milk")))
//	    h.ExpectHTML(`<ul><li>milk</li></ul>`)
//	}
//
// Assertions compare markup with the engine markers (q:key, q:id,
// q:host and the style id classes) removed; use HTML for the raw
// serialization.
//
// Components are registered on h.Registry, and hosts are re-rendered
// with Notify, which waits for the resulting batch:
//
//	counter := h.Registry.Register("counter", Counter)
//	h.Render(Div(Component(counter)))
//	host := h.Find("div")
//	h.Notify(host)
package vtest
