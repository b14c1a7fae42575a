// Package render reconciles view node trees against a live document.
//
// A Container owns one render root. Render diffs a whole tree against the
// root's current children; NotifyRender marks a component host dirty and
// re-renders it in the next scheduler batch. Both compute every change
// into an operation log first and mutate the document only when the pass
// commits, so a partially built tree is never visible.
//
// # Basic Usage
//
//	doc := htmldom.NewDocument()
//	rc, err := render.Render(ctx, doc.Body(), vdom.Ul(
//	    vdom.Li(vdom.Key(1), vdom.Text("one")),
//	    vdom.Li(vdom.Key(2), vdom.Text("two")),
//	))
//
// # Components
//
// Components are resolved through a Loader. A component's host element
// carries the q:host and q:id markers; children passed to the component
// are projected into the q:slot elements its output declares, or parked in
// hidden q:template holding elements while no such slot exists.
//
// # Async
//
// Render functions and view trees may contain vdom.Await nodes. The branch
// waiting on a promise keeps its place while the rest of the pass
// proceeds; the pass commits once every branch has settled.
//
// # Threading
//
// All passes run on the container's loop goroutine. Use Container.Do to
// read or mutate the document from other goroutines.
package render
