// Package errors provides structured errors with stable codes for the
// reconciliation engine.
//
// Every error carries a code (e.g. "R001") that maps to a registered
// template with a category, a short message and a longer explanation.
//
// # Error Categories
//
// Errors are organized into categories:
//   - structural: programmer errors (malformed view nodes, invalid render
//     roots, missing capabilities). These are returned to the caller and
//     never swallowed.
//   - render: failures raised by a component's render function or by a
//     rejected asynchronous subtree. These are isolated per host.
//   - validation: rejected attribute names or style declarations. Reported
//     per declaration; valid siblings still apply.
//   - commit: document write failures caught while committing operations.
//   - config: configuration file problems.
//   - cli: command line usage errors.
//
// # Usage
//
//	err := errors.New("R003").
//	    WithDetail("element <section> has no q:host attribute").
//	    WithSuggestion("Only elements rendered from a component node can be re-rendered")
//
//	fmt.Println(err.Format())
package errors
