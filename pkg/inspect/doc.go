// Package inspect serves a live view of a render container over HTTP.
//
// The inspector exposes the serialized document, the recent pass history,
// a WebSocket stream of pass summaries and the Prometheus collectors of
// the engine. The Hub must be installed as a commit hook when the
// container is created:
//
//	hub := inspect.NewHub(100, logger)
//	c, err := render.New(root, render.WithCommitHook(hub.Publish))
//	...
//	srv := inspect.NewServer(c, hub, inspect.WithGatherer(registry))
//	err = srv.ListenAndServe(ctx, "localhost:7070")
package inspect
