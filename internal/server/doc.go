// Package server provides HTTP routing, middleware, and the comparison
// stream endpoint.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Comparison Stream
//
// [CompareHandler] serves GET /api/compare-blocks. It validates the request,
// switches the response to text/event-stream, and drives a
// [tasks.CompareEngine] run with a [StreamEmitter] so each progress event is
// written and flushed the moment it happens. The request context carries
// consumer disconnection into the engine: when the client goes away, no
// further upstream calls are issued.
//
// # Supporting Endpoints
//
//	GET /api/compare-blocks → SSE comparison stream
//	GET /api/channels       → username resolution + channel listing (JSON)
//	GET /health             → liveness probe
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
