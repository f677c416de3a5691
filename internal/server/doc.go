// Package server exposes the strip configuration over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("GET /data"), so a request with the wrong
// method is answered with 405 by the mux itself.
//
// # Configuration Handler
//
// [ConfigHandler] owns the write path: decode, validate, save, then swap the live registry. Writes are serialized so
// the persisted blob and the live registry always end in the same order across concurrent writers. The registry lock
// is only held for the swap itself, never while talking to storage.
//
// If the save fails the new configuration is still applied and the failure is logged; the response reports
// "persisted": false. With strict persistence enabled the write is refused instead and the live registry is left alone.
//
// # Routes
//
//	GET     /       → embedded control page
//	GET     /now    → milliseconds since startup, text/plain
//	GET     /data   → current configuration as JSON
//	POST    /data   → replace the configuration
//	OPTIONS /data   → CORS preflight
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
