// Package gateway wires the chat service together and fronts it with HTTP.
//
// New builds the store, registry, router, and query service from config and
// registers the routes: the admin read API under /api, the websocket upgrade
// at /ws, and /health. Run blocks until the context is canceled, then shuts
// the HTTP server, registry, and store down gracefully.
package gateway
