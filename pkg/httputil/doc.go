// Package httputil provides the HTTP plumbing shared by hexplanner's API
// handlers.
//
// # Responses
//
// [JSON] writes a value with the right content type and status. [Error]
// maps a coded error from pkg/errors to its HTTP status and writes a
// uniform body:
//
//	{"error": {"code": "PLAN_NOT_FOUND", "message": "plan \"x\" not found"}}
//
// Errors without a code are reported as 500 with a generic message, so
// internal details never leak to clients.
//
// # Requests
//
// [DecodeJSON] reads a size-limited JSON body and rejects unknown fields.
//
// # Middleware
//
// [Instrument] times each request and reports it to the observability HTTP
// hooks, labeled by the chi route pattern rather than the raw path so plan
// IDs do not explode metric cardinality.
package httputil
