// Package api serves clipper operations over HTTP.
//
// The router is built with chi and exposes acquisition, subtitle resolution,
// transforms, voiceover generation, history, and health as JSON endpoints.
// Handlers depend on small interfaces so tests can substitute fakes for the
// tool-backed services.
//
// # Errors
//
// Failures carry a services marker; statusFor maps it onto an HTTP status
// (not found 404, validation 400, tool unavailable 503, everything else 500)
// and the body reports the marker label as "kind". Transform failures still
// return the transform Result so callers see success=false and the error text
// in the same shape as a success.
//
// # Request IDs
//
// Every request gets an ID from X-Request-ID or a fresh UUID. It is attached
// to the context, echoed in the response header, and recorded with history
// rows written by the request.
package api
