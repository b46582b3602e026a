// Package api exposes QuickSaver over HTTP using gin.
//
// Routes:
//
//	POST /api/download          submit a URL, receive a one-time token
//	GET  /download/*token       stream the artifact once, then delete it
//	GET  /health                liveness plus scratch and dependency details
//	GET  /api/admin/requests    recent ledger entries (bearer token required)
//
// The admin route is only registered when an admin token is configured.
// Server builds the handler; the daemon owns the listener lifecycle.
package api
