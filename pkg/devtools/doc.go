// Package devtools serves an inspector for a mounted tree over HTTP.
//
// Routes:
//
//	GET /healthz   liveness
//	GET /          the rendered document
//	GET /tree      the node tree as JSON
//	GET /metrics   Prometheus exposition
//	GET /ws        websocket stream of document mutations
//
// Every read of the tree runs on the runtime loop, so the loop must be
// driven (sched.Loop.Run) while the server is in use.
package devtools
