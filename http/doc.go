// Package http provides the HTTP surface of the livestow relay.
//
// # Routes
//
//   - PUT /<name>: the request body is read as it arrives and each unit the
//     transport delivers becomes one chunk. Responds 201 with the object
//     metadata once the body ends.
//   - GET /<name>: streams the object with chunked framing. The response
//     follows the upload live and ends when the upload completes or goes
//     quiet for the stale timeout. The X-Stream-Outcome trailer reports
//     "complete" or "stale". Unknown names get 404.
//   - HEAD /<name>: object status headers (X-Object-Id, X-Object-Chunks,
//     X-Object-Size, X-Object-Complete).
//   - DELETE /<name>: 204, or 404 for unknown names. Downloads already in
//     progress keep reading.
//   - GET /: informational page, or a JSON listing with Accept:
//     application/json or ?format=json (optional ?prefix=).
//
// Errors are JSON objects of the form {"error": "...", "message": "..."}.
//
// # Usage
//
//	reg := livestow.NewRegistry()
//	service, _ := livestow.NewLiveService(reg, livestow.ServiceConfig{})
//	handler := http.NewHandler(&http.HandlerConfig{}, service)
//	server := &nethttp.Server{Addr: ":5708", Handler: handler.Router()}
//
// Do not set Read or Write timeouts on the server: uploads and downloads
// last as long as the producer keeps sending.
package http
