package http

import (
	"io"
	"net/http"
)

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>livestow</title></head>
<body>
<h1>livestow</h1>
<p>Live object relay. Objects can be downloaded while they are still being uploaded.</p>
<ul>
<li><code>PUT /&lt;name&gt;</code> upload an object as a stream</li>
<li><code>GET /&lt;name&gt;</code> download, following the upload until it ends</li>
<li><code>HEAD /&lt;name&gt;</code> object status</li>
<li><code>DELETE /&lt;name&gt;</code> remove an object</li>
<li><code>GET /?format=json</code> list objects</li>
</ul>
</body>
</html>`

func writeIndexPage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, indexHTML)
}
