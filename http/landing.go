package http

import (
	"io"
	"net/http"
)

const landingHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>signet</title>
</head>
<body>
<h1>signet</h1>
<p>Issues time-limited, read-only signed URLs for storage objects.</p>
<pre>
POST /sign
Content-Type: application/json

{"bucket_name": "reports", "object_name": "q1.pdf", "expiration_seconds": 600}
</pre>
<hr><center>signet</center>
</body>
</html>`

func handleLanding(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, landingHTML)
}
