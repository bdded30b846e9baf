package testing

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// HTTPHandler serves a Server over the HTTP API: GET /<name>+<arg>+<arg>...
// where every part is path escaped. The reply body is the JSON envelope.
func HTTPHandler(srv *Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		parts := strings.Split(strings.TrimPrefix(r.URL.EscapedPath(), "/"), "+")
		args := make([]string, 0, len(parts))
		for _, part := range parts {
			arg, err := url.PathUnescape(part)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			args = append(args, arg)
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = io.WriteString(w, srv.Handle(args))
	})
}

// StartHTTPServer starts a fake HTTP server. It is stopped when the test finishes.
func StartHTTPServer(t testing.TB, srv *Server) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(HTTPHandler(srv))
	t.Cleanup(ts.Close)
	return ts
}
