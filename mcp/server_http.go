package mcp

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/server"
)

// Handler serves the MCP tools over streamable HTTP, behind bearer auth when
// apiKey is set.
func Handler(d Deps, apiKey string) http.Handler {
	var h http.Handler = server.NewStreamableHTTPServer(NewServer(d), server.WithStateLess(true))
	if apiKey != "" {
		h = BearerAuth(apiKey, "mcp", h)
	}
	return h
}

// BearerAuth rejects requests whose Authorization header does not carry apiKey.
func BearerAuth(apiKey, realm string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="`+realm+`"`)
			http.Error(w, `{"error":"missing Authorization header"}`, http.StatusUnauthorized)
			return
		}
		token, found := strings.CutPrefix(auth, "Bearer ")
		if !found || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="`+realm+`", error="invalid_token"`)
			http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
