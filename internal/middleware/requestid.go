// Package middleware provides HTTP middleware shared by every inbound
// surface.
package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/Strob0t/CityMesh/internal/logger"
)

const headerRequestID = "X-Request-ID"

// RequestID honors an incoming X-Request-ID header or mints a fresh one,
// stores the ID on the context for log correlation, and echoes it on the
// response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = newRequestID()
		}

		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}

// newRequestID returns 16 random bytes hex-encoded (32 chars).
func newRequestID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
