package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/tankops/bath-planner/pkg/requestid"
)

// RequestID takes the request id from the X-Request-Id header, or from chi when it already
// generated one, or creates a new one. The id is stored in the request context and echoed in
// the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestid.Header)
		if requestID == "" {
			requestID = middleware.GetReqID(r.Context())
		}
		if requestID == "" {
			requestID = requestid.Generate()
		}

		w.Header().Set(requestid.Header, requestID)
		next.ServeHTTP(w, r.WithContext(requestid.ToContext(r.Context(), requestID)))
	})
}
