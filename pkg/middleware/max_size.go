package middleware

import (
	"net/http"

	apperrors "roombook/pkg/errors"
)

// MaxRequestSize caps the request body. Declared lengths over the limit are
// rejected up front; bodies without a length fail when the reader hits the cap.
func MaxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				writeAppError(w, apperrors.TooLarge(limit))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
