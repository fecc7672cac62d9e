package middleware

import (
	"net/http"
)

// maxRequestBody caps every JSON payload the API accepts. Nothing on this
// surface uploads file bytes; attachments are metadata-only records.
const maxRequestBody = 1 << 20

// BodyLimit rejects oversized payloads up front when Content-Length gives
// them away and caps the reader for everything else, including chunked
// requests that carry no length.
func BodyLimit(maxSize int64) func(http.Handler) http.Handler {
	if maxSize <= 0 {
		maxSize = maxRequestBody
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxSize {
				writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
					"error": "Request body too large",
				})
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxSize)
			next.ServeHTTP(w, r)
		})
	}
}
