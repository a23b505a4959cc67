package httpx

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"cakeshop/internal/common/logger"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LogMiddleware tags each request with an id and logs it once served.
func LogMiddleware(lg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", id)
			r = r.WithContext(logger.WithRequestID(r.Context(), id))

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)

			lg.For(r.Context()).Info("http_request", map[string]any{
				"method":      r.Method,
				"url":         r.URL.String(),
				"remoteAddr":  r.RemoteAddr,
				"userAgent":   r.UserAgent(),
				"status":      rec.status,
				"duration_ms": time.Since(start).Milliseconds(),
			})
		})
	}
}

// Recover turns a handler panic into a 500 JSON body.
func Recover(lg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					err := fmt.Errorf("panic: %v", v)
					lg.For(r.Context()).Error("http_panic", err, map[string]any{"url": r.URL.String()})
					WriteError(w, err)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
