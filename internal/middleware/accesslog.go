// internal/middleware/accesslog.go
//
// Structured access logging.
//
// One INFO line per completed request, enriched with whatever the
// requestinfo middleware collected (UA family, device class, bot flag,
// country).  Sits directly below requestinfo in the chain so the context
// value is always populated.
package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sriox/platform/internal/requestinfo"
)

// AccessLog logs method, path, status, byte count, duration, and client
// fingerprint for every request.
func AccessLog(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if info := requestinfo.FromContext(r.Context()); info != nil {
				fields = append(fields,
					"ip", info.Geo.IP,
					"country", info.Geo.CountryISO,
					"browser", info.UA.Browser,
					"device", info.UA.Device,
					"bot", info.UA.IsBot,
				)
			}
			log.Infow("request", fields...)
		})
	}
}
