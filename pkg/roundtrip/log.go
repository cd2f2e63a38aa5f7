package roundtrip

import (
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// LogRequests returns a middleware that logs every outbound call with the
// logger carried in the request context.
func LogRequests() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return Func(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)

			lg := zctx.From(req.Context()).With(
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.String("request_id", req.Header.Get(HeaderRequestID)),
				zap.Duration("duration", time.Since(start)),
			)
			switch {
			case err != nil:
				lg.Warn("Request failed", zap.Error(err))
			case resp.StatusCode >= http.StatusInternalServerError:
				lg.Warn("Request completed", zap.Int("status", resp.StatusCode))
			default:
				lg.Debug("Request completed", zap.Int("status", resp.StatusCode))
			}
			return resp, err
		})
	}
}
