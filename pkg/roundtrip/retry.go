package roundtrip

import (
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"
)

// RetryConfig controls retries of failed calls.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// WaitMin is the wait before the first retry; it doubles on each retry.
	WaitMin time.Duration
	// WaitMax caps the wait, including waits requested by Retry-After.
	WaitMax time.Duration
}

// Retry returns a middleware that retries network errors, 5xx responses
// (except 501) and 429 with exponential backoff. Requests whose body cannot be
// replayed are sent once.
func Retry(cfg RetryConfig) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return Func(func(req *http.Request) (*http.Response, error) {
			ctx := req.Context()
			for attempt := 0; ; attempt++ {
				resp, err := next.RoundTrip(req)
				if attempt >= cfg.MaxRetries || !replayable(req) || !shouldRetry(req, resp, err) {
					return resp, err
				}

				wait := cfg.backoff(attempt+1, resp)
				if resp != nil {
					_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
					_ = resp.Body.Close()
				}

				timer := time.NewTimer(wait)
				select {
				case <-ctx.Done():
					timer.Stop()
					return nil, ctx.Err()
				case <-timer.C:
				}

				if req, err = rewind(req); err != nil {
					return nil, err
				}
			}
		})
	}
}

func (cfg RetryConfig) backoff(retry int, resp *http.Response) time.Duration {
	wait := cfg.WaitMin * time.Duration(1<<uint(retry-1))
	if resp != nil {
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs >= 0 {
			wait = time.Duration(secs) * time.Second
		}
	}
	if cfg.WaitMax > 0 && wait > cfg.WaitMax {
		wait = cfg.WaitMax
	}
	return wait
}

func shouldRetry(req *http.Request, resp *http.Response, err error) bool {
	if err != nil {
		if req.Context().Err() != nil {
			return false
		}
		var netErr net.Error
		return errors.As(err, &netErr)
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return true
	case resp.StatusCode == http.StatusNotImplemented:
		return false
	default:
		return resp.StatusCode >= http.StatusInternalServerError
	}
}

func replayable(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}

func rewind(req *http.Request) (*http.Request, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return req, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, errors.Wrap(err, "rewind body")
	}
	r := req.Clone(req.Context())
	r.Body = body
	return r, nil
}
