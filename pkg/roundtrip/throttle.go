package roundtrip

import (
	"net/http"
	"sync"
	"time"
)

// ThrottleConfig configures the outbound sliding window limiter.
type ThrottleConfig struct {
	// Max is the maximum number of calls per window and host. 0 disables it.
	Max int
	// Window is the duration of each sliding window.
	Window time.Duration
}

// window tracks call counts across two adjacent windows.
type window struct {
	prevCount float64
	prevStart time.Time
	currCount float64
	currStart time.Time
}

type limiter struct {
	cfg     ThrottleConfig
	now     func() time.Time
	mu      sync.Mutex
	windows map[string]*window
}

func newLimiter(cfg ThrottleConfig) *limiter {
	return &limiter{
		cfg:     cfg,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// reserve records a call for key if it fits in the limit. Otherwise it
// returns the time at which the current window ends.
func (l *limiter) reserve(key string, now time.Time) (resetAt time.Time, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, found := l.windows[key]
	if !found {
		w = &window{currStart: now}
		l.windows[key] = w
	}

	if now.Sub(w.currStart) >= l.cfg.Window {
		w.prevCount = w.currCount
		w.prevStart = w.currStart
		w.currCount = 0
		w.currStart = now.Truncate(l.cfg.Window)
		if now.Sub(w.prevStart) >= 2*l.cfg.Window {
			w.prevCount = 0
		}
	}

	// Weight the previous window by how much of it overlaps the sliding one.
	elapsed := now.Sub(w.currStart)
	overlap := 1.0 - elapsed.Seconds()/l.cfg.Window.Seconds()
	if overlap < 0 {
		overlap = 0
	}
	resetAt = w.currStart.Add(l.cfg.Window)
	if w.prevCount*overlap+w.currCount >= float64(l.cfg.Max) {
		return resetAt, false
	}
	w.currCount++
	return resetAt, true
}

// Throttle returns a middleware that holds outbound calls back once a host
// has seen Max calls within the sliding window. Calls wait for room instead
// of failing, unless their context ends first.
func Throttle(cfg ThrottleConfig) Middleware {
	if cfg.Max <= 0 || cfg.Window <= 0 {
		return func(next http.RoundTripper) http.RoundTripper { return next }
	}
	l := newLimiter(cfg)
	return l.middleware
}

func (l *limiter) middleware(next http.RoundTripper) http.RoundTripper {
	return Func(func(req *http.Request) (*http.Response, error) {
		ctx := req.Context()
		for {
			resetAt, ok := l.reserve(req.URL.Host, l.now())
			if ok {
				return next.RoundTrip(req)
			}
			wait := resetAt.Sub(l.now())
			if wait <= 0 {
				wait = time.Millisecond
			}
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	})
}
