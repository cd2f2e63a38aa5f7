package roundtrip

import "net/http"

// BearerToken returns a middleware that sets "Authorization: Bearer <token>"
// when token returns a non-empty value. Requests that already carry an
// Authorization header are left alone.
func BearerToken(token func() string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return Func(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get("Authorization") == "" {
				if t := token(); t != "" {
					req = req.Clone(req.Context())
					req.Header.Set("Authorization", "Bearer "+t)
				}
			}
			return next.RoundTrip(req)
		})
	}
}

// NoCache returns a middleware that asks intermediaries for a fresh copy of
// GET requests whose path ends with one of paths.
func NoCache(paths ...string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return Func(func(req *http.Request) (*http.Response, error) {
			if req.Method == http.MethodGet && matchesSuffix(req.URL.Path, paths) {
				req = req.Clone(req.Context())
				req.Header.Set("Cache-Control", "no-cache")
				req.Header.Set("Pragma", "no-cache")
			}
			return next.RoundTrip(req)
		})
	}
}

func matchesSuffix(path string, suffixes []string) bool {
	for _, s := range suffixes {
		if len(path) >= len(s) && path[len(path)-len(s):] == s {
			return true
		}
	}
	return false
}
