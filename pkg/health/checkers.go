package health

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/go-faster/errors"
)

// HTTPCheck returns a CheckFunc that reports unhealthy when a GET of url fails
// at the network level or answers with a 5xx status. Client errors count as
// reachable: the endpoint may require a session the check does not have.
func HTTPCheck(client *http.Client, url string) CheckFunc {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return errors.Wrap(err, "create request")
		}
		resp, err := client.Do(req)
		if err != nil {
			return errors.Wrapf(err, "GET %s", url)
		}
		defer func() { _ = resp.Body.Close() }()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

		if resp.StatusCode >= http.StatusInternalServerError {
			return errors.Errorf("GET %s: status %d", url, resp.StatusCode)
		}
		return nil
	}
}

// WritableDirCheck returns a CheckFunc that reports unhealthy when dir cannot
// be created or written to.
func WritableDirCheck(dir string) CheckFunc {
	return func(_ context.Context) error {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return errors.Wrap(err, "create dir")
		}
		f, err := os.CreateTemp(dir, ".probe-*")
		if err != nil {
			return errors.Wrap(err, "write probe")
		}
		name := f.Name()
		_ = f.Close()
		return os.Remove(name)
	}
}
