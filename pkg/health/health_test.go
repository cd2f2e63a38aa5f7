package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passingCheck() CheckFunc {
	return func(_ context.Context) error {
		return nil
	}
}

func failingCheck(msg string) CheckFunc {
	return func(_ context.Context) error {
		return errors.New(msg)
	}
}

func TestRun_AllPassing(t *testing.T) {
	c := New()
	c.Add("check1", time.Second, passingCheck())
	c.Add("check2", time.Second, passingCheck())

	results := c.Run(context.Background())
	require.Len(t, results, 2)
	assert.Equal(t, "check1", results[0].Name)
	assert.Equal(t, "check2", results[1].Name)
	assert.True(t, Healthy(results))
}

func TestRun_FailingCheck(t *testing.T) {
	c := New()
	c.Add("api", time.Second, failingCheck("connection refused"))
	c.Add("disk", time.Second, passingCheck())

	results := c.Run(context.Background())
	require.Len(t, results, 2)
	assert.False(t, results[0].OK())
	assert.EqualError(t, results[0].Err, "connection refused")
	assert.True(t, results[1].OK())
	assert.False(t, Healthy(results))
}

func TestRun_Timeout(t *testing.T) {
	c := New()
	c.Add("slow", 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	start := time.Now()
	results := c.Run(context.Background())
	assert.Less(t, time.Since(start), time.Second)
	require.ErrorIs(t, results[0].Err, context.DeadlineExceeded)
}

func TestRun_Concurrent(t *testing.T) {
	c := New()
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	for _, name := range []string{"a", "b"} {
		c.Add(name, time.Second, func(_ context.Context) error {
			started <- struct{}{}
			<-release
			return nil
		})
	}

	done := make(chan []Result)
	go func() { done <- c.Run(context.Background()) }()

	for range 2 {
		select {
		case <-started:
		case <-time.After(time.Second):
			t.Fatal("checks did not run concurrently")
		}
	}
	close(release)
	assert.True(t, Healthy(<-done))
}

func TestRun_Panic(t *testing.T) {
	c := New()
	c.Add("boom", time.Second, func(_ context.Context) error {
		panic("bad check")
	})

	results := c.Run(context.Background())
	require.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "bad check")
}

func TestHealthy_Empty(t *testing.T) {
	assert.True(t, Healthy(New().Run(context.Background())))
}

func TestHTTPCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "ok", status: http.StatusOK},
		{name: "unauthorized is reachable", status: http.StatusUnauthorized},
		{name: "server error", status: http.StatusBadGateway, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			err := HTTPCheck(srv.Client(), srv.URL)(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestHTTPCheck_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	require.Error(t, HTTPCheck(nil, url)(context.Background()))
}

func TestWritableDirCheck(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, WritableDirCheck(dir)(context.Background()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe file removed")

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	require.Error(t, WritableDirCheck(filepath.Join(file, "sub"))(context.Background()))
}
