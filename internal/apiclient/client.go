// Package apiclient is a typed client for the storefront REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/xenking/kart-storefront/pkg/roundtrip"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the API origin, e.g. https://api.example.com.
	BaseURL string
	// Token returns the bearer token for the current session, or "".
	Token func() string
	// Timeout bounds a whole call including retries. 0 disables it.
	Timeout time.Duration

	Retry    roundtrip.RetryConfig
	Breaker  roundtrip.BreakerConfig
	Throttle roundtrip.ThrottleConfig

	// Transport is the base transport. Defaults to http.DefaultTransport.
	Transport      http.RoundTripper
	Logger         *zap.Logger
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Client calls the storefront API.
type Client struct {
	base *url.URL
	http *http.Client
	sf   singleflight.Group
}

// New creates a Client.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse base URL")
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("base URL %q must be absolute", opts.BaseURL)
	}
	if opts.Token == nil {
		opts.Token = func() string { return "" }
	}
	lg := opts.Logger
	if lg == nil {
		lg = zap.NewNop()
	}
	if opts.Breaker.FailureRatio <= 0 {
		opts.Breaker = roundtrip.DefaultBreakerConfig(opts.Breaker.Name)
	}
	if opts.Breaker.Name == "" {
		opts.Breaker.Name = base.Host
	}

	var otelOpts []otelhttp.Option
	if opts.TracerProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithTracerProvider(opts.TracerProvider))
	}
	if opts.MeterProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithMeterProvider(opts.MeterProvider))
	}

	transport := roundtrip.Wrap(opts.Transport,
		roundtrip.RequestID(),
		roundtrip.BearerToken(opts.Token),
		roundtrip.NoCache("/api/wishlist"),
		roundtrip.LogRequests(),
		roundtrip.Breaker(opts.Breaker, lg),
		roundtrip.Throttle(opts.Throttle),
		roundtrip.Retry(opts.Retry),
	)

	return &Client{
		base: base,
		http: &http.Client{
			Transport: otelhttp.NewTransport(transport, otelOpts...),
			Timeout:   opts.Timeout,
		},
	}, nil
}

// BaseURL returns the API origin the client talks to.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) url(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends a JSON request and decodes a JSON response into out, if non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var (
		body        io.Reader
		contentType string
	)
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		body, contentType = bytes.NewReader(data), "application/json"
	}
	return c.send(ctx, method, path, query, body, contentType, out)
}

// formFile is a file part of a multipart request.
type formFile struct {
	field, name string
	data        []byte
}

// doForm sends fields, and file when it has data, as multipart form data.
func (c *Client) doForm(ctx context.Context, method, path string, fields [][2]string, file formFile, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return errors.Wrapf(err, "write field %s", f[0])
		}
	}
	if len(file.data) > 0 {
		fw, err := mw.CreateFormFile(file.field, file.name)
		if err != nil {
			return errors.Wrap(err, "create file part")
		}
		if _, err := fw.Write(file.data); err != nil {
			return errors.Wrap(err, "write file part")
		}
	}
	if err := mw.Close(); err != nil {
		return errors.Wrap(err, "close form")
	}
	return c.send(ctx, method, path, nil, bytes.NewReader(buf.Bytes()), mw.FormDataContentType(), out)
}

// send performs the request. body must be a *bytes.Reader or nil so retries
// can replay it.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), body)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return parseError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrapf(err, "decode %s response", path)
	}
	return nil
}

// isArray reports whether raw holds a JSON array.
func isArray(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	return len(v) > 0 && v[0] == '['
}
