package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultBaseURL is the public JSON posts API.
const DefaultBaseURL = "https://jsonplaceholder.typicode.com"

const tracerName = "github.com/elizafairlady/go-postview/data"

var errEmptyPost = errors.New("empty post")

// HTTPRepository implements Repository against a JSON API exposing
// GET /posts, GET /posts/{id} and GET /posts/{id}/comments.
type HTTPRepository struct {
	base    *url.URL
	client  *http.Client
	tracer  trace.Tracer
	metrics *Metrics
	log     *zap.Logger
	timeout time.Duration
}

var _ Repository = (*HTTPRepository)(nil)

// Option configures an HTTPRepository.
type Option func(*HTTPRepository)

// WithHTTPClient replaces the default client. The client's transport is
// used as is; wrap it with otelhttp to keep client spans.
func WithHTTPClient(c *http.Client) Option {
	return func(r *HTTPRepository) { r.client = c }
}

// WithTimeout bounds each request. Zero keeps the client's own
// timeout. The client passed to WithHTTPClient is not modified.
func WithTimeout(d time.Duration) Option {
	return func(r *HTTPRepository) { r.timeout = d }
}

// WithTracerProvider sets the provider for repository spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *HTTPRepository) { r.tracer = tp.Tracer(tracerName) }
}

// WithMetrics records fetch metrics.
func WithMetrics(m *Metrics) Option {
	return func(r *HTTPRepository) { r.metrics = m }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *HTTPRepository) { r.log = l }
}

// NewHTTPRepository returns a repository rooted at baseURL.
func NewHTTPRepository(baseURL string, opts ...Option) (*HTTPRepository, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("data: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("data: base url %q: scheme must be http or https", baseURL)
	}
	r := &HTTPRepository{
		base:   u,
		client: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		tracer: otel.Tracer(tracerName),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.timeout > 0 {
		c := *r.client
		c.Timeout = r.timeout
		r.client = &c
	}
	return r, nil
}

// FetchAllPosts implements Repository.
func (r *HTTPRepository) FetchAllPosts(ctx context.Context) ([]Post, error) {
	posts, err := getJSON[[]Post](ctx, r, "FetchAllPosts", "posts")
	if err != nil {
		return nil, fetchFailed("fetch all posts", err)
	}
	return posts, nil
}

// FetchPost implements Repository.
func (r *HTTPRepository) FetchPost(ctx context.Context, id int) (Post, error) {
	p, err := getJSON[Post](ctx, r, "FetchPost", "posts", strconv.Itoa(id))
	if err == nil && p == (Post{}) {
		// Unknown posts may come back as {} rather than a 404.
		err = errEmptyPost
	}
	if err != nil {
		return Post{}, fetchFailed(fmt.Sprintf("fetch post %d", id), err)
	}
	return p, nil
}

// FetchCommentsForPost implements Repository.
func (r *HTTPRepository) FetchCommentsForPost(ctx context.Context, id int) ([]Comment, error) {
	comments, err := getJSON[[]Comment](ctx, r, "FetchCommentsForPost", "posts", strconv.Itoa(id), "comments")
	if err != nil {
		return nil, fetchFailed(fmt.Sprintf("fetch comments for post %d", id), err)
	}
	if comments == nil {
		comments = []Comment{}
	}
	return comments, nil
}

// getJSON issues a GET for the path under the base URL and decodes the
// JSON body into a T.
func getJSON[T any](ctx context.Context, r *HTTPRepository, op string, elem ...string) (v T, err error) {
	u := r.base.JoinPath(elem...)
	ctx, span := r.tracer.Start(ctx, "data."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("url.full", u.String())))
	start := time.Now()
	defer func() {
		r.metrics.observe(op, start, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			r.log.Warn("fetch failed", zap.String("op", op), zap.Stringer("url", u), zap.Error(err))
		} else {
			r.log.Debug("fetched", zap.String("op", op), zap.Stringer("url", u), zap.Duration("took", time.Since(start)))
		}
		span.End()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return v, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return v, err
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return v, fmt.Errorf("unexpected status %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return v, fmt.Errorf("decode response: %w", err)
	}
	return v, nil
}
