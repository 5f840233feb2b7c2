package data

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed fixture.yaml
var defaultFixture []byte

// Fixture is a canned set of posts and comments. It serves as an
// in-process Repository and backs the fixture HTTP API.
type Fixture struct {
	Posts    []Post    `yaml:"posts"`
	Comments []Comment `yaml:"comments"`
}

var _ Repository = (*Fixture)(nil)

// DefaultFixture returns the built-in fixture.
func DefaultFixture() *Fixture {
	f, err := ParseFixture(defaultFixture)
	if err != nil {
		panic(fmt.Sprintf("data: built-in fixture: %v", err))
	}
	return f
}

// LoadFixture reads a YAML fixture file. An empty path yields the
// built-in fixture.
func LoadFixture(path string) (*Fixture, error) {
	if path == "" {
		return DefaultFixture(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("data: read fixture: %w", err)
	}
	return ParseFixture(b)
}

// ParseFixture decodes a YAML fixture. Post ids must be unique.
func ParseFixture(b []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("data: parse fixture: %w", err)
	}
	seen := make(map[int]bool, len(f.Posts))
	for _, p := range f.Posts {
		if seen[p.ID] {
			return nil, fmt.Errorf("data: fixture: duplicate post id %d", p.ID)
		}
		seen[p.ID] = true
	}
	return &f, nil
}

var errNotFound = errors.New("not found")

// FetchAllPosts implements Repository.
func (f *Fixture) FetchAllPosts(ctx context.Context) ([]Post, error) {
	return append([]Post{}, f.Posts...), nil
}

// FetchPost implements Repository.
func (f *Fixture) FetchPost(ctx context.Context, id int) (Post, error) {
	i := slices.IndexFunc(f.Posts, func(p Post) bool { return p.ID == id })
	if i < 0 {
		return Post{}, fetchFailed(fmt.Sprintf("fetch post %d", id), errNotFound)
	}
	return f.Posts[i], nil
}

// FetchCommentsForPost implements Repository. Unknown posts have no
// comments.
func (f *Fixture) FetchCommentsForPost(ctx context.Context, id int) ([]Comment, error) {
	out := []Comment{}
	for _, c := range f.Comments {
		if c.PostID == id {
			out = append(out, c)
		}
	}
	return out, nil
}

// FixtureOption configures the fixture handler.
type FixtureOption func(*fixtureServer)

// WithLatency delays every response by d, or until the request is
// canceled.
func WithLatency(d time.Duration) FixtureOption {
	return func(s *fixtureServer) { s.latency = d }
}

// WithFixtureLogger sets the handler's request logger.
func WithFixtureLogger(l *zap.Logger) FixtureOption {
	return func(s *fixtureServer) { s.log = l }
}

type fixtureServer struct {
	f       *Fixture
	latency time.Duration
	log     *zap.Logger
}

// NewFixtureHandler serves f with the same endpoints HTTPRepository
// consumes. Trailing slashes are accepted.
func NewFixtureHandler(f *Fixture, opts ...FixtureOption) http.Handler {
	s := &fixtureServer{f: f, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	if s.latency > 0 {
		r.Use(s.delay)
	}
	r.Get("/posts", s.listPosts)
	r.Get("/posts/{id}", s.getPost)
	r.Get("/posts/{id}/comments", s.listComments)
	return r
}

func (s *fixtureServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)))
	})
}

func (s *fixtureServer) delay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := time.NewTimer(s.latency)
		defer t.Stop()
		select {
		case <-t.C:
			next.ServeHTTP(w, r)
		case <-r.Context().Done():
		}
	})
}

func (s *fixtureServer) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, _ := s.f.FetchAllPosts(r.Context())
	writeJSON(w, http.StatusOK, posts)
}

func (s *fixtureServer) getPost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad post id"})
		return
	}
	p, err := s.f.FetchPost(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *fixtureServer) listComments(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad post id"})
		return
	}
	comments, _ := s.f.FetchCommentsForPost(r.Context(), id)
	writeJSON(w, http.StatusOK, comments)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
