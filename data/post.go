// Package data defines posts and comments, the read-only repository
// contract the application core consumes, and the implementations of
// that contract: an HTTP client for a JSON posts API and an in-process
// fixture API serving canned data.
package data

import (
	"context"
	"errors"
	"fmt"
)

// ErrFetchFailed is the only failure kind a Repository reports. Callers
// distinguish success from failure; causes are for logs only.
var ErrFetchFailed = errors.New("fetch failed")

// Post is a single post. Posts are immutable once fetched.
type Post struct {
	ID       int    `json:"id" yaml:"id"`
	AuthorID int    `json:"userId" yaml:"userId"`
	Title    string `json:"title" yaml:"title"`
	Body     string `json:"body" yaml:"body"`
}

// Comment is one comment on a post. PostID is not checked against any
// known post.
type Comment struct {
	PostID int    `json:"postId" yaml:"postId"`
	ID     int    `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Email  string `json:"email" yaml:"email"`
	Body   string `json:"body" yaml:"body"`
}

// Repository is the remote data source. Calls are idempotent and
// side-effect free. Every error wraps ErrFetchFailed.
type Repository interface {
	FetchAllPosts(ctx context.Context) ([]Post, error)
	FetchPost(ctx context.Context, id int) (Post, error)
	FetchCommentsForPost(ctx context.Context, id int) ([]Comment, error)
}

func fetchFailed(op string, err error) error {
	return fmt.Errorf("data: %s: %w: %w", op, ErrFetchFailed, err)
}
