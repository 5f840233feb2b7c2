package app

import (
	"fmt"

	"github.com/elizafairlady/go-postview/data"
)

// Event is an input to Update: a navigation request from the user or
// the completion of a work item.
type Event interface {
	isEvent()
}

// Result is the outcome of a fetch. Err non-nil means the fetch failed
// and Value is meaningless.
type Result[T any] struct {
	Value T
	Err   error
}

// Ok returns a successful result.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Failed returns a failed result.
func Failed[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

// NavigateToList asks for the list screen.
type NavigateToList struct{}

// NavigateToDetail asks for the detail screen of a post.
type NavigateToDetail struct {
	PostID int
}

// PostsLoaded completes FetchAllPosts.
type PostsLoaded struct {
	Result Result[[]data.Post]
}

// PostLoaded completes FetchPost. PostID echoes the request.
type PostLoaded struct {
	PostID int
	Result Result[data.Post]
}

// CommentsLoaded completes FetchComments. PostID echoes the request.
type CommentsLoaded struct {
	PostID int
	Result Result[[]data.Comment]
}

func (NavigateToList) isEvent()   {}
func (NavigateToDetail) isEvent() {}
func (PostsLoaded) isEvent()      {}
func (PostLoaded) isEvent()       {}
func (CommentsLoaded) isEvent()   {}

// Work describes a fetch for the host to run. Its completion comes
// back as the matching *Loaded event.
type Work interface {
	isWork()
	String() string
}

// FetchAllPosts loads the posts list.
type FetchAllPosts struct{}

// FetchPost loads one post.
type FetchPost struct {
	PostID int
}

// FetchComments loads the comments of one post.
type FetchComments struct {
	PostID int
}

func (FetchAllPosts) isWork() {}
func (FetchPost) isWork()     {}
func (FetchComments) isWork() {}

func (FetchAllPosts) String() string   { return "fetch-all-posts" }
func (w FetchPost) String() string     { return fmt.Sprintf("fetch-post(%d)", w.PostID) }
func (w FetchComments) String() string { return fmt.Sprintf("fetch-comments(%d)", w.PostID) }
