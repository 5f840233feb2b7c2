package loop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elizafairlady/go-postview/app"
	"github.com/elizafairlady/go-postview/data"
	"github.com/elizafairlady/go-postview/ui/proto"
)

// gatedRepo serves a fixture but holds each FetchPost until its gate
// is opened.
type gatedRepo struct {
	*data.Fixture
	mu    sync.Mutex
	gates map[int]chan struct{}
}

func newGatedRepo() *gatedRepo {
	return &gatedRepo{Fixture: data.DefaultFixture(), gates: make(map[int]chan struct{})}
}

func (r *gatedRepo) gate(id int) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.gates[id]
	if !ok {
		g = make(chan struct{})
		r.gates[id] = g
	}
	return g
}

func (r *gatedRepo) FetchPost(ctx context.Context, id int) (data.Post, error) {
	select {
	case <-r.gate(id):
	case <-ctx.Done():
		return data.Post{}, ctx.Err()
	}
	return r.Fixture.FetchPost(ctx, id)
}

// failingRepo fails every fetch.
type failingRepo struct{}

var errDown = fmt.Errorf("%w: server down", data.ErrFetchFailed)

func (failingRepo) FetchAllPosts(context.Context) ([]data.Post, error) { return nil, errDown }
func (failingRepo) FetchPost(context.Context, int) (data.Post, error)  { return data.Post{}, errDown }
func (failingRepo) FetchCommentsForPost(context.Context, int) ([]data.Comment, error) {
	return nil, errDown
}

func runUntilIdle(t *testing.T, l *Loop) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, l.Run(ctx))
}

func startLoop(t *testing.T, l *Loop) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})
}

func TestRunLoadsList(t *testing.T) {
	var revs []uint64
	l := New(data.DefaultFixture(), WithStopWhenIdle(), WithNotify(func(tr *proto.Tree) {
		revs = append(revs, tr.Rev)
	}))
	runUntilIdle(t, l)

	s := l.State()
	assert.Equal(t, app.List{}, s.Route)
	posts, ok := s.Posts.Get()
	require.True(t, ok)
	assert.Len(t, posts, 4)

	tree := l.Tree()
	require.NotNil(t, tree)
	assert.Equal(t, "4", tree.Nodes["row-3-detail"].Props["post"])
	assert.Equal(t, []uint64{1, 2}, revs)
	assert.True(t, l.Idle())
}

func TestRunDispatchedBeforeStart(t *testing.T) {
	for _, discard := range []bool{false, true} {
		t.Run(fmt.Sprintf("discard=%v", discard), func(t *testing.T) {
			l := New(data.DefaultFixture(),
				WithStopWhenIdle(),
				WithController(app.Controller{DiscardStale: discard}))
			l.Dispatch(app.NavigateToDetail{PostID: 1})
			runUntilIdle(t, l)

			s := l.State()
			assert.Equal(t, app.Detail{PostID: 1}, s.Route)
			p, ok := s.Post.Get()
			require.True(t, ok)
			assert.Equal(t, 1, p.ID)
			cs, ok := s.Comments.Get()
			require.True(t, ok)
			assert.Len(t, cs, 2)
			// The initial list fetch completes after the navigation.
			assert.Equal(t, !discard, s.Posts.IsReady())
		})
	}
}

func TestRunFailuresKeepLoading(t *testing.T) {
	l := New(failingRepo{}, WithStopWhenIdle())
	l.Dispatch(app.NavigateToDetail{PostID: 3})
	runUntilIdle(t, l)

	s := l.State()
	assert.False(t, s.Posts.IsReady())
	assert.False(t, s.Post.IsReady())
	assert.False(t, s.Comments.IsReady())
	tree := l.Tree()
	assert.Equal(t, "loading...", tree.Nodes["post-loading"].Props["text"])
	assert.Equal(t, "loading...", tree.Nodes["comments-loading"].Props["text"])
}

func TestStaleCompletion(t *testing.T) {
	for _, tt := range []struct {
		discard bool
		want    int
	}{
		{discard: false, want: 3},
		{discard: true, want: 4},
	} {
		t.Run(fmt.Sprintf("discard=%v", tt.discard), func(t *testing.T) {
			repo := newGatedRepo()
			l := New(repo, WithController(app.Controller{DiscardStale: tt.discard}))
			startLoop(t, l)

			l.Dispatch(app.NavigateToDetail{PostID: 3})
			l.Dispatch(app.NavigateToDetail{PostID: 4})
			close(repo.gate(4))
			require.Eventually(t, func() bool {
				p, ok := l.State().Post.Get()
				return ok && p.ID == 4
			}, 5*time.Second, 5*time.Millisecond)

			// Post 3 answers last, after the user has moved on.
			close(repo.gate(3))
			require.Eventually(t, l.Idle, 5*time.Second, 5*time.Millisecond)
			require.Eventually(t, func() bool {
				p, _ := l.State().Post.Get()
				return p.ID == tt.want
			}, 5*time.Second, 5*time.Millisecond)
			assert.Equal(t, app.Detail{PostID: 4}, l.State().Route)
		})
	}
}

func TestActTranslatesClicks(t *testing.T) {
	l := New(data.DefaultFixture(), WithStopWhenIdle())
	ok := l.Act(proto.Click("row-1-detail", map[string]string{"on": app.OnDetail, "post": "2"}))
	require.True(t, ok)
	assert.False(t, l.Act(&proto.Action{Kind: "click", KVs: map[string]string{"id": "heading"}}))
	runUntilIdle(t, l)

	assert.Equal(t, app.Detail{PostID: 2}, l.State().Route)
	assert.Equal(t, "Post: 2", l.Tree().Nodes["heading"].Props["text"])
}

func TestRunCanceled(t *testing.T) {
	repo := newGatedRepo()
	l := New(repo)
	l.Dispatch(app.NavigateToDetail{PostID: 1})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	require.Eventually(t, func() bool {
		return l.State().Route == app.Detail{PostID: 1}
	}, 5*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, l.State().Post.IsReady())
}

func TestPerform(t *testing.T) {
	ctx := context.Background()
	f := data.DefaultFixture()

	ev, err := Perform(ctx, f, app.FetchPost{PostID: 2})
	require.NoError(t, err)
	pl, ok := ev.(app.PostLoaded)
	require.True(t, ok)
	assert.Equal(t, 2, pl.PostID)
	assert.Equal(t, "qui est esse", pl.Result.Value.Title)

	ev, err = Perform(ctx, f, app.FetchPost{PostID: 99})
	assert.ErrorIs(t, err, data.ErrFetchFailed)
	assert.ErrorIs(t, ev.(app.PostLoaded).Result.Err, data.ErrFetchFailed)

	ev, err = Perform(ctx, f, app.FetchComments{PostID: 3})
	require.NoError(t, err)
	assert.Len(t, ev.(app.CommentsLoaded).Result.Value, 1)

	ev, err = Perform(ctx, f, nil)
	assert.Nil(t, ev)
	assert.NoError(t, err)
}
