package ui

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elizafairlady/go-postview/app"
	"github.com/elizafairlady/go-postview/data"
	"github.com/elizafairlady/go-postview/ui/loop"
	"github.com/elizafairlady/go-postview/ui/proto"
	"github.com/elizafairlady/go-postview/ui/term"
)

// stuckRepo serves posts but never answers comment fetches.
type stuckRepo struct{ *data.Fixture }

func (stuckRepo) FetchCommentsForPost(ctx context.Context, _ int) ([]data.Comment, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func dump(t *testing.T, cfg Config, format string) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var buf bytes.Buffer
	require.NoError(t, Dump(ctx, cfg, &buf, format, 0))
	return buf.String()
}

func TestDumpList(t *testing.T) {
	out := dump(t, Config{Repo: data.DefaultFixture()}, FormatText)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "[Home]", lines[0])
	assert.Equal(t, "Home", lines[1])
	assert.Equal(t, "  qui est esse [Detail]", lines[3])
}

func TestDumpDetail(t *testing.T) {
	cfg := Config{
		Repo:  data.DefaultFixture(),
		Start: []app.Event{app.NavigateToDetail{PostID: 1}},
		Loop:  []loop.Option{loop.WithController(app.Controller{DiscardStale: true})},
	}
	out := dump(t, cfg, FormatText)
	assert.Contains(t, out, "Post: 1\n")
	assert.Contains(t, out, "  id: 1\n")
	assert.Contains(t, out, "  Comments:\n")
	assert.Contains(t, out, "    email: Eliseo@gardner.biz\n")
	assert.NotContains(t, out, "[Detail]")
}

func TestDumpTree(t *testing.T) {
	out := dump(t, Config{Repo: data.DefaultFixture()}, FormatTree)
	tree, err := proto.ParseTree(out)
	require.NoError(t, err)
	assert.Equal(t, "root", tree.Root)
	assert.Equal(t, "2", tree.Nodes["row-1-detail"].Props["post"])
	assert.Equal(t, out, proto.SerializeTree(tree))
}

func TestDumpDeadline(t *testing.T) {
	cfg := Config{
		Repo:  stuckRepo{data.DefaultFixture()},
		Start: []app.Event{app.NavigateToDetail{PostID: 2}},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	var buf bytes.Buffer
	require.NoError(t, Dump(ctx, cfg, &buf, FormatText, 0))
	assert.Contains(t, buf.String(), "title: qui est esse")
	assert.Contains(t, buf.String(), "loading...")
}

func TestDumpBadFormat(t *testing.T) {
	err := Dump(context.Background(), Config{Repo: data.DefaultFixture()}, io.Discard, "json", 0)
	assert.ErrorContains(t, err, "unknown dump format")
}

func TestReadKeys(t *testing.T) {
	keys := make(chan []term.KeyEvent)
	done := make(chan struct{})
	go readKeys(strings.NewReader("j\r"), keys, done)

	var got []term.KeyEvent
	for ks := range keys {
		got = append(got, ks...)
	}
	assert.Equal(t, []term.KeyEvent{{Key: term.KeyRune, Rune: 'j'}, {Key: term.KeyEnter}}, got)
}
