// Package ui is the entry point for hosting the post viewer. Run drives
// an interactive terminal; Dump runs headless and prints the final
// screen.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"go.uber.org/zap"
	xterm "golang.org/x/term"

	"github.com/elizafairlady/go-postview/app"
	"github.com/elizafairlady/go-postview/data"
	"github.com/elizafairlady/go-postview/ui/loop"
	"github.com/elizafairlady/go-postview/ui/proto"
	"github.com/elizafairlady/go-postview/ui/term"
	"github.com/elizafairlady/go-postview/ui/theme"
)

// Config describes one session.
type Config struct {
	Repo  data.Repository
	Loop  []loop.Option
	Start []app.Event // dispatched before the initial state is shown
	Theme *theme.Theme
	Log   *zap.Logger
}

func (c Config) logger() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}

func (c Config) newLoop(extra ...loop.Option) *loop.Loop {
	opts := append(slices.Clone(c.Loop), extra...)
	l := loop.New(c.Repo, opts...)
	for _, ev := range c.Start {
		l.Dispatch(ev)
	}
	return l
}

// Run puts in into raw mode and runs the viewer until the user quits
// or ctx is done. in and out must be terminals.
func Run(ctx context.Context, cfg Config, in, out *os.File) error {
	log := cfg.logger()
	fd := int(in.Fd())
	old, err := xterm.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("ui: raw mode: %w", err)
	}
	defer func() {
		if err := xterm.Restore(fd, old); err != nil {
			log.Warn("restore terminal", zap.Error(err))
		}
		io.WriteString(out, "\r\n")
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Only the newest tree matters; older ones are dropped unseen.
	trees := make(chan *proto.Tree, 1)
	l := cfg.newLoop(loop.WithNotify(func(t *proto.Tree) {
		select {
		case <-trees:
		default:
		}
		trees <- t
	}))
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()

	keys := make(chan []term.KeyEvent)
	go readKeys(in, keys, ctx.Done())

	scr := term.NewScreen(cfg.Theme)
	scr.Shortcuts['h'] = app.HomeID
	scr.Back = app.HomeID
	paint := func() {
		// The size is read on every paint so resizes need no signal.
		if w, h, err := xterm.GetSize(int(out.Fd())); err == nil {
			scr.SetSize(w, h)
		}
		if err := scr.Paint(out); err != nil {
			log.Warn("paint", zap.Error(err))
		}
	}

	for {
		select {
		case err := <-errc:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case t := <-trees:
			scr.Update(t)
			paint()
		case ks, ok := <-keys:
			if !ok {
				cancel()
				keys = nil
				continue
			}
			for _, k := range ks {
				a, quit := scr.Handle(k)
				if quit {
					log.Debug("quit", zap.String("key", k.Name()))
					cancel()
					break
				}
				if a != nil {
					log.Debug("action", zap.String("action", proto.SerializeAction(a)))
					l.Act(a)
				}
			}
			paint()
		}
	}
}

// readKeys decodes in until it fails or done is closed. A pending Read
// is abandoned on exit.
func readKeys(in io.Reader, keys chan<- []term.KeyEvent, done <-chan struct{}) {
	defer close(keys)
	buf := make([]byte, 256)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			select {
			case keys <- term.DecodeKeys(buf[:n]):
			case <-done:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// Dump output formats.
const (
	FormatText = "text" // the screen as plain lines
	FormatTree = "tree" // the serialized render tree
)

// Dump runs the viewer without a terminal until no fetch is in flight
// and writes the final screen to w. When ctx expires first, the screen
// as it stands is written and no error is returned. width wraps text;
// zero disables wrapping.
func Dump(ctx context.Context, cfg Config, w io.Writer, format string, width int) error {
	if format != FormatText && format != FormatTree {
		return fmt.Errorf("ui: unknown dump format %q", format)
	}
	l := cfg.newLoop(loop.WithStopWhenIdle())
	switch err := l.Run(ctx); {
	case errors.Is(err, context.DeadlineExceeded):
		cfg.logger().Info("dump: deadline reached with fetches pending")
	case err != nil:
		return err
	}
	t := l.Tree()
	if t == nil {
		return errors.New("ui: no tree")
	}
	var out string
	switch format {
	case FormatTree:
		out = proto.SerializeTree(t)
	default:
		out = term.Text(t, width)
	}
	_, err := io.WriteString(w, out)
	return err
}
