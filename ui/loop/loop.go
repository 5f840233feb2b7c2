// Package loop hosts the application core. A Loop is the single owner
// of the application state: it applies events one at a time, runs the
// work each transition emits on its own goroutine, feeds completions
// back in as events, and publishes a freshly projected render tree
// after every transition.
package loop

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/elizafairlady/go-postview/app"
	"github.com/elizafairlady/go-postview/data"
	"github.com/elizafairlady/go-postview/ui/proto"
	"github.com/elizafairlady/go-postview/ui/view"
)

// Buffer size of the event channel. Dispatch blocks when it is full.
const eventChSize = 64

// message is one entry of the event channel. done marks the
// completion of a work item, even when ev is nil.
type message struct {
	ev   app.Event
	done bool
}

// Loop runs the update/view cycle.
type Loop struct {
	repo         data.Repository
	ctrl         app.Controller
	log          *zap.Logger
	tracer       trace.Tracer
	notify       func(*proto.Tree)
	stopWhenIdle bool

	events   chan message
	inflight atomic.Int64
	state    atomic.Pointer[app.State]
	tree     atomic.Pointer[proto.Tree]
	rev      uint64 // owned by Run
}

// Option configures a Loop.
type Option func(*Loop)

// WithController sets the transition rules.
func WithController(c app.Controller) Option {
	return func(l *Loop) { l.ctrl = c }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loop) { l.log = log }
}

// WithTracerProvider sets the provider for work spans. The default is
// the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(l *Loop) { l.tracer = tp.Tracer("github.com/elizafairlady/go-postview/ui/loop") }
}

// WithNotify registers f to receive every published tree. f runs on
// the Run goroutine and must not block for long or call Dispatch.
func WithNotify(f func(*proto.Tree)) Option {
	return func(l *Loop) { l.notify = f }
}

// WithStopWhenIdle makes Run return once no work is in flight and no
// event is queued.
func WithStopWhenIdle() Option {
	return func(l *Loop) { l.stopWhenIdle = true }
}

// New returns a Loop fetching from repo. Nothing runs until Run.
func New(repo data.Repository, opts ...Option) *Loop {
	l := &Loop{
		repo:   repo,
		log:    zap.NewNop(),
		tracer: otel.Tracer("github.com/elizafairlady/go-postview/ui/loop"),
		events: make(chan message, eventChSize),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dispatch queues a user event. Events dispatched before Run are
// applied right after the initial state is published.
func (l *Loop) Dispatch(ev app.Event) {
	l.events <- message{ev: ev}
}

// Act translates a host action and dispatches the resulting event. It
// reports whether the action meant anything.
func (l *Loop) Act(a *proto.Action) bool {
	ev, ok := app.EventFromAction(a)
	if ok {
		l.Dispatch(ev)
	}
	return ok
}

// State returns the most recently committed state.
func (l *Loop) State() app.State {
	if s := l.state.Load(); s != nil {
		return *s
	}
	return app.State{}
}

// Tree returns the most recently published tree, or nil before Run.
func (l *Loop) Tree() *proto.Tree {
	return l.tree.Load()
}

// Idle reports whether no work is in flight.
func (l *Loop) Idle() bool {
	return l.inflight.Load() == 0
}

// Run starts from app.Init and processes events until ctx is done, or
// until the loop goes idle when WithStopWhenIdle is set. Work started
// by a transition is never canceled by a later one; only ctx stops it.
func (l *Loop) Run(ctx context.Context) error {
	state, work := app.Init()
	l.commit(state)
	l.start(ctx, work)
	l.log.Info("loop started", zap.Stringer("route", state.Route))

	for {
		if l.stopWhenIdle && l.Idle() && len(l.events) == 0 {
			l.log.Info("loop idle, stopping", zap.Uint64("rev", l.rev))
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m := <-l.events:
			if m.done {
				l.inflight.Add(-1)
			}
			if m.ev == nil {
				continue
			}
			prev := state.Route
			state, work = l.ctrl.Update(state, m.ev)
			if state.Route != prev {
				l.log.Debug("route changed", zap.Stringer("from", prev), zap.Stringer("to", state.Route))
			}
			l.commit(state)
			l.start(ctx, work)
		}
	}
}

// commit publishes s and its projection.
func (l *Loop) commit(s app.State) {
	l.state.Store(&s)
	l.rev++
	t := view.Serialize(app.Project(s), l.rev)
	l.tree.Store(t)
	if l.notify != nil {
		l.notify(t)
	}
}

func (l *Loop) start(ctx context.Context, work []app.Work) {
	for _, w := range work {
		l.inflight.Add(1)
		go l.perform(ctx, w)
	}
}

func (l *Loop) perform(ctx context.Context, w app.Work) {
	id := uuid.NewString()
	log := l.log.With(zap.String("request_id", id), zap.Stringer("work", w))
	ctx, span := l.tracer.Start(ctx, "loop.perform", trace.WithAttributes(
		attribute.String("postview.request_id", id),
		attribute.String("postview.work", w.String()),
	))
	ev, err := Perform(ctx, l.repo, w)
	if err != nil {
		// Failures only reach the log; the controller drops them.
		log.Warn("work failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		log.Debug("work done")
	}
	span.End()

	select {
	case l.events <- message{ev: ev, done: true}:
	case <-ctx.Done():
	}
}

// Perform runs w against repo and returns the completion event with
// the fetch error, if any, also returned on its own.
func Perform(ctx context.Context, repo data.Repository, w app.Work) (app.Event, error) {
	switch w := w.(type) {
	case app.FetchAllPosts:
		v, err := repo.FetchAllPosts(ctx)
		return app.PostsLoaded{Result: app.Result[[]data.Post]{Value: v, Err: err}}, err
	case app.FetchPost:
		v, err := repo.FetchPost(ctx, w.PostID)
		return app.PostLoaded{PostID: w.PostID, Result: app.Result[data.Post]{Value: v, Err: err}}, err
	case app.FetchComments:
		v, err := repo.FetchCommentsForPost(ctx, w.PostID)
		return app.CommentsLoaded{PostID: w.PostID, Result: app.Result[[]data.Comment]{Value: v, Err: err}}, err
	}
	return nil, nil
}
