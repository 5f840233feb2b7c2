// Command postview browses posts and their comments on a terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/docopt/docopt-go"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/elizafairlady/go-postview/app"
	"github.com/elizafairlady/go-postview/config"
	"github.com/elizafairlady/go-postview/data"
	"github.com/elizafairlady/go-postview/telemetry"
	"github.com/elizafairlady/go-postview/ui"
	"github.com/elizafairlady/go-postview/ui/loop"
	"github.com/elizafairlady/go-postview/ui/theme"
)

const version = "0.1.0"

const usage = `Browse posts and their comments.

Keys: tab/j and shift-tab/k move between buttons, enter opens,
h, esc or backspace go home, q quits.

Usage:
    postview [--config=<file>] [--base-url=<url>] [--discard-stale]
        [--dump] [--format=<fmt>] [--post=<id>] [--wait=<dur>]
    postview -h | --help
    postview --version

Options:
    -h --help         Show this screen.
    --version         Show version.
    --config=<file>   YAML settings file.
    --base-url=<url>  Posts API root, overriding the settings.
    --discard-stale   Drop fetch results for a screen no longer shown.
    --dump            Print the final screen and exit. Implied when
                      stdin or stdout is not a terminal.
    --format=<fmt>    Dump format, text or tree [default: text].
    --post=<id>       Open the detail screen of this post.
    --wait=<dur>      Longest time a dump waits for fetches [default: 30s].`

func main() {
	opts, err := docopt.ParseArgs(usage, os.Args[1:], version)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "postview:", err)
		os.Exit(1)
	}
}

func run(opts docopt.Opts) error {
	path, _ := opts.String("--config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if v, err := opts.String("--base-url"); err == nil {
		cfg.BaseURL = v
	}
	if v, _ := opts.Bool("--discard-stale"); v {
		cfg.DiscardStale = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var start []app.Event
	if v, err := opts.String("--post"); err == nil {
		id, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("--post: %q is not a post id", v)
		}
		start = append(start, app.NavigateToDetail{PostID: id})
	}

	dump, _ := opts.Bool("--dump")
	if !isatty.IsTerminal(os.Stdin.Fd()) || !isatty.IsTerminal(os.Stdout.Fd()) {
		dump = true
	}

	log, err := cfg.Log.NewLogger(!dump)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tracePath string
	if cfg.Trace.Enabled {
		tracePath = cfg.Trace.File
	}
	tp, shutdown, err := telemetry.InitFile(ctx, "postview", version, tracePath)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			log.Warn("trace shutdown", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	repo, err := data.NewHTTPRepository(cfg.BaseURL,
		data.WithTimeout(cfg.Timeout),
		data.WithTracerProvider(tp),
		data.WithMetrics(data.NewMetrics(reg)),
		data.WithLogger(log),
	)
	if err != nil {
		return err
	}
	defer logFetchTotals(log, reg)

	uc := ui.Config{
		Repo: repo,
		Loop: []loop.Option{
			loop.WithController(app.Controller{DiscardStale: cfg.DiscardStale}),
			loop.WithLogger(log),
			loop.WithTracerProvider(tp),
		},
		Start: start,
		Log:   log,
	}
	log.Info("starting",
		zap.String("base_url", cfg.BaseURL),
		zap.Bool("discard_stale", cfg.DiscardStale),
		zap.Bool("dump", dump))

	if !dump {
		uc.Theme = theme.Default()
		return ui.Run(ctx, uc, os.Stdin, os.Stdout)
	}

	format, _ := opts.String("--format")
	waitStr, _ := opts.String("--wait")
	wait, err := time.ParseDuration(waitStr)
	if err != nil {
		return fmt.Errorf("--wait: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	err = ui.Dump(ctx, uc, os.Stdout, format, 0)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// logFetchTotals logs the fetch counters gathered during the session.
func logFetchTotals(log *zap.Logger, reg *prometheus.Registry) {
	mfs, err := reg.Gather()
	if err != nil {
		log.Warn("gather metrics", zap.Error(err))
		return
	}
	for _, mf := range mfs {
		if mf.GetName() != "postview_fetch_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			log.Info("fetches",
				zap.String("labels", strings.Join(labels, ",")),
				zap.Float64("count", m.GetCounter().GetValue()))
		}
	}
}
