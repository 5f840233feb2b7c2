// Command postsd serves canned posts and comments over HTTP, for
// running postview without network access.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docopt/docopt-go"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/elizafairlady/go-postview/data"
)

const version = "0.1.0"

const usage = `Serve canned posts and comments.

Usage:
    postsd [--addr=<addr>] [--fixture=<file>] [--latency=<dur>] [--debug]
    postsd -h | --help
    postsd --version

Options:
    -h --help         Show this screen.
    --version         Show version.
    --addr=<addr>     Listen address [default: 127.0.0.1:8080].
    --fixture=<file>  YAML file with posts and comments. Built-in data
                      is served when omitted.
    --latency=<dur>   Delay every response [default: 0s].
    --debug           Log in development format at debug level.`

func main() {
	opts, err := docopt.ParseArgs(usage, os.Args[1:], version)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "postsd:", err)
		os.Exit(1)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(opts docopt.Opts) error {
	debug, _ := opts.Bool("--debug")
	log, err := newLogger(debug)
	if err != nil {
		return err
	}
	defer log.Sync()

	path, _ := opts.String("--fixture")
	f, err := data.LoadFixture(path)
	if err != nil {
		return err
	}
	latencyStr, _ := opts.String("--latency")
	latency, err := time.ParseDuration(latencyStr)
	if err != nil {
		return fmt.Errorf("--latency: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "postsd",
		Name:      "requests_total",
		Help:      "Fixture API requests by status code and method.",
	}, []string{"code", "method"})
	reg.MustRegister(requests)

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Mount("/", promhttp.InstrumentHandlerCounter(requests,
		data.NewFixtureHandler(f, data.WithLatency(latency), data.WithFixtureLogger(log))))

	addr, _ := opts.String("--addr")
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("listening",
			zap.String("addr", addr),
			zap.Int("posts", len(f.Posts)),
			zap.Int("comments", len(f.Comments)))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
