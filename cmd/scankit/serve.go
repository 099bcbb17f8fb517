package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/scankit/pkg/httpserver"
	"github.com/dmitrymomot/scankit/pkg/logger"
	"github.com/dmitrymomot/scankit/pkg/scanapi"
	"github.com/dmitrymomot/scankit/pkg/scanspec"
)

// loadTimeout bounds a single read of the machine document.
const loadTimeout = 30 * time.Second

type serveCommand struct {
	*cli
}

func registerServe(app *kingpin.Application, c *cli) {
	cmd := &serveCommand{cli: c}
	app.Command("serve", "Serve machines over HTTP. Configured through SCANKIT_* environment variables.").Action(cmd.run)
}

func (cmd *serveCommand) run(_ *kingpin.ParseContext) error {
	cfg, err := cmd.loadConfig()
	if err != nil {
		return err
	}
	log, err := cmd.newLogger(cfg, false)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, err := newSource(ctx, cfg)
	if err != nil {
		return err
	}
	lib := &liveLibrary{
		src:   src,
		name:  cfg.SpecName,
		cache: scanspec.NewCache(8, scanspec.NewRegistry()),
		log:   log.With(logger.Component("loader"), logger.Source(cfg.SpecName)),
	}
	if err := lib.reload(ctx); err != nil {
		return err
	}
	if cfg.ReloadInterval > 0 {
		go lib.watch(ctx, cfg.ReloadInterval)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	api := scanapi.New(lib,
		scanapi.WithLogger(log),
		scanapi.WithMetrics(reg),
		scanapi.WithMaxSteps(cfg.MaxSteps),
		scanapi.WithMaxBodySize(cfg.MaxBodySize),
	)

	server := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(addr string) {
			log.Info("serving machines", slog.String("addr", addr), slog.Any("machines", lib.Names()))
		}),
		httpserver.WithStopHook(cancel),
	)
	return server.Run(ctx, api.Router())
}

func newSource(ctx context.Context, cfg appConfig) (scanspec.Source, error) {
	if cfg.S3.Bucket != "" {
		return scanspec.NewS3Source(ctx, cfg.S3)
	}
	return scanspec.NewDirSource(cfg.SpecDir)
}

// liveLibrary serves the most recently loaded library. A failed reload keeps
// the previous one.
type liveLibrary struct {
	src     scanspec.Source
	name    string
	cache   *scanspec.Cache
	log     *slog.Logger
	current atomic.Pointer[scanspec.Library]
}

func (l *liveLibrary) Machine(name string) (*scanspec.Machine, error) {
	lib := l.current.Load()
	if lib == nil {
		return nil, fmt.Errorf("%w: '%s'", scanspec.ErrUnknownMachine, name)
	}
	return lib.Machine(name)
}

func (l *liveLibrary) Names() []string {
	lib := l.current.Load()
	if lib == nil {
		return nil
	}
	return lib.Names()
}

func (l *liveLibrary) reload(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	lib, err := l.cache.Load(ctx, l.src, l.name)
	if err != nil {
		return err
	}
	if prev := l.current.Swap(lib); prev != lib {
		l.log.InfoContext(ctx, "machines loaded", slog.Int("count", lib.Len()))
	}
	return nil
}

func (l *liveLibrary) watch(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := l.reload(ctx); err != nil {
				l.log.WarnContext(ctx, "reload failed, keeping previous machines", logger.Error(err))
			}
		}
	}
}
