package main

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zhanghaozz/nfs-ganesha/cmd"
	"github.com/zhanghaozz/nfs-ganesha/internal/api"
	"github.com/zhanghaozz/nfs-ganesha/internal/config"
	"github.com/zhanghaozz/nfs-ganesha/internal/events"
	"github.com/zhanghaozz/nfs-ganesha/internal/log"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/component"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/facility"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/format"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/level"
	"github.com/zhanghaozz/nfs-ganesha/internal/signals"
)

// Options for the CLI.
type Options struct {
	Config   string `help:"Path to logging configuration file" short:"c" default:""`
	Port     string `help:"Admin API listen address" short:"p" default:":8090" env:"PORT"`
	LogPath  string `help:"Log file path; becomes the default facility" short:"L" default:"" env:"LOG_PATH"`
	Debug    string `help:"Initial level for all components, e.g. DEBUG" short:"N" default:"" env:"DEBUG_LEVEL"`
	TailSize int    `help:"Rendered lines retained for the tail endpoint" default:"200" env:"TAIL_SIZE"`
	Watch    bool   `help:"Reload configuration on file change" default:"true" env:"WATCH"`
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		registry := prometheus.NewRegistry()
		metrics := facility.NewMetrics(registry)
		bus := events.New()

		program := filepath.Base(os.Args[0])
		logger := log.New(program, uint32(time.Now().Unix()), bus, metrics)

		debugLevel := level.Level(-1)
		if opts.Debug != "" {
			lv, ok := level.Parse(opts.Debug)
			if !ok {
				logger.Critf(component.Main, "Invalid debug level (%s) ignored", opts.Debug)
			} else {
				debugLevel = lv
			}
		}

		if err := logger.Init(opts.LogPath, debugLevel); err != nil {
			logger.Fatalf(component.Init, "Could not initialize logging: %v", err)
		}

		binder := config.NewBinder(logger)
		apply := func(cfg *config.Config) {
			errCnt := binder.Apply(cfg)
			bus.Publish(events.ConfigReloadedEvent{
				Path:      opts.Config,
				Errors:    errCnt,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
		}

		var watcher *config.Watcher
		if opts.Config != "" {
			cfg, err := config.Load(opts.Config)
			if err != nil {
				logger.Fatalf(component.Config, "Could not load config: %v", err)
			}
			apply(cfg)

			if opts.Watch {
				watcher = config.NewWatcher(opts.Config, logger)
				watcher.OnReload(apply)
			}
		}

		tail, err := logger.CreateMemoryFacility("MEMORY", opts.TailSize, level.FullDebug, format.VerbComponent)
		if err != nil {
			logger.Critf(component.Init, "Could not create MEMORY facility: %v", err)
		} else if err := logger.EnableFacility("MEMORY"); err != nil {
			logger.Critf(component.Init, "Could not enable MEMORY facility: %v", err)
		}

		sig := signals.Arm(logger)

		server := api.NewServer(&api.Options{
			Logger: logger,
			Bus:    bus,
			Tail:   tail,
			PrometheusHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{
				Registry: registry,
			}),
		})

		hooks.OnStart(func() {
			if watcher != nil {
				if err := watcher.Start(); err != nil {
					logger.Critf(component.Config, "Could not start config watcher: %v", err)
				}
			}
			logger.Eventf(component.Init, "%s started, admin API on %s", program, opts.Port)
			if err := server.Start(opts.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatalf(component.Main, "Admin API server failed: %v", err)
			}
		})

		hooks.OnStop(func() {
			logger.Eventf(component.Main, "Shutting down")
			if err := server.Stop(); err != nil {
				logger.Critf(component.Main, "Error stopping admin API server: %v", err)
			}
			if watcher != nil {
				if err := watcher.Stop(); err != nil {
					logger.Critf(component.Config, "Error stopping config watcher: %v", err)
				}
			}
			sig.Stop()
			logger.Cleanup()
		})
	})

	cli.Root().AddCommand(cmd.CreateValidateCmd())

	cli.Run()
}
