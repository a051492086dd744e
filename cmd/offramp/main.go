package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bft-labs/offramp"
	"github.com/bft-labs/offramp/internal/cliconfig"
	"github.com/bft-labs/offramp/pkg/log"
)

const helpDescription = `
Ship newline-delimited JSON events from stdin to a remote backend,
falling back permanently to local spill files when the backend is
unreachable.

Highlights:
  - One connectivity probe at startup; a failure commits the run to
    local-only operation with no retry storms and no log spam.
  - Events always succeed locally: a dead backend never breaks the pipe.
  - Spill files are plain JSONL named {component}_{timestamp}.json,
    easy to inspect or re-ship with standard tools.
  - Configure via file ($HOME/.offramp/config.toml), OFFRAMP_* env
    vars, or flags; flush interval is hot-reloaded on file change.
`

var exampleUsage = strings.TrimSpace(`
  tail -f events.jsonl | offramp --component telemetry --service-url https://ingest.example.com --auth-key <api-key>
  offramp --component audit --force-local < audit.jsonl
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	logger := log.NewZerologAdapter()

	root := &cobra.Command{
		Use:     "offramp",
		Short:   "Ship JSON events to a remote backend with a permanent local fallback",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.offramp/config.toml),
			// then env, then flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			// Log configuration (masking the API key)
			logCfg := cfg
			if len(logCfg.AuthKey) > 0 {
				logCfg.AuthKey = "*****"
			}
			logger.Info("configuration", log.Any("config", logCfg))

			return run(cmd.Context(), cfg, cfgFile, logger)
		},
	}

	flags := root.Flags()
	flags.StringVar(&cfgPath, "config", "", "path to TOML config file (default $HOME/.offramp/config.toml)")
	flags.StringVar(&cfg.Component, "component", cfg.Component, "component name keying spill files and metrics")
	flags.StringVar(&cfg.LocalDir, "local-dir", cfg.LocalDir, "spill directory (default $HOME/.offramp/<component>)")
	flags.StringVar(&cfg.ServiceURL, "service-url", cfg.ServiceURL, "remote backend base URL; empty runs local-only")
	flags.StringVar(&cfg.AuthKey, "auth-key", cfg.AuthKey, "bearer token for the remote backend")
	flags.IntVar(&cfg.BufferSize, "buffer-size", cfg.BufferSize, "in-memory buffer capacity before an implicit flush")
	flags.DurationVar(&cfg.FlushInterval, "flush-interval", cfg.FlushInterval, "background flush interval")
	flags.DurationVar(&cfg.ProbeTimeout, "probe-timeout", cfg.ProbeTimeout, "timeout for the single connectivity probe")
	flags.DurationVar(&cfg.SendTimeout, "send-timeout", cfg.SendTimeout, "timeout for each remote send")
	flags.BoolVar(&cfg.ForceLocal, "force-local", cfg.ForceLocal, "skip the probe and run local-only")
	flags.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "listen address for /metrics; empty disables")
	flags.BoolVar(&cfg.Once, "once", cfg.Once, "buffer everything and flush once at exit")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("offramp failed", log.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg cliconfig.Config, cfgFile string, logger *log.ZerologAdapter) error {
	svcCfg := cfg.ServiceConfig()
	if cfg.Once {
		svcCfg.FlushInterval = 0
	}

	opts := []offramp.Option{offramp.WithLogger(logger)}
	if cfg.ServiceURL != "" {
		sink := offramp.NewHTTPSink(offramp.HTTPSinkConfig{
			BaseURL:      cfg.ServiceURL,
			AuthKey:      cfg.AuthKey,
			Component:    cfg.Component,
			SendTimeout:  cfg.SendTimeout,
			ProbeTimeout: cfg.ProbeTimeout,
		}, nil, logger)
		opts = append(opts, offramp.WithSink(sink))
	}
	if cfg.MetricsAddr != "" {
		opts = append(opts, offramp.WithMetrics())
	}

	svc, err := offramp.New(svcCfg, opts...)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	if cfgFile != "" {
		watcher := cliconfig.NewWatcher(cfgFile, svc.SetFlushInterval, logger)
		go watcher.Run(ctx)
	}

	if err := readEvents(ctx, svc, logger); err != nil {
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	report, err := svc.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("done",
		log.String("mode", report.Mode.String()),
		log.String("path", report.Path.String()),
		log.Int("final_flush_items", report.Delivered),
		log.Int("dropped", report.Dropped),
	)
	return nil
}

// readEvents records one event per stdin line until EOF or cancellation.
func readEvents(ctx context.Context, svc *offramp.Service, logger *log.ZerologAdapter) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !json.Valid([]byte(line)) {
			logger.Warn("skipping invalid JSON line")
			continue
		}
		svc.Record(json.RawMessage(line))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	return nil
}

func serveMetrics(addr string, logger *log.ZerologAdapter) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics listener failed", log.Err(err))
	}
}
