package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/simplay/seismograph-server/internal/cliconfig"
	"github.com/simplay/seismograph-server/internal/metrics"
	"github.com/simplay/seismograph-server/pkg/log"
	"github.com/simplay/seismograph-server/pkg/seismograph"
	"github.com/simplay/seismograph-server/plugins/configwatcher"
)

const longHelp = `Receive a seismograph's UDP stream, acknowledge every datagram and store
the readings in batches.

Highlights:
  - Every datagram is answered with ACK, whatever happens to its batch.
  - A batch is written once it holds more than --max-samples records.
  - Batches go to one file each (--storage-method file) or to a backend
    over HTTP (--storage-method pipeline). Failed batches are logged and dropped.
  - --connection-type test replays a recorded session instead of listening.

Configure via $HOME/.seismograph/config.toml, a .env file, SEISMOGRAPH_*
environment variables, or flags (later sources win).`

var exampleUsage = strings.TrimSpace(`
  seismograph --server-ip 0.0.0.0
  seismograph --storage-method pipeline --backend-url backend:8080 --location basement
  seismograph --connection-type test --on-exhaust exit --data-dir /tmp/quakes
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath, envFile string

	logger := cliconfig.Logger("info")

	root := &cobra.Command{
		Use:          "seismograph",
		Short:        "Receive, acknowledge and batch seismograph UDP readings",
		Long:         longHelp,
		Example:      exampleUsage,
		Version:      fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
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
			} else {
				cfgFile = ""
			}

			// .env only fills variables the process environment does not set
			if err := cliconfig.LoadDotEnv(envFile); err != nil {
				return err
			}
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}
			logger = cliconfig.Logger(cfg.LogLevel)

			if err := cliconfig.LoadHostInfo(&cfg); err != nil {
				logger.Warn().Err(err).Msg("host ip unknown, pipeline batches will carry an empty ip")
			}

			logger.Info().Interface("config", cfg.Settings()).Str("config_file", cfgFile).Msg("configuration")

			adapter := log.NewZerologAdapterWithLogger(logger)

			libCfg := seismograph.Config{
				ServerIP:        cfg.ServerIP,
				ServerPort:      cfg.ServerPort,
				ConnectionType:  cfg.ConnectionType,
				StorageMethod:   cfg.StorageMethod,
				DataDir:         cfg.DataDir,
				FixturePath:     cfg.FixturePath,
				ReplayOnExhaust: cfg.ReplayOnExhaust,
				ReplayDelay:     cfg.ReplayDelay,
				MaxSamples:      cfg.MaxSamples,
				BackendURL:      cfg.BackendURL,
				HostIP:          cfg.HostIP,
				Location:        cfg.Location,
				HTTPTimeout:     cfg.HTTPTimeout,
				ConfigPath:      cfgFile,
			}

			opts := []seismograph.Option{
				seismograph.WithLogger(adapter),
				configwatcher.WithConfigWatcher(configwatcher.Config{
					DebounceDelay: configwatcher.DefaultConfig().DebounceDelay,
					Running:       cfg,
					Changed:       changed,
				}),
			}

			if cfg.MetricsAddr != "" {
				reg := metrics.NewRegistry()
				opts = append(opts, seismograph.WithMetrics(reg))

				ms := metrics.NewServer(cfg.MetricsAddr, reg, adapter)
				if err := ms.Start(); err != nil {
					return err
				}
				defer func() {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = ms.Stop(ctx)
				}()
			}

			srv, err := seismograph.New(libCfg, opts...)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			if err := srv.Start(ctx); err != nil {
				return fmt.Errorf("start server: %w", err)
			}

			select {
			case sig := <-sigCh:
				logger.Info().Str("signal", sig.String()).Msg("received signal, stopping...")
				if err := srv.Stop(); err != nil && !errors.Is(err, seismograph.ErrNotRunning) {
					return fmt.Errorf("stop server: %w", err)
				}
			case <-srv.Done():
				if srv.Status() == seismograph.StateCrashed {
					return fmt.Errorf("server crashed")
				}
				logger.Info().Msg("receive loop finished")
			}
			return nil
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.seismograph/config.toml)")
	root.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file with SEISMOGRAPH_* variables (ignored if missing)")

	root.Flags().StringVar(&cfg.ServerIP, "server-ip", cfg.ServerIP, "address the UDP socket binds (empty: all interfaces)")
	root.Flags().IntVar(&cfg.ServerPort, "server-port", cfg.ServerPort, "UDP port")
	root.Flags().StringVar(&cfg.ConnectionType, "connection-type", cfg.ConnectionType, "record source: server or test")
	root.Flags().StringVar(&cfg.StorageMethod, "storage-method", cfg.StorageMethod, "batch sink: file or pipeline")

	root.Flags().StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for batch files")
	root.Flags().StringVar(&cfg.FixturePath, "fixture", cfg.FixturePath, "recording replayed in test mode")
	root.Flags().StringVar(&cfg.ReplayOnExhaust, "on-exhaust", cfg.ReplayOnExhaust, "end of recording in test mode: loop or exit")
	root.Flags().DurationVar(&cfg.ReplayDelay, "replay-delay", cfg.ReplayDelay, "pause between replayed records (0 disables)")
	root.Flags().IntVar(&cfg.MaxSamples, "max-samples", cfg.MaxSamples, "batch threshold; a batch is flushed above it")

	root.Flags().StringVar(&cfg.BackendURL, "backend-url", cfg.BackendURL, "pipeline backend host[:port]")
	root.Flags().StringVar(&cfg.HostIP, "host-ip", cfg.HostIP, "ip reported to the backend (default: first non-loopback IPv4)")
	root.Flags().StringVar(&cfg.Location, "location", cfg.Location, "location reported to the backend")
	root.Flags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout")

	root.Flags().StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve /metrics and /health on this address (empty: disabled)")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")

	if err := root.Execute(); err != nil {
		logger.Error().Err(err).Msg("seismograph")
		os.Exit(1)
	}
}
