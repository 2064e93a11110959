package seismograph

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/simplay/seismograph-server/internal/adapters/fs"
	httpAdapter "github.com/simplay/seismograph-server/internal/adapters/http"
	"github.com/simplay/seismograph-server/internal/adapters/replay"
	"github.com/simplay/seismograph-server/internal/adapters/udp"
	"github.com/simplay/seismograph-server/internal/app"
	"github.com/simplay/seismograph-server/internal/domain"
	"github.com/simplay/seismograph-server/internal/metrics"
	"github.com/simplay/seismograph-server/internal/ports"
	"github.com/simplay/seismograph-server/pkg/log"
)

// Server receives seismograph records, batches them and flushes every full
// batch to the configured sink. Use New() to create an instance, then
// Start() to begin receiving. A Server runs once; create a new one to run
// again.
type Server struct {
	config     Config
	sel        selection
	lifecycle  *app.Lifecycle
	agent      *app.Agent
	dispatcher *app.Dispatcher
	source     ports.Source
	sink       ports.Sink
	metadata   domain.Metadata
	logger     ports.Logger
	plugins    []Plugin

	mu      sync.Mutex
	started bool
	done    chan struct{}

	shutdownOnce sync.Once
	shutdownErr  error
}

// New creates a Server with the given configuration.
// The instance is created in StateStopped; call Start() to begin receiving.
// Returns an error if the configuration is invalid or the UDP socket cannot
// be bound.
func New(cfg Config, opts ...Option) (*Server, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sel, err := cfg.selectors()
	if err != nil {
		return nil, err
	}

	o := defaultOptions(cfg.httpClient())
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger

	emitter := &eventEmitterWrapper{handler: o.eventHandler}
	m := metrics.New(o.registerer)

	sink := o.sink
	if sink == nil {
		sink = newSink(cfg, sel, o.httpClient, log.With(logger, log.String("component", "sink")))
	}

	source := o.source
	if source == nil {
		source, err = newSource(cfg, sel, log.With(logger, log.String("component", "source")))
		if err != nil {
			return nil, err
		}
	}

	meta := domain.Metadata{
		BackendURL: cfg.BackendURL,
		HostIP:     cfg.HostIP,
		Location:   cfg.Location,
		Hostname:   hostname(),
	}

	dispatcher := app.NewDispatcher(logger, m, emitter)
	agent := app.NewAgent(app.AgentConfig{
		MaxSamples: cfg.MaxSamples,
		Metadata:   meta,
	}, source, sink, dispatcher, logger, m)

	return &Server{
		config:     cfg,
		sel:        sel,
		lifecycle:  app.NewLifecycle(logger, emitter),
		agent:      agent,
		dispatcher: dispatcher,
		source:     source,
		sink:       sink,
		metadata:   meta,
		logger:     logger,
		plugins:    o.plugins,
		done:       make(chan struct{}),
	}, nil
}

func newSink(cfg Config, sel selection, client HTTPClient, logger ports.Logger) ports.Sink {
	if sel.storage == domain.StoragePipeline {
		return httpAdapter.NewPipelineSink(client, logger)
	}
	return fs.NewFileSink(cfg.DataDir, logger)
}

func newSource(cfg Config, sel selection, logger ports.Logger) (ports.Source, error) {
	if sel.connection == domain.ConnectionTest {
		src, err := replay.Open(replay.Config{
			Path:      cfg.FixturePath,
			OnExhaust: sel.exhaust,
			Delay:     cfg.ReplayDelay,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("open replay source: %w", err)
		}
		return src, nil
	}

	src, err := udp.Listen(cfg.ServerIP, cfg.ServerPort, logger)
	if err != nil {
		return nil, fmt.Errorf("open udp source: %w", err)
	}
	return src, nil
}

// Start begins receiving in the background and returns immediately.
// Returns an error if the server is running or already ran, or if a plugin
// fails to initialize. The provided context bounds the receive loop.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if s.started {
		return domain.ErrServerClosed
	}

	if err := s.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}
	s.started = true

	runCtx, cancel := context.WithCancel(ctx)
	s.lifecycle.SetCancel(cancel)

	pluginCfg := PluginConfig{
		ConfigPath:     s.config.ConfigPath,
		ConnectionType: string(s.sel.connection),
		StorageMethod:  string(s.sel.storage),
		Logger:         s.logger,
	}
	for i, p := range s.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			s.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			cancel()
			s.shutdownPlugins(s.plugins[:i])
			_ = s.source.Close()
			_ = s.lifecycle.TransitionTo(app.StateCrashed, "plugin init failed: "+p.Name())
			close(s.done)
			return err
		}
		s.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}

	s.lifecycle.Go(func() { s.run(runCtx) })
	return nil
}

// run owns the receive loop. When the loop ends on its own (replay
// exhausted, source failure, parent context) it also drains the server;
// when Stop ended it, Stop does.
func (s *Server) run(ctx context.Context) {
	defer close(s.done)

	if err := s.lifecycle.TransitionTo(app.StateRunning, "receive loop starting"); err != nil {
		s.logger.Error("failed to transition to running", ports.Err(err))
		return
	}

	err := s.agent.Run(ctx)

	switch {
	case err == nil:
		s.finish(app.StateStopped, "source exhausted")
	case ctx.Err() != nil:
		if s.lifecycle.State() == app.StateStopping {
			return
		}
		s.finish(app.StateStopped, "context canceled")
	default:
		s.logger.Error("receive loop failed", ports.Err(err))
		s.finish(app.StateCrashed, err.Error())
	}
}

func (s *Server) finish(state app.State, reason string) {
	if err := s.shutdown(); err != nil {
		state, reason = app.StateCrashed, "shutdown timeout"
	}
	_ = s.lifecycle.TransitionTo(state, reason)
}

// Stop cancels the receive loop and waits for it and for in-flight flushes.
// Waits up to 30 seconds before giving up on flush workers.
// Returns nil on graceful shutdown, ErrShutdownTimeout if forced.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.lifecycle.CanStop() {
		s.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := s.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		s.mu.Unlock()
		return err
	}
	s.lifecycle.Cancel()
	s.mu.Unlock()

	err := s.lifecycle.WaitWithTimeout(app.ShutdownTimeout)
	if shutdownErr := s.shutdown(); err == nil {
		err = shutdownErr
	}

	if err != nil {
		_ = s.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = s.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}
	return err
}

// shutdown drains flush workers, stops plugins and closes the source.
// It runs once, whichever of Stop and the receive loop gets there first.
func (s *Server) shutdown() error {
	s.shutdownOnce.Do(func() {
		s.shutdownErr = s.dispatcher.Wait(app.ShutdownTimeout)
		s.shutdownPlugins(s.plugins)
		if err := s.source.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Warn("close source", ports.Err(err))
		}
	})
	return s.shutdownErr
}

func (s *Server) shutdownPlugins(plugins []Plugin) {
	ctx := context.Background()
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			s.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
		} else {
			s.logger.Info("plugin shutdown complete", ports.String("plugin", p.Name()))
		}
	}
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (s *Server) Status() State {
	return convertState(s.lifecycle.State())
}

// Done is closed when the receive loop has returned, for any reason.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Metadata returns the identity attached to every flush.
func (s *Server) Metadata() Metadata {
	return s.metadata
}

// SinkName returns the name of the sink batches are flushed to.
func (s *Server) SinkName() string {
	return s.sink.Name()
}

// hostname returns the current hostname.
func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}
