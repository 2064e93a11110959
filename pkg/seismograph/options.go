package seismograph

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/simplay/seismograph-server/internal/domain"
	"github.com/simplay/seismograph-server/internal/ports"
	"github.com/simplay/seismograph-server/pkg/log"
)

// HTTPClient is the interface for making HTTP requests.
// *http.Client satisfies this interface.
type HTTPClient = ports.HTTPClient

// Logger is the interface for structured logging.
type Logger = log.Logger

// LogField represents a structured log field.
type LogField = log.Field

// Source, Sink and the values flowing through them, for callers that bring
// their own implementations.
type (
	Source   = ports.Source
	Sink     = ports.Sink
	Record   = domain.Record
	Batch    = domain.Batch
	Metadata = domain.Metadata
)

// Option configures optional behavior of a Server.
type Option func(*options)

// options holds the optional configuration for a Server instance.
type options struct {
	httpClient   ports.HTTPClient
	logger       ports.Logger
	source       ports.Source
	sink         ports.Sink
	registerer   prometheus.Registerer
	eventHandler EventHandler
	plugins      []Plugin
}

// defaultOptions returns options with sensible defaults.
func defaultOptions(client HTTPClient) options {
	return options{
		httpClient: client,
		logger:     log.NewNoopLogger(),
	}
}

// WithHTTPClient sets the client used by the pipeline sink.
// If not provided, a client with the configured timeout is used.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSource replaces the source selected by ConnectionType.
func WithSource(source Source) Option {
	return func(o *options) {
		o.source = source
	}
}

// WithSink replaces the sink selected by StorageMethod.
func WithSink(sink Sink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithMetrics registers the server's Prometheus collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithEventHandler sets a handler for server events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the server starts.
// Plugins are initialized in registration order and shutdown in reverse order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}
