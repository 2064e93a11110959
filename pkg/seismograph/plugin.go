package seismograph

import "context"

// Plugin extends a Server with optional behavior started alongside the
// receive loop. Plugins never touch records or batches.
type Plugin interface {
	// Name identifies the plugin in logs.
	Name() string

	// Initialize is called by Start, in registration order. An error
	// aborts Start.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown is called when the server stops, in reverse order.
	Shutdown(ctx context.Context) error
}

// PluginConfig is the view of the running server handed to plugins.
type PluginConfig struct {
	ConfigPath     string
	ConnectionType string
	StorageMethod  string
	Logger         Logger
}
