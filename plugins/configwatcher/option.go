package configwatcher

import "github.com/simplay/seismograph-server/pkg/seismograph"

// WithConfigWatcher returns a seismograph Option that enables config file
// watching. The server's Config.ConfigPath names the file.
//
// Usage:
//
//	srv, err := seismograph.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        Running: cliCfg,
//	        Changed: changedFlags,
//	    }),
//	)
func WithConfigWatcher(cfg Config) seismograph.Option {
	plugin := New(cfg)
	return seismograph.WithPlugin(plugin)
}
