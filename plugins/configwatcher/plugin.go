// Package configwatcher watches the server's TOML config file.
// Settings are read once at startup, so an edit is never applied to the
// running server; the plugin reloads the file and warns which keys differ
// from the running configuration, so the operator knows a restart is due.
package configwatcher

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/simplay/seismograph-server/internal/cliconfig"
	"github.com/simplay/seismograph-server/pkg/log"
	"github.com/simplay/seismograph-server/pkg/seismograph"
)

// Plugin implements config watching functionality.
type Plugin struct {
	mu sync.Mutex

	// Configuration
	debounceDelay time.Duration
	running       cliconfig.Config
	changed       map[string]bool

	// Runtime state
	path     string
	logger   seismograph.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
	pending  []string
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// DebounceDelay is the delay to wait after a file change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration

	// Running is the validated configuration the server started with.
	Running cliconfig.Config

	// Changed names the flags set on the command line. Those keys are
	// ignored in the file, as they were at startup.
	Changed map[string]bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		debounceDelay: cfg.DebounceDelay,
		running:       cfg.Running,
		changed:       cfg.Changed,
		logger:        log.NewNoopLogger(),
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize starts watching cfg.ConfigPath. Without a path the plugin
// stays idle.
func (p *Plugin) Initialize(ctx context.Context, cfg seismograph.PluginConfig) error {
	p.mu.Lock()
	p.path = cfg.ConfigPath
	if cfg.Logger != nil {
		p.logger = cfg.Logger
	}
	p.mu.Unlock()

	if p.path == "" {
		p.logger.Info("config watcher disabled: no config file")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory so editors that replace the file are still seen.
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		watcher.Close()
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("config watcher started", log.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	return nil
}

// Shutdown stops the config watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

// watchLoop watches for config file changes.
func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceCheck(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceCheck(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		p.check()
	})
}

// check reloads the file and reports keys that differ from the running
// configuration.
func (p *Plugin) check() {
	fc, err := cliconfig.LoadFileConfig(p.path)
	if err != nil {
		p.logger.Error("config file changed but cannot be read", log.String("path", p.path), log.Err(err))
		return
	}

	reloaded := p.running
	if err := cliconfig.ApplyFileConfig(&reloaded, fc, p.changed); err != nil {
		p.logger.Error("config file changed but is invalid", log.String("path", p.path), log.Err(err))
		return
	}
	if err := reloaded.Validate(); err != nil {
		p.logger.Error("config file changed but is invalid", log.String("path", p.path), log.Err(err))
		return
	}

	keys := changedKeys(p.running, reloaded)

	p.mu.Lock()
	p.pending = keys
	p.mu.Unlock()

	if len(keys) == 0 {
		p.logger.Debug("config file changed, running settings still match", log.String("path", p.path))
		return
	}
	p.logger.Warn("config file changed, restart to apply",
		log.String("path", p.path),
		log.String("keys", strings.Join(keys, ",")),
	)
}

// Pending returns the keys that differed at the last reload.
func (p *Plugin) Pending() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.pending...)
}

// changedKeys returns the sorted setting names whose values differ.
func changedKeys(a, b cliconfig.Config) []string {
	left, right := a.Settings(), b.Settings()
	var keys []string
	for k, v := range left {
		if right[k] != v {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Ensure Plugin implements seismograph.Plugin.
var _ seismograph.Plugin = (*Plugin)(nil)
