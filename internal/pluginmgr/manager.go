// Package pluginmgr implements the RSU Plugin Manager: the component that
// owns the roster of workload plugins, keeps it consistent with its
// on-disk YAML backing file, and drives each plugin through load → start →
// observe → stop → unload.
package pluginmgr

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/autocore-ai/RSU/internal/config"
	"github.com/autocore-ai/RSU/internal/logger"
)

// Manager owns the canonical name -> (Descriptor, *loadedPlugin) mapping
// and keeps it flushed to configPath.
//
// Locking discipline: mu guards descriptors and loaded. It is held across
// in-memory mutation and, in RemovePlugin, StopPlugin and CheckPlugins,
// also across the blocking join on a stopping worker. flushMu serializes
// the file write itself, which happens after mu is released.
type Manager struct {
	configPath string

	mu          sync.Mutex
	descriptors map[string]*Descriptor
	loaded      map[string]*loadedPlugin

	flushMu sync.Mutex

	log *zerolog.Logger
}

// New constructs a Manager from configPath, creating a default (empty)
// roster file if one does not already exist. Every descriptor marked
// active is started; a failure to start an individual plugin is logged and
// does not abort construction. The descriptor is left active with no
// loadedPlugin attached, for the next health-check cycle to observe.
func New(configPath string) (*Manager, error) {
	m := &Manager{
		configPath:  configPath,
		descriptors: make(map[string]*Descriptor),
		loaded:      make(map[string]*loadedPlugin),
		log:         logger.PluginMgr(),
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.EnsureParentDir(configPath); err != nil {
			return nil, fmt.Errorf("create roster directory: %w", err)
		}
		if err := m.flush(map[string]Descriptor{}); err != nil {
			return nil, fmt.Errorf("emit default roster: %w", err)
		}
		m.log.Info().Str("path", configPath).Msg("no roster found, emitted default")
	}

	raw, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", configPath, err)
	}

	var rf rosterFile
	if err := yaml.Unmarshal(raw, &rf); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", configPath, err)
	}

	for name, entry := range rf.Plugins {
		if entry.Path == "" {
			return nil, fmt.Errorf("roster %s: plugin %q missing required field path", configPath, name)
		}
		desc := &Descriptor{Name: name, Path: entry.Path, Active: entry.Active}
		m.descriptors[name] = desc

		if desc.Active {
			if err := m.startLocked(name); err != nil {
				m.log.Warn().Err(err).Str("plugin", name).Msg("failed to start active plugin during construction")
			}
		}
	}

	return m, nil
}

// AddPlugin registers a new descriptor. Idempotent on name: if the name is
// already present this is a no-op success. If active, the plugin is
// started. The roster is flushed before returning on every mutating path.
func (m *Manager) AddPlugin(name, path string, active bool) (string, error) {
	m.mu.Lock()
	if _, exists := m.descriptors[name]; exists {
		m.mu.Unlock()
		return fmt.Sprintf("plugin %q already registered, no change made", name), nil
	}

	m.descriptors[name] = &Descriptor{Name: name, Path: path, Active: active}

	var startErr error
	if active {
		startErr = m.startLocked(name)
	}
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	if flushErr := m.flush(snapshot); flushErr != nil {
		m.log.Error().Err(flushErr).Msg("roster flush failed after add_plugin")
		return "", fmt.Errorf("plugin %q added but roster flush failed: %w", name, flushErr)
	}

	if startErr != nil {
		return "", fmt.Errorf("plugin %q added but failed to start: %w", name, startErr)
	}
	return fmt.Sprintf("plugin %q added", name), nil
}

// RemovePlugin stops the plugin if running, deletes its descriptor, then
// flushes. Removing an unknown name is a success (idempotent).
func (m *Manager) RemovePlugin(name string) (string, error) {
	m.mu.Lock()
	if _, exists := m.descriptors[name]; !exists {
		m.mu.Unlock()
		return fmt.Sprintf("plugin %q was already absent", name), nil
	}

	if lp, running := m.loaded[name]; running {
		lp.stop()
		delete(m.loaded, name)
	}
	delete(m.descriptors, name)

	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	if err := m.flush(snapshot); err != nil {
		m.log.Error().Err(err).Msg("roster flush failed after remove_plugin")
		return "", fmt.Errorf("plugin %q removed but roster flush failed: %w", name, err)
	}
	return fmt.Sprintf("plugin %q removed", name), nil
}

// StartPlugin starts a registered plugin. Fails if name is unknown. If
// already running, returns success without change.
func (m *Manager) StartPlugin(name string) (string, error) {
	m.mu.Lock()
	if _, exists := m.descriptors[name]; !exists {
		m.mu.Unlock()
		return "", fmt.Errorf("plugin does not exist")
	}
	if _, running := m.loaded[name]; running {
		m.mu.Unlock()
		return fmt.Sprintf("plugin %q is already running", name), nil
	}

	startErr := m.startLocked(name)
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	flushErr := m.flush(snapshot)
	if flushErr != nil {
		m.log.Error().Err(flushErr).Msg("roster flush failed after start_plugin")
	}
	if startErr != nil {
		return "", startErr
	}
	if flushErr != nil {
		return "", fmt.Errorf("plugin %q started but roster flush failed: %w", name, flushErr)
	}
	return fmt.Sprintf("plugin %q started", name), nil
}

// StopPlugin stops a running plugin. Fails if name is unknown. If not
// running, returns success without change.
func (m *Manager) StopPlugin(name string) (string, error) {
	m.mu.Lock()
	desc, exists := m.descriptors[name]
	if !exists {
		m.mu.Unlock()
		return "", fmt.Errorf("plugin does not exist")
	}

	lp, running := m.loaded[name]
	if !running {
		m.mu.Unlock()
		return fmt.Sprintf("plugin %q is already stopped", name), nil
	}

	// stop() blocks on the join. Releasing mu while that happens would risk
	// a concurrent start racing the same name, so mu is held across it. The
	// join is expected to complete within one tick period.
	lp.stop()
	delete(m.loaded, name)
	desc.Active = false

	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	if err := m.flush(snapshot); err != nil {
		m.log.Error().Err(err).Msg("roster flush failed after stop_plugin")
		return "", fmt.Errorf("plugin %q stopped but roster flush failed: %w", name, err)
	}
	return fmt.Sprintf("plugin %q stopped", name), nil
}

// CheckPlugins inspects every active plugin's error flag. A plugin that
// raised it is stopped and marked inactive, but the roster is not flushed
// here; the next reporter cycle observes and reports the change. Restart
// is never automatic.
func (m *Manager) CheckPlugins() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, desc := range m.descriptors {
		if !desc.Active {
			continue
		}
		lp, running := m.loaded[name]
		if !running {
			continue
		}
		if lp.errored() {
			m.log.Warn().Str("plugin", name).Msg("plugin raised error flag, stopping")
			lp.stop()
			delete(m.loaded, name)
			desc.Active = false
		}
	}
}

// Snapshot returns a point-in-time copy of the descriptor roster, suitable
// for the reporter to serialize without holding the manager lock for the
// duration of the HTTP call.
func (m *Manager) Snapshot() map[string]Descriptor {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() map[string]Descriptor {
	out := make(map[string]Descriptor, len(m.descriptors))
	for name, desc := range m.descriptors {
		out[name] = *desc
	}
	return out
}

// startLocked opens the plugin library and spawns its worker. Caller must
// hold mu. On success, marks the descriptor active and records the
// loadedPlugin; on failure, the descriptor is left unchanged (not marked
// running), satisfying the invariant that a lifecycle error leaves the
// manager in a consistent state.
func (m *Manager) startLocked(name string) error {
	desc, exists := m.descriptors[name]
	if !exists {
		return fmt.Errorf("plugin does not exist")
	}

	lp, err := startLoadedPlugin(desc.Path)
	if err != nil {
		return err
	}

	m.loaded[name] = lp
	desc.Active = true
	return nil
}
