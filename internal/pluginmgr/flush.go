package pluginmgr

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// flush serializes plugins to YAML and writes it to configPath atomically
// (write to a temp file in the same directory, then rename over the
// target). A bare in-place write can leave a truncated roster behind if
// the process dies mid-write, which rename cannot.
//
// flushMu serializes concurrent flushes (e.g. one from stop_plugin
// racing one from add_plugin on another name) so their temp files never
// collide; it is distinct from mu, which only ever guards the in-memory
// maps, so a flush's disk I/O never blocks a concurrent in-memory
// mutation of state it has already snapshotted.
func (m *Manager) flush(plugins map[string]Descriptor) error {
	m.flushMu.Lock()
	defer m.flushMu.Unlock()

	entries := make(map[string]Descriptor, len(plugins))
	for name, d := range plugins {
		entries[name] = Descriptor{Path: d.Path, Active: d.Active}
	}

	out, err := yaml.Marshal(rosterFile{Plugins: entries})
	if err != nil {
		return fmt.Errorf("marshal roster: %w", err)
	}

	tmp := m.configPath + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return fmt.Errorf("write temp roster %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, m.configPath); err != nil {
		return fmt.Errorf("rename temp roster into place: %w", err)
	}
	return nil
}
