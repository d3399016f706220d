package pluginmgr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rosterPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "plugins.yaml")
}

func TestNewSeedsEmptyRoster(t *testing.T) {
	path := rosterPath(t)

	m, err := New(path)
	require.NoError(t, err)
	assert.Empty(t, m.Snapshot())
	assert.FileExists(t, path)
}

func TestAddPluginPersistsAndRoundTrips(t *testing.T) {
	path := rosterPath(t)

	m, err := New(path)
	require.NoError(t, err)

	msg, err := m.AddPlugin("vehiclepose", "./plugins/vehiclepose/vehiclepose.so", false)
	require.NoError(t, err)
	assert.Contains(t, msg, "added")

	m2, err := New(path)
	require.NoError(t, err)
	snap := m2.Snapshot()
	require.Contains(t, snap, "vehiclepose")
	assert.Equal(t, "./plugins/vehiclepose/vehiclepose.so", snap["vehiclepose"].Path)
	assert.False(t, snap["vehiclepose"].Active)
}

func TestAddPluginIsIdempotent(t *testing.T) {
	path := rosterPath(t)
	m, err := New(path)
	require.NoError(t, err)

	_, err = m.AddPlugin("tl", "./libtl.so", false)
	require.NoError(t, err)

	msg, err := m.AddPlugin("tl", "./some-other-path.so", false)
	require.NoError(t, err)
	assert.Contains(t, msg, "already registered")

	snap := m.Snapshot()
	assert.Equal(t, "./libtl.so", snap["tl"].Path)
}

func TestRemoveUnknownPluginIsIdempotent(t *testing.T) {
	path := rosterPath(t)
	m, err := New(path)
	require.NoError(t, err)

	msg, err := m.RemovePlugin("ghost")
	require.NoError(t, err)
	assert.Contains(t, msg, "already absent")
}

func TestStartPluginUnknownNameFailsWithExactMessage(t *testing.T) {
	path := rosterPath(t)
	m, err := New(path)
	require.NoError(t, err)

	_, err = m.StartPlugin("x")
	require.Error(t, err)
	assert.Equal(t, "plugin does not exist", err.Error())
}

func TestStopPluginUnknownNameFailsWithExactMessage(t *testing.T) {
	path := rosterPath(t)
	m, err := New(path)
	require.NoError(t, err)

	_, err = m.StopPlugin("x")
	require.Error(t, err)
	assert.Equal(t, "plugin does not exist", err.Error())
}

func TestStopPluginTwiceInSuccessionIsIdempotent(t *testing.T) {
	path := rosterPath(t)
	m, err := New(path)
	require.NoError(t, err)

	_, err = m.AddPlugin("tl", "./libtl.so", false)
	require.NoError(t, err)

	msg1, err := m.StopPlugin("tl")
	require.NoError(t, err)
	assert.Contains(t, msg1, "already stopped")

	msg2, err := m.StopPlugin("tl")
	require.NoError(t, err)
	assert.Equal(t, msg1, msg2)
}

func TestAddPluginWithMissingLibraryFailsToStartButDescriptorPersists(t *testing.T) {
	path := rosterPath(t)
	m, err := New(path)
	require.NoError(t, err)

	_, err = m.AddPlugin("broken", filepath.Join(t.TempDir(), "does-not-exist.so"), true)
	require.Error(t, err)

	// The descriptor is still recorded (desired state active=true) even though
	// no worker is running for it; the next check_plugins cycle has nothing
	// to observe since there is no loaded plugin for it.
	snap := m.Snapshot()
	require.Contains(t, snap, "broken")
	assert.True(t, snap["broken"].Active)

	// Re-instantiating over a descriptor pointing at a missing library logs
	// and continues rather than failing construction, the same tolerance
	// New documents for any other active descriptor it cannot start.
	m2, err := New(path)
	require.NoError(t, err)
	assert.Contains(t, m2.Snapshot(), "broken")
}

func TestRosterMissingPathIsRejectedOnLoad(t *testing.T) {
	path := rosterPath(t)
	require.NoError(t, os.WriteFile(path, []byte("plugins:\n  bad:\n    active: true\n"), 0o644))

	_, err := New(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required field path")
}
