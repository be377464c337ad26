package governor_test

import (
	"path/filepath"
	"testing"

	"codeberg.org/mutker/perfgov/internal/governor"
	"codeberg.org/mutker/perfgov/internal/profile"
	"codeberg.org/mutker/perfgov/internal/settings"
	"codeberg.org/mutker/perfgov/internal/thermal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIniPreferencesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "perfgov.ini")

	prefs, err := governor.OpenIniPreferences(path)
	require.NoError(t, err)

	_, ok := prefs.LoadProfile()
	assert.False(t, ok, "fresh store has no profile")
	_, ok = prefs.LoadAuto()
	assert.False(t, ok, "fresh store has no flag")

	require.NoError(t, prefs.StoreProfile(profile.Performance))
	require.NoError(t, prefs.StoreAuto(false))

	reopened, err := governor.OpenIniPreferences(path)
	require.NoError(t, err)

	name, ok := reopened.LoadProfile()
	require.True(t, ok)
	assert.Equal(t, "performance", name)

	auto, ok := reopened.LoadAuto()
	require.True(t, ok)
	assert.False(t, auto)
}

// A user who disabled auto-management must still have it disabled after the
// daemon restarts without an explicit auto setting.
func TestDisabledAutoManagementSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "perfgov.ini")

	prefs, err := governor.OpenIniPreferences(path)
	require.NoError(t, err)
	require.NoError(t, prefs.StoreAuto(false))

	reopened, err := governor.OpenIniPreferences(path)
	require.NoError(t, err)

	g, err := governor.New(governor.Config{
		Store:  settings.NewMemoryStore(),
		Prefs:  reopened,
		Sensor: thermal.NullSensor{},
	})
	require.NoError(t, err)
	t.Cleanup(g.Shutdown)

	require.False(t, g.AutoThermalManagement(), "persisted flag loaded at construction")

	// Startup without an explicit setting starts monitoring from the
	// persisted flag, which keeps it off.
	g.StartThermalMonitoring()
	assert.False(t, g.Monitoring())
}

func TestIniPreferencesRejectsEmptyPath(t *testing.T) {
	_, err := governor.OpenIniPreferences("")
	require.Error(t, err)
}
