package governor_test

import (
	"sync"
	"testing"
	"time"

	"codeberg.org/mutker/perfgov/internal/governor"
	"codeberg.org/mutker/perfgov/internal/profile"
	"codeberg.org/mutker/perfgov/internal/settings"
	"codeberg.org/mutker/perfgov/internal/thermal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSensor struct {
	mu      sync.Mutex
	level   thermal.Level
	samples int
}

func (f *fakeSensor) Sample() thermal.Level {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.samples++
	return f.level
}

func (f *fakeSensor) setLevel(level thermal.Level) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.level = level
}

func (f *fakeSensor) sampleCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.samples
}

type memPrefs struct {
	mu         sync.Mutex
	profile    string
	hasProfile bool
	auto       bool
	hasAuto    bool
}

func (m *memPrefs) LoadProfile() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile, m.hasProfile
}

func (m *memPrefs) LoadAuto() (bool, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.auto, m.hasAuto
}

func (m *memPrefs) StoreProfile(p profile.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profile = p.String()
	m.hasProfile = true
	return nil
}

func (m *memPrefs) StoreAuto(enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auto = enabled
	m.hasAuto = true
	return nil
}

func newGovernor(t *testing.T, sensor thermal.Sensor, prefs governor.PreferenceStore) (*governor.Governor, *settings.MemoryStore) {
	t.Helper()

	store := settings.NewMemoryStore()
	g, err := governor.New(governor.Config{
		Store:    store,
		Prefs:    prefs,
		Sensor:   sensor,
		Interval: 20 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(g.Shutdown)

	return g, store
}

func TestRecommendHardFloor(t *testing.T) {
	profiles := []profile.Profile{profile.BatterySaver, profile.Balanced, profile.Performance}
	levels := []thermal.Level{thermal.Critical, thermal.Emergency, thermal.Shutdown}

	for _, p := range profiles {
		for _, l := range levels {
			assert.Equalf(t, profile.BatterySaver, governor.Recommend(p, l),
				"Recommend(%s, %s)", p, l)
		}
	}
}

func TestRecommendSevereStepsDownOneTier(t *testing.T) {
	assert.Equal(t, profile.Balanced, governor.Recommend(profile.Performance, thermal.Severe))
	assert.Equal(t, profile.BatterySaver, governor.Recommend(profile.Balanced, thermal.Severe))
	assert.Equal(t, profile.BatterySaver, governor.Recommend(profile.BatterySaver, thermal.Severe))
}

func TestRecommendBelowSevereIsPassThrough(t *testing.T) {
	profiles := []profile.Profile{profile.BatterySaver, profile.Balanced, profile.Performance}
	levels := []thermal.Level{thermal.None, thermal.Light, thermal.Moderate}

	for _, p := range profiles {
		for _, l := range levels {
			assert.Equalf(t, p, governor.Recommend(p, l), "Recommend(%s, %s)", p, l)
		}
	}
}

func TestSevereDowngradeKeepsUserIntent(t *testing.T) {
	sensor := &fakeSensor{level: thermal.Severe}
	g, store := newGovernor(t, sensor, &memPrefs{})

	g.SetProfile(profile.Performance)
	g.CheckThermalNow()

	// Balanced applied as a transient override
	snap := store.Snapshot(settings.LayerCurrentRun)
	assert.Equal(t, "2", snap["Video/InternalResolution"], "Balanced resolution applied")
	assert.Equal(t, profile.Balanced, g.EffectiveProfile())

	// User intent untouched
	assert.Equal(t, profile.Performance, g.CurrentProfile())
	base := store.Snapshot(settings.LayerBase)
	assert.Equal(t, "3", base["Video/InternalResolution"], "base layer keeps the selected profile")
}

func TestEmergencyForcesBatterySaver(t *testing.T) {
	sensor := &fakeSensor{level: thermal.Emergency}
	g, store := newGovernor(t, sensor, &memPrefs{})

	g.SetProfile(profile.Balanced)
	g.CheckThermalNow()

	snap := store.Snapshot(settings.LayerCurrentRun)
	assert.Equal(t, "1", snap["Video/InternalResolution"], "BatterySaver applied")
	assert.Equal(t, profile.BatterySaver, g.EffectiveProfile())
	assert.Equal(t, profile.Balanced, g.CurrentProfile())
}

func TestFavorableSampleRestoresSelectedProfile(t *testing.T) {
	sensor := &fakeSensor{level: thermal.Severe}
	g, store := newGovernor(t, sensor, &memPrefs{})

	g.SetProfile(profile.Performance)
	g.CheckThermalNow()
	require.Equal(t, profile.Balanced, g.EffectiveProfile())

	sensor.setLevel(thermal.Light)
	g.CheckThermalNow()

	assert.Equal(t, profile.Performance, g.EffectiveProfile())
	snap := store.Snapshot(settings.LayerCurrentRun)
	assert.Equal(t, "3", snap["Video/InternalResolution"], "selected profile restored")
}

func TestSetProfilePersistsIntent(t *testing.T) {
	prefs := &memPrefs{}
	g, store := newGovernor(t, &fakeSensor{}, prefs)

	g.SetProfile(profile.BatterySaver)

	name, ok := prefs.LoadProfile()
	require.True(t, ok)
	assert.Equal(t, "battery_saver", name)

	snap := store.Snapshot(settings.LayerBase)
	assert.Equal(t, "1", snap["Video/InternalResolution"])
}

func TestNewLoadsPersistedState(t *testing.T) {
	prefs := &memPrefs{profile: "performance", hasProfile: true, auto: false, hasAuto: true}
	g, _ := newGovernor(t, &fakeSensor{}, prefs)

	assert.Equal(t, profile.Performance, g.CurrentProfile())
	assert.False(t, g.AutoThermalManagement())
}

func TestNewFallsBackOnUnknownProfile(t *testing.T) {
	prefs := &memPrefs{profile: "turbo", hasProfile: true}
	g, _ := newGovernor(t, &fakeSensor{}, prefs)

	assert.Equal(t, profile.Balanced, g.CurrentProfile())
}

func TestStartTwiceRunsSingleLoop(t *testing.T) {
	sensor := &fakeSensor{}
	g, _ := newGovernor(t, sensor, &memPrefs{})

	g.StartThermalMonitoring()
	g.StartThermalMonitoring()
	assert.True(t, g.Monitoring())

	time.Sleep(110 * time.Millisecond)
	g.StopThermalMonitoring()

	// A duplicated loop would roughly double the sample count
	count := sensor.sampleCount()
	assert.GreaterOrEqual(t, count, 3)
	assert.LessOrEqual(t, count, 7)
}

func TestStopGuaranteesNoFurtherTicks(t *testing.T) {
	sensor := &fakeSensor{}
	g, _ := newGovernor(t, sensor, &memPrefs{})

	g.StartThermalMonitoring()
	time.Sleep(50 * time.Millisecond)
	g.StopThermalMonitoring()
	assert.False(t, g.Monitoring())

	count := sensor.sampleCount()
	time.Sleep(70 * time.Millisecond)
	assert.Equal(t, count, sensor.sampleCount())
}

func TestAutoManagementFlagGatesMonitoring(t *testing.T) {
	prefs := &memPrefs{}
	g, _ := newGovernor(t, &fakeSensor{}, prefs)

	g.SetAutoThermalManagement(false)
	assert.False(t, g.Monitoring())

	g.StartThermalMonitoring()
	assert.False(t, g.Monitoring(), "start is a no-op while auto-management is disabled")

	g.SetAutoThermalManagement(true)
	assert.True(t, g.Monitoring())

	auto, ok := prefs.LoadAuto()
	require.True(t, ok)
	assert.True(t, auto)

	g.StopThermalMonitoring()
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := governor.New(governor.Config{})
	require.Error(t, err)
}
