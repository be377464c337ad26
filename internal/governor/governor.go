package governor

import (
	"sync"
	"time"

	"codeberg.org/mutker/perfgov/internal/errors"
	"codeberg.org/mutker/perfgov/internal/logger"
	"codeberg.org/mutker/perfgov/internal/profile"
	"codeberg.org/mutker/perfgov/internal/settings"
	"codeberg.org/mutker/perfgov/internal/thermal"
)

// DefaultInterval is the reference polling cadence.
const DefaultInterval = 5 * time.Second

// Recorder receives one record per thermal evaluation. Optional.
type Recorder interface {
	RecordSample(level thermal.Level, user, effective profile.Profile, monitoring bool)
}

// Config wires the governor's collaborators. The hosting application's
// composition root constructs exactly one Governor per process; the governor
// itself is not safe for concurrent mutation from multiple callers.
type Config struct {
	Store    settings.Store
	Prefs    PreferenceStore
	Sensor   thermal.Sensor
	Interval time.Duration
	Recorder Recorder
}

// Governor owns the profile transition policy and the periodic thermal
// control loop. States: Idle and Monitoring. The user-selected profile is
// persisted intent; thermal downgrades are transient overrides applied to
// the current-run settings layer and never touch that intent.
type Governor struct {
	store    settings.Store
	prefs    PreferenceStore
	sensor   thermal.Sensor
	interval time.Duration
	recorder Recorder

	mu        sync.Mutex
	current   profile.Profile // user intent, persisted
	effective profile.Profile // last profile written to the store
	auto      bool            // persisted
	lastLevel thermal.Level   // transient
	stopCh    chan struct{}
	doneCh    chan struct{}
}

func New(cfg Config) (*Governor, error) {
	errFactory := errors.New()

	if cfg.Store == nil || cfg.Prefs == nil || cfg.Sensor == nil {
		return nil, errFactory.New(errors.ErrInvalidConfig)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}

	g := &Governor{
		store:    cfg.Store,
		prefs:    cfg.Prefs,
		sensor:   cfg.Sensor,
		interval: cfg.Interval,
		recorder: cfg.Recorder,
		current:  profile.Balanced,
		auto:     true,
	}

	if name, ok := cfg.Prefs.LoadProfile(); ok {
		p, err := profile.Parse(name)
		if err != nil {
			logger.Warn().
				Str("profile", name).
				Msg("Unknown persisted profile, falling back to balanced")
		}
		g.current = p
	}
	if auto, ok := cfg.Prefs.LoadAuto(); ok {
		g.auto = auto
	}
	g.effective = g.current

	logger.Debug().
		Str("profile", g.current.String()).
		Bool("auto", g.auto).
		Dur("interval", g.interval).
		Msg("Governor constructed")

	return g, nil
}

// Recommend maps the user-selected profile and a thermal level to the
// profile that should be in effect. Pure function of its arguments, no
// hysteresis: a single favorable sample reverts to the unthrottled profile
// on the next cycle.
func Recommend(current profile.Profile, level thermal.Level) profile.Profile {
	switch {
	case level >= thermal.Critical:
		// Hard floor regardless of user intent
		return profile.BatterySaver
	case level == thermal.Severe:
		return current.StepDown()
	default:
		return current
	}
}

// CurrentProfile returns the persisted user intent.
func (g *Governor) CurrentProfile() profile.Profile {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// EffectiveProfile returns the profile last applied to the settings store.
func (g *Governor) EffectiveProfile() profile.Profile {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.effective
}

// AutoThermalManagement returns the persisted auto-management flag.
func (g *Governor) AutoThermalManagement() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.auto
}

// LastLevel returns the most recently sampled thermal level.
func (g *Governor) LastLevel() thermal.Level {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastLevel
}

// Monitoring reports whether the periodic loop is running.
func (g *Governor) Monitoring() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stopCh != nil
}

// SetProfile sets and persists user intent, then applies the profile to the
// base settings layer. Persistence failures are logged and swallowed: the
// next apply recovers a missed write.
func (g *Governor) SetProfile(p profile.Profile) {
	g.mu.Lock()
	g.current = p
	g.effective = p
	g.mu.Unlock()

	if err := g.prefs.StoreProfile(p); err != nil {
		logger.ErrorWithCode(errors.New().Wrap(errors.ErrPrefsSave, err)).
			Str("profile", p.String()).
			Msg("Failed to persist profile selection")
	}

	logger.Info().Str("profile", p.String()).Msg("Profile selected")
	p.Apply(g.store, settings.LayerBase)
	// Keep the live view in step in case a thermal override was in effect
	p.Apply(g.store, settings.LayerCurrentRun)
}

// SetAutoThermalManagement persists the flag and starts or stops the
// monitoring loop accordingly.
func (g *Governor) SetAutoThermalManagement(enabled bool) {
	g.mu.Lock()
	g.auto = enabled
	g.mu.Unlock()

	if err := g.prefs.StoreAuto(enabled); err != nil {
		logger.ErrorWithCode(errors.New().Wrap(errors.ErrPrefsSave, err)).
			Bool("enabled", enabled).
			Msg("Failed to persist auto-management flag")
	}

	if enabled {
		g.StartThermalMonitoring()
	} else {
		g.StopThermalMonitoring()
	}
}

// StartThermalMonitoring enters the Monitoring state. Re-entry first cancels
// the outstanding schedule so exactly one loop ever runs. A no-op while
// auto-management is disabled.
func (g *Governor) StartThermalMonitoring() {
	g.StopThermalMonitoring()

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.auto {
		logger.Debug().Msg("Auto thermal management disabled, not monitoring")
		return
	}

	g.stopCh = make(chan struct{})
	g.doneCh = make(chan struct{})
	go g.run(g.stopCh, g.doneCh)

	logger.Info().Dur("interval", g.interval).Msg("Thermal monitoring started")
}

// StopThermalMonitoring leaves the Monitoring state. Synchronous: when it
// returns, no further tick will fire.
func (g *Governor) StopThermalMonitoring() {
	g.mu.Lock()
	stopCh, doneCh := g.stopCh, g.doneCh
	g.stopCh, g.doneCh = nil, nil
	g.mu.Unlock()

	if stopCh == nil {
		return
	}

	close(stopCh)
	<-doneCh

	logger.Info().Msg("Thermal monitoring stopped")
}

// Shutdown tears the governor down at process exit.
func (g *Governor) Shutdown() {
	g.StopThermalMonitoring()
}

// run is the periodic loop. The timer is re-armed only after a tick
// finishes, so a slow sample can never cause overlapping executions.
func (g *Governor) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	timer := time.NewTimer(g.interval)
	defer timer.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-timer.C:
			g.CheckThermalNow()
			timer.Reset(g.interval)
		}
	}
}

// CheckThermalNow performs one control cycle: sample, recommend, and apply
// the recommendation to the current-run layer when it differs from what is
// in effect. The user's chosen profile is never mutated or persisted here:
// thermal downgrades are transient overrides, not a change of intent.
func (g *Governor) CheckThermalNow() {
	level := g.sensor.Sample()

	g.mu.Lock()
	g.lastLevel = level
	current := g.current
	previous := g.effective
	recommended := Recommend(current, level)
	g.effective = recommended
	monitoring := g.stopCh != nil
	g.mu.Unlock()

	if recommended != previous {
		if recommended != current {
			logger.Warn().
				Str("level", level.String()).
				Str("profile", current.String()).
				Str("applied", recommended.String()).
				Msg("Thermal pressure, downgrading effective profile")
		} else {
			logger.Info().
				Str("level", level.String()).
				Str("profile", current.String()).
				Msg("Thermal pressure cleared, restoring selected profile")
		}
		recommended.Apply(g.store, settings.LayerCurrentRun)
	}

	if g.recorder != nil {
		g.recorder.RecordSample(level, current, recommended, monitoring)
	}
}
