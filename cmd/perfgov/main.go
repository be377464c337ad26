package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"codeberg.org/mutker/perfgov/internal/affinity"
	"codeberg.org/mutker/perfgov/internal/config"
	"codeberg.org/mutker/perfgov/internal/governor"
	"codeberg.org/mutker/perfgov/internal/logger"
	"codeberg.org/mutker/perfgov/internal/metrics"
	"codeberg.org/mutker/perfgov/internal/pid"
	"codeberg.org/mutker/perfgov/internal/profile"
	"codeberg.org/mutker/perfgov/internal/server"
	"codeberg.org/mutker/perfgov/internal/settings"
	"codeberg.org/mutker/perfgov/internal/thermal"
	"codeberg.org/mutker/perfgov/internal/topology"
	"github.com/google/uuid"
)

const recordTimeout = 5 * time.Second

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	logger.Debug().Msg("Config loaded")
}

func main() {
	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("failed to write PID file")
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Error().Err(err).Msg("failed to remove PID file")
		}
	}()

	topo := topology.Detect(topology.NewSysfsIdentifier(), runtime.NumCPU())
	assigner := affinity.New(topo)
	logger.Info().
		Int("total_cores", topo.TotalCores).
		Bool("recognized", topo.Recognized).
		Str("soc", topo.SoC).
		Int("recommended_threads", assigner.RecommendedThreadCount()).
		Msg("Core topology detected")

	sensor := thermal.Select(thermal.NewSysfsStatusProvider(), thermal.NewSysfsBatteryProvider())

	store, err := openStore()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open settings store")
	}

	prefs, err := governor.OpenIniPreferences(cfg.PrefsPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open preference store")
	}

	metricsCfg := metrics.DefaultConfig()
	metricsCfg.DBPath = cfg.MetricsDB
	metricsCfg.Enabled = cfg.Metrics

	collector, err := metrics.NewService(metricsCfg, logger.Default())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}
	defer func() {
		if err := collector.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close metrics collector")
		}
	}()

	gov, err := governor.New(governor.Config{
		Store:    store,
		Prefs:    prefs,
		Sensor:   sensor,
		Interval: time.Duration(cfg.Interval) * time.Second,
		Recorder: &sampleRecorder{
			collector: collector,
			session:   uuid.NewString(),
		},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to construct governor")
	}
	defer gov.Shutdown()

	// An explicit startup profile overrides the persisted selection
	if cfg.Profile != "" && !cfg.Monitor {
		if p, err := profile.Parse(cfg.Profile); err == nil {
			gov.SetProfile(p)
		}
	}

	// An explicit auto setting overrides the persisted flag; otherwise the
	// flag loaded at construction decides whether monitoring starts.
	if cfg.AutoSet {
		gov.SetAutoThermalManagement(cfg.Auto)
	} else {
		gov.StartThermalMonitoring()
	}

	var srv *server.Server
	if cfg.Listen != "" {
		srv = server.New(cfg.Listen, gov, topo, assigner.RecommendedThreadCount())
		srv.Start()
	}

	waitForSignal()

	if srv != nil {
		srv.Stop()
	}
	logger.Info().Msg("Exiting...")
}

// openStore picks the settings backend. Monitor mode observes without
// touching the emulator's settings file.
func openStore() (settings.Store, error) {
	if cfg.Monitor {
		logger.Info().Msg("Monitor mode activated. Profile changes stay in memory.")
		return settings.NewMemoryStore(), nil
	}

	return settings.NewIniStore(cfg.SettingsPath)
}

func waitForSignal() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
}

// sampleRecorder bridges governor evaluations into the metrics collector.
// One session ID per process run.
type sampleRecorder struct {
	collector metrics.Collector
	session   string
}

func (r *sampleRecorder) RecordSample(level thermal.Level, user, effective profile.Profile, monitoring bool) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	err := r.collector.Record(ctx, &metrics.Snapshot{
		Timestamp:        time.Now(),
		SessionID:        r.session,
		ThermalLevel:     int(level),
		UserProfile:      user.String(),
		EffectiveProfile: effective.String(),
		Monitoring:       monitoring,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to record thermal sample")
	}
}
