package config

import (
	"os"
	"strings"

	"codeberg.org/mutker/perfgov/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultInterval = 5
	DefaultLogLevel = "info"

	defaultSettingsPath = "/var/lib/perfgov/emulator.ini"
	defaultPrefsPath    = "/var/lib/perfgov/perfgov.ini"
	defaultMetricsDB    = "/var/lib/perfgov/metrics.db"
)

type Config struct {
	Interval     int    `mapstructure:"interval"`
	Profile      string `mapstructure:"profile"`
	Auto         bool   `mapstructure:"auto"`
	AutoSet      bool   `mapstructure:"-"`
	Monitor      bool   `mapstructure:"monitor"`
	Debug        bool   `mapstructure:"debug"`
	Verbose      bool   `mapstructure:"verbose"`
	LogLevel     string `mapstructure:"log_level"`
	SettingsPath string `mapstructure:"settings"`
	PrefsPath    string `mapstructure:"preferences"`
	Metrics      bool   `mapstructure:"metrics"`
	MetricsDB    string `mapstructure:"database"`
	Listen       string `mapstructure:"listen"`
}

// Load reads configuration from defaults, an optional TOML config file
// (PERFGOV_CONFIG overrides the search path), PERFGOV_* environment
// variables, and command-line flags, in ascending precedence.
func Load() (*Config, error) {
	errFactory := errors.New()
	v := viper.New()

	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("profile", "")
	v.SetDefault("monitor", false)
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("settings", defaultSettingsPath)
	v.SetDefault("preferences", defaultPrefsPath)
	v.SetDefault("metrics", false)
	v.SetDefault("database", defaultMetricsDB)
	v.SetDefault("listen", "")

	flags := pflag.NewFlagSet("perfgov", pflag.ContinueOnError)
	// Tolerate foreign flags such as the test binary's
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.Int("interval", DefaultInterval, "Seconds between thermal samples")
	flags.String("profile", "", "Profile to apply at startup (default: last selected)")
	flags.Bool("auto", true, "Enable automatic thermal management")
	flags.Bool("monitor", false, "Only log thermal state, never apply profiles")
	flags.Bool("debug", false, "Enable debugging mode")
	flags.Bool("verbose", false, "Enable verbose logging")
	flags.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	flags.String("settings", defaultSettingsPath, "Path to the emulator settings file")
	flags.String("preferences", defaultPrefsPath, "Path to the governor preference store")
	flags.Bool("metrics", false, "Enable metrics collection")
	flags.String("database", defaultMetricsDB, "Path to the metrics database")
	flags.String("listen", "", "Status server listen address (empty disables)")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	if configPath := os.Getenv("PERFGOV_CONFIG"); configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("perfgov")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PERFGOV")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	flags.Visit(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		v.Set(key, f.Value.String())
	})

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	// No default is registered for auto, so IsSet means the file, the
	// environment, or a flag named it. Absent means the persisted flag wins.
	cfg.AutoSet = v.IsSet("auto")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}

	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	// Empty means the persisted selection wins
	switch c.Profile {
	case "", "battery_saver", "balanced", "performance":
	default:
		return errFactory.WithData(errors.ErrInvalidProfile, c.Profile)
	}

	return nil
}
