// Package config loads runtime configuration for the cleanup daemon.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/signalsfoundry/debridement/core"
	"github.com/signalsfoundry/debridement/internal/logging"
	"github.com/signalsfoundry/debridement/internal/observability"
	"github.com/signalsfoundry/debridement/timectrl"
)

// EnvPrefix is prepended to every environment override, e.g.
// DEBRIDEMENT_POLICY_INTERVAL.
const EnvPrefix = "DEBRIDEMENT"

// PolicyConfig mirrors core.PolicyConfig for decoding.
type PolicyConfig struct {
	Interval            time.Duration `mapstructure:"interval"`
	LandedMinDelay      float64       `mapstructure:"landed_min_delay"`
	LandedDistanceDelay float64       `mapstructure:"landed_distance_delay"`
	SplashFactor        float64       `mapstructure:"splash_factor"`
	OrbitMinDelay       float64       `mapstructure:"orbit_min_delay"`
	AtmosphereThreshold float64       `mapstructure:"atmosphere_threshold"`
	HomeBody            string        `mapstructure:"home_body"`
	HomeLatitude        float64       `mapstructure:"home_latitude"`
	HomeLongitude       float64       `mapstructure:"home_longitude"`
}

// LogConfig selects the log level and handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// TracingConfig controls span export.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	Exporter    string  `mapstructure:"exporter"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// ClockConfig drives simulation time for scenario worlds.
type ClockConfig struct {
	Tick time.Duration `mapstructure:"tick"`
	Warp int           `mapstructure:"warp"`
}

// Config holds all runtime configuration.
// Values are populated from debridement.yaml, DEBRIDEMENT_* env vars, and CLI flags.
type Config struct {
	Scenario string        `mapstructure:"scenario"`
	Policy   PolicyConfig  `mapstructure:"policy"`
	Log      LogConfig     `mapstructure:"log"`
	Metrics  MetricsConfig `mapstructure:"metrics"`
	Tracing  TracingConfig `mapstructure:"tracing"`
	Clock    ClockConfig   `mapstructure:"clock"`
}

// SetDefaults registers built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	p := core.DefaultPolicyConfig()
	v.SetDefault("scenario", "")
	v.SetDefault("policy.interval", p.Interval)
	v.SetDefault("policy.landed_min_delay", p.LandedMinDelay)
	v.SetDefault("policy.landed_distance_delay", p.LandedDistanceDelay)
	v.SetDefault("policy.splash_factor", p.SplashFactor)
	v.SetDefault("policy.orbit_min_delay", p.OrbitMinDelay)
	v.SetDefault("policy.atmosphere_threshold", p.AtmosphereThreshold)
	v.SetDefault("policy.home_body", p.HomeBody)
	v.SetDefault("policy.home_latitude", p.HomeLatitude)
	v.SetDefault("policy.home_longitude", p.HomeLongitude)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.addr", ":9464")

	t := observability.DefaultTracingConfig()
	v.SetDefault("tracing.enabled", t.Enabled)
	v.SetDefault("tracing.service_name", t.ServiceName)
	v.SetDefault("tracing.exporter", t.Exporter)
	v.SetDefault("tracing.endpoint", t.Endpoint)
	v.SetDefault("tracing.sample_ratio", t.SampleRatio)

	v.SetDefault("clock.tick", time.Second)
	v.SetDefault("clock.warp", 1)
}

// BindEnv enables DEBRIDEMENT_* overrides for nested keys.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// FlagBindings maps config keys to the command-line flags that override them.
var FlagBindings = map[string]string{
	"scenario":        "scenario",
	"log.level":       "log-level",
	"log.format":      "log-format",
	"metrics.addr":    "metrics-addr",
	"metrics.enabled": "metrics",
	"policy.interval": "interval",
	"clock.warp":      "warp",
}

// BindFlags binds every flag in FlagBindings that fs defines and the user
// set explicitly. Unset flags never shadow config file or env values.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for key, name := range FlagBindings {
		f := fs.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %q: %w", name, err)
		}
	}
	return nil
}

// Load reads configuration from the global viper instance.
func Load() (Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom applies defaults to v, decodes it and validates the policy.
func LoadFrom(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	BindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.CorePolicy().Validate(); err != nil {
		return Config{}, err
	}
	if cfg.Clock.Tick <= 0 {
		return Config{}, fmt.Errorf("clock.tick must be positive, got %s", cfg.Clock.Tick)
	}
	return cfg, nil
}

// CorePolicy converts the decoded policy into core form.
func (c Config) CorePolicy() core.PolicyConfig {
	return core.PolicyConfig{
		Interval:            c.Policy.Interval,
		LandedMinDelay:      c.Policy.LandedMinDelay,
		LandedDistanceDelay: c.Policy.LandedDistanceDelay,
		SplashFactor:        c.Policy.SplashFactor,
		OrbitMinDelay:       c.Policy.OrbitMinDelay,
		AtmosphereThreshold: c.Policy.AtmosphereThreshold,
		HomeBody:            c.Policy.HomeBody,
		HomeLatitude:        c.Policy.HomeLatitude,
		HomeLongitude:       c.Policy.HomeLongitude,
	}
}

// Logging returns the logger settings.
func (c Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}

// TracingSettings returns the observability tracing settings.
func (c Config) TracingSettings() observability.TracingConfig {
	return observability.TracingConfig{
		Enabled:     c.Tracing.Enabled,
		ServiceName: c.Tracing.ServiceName,
		Exporter:    c.Tracing.Exporter,
		Endpoint:    c.Tracing.Endpoint,
		SampleRatio: c.Tracing.SampleRatio,
	}
}

// ClockMode reports whether the scenario clock runs accelerated.
func (c Config) ClockMode() timectrl.Mode {
	if c.Clock.Warp > 1 {
		return timectrl.Accelerated
	}
	return timectrl.RealTime
}
