package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// DriverConfig wraps the simulation Config with the settings needed to run
// it behind cmd/tschsimd's HTTP+WS command surface. This mirrors the
// teacher's split between backend/config.Config (driver/server settings)
// and the values threaded into the simulated domain itself.
type DriverConfig struct {
	Sim Config

	Port         string
	JWTSecret    string
	TokenTTLSec  int
	AuthRPM      int
	StatsDBPath  string
	TallyEveryMs int
	TraceFile    string
}

// Load builds a DriverConfig from defaults, an optional config file, and
// environment variable overrides, extending the teacher's backend/config
// viper pattern: SetDefault → optional file → AutomaticEnv.
func Load(configPath ...string) DriverConfig {
	d := Default()

	viper.SetDefault("port", "8088")
	viper.SetDefault("jwt_secret", "dev-secret-change-me")
	viper.SetDefault("token_ttl_seconds", 86400)
	viper.SetDefault("auth_rpm", 60)
	viper.SetDefault("stats_db_path", "data/tschsim_stats.db")
	viper.SetDefault("tally_interval_ms", 5000)
	viper.SetDefault("trace_file", "")

	viper.SetDefault("seed", d.Seed)
	viper.SetDefault("duration_seconds", d.DurationSeconds)
	viper.SetDefault("default_slotframe_size", d.DefaultSlotframeSize)
	viper.SetDefault("slot_duration_us", d.SlotDurationUs)
	viper.SetDefault("min_be", d.MinBE)
	viper.SetDefault("max_be", d.MaxBE)
	viper.SetDefault("max_retries", d.MaxRetries)
	viper.SetDefault("queue_size", d.QueueSize)
	viper.SetDefault("max_subslots", d.MaxSubslots)
	viper.SetDefault("hopping_sequence", d.HoppingSequence)
	viper.SetDefault("fragmentation_enabled", d.FragmentationEnabled)
	viper.SetDefault("co_channel_rejection_db", d.CoChannelRejectionDb)
	viper.SetDefault("capture_effect_exact", d.CaptureEffectExact)
	viper.SetDefault("scheduling_algorithm", d.SchedulingAlgorithm)
	viper.SetDefault("routing_algorithm", d.RoutingAlgorithm)

	if len(configPath) > 0 && configPath[0] != "" {
		viper.SetConfigFile(configPath[0])
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("data")
		viper.AddConfigPath("/etc/tschsim")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("no config file found, using defaults and environment variables")
		} else {
			log.Printf("error reading config file: %v", err)
		}
	} else {
		log.Printf("using config file: %s", viper.ConfigFileUsed())
	}

	viper.SetEnvPrefix("")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	d.Seed = cast.ToInt64(viper.Get("seed"))
	d.DurationSeconds = viper.GetFloat64("duration_seconds")
	d.DefaultSlotframeSize = viper.GetInt("default_slotframe_size")
	d.SlotDurationUs = viper.GetFloat64("slot_duration_us")
	d.MinBE = viper.GetInt("min_be")
	d.MaxBE = viper.GetInt("max_be")
	d.MaxRetries = viper.GetInt("max_retries")
	d.QueueSize = viper.GetInt("queue_size")
	d.MaxSubslots = viper.GetInt("max_subslots")
	d.FragmentationEnabled = viper.GetBool("fragmentation_enabled")
	d.CoChannelRejectionDb = viper.GetFloat64("co_channel_rejection_db")
	d.CaptureEffectExact = viper.GetBool("capture_effect_exact")
	d.SchedulingAlgorithm = sanitizeAlgorithmName(viper.GetString("scheduling_algorithm"), "passthrough")
	d.RoutingAlgorithm = sanitizeAlgorithmName(viper.GetString("routing_algorithm"), "null")

	if hop := viper.Get("hopping_sequence"); hop != nil {
		if seq, err := cast.ToIntSliceE(hop); err == nil && len(seq) > 0 {
			d.HoppingSequence = seq
		} else if err != nil {
			log.Printf("warning: invalid hopping_sequence (%v), keeping default", err)
		}
	}

	if params := viper.Get("scheduling_params"); params != nil {
		if m, err := cast.ToStringMapE(params); err == nil {
			d.SchedulingParams = m
		}
	}
	if params := viper.Get("routing_params"); params != nil {
		if m, err := cast.ToStringMapE(params); err == nil {
			d.RoutingParams = m
		}
	}

	return DriverConfig{
		Sim:          d,
		Port:         viper.GetString("port"),
		JWTSecret:    viper.GetString("jwt_secret"),
		TokenTTLSec:  viper.GetInt("token_ttl_seconds"),
		AuthRPM:      viper.GetInt("auth_rpm"),
		StatsDBPath:  viper.GetString("stats_db_path"),
		TallyEveryMs: viper.GetInt("tally_interval_ms"),
		TraceFile:    viper.GetString("trace_file"),
	}
}

// sanitizeAlgorithmName falls back to fallback (logging a WARNING, never
// failing config load) when name is empty or unknown — spec.md §6's
// "unknown algorithm name falls back to a default" rule, mirrored on the
// teacher's "config file not found → defaults" non-fatal path. The core
// ships one scheduling algorithm ("passthrough") and one routing
// algorithm ("null"), so fallback is the only known name.
func sanitizeAlgorithmName(name, fallback string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		log.Printf("WARNING: empty algorithm name, falling back to %q", fallback)
		return fallback
	}
	if !strings.EqualFold(trimmed, fallback) {
		log.Printf("WARNING: unknown algorithm name %q, falling back to %q", name, fallback)
	}
	return fallback
}

// TallyInterval returns the tally interval as a time.Duration.
func (d DriverConfig) TallyInterval() time.Duration {
	return time.Duration(d.TallyEveryMs) * time.Millisecond
}

// TokenTTL returns the driver auth token lifetime as a time.Duration.
func (d DriverConfig) TokenTTL() time.Duration {
	return time.Duration(d.TokenTTLSec) * time.Second
}

func (d DriverConfig) String() string {
	return fmt.Sprintf("port=%s nodes_hopping_len=%d scheduling=%s routing=%s",
		d.Port, len(d.Sim.HoppingSequence), d.Sim.SchedulingAlgorithm, d.Sim.RoutingAlgorithm)
}
