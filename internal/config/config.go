// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/inkforge/quillgate/internal/adjust"
	"github.com/inkforge/quillgate/internal/analytics"
	"github.com/inkforge/quillgate/internal/database"
)

type Config struct {
	Server        ServerConfig       `yaml:"server"`
	Database      DatabaseConfig     `yaml:"database"`
	Monitor       MonitorConfig      `yaml:"monitor"`
	Notifications NotificationConfig `yaml:"notifications"`
	Analytics     AnalyticsConfig    `yaml:"analytics"`
	Adjustments   AdjustmentConfig   `yaml:"adjustments"`
}

type ServerConfig struct {
	MetricsPort int    `yaml:"metrics_port"`
	LogLevel    string `yaml:"log_level"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
}

type MonitorConfig struct {
	// Schedule is a standard 5-field cron expression; empty disables the
	// monitor.
	Schedule string `yaml:"schedule"`
}

type NotificationConfig struct {
	RatePerSecond int `yaml:"rate_per_second"`
	Burst         int `yaml:"burst"`
}

// AnalyticsConfig overrides the analysis calibration. Zero values keep the
// defaults.
type AnalyticsConfig struct {
	AnalysisWindowDays    int     `yaml:"analysis_window_days"`
	CacheTTLSeconds       int     `yaml:"cache_ttl_seconds"`
	OverDependentRate     float64 `yaml:"over_dependent_rate"`
	UnderUtilizingRate    float64 `yaml:"under_utilizing_rate"`
	LowEffectivenessScore int     `yaml:"low_effectiveness_score"`
}

// AdjustmentConfig overrides the detection and gate calibration. Zero values
// keep the defaults.
type AdjustmentConfig struct {
	DependencyRate        float64 `yaml:"dependency_rate"`
	DependencyRateHigh    float64 `yaml:"dependency_rate_high"`
	LowUsageRate          float64 `yaml:"low_usage_rate"`
	StrugglingRate        float64 `yaml:"struggling_rate"`
	LowReflectionQuality  float64 `yaml:"low_reflection_quality"`
	EngagedUsageRate      float64 `yaml:"engaged_usage_rate"`
	LowCompletionRate     float64 `yaml:"low_completion_rate"`
	LongTimeOnTaskMinutes int     `yaml:"long_time_on_task_minutes"`
	DedupeWindowDays      int     `yaml:"dedupe_window_days"`
	MinAffectedStudents   int     `yaml:"min_affected_students"`
	MinEvidenceDeviation  float64 `yaml:"min_evidence_deviation"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			MetricsPort: 9090,
			LogLevel:    "info",
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "quillgate",
			User:     "quillgate",
			SSLMode:  "disable",
		},
		Monitor: MonitorConfig{
			Schedule: "0 */6 * * *",
		},
		Notifications: NotificationConfig{
			RatePerSecond: 20,
			Burst:         50,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	LoadFromEnv(cfg)
	return cfg, nil
}

// DatabaseConn projects the database section onto the connection bootstrap
// shape.
func (c *Config) DatabaseConn() database.Config {
	return database.Config{
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		Database: c.Database.Database,
		User:     c.Database.User,
		Password: c.Database.Password,
		SSLMode:  c.Database.SSLMode,
	}
}

// AnalyticsThresholds returns the default analytics calibration with any
// configured overrides applied.
func (c *Config) AnalyticsThresholds() analytics.Thresholds {
	t := analytics.DefaultThresholds()
	if c.Analytics.AnalysisWindowDays > 0 {
		t.AnalysisWindow = time.Duration(c.Analytics.AnalysisWindowDays) * 24 * time.Hour
	}
	if c.Analytics.OverDependentRate > 0 {
		t.OverDependentRate = c.Analytics.OverDependentRate
	}
	if c.Analytics.UnderUtilizingRate > 0 {
		t.UnderUtilizingRate = c.Analytics.UnderUtilizingRate
	}
	if c.Analytics.LowEffectivenessScore > 0 {
		t.LowEffectivenessScore = c.Analytics.LowEffectivenessScore
	}
	return t
}

// AdjustThresholds returns the default detection and gate calibration with
// any configured overrides applied.
func (c *Config) AdjustThresholds() adjust.Thresholds {
	t := adjust.DefaultThresholds()
	if c.Adjustments.DependencyRate > 0 {
		t.DependencyRate = c.Adjustments.DependencyRate
	}
	if c.Adjustments.DependencyRateHigh > 0 {
		t.DependencyRateHigh = c.Adjustments.DependencyRateHigh
	}
	if c.Adjustments.LowUsageRate > 0 {
		t.LowUsageRate = c.Adjustments.LowUsageRate
	}
	if c.Adjustments.StrugglingRate > 0 {
		t.StrugglingRate = c.Adjustments.StrugglingRate
	}
	if c.Adjustments.LowReflectionQuality > 0 {
		t.LowReflectionQuality = c.Adjustments.LowReflectionQuality
	}
	if c.Adjustments.EngagedUsageRate > 0 {
		t.EngagedUsageRate = c.Adjustments.EngagedUsageRate
	}
	if c.Adjustments.LowCompletionRate > 0 {
		t.LowCompletionRate = c.Adjustments.LowCompletionRate
	}
	if c.Adjustments.LongTimeOnTaskMinutes > 0 {
		t.LongTimeOnTask = time.Duration(c.Adjustments.LongTimeOnTaskMinutes) * time.Minute
	}
	if c.Adjustments.DedupeWindowDays > 0 {
		t.DedupeWindow = time.Duration(c.Adjustments.DedupeWindowDays) * 24 * time.Hour
	}
	if c.Adjustments.MinAffectedStudents > 0 {
		t.MinAffectedStudents = c.Adjustments.MinAffectedStudents
	}
	if c.Adjustments.MinEvidenceDeviation > 0 {
		t.MinEvidenceDeviation = c.Adjustments.MinEvidenceDeviation
	}
	return t
}

// CacheTTL returns the snapshot cache TTL override, or the default.
func (c *Config) CacheTTL() time.Duration {
	if c.Analytics.CacheTTLSeconds > 0 {
		return time.Duration(c.Analytics.CacheTTLSeconds) * time.Second
	}
	return analytics.DefaultSnapshotTTL
}
