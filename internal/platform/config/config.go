// Package config loads process configuration from an optional YAML file and
// CUSTODIAN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"custodian/pkg/platform/middleware/metadata"
	"custodian/pkg/platform/validation"
)

// Config is the full process configuration.
type Config struct {
	Server     Server     `mapstructure:"server"`
	Log        Log        `mapstructure:"log"`
	Database   Database   `mapstructure:"database"`
	Kafka      Kafka      `mapstructure:"kafka"`
	Redis      Redis      `mapstructure:"redis"`
	Audit      Audit      `mapstructure:"audit"`
	Compliance Compliance `mapstructure:"compliance"`
	DSR        DSR        `mapstructure:"dsr"`
	Security   Security   `mapstructure:"security"`
	Jobs       Jobs       `mapstructure:"jobs"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `mapstructure:"addr"`
	Environment     string        `mapstructure:"environment"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// AdminToken, when set, is required in X-Admin-Token on every admin route.
	AdminToken string `mapstructure:"admin_token"`
	// TrustedProxies may set X-Forwarded-For; CIDR prefixes or addresses.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

type Log struct {
	Format string `mapstructure:"format"`
	Level  string `mapstructure:"level"`
}

// Database holds the postgres connection settings. An empty URL selects the
// in-memory stores.
type Database struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// Kafka is optional. Without brokers the hook consumer and alert producer are off.
type Kafka struct {
	Brokers    string `mapstructure:"brokers"`
	GroupID    string `mapstructure:"group_id"`
	HookTopic  string `mapstructure:"hook_topic"`
	AlertTopic string `mapstructure:"alert_topic"`
}

// Redis is optional. When set, retention sweeps take a cross-process lock.
type Redis struct {
	URL          string        `mapstructure:"url"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	SweepLockTTL time.Duration `mapstructure:"sweep_lock_ttl"`
}

type Audit struct {
	Enabled    bool      `mapstructure:"enabled"`
	BufferSize int       `mapstructure:"buffer_size"`
	Alerting   bool      `mapstructure:"alerting"`
	Retention  Retention `mapstructure:"retention"`
}

type Retention struct {
	Days         int  `mapstructure:"days"`
	MaxRecords   int  `mapstructure:"max_records"`
	KeepHighRisk bool `mapstructure:"keep_high_risk"`
	HighRiskDays int  `mapstructure:"high_risk_days"`
}

type Compliance struct {
	Frameworks   []string `mapstructure:"frameworks"`
	MaxParallel  int      `mapstructure:"max_parallel"`
	SeedDefaults bool     `mapstructure:"seed_defaults"`
}

// DSR lists the personal-data tables touched by access, deletion and
// rectification. An empty list selects the built-in defaults.
type DSR struct {
	Tables []DSRTable `mapstructure:"tables"`
}

// DSRTable names one personal-data table. Classification is the data label
// from security.classification_levels; unlabeled tables lower the labeled
// ratio compliance checks report.
type DSRTable struct {
	Table          string `mapstructure:"table"`
	SubjectColumn  string `mapstructure:"subject_column"`
	Classification string `mapstructure:"classification"`
}

// Security describes the live system state probed by compliance checks.
type Security struct {
	EncryptionKey        string   `mapstructure:"encryption_key"`
	TLSEnabled           bool     `mapstructure:"tls_enabled"`
	IdentityAuth         bool     `mapstructure:"identity_auth"`
	SessionTracking      bool     `mapstructure:"session_tracking"`
	Roles                []string `mapstructure:"roles"`
	Grants               []string `mapstructure:"grants"`
	ClassificationLevels []string `mapstructure:"classification_levels"`
}

type Jobs struct {
	Enabled           bool   `mapstructure:"enabled"`
	RetentionSchedule string `mapstructure:"retention_schedule"`
	OverdueSchedule   string `mapstructure:"overdue_schedule"`
}

// reservedTables may never be listed as personal-data tables: the audit trail
// and the request records are compliance evidence.
var reservedTables = map[string]bool{
	"audit_entries":            true,
	"dsr_requests":             true,
	"compliance_policies":      true,
	"compliance_check_results": true,
	"compliance_score_history": true,
	"compliance_reports":       true,
	"schema_migrations":        true,
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.admin_token", "")
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("log.format", "json")
	v.SetDefault("log.level", "info")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.group_id", "custodian")
	v.SetDefault("kafka.hook_topic", "custodian.hooks")
	v.SetDefault("kafka.alert_topic", "custodian.alerts")

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)
	v.SetDefault("redis.sweep_lock_ttl", 10*time.Minute)

	v.SetDefault("audit.enabled", true)
	v.SetDefault("audit.buffer_size", 10000)
	v.SetDefault("audit.alerting", true)
	v.SetDefault("audit.retention.days", 90)
	v.SetDefault("audit.retention.max_records", 1000000)
	v.SetDefault("audit.retention.keep_high_risk", true)
	v.SetDefault("audit.retention.high_risk_days", 365)

	v.SetDefault("compliance.frameworks", []string{"gdpr", "soc2", "hipaa", "iso27001"})
	v.SetDefault("compliance.max_parallel", 4)
	v.SetDefault("compliance.seed_defaults", false)

	v.SetDefault("dsr.tables", []DSRTable{})

	v.SetDefault("security.encryption_key", "")
	v.SetDefault("security.tls_enabled", false)
	v.SetDefault("security.identity_auth", true)
	v.SetDefault("security.session_tracking", true)
	v.SetDefault("security.roles", []string{})
	v.SetDefault("security.grants", []string{})
	v.SetDefault("security.classification_levels", []string{})

	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.retention_schedule", "@daily")
	v.SetDefault("jobs.overdue_schedule", "@hourly")
}

// Load reads path (if non-empty) then overlays CUSTODIAN_* environment
// variables, e.g. CUSTODIAN_DATABASE_URL or CUSTODIAN_AUDIT_RETENTION_DAYS.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("custodian")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the services cannot start with.
func (c Config) Validate() error {
	var errs []error
	if _, err := metadata.ParseTrustedProxies(c.Server.TrustedProxies); err != nil {
		errs = append(errs, fmt.Errorf("server.trusted_proxies: %w", err))
	}
	if c.Audit.BufferSize <= 0 {
		errs = append(errs, errors.New("audit.buffer_size must be positive"))
	}
	if c.Audit.Retention.Days <= 0 {
		errs = append(errs, errors.New("audit.retention.days must be positive"))
	}
	if c.Audit.Retention.KeepHighRisk && c.Audit.Retention.HighRiskDays < c.Audit.Retention.Days {
		errs = append(errs, errors.New("audit.retention.high_risk_days must not be shorter than audit.retention.days"))
	}
	if len(c.Compliance.Frameworks) == 0 {
		errs = append(errs, errors.New("compliance.frameworks must not be empty"))
	}
	if c.Compliance.MaxParallel <= 0 {
		errs = append(errs, errors.New("compliance.max_parallel must be positive"))
	}
	for _, t := range c.DSR.Tables {
		if !validation.IsIdentifier(t.Table) || !validation.IsIdentifier(t.SubjectColumn) {
			errs = append(errs, fmt.Errorf("dsr table %q: table and subject_column must be plain identifiers", t.Table))
			continue
		}
		if reservedTables[strings.ToLower(t.Table)] {
			errs = append(errs, fmt.Errorf("dsr table %q is reserved", t.Table))
		}
		if t.Classification != "" && len(c.Security.ClassificationLevels) > 0 &&
			!slices.Contains(c.Security.ClassificationLevels, t.Classification) {
			errs = append(errs, fmt.Errorf("dsr table %q: classification %q is not a configured level", t.Table, t.Classification))
		}
	}
	return errors.Join(errs...)
}
