// Package config defines all configuration structures for the Probite
// pipeline.  No I/O or parsing logic lives here — only plain data types and
// validation.
package config

import (
	"fmt"
	"time"
)

// ServerConfig holds HTTP server tunables for the operator API.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds Redis connection parameters.  Redis carries the
// knowledge-graph label cache and the per-subject reconciliation locks.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds Kafka producer parameters for pipeline events.
type KafkaConfig struct {
	Brokers         []string      `mapstructure:"brokers"`
	ProducerRetries int           `mapstructure:"producer_retries"`
	BatchSize       int           `mapstructure:"batch_size"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
}

// MinIOConfig holds the evidence-archive object storage parameters.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// KnowledgeConfig holds knowledge-graph client parameters.
type KnowledgeConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RequestInterval time.Duration `mapstructure:"request_interval"`
	LabelCacheTTL   time.Duration `mapstructure:"label_cache_ttl"`
	UserAgent       string        `mapstructure:"user_agent"`
}

// ExtractionConfig holds AI extraction client parameters.
type ExtractionConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	APIKey           string        `mapstructure:"api_key"`
	Model            string        `mapstructure:"model"`
	Timeout          time.Duration `mapstructure:"timeout"`
	RequestInterval  time.Duration `mapstructure:"request_interval"`
	RateLimitBackoff time.Duration `mapstructure:"rate_limit_backoff"`
	MaxRetries       int           `mapstructure:"max_retries"`
}

// ScoringConfig collects every weight and threshold of the similarity scorer
// and the reconciliation decision in one overridable value object.  The
// defaults reproduce the calibrated production behaviour; treat any change as
// a recalibration of both the automatic pipeline and the admin duplicate scan,
// which share this configuration.
type ScoringConfig struct {
	// MatchFloor is the minimum accumulated score for a pair to count as a
	// potential duplicate at all.
	MatchFloor int `mapstructure:"match_floor"`

	// HighThreshold and CertainThreshold bucket scores into match-confidence
	// levels; candidates at or above HighThreshold are discarded as
	// duplicates during reconciliation.
	HighThreshold    int `mapstructure:"high_threshold"`
	CertainThreshold int `mapstructure:"certain_threshold"`

	// CaseNumberWeight is added when any internal case number appears in both
	// records.
	CaseNumberWeight int `mapstructure:"case_number_weight"`

	// TitleMinRatio is the minimum common-token ratio for title similarity to
	// contribute; TitleWeight scales the ratio into points.
	TitleMinRatio float64 `mapstructure:"title_min_ratio"`
	TitleWeight   int     `mapstructure:"title_weight"`

	// CategoryWeight is added when both records share a category.
	CategoryWeight int `mapstructure:"category_weight"`

	// Date proximity brackets, in days, with their weights.  The tightest
	// applicable bracket wins.
	DateBracketTight  int `mapstructure:"date_bracket_tight"`
	DateBracketMedium int `mapstructure:"date_bracket_medium"`
	DateBracketWide   int `mapstructure:"date_bracket_wide"`
	DateWeightTight   int `mapstructure:"date_weight_tight"`
	DateWeightMedium  int `mapstructure:"date_weight_medium"`
	DateWeightWide    int `mapstructure:"date_weight_wide"`

	// SourceOverlapWeight is added when the records cite at least one common
	// source URL.
	SourceOverlapWeight int `mapstructure:"source_overlap_weight"`
}

// PipelineConfig holds discovery-pipeline tunables.
type PipelineConfig struct {
	// ConvictionConfidence / ChargeConfidence are the fixed confidence bands
	// assigned to structured conviction and charge claims.
	ConvictionConfidence int `mapstructure:"conviction_confidence"`
	ChargeConfidence     int `mapstructure:"charge_confidence"`

	// ExtractionMinConfidence is the floor below which AI extractions are
	// dropped.
	ExtractionMinConfidence int `mapstructure:"extraction_min_confidence"`

	// SlugMaxLength bounds generated slugs; SlugMaxAttempts bounds collision
	// retries before the item is reported as failed.
	SlugMaxLength   int `mapstructure:"slug_max_length"`
	SlugMaxAttempts int `mapstructure:"slug_max_attempts"`

	// LockTTL is how long a per-subject reconciliation lock is held before
	// expiring on its own.
	LockTTL time.Duration `mapstructure:"lock_ttl"`

	// RunInterval is the pause between two scheduled discovery batches in
	// the worker process.
	RunInterval time.Duration `mapstructure:"run_interval"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"`
}

// Config is the root configuration structure for the pipeline.  Every
// infrastructure component and application service reads its settings from
// the relevant sub-struct.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	Knowledge  KnowledgeConfig  `mapstructure:"knowledge"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Scoring    ScoringConfig    `mapstructure:"scoring"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	Log        LogConfig        `mapstructure:"log"`
}

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Database
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be >= 1, got %d", c.Database.MaxConns)
	}

	// Redis
	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	// Kafka
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}

	// External clients
	if c.Knowledge.BaseURL == "" {
		return fmt.Errorf("config: knowledge.base_url is required")
	}
	if c.Extraction.BaseURL == "" {
		return fmt.Errorf("config: extraction.base_url is required")
	}

	// Scoring
	if err := c.Scoring.Validate(); err != nil {
		return err
	}

	// Pipeline
	if c.Pipeline.ExtractionMinConfidence < 0 || c.Pipeline.ExtractionMinConfidence > 100 {
		return fmt.Errorf("config: pipeline.extraction_min_confidence must be in [0, 100]")
	}
	if c.Pipeline.SlugMaxLength < 8 {
		return fmt.Errorf("config: pipeline.slug_max_length must be >= 8, got %d", c.Pipeline.SlugMaxLength)
	}
	if c.Pipeline.SlugMaxAttempts < 1 {
		return fmt.Errorf("config: pipeline.slug_max_attempts must be >= 1, got %d", c.Pipeline.SlugMaxAttempts)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

// Validate checks the internal consistency of the scoring weights.
func (s *ScoringConfig) Validate() error {
	if s.MatchFloor < 0 || s.MatchFloor > 100 {
		return fmt.Errorf("config: scoring.match_floor must be in [0, 100], got %d", s.MatchFloor)
	}
	if s.HighThreshold < s.MatchFloor {
		return fmt.Errorf("config: scoring.high_threshold %d must be >= match_floor %d", s.HighThreshold, s.MatchFloor)
	}
	if s.CertainThreshold < s.HighThreshold {
		return fmt.Errorf("config: scoring.certain_threshold %d must be >= high_threshold %d", s.CertainThreshold, s.HighThreshold)
	}
	if s.TitleMinRatio < 0 || s.TitleMinRatio > 1 {
		return fmt.Errorf("config: scoring.title_min_ratio must be in [0, 1], got %f", s.TitleMinRatio)
	}
	if s.DateBracketTight > s.DateBracketMedium || s.DateBracketMedium > s.DateBracketWide {
		return fmt.Errorf("config: scoring date brackets must be ordered tight <= medium <= wide")
	}
	return nil
}
