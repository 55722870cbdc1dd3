// Package config provides configuration loading, defaults, and validation for
// the Probite pipeline.
package config

import "time"

const (
	DefaultServerPort = 8080
	DefaultServerMode = "release"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "probite"
	DefaultDBMaxConns = 25

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "probite:"

	DefaultKafkaBroker = "localhost:9092"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "probite-evidence"

	DefaultKnowledgeInterval = 500 * time.Millisecond
	DefaultLabelCacheTTL     = 24 * time.Hour

	DefaultExtractionInterval = 2 * time.Second
	DefaultRateLimitBackoff   = 30 * time.Second
	DefaultExtractionRetries  = 3

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default scoring weights and thresholds.  These are calibrated values;
// overriding them changes both automatic reconciliation and the admin
// duplicate scan in lockstep.
const (
	DefaultMatchFloor          = 40
	DefaultHighThreshold       = 75
	DefaultCertainThreshold    = 95
	DefaultCaseNumberWeight    = 40
	DefaultTitleMinRatio       = 0.30
	DefaultTitleWeight         = 50
	DefaultCategoryWeight      = 15
	DefaultDateBracketTight    = 7
	DefaultDateBracketMedium   = 30
	DefaultDateBracketWide     = 90
	DefaultDateWeightTight     = 20
	DefaultDateWeightMedium    = 15
	DefaultDateWeightWide      = 10
	DefaultSourceOverlapWeight = 15
)

// Default pipeline bands.
const (
	DefaultConvictionConfidence    = 95
	DefaultChargeConfidence        = 75
	DefaultExtractionMinConfidence = 40
	DefaultSlugMaxLength           = 80
	DefaultSlugMaxAttempts         = 50
	DefaultLockTTL                 = 2 * time.Minute
	DefaultRunInterval             = 6 * time.Hour
)

// ApplyDefaults fills every zero-value field in cfg with the platform default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.  It must be called
// after unmarshalling and before Validate() so that optional-but-defaulted
// fields are never seen as missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = "migrations"
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = time.Hour
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.ProducerRetries == 0 {
		cfg.Kafka.ProducerRetries = 3
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}

	// ── Knowledge graph client ────────────────────────────────────────────────
	if cfg.Knowledge.Timeout == 0 {
		cfg.Knowledge.Timeout = 30 * time.Second
	}
	if cfg.Knowledge.RequestInterval == 0 {
		cfg.Knowledge.RequestInterval = DefaultKnowledgeInterval
	}
	if cfg.Knowledge.LabelCacheTTL == 0 {
		cfg.Knowledge.LabelCacheTTL = DefaultLabelCacheTTL
	}
	if cfg.Knowledge.UserAgent == "" {
		cfg.Knowledge.UserAgent = "probite-discovery/1.0"
	}

	// ── Extraction client ─────────────────────────────────────────────────────
	if cfg.Extraction.Timeout == 0 {
		cfg.Extraction.Timeout = 120 * time.Second
	}
	if cfg.Extraction.RequestInterval == 0 {
		cfg.Extraction.RequestInterval = DefaultExtractionInterval
	}
	if cfg.Extraction.RateLimitBackoff == 0 {
		cfg.Extraction.RateLimitBackoff = DefaultRateLimitBackoff
	}
	if cfg.Extraction.MaxRetries == 0 {
		cfg.Extraction.MaxRetries = DefaultExtractionRetries
	}

	// ── Scoring ───────────────────────────────────────────────────────────────
	ApplyScoringDefaults(&cfg.Scoring)

	// ── Pipeline ──────────────────────────────────────────────────────────────
	if cfg.Pipeline.ConvictionConfidence == 0 {
		cfg.Pipeline.ConvictionConfidence = DefaultConvictionConfidence
	}
	if cfg.Pipeline.ChargeConfidence == 0 {
		cfg.Pipeline.ChargeConfidence = DefaultChargeConfidence
	}
	if cfg.Pipeline.ExtractionMinConfidence == 0 {
		cfg.Pipeline.ExtractionMinConfidence = DefaultExtractionMinConfidence
	}
	if cfg.Pipeline.SlugMaxLength == 0 {
		cfg.Pipeline.SlugMaxLength = DefaultSlugMaxLength
	}
	if cfg.Pipeline.SlugMaxAttempts == 0 {
		cfg.Pipeline.SlugMaxAttempts = DefaultSlugMaxAttempts
	}
	if cfg.Pipeline.LockTTL == 0 {
		cfg.Pipeline.LockTTL = DefaultLockTTL
	}
	if cfg.Pipeline.RunInterval == 0 {
		cfg.Pipeline.RunInterval = DefaultRunInterval
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

// ApplyScoringDefaults fills zero-value scoring weights.  Exposed separately
// so tests and the admin scan can build a default ScoringConfig without going
// through full config loading.
func ApplyScoringDefaults(s *ScoringConfig) {
	if s == nil {
		return
	}
	if s.MatchFloor == 0 {
		s.MatchFloor = DefaultMatchFloor
	}
	if s.HighThreshold == 0 {
		s.HighThreshold = DefaultHighThreshold
	}
	if s.CertainThreshold == 0 {
		s.CertainThreshold = DefaultCertainThreshold
	}
	if s.CaseNumberWeight == 0 {
		s.CaseNumberWeight = DefaultCaseNumberWeight
	}
	if s.TitleMinRatio == 0 {
		s.TitleMinRatio = DefaultTitleMinRatio
	}
	if s.TitleWeight == 0 {
		s.TitleWeight = DefaultTitleWeight
	}
	if s.CategoryWeight == 0 {
		s.CategoryWeight = DefaultCategoryWeight
	}
	if s.DateBracketTight == 0 {
		s.DateBracketTight = DefaultDateBracketTight
	}
	if s.DateBracketMedium == 0 {
		s.DateBracketMedium = DefaultDateBracketMedium
	}
	if s.DateBracketWide == 0 {
		s.DateBracketWide = DefaultDateBracketWide
	}
	if s.DateWeightTight == 0 {
		s.DateWeightTight = DefaultDateWeightTight
	}
	if s.DateWeightMedium == 0 {
		s.DateWeightMedium = DefaultDateWeightMedium
	}
	if s.DateWeightWide == 0 {
		s.DateWeightWide = DefaultDateWeightWide
	}
	if s.SourceOverlapWeight == 0 {
		s.SourceOverlapWeight = DefaultSourceOverlapWeight
	}
}

// DefaultScoring returns a fully-populated ScoringConfig with the calibrated
// production weights.
func DefaultScoring() ScoringConfig {
	var s ScoringConfig
	ApplyScoringDefaults(&s)
	return s
}
