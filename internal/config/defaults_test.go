package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaultsFillsZeroValues(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultDBHost, cfg.Database.Host)
	assert.Equal(t, DefaultDBName, cfg.Database.DBName)
	assert.Equal(t, DefaultRedisAddr, cfg.Redis.Addr)
	assert.Equal(t, []string{DefaultKafkaBroker}, cfg.Kafka.Brokers)
	assert.Equal(t, DefaultMinIOBucket, cfg.MinIO.Bucket)
	assert.Equal(t, DefaultKnowledgeInterval, cfg.Knowledge.RequestInterval)
	assert.Equal(t, DefaultRateLimitBackoff, cfg.Extraction.RateLimitBackoff)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
}

func TestApplyDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9999
	cfg.Database.Host = "db.internal"
	cfg.Knowledge.RequestInterval = 50 * time.Millisecond
	ApplyDefaults(cfg)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 50*time.Millisecond, cfg.Knowledge.RequestInterval)
}

func TestApplyDefaultsNilIsSafe(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
	assert.NotPanics(t, func() { ApplyScoringDefaults(nil) })
}

func TestDefaultScoringWeights(t *testing.T) {
	s := DefaultScoring()

	assert.Equal(t, 40, s.MatchFloor)
	assert.Equal(t, 75, s.HighThreshold)
	assert.Equal(t, 95, s.CertainThreshold)
	assert.Equal(t, 40, s.CaseNumberWeight)
	assert.InDelta(t, 0.30, s.TitleMinRatio, 1e-9)
	assert.Equal(t, 50, s.TitleWeight)
	assert.Equal(t, 15, s.CategoryWeight)
	assert.Equal(t, 7, s.DateBracketTight)
	assert.Equal(t, 30, s.DateBracketMedium)
	assert.Equal(t, 90, s.DateBracketWide)
	assert.Equal(t, 20, s.DateWeightTight)
	assert.Equal(t, 15, s.DateWeightMedium)
	assert.Equal(t, 10, s.DateWeightWide)
	assert.Equal(t, 15, s.SourceOverlapWeight)
}
