// Package dedup implements the operator-facing duplicate scan: a read-only
// pass over one subject's persisted affairs that scores every pair and
// reports the ones the scorer believes describe the same proceeding.
package dedup

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/probite-fr/probite/internal/domain/affair"
	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
	"github.com/probite-fr/probite/pkg/errors"
)

// ScanResult is the outcome of one duplicate scan.
type ScanResult struct {
	Groups []affair.DuplicateGroup `json:"groups"`
	Total  int                     `json:"total"`
}

// Scanner scores affair pairs of a single subject on demand.  It never
// writes; merging duplicates is a manual editorial decision.
type Scanner struct {
	affairs affair.Repository
	scorer  *affair.Scorer
	logger  logging.Logger
}

// NewScanner wires the duplicate scan service.
func NewScanner(affairs affair.Repository, scorer *affair.Scorer, log logging.Logger) *Scanner {
	return &Scanner{affairs: affairs, scorer: scorer, logger: log}
}

// Scan loads every affair of the subject and scores each unordered pair
// once.  Pairs the scorer rejects are dropped; the rest are returned sorted
// by score descending.
func (s *Scanner) Scan(ctx context.Context, subjectID uuid.UUID) (*ScanResult, error) {
	if subjectID == uuid.Nil {
		return nil, errors.NewValidationError("subject_id", "subject id must not be empty")
	}

	affairs, err := s.affairs.FindBySubject(ctx, subjectID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load affairs for duplicate scan")
	}

	result := &ScanResult{Groups: []affair.DuplicateGroup{}}
	if len(affairs) < 2 {
		return result, nil
	}

	records := make([]affair.Record, len(affairs))
	for i := range affairs {
		records[i] = affairs[i].ScoringRecord()
	}

	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			score := s.scorer.Score(records[i], records[j])
			if score == nil {
				continue
			}
			result.Groups = append(result.Groups, affair.DuplicateGroup{
				Score:   score.Score,
				Reasons: score.Reasons,
				Affairs: [2]affair.Summary{records[i].Summary, records[j].Summary},
			})
		}
	}

	// Stable so equal scores keep pair-enumeration order.
	sort.SliceStable(result.Groups, func(a, b int) bool {
		return result.Groups[a].Score > result.Groups[b].Score
	})
	result.Total = len(result.Groups)

	s.logger.Debug("duplicate scan finished",
		logging.String("subject_id", subjectID.String()),
		logging.Int("affairs", len(affairs)),
		logging.Int("groups", result.Total))
	return result, nil
}
