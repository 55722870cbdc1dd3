package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/probite-fr/probite/internal/config"
	"github.com/probite-fr/probite/internal/domain/affair"
	"github.com/probite-fr/probite/internal/domain/subject"
	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
	"github.com/probite-fr/probite/internal/infrastructure/storage/minio"
	"github.com/probite-fr/probite/internal/intelligence/extraction"
	atypes "github.com/probite-fr/probite/pkg/types/affair"
)

// TextExtractor turns encyclopedia prose into candidate affairs (Phase 2).
// Raw section snapshots are archived so every draft can be traced back to the
// text it came from; archive failures never fail the run.
type TextExtractor struct {
	client  extraction.Client
	archive minio.EvidenceArchive // may be nil
	cfg     config.PipelineConfig
	logger  logging.Logger
}

// NewTextExtractor wires the Phase-2 extractor.  archive may be nil when no
// evidence store is configured.
func NewTextExtractor(client extraction.Client, archive minio.EvidenceArchive,
	cfg config.PipelineConfig, log logging.Logger) *TextExtractor {
	if cfg.ExtractionMinConfidence == 0 {
		cfg.ExtractionMinConfidence = config.DefaultExtractionMinConfidence
	}
	return &TextExtractor{client: client, archive: archive, cfg: cfg, logger: log}
}

// Extract processes every subject.  seen holds the dedup keys of Phase-1
// candidates; an extraction whose (subject, category) matches one is dropped
// because the structured claim is the better-sourced record.
func (t *TextExtractor) Extract(ctx context.Context, subjects []*subject.Subject, seen map[string]struct{}) ([]affair.CandidateAffair, []string) {
	if seen == nil {
		seen = map[string]struct{}{}
	}

	var candidates []affair.CandidateAffair
	var errs []string

	for _, subj := range subjects {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Sprintf("text extraction interrupted: %v", err))
			return candidates, errs
		}

		subjectCandidates, err := t.extractSubject(ctx, subj, seen)
		if err != nil {
			errs = append(errs, fmt.Sprintf("subject %s: %v", subj.FullName, err))
			continue
		}
		candidates = append(candidates, subjectCandidates...)
	}
	return candidates, errs
}

func (t *TextExtractor) extractSubject(ctx context.Context, subj *subject.Subject, seen map[string]struct{}) ([]affair.CandidateAffair, error) {
	sections, err := t.client.FindJudicialSections(ctx, subj.FullName)
	if err != nil {
		return nil, err
	}

	var candidates []affair.CandidateAffair
	for _, section := range sections {
		t.archiveSection(ctx, subj, section)

		extractions, err := t.client.Extract(ctx, subj.FullName, section.Heading, section.RawText, section.PageURL)
		if err != nil {
			return candidates, err
		}

		for _, extracted := range extractions {
			candidate, ok := t.buildCandidate(subj, section, extracted, seen)
			if !ok {
				continue
			}
			if err := candidate.Validate(); err != nil {
				t.logger.Warn("dropping invalid text candidate",
					logging.String("subject", subj.FullName),
					logging.String("title", extracted.Title),
					logging.Err(err))
				continue
			}
			seen[candidate.DedupKey()] = struct{}{}
			candidates = append(candidates, candidate)
		}
	}

	t.logger.Debug("text sections extracted",
		logging.String("subject", subj.FullName),
		logging.Int("sections", len(sections)),
		logging.Int("candidates", len(candidates)))
	return candidates, nil
}

// archiveSection snapshots the raw text; failures degrade to a warning.
func (t *TextExtractor) archiveSection(ctx context.Context, subj *subject.Subject, section extraction.Section) {
	if t.archive == nil {
		return
	}
	if _, err := t.archive.ArchiveSection(ctx, subj.FullName, section.Heading, section.PageURL, section.RawText); err != nil {
		t.logger.Warn("failed to archive section snapshot",
			logging.String("subject", subj.FullName),
			logging.String("heading", section.Heading),
			logging.Err(err))
	}
}

func (t *TextExtractor) buildCandidate(subj *subject.Subject, section extraction.Section,
	extracted extraction.Extraction, seen map[string]struct{}) (affair.CandidateAffair, bool) {
	// Only records where the subject is a party survive; a politician merely
	// mentioned in someone else's trial is not an affair of theirs.
	if !extracted.Involvement.Publishable() {
		return affair.CandidateAffair{}, false
	}
	if extracted.ConfidenceScore < t.cfg.ExtractionMinConfidence {
		return affair.CandidateAffair{}, false
	}

	candidate := affair.CandidateAffair{
		SubjectID:       subj.ID,
		Title:           unverifiedTitle(extracted.Title),
		Description:     extracted.Description,
		Category:        extracted.Category,
		Status:          extracted.Status,
		Involvement:     extracted.Involvement,
		Publication:     atypes.PublicationDraft,
		Court:           extracted.Court,
		FactsDate:       extracted.FactsDate,
		ConfidenceScore: extracted.ConfidenceScore,
		Origin:          affair.PhaseText,
		Sources:         buildTextSources(section, extracted),
	}

	if _, dup := seen[candidate.DedupKey()]; dup {
		t.logger.Debug("text extraction duplicates a structured claim",
			logging.String("subject", subj.FullName),
			logging.String("category", candidate.Category.String()))
		return affair.CandidateAffair{}, false
	}
	return candidate, true
}

func unverifiedTitle(title string) string {
	if strings.HasPrefix(title, affair.UnverifiedPrefix) {
		return title
	}
	return affair.UnverifiedPrefix + title
}

// buildTextSources lists the encyclopedia page first, then every press URL
// the extraction cited, skipping duplicates of the page itself.
func buildTextSources(section extraction.Section, extracted extraction.Extraction) []affair.Source {
	sources := []affair.Source{{
		URL:   section.PageURL,
		Title: section.Heading,
		Type:  atypes.SourceText,
	}}
	for _, pressURL := range extracted.SourceURLs {
		if pressURL == "" || pressURL == section.PageURL {
			continue
		}
		sources = append(sources, affair.Source{
			URL:  pressURL,
			Type: atypes.SourcePress,
		})
	}
	return sources
}
