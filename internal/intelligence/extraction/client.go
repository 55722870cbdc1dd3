// Package extraction implements the client for the AI text-extraction
// service.  The service locates judicial sections in encyclopedia articles
// and turns free-form French prose into structured affair extractions.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/probite-fr/probite/internal/config"
	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
	"github.com/probite-fr/probite/pkg/errors"
	atypes "github.com/probite-fr/probite/pkg/types/affair"
)

// judicialHeadingPattern recognises the section headings worth extracting.
// The service applies the same filter; the client re-checks so a service
// regression cannot flood the pipeline with biography sections.
var judicialHeadingPattern = regexp.MustCompile(`(?i)(affaires?\s+judiciaires?|condamnations?|mises?\s+en\s+examen|poursuites?\s+judiciaires?|procès|démêlés\s+(avec\s+la\s+)?justice|controverses?\s+judiciaires?)`)

// IsJudicialHeading reports whether a section heading looks judicial.
func IsJudicialHeading(heading string) bool {
	return judicialHeadingPattern.MatchString(heading)
}

// Section is one judicial section of an encyclopedia article.
type Section struct {
	Heading string `json:"heading"`
	RawText string `json:"raw_text"`
	PageURL string `json:"page_url"`
}

// Extraction is one structured affair pulled out of a section.
type Extraction struct {
	Title           string
	Description     string
	Category        atypes.Category
	Status          atypes.ProceedingStatus
	Involvement     atypes.Involvement
	FactsDate       *time.Time
	Court           string
	Charges         []string
	ConfidenceScore int
	SourceURLs      []string
}

// Client talks to the extraction service.
type Client interface {
	// FindJudicialSections returns the judicial sections of the subject's
	// encyclopedia article, already filtered by heading.
	FindJudicialSections(ctx context.Context, subjectName string) ([]Section, error)

	// Extract runs structured extraction over one section.  Zero results is
	// a normal outcome for sections that only mention dropped proceedings.
	Extract(ctx context.Context, subjectName, heading, rawText, pageURL string) ([]Extraction, error)
}

type httpClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	logger  logging.Logger

	backoff    time.Duration
	maxRetries int

	// delayMu spaces extraction calls by interval.
	delayMu  sync.Mutex
	interval time.Duration
	lastCall time.Time
}

// NewClient builds an extraction client from configuration.
func NewClient(cfg config.ExtractionConfig, log logging.Logger) (Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New(errors.ErrCodeValidation, "extraction base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	backoff := cfg.RateLimitBackoff
	if backoff <= 0 {
		backoff = config.DefaultRateLimitBackoff
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = config.DefaultExtractionRetries
	}
	interval := cfg.RequestInterval
	if interval <= 0 {
		interval = config.DefaultExtractionInterval
	}
	return &httpClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		http:       &http.Client{Timeout: timeout},
		logger:     log,
		backoff:    backoff,
		maxRetries: retries,
		interval:   interval,
	}, nil
}

type sectionsRequest struct {
	SubjectName string `json:"subject_name"`
}

type sectionsResponse struct {
	Sections []Section `json:"sections"`
}

func (c *httpClient) FindJudicialSections(ctx context.Context, subjectName string) ([]Section, error) {
	if strings.TrimSpace(subjectName) == "" {
		return nil, errors.New(errors.ErrCodeValidation, "subject name is required")
	}

	var resp sectionsResponse
	if err := c.postJSON(ctx, "/sections/locate", sectionsRequest{SubjectName: subjectName}, &resp); err != nil {
		return nil, err
	}

	sections := make([]Section, 0, len(resp.Sections))
	for _, section := range resp.Sections {
		if !IsJudicialHeading(section.Heading) {
			c.logger.Warn("dropping non-judicial section returned by service",
				logging.String("subject", subjectName),
				logging.String("heading", section.Heading))
			continue
		}
		if strings.TrimSpace(section.RawText) == "" {
			continue
		}
		sections = append(sections, section)
	}
	return sections, nil
}

type extractRequest struct {
	SubjectName string `json:"subject_name"`
	Heading     string `json:"heading"`
	RawText     string `json:"raw_text"`
	PageURL     string `json:"page_url"`
	Model       string `json:"model,omitempty"`
}

type wireExtraction struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Category        string   `json:"category"`
	Status          string   `json:"status"`
	Involvement     string   `json:"involvement"`
	FactsDate       string   `json:"facts_date,omitempty"`
	Court           string   `json:"court,omitempty"`
	Charges         []string `json:"charges,omitempty"`
	ConfidenceScore int      `json:"confidence_score"`
	SourceURLs      []string `json:"source_urls,omitempty"`
}

type extractResponse struct {
	Extractions []wireExtraction `json:"extractions"`
}

func (c *httpClient) Extract(ctx context.Context, subjectName, heading, rawText, pageURL string) ([]Extraction, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, nil
	}

	req := extractRequest{
		SubjectName: subjectName,
		Heading:     heading,
		RawText:     rawText,
		PageURL:     pageURL,
		Model:       c.model,
	}

	var resp extractResponse
	if err := c.postJSON(ctx, "/extract", req, &resp); err != nil {
		return nil, err
	}

	extractions := make([]Extraction, 0, len(resp.Extractions))
	for _, wire := range resp.Extractions {
		extraction, err := decodeExtraction(wire)
		if err != nil {
			c.logger.Warn("dropping malformed extraction",
				logging.String("subject", subjectName),
				logging.String("title", wire.Title),
				logging.Err(err))
			continue
		}
		extractions = append(extractions, extraction)
	}
	return extractions, nil
}

// decodeExtraction validates a wire record into the typed form.
func decodeExtraction(wire wireExtraction) (Extraction, error) {
	if strings.TrimSpace(wire.Title) == "" {
		return Extraction{}, errors.New(errors.ErrCodeExtractionRejected, "extraction has no title")
	}
	category, err := atypes.ParseCategory(wire.Category)
	if err != nil {
		return Extraction{}, err
	}
	status, err := atypes.ParseProceedingStatus(wire.Status)
	if err != nil {
		return Extraction{}, err
	}
	involvement, err := atypes.ParseInvolvement(wire.Involvement)
	if err != nil {
		return Extraction{}, err
	}
	if wire.ConfidenceScore < 0 || wire.ConfidenceScore > 100 {
		return Extraction{}, errors.New(errors.ErrCodeExtractionRejected,
			fmt.Sprintf("confidence score %d out of range", wire.ConfidenceScore))
	}

	var factsDate *time.Time
	if wire.FactsDate != "" {
		parsed, err := time.Parse("2006-01-02", wire.FactsDate)
		if err != nil {
			return Extraction{}, errors.Wrap(err, errors.ErrCodeExtractionRejected, "invalid facts date")
		}
		factsDate = &parsed
	}

	return Extraction{
		Title:           wire.Title,
		Description:     wire.Description,
		Category:        category,
		Status:          status,
		Involvement:     involvement,
		FactsDate:       factsDate,
		Court:           wire.Court,
		Charges:         wire.Charges,
		ConfidenceScore: wire.ConfidenceScore,
		SourceURLs:      wire.SourceURLs,
	}, nil
}

// waitTurn spaces extraction calls by the configured interval.
func (c *httpClient) waitTurn(ctx context.Context) error {
	c.delayMu.Lock()
	wait := c.interval - time.Since(c.lastCall)
	if wait > 0 {
		c.lastCall = c.lastCall.Add(c.interval)
	} else {
		c.lastCall = time.Now()
		wait = 0
	}
	c.delayMu.Unlock()

	if wait == 0 {
		return nil
	}
	return sleepCtx(ctx, wait)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *httpClient) postJSON(ctx context.Context, path string, payload, dest interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to marshal extraction request")
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.waitTurn(ctx); err != nil {
			return errors.Wrap(err, errors.ErrCodeExtractionUnavailable, "request interval interrupted")
		}

		done, err := c.doOnce(ctx, path, body, dest)
		if done {
			return err
		}
		lastErr = err

		// Rate limited: extended backoff before the next attempt.
		if attempt < c.maxRetries {
			c.logger.Warn("extraction rate limited, backing off",
				logging.String("path", path),
				logging.Duration("backoff", c.backoff),
				logging.Int("attempt", attempt+1))
			if err := sleepCtx(ctx, c.backoff); err != nil {
				return errors.Wrap(err, errors.ErrCodeExtractionUnavailable, "backoff interrupted")
			}
		}
	}
	return lastErr
}

// doOnce performs one HTTP round trip.  done is false only for retryable
// rate-limit responses.
func (c *httpClient) doOnce(ctx context.Context, path string, body []byte, dest interface{}) (done bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return true, errors.Wrap(err, errors.ErrCodeInternal, "failed to build extraction request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return true, errors.Wrap(err, errors.ErrCodeExtractionUnavailable, "extraction request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return false, errors.New(errors.ErrCodeExtractionRateLimited, "extraction service rate limit exceeded")
	case resp.StatusCode != http.StatusOK:
		return true, errors.New(errors.ErrCodeExtractionUnavailable,
			fmt.Sprintf("extraction service returned status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return true, errors.Wrap(err, errors.ErrCodeExtractionUnavailable, "failed to read extraction response")
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return true, errors.Wrap(err, errors.ErrCodeExtractionParseError, "failed to decode extraction response")
	}
	return true, nil
}
