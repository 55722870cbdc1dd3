// Package knowledge implements the HTTP client for the public knowledge-graph
// service.  The upstream enforces a strict request rate, so every call goes
// through a fixed-interval gate, and entity labels are cached in Redis to
// avoid refetching the same offense vocabulary on every run.
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/probite-fr/probite/internal/config"
	"github.com/probite-fr/probite/internal/infrastructure/database/redis"
	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
	"github.com/probite-fr/probite/pkg/errors"
	atypes "github.com/probite-fr/probite/pkg/types/affair"
)

// Relation identifiers understood by the claims endpoint.
const (
	RelationConvictedOf = "convicted_of"
	RelationChargedWith = "charged_with"
)

const labelCacheKeyPrefix = "labels/"

// Claim is one judicial relation attached to a subject entity.
type Claim struct {
	Relation        atypes.ClaimKind `json:"relation"`
	OffenseEntityID string           `json:"offense_entity_id"`
	EntityURL       string           `json:"entity_url"`
}

// Client queries the knowledge graph over HTTP JSON.
type Client interface {
	// GetClaims returns the judicial claims of an external entity, limited to
	// the given relations.
	GetClaims(ctx context.Context, externalID string, relations []string) ([]Claim, error)

	// GetEntityLabels resolves entity ids to their French labels.  Labels are
	// served from the Redis cache when possible; only misses hit the API.
	GetEntityLabels(ctx context.Context, ids []string) (map[string]string, error)
}

type httpClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
	cache     redis.Cache
	cacheTTL  time.Duration
	logger    logging.Logger

	// gate enforces the fixed minimum interval between requests.
	gateMu   sync.Mutex
	interval time.Duration
	lastCall time.Time
}

// NewClient builds a knowledge-graph client.  cache may be nil, in which case
// every label lookup hits the API.
func NewClient(cfg config.KnowledgeConfig, cache redis.Cache, log logging.Logger) (Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New(errors.ErrCodeValidation, "knowledge base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	interval := cfg.RequestInterval
	if interval <= 0 {
		interval = config.DefaultKnowledgeInterval
	}
	cacheTTL := cfg.LabelCacheTTL
	if cacheTTL <= 0 {
		cacheTTL = config.DefaultLabelCacheTTL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "probite/1.0"
	}
	return &httpClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    log,
		interval:  interval,
	}, nil
}

// waitTurn blocks until the minimum interval since the previous request has
// elapsed, or the context is cancelled.
func (c *httpClient) waitTurn(ctx context.Context) error {
	c.gateMu.Lock()
	wait := c.interval - time.Since(c.lastCall)
	if wait > 0 {
		c.lastCall = c.lastCall.Add(c.interval)
	} else {
		c.lastCall = time.Now()
		wait = 0
	}
	c.gateMu.Unlock()

	if wait == 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type claimsResponse struct {
	Claims []Claim `json:"claims"`
}

func (c *httpClient) GetClaims(ctx context.Context, externalID string, relations []string) ([]Claim, error) {
	if externalID == "" {
		return nil, errors.New(errors.ErrCodeValidation, "external entity id is required")
	}

	query := url.Values{}
	for _, rel := range relations {
		query.Add("relation", rel)
	}
	endpoint := fmt.Sprintf("%s/entities/%s/claims?%s", c.baseURL, url.PathEscape(externalID), query.Encode())

	var resp claimsResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	claims := make([]Claim, 0, len(resp.Claims))
	for _, claim := range resp.Claims {
		if !claim.Relation.IsValid() || claim.OffenseEntityID == "" {
			continue
		}
		claims = append(claims, claim)
	}
	return claims, nil
}

type labelsResponse struct {
	Labels map[string]string `json:"labels"`
}

func (c *httpClient) GetEntityLabels(ctx context.Context, ids []string) (map[string]string, error) {
	labels := make(map[string]string, len(ids))
	missing := ids

	if c.cache != nil {
		missing = missing[:0:0]
		keys := make([]string, 0, len(ids))
		for _, id := range ids {
			keys = append(keys, labelCacheKeyPrefix+id)
		}
		cached, err := c.cache.MGet(ctx, keys)
		if err != nil {
			c.logger.Warn("label cache read failed", logging.Err(err))
			cached = nil
		}
		for _, id := range ids {
			if raw, ok := cached[labelCacheKeyPrefix+id]; ok {
				var label string
				if json.Unmarshal(raw, &label) == nil && label != "" {
					labels[id] = label
					continue
				}
			}
			missing = append(missing, id)
		}
	}

	if len(missing) == 0 {
		return labels, nil
	}

	query := url.Values{"id": missing}
	endpoint := fmt.Sprintf("%s/labels?%s&lang=fr", c.baseURL, query.Encode())

	var resp labelsResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	fresh := make(map[string]interface{}, len(resp.Labels))
	for id, label := range resp.Labels {
		labels[id] = label
		fresh[labelCacheKeyPrefix+id] = label
	}
	if c.cache != nil && len(fresh) > 0 {
		if err := c.cache.MSet(ctx, fresh, c.cacheTTL); err != nil {
			c.logger.Warn("label cache write failed", logging.Err(err))
		}
	}
	return labels, nil
}

func (c *httpClient) getJSON(ctx context.Context, endpoint string, dest interface{}) error {
	if err := c.waitTurn(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeKGUnavailable, "request gate interrupted")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to build knowledge request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeKGUnavailable, "knowledge graph request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return errors.New(errors.ErrCodeKGRateLimited, "knowledge graph rate limit exceeded")
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errors.New(errors.ErrCodeKGAuthFailed, fmt.Sprintf("knowledge graph rejected request: %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return errors.New(errors.ErrCodeKGUnavailable, fmt.Sprintf("knowledge graph returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeKGUnavailable, "failed to read knowledge response")
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return errors.Wrap(err, errors.ErrCodeKGParseError, "failed to decode knowledge response")
	}
	return nil
}
