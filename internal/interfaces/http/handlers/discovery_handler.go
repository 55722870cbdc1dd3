package handlers

import (
	"context"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/probite-fr/probite/internal/application/discovery"
	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
)

// PipelineRunner triggers one full discovery batch.
type PipelineRunner interface {
	Run(ctx context.Context) (*discovery.BatchSummary, error)
}

// DiscoveryHandler exposes the discovery pipeline to operators.
type DiscoveryHandler struct {
	pipeline PipelineRunner
	logger   logging.Logger

	// group collapses concurrent run requests onto a single batch; the
	// pipeline is idempotent but a run is expensive.
	group singleflight.Group
}

// NewDiscoveryHandler creates a DiscoveryHandler.
func NewDiscoveryHandler(pipeline PipelineRunner, log logging.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{pipeline: pipeline, logger: log}
}

// Run handles POST /api/v1/discovery/run.  Responds with the batch summary;
// concurrent requests share the in-flight run and receive the same summary.
func (h *DiscoveryHandler) Run(w http.ResponseWriter, r *http.Request) {
	// The run outlives the triggering request on purpose: a dropped
	// connection must not abort a half-finished batch.
	v, err, shared := h.group.Do("discovery-run", func() (interface{}, error) {
		return h.pipeline.Run(context.WithoutCancel(r.Context()))
	})
	if err != nil {
		h.logger.Error("discovery run failed", logging.Err(err))
		writeAppError(w, err)
		return
	}
	if shared {
		h.logger.Debug("discovery run request coalesced with in-flight batch")
	}
	writeJSON(w, http.StatusOK, v.(*discovery.BatchSummary))
}
