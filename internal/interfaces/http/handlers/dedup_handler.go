package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/probite-fr/probite/internal/application/dedup"
	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
	"github.com/probite-fr/probite/pkg/errors"
)

// DuplicateScanner runs the read-only duplicate scan for one subject.
type DuplicateScanner interface {
	Scan(ctx context.Context, subjectID uuid.UUID) (*dedup.ScanResult, error)
}

// DedupHandler exposes the duplicate scan to operators.
type DedupHandler struct {
	scanner DuplicateScanner
	logger  logging.Logger
}

// NewDedupHandler creates a DedupHandler.
func NewDedupHandler(scanner DuplicateScanner, log logging.Logger) *DedupHandler {
	return &DedupHandler{scanner: scanner, logger: log}
}

// ScanSubject handles GET /api/v1/subjects/{subjectID}/duplicates.
func (h *DedupHandler) ScanSubject(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "subjectID")
	subjectID, err := uuid.Parse(raw)
	if err != nil {
		writeAppError(w, errors.NewValidationError("subject_id", "malformed subject id: "+raw))
		return
	}

	result, err := h.scanner.Scan(r.Context(), subjectID)
	if err != nil {
		h.logger.Error("duplicate scan failed",
			logging.String("subject_id", subjectID.String()), logging.Err(err))
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
