package transport

import (
	"encoding/json"
	"io"
	"net/http"

	"gamestore-ingest/internal/middleware"
	"gamestore-ingest/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PopulateRequest carries the optional listing filter parameters for a run.
type PopulateRequest struct {
	Params map[string]string `json:"params"`
}

// PopulateHandler exposes the ingestion trigger over HTTP.
type PopulateHandler struct {
	populate service.PopulateService
	logger   *zap.Logger
}

// NewPopulateHandler creates a new PopulateHandler
func NewPopulateHandler(populate service.PopulateService, logger *zap.Logger) *PopulateHandler {
	return &PopulateHandler{
		populate: populate,
		logger:   logger,
	}
}

// RegisterRoutes registers the trigger route; rateLimit may be nil when no
// limiter backend is configured.
func (h *PopulateHandler) RegisterRoutes(r chi.Router, rateLimit func(http.Handler) http.Handler) {
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if rateLimit != nil {
				r.Use(rateLimit)
			}
			r.Post("/populate", h.Populate)
		})
	})
}

// Populate runs one ingestion batch synchronously and responds with its
// summary. An empty body means an unfiltered run.
func (h *PopulateHandler) Populate(w http.ResponseWriter, r *http.Request) {
	var req PopulateRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		h.logger.Warn("Invalid populate request", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary := h.populate.Populate(r.Context(), req.Params)

	middleware.RespondWithJSON(w, http.StatusOK, summary)
}
