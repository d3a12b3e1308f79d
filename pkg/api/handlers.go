package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/goran-ethernal/FlashBatcher/internal/logger"
	"github.com/goran-ethernal/FlashBatcher/internal/store"
	"github.com/goran-ethernal/FlashBatcher/internal/types"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// BatchReader is the read side of the batch store used by the API.
type BatchReader interface {
	GetBatch(ctx context.Context, id string) (*types.Batch, error)
	ListBatches(ctx context.Context, status types.BatchStatus, limit, offset int) ([]*types.Batch, error)
	StatusCounts(ctx context.Context) (map[types.BatchStatus]uint64, error)
	LastBatchedBlock(ctx context.Context) (uint64, bool, error)
}

// PendingBlocks reports the accumulator state.
type PendingBlocks interface {
	Size() int
	Threshold() uint64
}

// Handler handles HTTP requests for the API.
type Handler struct {
	store   BatchReader
	pending PendingBlocks
	log     *logger.Logger
}

// NewHandler creates a new API handler. pending may be nil when no pipeline runs in this process.
func NewHandler(reader BatchReader, pending PendingBlocks, log *logger.Logger) *Handler {
	return &Handler{
		store:   reader,
		pending: pending,
		log:     log,
	}
}

// ListBatches returns stored batches, oldest first.
// @Summary List batches
// @Description List stored batches ordered by creation time with optional status filter and pagination
// @Tags Batches
// @Produce json
// @Param status query string false "Batch status" Enums(Pending, Submitting, Submitted, Failed)
// @Param limit query int false "Maximum number of batches to return" default(100)
// @Param offset query int false "Number of batches to skip" default(0)
// @Success 200 {object} BatchListResponse "Batches with pagination info"
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /batches [get]
func (h *Handler) ListBatches(w http.ResponseWriter, r *http.Request) {
	status, limit, offset, err := parseListParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid query parameters: %v", err))
		return
	}

	// one extra row tells whether another page exists
	batches, err := h.store.ListBatches(r.Context(), status, limit+1, offset)
	if err != nil {
		h.log.Errorf("failed to list batches: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list batches")
		return
	}

	hasMore := len(batches) > limit
	if hasMore {
		batches = batches[:limit]
	}

	items := make([]BatchResponse, 0, len(batches))
	for _, b := range batches {
		items = append(items, newBatchResponse(b, false))
	}

	respondJSON(w, http.StatusOK, BatchListResponse{
		Batches: items,
		Pagination: PaginationResult{
			Limit:   limit,
			Offset:  offset,
			Count:   len(items),
			HasMore: hasMore,
		},
	})
}

// GetBatch returns a single batch including its payload.
// @Summary Get batch
// @Description Get a stored batch by id, including the hex encoded payload
// @Tags Batches
// @Produce json
// @Param id path string true "Batch id"
// @Success 200 {object} BatchResponse "Batch"
// @Failure 404 {object} ErrorResponse "Batch not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /batches/{id} [get]
func (h *Handler) GetBatch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "batch id is required")
		return
	}

	batch, err := h.store.GetBatch(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, fmt.Sprintf("batch '%s' not found", id))
		return
	}
	if err != nil {
		h.log.Errorf("failed to get batch %s: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to get batch")
		return
	}

	respondJSON(w, http.StatusOK, newBatchResponse(batch, true))
}

// GetStats returns batch counts per status and the accumulator state.
// @Summary Get pipeline statistics
// @Description Batch counts per status, pending accumulator size and the highest batched block
// @Tags Stats
// @Produce json
// @Success 200 {object} StatsResponse "Pipeline statistics"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /stats [get]
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.StatusCounts(r.Context())
	if err != nil {
		h.log.Errorf("failed to count batches: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	last, ok, err := h.store.LastBatchedBlock(r.Context())
	if err != nil {
		h.log.Errorf("failed to get last batched block: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	resp := StatsResponse{Batches: make(map[string]uint64, len(counts))}
	for status, count := range counts {
		resp.Batches[string(status)] = count
		resp.TotalBatches += count
	}

	if ok {
		resp.LastBatchedBlock = &last
	}

	if h.pending != nil {
		resp.PendingBlocks = h.pending.Size()
		resp.BatchSize = h.pending.Threshold()
	}

	respondJSON(w, http.StatusOK, resp)
}

// Health returns the health status of the API and the batch store.
// @Summary Health check
// @Description Check that the API is up and the batch store answers queries
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Healthy"
// @Failure 503 {object} HealthResponse "Store unavailable"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Store:     "ok",
	}

	if _, err := h.store.StatusCounts(r.Context()); err != nil {
		h.log.Warnf("health check: store unavailable: %v", err)
		resp.Status = "degraded"
		resp.Store = err.Error()
		respondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// parseListParams parses the status filter and pagination of a batch listing.
func parseListParams(r *http.Request) (types.BatchStatus, int, int, error) {
	var (
		status types.BatchStatus
		limit  = defaultLimit
		offset int
	)

	query := r.URL.Query()

	if statusStr := query.Get("status"); statusStr != "" {
		parsed, err := types.ParseBatchStatus(statusStr)
		if err != nil {
			return status, limit, offset, err
		}
		status = parsed
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > maxLimit {
			return status, limit, offset, fmt.Errorf("invalid limit: must be between 1 and %d", maxLimit)
		}
		limit = parsed
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		parsed, err := strconv.Atoi(offsetStr)
		if err != nil || parsed < 0 {
			return status, limit, offset, fmt.Errorf("invalid offset: must be non-negative")
		}
		offset = parsed
	}

	return status, limit, offset, nil
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")

	// encode first so a failure can still change the status
	encoded, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	_, _ = w.Write(encoded)
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	respondJSON(w, status, response)
}
