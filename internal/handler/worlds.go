package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/HarvestRealm_Go/internal/domain"
	"github.com/osse101/HarvestRealm_Go/internal/logger"
)

// WorldLister is the read-only listing side of the ledger
type WorldLister interface {
	ListWorlds(ctx context.Context, limit, offset int) ([]domain.WorldSummary, error)
}

// ListWorldsQuery is the paging window of GET /api/v1/worlds
type ListWorldsQuery struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// WorldsResponse is one page of the world listing
type WorldsResponse struct {
	Worlds []domain.WorldSummary `json:"worlds"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// WorldsHandler serves the world listing. Pages are cached briefly so a busy
// lobby does not turn into one aggregate query per visitor.
type WorldsHandler struct {
	lister WorldLister
	cache  *expirable.LRU[string, []domain.WorldSummary]
}

// NewWorldsHandler creates the listing handler. A ttl of zero disables caching.
func NewWorldsHandler(lister WorldLister, ttl time.Duration) *WorldsHandler {
	h := &WorldsHandler{lister: lister}
	if ttl > 0 {
		h.cache = expirable.NewLRU[string, []domain.WorldSummary](WorldsCacheSize, nil, ttl)
	}
	return h
}

// HandleList returns a page of worlds ordered by most recent planting
// @Summary List worlds
// @Description Worlds with at least one crop, most recently planted first
// @Tags worlds
// @Produce json
// @Param limit query int false "Page size (1-100)" default(20)
// @Param offset query int false "Rows to skip" default(0)
// @Success 200 {object} WorldsResponse
// @Failure 400 {object} ValidationErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/worlds [get]
func (h *WorldsHandler) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := ListWorldsQuery{Limit: DefaultWorldsLimit}
		if !decodeQueryInts(w, r, &q, map[string]*int{"limit": &q.Limit, "offset": &q.Offset}) {
			return
		}

		worlds, err := h.list(r.Context(), q.Limit, q.Offset)
		if err != nil {
			logger.FromContext(r.Context()).Error(LogMsgListWorldsFailed, "limit", q.Limit, "offset", q.Offset, "error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, WorldsResponse{Worlds: worlds, Limit: q.Limit, Offset: q.Offset})
	}
}

func (h *WorldsHandler) list(ctx context.Context, limit, offset int) ([]domain.WorldSummary, error) {
	key := strconv.Itoa(limit) + ":" + strconv.Itoa(offset)
	if h.cache != nil {
		if worlds, ok := h.cache.Get(key); ok {
			return worlds, nil
		}
	}

	worlds, err := h.lister.ListWorlds(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if worlds == nil {
		worlds = []domain.WorldSummary{}
	}
	if h.cache != nil {
		h.cache.Add(key, worlds)
	}
	return worlds, nil
}
