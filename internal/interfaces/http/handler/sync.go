package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	syncapp "github.com/shop/backend/internal/application/sync"
	domainsync "github.com/shop/backend/internal/domain/sync"
	"github.com/shop/backend/internal/infrastructure/telemetry"
	"github.com/shop/backend/internal/interfaces/http/dto"
)

// defaultRunsLimit caps the run ledger listing when no limit is given
const defaultRunsLimit = 20

// SyncHandler handles catalog synchronization endpoints
type SyncHandler struct {
	BaseHandler
	syncService *syncapp.SyncService
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncService *syncapp.SyncService) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
	}
}

// SyncRunResponse represents a sync run ledger entry in API responses
type SyncRunResponse struct {
	ID         uuid.UUID  `json:"id"`
	Type       string     `json:"type"`
	Provider   string     `json:"provider"`
	Status     string     `json:"status"`
	Processed  int        `json:"processed"`
	Created    int        `json:"created"`
	Updated    int        `json:"updated"`
	Errors     int        `json:"errors"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
	DurationMS int64      `json:"duration_ms"`
	Message    string     `json:"message,omitempty"`
}

func toSyncRunResponse(run *domainsync.SyncRun) SyncRunResponse {
	return SyncRunResponse{
		ID:         run.ID,
		Type:       run.Type.String(),
		Provider:   run.Provider,
		Status:     run.Status.String(),
		Processed:  run.Processed,
		Created:    run.Created,
		Updated:    run.Updated,
		Errors:     run.Errors,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		DurationMS: run.DurationMS,
		Message:    run.Message,
	}
}

// SyncCategories runs a category synchronization and returns its ledger entry
func (h *SyncHandler) SyncCategories(c *gin.Context) {
	h.runSync(c, "sync_categories", h.syncService.SyncCategories)
}

// SyncManufacturers runs a manufacturer synchronization and returns its ledger entry
func (h *SyncHandler) SyncManufacturers(c *gin.Context) {
	h.runSync(c, "sync_manufacturers", h.syncService.SyncManufacturers)
}

// SyncParameters runs an attribute dictionary synchronization and returns its ledger entry
func (h *SyncHandler) SyncParameters(c *gin.Context) {
	h.runSync(c, "sync_parameters", h.syncService.SyncParameters)
}

// SyncProducts runs a product synchronization and returns its ledger entry
func (h *SyncHandler) SyncProducts(c *gin.Context) {
	h.runSync(c, "sync_products", h.syncService.SyncProducts)
}

// SyncComplete runs a full synchronization pass, categories through products
func (h *SyncHandler) SyncComplete(c *gin.Context) {
	h.runSync(c, "sync_complete", h.syncService.SyncComplete)
}

// runSync executes one sync operation synchronously. The run ledger entry is
// returned even when the run itself failed; only a refused start is an error.
func (h *SyncHandler) runSync(c *gin.Context, operation string, fn func(ctx context.Context) (*domainsync.SyncRun, error)) {
	var (
		run *domainsync.SyncRun
		err error
	)
	telemetry.WithProfilingLabels(c.Request.Context(), telemetry.OperationLabels(operation, nil), func(ctx context.Context) {
		run, err = fn(ctx)
	})
	if err != nil {
		switch {
		case errors.Is(err, syncapp.ErrSyncAlreadyRunning):
			h.Error(c, dto.GetHTTPStatus(dto.ErrCodeSyncInProgress), dto.ErrCodeSyncInProgress, "Another sync run is already in progress")
		case errors.Is(err, domainsync.ErrProviderUnavailable):
			h.Error(c, dto.GetHTTPStatus(dto.ErrCodeUpstreamUnavailable), dto.ErrCodeUpstreamUnavailable, "Catalog provider is unavailable")
		case errors.Is(err, domainsync.ErrProviderRequestFailed), errors.Is(err, domainsync.ErrProviderInvalidResponse):
			h.Error(c, dto.GetHTTPStatus(dto.ErrCodeUpstreamRejected), dto.ErrCodeUpstreamRejected, "Catalog provider rejected the request")
		default:
			h.HandleError(c, err)
		}
		return
	}

	h.Success(c, toSyncRunResponse(run))
}

// ListRuns retrieves recent sync runs, newest first. An optional type query
// parameter narrows the listing to one sync type.
func (h *SyncHandler) ListRuns(c *gin.Context) {
	limit := defaultRunsLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.BadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	var (
		runs []domainsync.SyncRun
		err  error
	)
	if raw := c.Query("type"); raw != "" {
		syncType := domainsync.SyncType(raw)
		if !syncType.IsValid() {
			h.BadRequest(c, "Invalid sync type")
			return
		}
		runs, err = h.syncService.RunsByType(c.Request.Context(), syncType, limit)
	} else {
		runs, err = h.syncService.RecentRuns(c.Request.Context(), limit)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]SyncRunResponse, 0, len(runs))
	for i := range runs {
		responses = append(responses, toSyncRunResponse(&runs[i]))
	}

	h.Success(c, responses)
}
