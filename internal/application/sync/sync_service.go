package syncapp

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/shop/backend/internal/domain/catalog"
	"github.com/shop/backend/internal/domain/shared"
	domainsync "github.com/shop/backend/internal/domain/sync"
	"github.com/shop/backend/internal/infrastructure/telemetry"
)

// ErrSyncAlreadyRunning is returned when a run is requested while another one
// holds the sync lock.
var ErrSyncAlreadyRunning = errors.New("sync: another run is already in progress")

// RunLock serializes sync runs across service instances. Acquire returns a
// release function on success and an error when the lock is held elsewhere.
type RunLock interface {
	Acquire(ctx context.Context, name string) (release func(), err error)
}

// MetricsRecorder receives sync telemetry. Implementations live in the
// infrastructure layer; a nil recorder disables metrics.
type MetricsRecorder interface {
	// RecordMatch counts one category match by the strategy that produced it
	RecordMatch(ctx context.Context, strategy string)
	// RecordRun records the outcome of a finished sync run
	RecordRun(ctx context.Context, syncType, status string, counters domainsync.Counters)
}

// SyncService orchestrates catalog synchronization from external providers:
// categories, manufacturers, parameter dictionaries and products, each
// recorded in the sync run ledger. Runs of any type are mutually exclusive.
type SyncService struct {
	providers     []domainsync.CatalogProvider
	categories    catalog.CategoryRepository
	products      catalog.ProductRepository
	attributes    catalog.AttributeRepository
	manufacturers catalog.ManufacturerRepository
	runs          domainsync.SyncRunRepository
	lock          RunLock
	metrics       MetricsRecorder
	logger        *zap.Logger
	chunks        ChunkConfig
}

// NewSyncService creates a sync service
func NewSyncService(
	providers []domainsync.CatalogProvider,
	categories catalog.CategoryRepository,
	products catalog.ProductRepository,
	attributes catalog.AttributeRepository,
	manufacturers catalog.ManufacturerRepository,
	runs domainsync.SyncRunRepository,
	lock RunLock,
	metrics MetricsRecorder,
	logger *zap.Logger,
	chunks ChunkConfig,
) *SyncService {
	return &SyncService{
		providers:     providers,
		categories:    categories,
		products:      products,
		attributes:    attributes,
		manufacturers: manufacturers,
		runs:          runs,
		lock:          lock,
		metrics:       metrics,
		logger:        logger,
		chunks:        chunks.withDefaults(),
	}
}

// SyncCategories imports the provider category trees into the canonical tree
func (s *SyncService) SyncCategories(ctx context.Context) (*domainsync.SyncRun, error) {
	return s.withRun(ctx, domainsync.SyncTypeCategories, s.syncCategories)
}

// SyncManufacturers imports manufacturer names from all providers
func (s *SyncService) SyncManufacturers(ctx context.Context) (*domainsync.SyncRun, error) {
	return s.withRun(ctx, domainsync.SyncTypeManufacturers, s.syncManufacturers)
}

// SyncParameters imports provider parameter dictionaries into the
// category-scoped attribute dictionaries.
func (s *SyncService) SyncParameters(ctx context.Context) (*domainsync.SyncRun, error) {
	return s.withRun(ctx, domainsync.SyncTypeParameters, s.syncParameters)
}

// SyncProducts imports products from all providers, reconciling categories,
// manufacturers and attributes along the way.
func (s *SyncService) SyncProducts(ctx context.Context) (*domainsync.SyncRun, error) {
	return s.withRun(ctx, domainsync.SyncTypeProducts, s.syncProducts)
}

// SyncComplete runs the full pipeline in dependency order: duplicates are
// removed first, then categories, manufacturers, parameters and finally
// products. The whole pipeline is recorded as one run.
func (s *SyncService) SyncComplete(ctx context.Context) (*domainsync.SyncRun, error) {
	return s.withRun(ctx, domainsync.SyncTypeComplete, func(ctx context.Context) (domainsync.Counters, error) {
		var total domainsync.Counters

		if _, err := s.removeDuplicates(ctx); err != nil {
			return total, err
		}

		steps := []func(context.Context) (domainsync.Counters, error){
			s.syncCategories,
			s.syncManufacturers,
			s.syncParameters,
			s.syncProducts,
		}
		for _, step := range steps {
			counters, err := step(ctx)
			total.Add(counters)
			if err != nil {
				return total, err
			}
		}
		return total, nil
	})
}

// RecentRuns lists the most recent runs from the ledger
func (s *SyncService) RecentRuns(ctx context.Context, limit int) ([]domainsync.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.runs.FindRecent(ctx, limit)
}

// RunsByType lists the most recent runs of one sync type
func (s *SyncService) RunsByType(ctx context.Context, syncType domainsync.SyncType, limit int) ([]domainsync.SyncRun, error) {
	if !syncType.IsValid() {
		return nil, domainsync.ErrRunInvalidType
	}
	if limit <= 0 {
		limit = 20
	}
	return s.runs.FindByType(ctx, syncType, limit)
}

// withRun wraps a sync step in the run ledger: acquire the lock, open an
// IN_PROGRESS record, execute, finish the record with the step's counters.
// The record is persisted even when the step fails.
func (s *SyncService) withRun(ctx context.Context, syncType domainsync.SyncType, fn func(context.Context) (domainsync.Counters, error)) (*domainsync.SyncRun, error) {
	release, err := s.lock.Acquire(ctx, "catalog-sync")
	if err != nil {
		return nil, ErrSyncAlreadyRunning
	}
	defer release()

	ctx, span := telemetry.StartServiceSpan(ctx, "sync", syncType.String())
	defer span.End()

	run, err := domainsync.NewSyncRun(syncType, s.providerLabel())
	if err != nil {
		return nil, err
	}
	// The ledger is diagnostic only: a failed write never blocks the sync.
	if err := s.runs.Save(ctx, run); err != nil {
		s.logger.Warn("failed to open sync run record, continuing",
			zap.String("run_id", run.ID.String()), zap.Error(err))
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrSyncRunID, run.ID,
		telemetry.SpanAttrProvider, s.providerLabel(),
	)

	s.logger.Info("sync run started",
		zap.String("run_id", run.ID.String()),
		zap.String("type", syncType.String()))

	counters, runErr := fn(ctx)

	if runErr != nil {
		_ = run.Fail(counters, runErr.Error())
		telemetry.RecordError(span, runErr)
	} else {
		_ = run.Complete(counters)
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrProcessed, counters.Processed)
	if err := s.runs.Save(ctx, run); err != nil {
		s.logger.Error("failed to persist sync run", zap.String("run_id", run.ID.String()), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.RecordRun(ctx, syncType.String(), run.Status.String(), counters)
	}

	s.logger.Info("sync run finished",
		zap.String("run_id", run.ID.String()),
		zap.String("type", syncType.String()),
		zap.String("status", run.Status.String()),
		zap.Int("processed", counters.Processed),
		zap.Int("created", counters.Created),
		zap.Int("updated", counters.Updated),
		zap.Int("errors", counters.Errors))

	return run, runErr
}

func (s *SyncService) providerLabel() string {
	if len(s.providers) == 1 {
		return s.providers[0].Code().String()
	}
	codes := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		codes = append(codes, p.Code().String())
	}
	return strings.Join(codes, ",")
}

func (s *SyncService) recordMatch(ctx context.Context, strategy MatchStrategy) {
	if s.metrics != nil {
		s.metrics.RecordMatch(ctx, string(strategy))
	}
}

// providerCategories returns, for one provider, every canonical category that
// carries this provider's external ref, paired with the ref itself. The ref is
// the handle used for per-category provider fetches.
func (s *SyncService) providerCategories(tree []catalog.Category, provider domainsync.CatalogProvider) []providerCategory {
	code := provider.Code().String()
	out := make([]providerCategory, 0, len(tree))
	for i := range tree {
		if handle, ok := tree[i].ExternalRef(code); ok {
			out = append(out, providerCategory{category: &tree[i], handle: handle})
		}
	}
	return out
}

type providerCategory struct {
	category *catalog.Category
	handle   string
}

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
