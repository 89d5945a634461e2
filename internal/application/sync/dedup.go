package syncapp

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shop/backend/internal/domain/catalog"
)

// removeDuplicates deletes later-created product rows that share a SKU or a
// (provider, external id) with an earlier row. The oldest row survives: it is
// the one other systems have referenced longest. Returns the number of rows
// removed.
func (s *SyncService) removeDuplicates(ctx context.Context) (int, error) {
	removed := 0

	skus, err := s.products.FindDuplicateSKUs(ctx)
	if err != nil {
		return removed, err
	}
	for _, sku := range skus {
		rows, err := s.products.FindAllBySKU(ctx, sku)
		if err != nil {
			return removed, err
		}
		n, err := s.deleteAllButOldest(ctx, rows)
		removed += n
		if err != nil {
			return removed, err
		}
	}

	pairs, err := s.products.FindDuplicateExternalIDs(ctx)
	if err != nil {
		return removed, err
	}
	for _, pair := range pairs {
		rows, err := s.products.FindAllByExternalID(ctx, pair.Provider, pair.ExternalID)
		if err != nil {
			return removed, err
		}
		n, err := s.deleteAllButOldest(ctx, rows)
		removed += n
		if err != nil {
			return removed, err
		}
	}

	if removed > 0 {
		s.logger.Info("duplicate products removed", zap.Int("removed", removed))
	}
	return removed, nil
}

// deleteAllButOldest removes every row except the first. Rows arrive ordered
// by creation time ascending.
func (s *SyncService) deleteAllButOldest(ctx context.Context, rows []catalog.Product) (int, error) {
	if len(rows) <= 1 {
		return 0, nil
	}
	ids := make([]uuid.UUID, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		ids = append(ids, rows[i].ID)
	}
	if err := s.products.DeleteBatch(ctx, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}
