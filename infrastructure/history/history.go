package history

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"dispatchboard/board"
	"dispatchboard/infrastructure/sqlite"
	"dispatchboard/models"
)

// retainRows bounds the snapshot table; at one row per refresh this is
// several days of trend data.
const retainRows = 2880

// Store persists one summary snapshot per successful refresh and serves
// the trend chart series.
type Store struct {
	db *sqlite.DB
}

func NewStore(db *sqlite.DB) *Store {
	return &Store{db: db}
}

// Record writes a snapshot and prunes rows beyond the retention bound.
// Implements board.SnapshotStore.
func (s *Store) Record(ctx context.Context, factoryCode string, summary board.Summary, pendingWithReceipt int, capturedAt time.Time) error {
	return s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		snap := &models.SummarySnapshot{
			FactoryCode:        factoryCode,
			TotalCount:         summary.TotalCount,
			DeliveredCount:     summary.DeliveredCount,
			PendingCount:       summary.PendingCount,
			DelayedCount:       summary.DelayedCount,
			ReceiptCount:       summary.ReceiptCount,
			PendingWithReceipt: pendingWithReceipt,
			CapturedAt:         capturedAt,
		}
		if _, err := tx.NewInsert().Model(snap).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewRaw(`DELETE FROM summary_snapshots WHERE id NOT IN (SELECT id FROM summary_snapshots ORDER BY id DESC LIMIT ?)`, retainRows).Exec(ctx)
		return err
	})
}

// Recent returns up to limit snapshots in chronological order.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.SummarySnapshot, error) {
	if limit <= 0 {
		limit = 48
	}
	var rows []models.SummarySnapshot
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().
			Model(&rows).
			Order("id DESC").
			Limit(limit).
			Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	// Reverse into chronological order for the chart.
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}
