package models

import (
	"time"

	"github.com/uptrace/bun"
)

// SummarySnapshot is one point on the board's trend chart: the aggregate
// counters captured after a successful refresh cycle.
type SummarySnapshot struct {
	bun.BaseModel `bun:"table:summary_snapshots,alias:ss"`

	ID                 int64     `bun:"id,pk,autoincrement"`
	FactoryCode        string    `bun:"factory_code,notnull,default:''"`
	TotalCount         int       `bun:"total_count,notnull"`
	DeliveredCount     int       `bun:"delivered_count,notnull"`
	PendingCount       int       `bun:"pending_count,notnull"`
	DelayedCount       int       `bun:"delayed_count,notnull"`
	ReceiptCount       int       `bun:"receipt_count,notnull"`
	PendingWithReceipt int       `bun:"pending_with_receipt,notnull,default:0"`
	CapturedAt         time.Time `bun:"captured_at,notnull,default:current_timestamp"`
}
