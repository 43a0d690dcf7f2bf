package exports

import (
	"time"

	"dispatchboard/board"
)

// ReportData is the state frozen into one PDF board report.
type ReportData struct {
	FactoryName        string
	GeneratedAt        time.Time
	Summary            board.Summary
	OffSystem          int
	PendingWithReceipt int
	Orders             []board.Order
	Alerts             []board.Alert
}
