package dashboard

import (
	"dispatchboard/board"
)

// PageData feeds the server-rendered dashboard page.
type PageData struct {
	FactoryName   string
	LastUpdate    string
	Summary       board.Summary
	OffSystem     int
	WarningShown  bool
	PendingWithRc int
	Alerts        []board.Alert
	Rows          []board.Order
	WindowStart   int
	TotalOrders   int
	AtBottom      bool
	TableKey      uint64
	ChartKey      uint64
}

// SnapshotResponse is the JSON the page script polls between renders.
type SnapshotResponse struct {
	FactoryName        string        `json:"factoryName"`
	LastUpdate         string        `json:"lastUpdate"`
	Summary            board.Summary `json:"summary"`
	OffSystemCount     int           `json:"offSystemCount"`
	WarningVisible     bool          `json:"warningVisible"`
	PendingWithReceipt int           `json:"pendingWithReceipt"`
	Alerts             []board.Alert `json:"alerts"`
	Orders             []board.Order `json:"orders"`
	WindowStart        int           `json:"windowStart"`
	WindowEnd          int           `json:"windowEnd"`
	TotalOrders        int           `json:"totalOrders"`
	ScrollOffset       int           `json:"scrollOffset"`
	AtBottom           bool          `json:"atBottom"`
	TableKey           uint64        `json:"tableKey"`
	ChartKey           uint64        `json:"chartKey"`
}

// TrendPoint is one sample of the trend chart series.
type TrendPoint struct {
	CapturedAt     string `json:"capturedAt"`
	TotalCount     int    `json:"totalCount"`
	DeliveredCount int    `json:"deliveredCount"`
	PendingCount   int    `json:"pendingCount"`
	DelayedCount   int    `json:"delayedCount"`
	ReceiptCount   int    `json:"receiptCount"`
}

// ScrollReport is the manual scroll position posted by the page.
type ScrollReport struct {
	Offset int `json:"offset"`
}
