package board

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"dispatchboard/infrastructure/dispatch"
)

// OrderStatus is the board's three-state shipping status.
type OrderStatus string

const (
	StatusShipped OrderStatus = "shipped"
	StatusPending OrderStatus = "pending"
	StatusDelayed OrderStatus = "delayed"
)

// RiskLevel is the display severity derived from the backend risk flag.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
	RiskNone   RiskLevel = "none"
)

// Order is the table row entity. Rebuilt from scratch on every refresh;
// no identity survives across cycles.
type Order struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	Receiver    string      `json:"receiver"`
	RequestTime string      `json:"requestTime"`
	Status      OrderStatus `json:"status"`
	HasReturn   bool        `json:"hasReturn"`
	Risk        RiskLevel   `json:"risk"`
	RiskFlag    string      `json:"riskFlag"`
}

// Alert is one delay warning shown in the banner strip.
type Alert struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Summary aggregates the full current record set.
type Summary struct {
	TotalCount     int `json:"totalCount"`
	DeliveredCount int `json:"deliveredCount"`
	PendingCount   int `json:"pendingCount"`
	DelayedCount   int `json:"delayedCount"`
	ReceiptCount   int `json:"receiptCount"`
}

const (
	alertCap     = 8
	alertMessage = "overdue - not shipped"
)

// timeLayouts covers the timestamp shapes the backend has been seen to emit.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.000Z07:00",
}

// ToOrders maps records to table rows, preserving input order.
func ToOrders(records []dispatch.Record) []Order {
	orders := make([]Order, 0, len(records))
	for _, rec := range records {
		orders = append(orders, ToOrder(rec))
	}
	return orders
}

// ToOrder maps one record to its view entity. Status is shipped whenever
// the normalized delivered flag is truthy, regardless of how the backend
// encoded it.
func ToOrder(rec dispatch.Record) Order {
	delivered := NormalizeDelivered(rec.IsDelivered)

	status := StatusPending
	switch {
	case delivered:
		status = StatusShipped
	case rec.RiskFlag == dispatch.RiskDelayed:
		status = StatusDelayed
	}

	return Order{
		ID:          rec.SheetNo,
		Type:        rec.SupplyType,
		Receiver:    rec.ReceiverName,
		RequestTime: FormatClockTime(rec.LastRecRequireTime),
		Status:      status,
		HasReturn:   rec.HasReceipt,
		Risk:        riskLevelFor(rec.RiskFlag),
		RiskFlag:    rec.RiskFlag,
	}
}

// ToAlerts keeps the first alertCap delayed-without-receipt records in
// input order. No ranking.
func ToAlerts(records []dispatch.Record) []Alert {
	alerts := make([]Alert, 0, alertCap)
	for _, rec := range records {
		if rec.RiskFlag != dispatch.RiskDelayed || rec.HasReceipt {
			continue
		}
		alerts = append(alerts, Alert{
			ID:        rec.SheetNo,
			Message:   alertMessage,
			Timestamp: FormatClockTime(rec.LastRecRequireTime),
		})
		if len(alerts) == alertCap {
			break
		}
	}
	return alerts
}

// ToSummary computes the aggregate counts in a single pass. PendingCount
// is always total minus delivered, never counted independently.
func ToSummary(records []dispatch.Record) Summary {
	var s Summary
	s.TotalCount = len(records)
	for _, rec := range records {
		if NormalizeDelivered(rec.IsDelivered) {
			s.DeliveredCount++
		}
		if rec.HasReceipt {
			s.ReceiptCount++
		}
		if rec.RiskFlag == dispatch.RiskDelayed && !rec.HasReceipt {
			s.DelayedCount++
		}
	}
	s.PendingCount = s.TotalCount - s.DeliveredCount
	return s
}

// CountPendingWithReceipt counts records carrying a receipt whose delivered
// flag is explicitly boolean false. A receipt with no delivered record means
// the shipment bypassed the tracked workflow.
func CountPendingWithReceipt(records []dispatch.Record) int {
	n := 0
	for _, rec := range records {
		if v, ok := rec.IsDelivered.(bool); ok && !v && rec.HasReceipt {
			n++
		}
	}
	return n
}

// OffSystemCount reports shipments that produced a receipt without a
// delivered record.
func OffSystemCount(s Summary) int {
	if s.ReceiptCount > s.DeliveredCount {
		return s.ReceiptCount - s.DeliveredCount
	}
	return 0
}

// WarningVisible decides whether the receipt-mismatch banner shows.
func WarningVisible(pendingWithReceipt int, s Summary) bool {
	return pendingWithReceipt > 0 || s.ReceiptCount > s.DeliveredCount
}

// NormalizeDelivered collapses the backend's three delivered-flag
// representations (bool, number, numeric string) into one boolean.
// Any other representation is falsy.
func NormalizeDelivered(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val != 0
	case int:
		return val != 0
	case int64:
		return val != 0
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return false
		}
		return n != 0
	default:
		return false
	}
}

// riskLevelFor maps the backend flag to a display severity. Unrecognized
// flags fall back to none but are logged so a backend contract drift is
// visible in operations.
func riskLevelFor(flag string) RiskLevel {
	switch flag {
	case dispatch.RiskDelayed:
		return RiskHigh
	case dispatch.RiskAtRisk:
		return RiskMedium
	case dispatch.RiskOnTime, dispatch.RiskDelivered:
		return RiskLow
	case "":
		return RiskNone
	default:
		slog.Warn("unrecognized risk flag", slog.String("flag", flag))
		return RiskNone
	}
}

// FormatClockTime renders a backend timestamp as zero-padded local HH:MM,
// or "-" when absent or unparseable. Never fails.
func FormatClockTime(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "-"
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Local().Format("15:04")
		}
	}
	return "-"
}
