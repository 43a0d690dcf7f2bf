package board

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"dispatchboard/infrastructure/dispatch"
)

func TestNormalizeDeliveredTable(t *testing.T) {
	truthy := []any{true, float64(1), 1, int64(3), "1", " 2 "}
	for _, v := range truthy {
		if !NormalizeDelivered(v) {
			t.Errorf("expected %v (%T) to normalize truthy", v, v)
		}
	}
	falsy := []any{false, float64(0), 0, "0", "", "yes", nil, []any{1}}
	for _, v := range falsy {
		if NormalizeDelivered(v) {
			t.Errorf("expected %v (%T) to normalize falsy", v, v)
		}
	}
}

func TestToOrderStatusFollowsDeliveredFlag(t *testing.T) {
	for _, v := range []any{true, float64(1), "1"} {
		order := ToOrder(dispatch.Record{SheetNo: "S", IsDelivered: v})
		if order.Status != StatusShipped {
			t.Errorf("delivered %v (%T): expected shipped, got %s", v, v, order.Status)
		}
	}
	for _, v := range []any{false, float64(0), "0", nil} {
		order := ToOrder(dispatch.Record{SheetNo: "S", IsDelivered: v})
		if order.Status != StatusPending {
			t.Errorf("delivered %v (%T): expected pending, got %s", v, v, order.Status)
		}
	}

	order := ToOrder(dispatch.Record{SheetNo: "S", RiskFlag: dispatch.RiskDelayed})
	if order.Status != StatusDelayed {
		t.Fatalf("undelivered DELAYED record: expected delayed, got %s", order.Status)
	}
	order = ToOrder(dispatch.Record{SheetNo: "S", RiskFlag: dispatch.RiskDelayed, IsDelivered: true})
	if order.Status != StatusShipped {
		t.Fatalf("delivered flag must win over risk flag, got %s", order.Status)
	}
}

func TestToOrderRiskMapping(t *testing.T) {
	cases := map[string]RiskLevel{
		dispatch.RiskDelayed:   RiskHigh,
		dispatch.RiskAtRisk:    RiskMedium,
		dispatch.RiskOnTime:    RiskLow,
		dispatch.RiskDelivered: RiskLow,
		"":                     RiskNone,
		"SOMETHING_NEW":        RiskNone,
	}
	for flag, want := range cases {
		order := ToOrder(dispatch.Record{SheetNo: "S", RiskFlag: flag})
		if order.Risk != want {
			t.Errorf("flag %q: expected %s, got %s", flag, want, order.Risk)
		}
		if order.RiskFlag != flag {
			t.Errorf("flag %q must be carried through, got %q", flag, order.RiskFlag)
		}
	}
}

func TestFormatClockTime(t *testing.T) {
	local := time.Date(2026, 8, 23, 7, 5, 0, 0, time.Local).Format(time.RFC3339)
	if got := FormatClockTime(local); got != "07:05" {
		t.Errorf("expected zero-padded 07:05, got %q", got)
	}
	for _, raw := range []string{"", "   ", "not-a-time", "23/08/2026"} {
		if got := FormatClockTime(raw); got != "-" {
			t.Errorf("raw %q: expected placeholder, got %q", raw, got)
		}
	}
}

func TestSummaryPendingIsDerived(t *testing.T) {
	sets := [][]dispatch.Record{
		nil,
		{{SheetNo: "A", IsDelivered: true}},
		{
			{SheetNo: "A", IsDelivered: true},
			{SheetNo: "B", IsDelivered: "0"},
			{SheetNo: "C", IsDelivered: float64(1)},
			{SheetNo: "D"},
		},
	}
	for i, records := range sets {
		s := ToSummary(records)
		if s.PendingCount != s.TotalCount-s.DeliveredCount {
			t.Errorf("set %d: pending=%d, want total-delivered=%d", i, s.PendingCount, s.TotalCount-s.DeliveredCount)
		}
	}
}

func TestToAlertsCapAndOrder(t *testing.T) {
	records := make([]dispatch.Record, 0, 12)
	for i := 0; i < 12; i++ {
		records = append(records, dispatch.Record{
			SheetNo:  fmt.Sprintf("S-%02d", i),
			RiskFlag: dispatch.RiskDelayed,
		})
	}
	// A delayed record with a receipt must not alert.
	records[3].HasReceipt = true

	alerts := ToAlerts(records)
	if len(alerts) != 8 {
		t.Fatalf("expected alert cap of 8, got %d", len(alerts))
	}
	want := []string{"S-00", "S-01", "S-02", "S-04", "S-05", "S-06", "S-07", "S-08"}
	for i, alert := range alerts {
		if alert.ID != want[i] {
			t.Fatalf("expected input order preserved, alert %d = %s, want %s", i, alert.ID, want[i])
		}
		if alert.Message != alertMessage {
			t.Fatalf("expected fixed message, got %q", alert.Message)
		}
	}
}

func TestScenarioBThreeRecords(t *testing.T) {
	records := []dispatch.Record{
		{SheetNo: "A", RiskFlag: dispatch.RiskDelayed, HasReceipt: false},
		{SheetNo: "B", IsDelivered: true},
		{SheetNo: "C", HasReceipt: true, IsDelivered: false},
	}
	s := ToSummary(records)
	if s.TotalCount != 3 || s.DeliveredCount != 1 || s.PendingCount != 2 || s.DelayedCount != 1 || s.ReceiptCount != 1 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if got := CountPendingWithReceipt(records); got != 1 {
		t.Fatalf("expected pendingWithReceipt=1, got %d", got)
	}
	if alerts := ToAlerts(records); len(alerts) != 1 || alerts[0].ID != "A" {
		t.Fatalf("expected exactly one alert for A, got %+v", alerts)
	}
}

func TestPendingWithReceiptRequiresExplicitFalse(t *testing.T) {
	records := []dispatch.Record{
		{SheetNo: "A", HasReceipt: true, IsDelivered: false},
		{SheetNo: "B", HasReceipt: true},                      // flag absent
		{SheetNo: "C", HasReceipt: true, IsDelivered: "0"},    // numeric string
		{SheetNo: "D", HasReceipt: false, IsDelivered: false}, // no receipt
	}
	if got := CountPendingWithReceipt(records); got != 1 {
		t.Fatalf("only explicit boolean false with receipt counts, got %d", got)
	}
}

func TestOffSystemCountAndWarning(t *testing.T) {
	s := Summary{ReceiptCount: 10, DeliveredCount: 7}
	if got := OffSystemCount(s); got != 3 {
		t.Fatalf("expected off-system count 3, got %d", got)
	}
	if !WarningVisible(0, s) {
		t.Fatalf("receipt>delivered must show the warning")
	}
	if WarningVisible(0, Summary{ReceiptCount: 2, DeliveredCount: 2}) {
		t.Fatalf("balanced counts without pendingWithReceipt must hide the warning")
	}
	if !WarningVisible(1, Summary{}) {
		t.Fatalf("pendingWithReceipt alone must show the warning")
	}
}

func TestTransformationsAreIdempotent(t *testing.T) {
	records := []dispatch.Record{
		{SheetNo: "A", RiskFlag: dispatch.RiskDelayed},
		{SheetNo: "B", IsDelivered: "1", HasReceipt: true},
		{SheetNo: "C", RiskFlag: dispatch.RiskAtRisk, LastRecRequireTime: "2026-08-23T06:30:00Z"},
	}
	if !reflect.DeepEqual(ToOrders(records), ToOrders(records)) {
		t.Fatalf("ToOrders is not idempotent")
	}
	if !reflect.DeepEqual(ToAlerts(records), ToAlerts(records)) {
		t.Fatalf("ToAlerts is not idempotent")
	}
	if !reflect.DeepEqual(ToSummary(records), ToSummary(records)) {
		t.Fatalf("ToSummary is not idempotent")
	}
}
