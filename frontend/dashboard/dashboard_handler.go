package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"dispatchboard/board"
	"dispatchboard/models"
)

// TrendSource serves the persisted snapshot series.
type TrendSource interface {
	Recent(ctx context.Context, limit int) ([]models.SummarySnapshot, error)
}

// PageQueryHandler renders the TV dashboard. A factoryCode query parameter
// overrides the configured factory for this view only; the override is
// resolved live so a wall display can be pointed at any plant.
func PageQueryHandler(orch *board.Orchestrator, api board.DispatchAPI, defaultFactory string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := orch.State()

		factoryName := state.FactoryName
		if code := board.ResolveFactoryCode(r.URL.Query(), defaultFactory); code != "" && code != defaultFactory {
			factoryName = lookupFactoryName(r.Context(), api, code)
		}

		start, end := orch.Scroll().Window(len(state.Orders))
		data := PageData{
			FactoryName:   factoryName,
			LastUpdate:    formatUpdateStamp(state.LastUpdate),
			Summary:       state.Summary,
			OffSystem:     board.OffSystemCount(state.Summary),
			WarningShown:  board.WarningVisible(state.PendingWithReceipt, state.Summary),
			PendingWithRc: state.PendingWithReceipt,
			Alerts:        state.Alerts,
			Rows:          state.Orders[start:end],
			WindowStart:   start,
			TotalOrders:   len(state.Orders),
			AtBottom:      orch.Scroll().AtBottom(),
			TableKey:      state.TableKey,
			ChartKey:      state.ChartKey,
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := DashboardPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		}
	}
}

// SnapshotQueryHandler serves the JSON view the page script polls.
func SnapshotQueryHandler(orch *board.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := orch.State()
		start, end := orch.Scroll().Window(len(state.Orders))

		resp := SnapshotResponse{
			FactoryName:        state.FactoryName,
			LastUpdate:         formatUpdateStamp(state.LastUpdate),
			Summary:            state.Summary,
			OffSystemCount:     board.OffSystemCount(state.Summary),
			WarningVisible:     board.WarningVisible(state.PendingWithReceipt, state.Summary),
			PendingWithReceipt: state.PendingWithReceipt,
			Alerts:             state.Alerts,
			Orders:             state.Orders[start:end],
			WindowStart:        start,
			WindowEnd:          end,
			TotalOrders:        len(state.Orders),
			ScrollOffset:       orch.Scroll().Offset(),
			AtBottom:           orch.Scroll().AtBottom(),
			TableKey:           state.TableKey,
			ChartKey:           state.ChartKey,
		}
		writeJSON(w, resp)
	}
}

// TrendQueryHandler serves the persisted summary series in chronological
// order for the trend chart.
func TrendQueryHandler(source TrendSource, points int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := source.Recent(r.Context(), points)
		if err != nil {
			http.Error(w, "failed to load trend series", http.StatusInternalServerError)
			return
		}
		series := make([]TrendPoint, 0, len(rows))
		for _, row := range rows {
			series = append(series, TrendPoint{
				CapturedAt:     row.CapturedAt.Local().Format("15:04"),
				TotalCount:     row.TotalCount,
				DeliveredCount: row.DeliveredCount,
				PendingCount:   row.PendingCount,
				DelayedCount:   row.DelayedCount,
				ReceiptCount:   row.ReceiptCount,
			})
		}
		writeJSON(w, series)
	}
}

// RefreshCommandHandler lets an operator force a reload. It travels the
// same path as the scroll cycle reaching bottom.
func RefreshCommandHandler(orch *board.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		orch.HandleBottomReached()
		w.WriteHeader(http.StatusAccepted)
	}
}

// ScrollReportCommandHandler accepts a manual scroll position from the
// page. Crossing the bottom threshold here behaves exactly like the
// automatic loop.
func ScrollReportCommandHandler(orch *board.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var report ScrollReport
		if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
			http.Error(w, "invalid scroll report", http.StatusBadRequest)
			return
		}
		orch.Scroll().ReportOffset(report.Offset)
		w.WriteHeader(http.StatusNoContent)
	}
}

func lookupFactoryName(ctx context.Context, api board.DispatchAPI, code string) string {
	info, err := api.GetFactoryInfo(ctx, code)
	if err != nil {
		slog.Error("factory override lookup failed", slog.String("factory_code", code), slog.Any("err", err))
		return "—"
	}
	if info.FactoryShortName != "" {
		return info.FactoryShortName
	}
	if info.FactoryName != "" {
		return info.FactoryName
	}
	return "—"
}

func formatUpdateStamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", slog.Any("err", err))
	}
}
