package exports

import (
	"log/slog"
	"net/http"
	"time"

	"dispatchboard/board"
)

// ReportQueryHandler freezes the current board into a PDF download.
func ReportQueryHandler(orch *board.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := orch.State()
		data := ReportData{
			FactoryName:        state.FactoryName,
			GeneratedAt:        time.Now(),
			Summary:            state.Summary,
			OffSystem:          board.OffSystemCount(state.Summary),
			PendingWithReceipt: state.PendingWithReceipt,
			Orders:             state.Orders,
			Alerts:             state.Alerts,
		}

		pdfBytes, err := renderBoardReportPDF(data)
		if err != nil {
			slog.Error("board report render failed", slog.Any("err", err))
			http.Error(w, "failed to render report", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="dispatch-board-`+time.Now().Format("20060102-1504")+`.pdf"`)
		if _, err := w.Write(pdfBytes); err != nil {
			slog.Error("board report write failed", slog.Any("err", err))
		}
	}
}
