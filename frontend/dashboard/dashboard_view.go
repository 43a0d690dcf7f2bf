package dashboard

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"dispatchboard/board"
	sharedhtml "dispatchboard/frontend/shared/html"
)

// DashboardPage renders the full TV board. The page script keeps the
// metrics, table window and trend chart in sync by polling the snapshot
// endpoints; a changed tableKey/chartKey tells it to restart its loops.
func DashboardPage(data PageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<header class="board-header"><h1>`)
		b.WriteString(templ.EscapeString(data.FactoryName))
		b.WriteString(` &middot; Dispatch Board</h1><span id="last-update" class="board-stamp">`)
		b.WriteString(templ.EscapeString(data.LastUpdate))
		b.WriteString(`</span></header>`)

		writeMetricCards(&b, data.Summary)
		writeWarningBanner(&b, data)
		writeAlertStrip(&b, data.Alerts)
		writeOrderTable(&b, data)

		b.WriteString(`<section class="board-trend"><h2>Dispatch Trend</h2><canvas id="trend-chart" width="1600" height="320"></canvas></section>`)
		b.WriteString(fmt.Sprintf(`<div id="bottom-indicator" class="board-bottom%s">end of list</div>`, indicatorClass(data.AtBottom)))

		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		return writePageScript(w)
	})
	return sharedhtml.Layout("Dispatch Board", body)
}

func writeMetricCards(b *strings.Builder, s board.Summary) {
	b.WriteString(`<section class="board-metrics">`)
	cards := []struct {
		id    string
		label string
		value int
	}{
		{"metric-total", "Orders", s.TotalCount},
		{"metric-delivered", "Shipped", s.DeliveredCount},
		{"metric-pending", "Pending", s.PendingCount},
		{"metric-delayed", "Delayed", s.DelayedCount},
		{"metric-receipts", "Receipts", s.ReceiptCount},
	}
	for _, card := range cards {
		fmt.Fprintf(b, `<div class="metric-card"><span class="metric-label">%s</span><span class="metric-value" id="%s">%d</span></div>`,
			templ.EscapeString(card.label), card.id, card.value)
	}
	b.WriteString(`</section>`)
}

func writeWarningBanner(b *strings.Builder, data PageData) {
	hidden := ""
	if !data.WarningShown {
		hidden = " hidden"
	}
	fmt.Fprintf(b, `<div id="receipt-warning" class="board-warning"%s>`, hidden)
	fmt.Fprintf(b, `Receipt mismatch: <span id="pending-with-receipt">%d</span> receipted but not shipped, <span id="off-system">%d</span> off-system`,
		data.PendingWithRc, data.OffSystem)
	b.WriteString(`</div>`)
}

func writeAlertStrip(b *strings.Builder, alerts []board.Alert) {
	b.WriteString(`<section id="alert-strip" class="board-alerts">`)
	for _, alert := range alerts {
		fmt.Fprintf(b, `<div class="alert-banner"><span class="alert-id">%s</span><span class="alert-msg">%s</span><span class="alert-time">%s</span></div>`,
			templ.EscapeString(alert.ID), templ.EscapeString(alert.Message), templ.EscapeString(alert.Timestamp))
	}
	b.WriteString(`</section>`)
}

func writeOrderTable(b *strings.Builder, data PageData) {
	b.WriteString(`<section class="board-table"><table><thead><tr><th>Sheet</th><th>Type</th><th>Receiver</th><th>Required</th><th>Status</th><th>Receipt</th><th>Risk</th></tr></thead>`)
	fmt.Fprintf(b, `<tbody id="order-rows" data-table-key="%d" data-window-start="%d" data-total="%d">`, data.TableKey, data.WindowStart, data.TotalOrders)
	if len(data.Rows) == 0 {
		b.WriteString(`<tr class="empty-state"><td colspan="7">No dispatch orders in window</td></tr>`)
	}
	for _, row := range data.Rows {
		hasReturn := ""
		if row.HasReturn {
			hasReturn = "yes"
		}
		fmt.Fprintf(b, `<tr class="status-%s risk-%s"><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
			row.Status, row.Risk,
			templ.EscapeString(row.ID),
			templ.EscapeString(row.Type),
			templ.EscapeString(row.Receiver),
			templ.EscapeString(row.RequestTime),
			templ.EscapeString(string(row.Status)),
			hasReturn,
			templ.EscapeString(string(row.Risk)))
	}
	b.WriteString(`</tbody></table></section>`)
}

func indicatorClass(atBottom bool) string {
	if atBottom {
		return " visible"
	}
	return ""
}

func writePageScript(w io.Writer) error {
	_, err := io.WriteString(w, `<script>
let tableKey = -1;
let chartKey = -1;

async function pollSnapshot() {
  try {
    const res = await fetch("/api/board/snapshot");
    if (!res.ok) return;
    const snap = await res.json();
    renderMetrics(snap);
    renderAlerts(snap.alerts || []);
    renderRows(snap);
    if (snap.chartKey !== chartKey) {
      chartKey = snap.chartKey;
      refreshTrend();
    }
  } catch (err) {
    // keep last rendered state on transient failures
  }
}

function renderMetrics(snap) {
  const s = snap.summary || {};
  setText("metric-total", s.totalCount);
  setText("metric-delivered", s.deliveredCount);
  setText("metric-pending", s.pendingCount);
  setText("metric-delayed", s.delayedCount);
  setText("metric-receipts", s.receiptCount);
  setText("last-update", snap.lastUpdate);
  setText("pending-with-receipt", snap.pendingWithReceipt);
  setText("off-system", snap.offSystemCount);
  const warning = document.getElementById("receipt-warning");
  if (warning) warning.hidden = !snap.warningVisible;
  const indicator = document.getElementById("bottom-indicator");
  if (indicator) indicator.classList.toggle("visible", snap.atBottom);
}

function renderAlerts(alerts) {
  const strip = document.getElementById("alert-strip");
  if (!strip) return;
  strip.replaceChildren(...alerts.map((a) => {
    const div = document.createElement("div");
    div.className = "alert-banner";
    div.textContent = a.id + " " + a.message + " " + a.timestamp;
    return div;
  }));
}

function renderRows(snap) {
  const tbody = document.getElementById("order-rows");
  if (!tbody) return;
  tbody.dataset.tableKey = snap.tableKey;
  const orders = snap.orders || [];
  if (orders.length === 0) {
    tbody.innerHTML = '<tr class="empty-state"><td colspan="7">No dispatch orders in window</td></tr>';
    return;
  }
  tbody.replaceChildren(...orders.map((o) => {
    const tr = document.createElement("tr");
    tr.className = "status-" + o.status + " risk-" + o.risk;
    [o.id, o.type, o.receiver, o.requestTime, o.status, o.hasReturn ? "yes" : "", o.risk].forEach((v) => {
      const td = document.createElement("td");
      td.textContent = v == null ? "" : String(v);
      tr.appendChild(td);
    });
    return tr;
  }));
}

async function refreshTrend() {
  try {
    const res = await fetch("/api/board/trend");
    if (!res.ok) return;
    drawTrend(await res.json());
  } catch (err) {
    // chart keeps its last drawing
  }
}

function drawTrend(points) {
  const canvas = document.getElementById("trend-chart");
  if (!canvas || !canvas.getContext) return;
  const ctx = canvas.getContext("2d");
  ctx.clearRect(0, 0, canvas.width, canvas.height);
  if (!points.length) return;
  const max = Math.max(1, ...points.map((p) => p.totalCount));
  const stepX = canvas.width / Math.max(1, points.length - 1);
  const series = [
    ["totalCount", "#4a90d9"],
    ["deliveredCount", "#3fa34d"],
    ["delayedCount", "#d94a4a"],
  ];
  series.forEach(([field, color]) => {
    ctx.beginPath();
    ctx.strokeStyle = color;
    ctx.lineWidth = 3;
    points.forEach((p, i) => {
      const x = i * stepX;
      const y = canvas.height - (p[field] / max) * (canvas.height - 10) - 5;
      if (i === 0) ctx.moveTo(x, y); else ctx.lineTo(x, y);
    });
    ctx.stroke();
  });
}

function setText(id, value) {
  const el = document.getElementById(id);
  if (el && value !== undefined && value !== null) el.textContent = String(value);
}

pollSnapshot();
refreshTrend();
setInterval(pollSnapshot, 1000);
</script>`)
	return err
}
