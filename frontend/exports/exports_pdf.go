package exports

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/jung-kurt/gofpdf"

	"dispatchboard/board"
)

// reportRowsPerPage keeps the table readable on A4 portrait.
const reportRowsPerPage = 18

// renderBoardReportPDF freezes the current board into a printable report.
// Each order row carries a Code128 barcode of its sheet number so a
// printed report can be scanned back at the dispatch desk.
func renderBoardReportPDF(data ReportData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Dispatch Board Report", false)

	pdf.AddPage()
	writeReportHeader(pdf, data)
	writeSummaryBlock(pdf, data)
	writeAlertBlock(pdf, data)

	for i, order := range data.Orders {
		if i > 0 && i%reportRowsPerPage == 0 {
			pdf.AddPage()
		}
		if err := writeOrderRow(pdf, i, order); err != nil {
			return nil, err
		}
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func writeReportHeader(pdf *gofpdf.Fpdf, data ReportData) {
	factory := data.FactoryName
	if factory == "" {
		factory = "Unknown Factory"
	}
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, factory+" - Dispatch Board", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Generated: "+data.GeneratedAt.Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(2)
}

func writeSummaryBlock(pdf *gofpdf.Fpdf, data ReportData) {
	s := data.Summary
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	line := fmt.Sprintf("Orders: %d   Shipped: %d   Pending: %d   Delayed: %d   Receipts: %d",
		s.TotalCount, s.DeliveredCount, s.PendingCount, s.DelayedCount, s.ReceiptCount)
	pdf.CellFormat(0, 7, line, "", 1, "L", false, 0, "")
	if data.OffSystem > 0 || data.PendingWithReceipt > 0 {
		pdf.SetTextColor(180, 30, 30)
		warn := fmt.Sprintf("Receipt mismatch: %d receipted but not shipped, %d off-system",
			data.PendingWithReceipt, data.OffSystem)
		pdf.CellFormat(0, 7, warn, "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(2)
}

func writeAlertBlock(pdf *gofpdf.Fpdf, data ReportData) {
	if len(data.Alerts) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Delay Alerts", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, alert := range data.Alerts {
		pdf.CellFormat(0, 6, fmt.Sprintf("%s  %s  %s", alert.ID, alert.Message, alert.Timestamp), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
}

func writeOrderRow(pdf *gofpdf.Fpdf, index int, order board.Order) error {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(42, 12, order.ID, "1", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(28, 12, order.Type, "1", 0, "L", false, 0, "")
	pdf.CellFormat(36, 12, order.Receiver, "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 12, order.RequestTime, "1", 0, "C", false, 0, "")
	pdf.CellFormat(22, 12, string(order.Status), "1", 0, "C", false, 0, "")

	x, y := pdf.GetXY()
	pdf.CellFormat(42, 12, "", "1", 1, "C", false, 0, "")
	if order.ID == "" {
		return nil
	}

	barcodePNG, err := renderCode128PNG(order.ID, 320, 48)
	if err != nil {
		return err
	}
	opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	imageName := fmt.Sprintf("order-barcode-%d", index)
	pdf.RegisterImageOptionsReader(imageName, opt, bytes.NewReader(barcodePNG))
	pdf.ImageOptions(imageName, x+2, y+2, 38, 8, false, opt, 0, "")
	return nil
}

func renderCode128PNG(value string, width, height int) ([]byte, error) {
	code, err := code128.Encode(value)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := png.Encode(&out, toNRGBA(scaled)); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	return dst
}
