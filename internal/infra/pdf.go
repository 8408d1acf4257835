package infra

// pdf.go renders an invoice receipt with go-pdf/fpdf:
//   - header with invoice number, owner and date
//   - one row per line (item, quantity, unit price, subtotal)
//   - bold total
//   - a "VOID" banner when the invoice has been deleted
//
// Receipts are rendered in memory; nothing is written to disk.

import (
	"bytes"
	"fmt"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// ReceiptFilename is the attachment name used for inv's receipt.
func ReceiptFilename(invoiceID uint) string {
	return fmt.Sprintf("invoice_%d.pdf", invoiceID)
}

// RenderInvoicePDF returns a receipt for inv. Items must have their Item
// relation loaded; User may be nil.
func RenderInvoicePDF(inv *model.Invoice, total decimal.Decimal) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 10, fmt.Sprintf("Invoice #%d", inv.ID), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	if inv.User != nil {
		pdf.CellFormat(contentW, 6, fmt.Sprintf("%s <%s>", inv.User.FullName, inv.User.Email), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(contentW, 6, inv.CreatedAt.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	if inv.Deleted {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(200, 0, 0)
		pdf.CellFormat(contentW, 8, "VOID", "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(4)

	col1 := contentW * 0.46
	col2 := contentW * 0.14
	col3 := contentW * 0.20
	col4 := contentW * 0.20

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(col1, 7, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 7, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 7, "Unit price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 7, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range inv.Items {
		name := ""
		price := decimal.Zero
		if line.Item != nil {
			name = line.Item.Name
			price = line.Item.Price
		}
		if len(name) > 48 {
			name = name[:47] + "..."
		}
		sub := price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		pdf.CellFormat(col1, 6, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, fmt.Sprintf("%d", line.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 6, price.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, sub.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(col1+col2+col3, 8, "TOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 8, total.StringFixed(2), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render invoice %d: %w", inv.ID, err)
	}
	return buf.Bytes(), nil
}
