package order

import (
	"bytes"
	"fmt"
	"io"

	"github.com/phpdave11/gofpdf"
	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"
)

// WriteReceipt renders o as a one-page PDF receipt with a QR code of the
// order id.
func WriteReceipt(w io.Writer, o Order) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "JerseyX Order Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Order: %s", o.ID))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Placed: %s", o.CreatedAt.Format("2 Jan 2006 15:04 MST")))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", o.Status))
	pdf.Ln(7)
	payment := fmt.Sprintf("Payment: %s (%s)", o.Payment.Method, o.Payment.Status)
	if o.Payment.Reference != "" {
		payment += " ref " + o.Payment.Reference
	}
	pdf.Cell(0, 8, payment)
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Ship to")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 11)
	for _, line := range []string{o.Shipping.Name, o.Shipping.Email, o.Shipping.Address, o.Shipping.City + " " + o.Shipping.PostalCode} {
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(6)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(90, 8, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Size", "B", 0, "C", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(40, 8, "Amount (INR)", "B", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	for _, it := range o.Items {
		name := it.Name
		if it.Custom != nil && (it.Custom.Name != "" || it.Custom.Number != "") {
			name += fmt.Sprintf(" [%s %s]", it.Custom.Name, it.Custom.Number)
		}
		pdf.CellFormat(90, 7, tr(name), "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, it.Size, "", 0, "C", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", it.Qty), "", 0, "C", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%.2f", it.Price*float64(it.Qty)), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	for _, row := range []struct {
		label string
		value float64
	}{
		{"Subtotal", o.Totals.Subtotal},
		{"Shipping", o.Totals.Shipping},
		{"Discount", -o.Totals.Discount},
		{"Total", o.Totals.Total},
	} {
		pdf.CellFormat(130, 7, row.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%.2f", row.value), "", 1, "R", false, 0, "")
	}

	qrPNG, err := qrcode.Encode(o.ID, qrcode.Medium, 256)
	if err != nil {
		return errors.Wrap(err, "encoding order qr")
	}
	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 160, 20, 35, 35, false, imageOpts, 0, "")

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "writing receipt pdf")
	}
	return nil
}
