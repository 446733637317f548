package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/workbridge/engagements/internal/model"
)

type ReceiptGenerator struct{}

func NewReceiptGenerator() *ReceiptGenerator {
	return &ReceiptGenerator{}
}

// Generate renders an escrow release receipt for a settled payment.
// Project may be nil for ad-hoc meeting payments.
func (g *ReceiptGenerator) Generate(payment model.Payment, project *model.Project) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Escrow Release Receipt", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Payment %s", payment.ID), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	addRow := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(55, 8, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, value, "", 1, "L", false, 0, "")
	}

	if project != nil {
		addRow("Project", project.Title)
	}
	addRow("Amount", fmt.Sprintf("%.2f", payment.Amount))
	addRow("Status", string(payment.Status))
	if payment.ReleasedAt != nil {
		addRow("Released at", formatDateTime(*payment.ReleasedAt))
	}
	addRow("Client", payment.ClientID.String())
	addRow("Freelancer", payment.FreelancerID.String())

	if payment.Description != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 8, "Details", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, payment.Description, "", "L", false)
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated %s", formatDateTime(time.Now().UTC())), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatDateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04 MST")
}
