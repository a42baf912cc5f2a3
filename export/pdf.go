package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/warp/print-tracker/production"
)

// brand orange of the table header
const headerR, headerG, headerB = 243, 111, 33

var pdfColumns = []struct {
	title string
	width float64
	align string
}{
	{"Job No.", 25, "L"},
	{"Client", 45, "L"},
	{"Job Ref", 50, "L"},
	{"Material", 45, "L"},
	{"Design Charges", 28, "R"},
	{"SS Qty", 18, "R"},
	{"F&B Qty", 18, "R"},
	{"Finishing", 20, "R"},
	{"Waste", 18, "R"},
}

// WriteDailyEntryPDF renders a day's sheet as a landscape A4 grid. A sheet
// with no header still renders, with zero readings and the given date.
func WriteDailyEntryPDF(w io.Writer, date string, sheet production.DailySheet) error {
	var h production.DailyHeader
	if sheet.Header != nil {
		h = *sheet.Header
	} else {
		h.Date = date
		h.DayName, _ = production.DayName(date)
	}
	impressions := h.TotalImpressions
	if impressions == 0 {
		for _, j := range sheet.Jobs {
			impressions += j.Impressions()
		}
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("Daily Production - %s", h.Date), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr(fmt.Sprintf("Daily Production - %s (%s)", h.Date, h.DayName)))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 6, fmt.Sprintf("Total Impressions: %d", impressions))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Machine Readings: %d - %d", h.MachineStartReading, h.MachineEndReading))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(headerR, headerG, headerB)
	pdf.SetTextColor(255, 255, 255)
	for _, c := range pdfColumns {
		pdf.CellFormat(c.width, 7, tr(c.title), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(0, 0, 0)
	for _, j := range sheet.Jobs {
		pdfRow(pdf, tr, []string{
			j.JobNumber,
			j.ClientName,
			j.JobReference,
			j.MaterialName,
			j.DesigningCharges.String(),
			strconv.Itoa(j.SSQty),
			strconv.Itoa(j.FBQty),
			j.Finishing.String(),
			strconv.Itoa(j.Waste),
		})
	}

	t := sheet.Totals
	pdf.SetFont("Helvetica", "B", 8)
	pdfRow(pdf, tr, []string{
		"Total", "", "", "",
		t.DesigningCharges.String(),
		strconv.Itoa(t.SSQty),
		strconv.Itoa(t.FBQty),
		t.Finishing.String(),
		strconv.Itoa(t.Waste),
	})

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render daily pdf: %w", err)
	}
	return pdf.Output(w)
}

func pdfRow(pdf *fpdf.Fpdf, tr func(string) string, cells []string) {
	for i, c := range pdfColumns {
		pdf.CellFormat(c.width, 6, tr(cells[i]), "1", 0, c.align, false, 0, "")
	}
	pdf.Ln(-1)
}
