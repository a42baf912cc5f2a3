package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/print-tracker/production"
)

func sampleJob(date string, serial int, client string, billNo *string) production.JobRow {
	return production.JobRow{
		DailyRow: production.DailyRow{
			ID:       serial,
			HeaderID: 1,
			SerialNo: serial,
			RowInput: production.RowInput{
				ClientID:         1,
				JobReference:     "Cards, gloss",
				DesigningCharges: decimal.NewFromInt(150),
				MaterialSKU:      "PAP-001",
				SSQty:            10,
				FBQty:            5,
				Finishing:        decimal.RequireFromString("20.5"),
				Waste:            2,
			},
			IsBilled: billNo != nil,
			BillNo:   billNo,
		},
		Date:         date,
		ClientName:   client,
		MaterialName: "A4 Paper 80gsm",
		JobNumber:    production.JobNumber(date, serial),
	}
}

func readCSV(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	records, err := csv.NewReader(buf).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteDailyEntryCSV(t *testing.T) {
	jobs := []production.JobRow{sampleJob("2025-03-05", 1, `Prime "Graphics"`, nil)}
	sheet := production.DailySheet{Jobs: jobs}

	var buf bytes.Buffer
	require.NoError(t, WriteDailyEntryCSV(&buf, sheet))

	records := readCSV(t, &buf)
	require.Len(t, records, 2)
	assert.Equal(t, DailyEntryHeader, records[0])
	assert.Equal(t, []string{"5-Mar-01", `Prime "Graphics"`, "Cards, gloss", "A4 Paper 80gsm", "150", "10", "5", "20.5", "2"}, records[1])
}

func TestWriteAccountsCSV(t *testing.T) {
	bill := "INV-9"
	jobs := []production.JobRow{
		sampleJob("2025-03-05", 1, "Prime Graphics", nil),
		sampleJob("2025-03-05", 2, "Prime Graphics", &bill),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAccountsCSV(&buf, jobs))

	records := readCSV(t, &buf)
	require.Len(t, records, 3)
	assert.Equal(t, AccountsHeader, records[0])
	assert.Equal(t, []string{"2025-03-05", "5-Mar-01", "Prime Graphics", "Cards, gloss", "No", ""}, records[1])
	assert.Equal(t, []string{"2025-03-05", "5-Mar-02", "Prime Graphics", "Cards, gloss", "Yes", "INV-9"}, records[2])
}

func TestWriteReportCSV(t *testing.T) {
	report := production.ReportData{Rows: []production.JobRow{sampleJob("2025-03-05", 1, "Prime Graphics", nil)}}

	var buf bytes.Buffer
	require.NoError(t, WriteReportCSV(&buf, report))

	records := readCSV(t, &buf)
	require.Len(t, records, 2)
	assert.Equal(t, ReportHeader, records[0])
	assert.Equal(t, "2025-03-05", records[1][0])
	assert.Equal(t, "Prime Graphics", records[1][1])
}

func TestWriteDashboardCSV(t *testing.T) {
	job := sampleJob("2025-03-05", 1, "Prime Graphics", nil)
	d := production.Dashboard{Jobs: []production.CostedJob{{
		JobRow:  job,
		RowCost: production.CostOf(job.RowInput, decimal.RequireFromString("0.5")),
	}}}

	var buf bytes.Buffer
	require.NoError(t, WriteDashboardCSV(&buf, d))

	records := readCSV(t, &buf)
	require.Len(t, records, 2)
	assert.Equal(t, DashboardHeader, records[0])
	assert.Equal(t, []string{"2025-03-05", "5-Mar-01", "Prime Graphics", "Cards, gloss", "A4 Paper 80gsm", "17", "8.50", "22", "94.75", "103.25"}, records[1])
}

func TestWriteEmptyCSVHasHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAccountsCSV(&buf, nil))
	assert.Len(t, readCSV(t, &buf), 1)
}

func TestFilenames(t *testing.T) {
	assert.Equal(t, "daily_entry_2025-03-05.pdf", DailyEntryFilename("2025-03-05", "pdf"))
	assert.Equal(t, "report_2025-03-01_to_2025-03-31.csv", ReportFilename("2025-03-01", "2025-03-31"))
	assert.Equal(t, "cost_dashboard_2025-03-01_to_2025-03-31.csv", DashboardFilename("2025-03-01", "2025-03-31"))
}

func TestWriteDailyEntryPDF(t *testing.T) {
	jobs := []production.JobRow{sampleJob("2025-03-05", 1, "Prime Graphics", nil)}
	sheet := production.DailySheet{
		Header: &production.DailyHeader{ID: 1, Date: "2025-03-05", DayName: "Wednesday", TotalImpressions: 22, MachineStartReading: 100, MachineEndReading: 122},
		Jobs:   jobs,
		Totals: production.Totals([]production.RowInput{jobs[0].RowInput}),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDailyEntryPDF(&buf, "2025-03-05", sheet))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWriteDailyEntryPDF_UnsavedDay(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDailyEntryPDF(&buf, "2025-03-05", production.DailySheet{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
