/*
csv.go - CSV projections of the tracker's screens

FILES:
  Daily entry  daily_entry_<date>.csv
  Reports      report_<start>_to_<end>.csv
  Accounts     accounts_jobs.csv
  Dashboard    cost_dashboard_<start>_to_<end>.csv

Money columns on the dashboard are fixed to two decimals; charges elsewhere
are written as entered.
*/
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/warp/print-tracker/production"
)

var (
	DailyEntryHeader = []string{"Job No.", "Client Name", "Job Reference", "Material", "Designing Charges", "SS Qty", "F&B Qty", "Finishing", "Waste"}
	ReportHeader     = []string{"Date", "Client", "Job Ref", "Material", "Designing Charges", "SS Qty", "F&B Qty", "Finishing", "Waste"}
	AccountsHeader   = []string{"Date", "Job No", "Client Name", "Job Reference", "Billed", "Bill No."}
	DashboardHeader  = []string{"Date", "Job No", "Client Name", "Job Ref", "Material", "Total Sheets", "Material Cost", "Print Clicks", "Click Cost", "Total Cost"}
)

// DailyEntryFilename is the download name of a day's export in ext ("csv", "pdf").
func DailyEntryFilename(date, ext string) string {
	return fmt.Sprintf("daily_entry_%s.%s", date, ext)
}

func ReportFilename(start, end string) string {
	return fmt.Sprintf("report_%s_to_%s.csv", start, end)
}

const AccountsFilename = "accounts_jobs.csv"

func DashboardFilename(start, end string) string {
	return fmt.Sprintf("cost_dashboard_%s_to_%s.csv", start, end)
}

// WriteDailyEntryCSV writes one line per job of the sheet.
func WriteDailyEntryCSV(w io.Writer, sheet production.DailySheet) error {
	return writeAll(w, DailyEntryHeader, len(sheet.Jobs), func(i int) []string {
		j := sheet.Jobs[i]
		return []string{
			j.JobNumber,
			j.ClientName,
			j.JobReference,
			j.MaterialName,
			j.DesigningCharges.String(),
			strconv.Itoa(j.SSQty),
			strconv.Itoa(j.FBQty),
			j.Finishing.String(),
			strconv.Itoa(j.Waste),
		}
	})
}

// WriteReportCSV writes the rows of a report.
func WriteReportCSV(w io.Writer, report production.ReportData) error {
	return writeAll(w, ReportHeader, len(report.Rows), func(i int) []string {
		r := report.Rows[i]
		return []string{
			r.Date,
			r.ClientName,
			r.JobReference,
			r.MaterialName,
			r.DesigningCharges.String(),
			strconv.Itoa(r.SSQty),
			strconv.Itoa(r.FBQty),
			r.Finishing.String(),
			strconv.Itoa(r.Waste),
		}
	})
}

// WriteAccountsCSV writes the billing status of jobs.
func WriteAccountsCSV(w io.Writer, jobs []production.JobRow) error {
	return writeAll(w, AccountsHeader, len(jobs), func(i int) []string {
		j := jobs[i]
		billed := "No"
		if j.IsBilled {
			billed = "Yes"
		}
		billNo := ""
		if j.BillNo != nil {
			billNo = *j.BillNo
		}
		return []string{j.Date, j.JobNumber, j.ClientName, j.JobReference, billed, billNo}
	})
}

// WriteDashboardCSV writes the costed jobs of a dashboard.
func WriteDashboardCSV(w io.Writer, d production.Dashboard) error {
	return writeAll(w, DashboardHeader, len(d.Jobs), func(i int) []string {
		j := d.Jobs[i]
		return []string{
			j.Date,
			j.JobNumber,
			j.ClientName,
			j.JobReference,
			j.MaterialName,
			strconv.Itoa(j.TotalSheets),
			j.MaterialCost.StringFixed(2),
			strconv.Itoa(j.PrintClicks),
			j.ClickCost.StringFixed(2),
			j.TotalCost.StringFixed(2),
		}
	})
}

func writeAll(w io.Writer, header []string, n int, record func(int) []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(record(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
