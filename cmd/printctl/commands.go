package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"
	"github.com/warp/print-tracker/export"
	"github.com/warp/print-tracker/production"
	"github.com/warp/print-tracker/store/sqlite"
)

// as a short lived CLI, the store path is a global set by main.
var dbPath = new(string)

// register adds the printctl subcommands to c.
func register(c *subcommands.Commander) {
	c.Register(&reportCmd{}, "production")
	c.Register(&stockCmd{}, "production")
	c.Register(&jobsCmd{}, "accounts")
	c.Register(&exportCmd{}, "")
}

// runner is the part of a command that works on an open service.
type runner interface {
	run(ctx context.Context, svc *production.Service, w io.Writer) error
}

// execute opens the store, runs r and maps its error to an exit status.
func execute(ctx context.Context, r runner) subcommands.ExitStatus {
	store, err := sqlite.New(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store %q: %v\n", *dbPath, err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	if err := r.run(ctx, production.NewService(store), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, production.ErrValidation) {
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func monthStart() string {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format(production.DateLayout)
}

func today() string {
	return time.Now().Format(production.DateLayout)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// =============================================================================
// REPORT
// =============================================================================

type reportCmd struct {
	start, end string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "summarize production between two dates" }
func (*reportCmd) Usage() string {
	return `printctl report [-start <date>] [-end <date>]

  Prints every finalized job dated in the range with the totals and the
  five busiest clients. Dates are YYYY-MM-DD; the range defaults to the
  current month.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "start", monthStart(), "First day of the range")
	f.StringVar(&c.end, "end", today(), "Last day of the range")
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(ctx, c)
}

func (c *reportCmd) run(ctx context.Context, svc *production.Service, w io.Writer) error {
	if err := production.ValidateDateRange(c.start, c.end); err != nil {
		return err
	}
	report, err := svc.GetReportData(ctx, c.start, c.end)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Production %s to %s\n\n", c.start, c.end)
	tw := newTable(w)
	fmt.Fprintln(tw, "JOB NO\tCLIENT\tJOB\tMATERIAL\tSS\tFB\tWASTE\tIMPRESSIONS\tVALUE")
	for _, j := range report.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			j.JobNumber, j.ClientName, j.JobReference, j.MaterialName,
			j.SSQty, j.FBQty, j.Waste, j.Impressions(), production.FormatINR(j.ProductionValue()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nJobs:             %d\n", len(report.Rows))
	fmt.Fprintf(w, "Impressions:      %d\n", report.TotalImpressions)
	fmt.Fprintf(w, "Waste:            %d\n", report.TotalWaste)
	fmt.Fprintf(w, "Production value: %s\n", production.FormatINR(report.TotalProductionValue))

	if len(report.TopClients) > 0 {
		fmt.Fprintln(w, "\nTop clients:")
		for i, tc := range report.TopClients {
			fmt.Fprintf(w, "  %d. %s (%d)\n", i+1, tc.ClientName, tc.JobCount)
		}
	}
	return nil
}

// =============================================================================
// STOCK
// =============================================================================

type stockCmd struct {
	low bool
}

func (*stockCmd) Name() string     { return "stock" }
func (*stockCmd) Synopsis() string { return "list materials and their stock" }
func (*stockCmd) Usage() string {
	return `printctl stock [-low]

  Lists every material with its stock and reorder level. With -low only
  materials at or below their reorder level are shown.
`
}

func (c *stockCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.low, "low", false, "only show materials at or below their reorder level")
}

func (c *stockCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(ctx, c)
}

func (c *stockCmd) run(ctx context.Context, svc *production.Service, w io.Writer) error {
	list := svc.ListItems
	if c.low {
		list = svc.LowStockItems
	}
	items, err := list(ctx)
	if err != nil {
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "SKU\tNAME\tUOM\tSTOCK\tREORDER\tPRICE\t")
	for _, i := range items {
		mark := ""
		if i.IsLowStock() {
			mark = "LOW"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			i.SKU, i.Name, i.UOM, i.StockQty, i.ReorderLevel, production.FormatINR(i.Price), mark)
	}
	return tw.Flush()
}

// =============================================================================
// JOBS
// =============================================================================

type jobsCmd struct {
	filter string
	search string
}

func (*jobsCmd) Name() string     { return "jobs" }
func (*jobsCmd) Synopsis() string { return "list finalized jobs with their billing status" }
func (*jobsCmd) Usage() string {
	return `printctl jobs [-filter all|billed|unbilled] [-q <text>]

  Lists finalized jobs, newest first, as the accounts screen does. Only
  unbilled jobs are listed unless -filter says otherwise.
`
}

func (c *jobsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.filter, "filter", string(production.FilterUnbilled), "all, billed or unbilled")
	f.StringVar(&c.search, "q", "", "only jobs whose client, reference or bill number contains this text")
}

func (c *jobsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(ctx, c)
}

func (c *jobsCmd) run(ctx context.Context, svc *production.Service, w io.Writer) error {
	q := production.JobQuery{Filter: production.BillingFilter(c.filter), Search: c.search}
	switch q.Filter {
	case production.FilterAll, production.FilterBilled, production.FilterUnbilled:
	default:
		return &production.ValidationError{Field: "filter", Message: "must be all, billed or unbilled"}
	}
	jobs, err := svc.ListJobs(ctx, q)
	if err != nil {
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "DATE\tJOB NO\tCLIENT\tJOB\tBILLED\tBILL NO")
	for _, j := range jobs {
		billed, billNo := "No", ""
		if j.IsBilled {
			billed = "Yes"
		}
		if j.BillNo != nil {
			billNo = *j.BillNo
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", j.Date, j.JobNumber, j.ClientName, j.JobReference, billed, billNo)
	}
	return tw.Flush()
}

// =============================================================================
// EXPORT
// =============================================================================

type exportCmd struct {
	screen     string
	start, end string
	output     string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write a screen export to a file" }
func (*exportCmd) Usage() string {
	return `printctl export -screen daily|report|accounts|dashboard [-start <date>] [-end <date>] [-o <file>]

  Writes the same file the screen's export button produces. The daily
  screen exports the day given by -start, as PDF when -o ends in .pdf.
  Without -o the screen's default file name is used.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.screen, "screen", "report", "daily, report, accounts or dashboard")
	f.StringVar(&c.start, "start", monthStart(), "First day of the range (the day for daily)")
	f.StringVar(&c.end, "end", today(), "Last day of the range")
	f.StringVar(&c.output, "o", "", "Output file")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(ctx, c)
}

func (c *exportCmd) run(ctx context.Context, svc *production.Service, w io.Writer) error {
	write, name, err := c.plan(ctx, svc)
	if err != nil {
		return err
	}
	if c.output != "" {
		name = c.output
	}

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Wrote %s\n", name)
	return nil
}

// plan loads the data for the screen and returns its writer and default name.
func (c *exportCmd) plan(ctx context.Context, svc *production.Service) (func(io.Writer) error, string, error) {
	switch c.screen {
	case "daily":
		if err := production.ValidateDate("start", c.start); err != nil {
			return nil, "", err
		}
		sheet, err := svc.DailySheet(ctx, c.start)
		if err != nil {
			return nil, "", err
		}
		if strings.EqualFold(filepath.Ext(c.output), ".pdf") {
			return func(w io.Writer) error { return export.WriteDailyEntryPDF(w, c.start, sheet) },
				export.DailyEntryFilename(c.start, "pdf"), nil
		}
		return func(w io.Writer) error { return export.WriteDailyEntryCSV(w, sheet) },
			export.DailyEntryFilename(c.start, "csv"), nil

	case "accounts":
		jobs, err := svc.ListJobs(ctx, production.JobQuery{Filter: production.FilterAll})
		if err != nil {
			return nil, "", err
		}
		return func(w io.Writer) error { return export.WriteAccountsCSV(w, jobs) }, export.AccountsFilename, nil

	case "report", "dashboard":
		if err := production.ValidateDateRange(c.start, c.end); err != nil {
			return nil, "", err
		}
		if c.screen == "report" {
			report, err := svc.GetReportData(ctx, c.start, c.end)
			if err != nil {
				return nil, "", err
			}
			return func(w io.Writer) error { return export.WriteReportCSV(w, report) },
				export.ReportFilename(c.start, c.end), nil
		}
		d, err := svc.CostDashboard(ctx, c.start, c.end)
		if err != nil {
			return nil, "", err
		}
		return func(w io.Writer) error { return export.WriteDashboardCSV(w, d) },
			export.DashboardFilename(c.start, c.end), nil
	}
	return nil, "", &production.ValidationError{Field: "screen", Message: "must be daily, report, accounts or dashboard"}
}
