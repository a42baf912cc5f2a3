/*
types.go - Entities of the print-shop production tracker

ENTITIES:
  Client      - customer record, deactivated rather than deleted
  Item        - stock material keyed by caller-assigned SKU
  DailyHeader - one per date: machine readings and impression total
  DailyRow    - one job on a day, tied to a client and a material

MONEY:
  Charges and prices are decimal.Decimal to avoid float drift in totals.
  Quantities (sheets, impressions, readings) are plain ints.

JSON:
  Field names match the persisted key layout so existing stores load as-is.
*/
package production

import (
	"time"

	"github.com/shopspring/decimal"
)

// Store keys. The layout is shared with every kv backend.
const (
	KeyClients      = "clients"
	KeyItems        = "items"
	KeyDailyHeaders = "daily_headers"
	KeyDailyRows    = "daily_rows"

	CounterClient      = "client_id_counter"
	CounterDailyHeader = "daily_header_id_counter"
	CounterDailyRow    = "daily_row_id_counter"

	DraftKeyPrefix = "daily_entry_draft_"
)

// DateLayout is the fixed-width ISO date used as the daily business key.
// Lexicographic comparison of two such strings matches chronological order.
const DateLayout = "2006-01-02"

// =============================================================================
// CLIENTS
// =============================================================================

type Client struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	BillingName string `json:"billing_name,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// NewClient is the caller-supplied part of a client.
type NewClient struct {
	Name        string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	BillingName string `json:"billing_name,omitempty"`
}

// =============================================================================
// ITEMS
// =============================================================================

type Item struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	UOM          string          `json:"uom"`
	StockQty     int             `json:"stock_qty"`
	ReorderLevel int             `json:"reorder_level"`
	Price        decimal.Decimal `json:"price"`
}

// IsLowStock reports whether stock has fallen to the reorder threshold.
func (i Item) IsLowStock() bool {
	return i.StockQty <= i.ReorderLevel
}

// NewItem is an item before it has any stock.
type NewItem struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	UOM          string          `json:"uom"`
	ReorderLevel int             `json:"reorder_level"`
	Price        decimal.Decimal `json:"price"`
}

// StockDirection selects a manual stock adjustment.
type StockDirection string

const (
	StockIn  StockDirection = "in"
	StockOut StockDirection = "out"
)

// =============================================================================
// DAILY ENTRY
// =============================================================================

type DailyHeader struct {
	ID                  int    `json:"id"`
	Date                string `json:"date"`
	DayName             string `json:"day_name"`
	TotalImpressions    int    `json:"total_impressions"`
	MachineStartReading int    `json:"machine_start_reading"`
	MachineEndReading   int    `json:"machine_end_reading"`
	// Version starts at 1 and increments on every re-save of the date.
	Version int `json:"version"`
}

// HeaderInput carries the mutable header fields of a save.
type HeaderInput struct {
	Date                string `json:"date"`
	DayName             string `json:"day_name"`
	TotalImpressions    int    `json:"total_impressions"`
	MachineStartReading int    `json:"machine_start_reading"`
	MachineEndReading   int    `json:"machine_end_reading"`
	// ExpectedVersion, when non-zero, must equal the stored header version.
	ExpectedVersion int `json:"expected_version,omitempty"`
}

// RowInput is one job as entered on the daily sheet.
type RowInput struct {
	ClientID         int             `json:"client_id"`
	JobReference     string          `json:"job_reference"`
	DesigningCharges decimal.Decimal `json:"designing_charges"`
	MaterialSKU      string          `json:"material_sku"`
	SSQty            int             `json:"ss_qty"` // single-sided sheets
	FBQty            int             `json:"fb_qty"` // front-and-back sheets
	Finishing        decimal.Decimal `json:"finishing"`
	Waste            int             `json:"waste"`
}

type DailyRow struct {
	ID       int `json:"id"`
	HeaderID int `json:"header_id"`
	SerialNo int `json:"serial_no"`
	RowInput
	IsBilled bool    `json:"is_billed"`
	BillNo   *string `json:"bill_no"`
}

// DailyEntry is a header with the rows it owns. Header is nil for unsaved dates.
type DailyEntry struct {
	Header *DailyHeader `json:"header"`
	Rows   []DailyRow   `json:"rows"`
}

// Draft is the autosaved, unfinalized state of a day.
type Draft struct {
	Rows         []RowInput `json:"rows"`
	StartReading int        `json:"startReading"`
	UpdatedAt    time.Time  `json:"updated_at,omitempty"`
}

// DraftSummary lists a stored draft without its rows.
type DraftSummary struct {
	Date      string    `json:"date"`
	RowCount  int       `json:"row_count"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// =============================================================================
// QUERY RESULTS
// =============================================================================

// JobRow is a DailyRow joined with its header date and display names.
type JobRow struct {
	DailyRow
	Date         string `json:"date"`
	ClientName   string `json:"client_name"`
	MaterialName string `json:"material_name"`
	JobNumber    string `json:"job_no"`
}

type ClientJobCount struct {
	ClientID   int    `json:"client_id"`
	ClientName string `json:"client_name"`
	JobCount   int    `json:"job_count"`
}

type ReportData struct {
	Rows                 []JobRow         `json:"rows"`
	TotalProductionValue decimal.Decimal  `json:"totalProductionValue"`
	TotalImpressions     int              `json:"totalImpressions"`
	TotalWaste           int              `json:"totalWaste"`
	TopClients           []ClientJobCount `json:"topClients"`
}

// DailySheet is a day's entry with names resolved and column totals, as
// printed or exported.
type DailySheet struct {
	Header *DailyHeader `json:"header"`
	Jobs   []JobRow     `json:"jobs"`
	Totals ColumnTotals `json:"totals"`
}

// BillingFilter selects jobs by billing status.
type BillingFilter string

const (
	FilterAll      BillingFilter = "all"
	FilterBilled   BillingFilter = "billed"
	FilterUnbilled BillingFilter = "unbilled"
)

// JobQuery narrows the accounts job list.
type JobQuery struct {
	Filter BillingFilter
	Search string
}
