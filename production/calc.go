package production

import (
	"fmt"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// =============================================================================
// DERIVED CALCULATORS
// =============================================================================
//
// Impressions count print passes: a front-and-back sheet passes the machine
// twice. Material usage counts sheets: a front-and-back sheet is one sheet.
// Waste counts once in both.

// ClickCharge is the per-impression machine charge: 3.65 plus 18% tax.
var ClickCharge = decimal.RequireFromString("3.65").Mul(decimal.RequireFromString("1.18"))

// Impressions returns ss + 2*fb + waste.
func (r RowInput) Impressions() int {
	return r.SSQty + 2*r.FBQty + r.Waste
}

// MaterialUsage returns the sheets drawn from stock: ss + fb + waste.
func (r RowInput) MaterialUsage() int {
	return r.SSQty + r.FBQty + r.Waste
}

// ProductionValue returns designing charges plus finishing.
func (r RowInput) ProductionValue() decimal.Decimal {
	return r.DesigningCharges.Add(r.Finishing)
}

// TotalImpressions sums impressions over rows.
func TotalImpressions(rows []RowInput) int {
	total := 0
	for _, r := range rows {
		total += r.Impressions()
	}
	return total
}

// RowCost is the cost breakdown of one job.
type RowCost struct {
	TotalSheets  int             `json:"total_sheets"`
	MaterialCost decimal.Decimal `json:"material_cost"`
	PrintClicks  int             `json:"print_clicks"`
	ClickCost    decimal.Decimal `json:"click_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
}

// CostOf prices a row against the unit price of its material.
func CostOf(r RowInput, unitPrice decimal.Decimal) RowCost {
	sheets := r.MaterialUsage()
	clicks := r.Impressions()
	material := unitPrice.Mul(decimal.NewFromInt(int64(sheets)))
	click := ClickCharge.Mul(decimal.NewFromInt(int64(clicks)))
	return RowCost{
		TotalSheets:  sheets,
		MaterialCost: material,
		PrintClicks:  clicks,
		ClickCost:    click,
		TotalCost:    material.Add(click),
	}
}

// ColumnTotals accumulates the numeric columns of the daily sheet.
type ColumnTotals struct {
	DesigningCharges decimal.Decimal `json:"designing_charges"`
	SSQty            int             `json:"ss_qty"`
	FBQty            int             `json:"fb_qty"`
	Finishing        decimal.Decimal `json:"finishing"`
	Waste            int             `json:"waste"`
}

// Add folds one row into the totals.
func (t *ColumnTotals) Add(r RowInput) {
	t.DesigningCharges = t.DesigningCharges.Add(r.DesigningCharges)
	t.SSQty += r.SSQty
	t.FBQty += r.FBQty
	t.Finishing = t.Finishing.Add(r.Finishing)
	t.Waste += r.Waste
}

// Totals returns the column totals of rows.
func Totals(rows []RowInput) ColumnTotals {
	var t ColumnTotals
	for _, r := range rows {
		t.Add(r)
	}
	return t
}

// =============================================================================
// FORMATTING
// =============================================================================

// JobNumber renders the shop's job number, e.g. "5-Mar-02".
func JobNumber(date string, serialNo int) string {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return fmt.Sprintf("%s-%02d", date, serialNo)
	}
	return fmt.Sprintf("%d-%s-%02d", d.Day(), d.Format("Jan"), serialNo)
}

// DayName returns the English weekday of an ISO date.
func DayName(date string) (string, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", err
	}
	return d.Weekday().String(), nil
}

// NextDate returns the ISO date one day after date.
func NextDate(date string) (string, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", err
	}
	return d.AddDate(0, 0, 1).Format(DateLayout), nil
}

// FormatINR renders an amount in rupees, rounded to paise.
func FormatINR(amount decimal.Decimal) string {
	paise := amount.Shift(2).Round(0).IntPart()
	return money.New(paise, money.INR).Display()
}
