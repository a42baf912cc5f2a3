package production

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// VALIDATION
// =============================================================================
//
// The repositories do not validate; these checks run in the HTTP and CLI
// layers before a repository call.

// ValidateClient requires a non-blank name.
func ValidateClient(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Message: "Client Name is required"}
	}
	return nil
}

// ValidateItem requires SKU, name and unit of measure.
func ValidateItem(sku, name, uom string) error {
	var errs ValidationErrors
	if strings.TrimSpace(sku) == "" {
		errs = append(errs, &ValidationError{Field: "sku", Message: "SKU is required"})
	}
	if strings.TrimSpace(name) == "" {
		errs = append(errs, &ValidationError{Field: "name", Message: "Item Name is required"})
	}
	if strings.TrimSpace(uom) == "" {
		errs = append(errs, &ValidationError{Field: "uom", Message: "UOM is required"})
	}
	return errs.Err()
}

// ValidateDate requires a YYYY-MM-DD date.
func ValidateDate(field, date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return &ValidationError{Field: field, Message: "must be a YYYY-MM-DD date"}
	}
	return nil
}

// ValidateDateRange requires two ISO dates with start <= end.
func ValidateDateRange(start, end string) error {
	var errs ValidationErrors
	for _, f := range [][2]string{{"start", start}, {"end", end}} {
		if err := ValidateDate(f[0], f[1]); err != nil {
			errs = append(errs, err.(*ValidationError))
		}
	}
	if len(errs) == 0 && start > end {
		errs = append(errs, &ValidationError{Field: "end", Message: "must not be before start"})
	}
	return errs.Err()
}

// ValidateDailyEntry checks a save before it reaches SaveDailyEntry. Every
// row needs a client and a material, quantities cannot be negative, and with
// strictReadings the machine-reading delta must equal the computed
// impressions.
func ValidateDailyEntry(header HeaderInput, rows []RowInput, strictReadings bool) error {
	var errs ValidationErrors
	if err := ValidateDate("date", header.Date); err != nil {
		errs = append(errs, err.(*ValidationError))
	}
	if header.MachineStartReading < 0 {
		errs = append(errs, &ValidationError{Field: "machine_start_reading", Message: "cannot be negative"})
	}
	for i, r := range rows {
		n := i + 1
		if r.ClientID == 0 || strings.TrimSpace(r.MaterialSKU) == "" {
			errs = append(errs, &ValidationError{
				Field:   fmt.Sprintf("rows[%d]", n),
				Message: "Client Name and Material cannot be empty",
			})
		}
		if r.SSQty < 0 || r.FBQty < 0 || r.Waste < 0 ||
			r.DesigningCharges.IsNegative() || r.Finishing.IsNegative() {
			errs = append(errs, &ValidationError{
				Field:   fmt.Sprintf("rows[%d]", n),
				Message: "quantities and charges cannot be negative",
			})
		}
	}
	if strictReadings {
		impressions := TotalImpressions(rows)
		if delta := header.MachineEndReading - header.MachineStartReading; delta != impressions {
			errs = append(errs, &ValidationError{
				Field:   "machine_end_reading",
				Message: fmt.Sprintf("machine readings differ by %d but jobs total %d impressions", delta, impressions),
			})
		}
	}
	return errs.Err()
}
