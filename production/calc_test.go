package production

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowInput_Derived(t *testing.T) {
	r := RowInput{
		SSQty: 10, FBQty: 5, Waste: 2,
		DesigningCharges: decimal.NewFromInt(150),
		Finishing:        decimal.RequireFromString("49.50"),
	}

	assert.Equal(t, 22, r.Impressions())
	assert.Equal(t, 17, r.MaterialUsage())
	assert.True(t, r.ProductionValue().Equal(decimal.RequireFromString("199.5")))
}

func TestTotalImpressions(t *testing.T) {
	rows := []RowInput{{SSQty: 10, FBQty: 5, Waste: 2}, {SSQty: 0, FBQty: 3, Waste: 1}}
	assert.Equal(t, 29, TotalImpressions(rows))
	assert.Zero(t, TotalImpressions(nil))
}

func TestClickCharge(t *testing.T) {
	assert.True(t, ClickCharge.Equal(decimal.RequireFromString("4.307")), ClickCharge.String())
}

func TestTotals(t *testing.T) {
	totals := Totals([]RowInput{
		{SSQty: 1, FBQty: 2, Waste: 3, DesigningCharges: decimal.NewFromInt(10), Finishing: decimal.NewFromInt(1)},
		{SSQty: 4, FBQty: 5, Waste: 6, DesigningCharges: decimal.NewFromInt(20), Finishing: decimal.NewFromInt(2)},
	})
	assert.Equal(t, 5, totals.SSQty)
	assert.Equal(t, 7, totals.FBQty)
	assert.Equal(t, 9, totals.Waste)
	assert.True(t, totals.DesigningCharges.Equal(decimal.NewFromInt(30)))
	assert.True(t, totals.Finishing.Equal(decimal.NewFromInt(3)))
}

func TestJobNumber(t *testing.T) {
	tests := []struct {
		date   string
		serial int
		want   string
	}{
		{"2025-03-05", 2, "5-Mar-02"},
		{"2025-12-31", 14, "31-Dec-14"},
		{"2025-01-10", 100, "10-Jan-100"},
		{"garbage", 3, "garbage-03"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, JobNumber(tt.date, tt.serial))
		})
	}
}

func TestDayNameAndNextDate(t *testing.T) {
	name, err := DayName("2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, "Monday", name)

	next, err := NextDate("2024-02-28")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", next)

	next, err = NextDate("2025-12-31")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01", next)

	_, err = DayName("10/03/2025")
	assert.Error(t, err)
}

func TestFormatINR(t *testing.T) {
	assert.Contains(t, FormatINR(decimal.RequireFromString("1234.5")), "1,234.50")
	assert.Contains(t, FormatINR(decimal.RequireFromString("0.004")), "0.00")
	assert.Contains(t, FormatINR(decimal.RequireFromString("10.005")), "10.01")
}

func TestValidateDailyEntry(t *testing.T) {
	good := RowInput{ClientID: 1, MaterialSKU: "PAP-001", SSQty: 10, FBQty: 5, Waste: 2}

	t.Run("valid", func(t *testing.T) {
		err := ValidateDailyEntry(HeaderInput{Date: "2025-03-10"}, []RowInput{good}, false)
		assert.NoError(t, err)
	})

	t.Run("missing client and material", func(t *testing.T) {
		err := ValidateDailyEntry(HeaderInput{Date: "2025-03-10"}, []RowInput{good, {}}, false)
		require.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "rows[2]")
		assert.Contains(t, err.Error(), "Client Name and Material cannot be empty")
	})

	t.Run("negative quantity", func(t *testing.T) {
		bad := good
		bad.Waste = -1
		err := ValidateDailyEntry(HeaderInput{Date: "2025-03-10"}, []RowInput{bad}, false)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("bad date", func(t *testing.T) {
		err := ValidateDailyEntry(HeaderInput{Date: "March 10"}, nil, false)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("strict readings", func(t *testing.T) {
		h := HeaderInput{Date: "2025-03-10", MachineStartReading: 100, MachineEndReading: 122}
		assert.NoError(t, ValidateDailyEntry(h, []RowInput{good}, true))

		h.MachineEndReading = 120
		err := ValidateDailyEntry(h, []RowInput{good}, true)
		require.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "differ by 20 but jobs total 22")

		// Loose mode accepts the mismatch
		assert.NoError(t, ValidateDailyEntry(h, []RowInput{good}, false))
	})
}

func TestValidateDateRange(t *testing.T) {
	assert.NoError(t, ValidateDateRange("2025-03-01", "2025-03-01"))

	err := ValidateDateRange("2025-03-02", "2025-03-01")
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "must not be before start")

	err = ValidateDateRange("x", "y")
	require.Error(t, err)
	assert.Equal(t, "start: must be a YYYY-MM-DD date; end: must be a YYYY-MM-DD date", err.Error())
}

func TestValidateItemAndClient(t *testing.T) {
	assert.NoError(t, ValidateItem("PAP-001", "Paper", "sheets"))
	err := ValidateItem(" ", "", "sheets")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SKU is required")
	assert.Contains(t, err.Error(), "Item Name is required")

	assert.ErrorIs(t, ValidateClient("  "), ErrValidation)
	assert.NoError(t, ValidateClient("Prime"))
}
