/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Entities from the
  production package are returned as-is where their JSON already matches
  the screen; these types cover request bodies and composed views.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers via production.Validate*, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
  - production/types.go: Entities
*/
package api

import (
	"time"

	"github.com/warp/print-tracker/auth"
	"github.com/warp/print-tracker/production"
)

// =============================================================================
// AUTH
// =============================================================================

type LoginResponse struct {
	Token     string    `json:"token"`
	Role      auth.Role `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// =============================================================================
// ITEMS
// =============================================================================

// ItemDTO is an item with its low-stock flag and display price.
type ItemDTO struct {
	production.Item
	LowStock       bool   `json:"low_stock"`
	PriceFormatted string `json:"price_formatted"`
}

func toItemDTO(i production.Item) ItemDTO {
	return ItemDTO{Item: i, LowStock: i.IsLowStock(), PriceFormatted: production.FormatINR(i.Price)}
}

func toItemDTOs(items []production.Item) []ItemDTO {
	dtos := make([]ItemDTO, len(items))
	for i, it := range items {
		dtos[i] = toItemDTO(it)
	}
	return dtos
}

type StockAdjustmentRequest struct {
	Direction production.StockDirection `json:"direction"`
	Quantity  int                       `json:"quantity"`
}

// =============================================================================
// DAILY ENTRY
// =============================================================================

type SaveDailyRequest struct {
	Header production.HeaderInput `json:"header"`
	Rows   []production.RowInput  `json:"rows"`
}

// DailyEntryDTO is everything the daily screen needs for one date.
type DailyEntryDTO struct {
	Date             string                  `json:"date"`
	DayName          string                  `json:"day_name"`
	Finalized        bool                    `json:"finalized"`
	Header           *production.DailyHeader `json:"header"`
	Rows             []production.DailyRow   `json:"rows"`
	StartingReading  int                     `json:"starting_reading"`
	TotalImpressions int                     `json:"total_impressions"`
	Totals           production.ColumnTotals `json:"totals"`
	Draft            *production.Draft       `json:"draft,omitempty"`
}

// =============================================================================
// REPORTS, JOBS & DASHBOARD
// =============================================================================

type ReportDTO struct {
	production.ReportData
	TotalProductionValueFormatted string `json:"totalProductionValueFormatted"`
}

type BillingRequest struct {
	IsBilled bool    `json:"is_billed"`
	BillNo   *string `json:"bill_no"`
}

type BillingResponse struct {
	Updated bool                 `json:"updated"`
	Row     *production.DailyRow `json:"row,omitempty"`
}

type DashboardDTO struct {
	production.Dashboard
	TotalCostFormatted string `json:"total_cost_formatted"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo data set.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
