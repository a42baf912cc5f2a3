/*
handlers.go - HTTP API handlers for the print-shop production tracker

PURPOSE:
  Exposes the production service via REST API. Handles HTTP
  request/response, JSON serialization, role checks that depend on stored
  state, and delegates to the production package.

ENDPOINTS:
  Auth:
    POST   /api/login                       Exchange credentials for a token

  Clients & Items:
    GET    /api/clients                     List clients (?active=true)
    POST   /api/clients                     Create client
    PUT    /api/clients/{id}                Update or deactivate client
    GET    /api/items                       List items
    GET    /api/items/low                   Items at or below reorder level
    POST   /api/items                       Create item
    PUT    /api/items/{sku}                 Update item
    POST   /api/items/{sku}/stock           Manual stock in/out

  Daily entry:
    GET    /api/daily/{date}                Entry, starting reading and draft
    POST   /api/daily/{date}                Save (finalize) the day
    GET    /api/daily/{date}/previous       Latest header before date
    GET    /api/daily/{date}/export.csv     Daily sheet as CSV
    GET    /api/daily/{date}/export.pdf     Daily sheet as PDF

  Drafts:
    GET    /api/drafts                      List drafts
    GET    /api/drafts/{date}               Load draft
    PUT    /api/drafts/{date}               Autosave draft
    DELETE /api/drafts/{date}               Discard draft

  Reports, jobs & dashboard:
    GET    /api/reports?start&end           Report aggregation
    GET    /api/jobs?filter&q               Accounts job list
    PUT    /api/jobs/{id}/billing           Set billing status
    GET    /api/dashboard?start&end         Cost dashboard

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Missing or bad credentials
  - 403: Role not allowed
  - 404: Resource not found
  - 409: Duplicate SKU, stale daily-entry version
  - 423: Finalized day or billed job edited by a restricted role
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - middleware.go: Token and permission checks
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/print-tracker/auth"
	"github.com/warp/print-tracker/export"
	"github.com/warp/print-tracker/production"
)

// errBillingLocked is returned when Accounts edits a row that already has
// a bill number.
var errBillingLocked = errors.New("job already has a bill number")

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service  *production.Service
	Auth     auth.Authenticator
	Sessions *auth.Sessions

	// StrictReadings rejects saves whose machine-reading delta differs
	// from the computed impressions.
	StrictReadings bool

	now func() time.Time

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler over svc.
func NewHandler(svc *production.Service, authn auth.Authenticator, sessions *auth.Sessions) *Handler {
	return &Handler{
		Service:  svc,
		Auth:     authn,
		Sessions: sessions,
		now:      time.Now,
	}
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Login verifies credentials and issues a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	role, err := h.Auth.Authenticate(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password", nil)
		return
	}

	token, exp, err := h.Sessions.Issue(req.Username, role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue session", err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, Role: role, ExpiresAt: exp})
}

// =============================================================================
// CLIENT HANDLERS
// =============================================================================

// ListClients returns all clients, or only active ones with ?active=true.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	var (
		clients []production.Client
		err     error
	)
	if r.URL.Query().Get("active") == "true" {
		clients, err = h.Service.ActiveClients(r.Context())
	} else {
		clients, err = h.Service.ListClients(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list clients", err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

// CreateClient adds an active client.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req production.NewClient
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := production.ValidateClient(req.Name); err != nil {
		writeServiceError(w, "Invalid client", err)
		return
	}

	client, err := h.Service.AddClient(r.Context(), req)
	if err != nil {
		writeServiceError(w, "Failed to create client", err)
		return
	}
	writeJSON(w, http.StatusCreated, client)
}

// UpdateClient replaces a client; the id comes from the path.
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid client id", err)
		return
	}

	var req production.Client
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.ID = id
	if err := production.ValidateClient(req.Name); err != nil {
		writeServiceError(w, "Invalid client", err)
		return
	}

	client, err := h.Service.UpdateClient(r.Context(), req)
	if err != nil {
		writeServiceError(w, "Failed to update client", err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

// =============================================================================
// ITEM HANDLERS
// =============================================================================

// ListItems returns all items.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListItems(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list items", err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTOs(items))
}

// ListLowStock returns items at or below their reorder level.
func (h *Handler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.LowStockItems(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list items", err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTOs(items))
}

// CreateItem adds an item with zero stock.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req production.NewItem
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.SKU = strings.TrimSpace(req.SKU)
	if err := production.ValidateItem(req.SKU, req.Name, req.UOM); err != nil {
		writeServiceError(w, "Invalid item", err)
		return
	}

	item, err := h.Service.AddItem(r.Context(), req)
	if err != nil {
		writeServiceError(w, "Failed to create item", err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemDTO(item))
}

// UpdateItem replaces an item; the SKU comes from the path.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req production.Item
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.SKU = chi.URLParam(r, "sku")
	if err := production.ValidateItem(req.SKU, req.Name, req.UOM); err != nil {
		writeServiceError(w, "Invalid item", err)
		return
	}
	if req.StockQty < 0 {
		writeServiceError(w, "Invalid item", production.ErrNegativeStock)
		return
	}

	item, err := h.Service.UpdateItem(r.Context(), req)
	if err != nil {
		writeServiceError(w, "Failed to update item", err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTO(item))
}

// AdjustStock applies a manual stock-in or stock-out.
func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var req StockAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	item, err := h.Service.AdjustStock(r.Context(), chi.URLParam(r, "sku"), req.Direction, req.Quantity)
	if err != nil {
		writeServiceError(w, "Failed to adjust stock", err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTO(item))
}

// =============================================================================
// DAILY ENTRY HANDLERS
// =============================================================================

// dateParam reads and validates the {date} path segment.
func dateParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	date := chi.URLParam(r, "date")
	if err := production.ValidateDate("date", date); err != nil {
		writeServiceError(w, "Invalid date", err)
		return "", false
	}
	return date, true
}

// GetDailyEntry returns the saved entry for a date, the reading the day
// starts from, and the draft when the day is not finalized.
func (h *Handler) GetDailyEntry(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	entry, err := h.Service.GetDailyEntry(ctx, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load daily entry", err)
		return
	}

	dto := DailyEntryDTO{
		Date:      date,
		Finalized: entry.Header != nil,
		Header:    entry.Header,
		Rows:      entry.Rows,
	}
	dto.DayName, _ = production.DayName(date)

	inputs := make([]production.RowInput, len(entry.Rows))
	for i, row := range entry.Rows {
		inputs[i] = row.RowInput
	}
	dto.TotalImpressions = production.TotalImpressions(inputs)
	dto.Totals = production.Totals(inputs)

	if entry.Header != nil {
		dto.StartingReading = entry.Header.MachineStartReading
	} else {
		if dto.StartingReading, err = h.Service.StartingReading(ctx, date); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load previous reading", err)
			return
		}
		if dto.Draft, err = h.Service.GetDraft(ctx, date); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load draft", err)
			return
		}
	}

	writeJSON(w, http.StatusOK, dto)
}

// SaveDailyEntry validates and saves a day. Re-saving a finalized day
// requires the edit_finalized_day permission.
func (h *Handler) SaveDailyEntry(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	var req SaveDailyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Rows == nil {
		req.Rows = []production.RowInput{}
	}

	finalized, err := h.Service.IsFinalized(ctx, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load daily entry", err)
		return
	}
	role, _ := auth.RoleFrom(ctx)
	if finalized && !role.Can(auth.PermEditLocked) {
		writeError(w, http.StatusLocked, "This day is finalized and can only be edited by an admin", production.ErrDayLocked)
		return
	}

	header := completeHeader(date, req.Header, req.Rows)
	if err := production.ValidateDailyEntry(header, req.Rows, h.StrictReadings); err != nil {
		writeServiceError(w, "Invalid daily entry", err)
		return
	}

	saved, err := h.Service.SaveDailyEntry(ctx, header, req.Rows)
	if err != nil {
		writeServiceError(w, "Failed to save daily entry", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// completeHeader fills the derived header fields: the date from the path,
// the weekday, the impression total, and an end reading when none is given.
func completeHeader(date string, in production.HeaderInput, rows []production.RowInput) production.HeaderInput {
	in.Date = date
	if in.DayName == "" {
		in.DayName, _ = production.DayName(date)
	}
	in.TotalImpressions = production.TotalImpressions(rows)
	if in.MachineEndReading == 0 {
		in.MachineEndReading = in.MachineStartReading + in.TotalImpressions
	}
	return in
}

// GetPreviousHeader returns the latest header strictly before date, or null.
func (h *Handler) GetPreviousHeader(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	prev, err := h.Service.GetLatestHeaderBefore(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load previous day", err)
		return
	}
	writeJSON(w, http.StatusOK, prev)
}

// ExportDailyCSV downloads a day's sheet as CSV.
func (h *Handler) ExportDailyCSV(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	sheet, err := h.Service.DailySheet(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load daily entry", err)
		return
	}
	startDownload(w, "text/csv", export.DailyEntryFilename(date, "csv"))
	if err := export.WriteDailyEntryCSV(w, sheet); err != nil {
		logDownloadError("daily csv", err)
	}
}

// ExportDailyPDF downloads a day's sheet as PDF.
func (h *Handler) ExportDailyPDF(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	sheet, err := h.Service.DailySheet(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load daily entry", err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteDailyEntryPDF(&buf, date, sheet); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render PDF", err)
		return
	}
	startDownload(w, "application/pdf", export.DailyEntryFilename(date, "pdf"))
	w.Write(buf.Bytes())
}

// =============================================================================
// DRAFT HANDLERS
// =============================================================================

func (h *Handler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.Service.ListDrafts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list drafts", err)
		return
	}
	writeJSON(w, http.StatusOK, drafts)
}

func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	draft, err := h.Service.GetDraft(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load draft", err)
		return
	}
	if draft == nil {
		writeError(w, http.StatusNotFound, "No draft for "+date, nil)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// SaveDraft autosaves the in-progress rows of an unfinalized day.
func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	var req production.Draft
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	draft, err := h.Service.SaveDraft(r.Context(), date, req)
	if err != nil {
		writeServiceError(w, "Failed to save draft", err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (h *Handler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteDraft(r.Context(), date); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete draft", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// dateRange reads ?start and ?end. Missing values default to the first day
// of the current month and today.
func (h *Handler) dateRange(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	today := h.now()
	start := r.URL.Query().Get("start")
	if start == "" {
		start = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()).Format(production.DateLayout)
	}
	end := r.URL.Query().Get("end")
	if end == "" {
		end = today.Format(production.DateLayout)
	}
	if err := production.ValidateDateRange(start, end); err != nil {
		writeServiceError(w, "Invalid date range", err)
		return "", "", false
	}
	return start, end, true
}

// GetReport aggregates production between start and end inclusive.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	report, err := h.Service.GetReportData(r.Context(), start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build report", err)
		return
	}
	writeJSON(w, http.StatusOK, ReportDTO{
		ReportData:                    report,
		TotalProductionValueFormatted: production.FormatINR(report.TotalProductionValue),
	})
}

func (h *Handler) ExportReportCSV(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	report, err := h.Service.GetReportData(r.Context(), start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build report", err)
		return
	}
	startDownload(w, "text/csv", export.ReportFilename(start, end))
	if err := export.WriteReportCSV(w, report); err != nil {
		logDownloadError("report csv", err)
	}
}

// =============================================================================
// JOB & BILLING HANDLERS
// =============================================================================

func parseJobQuery(r *http.Request) (production.JobQuery, error) {
	q := production.JobQuery{
		Filter: production.BillingFilter(r.URL.Query().Get("filter")),
		Search: r.URL.Query().Get("q"),
	}
	switch q.Filter {
	case "", production.FilterAll, production.FilterBilled, production.FilterUnbilled:
		return q, nil
	}
	return q, &production.ValidationError{Field: "filter", Message: "must be all, billed or unbilled"}
}

// ListJobs returns finalized jobs for the accounts view.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	q, err := parseJobQuery(r)
	if err != nil {
		writeServiceError(w, "Invalid job filter", err)
		return
	}
	jobs, err := h.Service.ListJobs(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list jobs", err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h *Handler) ExportJobsCSV(w http.ResponseWriter, r *http.Request) {
	q, err := parseJobQuery(r)
	if err != nil {
		writeServiceError(w, "Invalid job filter", err)
		return
	}
	jobs, err := h.Service.ListJobs(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list jobs", err)
		return
	}
	startDownload(w, "text/csv", export.AccountsFilename)
	if err := export.WriteAccountsCSV(w, jobs); err != nil {
		logDownloadError("accounts csv", err)
	}
}

// UpdateBilling sets the billing status of one job. A non-empty bill number
// marks the job billed. Accounts users cannot change a job that already
// carries a bill number.
func (h *Handler) UpdateBilling(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid job id", err)
		return
	}
	var req BillingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	ctx := r.Context()

	existing, err := h.Service.FindRow(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load job", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Job %d not found", id), nil)
		return
	}
	role, _ := auth.RoleFrom(ctx)
	if role != auth.RoleAdmin && existing.BillNo != nil {
		writeError(w, http.StatusLocked, "Billed jobs can only be changed by an admin", errBillingLocked)
		return
	}

	if req.BillNo != nil && strings.TrimSpace(*req.BillNo) != "" {
		req.IsBilled = true
	}

	updated, err := h.Service.UpdateBillingInfo(ctx, id, req.IsBilled, req.BillNo)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update billing", err)
		return
	}
	resp := BillingResponse{Updated: updated}
	if updated {
		if resp.Row, err = h.Service.FindRow(ctx, id); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load job", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// DASHBOARD HANDLERS
// =============================================================================

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	d, err := h.Service.CostDashboard(r.Context(), start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, DashboardDTO{
		Dashboard:          d,
		TotalCostFormatted: production.FormatINR(d.Summary.TotalCost),
	})
}

func (h *Handler) ExportDashboardCSV(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	d, err := h.Service.CostDashboard(r.Context(), start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build dashboard", err)
		return
	}
	startDownload(w, "text/csv", export.DashboardFilename(start, end))
	if err := export.WriteDashboardCSV(w, d); err != nil {
		logDownloadError("dashboard csv", err)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps a production error to its HTTP status.
func writeServiceError(w http.ResponseWriter, message string, err error) {
	writeError(w, statusFor(err), message, err)
}

func statusFor(err error) int {
	switch {
	case production.IsNotFound(err):
		return http.StatusNotFound
	case production.IsConflict(err):
		return http.StatusConflict
	case errors.Is(err, production.ErrDayLocked), errors.Is(err, errBillingLocked):
		return http.StatusLocked
	case production.IsClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func startDownload(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
}

// logDownloadError records a failure after the response has started.
func logDownloadError(what string, err error) {
	log.Printf("[API] Writing %s failed: %v", what, err)
}
