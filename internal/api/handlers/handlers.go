package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aditsw/smartsheet/internal/api/middleware"
	"github.com/aditsw/smartsheet/internal/assistant"
	"github.com/aditsw/smartsheet/internal/config"
	"github.com/aditsw/smartsheet/internal/domain"
	"github.com/aditsw/smartsheet/internal/ledger"
	"github.com/aditsw/smartsheet/internal/sheet"
	"github.com/aditsw/smartsheet/internal/summary"
)

// parseFilter builds the time filter from query parameters. Missing
// year/month default to the current period.
func parseFilter(q url.Values, now time.Time) (summary.Filter, error) {
	f := summary.Filter{
		Mode:  summary.Mode(q.Get("mode")),
		Year:  now.Year(),
		Month: now.Month(),
	}
	if f.Mode == "" {
		f.Mode = summary.ModeAll
	}
	switch f.Mode {
	case summary.ModeAll, summary.ModeYear, summary.ModeMonth, summary.ModeDay:
	default:
		return f, errors.New("mode must be one of all, year, month, day")
	}

	if raw := q.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return f, errors.New("invalid year")
		}
		f.Year = year
	}
	if raw := q.Get("month"); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil || month < 1 || month > 12 {
			return f, errors.New("invalid month")
		}
		f.Month = time.Month(month)
	}
	if f.Mode == summary.ModeDay {
		f.Day = q.Get("day")
		if _, err := time.Parse("2006-01-02", f.Day); err != nil {
			return f, errors.New("day must be YYYY-MM-DD")
		}
	}
	return f, nil
}

// TransactionsHandler handles transaction-related endpoints.
type TransactionsHandler struct {
	ledger *ledger.Ledger
	log    zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(l *ledger.Ledger, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{ledger: l, log: log}
}

// List handles GET /api/transactions
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query(), time.Now())
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs := summary.Apply(filter, h.ledger.Transactions())
	if txs == nil {
		txs = []domain.Transaction{}
	}
	middleware.WriteJSON(w, http.StatusOK, txs)
}

// Create handles POST /api/transactions
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date        string  `json:"date"`
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
		Type        string  `json:"type"`
		Image       string  `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Description == "" {
		middleware.WriteError(w, http.StatusBadRequest, "description is required")
		return
	}
	if req.Amount == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "amount is required")
		return
	}

	t := domain.Transaction{
		Date:        req.Date,
		Description: req.Description,
		Amount:      math.Abs(req.Amount),
		Category:    req.Category,
		Type:        domain.ParseType(req.Type),
		Image:       req.Image,
	}

	warning, err := h.ledger.Add(r.Context(), t)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to add transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to add transaction")
		return
	}

	resp := map[string]interface{}{"transaction": t}
	if warning != "" {
		resp["warning"] = warning
	}
	middleware.WriteJSON(w, http.StatusCreated, resp)
}

// Delete handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.ledger.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		h.log.Error().Err(err).Str("id", id).Msg("Failed to delete transaction")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to delete from sheet; the record was restored")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// SummaryHandler serves the aggregate dashboard views.
type SummaryHandler struct {
	ledger *ledger.Ledger
	log    zerolog.Logger
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(l *ledger.Ledger, log zerolog.Logger) *SummaryHandler {
	return &SummaryHandler{ledger: l, log: log}
}

// Get handles GET /api/summary
func (h *SummaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query(), time.Now())
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs := summary.Apply(filter, h.ledger.Transactions())
	middleware.WriteJSON(w, http.StatusOK, summary.Compute(txs, filter.Mode))
}

// SyncHandler manages the spreadsheet connection.
type SyncHandler struct {
	ledger *ledger.Ledger
	log    zerolog.Logger
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(l *ledger.Ledger, log zerolog.Logger) *SyncHandler {
	return &SyncHandler{ledger: l, log: log}
}

// Connect handles POST /api/connect: point the ledger at a new source
// URL and run an initial sync. The URL is persisted only once that sync
// succeeds, so a bad URL never survives a restart.
func (h *SyncHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		middleware.WriteError(w, http.StatusBadRequest, "url is required")
		return
	}

	h.ledger.SetSource(sheet.NewClient(req.URL))

	if err := h.ledger.Sync(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Initial sync failed")
		middleware.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	if err := config.SaveSheetURL(req.URL); err != nil {
		h.log.Warn().Err(err).Msg("Failed to persist sheet URL")
	}
	middleware.WriteJSON(w, http.StatusOK, h.ledger.Status(time.Now()))
}

// Sync handles POST /api/sync
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.Sync(r.Context()); err != nil {
		switch {
		case errors.Is(err, ledger.ErrSyncInProgress):
			middleware.WriteError(w, http.StatusConflict, "Sync already in progress")
		case errors.Is(err, ledger.ErrNoSource):
			middleware.WriteError(w, http.StatusBadRequest, "No source configured; connect a sheet URL first")
		default:
			h.log.Error().Err(err).Msg("Sync failed")
			middleware.WriteError(w, http.StatusBadGateway, err.Error())
		}
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.ledger.Status(time.Now()))
}

// Status handles GET /api/status
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.ledger.Status(time.Now()))
}

// AssistantHandler serves the model-backed endpoints.
type AssistantHandler struct {
	assistant *assistant.Assistant
	ledger    *ledger.Ledger
	log       zerolog.Logger
}

// NewAssistantHandler creates a new assistant handler. The assistant may
// be nil when no API key is configured.
func NewAssistantHandler(a *assistant.Assistant, l *ledger.Ledger, log zerolog.Logger) *AssistantHandler {
	return &AssistantHandler{assistant: a, ledger: l, log: log}
}

// Insights handles POST /api/insights
func (h *AssistantHandler) Insights(w http.ResponseWriter, r *http.Request) {
	if h.assistant == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Assistant not configured; set GEMINI_API_KEY")
		return
	}

	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	text := h.assistant.Insights(r.Context(), h.ledger.Transactions(), req.Query)
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"text": text})
}

// ScanReceipt handles POST /api/receipts: extract one expense draft from
// an uploaded image. The draft is returned for review, not recorded.
func (h *AssistantHandler) ScanReceipt(w http.ResponseWriter, r *http.Request) {
	if h.assistant == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Assistant not configured; set GEMINI_API_KEY")
		return
	}

	var req struct {
		MimeType string `json:"mimeType"`
		Data     string `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Data == "" {
		middleware.WriteError(w, http.StatusBadRequest, "data (base64 image) is required")
		return
	}
	if req.MimeType == "" {
		req.MimeType = "image/jpeg"
	}

	image, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "data is not valid base64")
		return
	}

	draft, err := h.assistant.ScanReceipt(r.Context(), req.MimeType, image)
	if err != nil {
		h.log.Error().Err(err).Msg("Receipt scan failed")
		middleware.WriteError(w, http.StatusUnprocessableEntity, "Could not read the receipt; please enter the transaction manually")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"transaction": draft})
}
