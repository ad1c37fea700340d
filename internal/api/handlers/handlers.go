// Package handlers serves the ledger read endpoints and the import job API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/statement-ledger/internal/api/middleware"
	"github.com/dvloznov/statement-ledger/internal/categorizer"
	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/gcsuploader"
	"github.com/dvloznov/statement-ledger/internal/jobs"
	"github.com/dvloznov/statement-ledger/internal/ledger"
	"github.com/dvloznov/statement-ledger/internal/statement"
)

const (
	defaultTransactionLimit = 1000
	maxTransactionLimit     = 10000
)

// TransactionsHandler handles transaction-related endpoints.
type TransactionsHandler struct {
	store ledger.TransactionStore
	log   zerolog.Logger
}

func NewTransactionsHandler(store ledger.TransactionStore, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{store: store, log: log}
}

type transactionResponse struct {
	Fingerprint      string              `json:"fingerprint"`
	Date             civil.Date          `json:"date"`
	Description      string              `json:"description"`
	OriginalAmount   decimal.Decimal     `json:"original_amount"`
	OriginalCurrency domain.Currency     `json:"original_currency"`
	AmountEUR        decimal.NullDecimal `json:"amount_eur"`
	AmountUSD        decimal.NullDecimal `json:"amount_usd"`
	ExchangeRate     decimal.NullDecimal `json:"exchange_rate"`
	Subcategory      string              `json:"subcategory"`
	Category         string              `json:"category"`
	BudgetType       string              `json:"budget_type"`
	IsQuorum         bool                `json:"is_quorum"`
	IsEUBill         bool                `json:"is_eu_bill"`
	IsManual         bool                `json:"is_manual"`
	CardLast4        string              `json:"card_last4,omitempty"`
	Confidence       int                 `json:"confidence"`
	Method           domain.Method       `json:"method"`
	Source           string              `json:"source"`
	ImportedAt       time.Time           `json:"imported_at"`
}

func newTransactionResponse(tx *domain.Transaction) transactionResponse {
	return transactionResponse{
		Fingerprint:      tx.Fingerprint,
		Date:             tx.Date,
		Description:      tx.Description,
		OriginalAmount:   tx.OriginalAmount,
		OriginalCurrency: tx.OriginalCurrency,
		AmountEUR:        tx.AmountEUR,
		AmountUSD:        tx.AmountUSD,
		ExchangeRate:     tx.ExchangeRate,
		Subcategory:      tx.Subcategory,
		Category:         tx.Category,
		BudgetType:       tx.BudgetType,
		IsQuorum:         tx.IsQuorum,
		IsEUBill:         tx.IsEUBill,
		IsManual:         tx.IsManual,
		CardLast4:        tx.CardLast4,
		Confidence:       tx.Confidence,
		Method:           tx.Method,
		Source:           tx.Source,
		ImportedAt:       tx.ImportedAt,
	}
}

// ListTransactions handles GET /api/transactions
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionFilter(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := h.store.QueryTransactions(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query transactions")
		return
	}

	// Return array directly for frontend compatibility
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, newTransactionResponse(tx))
	}
	middleware.WriteJSON(w, http.StatusOK, out)
}

func parseTransactionFilter(r *http.Request) (ledger.Filter, error) {
	q := r.URL.Query()
	f := ledger.Filter{
		Category:    q.Get("category"),
		Subcategory: q.Get("subcategory"),
		Limit:       defaultTransactionLimit,
	}

	var err error
	if s := q.Get("from"); s != "" {
		if f.From, err = civil.ParseDate(s); err != nil {
			return f, errors.New("invalid from date, want YYYY-MM-DD")
		}
	}
	if s := q.Get("to"); s != "" {
		if f.To, err = civil.ParseDate(s); err != nil {
			return f, errors.New("invalid to date, want YYYY-MM-DD")
		}
	}
	if f.From.IsValid() && f.To.IsValid() && f.To.Before(f.From) {
		return f, errors.New("to must not be before from")
	}
	if f.IsQuorum, err = parseBoolParam(q.Get("quorum")); err != nil {
		return f, errors.New("invalid quorum flag")
	}
	if f.IsManual, err = parseBoolParam(q.Get("manual")); err != nil {
		return f, errors.New("invalid manual flag")
	}
	if s := q.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit <= 0 {
			return f, errors.New("invalid limit")
		}
		f.Limit = min(limit, maxTransactionLimit)
	}
	return f, nil
}

func parseBoolParam(s string) (*bool, error) {
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CategoriesHandler handles category-related endpoints.
type CategoriesHandler struct {
	store ledger.CategoryStore
	log   zerolog.Logger
}

func NewCategoriesHandler(store ledger.CategoryStore, log zerolog.Logger) *CategoriesHandler {
	return &CategoriesHandler{store: store, log: log}
}

// ListCategories handles GET /api/categories
func (h *CategoriesHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategoryMappings(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list categories")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}
	if categories == nil {
		categories = []domain.CategoryMapping{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

// Learner is the categorizer surface used for manual confirmations.
type Learner interface {
	Learn(ctx context.Context, description, subcategory string) error
	Lookup(subcategory string) (domain.CategoryMapping, bool)
	Patterns() []domain.MerchantPattern
}

// PatternsHandler handles merchant pattern endpoints.
type PatternsHandler struct {
	learner Learner
	log     zerolog.Logger
}

func NewPatternsHandler(learner Learner, log zerolog.Logger) *PatternsHandler {
	return &PatternsHandler{learner: learner, log: log}
}

// ListPatterns handles GET /api/merchant-patterns
func (h *PatternsHandler) ListPatterns(w http.ResponseWriter, r *http.Request) {
	patterns := h.learner.Patterns()
	if patterns == nil {
		patterns = []domain.MerchantPattern{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"patterns": patterns,
		"count":    len(patterns),
	})
}

// LearnPattern handles POST /api/merchant-patterns/learn
func (h *PatternsHandler) LearnPattern(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
		Subcategory string `json:"subcategory"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pattern := categorizer.ExtractPattern(req.Description)
	if pattern == "" {
		middleware.WriteError(w, http.StatusBadRequest, "description has no merchant token")
		return
	}
	req.Subcategory = strings.TrimSpace(req.Subcategory)
	if _, ok := h.learner.Lookup(req.Subcategory); !ok {
		middleware.WriteError(w, http.StatusBadRequest, "Unknown subcategory")
		return
	}

	if err := h.learner.Learn(r.Context(), req.Description, req.Subcategory); err != nil {
		h.log.Error().Err(err).Str("pattern", pattern).Msg("Failed to learn pattern")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to learn pattern")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"pattern":     pattern,
		"subcategory": req.Subcategory,
	})
}

// ReimbursementsHandler serves monthly Quorum totals.
type ReimbursementsHandler struct {
	store ledger.ReimbursementStore
	log   zerolog.Logger
}

func NewReimbursementsHandler(store ledger.ReimbursementStore, log zerolog.Logger) *ReimbursementsHandler {
	return &ReimbursementsHandler{store: store, log: log}
}

// ListReimbursements handles GET /api/reimbursements
func (h *ReimbursementsHandler) ListReimbursements(w http.ResponseWriter, r *http.Request) {
	totals, err := h.store.ListQuorumTotals(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list reimbursements")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list reimbursements")
		return
	}
	if totals == nil {
		totals = []domain.QuorumTotal{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reimbursements": totals,
		"count":          len(totals),
	})
}

// ImportsHandler enqueues and reports import jobs.
type ImportsHandler struct {
	publisher jobs.Publisher
	store     jobs.JobStore
	log       zerolog.Logger
}

func NewImportsHandler(publisher jobs.Publisher, store jobs.JobStore, log zerolog.Logger) *ImportsHandler {
	return &ImportsHandler{publisher: publisher, store: store, log: log}
}

// CreateImport handles POST /api/imports
func (h *ImportsHandler) CreateImport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URI  string         `json:"uri"`
		Kind statement.Kind `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, _, err := gcsuploader.ParseURI(req.URI); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "uri must be gs://bucket/object")
		return
	}
	if req.Kind == "" {
		req.Kind = statement.KindStatement
	}
	if _, err := statement.AdapterFor(req.Kind, 0); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "kind must be statement or historical")
		return
	}

	job := &jobs.ImportJob{URI: req.URI, Kind: req.Kind}
	if err := h.publisher.PublishImport(r.Context(), job); err != nil {
		h.log.Error().Err(err).Str("uri", req.URI).Msg("Failed to enqueue import job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue import job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("uri", req.URI).Msg("Import job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"uri":    req.URI,
		"status": string(job.Status),
	})
}

// GetImport handles GET /api/imports/{id}
func (h *ImportsHandler) GetImport(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	job, err := h.store.GetJob(r.Context(), jobID)
	if errors.Is(err, jobs.ErrJobNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListImports handles GET /api/imports
func (h *ImportsHandler) ListImports(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		URI:    query.Get("uri"),
		Status: jobs.JobStatus(query.Get("status")),
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(query.Get("offset")); err == nil {
		filter.Offset = offset
	}

	list, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  list,
		"count": len(list),
	})
}
