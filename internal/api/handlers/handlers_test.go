package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/statement-ledger/internal/api/handlers"
	"github.com/dvloznov/statement-ledger/internal/categorizer"
	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/jobs"
	"github.com/dvloznov/statement-ledger/internal/jobs/inmemory"
	"github.com/dvloznov/statement-ledger/internal/ledger/memory"
)

type server struct {
	ts    *httptest.Server
	store *memory.Store
	cat   *categorizer.Categorizer
	jobs  *inmemory.Store
	queue *inmemory.Queue
}

func newServer(t *testing.T) *server {
	t.Helper()
	ctx := context.Background()
	log := zerolog.Nop()

	store := memory.New()
	_, err := store.SeedCategories(ctx, domain.DefaultCategories())
	require.NoError(t, err)

	for _, tx := range []*domain.Transaction{
		{
			Fingerprint: "a1", Date: civil.Date{Year: 2024, Month: 5, Day: 3}, Description: "REWE SAGT DANKE",
			OriginalAmount: decimal.RequireFromString("42.10"), OriginalCurrency: domain.USD,
			AmountUSD:    decimal.NewNullDecimal(decimal.RequireFromString("42.10")),
			AmountEUR:    decimal.NewNullDecimal(decimal.RequireFromString("38.98")),
			ExchangeRate: decimal.NewNullDecimal(decimal.RequireFromString("1.08")),
			Subcategory:  "Supermarket", Category: "Groceries & Living", BudgetType: "Needs",
			Confidence: 50, Method: domain.MethodFuzzy,
		},
		{
			Fingerprint: "q1", Date: civil.Date{Year: 2024, Month: 5, Day: 9}, Description: "TAXI",
			OriginalAmount: decimal.RequireFromString("15.00"), OriginalCurrency: domain.USD,
			AmountUSD: decimal.NewNullDecimal(decimal.RequireFromString("15.00")),
			IsQuorum:  true, CardLast4: "7575",
			Subcategory: domain.QuorumSubcategory, Category: domain.QuorumCategory, BudgetType: domain.QuorumBudgetType,
			Confidence: 100, Method: domain.MethodQuorum,
		},
	} {
		require.NoError(t, store.InsertTransaction(ctx, tx))
	}
	_, err = store.RecomputeQuorumTotals(ctx)
	require.NoError(t, err)

	cat, err := categorizer.New(ctx, store)
	require.NoError(t, err)

	jobStore := inmemory.NewStore()
	queue := inmemory.NewQueue(10, 1, jobStore)

	rt := handlers.Router{
		Transactions:   handlers.NewTransactionsHandler(store, log),
		Categories:     handlers.NewCategoriesHandler(store, log),
		Patterns:       handlers.NewPatternsHandler(cat, log),
		Reimbursements: handlers.NewReimbursementsHandler(store, log),
		Imports:        handlers.NewImportsHandler(queue, jobStore, log),
		Now:            func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) },
	}
	ts := httptest.NewServer(rt.Mux())
	t.Cleanup(ts.Close)
	return &server{ts: ts, store: store, cat: cat, jobs: jobStore, queue: queue}
}

func (s *server) do(t *testing.T, method, path, body string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, s.ts.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestListTransactions(t *testing.T) {
	s := newServer(t)

	code, body := s.do(t, http.MethodGet, "/api/transactions", "")
	require.Equal(t, http.StatusOK, code)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(body, &all))
	require.Len(t, all, 2)
	assert.Equal(t, "2024-05-03", all[0]["date"])
	assert.Equal(t, "38.98", all[0]["amount_eur"])
	assert.Nil(t, all[1]["amount_eur"])

	code, body = s.do(t, http.MethodGet, "/api/transactions?quorum=true", "")
	require.Equal(t, http.StatusOK, code)
	var quorum []map[string]any
	require.NoError(t, json.Unmarshal(body, &quorum))
	require.Len(t, quorum, 1)
	assert.Equal(t, "q1", quorum[0]["fingerprint"])

	code, body = s.do(t, http.MethodGet, "/api/transactions?from=2024-05-04&to=2024-05-31&category=Quorum", "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(body, &quorum))
	assert.Len(t, quorum, 1)

	code, body = s.do(t, http.MethodGet, "/api/transactions?from=2024-06-01", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(body))
}

func TestListTransactions_BadParams(t *testing.T) {
	s := newServer(t)
	for _, q := range []string{
		"from=03.05.2024",
		"to=nope",
		"from=2024-05-10&to=2024-05-01",
		"quorum=maybe",
		"manual=2",
		"limit=0",
		"limit=abc",
	} {
		code, _ := s.do(t, http.MethodGet, "/api/transactions?"+q, "")
		assert.Equal(t, http.StatusBadRequest, code, q)
	}
}

func TestListCategoriesAndReimbursements(t *testing.T) {
	s := newServer(t)

	code, body := s.do(t, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, code)
	var cats struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(body, &cats))
	assert.Equal(t, len(domain.DefaultCategories()), cats.Count)

	code, body = s.do(t, http.MethodGet, "/api/reimbursements", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"count":1,"reimbursements":[{"year":2024,"month":5,"total_usd":"15"}]}`, string(body))
}

func TestLearnPattern(t *testing.T) {
	s := newServer(t)

	code, body := s.do(t, http.MethodPost, "/api/merchant-patterns/learn",
		`{"description":"BURGERME 1234 BERLIN","subcategory":"Fast Food"}`)
	require.Equal(t, http.StatusOK, code, string(body))
	assert.JSONEq(t, `{"pattern":"BURGERME","subcategory":"Fast Food"}`, string(body))

	res := s.cat.Categorize("BURGERME 9 MUNICH", false)
	assert.Equal(t, "Fast Food", res.Subcategory)
	assert.Equal(t, domain.MethodPattern, res.Method)

	code, body = s.do(t, http.MethodGet, "/api/merchant-patterns", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"pattern":"BURGERME"`)

	code, _ = s.do(t, http.MethodPost, "/api/merchant-patterns/learn", `{"description":"SHOP","subcategory":"Nope"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = s.do(t, http.MethodPost, "/api/merchant-patterns/learn", `{"description":"  ","subcategory":"Fast Food"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = s.do(t, http.MethodPost, "/api/merchant-patterns/learn", `not json`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestImports(t *testing.T) {
	s := newServer(t)

	code, body := s.do(t, http.MethodPost, "/api/imports", `{"uri":"gs://bucket/statements/2024/05/may.csv"}`)
	require.Equal(t, http.StatusAccepted, code, string(body))
	var created map[string]string
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, string(jobs.JobStatusPending), created["status"])
	id := created["job_id"]
	require.NotEmpty(t, id)

	code, body = s.do(t, http.MethodGet, "/api/imports/"+id, "")
	require.Equal(t, http.StatusOK, code)
	var job jobs.ImportJob
	require.NoError(t, json.Unmarshal(body, &job))
	assert.Equal(t, "statement", string(job.Kind))
	assert.Equal(t, inmemory.DefaultMaxRetries, job.MaxRetries)

	code, body = s.do(t, http.MethodGet, "/api/imports", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"count":1`)

	code, _ = s.do(t, http.MethodGet, "/api/imports/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, http.MethodPost, "/api/imports", `{"uri":"/tmp/may.csv"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = s.do(t, http.MethodPost, "/api/imports", `{"uri":"gs://bucket/may.csv","kind":"pdf"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHealthAndMethods(t *testing.T) {
	s := newServer(t)

	code, body := s.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"healthy","time":"2024-06-01T00:00:00Z"}`, string(body))

	code, _ = s.do(t, http.MethodDelete, "/api/transactions", "")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}
