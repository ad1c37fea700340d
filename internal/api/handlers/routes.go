package handlers

import (
	"net/http"
	"time"

	"github.com/dvloznov/statement-ledger/internal/api/middleware"
)

// Router groups the handlers served by the API.
type Router struct {
	Transactions   *TransactionsHandler
	Categories     *CategoriesHandler
	Patterns       *PatternsHandler
	Reimbursements *ReimbursementsHandler
	Imports        *ImportsHandler
	Now            func() time.Time
}

// Mux registers every route on a new ServeMux.
func (rt Router) Mux() *http.ServeMux {
	now := rt.Now
	if now == nil {
		now = time.Now
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/transactions", rt.Transactions.ListTransactions)
	mux.HandleFunc("GET /api/categories", rt.Categories.ListCategories)
	mux.HandleFunc("GET /api/merchant-patterns", rt.Patterns.ListPatterns)
	mux.HandleFunc("POST /api/merchant-patterns/learn", rt.Patterns.LearnPattern)
	mux.HandleFunc("GET /api/reimbursements", rt.Reimbursements.ListReimbursements)
	mux.HandleFunc("POST /api/imports", rt.Imports.CreateImport)
	mux.HandleFunc("GET /api/imports", rt.Imports.ListImports)
	mux.HandleFunc("GET /api/imports/{id}", rt.Imports.GetImport)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   now().Format(time.RFC3339),
		})
	})
	return mux
}
