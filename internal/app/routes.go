package app

import (
	"github.com/gorilla/mux"
	"github.com/painel-financeiro/painel/pkg/auth"
)

const recordId = "{id:[0-9]+}"

// RegisterRoutes registers all API endpoints. Everything but the auth endpoints needs
// a session.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(auth.SessionMiddleware(deps.AuthService, deps.Cookie))

	// Auth
	api.HandleFunc("/auth/login", deps.AuthHandler.Login).Methods("POST")
	api.HandleFunc("/auth/logout", deps.AuthHandler.Logout).Methods("POST")
	api.HandleFunc("/auth/session", deps.AuthHandler.CurrentSession).Methods("GET")

	s := api.NewRoute().Subrouter()
	s.Use(auth.RequireSession)

	// Entry drafts
	kind := "/{kind:despesas|dividas}"
	s.HandleFunc(kind+"/drafts", deps.EntryHandler.OpenDraft).Methods("POST")
	s.HandleFunc(kind+"/"+recordId+"/drafts", deps.EntryHandler.OpenDraft).Methods("POST")
	s.HandleFunc(kind+"/drafts/{draftId}", deps.EntryHandler.GetDraft).Methods("GET")
	s.HandleFunc(kind+"/drafts/{draftId}", deps.EntryHandler.ChangeDraft).Methods("PATCH")
	s.HandleFunc(kind+"/drafts/{draftId}", deps.EntryHandler.CancelDraft).Methods("DELETE")
	s.HandleFunc(kind+"/drafts/{draftId}/submit", deps.EntryHandler.SubmitDraft).Methods("POST")

	// Expenses
	s.HandleFunc("/despesas", deps.ExpenseHandler.List).Methods("GET")
	s.HandleFunc("/despesas/export", deps.ExpenseHandler.Export).Methods("GET")
	s.HandleFunc("/despesas/"+recordId, deps.ExpenseHandler.Get).Methods("GET")
	s.HandleFunc("/despesas/"+recordId, deps.ExpenseHandler.Delete).Methods("DELETE")

	// Debts
	s.HandleFunc("/dividas", deps.DebtHandler.List).Methods("GET")
	s.HandleFunc("/dividas/export", deps.DebtHandler.Export).Methods("GET")
	s.HandleFunc("/dividas/"+recordId, deps.DebtHandler.Get).Methods("GET")
	s.HandleFunc("/dividas/"+recordId, deps.DebtHandler.Delete).Methods("DELETE")

	// Cards
	s.HandleFunc("/cartoes", deps.CardHandler.List).Methods("GET")
	s.HandleFunc("/cartoes", deps.CardHandler.Create).Methods("POST")
	s.HandleFunc("/cartoes/"+recordId, deps.CardHandler.Get).Methods("GET")
	s.HandleFunc("/cartoes/"+recordId, deps.CardHandler.Update).Methods("PATCH", "PUT")
	s.HandleFunc("/cartoes/"+recordId, deps.CardHandler.Delete).Methods("DELETE")

	// Banks
	s.HandleFunc("/banco", deps.BankHandler.List).Methods("GET")
	s.HandleFunc("/banco", deps.BankHandler.Create).Methods("POST")
	s.HandleFunc("/banco/"+recordId, deps.BankHandler.Get).Methods("GET")
	s.HandleFunc("/banco/"+recordId, deps.BankHandler.Update).Methods("PATCH", "PUT")
	s.HandleFunc("/banco/"+recordId, deps.BankHandler.Delete).Methods("DELETE")

	// Suppliers
	s.HandleFunc("/fornecedor", deps.SupplierHandler.List).Methods("GET")
	s.HandleFunc("/fornecedor", deps.SupplierHandler.Create).Methods("POST")
	s.HandleFunc("/fornecedor/"+recordId, deps.SupplierHandler.Get).Methods("GET")
	s.HandleFunc("/fornecedor/"+recordId, deps.SupplierHandler.Update).Methods("PUT", "PATCH")
	s.HandleFunc("/fornecedor/"+recordId, deps.SupplierHandler.Delete).Methods("DELETE")

	// Sub-categories
	s.HandleFunc("/sub-categoria", deps.SubCategoryHandler.List).Methods("GET")
	s.HandleFunc("/sub-categoria", deps.SubCategoryHandler.Create).Methods("POST")
	s.HandleFunc("/sub-categoria/"+recordId, deps.SubCategoryHandler.Get).Methods("GET")
	s.HandleFunc("/sub-categoria/"+recordId, deps.SubCategoryHandler.Update).Methods("PATCH", "PUT")
	s.HandleFunc("/sub-categoria/"+recordId, deps.SubCategoryHandler.Delete).Methods("DELETE")

	// Form options
	s.HandleFunc("/lookups", deps.LookupHandler.Get).Methods("GET")
}
