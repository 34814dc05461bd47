package app

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/painel-financeiro/painel/internal/config"
	"github.com/painel-financeiro/painel/internal/event_bus"
	"github.com/painel-financeiro/painel/internal/utils"
	"github.com/painel-financeiro/painel/pkg/auth"
	"github.com/painel-financeiro/painel/pkg/catalog"
	"github.com/painel-financeiro/painel/pkg/debt"
	"github.com/painel-financeiro/painel/pkg/entry"
	"github.com/painel-financeiro/painel/pkg/expense"
	"github.com/painel-financeiro/painel/pkg/lookup"
	"github.com/painel-financeiro/painel/pkg/upstream"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus

	TokenStore   auth.TokenStore
	PgTokenStore *auth.PgTokenStore
	Cookie       auth.CookieConfig
	AuthService  *auth.ServiceImpl
	AuthHandler  *auth.Handler

	// Upstream authenticates as the session in the request context.
	Upstream *upstream.Client

	Drafts       *entry.Sessions
	EntryService *entry.ServiceImpl
	EntryHandler *entry.Handler

	ExpenseService *expense.ServiceImpl
	ExpenseHandler *expense.Handler
	DebtService    *debt.ServiceImpl
	DebtHandler    *debt.Handler

	CardHandler        *catalog.CardHandler
	BankHandler        *catalog.BankHandler
	SupplierHandler    *catalog.RecordsHandler[catalog.Fornecedor]
	SubCategoryHandler *catalog.RecordsHandler[catalog.SubCategoria]

	LookupHandler *lookup.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
// db is nil when sessions are kept in memory.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()

	if db != nil {
		deps.PgTokenStore = auth.NewPgTokenStore(db, deps.Clock)
		deps.TokenStore = deps.PgTokenStore
	} else {
		deps.TokenStore = auth.NewMemoryTokenStore(deps.Clock)
	}
	deps.Cookie = auth.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure}
	login := upstream.NewClient(cfg.Upstream.BaseURL, upstream.Anonymous{Client: &http.Client{Timeout: cfg.Upstream.Timeout}})
	deps.AuthService = auth.NewService(deps.TokenStore, login, deps.Clock, cfg.Session.TTL)
	deps.AuthHandler = auth.NewHandler(deps.AuthService, deps.Cookie)

	deps.Upstream = upstream.NewClient(cfg.Upstream.BaseURL, auth.NewBearerClients(deps.TokenStore, nil, cfg.Upstream.Timeout))

	expenses := expense.NewRepository(deps.Upstream)
	debts := debt.NewRepository(deps.Upstream)

	deps.Drafts = entry.NewSessions(cfg.Drafts.MaxOpen, cfg.Drafts.IdleTTL, deps.Clock)
	deps.EntryService = entry.NewService(deps.Drafts, deps.EventBus, deps.Clock,
		expense.NewVariant(cfg.Forms, expenses),
		debt.NewVariant(cfg.Forms, debts),
	)
	deps.EntryHandler = entry.NewHandler(deps.EntryService)

	deps.ExpenseService = expense.NewService(expenses, deps.EventBus)
	deps.ExpenseHandler = expense.NewHandler(deps.ExpenseService, deps.Clock)
	deps.DebtService = debt.NewService(debts, deps.EventBus)
	deps.DebtHandler = debt.NewHandler(deps.DebtService, deps.Clock)

	cards := catalog.NewCards(deps.Upstream)
	banks := catalog.NewBanks(deps.Upstream)
	suppliers := catalog.NewSuppliers(deps.Upstream)
	subCategories := catalog.NewSubCategories(deps.Upstream)
	deps.CardHandler = catalog.NewCardHandler(cards)
	deps.BankHandler = catalog.NewBankHandler(banks)
	deps.SupplierHandler = catalog.NewRecordsHandler(suppliers)
	deps.SubCategoryHandler = catalog.NewRecordsHandler(subCategories)

	deps.LookupHandler = lookup.NewHandler(lookup.NewService(cards, banks, suppliers, subCategories))

	return deps
}
