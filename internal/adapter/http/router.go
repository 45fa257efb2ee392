package http

import (
	"fund-ledger/internal/adapter/middleware"
	"fund-ledger/internal/domain/actor"

	"github.com/labstack/echo/v4"
)

type Router struct {
	Health      *Handler
	Wallets     *WalletHandler
	Investments *InvestmentHandler
	Withdrawals *WithdrawalHandler
	Admin       *AdminHandler
	// Idempotency wraps every mutating route. Nil when Redis is not configured.
	Idempotency echo.MiddlewareFunc
}

func (r Router) Register(e *echo.Echo) {
	anyone := middleware.RequireRole()
	admin := middleware.RequireRole(actor.RoleFundAdmin)
	investor := middleware.RequireRole(actor.RoleInvestor)

	mutating := func(gate echo.MiddlewareFunc) []echo.MiddlewareFunc {
		if r.Idempotency == nil {
			return []echo.MiddlewareFunc{gate}
		}
		return []echo.MiddlewareFunc{gate, r.Idempotency}
	}

	e.GET("/health", r.Health.Health)

	e.GET("/wallets/:investor_id", r.Wallets.GetWallet, anyone)
	e.POST("/wallets/:investor_id/deposits", r.Wallets.Deposit, mutating(admin)...)
	e.GET("/wallets/:investor_id/allocations", r.Wallets.ListAllocations, anyone)
	e.GET("/wallets/:investor_id/transactions", r.Wallets.ListTransactions, anyone)
	e.GET("/wallets/:investor_id/investments", r.Wallets.ListInvestments, anyone)
	e.GET("/wallets/:investor_id/withdrawals", r.Wallets.ListWithdrawals, anyone)

	e.POST("/investments", r.Investments.Submit, mutating(investor)...)
	e.GET("/investments/:request_id", r.Investments.Get, anyone)
	e.POST("/investments/:request_id/execute", r.Investments.Execute, mutating(admin)...)
	e.POST("/investments/:request_id/reject", r.Investments.Reject, mutating(admin)...)

	e.POST("/withdrawals", r.Withdrawals.Create, mutating(investor)...)
	e.GET("/withdrawals/:request_id", r.Withdrawals.Get, anyone)
	e.POST("/withdrawals/:request_id/approve", r.Withdrawals.Approve, mutating(admin)...)
	e.POST("/withdrawals/:request_id/reject", r.Withdrawals.Reject, mutating(admin)...)
	e.POST("/withdrawals/:request_id/process", r.Withdrawals.Process, mutating(admin)...)

	e.GET("/admin/withdrawals/pending", r.Withdrawals.ListPending, admin)
	e.GET("/admin/wallets/:investor_id/reconcile", r.Admin.Reconcile, admin)
}
