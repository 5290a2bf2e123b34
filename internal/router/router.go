package router

import (
	"net/http"

	"github.com/fuelport/backend/internal/auth"
	"github.com/fuelport/backend/internal/backfill"
	"github.com/fuelport/backend/internal/dashboard"
	"github.com/fuelport/backend/internal/party"
	"github.com/fuelport/backend/internal/receipt"
	"github.com/fuelport/backend/internal/transfer"
	"github.com/fuelport/backend/internal/wallet"
)

// Middleware is an http.Handler wrapper, the shape the middleware
// package produces.
type Middleware func(http.Handler) http.Handler

// Handlers collects everything the route table needs.
type Handlers struct {
	Auth     *auth.Handler
	Party    *party.Handler
	Wallet   *wallet.Handler
	Transfer *transfer.Handler
	Receipt  *receipt.Handler
	Backfill *backfill.Handler
	Dash     *dashboard.Handler

	AdminAuth   Middleware
	PayoutGuard Middleware
}

// New returns the API handler rooted at /api/v1. Everything except
// register/login sits behind AdminAuth; transfer creation additionally
// passes through PayoutGuard.
func New(h Handlers) http.Handler {
	mux := http.NewServeMux()
	base := "/api/v1"

	mux.HandleFunc("POST "+base+"/auth/register", h.Auth.Register)
	mux.HandleFunc("POST "+base+"/auth/login", h.Auth.Login)

	authed := func(fn http.HandlerFunc) http.Handler {
		return h.AdminAuth(fn)
	}

	mux.Handle("GET "+base+"/parties", authed(h.Party.List))
	mux.Handle("POST "+base+"/parties", authed(h.Party.Create))
	mux.Handle("GET "+base+"/parties/{id}", authed(h.Party.Get))
	mux.Handle("GET "+base+"/parties/{id}/balance", authed(h.Wallet.GetBalance))
	mux.Handle("GET "+base+"/parties/{id}/balance-change", authed(h.Wallet.GetBalanceChange))

	mux.Handle("POST "+base+"/transfers", h.AdminAuth(h.PayoutGuard(http.HandlerFunc(h.Transfer.Create))))
	mux.Handle("GET "+base+"/transfers", authed(h.Transfer.List))
	mux.Handle("GET "+base+"/transfers/{id}", authed(h.Transfer.Get))
	mux.Handle("POST "+base+"/transfers/{id}/approve", authed(h.Transfer.Approve))
	mux.Handle("POST "+base+"/transfers/{id}/reject", authed(h.Transfer.Reject))
	mux.Handle("POST "+base+"/transfers/{id}/settle", authed(h.Transfer.Settle))
	mux.Handle("POST "+base+"/transfers/{id}/approve-settle", authed(h.Transfer.ApproveAndSettle))
	mux.Handle("POST "+base+"/transfers/{id}/receipt", authed(h.Receipt.Attach))

	mux.Handle("POST "+base+"/backfill", authed(h.Backfill.Trigger))

	mux.Handle("GET "+base+"/dashboard/wallet", authed(h.Dash.MainWallet))
	mux.Handle("GET "+base+"/dashboard/requests", authed(h.Dash.WalletRequests))

	return mux
}
