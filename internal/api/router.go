package api

import (
	"database/sql"
	"net/http"

	"go.uber.org/zap"

	"github.com/mkralj/avtotrg/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret, webhookSecret string, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret, Log: log}
	listingsHandler := &ListingsHandler{DB: db, Log: log}
	paymentsHandler := &PaymentsHandler{DB: db, WebhookSecret: webhookSecret, Log: log}
	adminHandler := &AdminHandler{DB: db, Log: log}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireSeller := RequireRole(model.RoleSeller, model.RoleAdmin)
	requireBuyer := RequireRole(model.RoleBuyer)

	// Public: account creation, login, and the provider webhook (which
	// carries its own signature check instead of a bearer token).
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/payments/webhook", paymentsHandler.Webhook)

	// Session.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Listings: browsing for everyone signed in, writes for sellers.
	mux.Handle("GET /api/listings", authMW(http.HandlerFunc(listingsHandler.List)))
	mux.Handle("POST /api/listings", authMW(requireSeller(http.HandlerFunc(listingsHandler.Create))))
	mux.Handle("GET /api/listings/{id}", authMW(http.HandlerFunc(listingsHandler.Get)))
	mux.Handle("PUT /api/listings/{id}", authMW(requireSeller(http.HandlerFunc(listingsHandler.Update))))
	mux.Handle("DELETE /api/listings/{id}", authMW(requireSeller(http.HandlerFunc(listingsHandler.Delete))))
	mux.Handle("GET /api/listings/{id}/images/{imageID}", authMW(http.HandlerFunc(listingsHandler.GetImage)))
	mux.Handle("GET /api/my/listings", authMW(requireSeller(http.HandlerFunc(listingsHandler.Mine))))

	// Purchasing (buyers only; the webhook above completes the purchase).
	mux.Handle("POST /api/listings/{id}/checkout", authMW(requireBuyer(http.HandlerFunc(paymentsHandler.Checkout))))
	mux.Handle("GET /api/my/purchases", authMW(requireBuyer(http.HandlerFunc(paymentsHandler.MyPurchases))))

	// Admin: review queue, audit trail, commission ledger, users.
	mux.Handle("GET /api/admin/review", authMW(requireAdmin(http.HandlerFunc(adminHandler.Review))))
	mux.Handle("POST /api/listings/{id}/decision", authMW(requireAdmin(http.HandlerFunc(adminHandler.Decide))))
	mux.Handle("GET /api/listings/{id}/decisions", authMW(requireAdmin(http.HandlerFunc(adminHandler.Decisions))))
	mux.Handle("GET /api/admin/commissions", authMW(requireAdmin(http.HandlerFunc(adminHandler.Commissions))))
	mux.Handle("GET /api/admin/commissions/total", authMW(requireAdmin(http.HandlerFunc(adminHandler.CommissionTotal))))
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(adminHandler.Users))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(adminHandler.DeleteUser))))

	return mux
}
