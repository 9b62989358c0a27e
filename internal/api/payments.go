package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/mkralj/avtotrg/internal/model"
	"github.com/mkralj/avtotrg/internal/store"
)

// PaymentsHandler handles the checkout and payment confirmation endpoints.
// The purchase is only ever triggered from the provider webhook; a client
// reporting its own payment success is not trusted.
type PaymentsHandler struct {
	DB            *sql.DB
	WebhookSecret string
	Log           *zap.Logger
}

type webhookEvent struct {
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
}

// Checkout handles POST /api/listings/{id}/checkout. It creates a pending
// payment intent whose ID the client hands to the payment provider.
func (h *PaymentsHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	claims := GetClaims(r.Context())
	intent, err := store.CreatePaymentIntent(r.Context(), h.DB, id, claims.UserID)
	if err != nil {
		storeError(w, err)
		return
	}

	h.Log.Info("checkout started",
		zap.String("payment_id", intent.ID),
		zap.Int64("listing_id", id),
		zap.String("buyer", claims.Username),
	)
	jsonResponse(w, http.StatusCreated, intent)
}

// Webhook handles POST /api/payments/webhook. The provider signs the raw
// body with HMAC-SHA256 using the shared webhook secret; an event with a bad
// signature is rejected before anything is read from it.
func (h *PaymentsHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "unreadable body")
		return
	}
	r.Body.Close()

	if !verifySignature(body, r.Header.Get("X-Webhook-Signature"), h.WebhookSecret) {
		h.Log.Warn("webhook signature mismatch", zap.String("remote", r.RemoteAddr))
		jsonError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil || event.PaymentID == "" {
		jsonError(w, http.StatusBadRequest, "invalid event payload")
		return
	}

	switch event.Status {
	case "succeeded":
		sale, err := store.ConfirmPayment(r.Context(), h.DB, event.PaymentID)
		if err != nil {
			h.Log.Warn("payment confirmation did not complete",
				zap.String("payment_id", event.PaymentID), zap.Error(err))
			storeError(w, err)
			return
		}
		h.Log.Info("listing sold",
			zap.Int64("listing_id", sale.ListingID),
			zap.Int64("sale_id", sale.ID),
			zap.String("amount", sale.Amount.String()),
		)
		jsonResponse(w, http.StatusOK, sale)
	case "failed":
		if err := store.FailPayment(r.Context(), h.DB, event.PaymentID); err != nil {
			storeError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"message": "payment marked failed"})
	default:
		jsonError(w, http.StatusBadRequest, "unknown event status")
	}
}

// MyPurchases handles GET /api/my/purchases: the buyer's sale history.
func (h *PaymentsHandler) MyPurchases(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	sales, err := store.ListSalesForBuyer(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list purchases")
		return
	}
	if sales == nil {
		sales = []model.Sale{}
	}
	jsonResponse(w, http.StatusOK, sales)
}

// SignPayload computes the webhook signature for a payload. Exported so
// tests and provider simulators produce the same format the handler expects.
func SignPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func verifySignature(payload []byte, signature, secret string) bool {
	expected := SignPayload(payload, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
