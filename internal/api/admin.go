package api

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mkralj/avtotrg/internal/model"
	"github.com/mkralj/avtotrg/internal/store"
)

// AdminHandler handles the review queue, the commission ledger, and user
// management. Every route here sits behind the admin role.
type AdminHandler struct {
	DB  *sql.DB
	Log *zap.Logger
}

type decisionRequest struct {
	Decision string `json:"decision"`
	Note     string `json:"note"`
}

// Review handles GET /api/admin/review: listings awaiting a first decision.
func (h *AdminHandler) Review(w http.ResponseWriter, r *http.Request) {
	listings, err := store.ListUnreviewed(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list review queue")
		return
	}
	if listings == nil {
		listings = []model.Listing{}
	}
	jsonResponse(w, http.StatusOK, listings)
}

// Decide handles POST /api/listings/{id}/decision.
func (h *AdminHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	var req decisionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	decision, err := store.RecordDecision(r.Context(), h.DB, id, claims.UserID, req.Decision, req.Note)
	if err != nil {
		storeError(w, err)
		return
	}

	h.Log.Info("listing reviewed",
		zap.Int64("listing_id", id),
		zap.String("decision", decision.Decision),
		zap.String("admin", claims.Username),
	)
	jsonResponse(w, http.StatusCreated, decision)
}

// Decisions handles GET /api/listings/{id}/decisions: the audit trail.
func (h *AdminHandler) Decisions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	decisions, err := store.ListDecisions(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list decisions")
		return
	}
	if decisions == nil {
		decisions = []model.ApprovalDecision{}
	}
	jsonResponse(w, http.StatusOK, decisions)
}

// Commissions handles GET /api/admin/commissions.
func (h *AdminHandler) Commissions(w http.ResponseWriter, r *http.Request) {
	commissions, err := store.ListCommissions(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list commissions")
		return
	}
	if commissions == nil {
		commissions = []model.Commission{}
	}
	jsonResponse(w, http.StatusOK, commissions)
}

// CommissionTotal handles GET /api/admin/commissions/total with optional
// from/to date bounds (RFC 3339).
func (h *AdminHandler) CommissionTotal(w http.ResponseWriter, r *http.Request) {
	var from, to *time.Time

	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid 'from' timestamp")
			return
		}
		from = &t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid 'to' timestamp")
			return
		}
		to = &t
	}

	total, err := store.TotalCommission(r.Context(), h.DB, from, to)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to total commissions")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"total": total.StringFixed(2)})
}

// Users handles GET /api/users.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// DeleteUser handles DELETE /api/users/{id}.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	claims := GetClaims(r.Context())
	if claims.UserID == id {
		jsonError(w, http.StatusBadRequest, "cannot delete own account")
		return
	}

	if err := store.DeleteUser(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
