package license

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Handler exposes HTTP endpoints for license administration.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(db *sqlx.DB, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: NewService(db, nil), logger: logger}
}

// CreateRequest request body for the create endpoint.
type CreateRequest struct {
	LicenseKey string    `json:"licenseKey"`
	Nickname   string    `json:"nickname"`
	ExpireTime time.Time `json:"expireTime"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	l, err := h.svc.Create(r.Context(), req.LicenseKey, req.Nickname, req.ExpireTime)
	if err != nil {
		if errors.Is(err, ErrMissingFields) {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		h.logger.Warnw("license create failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "create failed"})
		return
	}
	h.writeJSON(w, http.StatusCreated, l)
}

func (h *Handler) GetByKey(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	l, err := h.svc.FindByKey(r.Context(), key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		h.logger.Warnw("license lookup failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, l)
}

// Touch stamps last_used_time for the license resolved by key.
func (h *Handler) Touch(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	l, err := h.svc.FindByKey(r.Context(), key)
	if err == nil {
		l, err = h.svc.TouchUsage(r.Context(), l.ID)
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		h.logger.Warnw("license touch failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "touch failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, l)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
