package academy

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Handler exposes HTTP endpoints for academy administration.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(db *sqlx.DB, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: NewService(db, nil, nil), logger: logger}
}

// CreateRequest request body for the create endpoint.
type CreateRequest struct {
	AcademyName string `json:"academyName"`
	Email       string `json:"email"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	a, err := h.svc.Create(r.Context(), req.AcademyName, req.Email)
	if err != nil {
		if errors.Is(err, ErrMissingFields) {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		h.logger.Warnw("academy create failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "create failed"})
		return
	}
	h.writeJSON(w, http.StatusCreated, a)
}

// AssignLicenseRequest binds an existing license to an academy.
type AssignLicenseRequest struct {
	LicenseID string `json:"license"`
}

func (h *Handler) AssignLicense(w http.ResponseWriter, r *http.Request) {
	var req AssignLicenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LicenseID == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	a, err := h.svc.AssignLicense(r.Context(), r.PathValue("id"), req.LicenseID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		h.logger.Warnw("license assignment failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "assignment failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, a)
}

func (h *Handler) ChangeInfo(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	a, err := h.svc.ChangeInfo(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidField):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrNotFound):
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		default:
			h.logger.Warnw("academy update failed", "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "update failed"})
		}
		return
	}
	h.writeJSON(w, http.StatusOK, a)
}

// Token mints a signed academy token.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		h.logger.Warnw("academy lookup failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
		return
	}
	tok, err := h.svc.IssueToken(a)
	if err != nil {
		h.logger.Warnw("token issue failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "token failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"token": tok})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
