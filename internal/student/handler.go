package student

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Handler exposes HTTP endpoints for student accounts and login.
// Students cross the boundary only as password-stripped views.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(db *sqlx.DB, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: NewService(db, nil, nil, nil, nil, nil), logger: logger}
}

// LoginRequest is the (studentID, licenseKey, password) login triple.
type LoginRequest struct {
	StudentID  string `json:"studentID"`
	LicenseKey string `json:"licenseKey"`
	Password   string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	stu, err := h.svc.Authenticate(r.Context(), req.StudentID, req.LicenseKey, req.Password)
	if err != nil {
		if errors.Is(err, ErrAuthFailed) {
			// one uniform rejection, no matter which step failed
			h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication failed"})
			return
		}
		h.logger.Warnw("login failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		return
	}
	tok, err := h.svc.IssueToken(stu)
	if err != nil {
		h.logger.Warnw("token issue failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"student": stu.Serialize(),
		"token":   tok,
	})
}

// CreateRequest request body for account creation.
type CreateRequest struct {
	StudentID string `json:"studentID"`
	Password  string `json:"password"`
	Academy   string `json:"academy"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	stu, err := h.svc.CreateStudent(r.Context(), CreateInput{
		StudentID: req.StudentID,
		Password:  req.Password,
		AcademyID: req.Academy,
		Name:      req.Name,
		Email:     req.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrAlreadyExists):
			h.writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			h.logger.Warnw("student create failed", "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "create failed"})
		}
		return
	}
	h.writeJSON(w, http.StatusCreated, stu.Serialize())
}

// ResetPasswordRequest carries the replacement plaintext.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	stu, err := h.svc.ResetPassword(r.Context(), r.PathValue("id"), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrNotFound):
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		default:
			h.logger.Warnw("password reset failed", "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "reset failed"})
		}
		return
	}
	h.writeJSON(w, http.StatusOK, stu.Serialize())
}

func (h *Handler) ChangeInfo(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	stu, err := h.svc.ChangeInfo(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidField):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrNotFound):
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		default:
			h.logger.Warnw("student update failed", "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "update failed"})
		}
		return
	}
	h.writeJSON(w, http.StatusOK, stu.Serialize())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
