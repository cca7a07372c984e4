package score

import (
	"encoding/json"
	"net/http"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Handler exposes HTTP endpoints for the score records and the derived view.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(db *sqlx.DB, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: NewService(db, nil), logger: logger}
}

// List returns the derived score view for every student.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.ScoresForAllStudents(r.Context())
	if err != nil {
		h.logger.Warnw("score aggregation failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "aggregation failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, rows)
}

// ProblemRequest request body for problem creation.
type ProblemRequest struct {
	Title string `json:"title"`
	Score int    `json:"score"`
}

func (h *Handler) CreateProblem(w http.ResponseWriter, r *http.Request) {
	var req ProblemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	p, err := h.svc.AddProblem(r.Context(), req.Title, req.Score)
	if err != nil {
		h.logger.Warnw("problem create failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "create failed"})
		return
	}
	h.writeJSON(w, http.StatusCreated, p)
}

// AnswerRequest request body for answer-log creation.
type AnswerRequest struct {
	Student string `json:"student"`
	Problem string `json:"problem"`
}

func (h *Handler) RecordAnswer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Student == "" || req.Problem == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	a, err := h.svc.RecordAnswer(r.Context(), req.Student, req.Problem)
	if err != nil {
		h.logger.Warnw("answer log failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "create failed"})
		return
	}
	h.writeJSON(w, http.StatusCreated, a)
}

// GrantRequest request body for manual score creation.
type GrantRequest struct {
	Student string `json:"student"`
	Score   int    `json:"score"`
	Reason  string `json:"reason"`
}

func (h *Handler) GrantScore(w http.ResponseWriter, r *http.Request) {
	var req GrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Student == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	m, err := h.svc.GrantScore(r.Context(), req.Student, req.Score, req.Reason)
	if err != nil {
		h.logger.Warnw("manual score failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "create failed"})
		return
	}
	h.writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
