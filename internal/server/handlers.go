package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/spigell/mock-interviewer/internal/bank"
	"github.com/spigell/mock-interviewer/internal/interview"
	"go.uber.org/zap"
)

type handler struct {
	svc    *interview.Service
	logger *zap.Logger
}

// QuestionResponse is returned by the current-question endpoint.
type QuestionResponse struct {
	SessionID string         `json:"session_id"`
	Question  *bank.Question `json:"question"`
}

// NewHandler returns the API routes wrapped in request logging.
func NewHandler(svc *interview.Service, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handler{svc: svc, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.HandleFunc("GET /api/v1/questions", h.handleQuestions)
	mux.HandleFunc("POST /api/v1/sessions", h.handleStart)
	mux.HandleFunc("GET /api/v1/sessions/{id}", h.handleGet)
	mux.HandleFunc("GET /api/v1/sessions/{id}/question", h.handleCurrentQuestion)
	mux.HandleFunc("POST /api/v1/sessions/{id}/answers", h.handleSubmit)
	mux.HandleFunc("POST /api/v1/sessions/{id}/pause", h.handlePause)
	mux.HandleFunc("POST /api/v1/sessions/{id}/resume", h.handleResume)
	mux.HandleFunc("GET /api/v1/sessions/{id}/report", h.handleReport)
	mux.HandleFunc("GET /api/v1/history", h.handleHistory)
	mux.HandleFunc("GET /api/v1/analytics", h.handleAnalytics)

	return withRequestLogging(mux, logger)
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleQuestions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Questions())
}

func (h *handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req interview.StartRequest
	if !readJSON(w, r, &req) {
		return
	}
	session, err := h.svc.Start(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *handler) handleGet(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.Get(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *handler) handleCurrentQuestion(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	q, err := h.svc.CurrentQuestion(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if q == nil {
		h.writeError(w, r, interview.ErrSessionComplete)
		return
	}
	writeJSON(w, http.StatusOK, QuestionResponse{SessionID: id, Question: q})
}

func (h *handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req interview.SubmitRequest
	if !readJSON(w, r, &req) {
		return
	}
	result, err := h.svc.Submit(r.Context(), r.PathValue("id"), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) handlePause(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.Pause(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *handler) handleResume(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.Resume(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *handler) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Report(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeErrorMessage(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	records, err := h.svc.History(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.svc.Analytics(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, interview.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, interview.ErrUnknownQuestion):
		return http.StatusBadRequest
	case errors.Is(err, interview.ErrQuestionMismatch),
		errors.Is(err, interview.ErrSessionComplete),
		errors.Is(err, interview.ErrSessionPaused),
		errors.Is(err, interview.ErrSessionNotPaused),
		errors.Is(err, interview.ErrSessionNotComplete):
		return http.StatusConflict
	case errors.Is(err, interview.ErrArchiveDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestID(r.Context())),
			zap.Error(err),
		)
	}
	writeErrorMessage(w, status, err.Error())
}
