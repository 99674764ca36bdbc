package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"quizshare/internal/app"
	"quizshare/internal/domain"
	"quizshare/internal/export"
	"quizshare/internal/share"
)

// QuizHandler exposes the quiz use cases over REST.
type QuizHandler struct {
	service  *app.QuizService
	renderer share.Renderer
	qrSize   int
	logger   *zap.Logger
}

func NewQuizHandler(service *app.QuizService, renderer share.Renderer, qrSize int, logger *zap.Logger) *QuizHandler {
	if qrSize <= 0 {
		qrSize = 256
	}
	return &QuizHandler{
		service:  service,
		renderer: renderer,
		qrSize:   qrSize,
		logger:   logger,
	}
}

type createQuizRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Questions   []domain.Question `json:"questions"`
}

type submitResultRequest struct {
	UserName    string `json:"userName"`
	Answers     []int  `json:"answers"`
	TimeElapsed int    `json:"timeElapsed"`
}

type startAttemptRequest struct {
	UserName string `json:"userName"`
}

type submitAttemptRequest struct {
	Answers []int `json:"answers"`
}

type shareResponse struct {
	URL    string `json:"url"`
	QRCode string `json:"qrCode"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *QuizHandler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req createQuizRequest
	if !h.decode(w, r, &req) {
		return
	}
	quiz, err := h.service.CreateQuiz(r.Context(), app.CreateQuizInput{
		Title:       req.Title,
		Description: req.Description,
		Questions:   req.Questions,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, quiz)
}

func (h *QuizHandler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.ListQuizzes(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summaries)
}

// GetQuiz returns the quiz for taking, with the correct answers hidden.
func (h *QuizHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	h.servePublicQuiz(w, r, chi.URLParam(r, "id"))
}

// OpenSharedQuiz resolves a share link (/?quiz=<id>).
func (h *QuizHandler) OpenSharedQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, err := share.QuizIDFromQuery(r.URL.Query())
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	h.servePublicQuiz(w, r, quizID)
}

func (h *QuizHandler) servePublicQuiz(w http.ResponseWriter, r *http.Request, quizID string) {
	quiz, err := h.service.GetQuiz(r.Context(), quizID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, domain.PublicQuiz(quiz))
}

func (h *QuizHandler) Share(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "id")
	link, err := h.service.ShareLink(r.Context(), quizID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, shareResponse{
		URL:    link,
		QRCode: "/api/quizzes/" + quizID + "/qr.png",
	})
}

func (h *QuizHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "id")
	link, err := h.service.ShareLink(r.Context(), quizID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	img, err := h.renderer.Render(link, h.qrSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", share.Filename(quizID)))
	w.Write(img)
}

func (h *QuizHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	var req submitResultRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.service.SubmitResult(r.Context(), app.SubmitResultInput{
		QuizID:      chi.URLParam(r, "id"),
		UserName:    req.UserName,
		Answers:     req.Answers,
		TimeElapsed: req.TimeElapsed,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, result)
}

func (h *QuizHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	lb, err := h.service.Leaderboard(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, lb)
}

func (h *QuizHandler) ExportResults(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "id")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "format must be csv or xlsx"})
		return
	}

	lb, err := h.service.Leaderboard(r.Context(), quizID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var (
		buf         bytes.Buffer
		contentType string
	)
	switch format {
	case "xlsx":
		err = export.WriteXLSX(&buf, lb)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		err = export.WriteCSV(&buf, lb)
		contentType = "text/csv; charset=utf-8"
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "quiz-"+quizID+"-results."+format))
	w.Write(buf.Bytes())
}

func (h *QuizHandler) StartAttempt(w http.ResponseWriter, r *http.Request) {
	var req startAttemptRequest
	if !h.decode(w, r, &req) {
		return
	}
	attempt, err := h.service.StartAttempt(r.Context(), chi.URLParam(r, "id"), req.UserName)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, attempt)
}

func (h *QuizHandler) AttemptStatus(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.service.AttemptStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, attempt)
}

func (h *QuizHandler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	var req submitAttemptRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.service.SubmitAttempt(r.Context(), chi.URLParam(r, "id"), req.Answers)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, result)
}

func (h *QuizHandler) AbandonAttempt(w http.ResponseWriter, r *http.Request) {
	if err := h.service.AbandonAttempt(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *QuizHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// writeError maps domain errors to status codes. Anything unrecognised is a
// storage failure and is logged, not echoed.
func (h *QuizHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case domain.IsValidation(err):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrAttemptNotFound):
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrAlreadyExists):
		h.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (h *QuizHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("encode response failed", zap.Error(err))
	}
}
