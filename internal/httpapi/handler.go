// Package httpapi exposes the authoring session over a small JSON API.
// Handlers are thin: decode, call into the session, map errors to
// statuses.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vnexam/examgen/internal/bank"
	"github.com/vnexam/examgen/internal/curriculum"
	"github.com/vnexam/examgen/internal/exam"
	"github.com/vnexam/examgen/internal/export"
	"github.com/vnexam/examgen/internal/generator"
	"github.com/vnexam/examgen/internal/question"
	"github.com/vnexam/examgen/internal/quota"
	"github.com/vnexam/examgen/internal/session"
)

// Handler serves the authoring API over one session.
type Handler struct {
	sess *session.Session
	pdf  *export.PDFExporter
}

// New creates the API handler.
func New(sess *session.Session, pdf *export.PDFExporter) *Handler {
	return &Handler{sess: sess, pdf: pdf}
}

// Routes registers all endpoints on a mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/status", h.handleStatus)
	mux.HandleFunc("GET /api/topics", h.handleTopics)
	mux.HandleFunc("GET /api/topics/{topic}/lessons", h.handleLessons)
	mux.HandleFunc("GET /api/topics/{topic}/lessons/{lesson}/matrix", h.handleLessonMatrix)
	mux.HandleFunc("PUT /api/topics/{topic}/lessons/{lesson}/quota", h.handleSetQuota)
	mux.HandleFunc("GET /api/topics/{topic}/lessons/{lesson}/quota", h.handleQuotaStatus)
	mux.HandleFunc("GET /api/questions", h.handleQuestions)
	mux.HandleFunc("POST /api/questions/{id}/regenerate", h.handleRegenerate)
	mux.HandleFunc("POST /api/generate", h.handleGenerate)
	mux.HandleFunc("GET /api/generate/ws", h.handleGenerateWS)
	mux.HandleFunc("GET /api/candidates", h.handleCandidates)
	mux.HandleFunc("POST /api/candidates/{id}/keep", h.handleKeep)
	mux.HandleFunc("POST /api/candidates/{id}/discard", h.handleDiscard)
	mux.HandleFunc("POST /api/candidates/{id}/refresh", h.handleRefresh)
	mux.HandleFunc("POST /api/exams", h.handleBuildExam)
	mux.HandleFunc("GET /api/exams", h.handleListExams)
	mux.HandleFunc("GET /api/exams/{id}/export", h.handleExportExam)
	mux.HandleFunc("GET /api/reports/coverage.xlsx", h.handleCoverage)
}

func (h *Handler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"bank_size": h.sess.Bank.Len(),
		"api_calls": h.sess.APICalls(),
		"exams":     len(h.sess.Exams.List()),
	})
}

func (h *Handler) handleTopics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.sess.Matrix.Topics())
}

func (h *Handler) handleLessons(w http.ResponseWriter, r *http.Request) {
	lessons := h.sess.Matrix.Lessons(r.PathValue("topic"))
	if lessons == nil {
		lessons = []curriculum.Lesson{}
	}
	writeJSON(w, http.StatusOK, lessons)
}

func (h *Handler) handleLessonMatrix(w http.ResponseWriter, r *http.Request) {
	lm := h.sess.Matrix.LessonMatrix(r.PathValue("topic"), r.PathValue("lesson"))
	writeJSON(w, http.StatusOK, lm)
}

type quotaUpdate struct {
	Level     question.Level `json:"level"`
	Questions int            `json:"questions"`
}

func (h *Handler) handleSetQuota(w http.ResponseWriter, r *http.Request) {
	var in quotaUpdate
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !in.Level.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown level %q", in.Level))
		return
	}
	h.sess.Matrix.SetPlanned(r.PathValue("topic"), r.PathValue("lesson"), in.Level, in.Questions)
	writeJSON(w, http.StatusOK, h.sess.Matrix.LessonMatrix(r.PathValue("topic"), r.PathValue("lesson")))
}

func (h *Handler) handleQuotaStatus(w http.ResponseWriter, r *http.Request) {
	topicID, lessonID := r.PathValue("topic"), r.PathValue("lesson")
	coord := h.sess.Matrix.Coordinate(topicID, lessonID)
	lm := h.sess.Matrix.LessonMatrix(topicID, lessonID)
	st := quota.LessonCoverage(lm, topicID, lessonID, h.sess.Bank.Query(coord))
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) handleQuestions(w http.ResponseWriter, r *http.Request) {
	topicID := r.URL.Query().Get("topic")
	lessonID := r.URL.Query().Get("lesson")
	if topicID == "" || lessonID == "" {
		writeError(w, http.StatusBadRequest, "topic and lesson query parameters are required")
		return
	}
	coord := h.sess.Matrix.Coordinate(topicID, lessonID)
	qs := h.sess.Bank.Query(coord)
	if qs == nil {
		qs = []question.Question{}
	}
	writeJSON(w, http.StatusOK, qs)
}

func (h *Handler) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	q, err := h.sess.Regenerate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

type generateRequest struct {
	TopicID    string         `json:"topic_id"`
	LessonID   string         `json:"lesson_id"`
	Type       question.Type  `json:"type"`
	Level      question.Level `json:"level"`
	Count      int            `json:"count"`
	UseService bool           `json:"use_service"`
}

func (in *generateRequest) validate() error {
	if in.TopicID == "" || in.LessonID == "" {
		return errors.New("topic_id and lesson_id are required")
	}
	if !in.Type.Valid() {
		return fmt.Errorf("unknown question type %q", in.Type)
	}
	if !in.Level.Valid() {
		return fmt.Errorf("unknown level %q", in.Level)
	}
	if in.Count < 1 || in.Count > 5 {
		return errors.New("count must be between 1 and 5")
	}
	return nil
}

type generateResponse struct {
	Candidates []question.Question   `json:"candidates"`
	Rejections []generator.Rejection `json:"rejections"`
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var in generateRequest
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := in.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	candidates, rejections, err := h.sess.Generate(
		r.Context(), in.TopicID, in.LessonID, in.Type, in.Level, in.Count, in.UseService, nil)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if candidates == nil {
		candidates = []question.Question{}
	}
	if rejections == nil {
		rejections = []generator.Rejection{}
	}
	writeJSON(w, http.StatusOK, generateResponse{Candidates: candidates, Rejections: rejections})
}

func (h *Handler) handleCandidates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.sess.Pending())
}

func (h *Handler) handleKeep(w http.ResponseWriter, r *http.Request) {
	q, err := h.sess.Keep(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (h *Handler) handleDiscard(w http.ResponseWriter, r *http.Request) {
	if err := h.sess.Discard(r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	q, err := h.sess.Refresh(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

type buildExamRequest struct {
	ExamID      string      `json:"exam_id"`
	TopicID     string      `json:"topic_id"`
	LessonID    string      `json:"lesson_id"`
	QuestionIDs []string    `json:"question_ids"`
	Header      exam.Header `json:"header"`
}

func (h *Handler) handleBuildExam(w http.ResponseWriter, r *http.Request) {
	var in buildExamRequest
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	coord := h.sess.Matrix.Coordinate(in.TopicID, in.LessonID)
	id := in.ExamID
	if id == "" {
		id = generator.NewExamID(coord)
	}

	ex, err := h.sess.Exams.Build(id, coord, in.QuestionIDs, in.Header)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ex)
}

func (h *Handler) handleListExams(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.sess.Exams.List())
}

func (h *Handler) handleExportExam(w http.ResponseWriter, r *http.Request) {
	mode := export.Mode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = export.ModeStudent
	}
	if !mode.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown export mode %q", mode))
		return
	}

	ex, err := h.sess.Exams.Get(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	qs, err := h.sess.Exams.Resolve(ex)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	blob, err := h.pdf.Exam(ex.Header, qs, mode)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%s-%s.pdf", ex.ID, mode)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob)
}

func (h *Handler) handleCoverage(w http.ResponseWriter, _ *http.Request) {
	blob, err := export.CoverageXLSX(h.sess.Matrix, h.sess.Bank)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="coverage.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob)
}

func decode(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps domain errors onto HTTP statuses per the error
// taxonomy: configuration rejections block with 422, unresolved
// references and duplicates conflict with 409, missing things 404.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, generator.ErrTypeNotAllowed):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, exam.ErrUnresolvedReference), errors.Is(err, bank.ErrDuplicateID):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, exam.ErrNoQuestions):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, bank.ErrNotFound),
		errors.Is(err, exam.ErrNotFound),
		errors.Is(err, session.ErrNoPendingCandidate):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
