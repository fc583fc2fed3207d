package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vnexam/examgen/internal/generator"
	"github.com/vnexam/examgen/internal/question"
)

// wsEvent is one frame on the generation stream. Progress frames carry
// per-slot updates; the final frame carries the full result.
type wsEvent struct {
	Event      string              `json:"event"` // "progress", "result" or "error"
	Progress   *generator.Progress `json:"progress,omitempty"`
	Result     *generateResponse   `json:"result,omitempty"`
	Error      string              `json:"error,omitempty"`
	StatusCode int                 `json:"status_code,omitempty"`
}

// handleGenerateWS runs a batch like POST /api/generate but streams a
// progress frame per slot before the final result, so a client can show
// work as it happens instead of waiting on a slow upstream call.
func (h *Handler) handleGenerateWS(w http.ResponseWriter, r *http.Request) {
	in := generateRequest{
		TopicID:    r.URL.Query().Get("topic_id"),
		LessonID:   r.URL.Query().Get("lesson_id"),
		Type:       question.Type(r.URL.Query().Get("type")),
		Level:      question.Level(r.URL.Query().Get("level")),
		UseService: r.URL.Query().Get("use_service") == "true",
	}
	in.Count, _ = strconv.Atoi(r.URL.Query().Get("count"))
	if err := in.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	send := func(ev wsEvent) bool {
		if err := wsjson.Write(ctx, conn, ev); err != nil {
			slog.Warn("websocket write failed", "error", err)
			return false
		}
		return true
	}

	candidates, rejections, err := h.sess.Generate(
		ctx, in.TopicID, in.LessonID, in.Type, in.Level, in.Count, in.UseService,
		func(p generator.Progress) {
			send(wsEvent{Event: "progress", Progress: &p})
		})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, generator.ErrTypeNotAllowed) {
			status = http.StatusUnprocessableEntity
		}
		send(wsEvent{Event: "error", Error: err.Error(), StatusCode: status})
		conn.Close(websocket.StatusNormalClosure, "done")
		return
	}

	if candidates == nil {
		candidates = []question.Question{}
	}
	if rejections == nil {
		rejections = []generator.Rejection{}
	}
	if send(wsEvent{Event: "result", Result: &generateResponse{Candidates: candidates, Rejections: rejections}}) {
		conn.Close(websocket.StatusNormalClosure, "done")
	}
}
