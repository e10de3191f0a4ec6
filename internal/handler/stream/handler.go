package stream

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/shopease/backend/internal/service/assistant"
	sessionService "github.com/zhouzirui/shopease/backend/internal/service/session"
	"github.com/zhouzirui/shopease/backend/pkg/utils"
)

// Handler 通过 SSE 或 WebSocket 流式返回助手回复
type Handler struct {
	assistant *assistant.Service
	upgrader  websocket.Upgrader
}

// New creates a new stream handler
func New(svc *assistant.Service) *Handler {
	return &Handler{
		assistant: svc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册流式路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream", h.handleSSE)
	r.Get("/ws", h.handleWebSocket)
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	SessionID string `json:"sessionId,omitempty"`
	Content   string `json:"content,omitempty"`
	Error     string `json:"error,omitempty"`
}

// handleSSE runs one turn and streams it as server-sent events. Request
// errors found before the first fragment are reported as plain JSON.
func (h *Handler) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	userMessage := r.URL.Query().Get("message")
	if userMessage == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	started := false
	begin := func() {
		if started {
			return
		}
		started = true
		utils.SetupSSEHeaders(w)
		utils.SendSSEEvent(w, flusher, "start", StreamResponse{
			SessionID: h.assistant.Controller().Snapshot().ID,
		})
	}

	result, err := h.assistant.Respond(r.Context(), userMessage, func(fragment string) {
		begin()
		utils.SendSSEEvent(w, flusher, "delta", StreamResponse{Content: fragment})
	})
	if err != nil {
		if !started {
			utils.RespondError(w, turnErrorStatus(err), err.Error())
			return
		}
		log.Printf("[stream] turn failed after streaming began: %v", err)
		utils.SendSSEEvent(w, flusher, "error", StreamResponse{Error: err.Error()})
		utils.SendSSEEvent(w, flusher, "end", StreamResponse{})
		return
	}

	begin()
	utils.SendSSEEvent(w, flusher, "message", result)
	utils.SendSSEEvent(w, flusher, "suggestions", result.Suggestions)
	utils.SendSSEEvent(w, flusher, "end", StreamResponse{SessionID: result.SessionID})
}

func turnErrorStatus(err error) int {
	switch {
	case errors.Is(err, sessionService.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.Is(err, sessionService.ErrTurnInFlight):
		return http.StatusConflict
	case errors.Is(err, sessionService.ErrStaleTurn):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}
