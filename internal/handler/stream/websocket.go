package stream

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
)

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// TextMessage 文本消息
type TextMessage struct {
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// handleWebSocket 处理WebSocket连接，每条文本消息触发一轮对话
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sessionID := h.assistant.Controller().Snapshot().ID
	log.Printf("[websocket] new connection for session: %s", sessionID)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go pingLoop(ctx, conn)

	send(conn, outgoingMessage{
		Type:      "result",
		SessionID: sessionID,
		Data:      map[string]any{"type": "connected"},
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}

		h.handleMessage(ctx, conn, &msg)
		conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

func (h *Handler) handleMessage(ctx context.Context, conn *websocket.Conn, msg *inboundMessage) {
	switch msg.Type {
	case "text":
		var payload TextMessage
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			sendError(conn, "invalid text payload")
			return
		}
		h.runTurn(ctx, conn, payload.Text)
	case "ping":
		send(conn, outgoingMessage{Type: "pong"})
	default:
		sendError(conn, "unsupported message type: "+msg.Type)
	}
}

func (h *Handler) runTurn(ctx context.Context, conn *websocket.Conn, text string) {
	result, err := h.assistant.Respond(ctx, text, func(fragment string) {
		send(conn, outgoingMessage{
			Type: "result",
			Data: map[string]any{"type": "delta", "content": fragment},
		})
	})
	if err != nil {
		sendError(conn, err.Error())
		return
	}

	send(conn, outgoingMessage{
		Type:      "result",
		SessionID: result.SessionID,
		Data: map[string]any{
			"type":        "message",
			"content":     result.Reply,
			"failed":      result.Failed,
			"language":    result.Language,
			"suggestions": result.Suggestions,
		},
	})
}

// send 只在读循环所在的 goroutine 中调用
func send(conn *websocket.Conn, msg outgoingMessage) {
	msg.Timestamp = time.Now().Unix()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write %s failed: %v", msg.Type, err)
	}
}

func sendError(conn *websocket.Conn, message string) {
	send(conn, outgoingMessage{
		Type: "error",
		Data: map[string]string{"message": message},
	})
}

// pingLoop 定期发送ping消息
func pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
