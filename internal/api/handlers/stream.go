package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to receive the request message
	requestWait = 30 * time.Second

	// progressSteps upper bound of progress messages per run
	progressSteps = 100
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StreamMessage server → client websocket message
type StreamMessage struct {
	Type      string      `json:"type"` // progress | result | error
	Completed int         `json:"completed,omitempty"`
	Total     int         `json:"total,omitempty"`
	Result    interface{} `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
	Status    int         `json:"status,omitempty"`
}

// Stream runs one simulation over a websocket, streaming progress
// GET /ws/simulations
func (h *SimulationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxBodyBytes)
	conn.SetReadDeadline(time.Now().Add(requestWait))

	_, data, err := conn.ReadMessage()
	if err != nil {
		h.logger.WithError(err).Debug("WebSocket closed before request")
		return
	}
	conn.SetReadDeadline(time.Time{})

	var mu sync.Mutex
	send := func(msg StreamMessage) error {
		mu.Lock()
		defer mu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(msg)
	}

	req, status, msg := h.decode(data)
	if status != 0 {
		send(StreamMessage{Type: "error", Error: msg, Status: status})
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// 클라이언트 종료 감지 → 시뮬레이션 취소
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	req.Progress = func(completed, total int) {
		step := total / progressSteps
		if step < 1 {
			step = 1
		}
		if completed%step != 0 && completed != total {
			return
		}
		if err := send(StreamMessage{Type: "progress", Completed: completed, Total: total}); err != nil {
			cancel()
		}
	}

	rec, err := h.advisor.Recommend(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			h.logger.Debug("WebSocket simulation cancelled")
			return
		}
		status := errorStatus(err)
		message := err.Error()
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).Error("WebSocket simulation failed")
			message = "Internal server error"
		}
		send(StreamMessage{Type: "error", Error: message, Status: status})
		return
	}

	if err := send(StreamMessage{Type: "result", Result: rec}); err != nil {
		h.logger.WithError(err).Warn("Failed to send simulation result")
		return
	}
	mu.Lock()
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	mu.Unlock()
}
