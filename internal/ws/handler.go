package ws

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/workflow"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// SessionSource resolves the sessions clients may watch.
type SessionSource interface {
	Snapshot(id string) (workflow.Snapshot, error)
}

// Handler upgrades HTTP connections to websocket clients. The session to
// watch comes from the "session" query parameter.
type Handler struct {
	Hub            *Hub
	Sessions       SessionSource
	AllowedOrigins []string
	Logger         *zap.Logger
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session"))
	var initial []byte
	if sessionID != "" && h.Sessions != nil {
		snap, err := h.Sessions.Snapshot(sessionID)
		if err != nil {
			http.Error(w, "unknown session", http.StatusNotFound)
			return
		}
		initial, _ = json.Marshal(workflow.Event{Type: workflow.EventState, SessionID: sessionID, Snapshot: &snap})
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := NewClient(h.Hub, conn)
	client.SetSessionID(sessionID)
	if initial != nil {
		client.Send <- initial
	}
	h.Hub.Register(client)

	go client.WritePump()
	client.ReadPump(h)
}

type clientMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

// ReadPump pumps messages from the websocket connection.
func (c *Client) ReadPump(h *Handler) {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}

		var payload clientMessage
		if err := json.Unmarshal(message, &payload); err != nil {
			continue
		}
		h.processClientMessage(c, payload)
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) processClientMessage(client *Client, payload clientMessage) {
	if client == nil {
		return
	}
	switch strings.ToLower(strings.TrimSpace(payload.Type)) {
	case "subscribe":
		sessionID := strings.TrimSpace(payload.SessionID)
		if sessionID == "" {
			return
		}
		if h.Sessions != nil {
			if _, err := h.Sessions.Snapshot(sessionID); err != nil {
				h.logger().Debug("subscribe to unknown session", zap.String("session_id", sessionID))
				return
			}
		}
		client.SetSessionID(sessionID)
	case "unsubscribe":
		client.SetSessionID("")
	}
}

func (h *Handler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	originHost := normalizeOriginHost(originURL.Host)
	if originHost == "" {
		return false
	}

	reqHost := normalizeOriginHost(r.Host)
	if reqHost == originHost || isLoopbackAliasPair(reqHost, originHost) {
		return true
	}

	for _, candidate := range h.AllowedOrigins {
		if isAllowedOriginCandidate(originURL, candidate) {
			return true
		}
	}
	return false
}

func normalizeOriginHost(host string) string {
	host = strings.TrimSpace(strings.ToLower(host))
	if host == "" {
		return ""
	}
	if parsedHost, _, err := net.SplitHostPort(host); err == nil {
		return strings.Trim(parsedHost, "[]")
	}
	return strings.Trim(host, "[]")
}

func isLoopbackAliasPair(a, b string) bool {
	loopback := map[string]bool{
		"localhost": true,
		"127.0.0.1": true,
		"::1":       true,
	}
	return loopback[a] && loopback[b]
}

func isAllowedOriginCandidate(originURL *url.URL, candidate string) bool {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return false
	}
	if candidate == "*" {
		return true
	}

	parsedCandidate, err := url.Parse(candidate)
	if err != nil {
		return false
	}

	if parsedCandidate.Scheme != "" && parsedCandidate.Scheme != originURL.Scheme {
		return false
	}
	patternHost := normalizeOriginHost(parsedCandidate.Host)
	if patternHost == "" {
		return false
	}

	actualHost := normalizeOriginHost(originURL.Host)
	if strings.HasPrefix(patternHost, "*.") {
		suffix := strings.TrimPrefix(patternHost, "*.")
		if actualHost == suffix {
			return false
		}
		return strings.HasSuffix(actualHost, "."+suffix)
	}
	return actualHost == patternHost
}
