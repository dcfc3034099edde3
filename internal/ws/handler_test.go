package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/workflow"
)

type stubSessions map[string]workflow.Snapshot

func (s stubSessions) Snapshot(id string) (workflow.Snapshot, error) {
	snap, ok := s[id]
	if !ok {
		return workflow.Snapshot{}, workflow.ErrSessionNotFound
	}
	return snap, nil
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + query
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) workflow.Event {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)
	var event workflow.Event
	require.NoError(t, json.Unmarshal(message, &event))
	return event
}

func TestHandlerSendsInitialSnapshotAndSessionEvents(t *testing.T) {
	hub := runHub(t)
	sessions := stubSessions{"session-a": {SessionID: "session-a", Stage: workflow.StageIdle}}
	server := httptest.NewServer(&Handler{Hub: hub, Sessions: sessions})
	defer server.Close()

	conn := dial(t, server, "?session=session-a")
	initial := readEvent(t, conn)
	assert.Equal(t, workflow.EventState, initial.Type)
	require.NotNil(t, initial.Snapshot)
	assert.Equal(t, workflow.StageIdle, initial.Snapshot.Stage)

	notifier := NewNotifier(hub, nil)
	stop := keepSending(func() {
		notifier.Notify(workflow.Event{Type: workflow.EventInfo, SessionID: "session-b", Message: "other"})
		notifier.Notify(workflow.Event{Type: workflow.EventSuccess, SessionID: "session-a", Message: "count saved"})
	})
	defer stop()

	event := readEvent(t, conn)
	assert.Equal(t, "session-a", event.SessionID)
	assert.Equal(t, "count saved", event.Message)
}

// keepSending repeats send until stopped so tests do not race client
// registration.
func keepSending(send func()) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			send()
			select {
			case <-done:
				return
			case <-ticker.C:
			}
		}
	}()
	return func() { close(done) }
}

func TestHandlerRejectsUnknownSession(t *testing.T) {
	hub := runHub(t)
	server := httptest.NewServer(&Handler{Hub: hub, Sessions: stubSessions{}})
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=missing"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClientSubscribeSwitchesSession(t *testing.T) {
	hub := runHub(t)
	sessions := stubSessions{"session-a": {SessionID: "session-a"}}
	server := httptest.NewServer(&Handler{Hub: hub, Sessions: sessions})
	defer server.Close()

	conn := dial(t, server, "")
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "subscribe", "session_id": "nope"}))
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "subscribe", "session_id": "session-a"}))

	stop := keepSending(func() {
		hub.Broadcast("session-a", []byte(`{"type":"info","session_id":"session-a"}`))
	})
	defer stop()

	event := readEvent(t, conn)
	assert.Equal(t, workflow.EventInfo, event.Type)
}

func TestProcessClientMessageUnsubscribe(t *testing.T) {
	h := &Handler{Sessions: stubSessions{"session-a": {}}}
	client := NewClient(nil, nil)

	h.processClientMessage(client, clientMessage{Type: "subscribe", SessionID: "session-a"})
	assert.Equal(t, "session-a", client.SessionID())
	h.processClientMessage(client, clientMessage{Type: "subscribe", SessionID: "missing"})
	assert.Equal(t, "session-a", client.SessionID())
	h.processClientMessage(client, clientMessage{Type: "UNSUBSCRIBE"})
	assert.Equal(t, "", client.SessionID())
}

func TestCheckOrigin(t *testing.T) {
	newRequest := func(host, origin string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "http://"+host+"/ws", nil)
		req.Host = host
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		return req
	}

	h := &Handler{}
	assert.True(t, h.checkOrigin(newRequest("sayim.local", "")))
	assert.True(t, h.checkOrigin(newRequest("sayim.local", "http://sayim.local")))
	assert.True(t, h.checkOrigin(newRequest("127.0.0.1:4300", "http://localhost:4300")))
	assert.False(t, h.checkOrigin(newRequest("sayim.local", "https://evil.example")))

	h.AllowedOrigins = []string{"https://*.konyali.local"}
	assert.True(t, h.checkOrigin(newRequest("sayim.local", "https://magaza.konyali.local")))
	assert.False(t, h.checkOrigin(newRequest("sayim.local", "https://konyali.local")))
	assert.False(t, h.checkOrigin(newRequest("sayim.local", "http://magaza.konyali.local")))

	h.AllowedOrigins = []string{"*"}
	assert.True(t, h.checkOrigin(newRequest("sayim.local", "https://evil.example")))
}
