package ws

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustReceiveMessage(t *testing.T, ch <-chan []byte, timeout time.Duration) []byte {
	t.Helper()
	select {
	case payload := <-ch:
		return payload
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for websocket payload")
		return nil
	}
}

func mustNotReceiveMessage(t *testing.T, ch <-chan []byte, timeout time.Duration) {
	t.Helper()
	select {
	case payload := <-ch:
		t.Fatalf("expected no payload, got %q", string(payload))
	case <-time.After(timeout):
	}
}

func runHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestHubBroadcastFiltersBySession(t *testing.T) {
	hub := runHub(t)

	clientA := NewClient(hub, nil)
	clientA.SetSessionID("session-a")
	clientB := NewClient(hub, nil)
	clientB.SetSessionID("session-b")
	idle := NewClient(hub, nil)

	hub.Register(clientA)
	hub.Register(clientB)
	hub.Register(idle)

	require.True(t, hub.Broadcast("session-a", []byte("state-a")))
	assert.Equal(t, "state-a", string(mustReceiveMessage(t, clientA.Send, 200*time.Millisecond)))
	mustNotReceiveMessage(t, clientB.Send, 80*time.Millisecond)
	mustNotReceiveMessage(t, idle.Send, 20*time.Millisecond)

	clientB.SetSessionID("session-a")
	require.True(t, hub.Broadcast("session-a", []byte("state-a2")))
	assert.Equal(t, "state-a2", string(mustReceiveMessage(t, clientA.Send, 200*time.Millisecond)))
	assert.Equal(t, "state-a2", string(mustReceiveMessage(t, clientB.Send, 200*time.Millisecond)))
}

func TestHubBroadcastNeverBlocks(t *testing.T) {
	hub := NewHub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer+10; i++ {
			hub.Broadcast("session-a", []byte("x"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked without a running hub")
	}
	assert.EqualValues(t, 10, hub.Dropped())
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := runHub(t)

	slow := NewClient(hub, nil)
	slow.Send = make(chan []byte)
	slow.SetSessionID("session-a")
	hub.Register(slow)

	require.True(t, hub.Broadcast("session-a", []byte("lost")))
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-slow.Send:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestHubStopsOnCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	client := NewClient(hub, nil)
	hub.Register(client)
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	_, ok := <-client.Send
	assert.False(t, ok)
	assert.False(t, hub.Broadcast("session-a", []byte("late")))
	hub.Unregister(client)
}
