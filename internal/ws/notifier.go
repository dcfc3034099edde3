package ws

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/workflow"
)

// Notifier publishes coordinator events to the hub as JSON.
type Notifier struct {
	Hub    *Hub
	Logger *zap.Logger
}

func NewNotifier(hub *Hub, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{Hub: hub, Logger: logger}
}

func (n *Notifier) Notify(event workflow.Event) {
	if n == nil || n.Hub == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		n.Logger.Warn("encode session event", zap.String("session_id", event.SessionID), zap.Error(err))
		return
	}
	if !n.Hub.Broadcast(event.SessionID, payload) {
		n.Logger.Debug("session event dropped",
			zap.String("session_id", event.SessionID),
			zap.String("type", string(event.Type)),
		)
	}
}
