package workflow

type EventType string

const (
	EventState   EventType = "state"
	EventSuccess EventType = "success"
	EventError   EventType = "error"
	EventInfo    EventType = "info"
)

// Event is one entry of a session's notification stream.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	Message   string    `json:"message,omitempty"`
	Result    *Result   `json:"result,omitempty"`
	Snapshot  *Snapshot `json:"snapshot,omitempty"`
}

// Notifier receives events while the coordinator holds its lock. Notify must
// not block and must not call back into the coordinator.
type Notifier interface {
	Notify(Event)
}

type NotifierFunc func(Event)

func (f NotifierFunc) Notify(event Event) {
	f(event)
}

// Notifiers fans one event out to several notifiers in order.
type Notifiers []Notifier

func (n Notifiers) Notify(event Event) {
	for _, notifier := range n {
		if notifier != nil {
			notifier.Notify(event)
		}
	}
}
