package client

// Level classifies a user-facing notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier receives transient user-facing messages emitted by the gateway
// when a request fails. Notification is a side effect; the triggering error
// is still returned to the caller.
type Notifier interface {
	Notify(level Level, message string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(Level, string) {}
