package domain

// NotifyOutcome separates the persistence result from the best-effort
// notification result so callers decide whether to surface the secondary
// failure instead of it being swallowed.
type NotifyOutcome struct {
	NotificationSent bool   `json:"notification_sent"`
	NotificationErr  string `json:"notification_error,omitempty"`
}

func NotifySucceeded() NotifyOutcome {
	return NotifyOutcome{NotificationSent: true}
}

func NotifyFailed(err error) NotifyOutcome {
	return NotifyOutcome{NotificationSent: false, NotificationErr: err.Error()}
}
