package response

import "github.com/suckingout/poker-nights-api/internal/domain"

// InviteResponse reports the persisted state alongside the outcome of the
// best-effort notification email.
type InviteResponse struct {
	Event            domain.Event `json:"event"`
	NotificationSent bool         `json:"notification_sent"`
	NotificationErr  string       `json:"notification_error,omitempty"`
}

type GroupInviteResponse struct {
	Group            domain.Group `json:"group"`
	NotificationSent bool         `json:"notification_sent"`
	NotificationErr  string       `json:"notification_error,omitempty"`
}
