package usecase

import "github.com/cablecom/leads-api/internal/entity"

// LeadNotificationDispatcher hands a freshly stored lead to the notification
// channel. Dispatch must return immediately and never fail the caller.
type LeadNotificationDispatcher interface {
	Dispatch(lead entity.Lead)
}

type DefaultAdmin struct {
	Username string
	Email    string
	Password string
}
