package entity

import (
	"context"
	"time"
)

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusProposal  LeadStatus = "proposal"
	LeadStatusClosed    LeadStatus = "closed"
	LeadStatusLost      LeadStatus = "lost"
)

// LeadStatuses lists every status a lead can occupy, in pipeline order.
var LeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusQualified,
	LeadStatusProposal,
	LeadStatusClosed,
	LeadStatusLost,
}

func (s LeadStatus) Valid() bool {
	for _, st := range LeadStatuses {
		if s == st {
			return true
		}
	}
	return false
}

func ParseLeadStatus(raw string) (LeadStatus, bool) {
	s := LeadStatus(raw)
	return s, s.Valid()
}

// TransitionPolicy reports whether a lead may move from one status to another.
type TransitionPolicy func(from, to LeadStatus) bool

// AllowAnyTransition permits every move between known statuses, including
// leaving closed or lost.
func AllowAnyTransition(from, to LeadStatus) bool {
	return from.Valid() && to.Valid()
}

type Lead struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Company     string     `json:"company"`
	Service     string     `json:"service"`
	ProjectType string     `json:"project_type"`
	Timeline    string     `json:"timeline"`
	Budget      string     `json:"budget"`
	Message     string     `json:"message"`
	Status      LeadStatus `json:"status"`
	Notes       string     `json:"notes"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// LeadStats is the dashboard projection. Total counts every row; proposal
// and lost leads only show up there.
type LeadStats struct {
	Total     int `json:"total"`
	New       int `json:"new"`
	Contacted int `json:"contacted"`
	Qualified int `json:"qualified"`
	Closed    int `json:"closed"`
}

type LeadRepositoryInterface interface {
	// Create inserts the lead with status new and fills ID and timestamps.
	Create(ctx context.Context, lead *Lead) error
	FindAll(ctx context.Context) ([]Lead, error)
	FindByID(ctx context.Context, id int64) (*Lead, error)
	// UpdateStatus overwrites status and notes (empty notes are stored as NULL)
	// and refreshes updated_at. Returns ErrLeadNotFound for an unknown id.
	UpdateStatus(ctx context.Context, id int64, status LeadStatus, notes string) error
	Stats(ctx context.Context) (LeadStats, error)
}
