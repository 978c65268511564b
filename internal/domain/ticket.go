package domain

import "time"

// TicketType separates bug reports from feature requests.
type TicketType string

const (
	TicketBug     TicketType = "bug"
	TicketFeature TicketType = "feature"
)

// TicketStatus tracks triage progress.
type TicketStatus string

const (
	TicketNew        TicketStatus = "new"
	TicketInProgress TicketStatus = "in_progress"
	TicketResolved   TicketStatus = "resolved"
	TicketClosed     TicketStatus = "closed"
)

// Valid reports whether s is a known ticket status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketNew, TicketInProgress, TicketResolved, TicketClosed:
		return true
	}
	return false
}

// Priority is the urgency bucket shown on dashboards.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Priorities lists buckets in ascending urgency.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// PriorityFromScore maps a 0..100 slider score to a bucket.
func PriorityFromScore(score int) Priority {
	switch {
	case score > 80:
		return PriorityCritical
	case score > 50:
		return PriorityHigh
	case score > 20:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Ticket is a bug report or feature request submitted through the wizard.
type Ticket struct {
	ID          int64      `json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	CreatedBy   int64      `json:"created_by"`
	Type        TicketType `json:"type"`
	Subject     string     `json:"subject"`
	Description string     `json:"description,omitempty"`
	Files       []string   `json:"files"`

	Category         string   `json:"category,omitempty"`
	Module           string   `json:"module,omitempty"`
	Frequency        string   `json:"frequency,omitempty"`
	Scope            string   `json:"scope,omitempty"`
	Severity         *int     `json:"severity,omitempty"`
	CurrentBehavior  string   `json:"current_behavior,omitempty"`
	ExpectedBehavior string   `json:"expected_behavior,omitempty"`
	StepsToReproduce []string `json:"steps_to_reproduce"`

	ProblemStatement string `json:"problem_statement,omitempty"`
	ProposedSolution string `json:"proposed_solution,omitempty"`
	BusinessValue    string `json:"business_value,omitempty"`
	ExampleLink      string `json:"example_link,omitempty"`

	Priority Priority     `json:"priority"`
	Status   TicketStatus `json:"status"`
}

// Comment is a discussion entry on a ticket.
type Comment struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	TicketID  int64     `json:"ticket_id"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	UserName  string    `json:"user_name,omitempty"`
	UserRole  Role      `json:"user_role,omitempty"`
}
