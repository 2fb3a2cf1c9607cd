package models

import "time"

// Report statuses. Transitions happen only by admin action.
const (
	ReportStatusPending  = "pending"
	ReportStatusReviewed = "reviewed"
	ReportStatusResolved = "resolved"
	ReportStatusRejected = "rejected"
)

const ReportTypeReview = "review"

// Report flags a piece of user content for moderation.
type Report struct {
	ID               string     `json:"id"`
	ReportedItemID   string     `json:"reportedItemId"`
	ReportedItemType string     `json:"reportedItemType"`
	ReportedUserID   string     `json:"reportedUserId"`
	ReporterUserID   string     `json:"reporterUserId"`
	Reason           string     `json:"reason"`
	Description      string     `json:"description"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"createdAt"`
	ResolvedAt       *time.Time `json:"resolvedAt,omitempty"`
	ResolvedBy       string     `json:"resolvedBy,omitempty"`
	Resolution       string     `json:"resolution,omitempty"`
}

// Support ticket statuses and priorities.
const (
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in_progress"
	TicketStatusResolved   = "resolved"
	TicketStatusClosed     = "closed"

	TicketPriorityLow    = "low"
	TicketPriorityNormal = "normal"
	TicketPriorityHigh   = "high"
	TicketPriorityUrgent = "urgent"
)

type SupportTicket struct {
	ID          string           `json:"id"`
	UserID      string           `json:"userId"`
	UserEmail   string           `json:"userEmail"`
	UserName    string           `json:"userName"`
	Subject     string           `json:"subject"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Status      string           `json:"status"`
	Priority    string           `json:"priority"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	ResolvedAt  *time.Time       `json:"resolvedAt,omitempty"`
	Responses   []TicketResponse `json:"responses"`
}

type TicketResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	IsAdmin   bool      `json:"isAdmin"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// FAQ is reference content; Order defines display sequence.
type FAQ struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
	Order    int    `json:"order"`
	IsActive bool   `json:"isActive"`
}

// AdminAction is one entry in the append-only moderation audit log.
type AdminAction struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	ReviewID  string    `json:"reviewId,omitempty"`
	MovieID   int       `json:"movieId,omitempty"`
	AdminID   string    `json:"adminId"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}
