package models

import (
	"encoding/json"
	"time"

	"github.com/ticketgate/backend/internal/checklist"
)

type Role string

const (
	RoleFront   Role = "front"
	RoleBuilder Role = "builder"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleFront, RoleBuilder, RoleAdmin:
		return true
	}
	return false
}

type TicketStatus string

const (
	StatusDraft     TicketStatus = "draft"
	StatusReviewing TicketStatus = "reviewing"
	StatusApproved  TicketStatus = "approved"
	StatusDone      TicketStatus = "done"
)

// AllStatuses lists ticket states in workflow order.
var AllStatuses = []TicketStatus{StatusDraft, StatusReviewing, StatusApproved, StatusDone}

func (s TicketStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusReviewing, StatusApproved, StatusDone:
		return true
	}
	return false
}

type Ticket struct {
	ID         string             `json:"id"`
	ProjectID  string             `json:"project_id"`
	AuthorID   string             `json:"author_id"`
	Title      string             `json:"title"`
	Content    string             `json:"content"`
	Category   checklist.Category `json:"category"`
	Status     TicketStatus       `json:"status"`
	AIFeedback json.RawMessage    `json:"ai_feedback,omitempty" swaggertype:"object"`
	Metadata   map[string]string  `json:"metadata,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
	Author     *Author            `json:"author,omitempty"`
}

type Author struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ServiceType string

const (
	ServiceLINE ServiceType = "LINE"
	ServiceMEO  ServiceType = "MEO"
)

func (s ServiceType) Valid() bool {
	return s == ServiceLINE || s == ServiceMEO
}

type Project struct {
	ID          string      `json:"id"`
	ClientName  string      `json:"client_name"`
	ServiceType ServiceType `json:"service_type"`
	Description *string     `json:"description,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Session is the resolved identity behind a bearer token.
type Session struct {
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

type TicketStats struct {
	Total     int `json:"total"`
	Draft     int `json:"draft"`
	Reviewing int `json:"reviewing"`
	Approved  int `json:"approved"`
	Done      int `json:"done"`
}

// TicketPatch carries the editable fields of a draft. Nil fields are left
// unchanged. Category is fixed at creation.
type TicketPatch struct {
	Title    *string           `json:"title,omitempty"`
	Content  *string           `json:"content,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type ProjectPatch struct {
	ClientName  *string      `json:"client_name,omitempty"`
	ServiceType *ServiceType `json:"service_type,omitempty"`
	Description *string      `json:"description,omitempty"`
}
