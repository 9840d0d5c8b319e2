package service

import (
	"errors"
	"fmt"

	"github.com/ticketgate/backend/internal/models"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("actor not allowed")
)

type ActorKind string

const (
	ActorKindReviewGate ActorKind = "review_gate"
	ActorKindUser       ActorKind = "user"
)

// Actor is whoever requests a status change: the automated review gate
// or an authenticated user acting in a role.
type Actor struct {
	Kind   ActorKind
	UserID string
	Role   models.Role
}

var ActorReviewGate = Actor{Kind: ActorKindReviewGate}

func UserActor(userID string, role models.Role) Actor {
	return Actor{Kind: ActorKindUser, UserID: userID, Role: role}
}

func (a Actor) String() string {
	if a.Kind == ActorKindUser {
		return "user:" + string(a.Role)
	}
	return string(a.Kind)
}

type edge struct {
	from, to models.TicketStatus
}

// noStatus is the source state of a ticket that does not exist yet.
const noStatus models.TicketStatus = ""

var transitions = map[edge]func(Actor) bool{
	{noStatus, models.StatusDraft}:                  isRole(models.RoleFront, models.RoleAdmin),
	{noStatus, models.StatusApproved}:               isGate,
	{models.StatusDraft, models.StatusReviewing}:    anyOf(isGate, isRole(models.RoleFront, models.RoleAdmin)),
	{models.StatusDraft, models.StatusApproved}:     isGate,
	{models.StatusReviewing, models.StatusApproved}: isGate,
	{models.StatusReviewing, models.StatusDraft}:    anyOf(isGate, isRole(models.RoleFront, models.RoleAdmin)),
	{models.StatusApproved, models.StatusDraft}:     isRole(models.RoleFront, models.RoleAdmin),
	{models.StatusApproved, models.StatusDone}:      isRole(models.RoleBuilder, models.RoleFront, models.RoleAdmin),
}

func isGate(a Actor) bool { return a.Kind == ActorKindReviewGate }

func isRole(roles ...models.Role) func(Actor) bool {
	return func(a Actor) bool {
		if a.Kind != ActorKindUser {
			return false
		}
		for _, r := range roles {
			if a.Role == r {
				return true
			}
		}
		return false
	}
}

func anyOf(preds ...func(Actor) bool) func(Actor) bool {
	return func(a Actor) bool {
		for _, p := range preds {
			if p(a) {
				return true
			}
		}
		return false
	}
}

// CanTransition reports whether actor may move a ticket from one status
// to another. Edges missing from the table yield ErrInvalidTransition;
// known edges the actor may not take yield ErrForbidden.
func CanTransition(from, to models.TicketStatus, actor Actor) error {
	allowed, ok := transitions[edge{from, to}]
	if !ok {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, displayStatus(from), to)
	}
	if !allowed(actor) {
		return fmt.Errorf("%w: %s cannot move %s -> %s", ErrForbidden, actor, displayStatus(from), to)
	}
	return nil
}

// CanCreate reports whether actor may create a ticket in status.
func CanCreate(status models.TicketStatus, actor Actor) error {
	return CanTransition(noStatus, status, actor)
}

func displayStatus(s models.TicketStatus) string {
	if s == noStatus {
		return "(none)"
	}
	return string(s)
}

// VisibleStatuses returns the statuses role may read. Unknown roles see
// nothing.
func VisibleStatuses(role models.Role) []models.TicketStatus {
	switch role {
	case models.RoleBuilder:
		return []models.TicketStatus{models.StatusApproved, models.StatusDone}
	case models.RoleFront, models.RoleAdmin:
		out := make([]models.TicketStatus, len(models.AllStatuses))
		copy(out, models.AllStatuses)
		return out
	}
	return nil
}

func CanView(role models.Role, status models.TicketStatus) bool {
	for _, s := range VisibleStatuses(role) {
		if s == status {
			return true
		}
	}
	return false
}

// FilterVisible keeps the tickets role may read, preserving order.
func FilterVisible(role models.Role, tickets []models.Ticket) []models.Ticket {
	return filterTickets(tickets, func(t models.Ticket) bool {
		return CanView(role, t.Status)
	})
}

func filterTickets(tickets []models.Ticket, keep func(models.Ticket) bool) []models.Ticket {
	out := make([]models.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
