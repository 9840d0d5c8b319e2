package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ticketgate/backend/internal/checklist"
	"github.com/ticketgate/backend/internal/db"
	"github.com/ticketgate/backend/internal/events"
	"github.com/ticketgate/backend/internal/models"
	"github.com/ticketgate/backend/internal/review"
)

var ErrInvalidInput = errors.New("invalid input")

// InputError names the ticket field that failed validation.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// TicketRepository is the persistence the ticket service needs.
// *db.Store implements it.
type TicketRepository interface {
	CreateTicket(ctx context.Context, t models.Ticket) (models.Ticket, error)
	GetTicket(ctx context.Context, id string) (models.Ticket, error)
	ListTickets(ctx context.Context, projectID string) ([]models.Ticket, error)
	UpdateTicket(ctx context.Context, id string, patch models.TicketPatch) (models.Ticket, error)
	UpdateTicketStatus(ctx context.Context, id string, from, to models.TicketStatus, feedback json.RawMessage) (models.Ticket, error)
	DeleteTicket(ctx context.Context, id string) error
	CountTicketsByStatus(ctx context.Context) (map[models.TicketStatus]int, error)
	GetProject(ctx context.Context, id string) (models.Project, error)
}

// Reviewer judges ticket instructions. *review.Gate implements it.
type Reviewer interface {
	Review(ctx context.Context, req review.Request) (review.Verdict, error)
}

type TicketService struct {
	Repo     TicketRepository
	Reviewer Reviewer
	Events   events.Publisher
	Logger   zerolog.Logger

	pending sync.WaitGroup
}

type TicketInput struct {
	ProjectID string
	Title     string
	Content   string
	Category  checklist.Category
	Metadata  map[string]string
}

// ReviewOutcome pairs a verdict with the ticket it produced, if any.
type ReviewOutcome struct {
	Verdict review.Verdict `json:"verdict"`
	Ticket  *models.Ticket `json:"ticket,omitempty"`
}

func (s *TicketService) validateInput(ctx context.Context, in TicketInput) error {
	switch {
	case strings.TrimSpace(in.ProjectID) == "":
		return &InputError{Field: "project_id", Reason: "is required"}
	case strings.TrimSpace(in.Title) == "":
		return &InputError{Field: "title", Reason: "is required"}
	case strings.TrimSpace(in.Content) == "":
		return &InputError{Field: "content", Reason: "is required"}
	case !checklist.Valid(in.Category):
		return &InputError{Field: "category", Reason: fmt.Sprintf("unknown category %q", in.Category)}
	}
	if _, err := s.Repo.GetProject(ctx, in.ProjectID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return &InputError{Field: "project_id", Reason: "project does not exist"}
		}
		return err
	}
	return nil
}

func canAuthor(actor Actor) error {
	if !isRole(models.RoleFront, models.RoleAdmin)(actor) {
		return fmt.Errorf("%w: %s cannot author tickets", ErrForbidden, actor)
	}
	return nil
}

// Submit reviews the instructions and persists the ticket as approved
// when the verdict is OK. On NG nothing is stored and the verdict is
// returned for the author to fix.
func (s *TicketService) Submit(ctx context.Context, actor Actor, in TicketInput) (ReviewOutcome, error) {
	if err := canAuthor(actor); err != nil {
		return ReviewOutcome{}, err
	}
	if err := s.validateInput(ctx, in); err != nil {
		return ReviewOutcome{}, err
	}

	verdict, err := s.Reviewer.Review(ctx, review.Request{
		Title:    in.Title,
		Category: in.Category,
		Content:  in.Content,
		Metadata: in.Metadata,
	})
	if err != nil {
		return ReviewOutcome{}, err
	}
	if !verdict.OK() {
		return ReviewOutcome{Verdict: verdict}, nil
	}

	if err := CanCreate(models.StatusApproved, ActorReviewGate); err != nil {
		return ReviewOutcome{}, err
	}
	t, err := s.Repo.CreateTicket(ctx, models.Ticket{
		ProjectID:  in.ProjectID,
		AuthorID:   actor.UserID,
		Title:      in.Title,
		Content:    in.Content,
		Category:   in.Category,
		Status:     models.StatusApproved,
		AIFeedback: encodeVerdict(verdict),
		Metadata:   in.Metadata,
	})
	if err != nil {
		return ReviewOutcome{}, err
	}
	s.publish(ctx, events.TicketEvent{Event: events.TicketCreated, TicketID: t.ID, ProjectID: t.ProjectID,
		Category: string(t.Category), ToStatus: string(t.Status), Actor: actor.String()})
	return ReviewOutcome{Verdict: verdict, Ticket: &t}, nil
}

// SaveDraft persists the ticket as a draft without reviewing it.
func (s *TicketService) SaveDraft(ctx context.Context, actor Actor, in TicketInput) (models.Ticket, error) {
	if err := CanCreate(models.StatusDraft, actor); err != nil {
		return models.Ticket{}, err
	}
	if err := s.validateInput(ctx, in); err != nil {
		return models.Ticket{}, err
	}
	t, err := s.Repo.CreateTicket(ctx, models.Ticket{
		ProjectID: in.ProjectID,
		AuthorID:  actor.UserID,
		Title:     in.Title,
		Content:   in.Content,
		Category:  in.Category,
		Status:    models.StatusDraft,
		Metadata:  in.Metadata,
	})
	if err != nil {
		return models.Ticket{}, err
	}
	s.publish(ctx, events.TicketEvent{Event: events.TicketCreated, TicketID: t.ID, ProjectID: t.ProjectID,
		Category: string(t.Category), ToStatus: string(t.Status), Actor: actor.String()})
	return t, nil
}

// ReviewDraft sends a stored draft through the review gate. The ticket
// sits in reviewing while the gate runs, then lands in approved on OK or
// back in draft on NG or failure. Gate failures are returned after the
// ticket has been put back.
func (s *TicketService) ReviewDraft(ctx context.Context, actor Actor, id string) (ReviewOutcome, error) {
	t, err := s.Repo.GetTicket(ctx, id)
	if err != nil {
		return ReviewOutcome{}, err
	}
	t, err = s.transition(ctx, t, models.StatusReviewing, actor, nil)
	if err != nil {
		return ReviewOutcome{}, err
	}

	verdict, reviewErr := s.Reviewer.Review(ctx, review.Request{
		Title:    t.Title,
		Category: t.Category,
		Content:  t.Content,
		Metadata: t.Metadata,
	})
	// the outcome is recorded even if the request is cancelled meanwhile
	settleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if reviewErr != nil {
		s.restoreDraft(settleCtx, t, reviewErr)
		return ReviewOutcome{}, reviewErr
	}

	to := models.StatusDraft
	if verdict.OK() {
		to = models.StatusApproved
	}
	settled, err := s.transition(settleCtx, t, to, ActorReviewGate, encodeVerdict(verdict))
	if err != nil {
		s.restoreDraft(settleCtx, t, err)
		return ReviewOutcome{}, err
	}
	return ReviewOutcome{Verdict: verdict, Ticket: &settled}, nil
}

// restoreDraft moves a ticket stuck in reviewing back to draft, recording
// cause as its feedback.
func (s *TicketService) restoreDraft(ctx context.Context, t models.Ticket, cause error) {
	feedback, _ := json.Marshal(map[string]string{"error": cause.Error()})
	if _, err := s.transition(ctx, t, models.StatusDraft, ActorReviewGate, feedback); err != nil {
		s.Logger.Error().Err(err).Str("ticket_id", t.ID).Msg("restore draft after failed review")
	}
}

// ChangeStatus applies a user-requested transition.
func (s *TicketService) ChangeStatus(ctx context.Context, actor Actor, id string, to models.TicketStatus) (models.Ticket, error) {
	if !to.Valid() {
		return models.Ticket{}, &InputError{Field: "status", Reason: fmt.Sprintf("unknown status %q", to)}
	}
	t, err := s.Repo.GetTicket(ctx, id)
	if err != nil {
		return models.Ticket{}, err
	}
	if !CanView(actor.Role, t.Status) {
		return models.Ticket{}, db.ErrNotFound
	}
	return s.transition(ctx, t, to, actor, nil)
}

func (s *TicketService) MarkDone(ctx context.Context, actor Actor, id string) (models.Ticket, error) {
	return s.ChangeStatus(ctx, actor, id, models.StatusDone)
}

// PushBack returns an approved ticket to draft for revision.
func (s *TicketService) PushBack(ctx context.Context, actor Actor, id string) (models.Ticket, error) {
	return s.ChangeStatus(ctx, actor, id, models.StatusDraft)
}

func (s *TicketService) transition(ctx context.Context, t models.Ticket, to models.TicketStatus, actor Actor, feedback json.RawMessage) (models.Ticket, error) {
	if err := CanTransition(t.Status, to, actor); err != nil {
		return models.Ticket{}, err
	}
	updated, err := s.Repo.UpdateTicketStatus(ctx, t.ID, t.Status, to, feedback)
	if err != nil {
		return models.Ticket{}, err
	}
	s.Logger.Info().
		Str("ticket_id", t.ID).
		Str("from", string(t.Status)).
		Str("to", string(to)).
		Str("actor", actor.String()).
		Msg("ticket status changed")
	s.publish(ctx, events.TicketEvent{Event: events.TicketStatusChanged, TicketID: t.ID, ProjectID: t.ProjectID,
		Category: string(t.Category), FromStatus: string(t.Status), ToStatus: string(to), Actor: actor.String()})
	return updated, nil
}

// Update edits a draft's title, content or metadata.
func (s *TicketService) Update(ctx context.Context, actor Actor, id string, patch models.TicketPatch) (models.Ticket, error) {
	if err := canAuthor(actor); err != nil {
		return models.Ticket{}, err
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return models.Ticket{}, &InputError{Field: "title", Reason: "must not be empty"}
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return models.Ticket{}, &InputError{Field: "content", Reason: "must not be empty"}
	}
	t, err := s.Repo.GetTicket(ctx, id)
	if err != nil {
		return models.Ticket{}, err
	}
	if t.Status != models.StatusDraft {
		return models.Ticket{}, fmt.Errorf("%w: only drafts can be edited", db.ErrConflict)
	}
	return s.Repo.UpdateTicket(ctx, id, patch)
}

// Delete removes a ticket regardless of status.
func (s *TicketService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := canAuthor(actor); err != nil {
		return err
	}
	t, err := s.Repo.GetTicket(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteTicket(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.TicketEvent{Event: events.TicketDeleted, TicketID: t.ID, ProjectID: t.ProjectID,
		Category: string(t.Category), FromStatus: string(t.Status), Actor: actor.String()})
	return nil
}

// List returns the tickets role may read, newest first.
func (s *TicketService) List(ctx context.Context, role models.Role, projectID string) ([]models.Ticket, error) {
	all, err := s.Repo.ListTickets(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return FilterVisible(role, all), nil
}

// Get hides tickets role may not read behind db.ErrNotFound.
func (s *TicketService) Get(ctx context.Context, role models.Role, id string) (models.Ticket, error) {
	t, err := s.Repo.GetTicket(ctx, id)
	if err != nil {
		return models.Ticket{}, err
	}
	if !CanView(role, t.Status) {
		return models.Ticket{}, db.ErrNotFound
	}
	return t, nil
}

// Stats counts the tickets role may read, per status.
func (s *TicketService) Stats(ctx context.Context, role models.Role) (models.TicketStats, error) {
	counts, err := s.Repo.CountTicketsByStatus(ctx)
	if err != nil {
		return models.TicketStats{}, err
	}
	var out models.TicketStats
	for _, st := range VisibleStatuses(role) {
		n := counts[st]
		out.Total += n
		switch st {
		case models.StatusDraft:
			out.Draft = n
		case models.StatusReviewing:
			out.Reviewing = n
		case models.StatusApproved:
			out.Approved = n
		case models.StatusDone:
			out.Done = n
		}
	}
	return out, nil
}

func (s *TicketService) publish(ctx context.Context, ev events.TicketEvent) {
	if s.Events == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC()
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		eventCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		s.Events.Publish(eventCtx, ev)
	}()
}

// Wait blocks until every event publish already started has returned.
func (s *TicketService) Wait() {
	s.pending.Wait()
}

func encodeVerdict(v review.Verdict) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
