package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ticketgate/backend/internal/models"
)

var (
	front   = UserActor("u-front", models.RoleFront)
	builder = UserActor("u-builder", models.RoleBuilder)
	admin   = UserActor("u-admin", models.RoleAdmin)
)

func TestCanTransitionTable(t *testing.T) {
	cases := []struct {
		from, to models.TicketStatus
		actor    Actor
		want     error
	}{
		{models.StatusDraft, models.StatusReviewing, front, nil},
		{models.StatusDraft, models.StatusReviewing, admin, nil},
		{models.StatusDraft, models.StatusReviewing, ActorReviewGate, nil},
		{models.StatusDraft, models.StatusReviewing, builder, ErrForbidden},
		{models.StatusDraft, models.StatusApproved, ActorReviewGate, nil},
		{models.StatusDraft, models.StatusApproved, admin, ErrForbidden},
		{models.StatusReviewing, models.StatusApproved, ActorReviewGate, nil},
		{models.StatusReviewing, models.StatusApproved, front, ErrForbidden},
		{models.StatusReviewing, models.StatusDraft, ActorReviewGate, nil},
		{models.StatusReviewing, models.StatusDraft, front, nil},
		{models.StatusApproved, models.StatusDraft, front, nil},
		{models.StatusApproved, models.StatusDraft, builder, ErrForbidden},
		{models.StatusApproved, models.StatusDone, builder, nil},
		{models.StatusApproved, models.StatusDone, front, nil},
		{models.StatusApproved, models.StatusDone, ActorReviewGate, ErrForbidden},
		{models.StatusDraft, models.StatusDone, admin, ErrInvalidTransition},
		{models.StatusReviewing, models.StatusDone, admin, ErrInvalidTransition},
		{models.StatusDone, models.StatusDraft, admin, ErrInvalidTransition},
		{models.StatusDone, models.StatusApproved, ActorReviewGate, ErrInvalidTransition},
		{models.StatusDraft, models.StatusDraft, front, ErrInvalidTransition},
	}
	for _, tc := range cases {
		err := CanTransition(tc.from, tc.to, tc.actor)
		if tc.want == nil {
			assert.NoError(t, err, "%s -> %s by %s", tc.from, tc.to, tc.actor)
			continue
		}
		assert.ErrorIs(t, err, tc.want, "%s -> %s by %s", tc.from, tc.to, tc.actor)
	}
}

func TestNothingLeavesDone(t *testing.T) {
	for _, to := range models.AllStatuses {
		for _, a := range []Actor{front, builder, admin, ActorReviewGate} {
			assert.Error(t, CanTransition(models.StatusDone, to, a))
		}
	}
}

func TestCanCreate(t *testing.T) {
	assert.NoError(t, CanCreate(models.StatusDraft, front))
	assert.ErrorIs(t, CanCreate(models.StatusDraft, builder), ErrForbidden)
	assert.NoError(t, CanCreate(models.StatusApproved, ActorReviewGate))
	assert.ErrorIs(t, CanCreate(models.StatusApproved, admin), ErrForbidden)
	assert.ErrorIs(t, CanCreate(models.StatusDone, admin), ErrInvalidTransition)
}

func TestVisibility(t *testing.T) {
	tickets := []models.Ticket{
		{ID: "1", Status: models.StatusDraft},
		{ID: "2", Status: models.StatusReviewing},
		{ID: "3", Status: models.StatusApproved},
		{ID: "4", Status: models.StatusDone},
	}

	got := FilterVisible(models.RoleBuilder, tickets)
	assert.Len(t, got, 2)
	assert.Equal(t, "3", got[0].ID)
	assert.Equal(t, "4", got[1].ID)

	assert.Len(t, FilterVisible(models.RoleFront, tickets), 4)
	assert.Len(t, FilterVisible(models.RoleAdmin, tickets), 4)
	assert.Empty(t, FilterVisible("guest", tickets))
	assert.Nil(t, VisibleStatuses("guest"))
	assert.True(t, CanView(models.RoleBuilder, models.StatusDone))
	assert.False(t, CanView(models.RoleBuilder, models.StatusDraft))
}
