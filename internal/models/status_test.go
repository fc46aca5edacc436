// internal/models/status_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnnouncementStatusTransitions(t *testing.T) {
	// Pending can move to published, canceled or blocked
	assert.True(t, AnnouncementStatusPending.CanTransitionTo(AnnouncementStatusPublished))
	assert.True(t, AnnouncementStatusPending.CanTransitionTo(AnnouncementStatusCanceled))
	assert.True(t, AnnouncementStatusPending.CanTransitionTo(AnnouncementStatusBlocked))
	assert.False(t, AnnouncementStatusPending.CanTransitionTo(AnnouncementStatusClosed))

	// Published can move to closed, canceled or blocked
	assert.True(t, AnnouncementStatusPublished.CanTransitionTo(AnnouncementStatusClosed))
	assert.True(t, AnnouncementStatusPublished.CanTransitionTo(AnnouncementStatusCanceled))
	assert.True(t, AnnouncementStatusPublished.CanTransitionTo(AnnouncementStatusBlocked))

	// No state re-enters pending
	for _, status := range []AnnouncementStatus{
		AnnouncementStatusPublished,
		AnnouncementStatusClosed,
		AnnouncementStatusCanceled,
		AnnouncementStatusBlocked,
	} {
		assert.False(t, status.CanTransitionTo(AnnouncementStatusPending),
			"%s must not re-enter pending", status)
	}

	// Terminal states allow nothing
	for _, status := range []AnnouncementStatus{
		AnnouncementStatusClosed,
		AnnouncementStatusCanceled,
		AnnouncementStatusBlocked,
	} {
		assert.True(t, status.IsTerminal())
		assert.Empty(t, status.AllowedNext())
	}
}

func TestAnnouncementPublishOnlyFromPending(t *testing.T) {
	for _, status := range []AnnouncementStatus{
		AnnouncementStatusPublished,
		AnnouncementStatusClosed,
		AnnouncementStatusCanceled,
		AnnouncementStatusBlocked,
	} {
		assert.False(t, status.CanTransitionTo(AnnouncementStatusPublished),
			"publish must be illegal from %s", status)
	}
}

func TestApplicationStatusTransitions(t *testing.T) {
	assert.True(t, ApplicationStatusPending.CanTransitionTo(ApplicationStatusApproved))
	assert.True(t, ApplicationStatusPending.CanTransitionTo(ApplicationStatusRejected))
	assert.True(t, ApplicationStatusPending.CanTransitionTo(ApplicationStatusClosed))

	// Approved can only close
	assert.True(t, ApplicationStatusApproved.CanTransitionTo(ApplicationStatusClosed))
	assert.False(t, ApplicationStatusApproved.CanTransitionTo(ApplicationStatusRejected))
	assert.False(t, ApplicationStatusApproved.CanTransitionTo(ApplicationStatusPending))

	// Rejected may be reopened
	assert.True(t, ApplicationStatusRejected.CanTransitionTo(ApplicationStatusPending))
	assert.False(t, ApplicationStatusRejected.CanTransitionTo(ApplicationStatusApproved))

	// Closed is fully terminal
	assert.True(t, ApplicationStatusClosed.IsTerminal())
	for _, target := range []ApplicationStatus{
		ApplicationStatusPending,
		ApplicationStatusApproved,
		ApplicationStatusRejected,
	} {
		assert.False(t, ApplicationStatusClosed.CanTransitionTo(target),
			"closed must not transition to %s", target)
	}
}

func TestUserEligibility(t *testing.T) {
	user := &User{Verified: true, Locked: false, Status: UserStatusActive, UserType: UserTypeFarmer}
	assert.True(t, user.Eligible())
	assert.True(t, user.CanPost())

	locked := &User{Verified: true, Locked: true, Status: UserStatusActive}
	assert.False(t, locked.Eligible())

	unverified := &User{Verified: false, Locked: false, Status: UserStatusActive}
	assert.False(t, unverified.Eligible())

	admin := &User{UserType: UserTypeAdmin}
	assert.False(t, admin.CanPost())
}
