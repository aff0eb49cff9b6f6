// Package lifecycle defines the status transitions for organizations,
// content and users. A transition is a total function of (current, action):
// it yields the new status, reports a no-op when the entity already sits in
// the action's target status, and fails with ErrInvalidTransition otherwise.
//
// The no-op branch is the replay guard: approving an already-approved entity
// (double submit, concurrent moderators) must succeed without changing state.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/ntumia/mediahub/internal/database/models"
)

var ErrInvalidTransition = errors.New("invalid transition")

type Action string

const (
	// Moderation decisions
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"

	// Organization administration
	ActionSuspend    Action = "suspend"
	ActionReinstate  Action = "reinstate"
	ActionReactivate Action = "reactivate"

	// Content reporting and retirement
	ActionFlag    Action = "flag"
	ActionArchive Action = "archive"

	// User administration
	ActionActivate   Action = "activate"
	ActionDeactivate Action = "deactivate"
)

var orgTransitions = map[models.OrgStatus]map[Action]models.OrgStatus{
	models.OrgStatusPending: {
		ActionApprove: models.OrgStatusActive,
		ActionReject:  models.OrgStatusInactive,
	},
	models.OrgStatusActive: {
		ActionSuspend: models.OrgStatusSuspended,
	},
	models.OrgStatusSuspended: {
		ActionReinstate: models.OrgStatusActive,
	},
	models.OrgStatusInactive: {
		ActionReactivate: models.OrgStatusActive,
	},
}

// orgTargets maps each action to the status it lands in, for replay detection.
var orgTargets = map[Action]models.OrgStatus{
	ActionApprove:    models.OrgStatusActive,
	ActionReject:     models.OrgStatusInactive,
	ActionSuspend:    models.OrgStatusSuspended,
	ActionReinstate:  models.OrgStatusActive,
	ActionReactivate: models.OrgStatusActive,
}

var contentTransitions = map[models.ContentStatus]map[Action]models.ContentStatus{
	models.ContentStatusDraft: {
		ActionApprove: models.ContentStatusPublished,
		ActionReject:  models.ContentStatusArchived,
		ActionArchive: models.ContentStatusArchived,
	},
	models.ContentStatusPublished: {
		ActionFlag:    models.ContentStatusFlagged,
		ActionArchive: models.ContentStatusArchived,
	},
	models.ContentStatusFlagged: {
		ActionApprove: models.ContentStatusPublished,
		ActionReject:  models.ContentStatusArchived,
	},
	// archived is terminal
}

var contentTargets = map[Action]models.ContentStatus{
	ActionApprove: models.ContentStatusPublished,
	ActionReject:  models.ContentStatusArchived,
	ActionFlag:    models.ContentStatusFlagged,
	ActionArchive: models.ContentStatusArchived,
}

var userTransitions = map[models.UserStatus]map[Action]models.UserStatus{
	models.UserStatusActive: {
		ActionDeactivate: models.UserStatusInactive,
	},
	models.UserStatusInactive: {
		ActionActivate: models.UserStatusActive,
	},
}

var userTargets = map[Action]models.UserStatus{
	ActionActivate:   models.UserStatusActive,
	ActionDeactivate: models.UserStatusInactive,
}

func next[S comparable](transitions map[S]map[Action]S, targets map[Action]S, current S, action Action) (S, bool, error) {
	if to, ok := transitions[current][action]; ok {
		return to, true, nil
	}
	// Already in the action's target status: idempotent no-op.
	if target, ok := targets[action]; ok && target == current {
		return current, false, nil
	}
	var zero S
	return zero, false, fmt.Errorf("%w: %q from %v", ErrInvalidTransition, action, current)
}

// OrgNext resolves an organization status transition. The returned bool is
// false when the action is an idempotent no-op.
func OrgNext(current models.OrgStatus, action Action) (models.OrgStatus, bool, error) {
	return next(orgTransitions, orgTargets, current, action)
}

// ContentNext resolves a content status transition.
func ContentNext(current models.ContentStatus, action Action) (models.ContentStatus, bool, error) {
	return next(contentTransitions, contentTargets, current, action)
}

// UserNext resolves a user status transition.
func UserNext(current models.UserStatus, action Action) (models.UserStatus, bool, error) {
	return next(userTransitions, userTargets, current, action)
}
