package rest

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/reportit/reportit_api/internal/model"
	"github.com/reportit/reportit_api/internal/status"
)

func TestCanTransitionRoleGate(t *testing.T) {
	reporter := uuid.New()
	issue := model.Issue{ID: uuid.New(), UserID: reporter}

	admin := model.Actor{ID: uuid.New(), Role: model.RoleAdmin}
	official := model.Actor{ID: uuid.New(), Role: model.RoleOfficial}
	owner := model.Actor{ID: reporter, Role: model.RoleUser}
	stranger := model.Actor{ID: uuid.New(), Role: model.RoleUser}

	tests := []struct {
		name    string
		actor   model.Actor
		to      status.Status
		allowed bool
	}{
		{"admin approves", admin, status.Approved, true},
		{"admin rejects", admin, status.Rejected, true},
		{"official cannot approve", official, status.Approved, false},
		{"owner cannot approve own issue", owner, status.Approved, false},

		{"official starts solving", official, status.Solving, true},
		{"official marks solved", official, status.OfficialSolved, true},
		{"admin can work issues too", admin, status.Solving, true},
		{"reporter cannot start solving", owner, status.Solving, false},

		{"owner confirms resolution", owner, status.Solved, true},
		{"owner reopens", owner, status.Reopened, true},
		{"stranger cannot confirm", stranger, status.Solved, false},
		{"official cannot confirm for reporter", official, status.Solved, false},
		{"admin cannot confirm for reporter", admin, status.Solved, false},
		{"admin cannot reopen for reporter", admin, status.Reopened, false},

		{"official cannot force confirmation state", official, status.PendingUserConfirmation, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := canTransition(tt.actor, issue, tt.to)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			var permErr *model.PermissionError
			assert.ErrorAs(t, err, &permErr)
		})
	}
}
