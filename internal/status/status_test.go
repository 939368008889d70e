package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var all = []Status{
	NotApproved, Approved, Solving, OfficialSolved,
	PendingUserConfirmation, Solved, Rejected, Reopened,
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from Status
		want []Status
	}{
		{NotApproved, []Status{Approved, Rejected}},
		{Approved, []Status{Solving, Rejected}},
		{Solving, []Status{OfficialSolved, Rejected}},
		{OfficialSolved, []Status{PendingUserConfirmation}},
		{PendingUserConfirmation, []Status{Solved, Reopened}},
		{Reopened, []Status{Solving, Rejected}},
		{Rejected, []Status{Approved}},
		{Solved, []Status{}},
	}
	for _, tc := range tests {
		t.Run(string(tc.from), func(t *testing.T) {
			assert.ElementsMatch(t, tc.want, Next(tc.from))
			for _, to := range tc.want {
				assert.NoError(t, Validate(tc.from, to))
			}
		})
	}
}

func TestValidateRejectsIllegalEdges(t *testing.T) {
	for _, from := range all {
		legal := map[Status]bool{}
		for _, to := range Next(from) {
			legal[to] = true
		}
		for _, to := range all {
			if legal[to] {
				continue
			}
			err := Validate(from, to)
			assert.Error(t, err, "%s -> %s should be illegal", from, to)
			var ite *InvalidTransitionError
			assert.ErrorAs(t, err, &ite)
			assert.Equal(t, from, ite.From)
			assert.Equal(t, to, ite.To)
		}
	}
}

func TestSolvedIsTerminal(t *testing.T) {
	assert.True(t, Terminal(Solved))
	for _, to := range all {
		assert.Error(t, Validate(Solved, to))
	}
	for _, s := range all {
		if s != Solved {
			assert.False(t, Terminal(s), "%s must not be terminal", s)
		}
	}
}

func TestTargetsStayInsideEnumeration(t *testing.T) {
	for _, from := range all {
		for _, to := range Next(from) {
			assert.True(t, Valid(to), "%s -> %s leaves the enumeration", from, to)
		}
	}
}

func TestUnknownStatus(t *testing.T) {
	assert.False(t, Valid(Status("archived")))
	assert.Error(t, Validate(Status("archived"), Approved))
	assert.Error(t, Validate(NotApproved, Status("archived")))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Your issue is resolved. Thank you for reporting", Message(Solved))
	assert.Equal(t, "Issue status changed to archived", Message(Status("archived")))
}
