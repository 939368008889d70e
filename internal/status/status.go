// Package status owns the issue lifecycle: the status enumeration, the
// allowed-transition table, and the notification copy attached to each
// target status. Authorization is layered on top of this at the REST
// boundary; this package only enforces graph legality.
package status

import "fmt"

// Status is an issue lifecycle state.
type Status string

const (
	NotApproved             Status = "not_approved"
	Approved                Status = "approved"
	Solving                 Status = "solving"
	OfficialSolved          Status = "official_solved"
	PendingUserConfirmation Status = "pending_user_confirmation"
	Solved                  Status = "solved"
	Rejected                Status = "rejected"
	Reopened                Status = "reopened"
)

// allowed maps a status to the set of statuses reachable from it. Solved is
// terminal.
var allowed = map[Status][]Status{
	NotApproved:             {Approved, Rejected},
	Approved:                {Solving, Rejected},
	Solving:                 {OfficialSolved, Rejected},
	OfficialSolved:          {PendingUserConfirmation},
	PendingUserConfirmation: {Solved, Reopened},
	Reopened:                {Solving, Rejected},
	Rejected:                {Approved},
	Solved:                  {},
}

// Valid reports whether s is a member of the enumeration.
func Valid(s Status) bool {
	_, ok := allowed[s]
	return ok
}

// Terminal reports whether no transition leaves s.
func Terminal(s Status) bool {
	next, ok := allowed[s]
	return ok && len(next) == 0
}

// InvalidTransitionError names the current and requested status of an
// illegal transition.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition issue from %s to %s", e.From, e.To)
}

// Validate returns an InvalidTransitionError when to is not reachable from
// from. Unknown statuses are rejected the same way.
func Validate(from, to Status) error {
	next, ok := allowed[from]
	if !ok || !Valid(to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	for _, s := range next {
		if s == to {
			return nil
		}
	}
	return &InvalidTransitionError{From: from, To: to}
}

// Next returns a copy of the statuses reachable from s.
func Next(s Status) []Status {
	next := allowed[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// messages holds the notification copy sent to the issue owner and bound
// officials when the issue enters the keyed status.
var messages = map[Status]string{
	Approved:                "Your issue has been approved and routed to the responsible official",
	Rejected:                "Your issue has been reviewed and rejected",
	Solving:                 "An official has started working on your issue",
	OfficialSolved:          "The responsible official marked your issue as solved",
	PendingUserConfirmation: "Please confirm whether your issue has been resolved",
	Solved:                  "Your issue is resolved. Thank you for reporting",
	Reopened:                "Your issue has been reopened for further work",
}

// Message returns the status-change copy for the target status, falling back
// to a generic line for unmapped statuses.
func Message(to Status) string {
	if msg, ok := messages[to]; ok {
		return msg
	}
	return fmt.Sprintf("Issue status changed to %s", to)
}
