// Package assign routes approved issues to the officials whose jurisdiction
// covers them and fans an alert out to nearby residents.
package assign

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/reportit/reportit_api/internal/geo"
	"github.com/reportit/reportit_api/internal/model"
)

// DefaultAlertRadiusM is how far around an approved issue residents are
// alerted.
const DefaultAlertRadiusM = 500.0

// OfficialDirectory finds officials whose polygon covers a point
// (boundary-inclusive).
type OfficialDirectory interface {
	CoveringOfficials(ctx context.Context, pt geo.Point) ([]model.Official, error)
}

// ResidentDirectory finds users located within a radius of a point.
type ResidentDirectory interface {
	UsersWithin(ctx context.Context, pt geo.Point, radiusM float64, exclude uuid.UUID) ([]model.User, error)
}

// Assignments records issue-to-official bindings. AddAssignment must be
// idempotent: re-adding an existing binding is a no-op.
type Assignments interface {
	AddAssignment(ctx context.Context, officialID, issueID uuid.UUID) error
}

// Notifier persists a notification addressed to the user. Implementations
// queue any push delivery for after the surrounding transaction commits;
// errors here are row-write failures and abort the assignment.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, description, screen, screenID string) error
}

type Engine struct {
	Officials    OfficialDirectory
	Residents    ResidentDirectory
	Assignments  Assignments
	Notifier     Notifier
	AlertRadiusM float64
}

func New(officials OfficialDirectory, residents ResidentDirectory, assignments Assignments, notifier Notifier, alertRadiusM float64) *Engine {
	if alertRadiusM <= 0 {
		alertRadiusM = DefaultAlertRadiusM
	}
	return &Engine{
		Officials:    officials,
		Residents:    residents,
		Assignments:  assignments,
		Notifier:     notifier,
		AlertRadiusM: alertRadiusM,
	}
}

// Result reports what an Assign call did.
type Result struct {
	AssignedOfficials []uuid.UUID
	AlertedResidents  int
}

// Assign binds the issue to every covering official and alerts residents
// within the radius, excluding the reporter. Official notifications are
// emitted before resident ones. Zero covering officials is not an error:
// the issue stays approved but unassigned until an official is provisioned
// and the polygon resync picks it up.
func (e *Engine) Assign(ctx context.Context, issue model.Issue) (Result, error) {
	var res Result

	officials, err := e.Officials.CoveringOfficials(ctx, issue.Location())
	if err != nil {
		return res, fmt.Errorf("querying covering officials: %w", err)
	}

	for _, official := range officials {
		if err := e.Assignments.AddAssignment(ctx, official.ID, issue.ID); err != nil {
			return res, fmt.Errorf("assigning issue to official %s: %w", official.ID, err)
		}
		title := fmt.Sprintf("A new issue has been assigned to you at %.5f, %.5f", issue.Latitude, issue.Longitude)
		if err := e.Notifier.Notify(ctx, official.UserID, title, issue.Title, "officialIssues", issue.ID.String()); err != nil {
			return res, fmt.Errorf("notifying official %s: %w", official.ID, err)
		}
		res.AssignedOfficials = append(res.AssignedOfficials, official.ID)
	}

	residents, err := e.Residents.UsersWithin(ctx, issue.Location(), e.AlertRadiusM, issue.UserID)
	if err != nil {
		return res, fmt.Errorf("querying nearby residents: %w", err)
	}
	for _, resident := range residents {
		if err := e.Notifier.Notify(ctx, resident.ID, "An issue was reported near you", issue.Title, "issueDetail", issue.ID.String()); err != nil {
			return res, fmt.Errorf("notifying resident %s: %w", resident.ID, err)
		}
		res.AlertedResidents++
	}

	return res, nil
}
