package assign

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportit/reportit_api/internal/geo"
	"github.com/reportit/reportit_api/internal/model"
	"github.com/reportit/reportit_api/internal/status"
)

// memDirectory backs both directories with the pure geometry the PostGIS
// queries implement in production.
type memDirectory struct {
	officials []model.Official
	users     []model.User
}

func (d *memDirectory) CoveringOfficials(_ context.Context, pt geo.Point) ([]model.Official, error) {
	var out []model.Official
	for _, o := range d.officials {
		if o.AreaRange.Covers(pt) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (d *memDirectory) UsersWithin(_ context.Context, pt geo.Point, radiusM float64, exclude uuid.UUID) ([]model.User, error) {
	var out []model.User
	for _, u := range d.users {
		if u.ID == exclude || u.Location == nil {
			continue
		}
		if geo.WithinRadius(pt, *u.Location, radiusM) {
			out = append(out, u)
		}
	}
	return out, nil
}

type memAssignments struct {
	bindings map[uuid.UUID]map[uuid.UUID]struct{}
}

func (a *memAssignments) AddAssignment(_ context.Context, officialID, issueID uuid.UUID) error {
	if a.bindings == nil {
		a.bindings = map[uuid.UUID]map[uuid.UUID]struct{}{}
	}
	if a.bindings[officialID] == nil {
		a.bindings[officialID] = map[uuid.UUID]struct{}{}
	}
	a.bindings[officialID][issueID] = struct{}{}
	return nil
}

type recordedNote struct {
	userID uuid.UUID
	title  string
	screen string
}

type memNotifier struct {
	notes []recordedNote
}

func (n *memNotifier) Notify(_ context.Context, userID uuid.UUID, title, _, screen, _ string) error {
	n.notes = append(n.notes, recordedNote{userID: userID, title: title, screen: screen})
	return nil
}

func officialCovering(minLat, minLon, maxLat, maxLon float64) model.Official {
	return model.Official{
		ID:     uuid.New(),
		UserID: uuid.New(),
		AreaRange: geo.NewPolygon(geo.Ring{
			{Lat: minLat, Lon: minLon},
			{Lat: minLat, Lon: maxLon},
			{Lat: maxLat, Lon: maxLon},
			{Lat: maxLat, Lon: minLon},
		}),
	}
}

func userAt(lat, lon float64) model.User {
	return model.User{ID: uuid.New(), Location: &geo.Point{Lat: lat, Lon: lon}}
}

func waterIssue() model.Issue {
	return model.Issue{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		Title:      "Broken water main",
		Categories: []string{"water"},
		Latitude:   24.86,
		Longitude:  67.00,
		Status:     status.Approved,
	}
}

func TestAssignSingleCoveringOfficial(t *testing.T) {
	official := officialCovering(24.85, 66.99, 24.87, 67.01)
	dir := &memDirectory{officials: []model.Official{official}}
	assignments := &memAssignments{}
	notifier := &memNotifier{}
	engine := New(dir, dir, assignments, notifier, 500)

	issue := waterIssue()
	res, err := engine.Assign(context.Background(), issue)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{official.ID}, res.AssignedOfficials)
	_, bound := assignments.bindings[official.ID][issue.ID]
	assert.True(t, bound, "issue must land in the official's assigned set")
	require.Len(t, notifier.notes, 1)
	assert.Equal(t, official.UserID, notifier.notes[0].userID)
}

func TestAssignZeroOfficialsStillAlertsResidents(t *testing.T) {
	reporter := userAt(24.8600, 67.0000)
	nearby := userAt(24.8610, 67.0000)   // ~110m away
	farAway := userAt(24.8700, 67.0000)  // ~1.1km away
	official := officialCovering(31, 74, 32, 75) // Lahore, does not cover Karachi

	dir := &memDirectory{
		officials: []model.Official{official},
		users:     []model.User{reporter, nearby, farAway},
	}
	assignments := &memAssignments{}
	notifier := &memNotifier{}
	engine := New(dir, dir, assignments, notifier, 500)

	issue := waterIssue()
	issue.UserID = reporter.ID
	res, err := engine.Assign(context.Background(), issue)
	require.NoError(t, err)

	assert.Empty(t, res.AssignedOfficials)
	assert.Empty(t, assignments.bindings)
	assert.Equal(t, 1, res.AlertedResidents)
	require.Len(t, notifier.notes, 1)
	assert.Equal(t, nearby.ID, notifier.notes[0].userID)
}

func TestAssignExcludesReporterFromAlerts(t *testing.T) {
	reporter := userAt(24.8600, 67.0000)
	dir := &memDirectory{users: []model.User{reporter}}
	notifier := &memNotifier{}
	engine := New(dir, dir, &memAssignments{}, notifier, 500)

	issue := waterIssue()
	issue.UserID = reporter.ID
	res, err := engine.Assign(context.Background(), issue)
	require.NoError(t, err)
	assert.Zero(t, res.AlertedResidents)
	assert.Empty(t, notifier.notes)
}

func TestAssignOfficialNotificationsComeFirst(t *testing.T) {
	official := officialCovering(24.85, 66.99, 24.87, 67.01)
	resident := userAt(24.8601, 67.0001)
	dir := &memDirectory{officials: []model.Official{official}, users: []model.User{resident}}
	notifier := &memNotifier{}
	engine := New(dir, dir, &memAssignments{}, notifier, 500)

	_, err := engine.Assign(context.Background(), waterIssue())
	require.NoError(t, err)

	require.Len(t, notifier.notes, 2)
	assert.Equal(t, official.UserID, notifier.notes[0].userID, "official before residents")
	assert.Equal(t, resident.ID, notifier.notes[1].userID)
	assert.Equal(t, "issueDetail", notifier.notes[1].screen)
}

func TestAssignBoundaryInclusive(t *testing.T) {
	official := officialCovering(24.85, 66.99, 24.87, 67.01)
	dir := &memDirectory{officials: []model.Official{official}}
	engine := New(dir, dir, &memAssignments{}, &memNotifier{}, 500)

	issue := waterIssue()
	issue.Latitude = 24.85 // on the southern edge
	res, err := engine.Assign(context.Background(), issue)
	require.NoError(t, err)
	assert.Len(t, res.AssignedOfficials, 1)
}

func TestAssignIdempotentRebinding(t *testing.T) {
	official := officialCovering(24.85, 66.99, 24.87, 67.01)
	dir := &memDirectory{officials: []model.Official{official}}
	assignments := &memAssignments{}
	engine := New(dir, dir, assignments, &memNotifier{}, 500)

	issue := waterIssue()
	_, err := engine.Assign(context.Background(), issue)
	require.NoError(t, err)
	_, err = engine.Assign(context.Background(), issue)
	require.NoError(t, err)

	assert.Len(t, assignments.bindings[official.ID], 1)
}
