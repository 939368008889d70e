package dedupe

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportit/reportit_api/internal/geo"
	"github.com/reportit/reportit_api/internal/model"
)

// memFinder filters by radius only, leaving category policy to the detector.
type memFinder struct {
	issues []model.Issue
}

func (f *memFinder) IssuesNear(_ context.Context, pt geo.Point, radiusM float64, _ []string) ([]model.Issue, error) {
	var out []model.Issue
	for _, i := range f.issues {
		if geo.WithinRadius(pt, i.Location(), radiusM) {
			out = append(out, i)
		}
	}
	return out, nil
}

func issueAt(lat, lon float64, categories ...string) model.Issue {
	return model.Issue{
		ID:         uuid.New(),
		Title:      "existing",
		Categories: categories,
		Latitude:   lat,
		Longitude:  lon,
	}
}

func TestFindDuplicateWithinRadius(t *testing.T) {
	existing := issueAt(24.8600, 67.0000, "water")
	det := New(&memFinder{issues: []model.Issue{existing}}, 100)

	// ~55m north of the existing report.
	dup, err := det.FindDuplicate(context.Background(), geo.Point{Lat: 24.8605, Lon: 67.0000}, []string{"water"})
	require.NoError(t, err)
	require.NotNil(t, dup)
	assert.Equal(t, existing.ID, dup.Existing.ID)
	assert.InDelta(t, 55, dup.DistanceM, 10)
}

func TestFindDuplicateOutsideRadius(t *testing.T) {
	det := New(&memFinder{issues: []model.Issue{issueAt(24.8600, 67.0000, "water")}}, 100)

	// ~1.1km away: same category, too far.
	dup, err := det.FindDuplicate(context.Background(), geo.Point{Lat: 24.8700, Lon: 67.0000}, []string{"water"})
	require.NoError(t, err)
	assert.Nil(t, dup)
}

func TestFindDuplicateCategoryOverlap(t *testing.T) {
	det := New(&memFinder{issues: []model.Issue{issueAt(24.8600, 67.0000, "water", "sewerage")}}, 100)
	pt := geo.Point{Lat: 24.8601, Lon: 67.0001}

	dup, err := det.FindDuplicate(context.Background(), pt, []string{"sewerage", "public_health"})
	require.NoError(t, err)
	assert.NotNil(t, dup, "any shared category is a duplicate")

	dup, err = det.FindDuplicate(context.Background(), pt, []string{"roads_potholes"})
	require.NoError(t, err)
	assert.Nil(t, dup, "disjoint categories are not duplicates")
}

func TestFindDuplicateReturnsNearest(t *testing.T) {
	far := issueAt(24.8606, 67.0000, "water")
	near := issueAt(24.8601, 67.0000, "water")
	det := New(&memFinder{issues: []model.Issue{far, near}}, 100)

	dup, err := det.FindDuplicate(context.Background(), geo.Point{Lat: 24.8600, Lon: 67.0000}, []string{"water"})
	require.NoError(t, err)
	require.NotNil(t, dup)
	assert.Equal(t, near.ID, dup.Existing.ID)
}
