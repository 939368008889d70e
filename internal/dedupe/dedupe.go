// Package dedupe rejects near-duplicate reports before they are written.
package dedupe

import (
	"context"

	"github.com/reportit/reportit_api/internal/geo"
	"github.com/reportit/reportit_api/internal/model"
)

// DefaultRadiusM is the spatial threshold under which two issues of
// overlapping category are considered the same report.
const DefaultRadiusM = 100.0

// IssueFinder returns candidate issues near a point. Implementations may
// pre-filter by category; the detector re-applies the overlap policy so that
// coarse finders stay correct.
type IssueFinder interface {
	IssuesNear(ctx context.Context, pt geo.Point, radiusM float64, categories []string) ([]model.Issue, error)
}

// DuplicateError carries the existing issue so the caller can surface it and
// let the reporter decide whether to proceed.
type DuplicateError struct {
	Existing  model.Issue
	DistanceM float64
}

func (e *DuplicateError) Error() string {
	return "a matching issue already exists within the duplicate radius"
}

type Detector struct {
	Issues  IssueFinder
	RadiusM float64
}

func New(issues IssueFinder, radiusM float64) *Detector {
	if radiusM <= 0 {
		radiusM = DefaultRadiusM
	}
	return &Detector{Issues: issues, RadiusM: radiusM}
}

// FindDuplicate returns the nearest issue within the radius that shares at
// least one category with the proposed report, or nil when the report is
// novel. Category matching is any-overlap: the source wavered between
// exact-list and first-category matching, and overlap is the one policy that
// subsumes both without surprising reporters.
func (d *Detector) FindDuplicate(ctx context.Context, pt geo.Point, categories []string) (*DuplicateError, error) {
	candidates, err := d.Issues.IssuesNear(ctx, pt, d.RadiusM, categories)
	if err != nil {
		return nil, err
	}

	var nearest *model.Issue
	nearestDist := d.RadiusM
	for i := range candidates {
		c := &candidates[i]
		if !categoryOverlap(c.Categories, categories) {
			continue
		}
		dist := geo.Distance(pt, c.Location())
		if dist <= nearestDist {
			nearest = c
			nearestDist = dist
		}
	}
	if nearest == nil {
		return nil, nil
	}
	return &DuplicateError{Existing: *nearest, DistanceM: nearestDist}, nil
}

func categoryOverlap(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, c := range a {
		set[c] = struct{}{}
	}
	for _, c := range b {
		if _, ok := set[c]; ok {
			return true
		}
	}
	return false
}
