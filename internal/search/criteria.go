// Package search finds verified providers of a specialty around a point, ranks them by
// distance or consultation wait, filters, pages and annotates the page with travel distances.
package search

import (
	"errors"
	"fmt"

	"icarus-bknd/internal/apperrors"
	"icarus-bknd/internal/models"
)

// PageSize is fixed; clients page through results six at a time.
const PageSize = 6

// SortKey selects the ranking of the candidate set.
type SortKey string

const (
	SortByDistance SortKey = "dist"
	SortByWait     SortKey = "wait"
)

var ErrInvalidSortKey = errors.New("invalid sort key")

// ParseSortKey accepts the two path values the API has always used plus "distance".
func ParseSortKey(s string) (SortKey, error) {
	switch s {
	case "dist", "distance":
		return SortByDistance, nil
	case "wait":
		return SortByWait, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSortKey, s)
}

// Criteria is one resolved search request. Zero values of the optional
// fields mean the predicate is not applied.
type Criteria struct {
	SpecialtyID  int64
	RadiusMeters int
	// Origin is nil when the caller's own first address should be used.
	Origin *models.Point
	Sort   SortKey
	// Page is 1-based.
	Page int

	Name                 string
	LanguageIDs          []int64
	DesignationIDs       []int64
	WheelchairAccessible bool
	AcceptingNewPatients bool
}

// HasFilters reports whether any optional predicate is set.
func (c *Criteria) HasFilters() bool {
	return c.Name != "" || len(c.LanguageIDs) > 0 || len(c.DesignationIDs) > 0 ||
		c.WheelchairAccessible || c.AcceptingNewPatients
}

// Validate checks the required fields. Page is not checked: out of range pages yield empty results.
func (c *Criteria) Validate() error {
	if c.SpecialtyID <= 0 {
		return apperrors.InvalidCriteria("specialty_id", "specialty id must be a positive integer")
	}
	if c.RadiusMeters <= 0 {
		return apperrors.InvalidCriteria("radius", "radius must be a positive number of meters")
	}
	if c.Sort != SortByDistance && c.Sort != SortByWait {
		return apperrors.InvalidCriteriaWrap("sort_by", "sort_by must be dist or wait", ErrInvalidSortKey)
	}
	if c.Origin != nil && !c.Origin.Valid() {
		return apperrors.InvalidCriteria("lat", "lat must be within [-90, 90] and lon within [-180, 180]")
	}
	return nil
}
