package search

import (
	"context"

	"icarus-bknd/internal/models"
)

// GeoIndex answers radius membership over the persisted practice addresses.
type GeoIndex interface {
	// UsersWithin returns the distinct owners of addresses at most radiusMeters from origin.
	UsersWithin(ctx context.Context, origin models.Point, radiusMeters int) ([]int64, error)
}

// CandidateRanker narrows candidates to discoverable providers of a specialty and orders them.
type CandidateRanker interface {
	// RankCandidates returns each qualifying provider once. Under SortByDistance the rank is the
	// nearest of its addresses inside the radius, under SortByWait the consultation wait with
	// nulls last. Ties go to the lower id.
	RankCandidates(ctx context.Context, req RankRequest) ([]int64, error)
}

type RankRequest struct {
	SpecialtyID  int64
	Candidates   []int64
	Origin       models.Point
	RadiusMeters int
	Sort         SortKey
}

// FilterStore evaluates the optional predicates of a Criteria.
type FilterStore interface {
	// MatchingIDs returns the members of ids satisfying every predicate set on c, in no particular order.
	MatchingIDs(ctx context.Context, ids []int64, c *Criteria) ([]int64, error)
}

// ProfileLoader materializes full provider profiles.
type ProfileLoader interface {
	// LoadProfiles returns the accounts for ids with their provider profile, addresses ordered by id.
	LoadProfiles(ctx context.Context, ids []int64) ([]*models.User, error)
}

// AccountLookup resolves the calling account.
type AccountLookup interface {
	// AccountByUUID returns the account with its provider addresses, or a NOT_FOUND error.
	AccountByUUID(ctx context.Context, userUUID string) (*models.User, error)
}

// SpecialtyLookup loads specialty metadata for display.
type SpecialtyLookup interface {
	// Specialty returns nil without error when id is unknown.
	Specialty(ctx context.Context, id int64) (*models.Specialty, error)
}

// Store is everything the search service reads.
type Store interface {
	GeoIndex
	CandidateRanker
	FilterStore
	ProfileLoader
	AccountLookup
	SpecialtyLookup
}
