package search

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"icarus-bknd/internal/apperrors"
	"icarus-bknd/internal/database"
	"icarus-bknd/internal/models"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// PGStore runs the search stages against PostGIS. Distances use the geography type,
// so membership (ST_DWithin) and ranking (ST_Distance) share one spheroid model.
type PGStore struct {
	db *bun.DB
}

// NewPGStore returns a store reading through db.
func NewPGStore(db *bun.DB) *PGStore {
	return &PGStore{db: db}
}

func geography(p models.Point) schema.QueryWithArgs {
	return schema.SafeQuery("ST_SetSRID(ST_MakePoint(?, ?), 4326)::geography", []interface{}{p.Longitude, p.Latitude})
}

// UsersWithin returns the owners of addresses within radiusMeters of origin, boundary included.
func (s *PGStore) UsersWithin(ctx context.Context, origin models.Point, radiusMeters int) ([]int64, error) {
	var ids []int64
	err := s.db.NewSelect().
		TableExpr("addresses AS a").
		ColumnExpr("DISTINCT a.user_id").
		Where("ST_DWithin(a.geo, ?, ?)", geography(origin), radiusMeters).
		Scan(ctx, &ids)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// RankCandidates keeps the discoverable providers of the specialty and orders them by req.Sort.
func (s *PGStore) RankCandidates(ctx context.Context, req RankRequest) ([]int64, error) {
	if len(req.Candidates) == 0 {
		return nil, nil
	}

	q := s.db.NewSelect().
		TableExpr("providers AS p").
		ColumnExpr("p.user_id").
		Join("JOIN users AS u ON u.id = p.user_id").
		Where("p.specialty_id = ?", req.SpecialtyID).
		Where("u.user_type = ?", models.UserTypePublicProvider).
		Where("u.is_verified_professional").
		Where("p.user_id IN (?)", bun.In(req.Candidates))

	switch req.Sort {
	case SortByDistance:
		origin := geography(req.Origin)
		q = q.Join("JOIN addresses AS a ON a.user_id = p.user_id").
			Where("ST_DWithin(a.geo, ?, ?)", origin, req.RadiusMeters).
			GroupExpr("p.user_id").
			OrderExpr("MIN(ST_Distance(a.geo, ?)) ASC, p.user_id ASC", origin)
	case SortByWait:
		q = q.OrderExpr("p.consultation_wait ASC NULLS LAST, p.user_id ASC")
	default:
		return nil, apperrors.InvalidCriteriaWrap("sort_by", "sort_by must be dist or wait", ErrInvalidSortKey)
	}

	var ids []int64
	if err := q.Scan(ctx, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// MatchingIDs returns the ids satisfying every optional predicate set on c.
func (s *PGStore) MatchingIDs(ctx context.Context, ids []int64, c *Criteria) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	q := s.db.NewSelect().
		TableExpr("providers AS p").
		ColumnExpr("p.user_id").
		Join("JOIN users AS u ON u.id = p.user_id").
		Where("p.user_id IN (?)", bun.In(ids))

	if c.Name != "" {
		q = q.Where("u.name ILIKE ?", "%"+escapeLike(c.Name)+"%")
	}
	if len(c.LanguageIDs) > 0 {
		q = q.Where("EXISTS (SELECT 1 FROM providers_to_languages AS pl WHERE pl.provider_id = p.user_id AND pl.language_id IN (?))",
			bun.In(c.LanguageIDs))
	}
	if len(c.DesignationIDs) > 0 {
		q = q.Where("EXISTS (SELECT 1 FROM providers_to_designations AS pd WHERE pd.provider_id = p.user_id AND pd.designation_id IN (?))",
			bun.In(c.DesignationIDs))
	}
	if c.WheelchairAccessible {
		q = q.Where("EXISTS (SELECT 1 FROM addresses AS wa WHERE wa.user_id = p.user_id AND wa.is_wheelchair_accessible)")
	}
	if c.AcceptingNewPatients {
		q = q.Where("EXISTS (SELECT 1 FROM addresses AS na WHERE na.user_id = p.user_id AND na.is_accepting_new_patients)")
	}

	var out []int64
	if err := q.Scan(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadProfiles loads full provider profiles for ids, in no particular order.
func (s *PGStore) LoadProfiles(ctx context.Context, ids []int64) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var users []*models.User
	err := database.WithProfile(s.db.NewSelect().Model(&users)).
		Where("u.id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// AccountByUUID loads the caller with its practice addresses.
func (s *PGStore) AccountByUUID(ctx context.Context, userUUID string) (*models.User, error) {
	var u models.User
	err := s.db.NewSelect().
		Model(&u).
		Relation("Provider").
		Relation("Provider.Addresses", database.OrderByID("a")).
		Where("u.uuid = ?", userUUID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("account not found")
		}
		return nil, err
	}
	return &u, nil
}

// Specialty returns nil when id is unknown.
func (s *PGStore) Specialty(ctx context.Context, id int64) (*models.Specialty, error) {
	var sp models.Specialty
	err := s.db.NewSelect().Model(&sp).Where("sp.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &sp, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
