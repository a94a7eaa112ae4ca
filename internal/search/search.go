package search

import (
	"context"
	"errors"
	"time"

	"icarus-bknd/internal/apperrors"
	"icarus-bknd/internal/models"

	"go.uber.org/zap"
)

// NotVerifiedMessage is returned to callers that are not verified professionals.
const NotVerifiedMessage = "To protect our users privacy, you must first verify that you are a doctor to use the " +
	"Icarus Medical Network. Please verify that you are a doctor by contacting support@icarusmed.com."

// Result is one page of providers plus the size of the whole filtered set.
type Result struct {
	Specialists    []*models.User    `json:"specialists"`
	NumSpecialists int               `json:"numSpecialists"`
	Specialty      *models.Specialty `json:"specialty"`
}

type Service struct {
	store     Store
	annotator *Annotator
	logr      *zap.Logger
}

func NewService(store Store, annotator *Annotator, logr *zap.Logger) *Service {
	return &Service{store: store, annotator: annotator, logr: logr}
}

// Search runs membership, ranking, filtering, paging and annotation for the caller.
func (s *Service) Search(ctx context.Context, callerUUID string, c Criteria) (*Result, error) {
	start := time.Now()

	if err := c.Validate(); err != nil {
		return nil, err
	}

	caller, err := s.store.AccountByUUID(ctx, callerUUID)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, apperrors.Unauthenticated("Invalid access credentials.")
		}
		return nil, storeErr(err)
	}
	if !caller.IsVerifiedProfessional {
		return nil, apperrors.Forbidden(NotVerifiedMessage)
	}

	origin, err := resolveOrigin(&c, caller)
	if err != nil {
		return nil, err
	}

	ids, total, err := s.rank(ctx, origin, &c)
	if err != nil {
		return nil, err
	}

	specialists := make([]*models.User, 0, len(ids))
	if len(ids) > 0 {
		profiles, err := s.store.LoadProfiles(ctx, ids)
		if err != nil {
			return nil, storeErr(err)
		}
		specialists = inOrder(ids, profiles)
		s.annotator.Annotate(ctx, origin, specialists)
	}

	specialty, err := s.store.Specialty(ctx, c.SpecialtyID)
	if err != nil {
		return nil, storeErr(err)
	}
	if specialty == nil {
		specialty = &models.Specialty{}
	}

	s.logr.Debug("search completed",
		zap.Int64("specialty_id", c.SpecialtyID),
		zap.Int("radius", c.RadiusMeters),
		zap.String("sort", string(c.Sort)),
		zap.Int("page", c.Page),
		zap.Int("total", total),
		zap.Duration("took", time.Since(start)))

	return &Result{
		Specialists:    specialists,
		NumSpecialists: total,
		Specialty:      specialty,
	}, nil
}

// rank returns the ids on the requested page and the size of the filtered set.
func (s *Service) rank(ctx context.Context, origin models.Point, c *Criteria) ([]int64, int, error) {
	members, err := s.store.UsersWithin(ctx, origin, c.RadiusMeters)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	if len(members) == 0 {
		return nil, 0, nil
	}

	ranked, err := s.store.RankCandidates(ctx, RankRequest{
		SpecialtyID:  c.SpecialtyID,
		Candidates:   members,
		Origin:       origin,
		RadiusMeters: c.RadiusMeters,
		Sort:         c.Sort,
	})
	if err != nil {
		return nil, 0, storeErr(err)
	}
	ranked = dedupe(ranked)

	if c.HasFilters() && len(ranked) > 0 {
		matching, err := s.store.MatchingIDs(ctx, ranked, c)
		if err != nil {
			return nil, 0, storeErr(err)
		}
		ranked = keepOrder(ranked, matching)
	}

	page, total := Paginate(ranked, c.Page, PageSize)
	return page, total, nil
}

// resolveOrigin prefers the explicit point and falls back to the caller's first address.
func resolveOrigin(c *Criteria, caller *models.User) (models.Point, error) {
	if c.Origin != nil {
		return *c.Origin, nil
	}
	if addr := caller.FirstAddress(); addr != nil {
		return addr.Point(), nil
	}
	return models.Point{}, apperrors.InvalidCriteria("lat",
		"a search origin is required: pass lat and lon or register a practice address")
}

// inOrder arranges profiles in the order of ids, dropping ids that vanished meanwhile.
func inOrder(ids []int64, profiles []*models.User) []*models.User {
	byID := make(map[int64]*models.User, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}
	out := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

func storeErr(err error) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.StoreUnavailable("search is temporarily unavailable", err)
}
