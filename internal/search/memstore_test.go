package search

import (
	"context"
	"math"
	"sort"
	"strings"

	"icarus-bknd/internal/apperrors"
	"icarus-bknd/internal/models"

	"github.com/google/uuid"
)

const earthRadiusMeters = 6371008.8

func haversine(a, b models.Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// memStore is an in-memory Store using the haversine model for both membership and ranking.
type memStore struct {
	users       []*models.User
	specialties map[int64]*models.Specialty
	distance    func(a, b models.Point) float64

	withinErr  error
	rankCalls  int
	loadCalls  int
	loadedIDs  []int64
	filterErr  error
	rankResult []int64
}

func newMemStore() *memStore {
	return &memStore{
		specialties: map[int64]*models.Specialty{1: {ID: 1, Name: "Cardiology"}},
		distance:    haversine,
	}
}

type providerOpt func(u *models.User)

func withWait(w float64) providerOpt {
	return func(u *models.User) { u.Provider.ConsultationWait = &w }
}

func withLanguages(ids ...int64) providerOpt {
	return func(u *models.User) {
		for _, id := range ids {
			u.Provider.Languages = append(u.Provider.Languages, &models.Language{ID: id})
		}
	}
}

func withDesignations(ids ...int64) providerOpt {
	return func(u *models.User) {
		for _, id := range ids {
			u.Provider.Designations = append(u.Provider.Designations, &models.Designation{ID: id})
		}
	}
}

func withUserType(t int) providerOpt {
	return func(u *models.User) { u.UserType = &t }
}

func withSpecialty(id int64) providerOpt {
	return func(u *models.User) { u.Provider.SpecialtyID = &id }
}

func unverified() providerOpt {
	return func(u *models.User) { u.IsVerifiedProfessional = false }
}

type addrOpt struct {
	point      models.Point
	accessible bool
	accepting  bool
}

func at(lat, lon float64) addrOpt {
	return addrOpt{point: models.Point{Latitude: lat, Longitude: lon}}
}

func (a addrOpt) wheelchair() addrOpt { a.accessible = true; return a }
func (a addrOpt) acceptingPatients() addrOpt { a.accepting = true; return a }

var nextAddressID int64

// addProvider registers a verified, free, cardiology provider with the given addresses.
func (m *memStore) addProvider(id int64, name string, addrs []addrOpt, opts ...providerOpt) *models.User {
	ut := models.UserTypePublicProvider
	spec := int64(1)
	u := &models.User{
		ID:                     id,
		Name:                   name,
		UUID:                   uuid.New(),
		IsVerifiedProfessional: true,
		UserType:               &ut,
		Provider:               &models.Provider{UserID: id, SpecialtyID: &spec},
	}
	for _, a := range addrs {
		nextAddressID++
		u.Provider.Addresses = append(u.Provider.Addresses, &models.Address{
			ID:                     nextAddressID,
			UserID:                 id,
			Latitude:               a.point.Latitude,
			Longitude:              a.point.Longitude,
			IsWheelchairAccessible: a.accessible,
			IsAcceptingNewPatients: a.accepting,
		})
	}
	for _, opt := range opts {
		opt(u)
	}
	m.users = append(m.users, u)
	return u
}

func (m *memStore) UsersWithin(_ context.Context, origin models.Point, radiusMeters int) ([]int64, error) {
	if m.withinErr != nil {
		return nil, m.withinErr
	}
	var ids []int64
	for _, u := range m.users {
		if u.Provider == nil {
			continue
		}
		for _, a := range u.Provider.Addresses {
			if m.distance(origin, a.Point()) <= float64(radiusMeters) {
				ids = append(ids, u.ID)
				break
			}
		}
	}
	return ids, nil
}

func (m *memStore) RankCandidates(_ context.Context, req RankRequest) ([]int64, error) {
	m.rankCalls++
	if m.rankResult != nil {
		return m.rankResult, nil
	}

	candidates := make(map[int64]struct{}, len(req.Candidates))
	for _, id := range req.Candidates {
		candidates[id] = struct{}{}
	}

	type ranked struct {
		id   int64
		key  float64
		null bool
	}
	var rows []ranked
	for _, u := range m.users {
		if _, ok := candidates[u.ID]; !ok || !u.IsPubliclyDiscoverable() {
			continue
		}
		if u.Provider.SpecialtyID == nil || *u.Provider.SpecialtyID != req.SpecialtyID {
			continue
		}
		switch req.Sort {
		case SortByDistance:
			best := math.Inf(1)
			for _, a := range u.Provider.Addresses {
				d := m.distance(req.Origin, a.Point())
				if d <= float64(req.RadiusMeters) && d < best {
					best = d
				}
			}
			if math.IsInf(best, 1) {
				continue
			}
			rows = append(rows, ranked{id: u.ID, key: best})
		case SortByWait:
			r := ranked{id: u.ID, null: u.Provider.ConsultationWait == nil}
			if !r.null {
				r.key = *u.Provider.ConsultationWait
			}
			rows = append(rows, r)
		default:
			return nil, apperrors.InvalidCriteriaWrap("sort_by", "sort_by must be dist or wait", ErrInvalidSortKey)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].null != rows[j].null {
			return !rows[i].null
		}
		if rows[i].key != rows[j].key {
			return rows[i].key < rows[j].key
		}
		return rows[i].id < rows[j].id
	})

	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.id
	}
	return out, nil
}

func (m *memStore) MatchingIDs(_ context.Context, ids []int64, c *Criteria) ([]int64, error) {
	if m.filterErr != nil {
		return nil, m.filterErr
	}
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	var out []int64
	// reverse order so tests catch callers that rely on the store's order
	for i := len(m.users) - 1; i >= 0; i-- {
		u := m.users[i]
		if _, ok := want[u.ID]; !ok {
			continue
		}
		if c.Name != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(c.Name)) {
			continue
		}
		if len(c.LanguageIDs) > 0 && !anyLanguage(u.Provider.Languages, c.LanguageIDs) {
			continue
		}
		if len(c.DesignationIDs) > 0 && !anyDesignation(u.Provider.Designations, c.DesignationIDs) {
			continue
		}
		if c.WheelchairAccessible && !anyAddress(u.Provider.Addresses, func(a *models.Address) bool { return a.IsWheelchairAccessible }) {
			continue
		}
		if c.AcceptingNewPatients && !anyAddress(u.Provider.Addresses, func(a *models.Address) bool { return a.IsAcceptingNewPatients }) {
			continue
		}
		out = append(out, u.ID)
	}
	return out, nil
}

func anyLanguage(have []*models.Language, ids []int64) bool {
	for _, l := range have {
		for _, id := range ids {
			if l.ID == id {
				return true
			}
		}
	}
	return false
}

func anyDesignation(have []*models.Designation, ids []int64) bool {
	for _, d := range have {
		for _, id := range ids {
			if d.ID == id {
				return true
			}
		}
	}
	return false
}

func anyAddress(addrs []*models.Address, pred func(*models.Address) bool) bool {
	for _, a := range addrs {
		if pred(a) {
			return true
		}
	}
	return false
}

// LoadProfiles returns copies so annotations do not leak between searches.
func (m *memStore) LoadProfiles(_ context.Context, ids []int64) ([]*models.User, error) {
	m.loadCalls++
	m.loadedIDs = append([]int64(nil), ids...)

	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []*models.User
	for _, u := range m.users {
		if _, ok := want[u.ID]; !ok {
			continue
		}
		cp := *u
		prov := *u.Provider
		prov.Addresses = make([]*models.Address, len(u.Provider.Addresses))
		for i, a := range u.Provider.Addresses {
			ac := *a
			prov.Addresses[i] = &ac
		}
		cp.Provider = &prov
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memStore) AccountByUUID(_ context.Context, userUUID string) (*models.User, error) {
	for _, u := range m.users {
		if u.UUID.String() == userUUID {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("account not found")
}

func (m *memStore) Specialty(_ context.Context, id int64) (*models.Specialty, error) {
	return m.specialties[id], nil
}
