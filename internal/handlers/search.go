package handlers

import (
	"context"
	"net/http"
	"strconv"

	"icarus-bknd/internal/apperrors"
	"icarus-bknd/internal/models"
	"icarus-bknd/internal/search"
	"icarus-bknd/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Searcher interface {
	Search(ctx context.Context, callerUUID string, c search.Criteria) (*search.Result, error)
}

type SearchHandler struct {
	searcher Searcher
	logr     *zap.Logger
}

func NewSearchHandler(s Searcher, logr *zap.Logger) *SearchHandler {
	return &SearchHandler{searcher: s, logr: logr}
}

// GET /users/{specialtyID}&{radius}&{page}&{sortBy}
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	callerUUID, ok := caller(w, r)
	if !ok {
		return
	}

	c, err := criteriaFromRequest(r)
	if err != nil {
		writeError(w, h.logr, err)
		return
	}

	res, err := h.searcher.Search(r.Context(), callerUUID, c)
	if err != nil {
		writeError(w, h.logr, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func criteriaFromRequest(r *http.Request) (search.Criteria, error) {
	var c search.Criteria
	var err error

	if c.SpecialtyID, err = strconv.ParseInt(chi.URLParam(r, "specialtyID"), 10, 64); err != nil {
		return c, apperrors.InvalidCriteria("specialty_id", "specialty id must be an integer")
	}
	if c.RadiusMeters, err = strconv.Atoi(chi.URLParam(r, "radius")); err != nil {
		return c, apperrors.InvalidCriteria("radius", "radius must be an integer number of meters")
	}
	if c.Page, err = strconv.Atoi(chi.URLParam(r, "page")); err != nil {
		return c, apperrors.InvalidCriteria("page", "page must be an integer")
	}
	if c.Sort, err = search.ParseSortKey(chi.URLParam(r, "sortBy")); err != nil {
		return c, apperrors.InvalidCriteriaWrap("sort_by", "sort_by must be dist or wait", err)
	}

	q := r.URL.Query()
	if lat, lon := q.Get("lat"), q.Get("lon"); lat != "" && lon != "" {
		var p models.Point
		if p.Latitude, err = strconv.ParseFloat(lat, 64); err != nil {
			return c, apperrors.InvalidCriteria("lat", "lat must be a number")
		}
		if p.Longitude, err = strconv.ParseFloat(lon, 64); err != nil {
			return c, apperrors.InvalidCriteria("lon", "lon must be a number")
		}
		c.Origin = &p
	}

	c.Name = q.Get("name")
	if c.LanguageIDs, err = utils.ParseIntList(q, "language_ids"); err != nil {
		return c, apperrors.InvalidCriteria("language_ids", err.Error())
	}
	if c.DesignationIDs, err = utils.ParseIntList(q, "designation_ids"); err != nil {
		return c, apperrors.InvalidCriteria("designation_ids", err.Error())
	}
	c.WheelchairAccessible = utils.IsTrue(q, "is_wheelchair_accessible")
	c.AcceptingNewPatients = utils.IsTrue(q, "is_accepting_new_patients")

	return c, nil
}
