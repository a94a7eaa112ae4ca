package search

import (
	"context"
	"fmt"
	"time"

	"icarus-bknd/internal/models"

	"go.uber.org/zap"
)

// DistanceMatrix computes travel distances from one origin to many destinations in a single call.
type DistanceMatrix interface {
	// Distances returns one entry per destination, in order. A nil entry means no
	// distance could be computed for that destination.
	Distances(ctx context.Context, origin models.Point, destinations []models.Point) ([]*string, error)
}

// Annotator decorates every address of a result page with its distance from the origin.
// It never fails the search: a broken or slow matrix leaves the page unannotated.
type Annotator struct {
	matrix  DistanceMatrix
	timeout time.Duration
	logr    *zap.Logger
}

func NewAnnotator(matrix DistanceMatrix, timeout time.Duration, logr *zap.Logger) *Annotator {
	return &Annotator{matrix: matrix, timeout: timeout, logr: logr}
}

// Annotate reports whether distances were applied.
func (a *Annotator) Annotate(ctx context.Context, origin models.Point, page []*models.User) bool {
	if a == nil || a.matrix == nil {
		return false
	}

	// dests[i] is the point of addrs[i].
	var addrs []*models.Address
	var dests []models.Point
	for _, u := range page {
		if u == nil || u.Provider == nil {
			continue
		}
		for _, addr := range u.Provider.Addresses {
			addrs = append(addrs, addr)
			dests = append(dests, addr.Point())
		}
	}
	if len(dests) == 0 {
		return false
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	distances, err := a.matrix.Distances(ctx, origin, dests)
	if err == nil && len(distances) != len(dests) {
		err = fmt.Errorf("distance matrix returned %d elements for %d destinations", len(distances), len(dests))
	}
	if err != nil {
		a.logr.Warn("distance annotation skipped", zap.Error(err), zap.Int("destinations", len(dests)))
		return false
	}

	for i, d := range distances {
		addrs[i].Distance = d
	}
	return true
}
