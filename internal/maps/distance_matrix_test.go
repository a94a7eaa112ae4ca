package maps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"icarus-bknd/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var origin = models.Point{Latitude: 43.65, Longitude: -79.38}

func TestDistances_BuildsOneBatchedRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		q := r.URL.Query()
		assert.Equal(t, "metric", q.Get("units"))
		assert.Equal(t, "43.65,-79.38", q.Get("origins"))
		assert.Equal(t, "43.7,-79.4|43.66,-79.39|44,-79", q.Get("destinations"))
		assert.Equal(t, "test-key", q.Get("key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"rows": [{"elements": [
				{"status": "OK", "distance": {"text": "6.1 km", "value": 6100}},
				{"status": "ZERO_RESULTS"},
				{"status": "OK", "distance": {"text": "41.0 km", "value": 41000}}
			]}]
		}`))
	}))
	defer srv.Close()

	client := NewDistanceMatrixClient("test-key", srv.URL, srv.Client())
	got, err := client.Distances(context.Background(), origin, []models.Point{
		{Latitude: 43.7, Longitude: -79.4},
		{Latitude: 43.66, Longitude: -79.39},
		{Latitude: 44, Longitude: -79},
	})

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "6.1 km", *got[0])
	assert.Nil(t, got[1])
	assert.Equal(t, "41.0 km", *got[2])
	assert.Equal(t, int32(1), calls.Load())
}

func TestDistances_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"http 500", http.StatusInternalServerError, `oops`, "status 500"},
		{"api status", http.StatusOK, `{"status": "REQUEST_DENIED", "error_message": "bad key"}`, "REQUEST_DENIED - bad key"},
		{"malformed body", http.StatusOK, `{"status":`, "decode"},
		{"element count mismatch", http.StatusOK, `{"status": "OK", "rows": [{"elements": []}]}`, "0 elements for 1 destinations"},
		{"no rows", http.StatusOK, `{"status": "OK", "rows": []}`, "no rows"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewDistanceMatrixClient("k", srv.URL, srv.Client())
			_, err := client.Distances(context.Background(), origin, []models.Point{{Latitude: 1, Longitude: 2}})

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDistances_RespectsContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewDistanceMatrixClient("k", srv.URL, srv.Client())
	_, err := client.Distances(ctx, origin, []models.Point{{Latitude: 1, Longitude: 2}})

	assert.Error(t, err)
}

func TestDistances_RequiresKey(t *testing.T) {
	client := NewDistanceMatrixClient("", "", nil)
	_, err := client.Distances(context.Background(), origin, []models.Point{{Latitude: 1, Longitude: 2}})
	assert.ErrorContains(t, err, "api key")
}
