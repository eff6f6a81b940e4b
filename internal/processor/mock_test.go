package processor

import (
	"context"

	"github.com/geospyder/geospyder/pkg/geocode"
)

// mockService is a deterministic in-memory geocode.Service. It records how
// many provider calls happened and the size of every batch it received.
type mockService struct {
	calls   int
	batches []int
	lookup  func(location string) geocode.Result
}

func newMockService() *mockService {
	return &mockService{lookup: cityLookup}
}

func cityLookup(location string) geocode.Result {
	switch location {
	case "Beijing":
		return geocode.Result{Status: geocode.StatusOK, Latitude: 39.9042, Longitude: 116.4074, FormattedAddress: "Beijing, China"}
	case "Shanghai":
		return geocode.Result{Status: geocode.StatusOK, Latitude: 31.2304, Longitude: 121.4737, FormattedAddress: "Shanghai, China"}
	case "unreachable":
		return geocode.Result{Status: geocode.StatusNetworkError, ErrorMessage: "request failed: connection refused"}
	case "":
		return geocode.Result{Status: geocode.StatusNotFound, ErrorMessage: "empty location"}
	default:
		return geocode.Result{Status: geocode.StatusNotFound, ErrorMessage: "no result for location"}
	}
}

func (m *mockService) Name() string { return "mock" }

func (m *mockService) GetLocationInfo(_ context.Context, location string) geocode.Result {
	m.calls++
	return m.lookup(location)
}

func (m *mockService) BatchGeocode(ctx context.Context, queries []geocode.Query) []geocode.Result {
	m.batches = append(m.batches, len(queries))
	results := make([]geocode.Result, 0, len(queries))
	for _, q := range queries {
		r := m.GetLocationInfo(ctx, q.Location)
		r.Row = q.Row
		results = append(results, r)
	}
	return results
}
