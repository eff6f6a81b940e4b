// Package geocode resolves free-text location strings into structured
// coordinates via a remote geocoding provider (currently Baidu Maps).
package geocode

import (
	"context"
	"encoding/json"
	"errors"
)

// Status classifies the outcome of one geocode call.
type Status string

const (
	// StatusOK means the provider resolved the location.
	StatusOK Status = "OK"
	// StatusNotFound means the provider answered but had no match.
	StatusNotFound Status = "NOT_FOUND"
	// StatusProviderError means the provider rejected the call or returned
	// an unparseable payload.
	StatusProviderError Status = "PROVIDER_ERROR"
	// StatusNetworkError means the call never produced a provider answer
	// (timeout, connection failure, cancellation).
	StatusNetworkError Status = "NETWORK_ERROR"
)

// ErrServiceConfiguration marks a provider constructed with unusable
// settings, e.g. an empty API key. It surfaces synchronously from the
// constructor; it is never encoded into a Result.
var ErrServiceConfiguration = errors.New("geocode: invalid service configuration")

// Query is one location string to geocode, tagged with the input table row it
// came from so results can be re-aligned after batching.
type Query struct {
	Row      int
	Location string
}

// Result is the normalized outcome for one Query. Latitude, Longitude and
// FormattedAddress are populated only when Status is StatusOK; ErrorMessage
// only when it is not. Raw carries the provider's response body verbatim.
type Result struct {
	Row              int
	Status           Status
	Latitude         float64
	Longitude        float64
	FormattedAddress string
	Raw              json.RawMessage
	ErrorMessage     string
}

// OK reports whether the query resolved successfully.
func (r Result) OK() bool { return r.Status == StatusOK }

// Service is the capability contract a geocoding provider satisfies. Expected
// failures (unresolvable location, provider error codes, transport faults)
// never surface as errors from these methods; they are encoded in the
// Result's Status and ErrorMessage.
type Service interface {
	// Name identifies the provider in logs.
	Name() string

	// GetLocationInfo geocodes a single location string.
	GetLocationInfo(ctx context.Context, location string) Result

	// BatchGeocode geocodes queries sequentially in input order, pausing for
	// the configured request delay between consecutive provider calls and
	// not after the last. The returned slice has exactly one Result per
	// Query, in the same order, regardless of individual failures.
	BatchGeocode(ctx context.Context, queries []Query) []Result
}
