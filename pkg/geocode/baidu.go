package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const baiduGeocodeURL = "https://api.map.baidu.com/geocoding/v3/"

// baiduPayload is the JSON envelope returned by the Baidu geocoding API.
// Error responses carry the human-readable reason in either "message" or
// "msg" depending on the error class.
type baiduPayload struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Msg     string          `json:"msg"`
	Result  json.RawMessage `json:"result"`
}

type baiduResult struct {
	Location *struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
	FormattedAddress string `json:"formatted_address"`
	Level            string `json:"level"`
}

// Baidu implements Service against the Baidu Maps geocoding API.
type Baidu struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// BaiduOption configures the Baidu service.
type BaiduOption func(*Baidu)

// WithHTTPClient sets a custom HTTP client, including its timeout.
func WithHTTPClient(hc *http.Client) BaiduOption {
	return func(b *Baidu) { b.httpClient = hc }
}

// WithEndpoint overrides the provider endpoint URL.
func WithEndpoint(u string) BaiduOption {
	return func(b *Baidu) { b.endpoint = u }
}

// WithRequestDelay sets the minimum spacing between consecutive provider
// calls in a batch. Zero or negative disables the delay.
func WithRequestDelay(d time.Duration) BaiduOption {
	return func(b *Baidu) {
		if d > 0 {
			b.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// NewBaidu creates a Baidu geocoding service. The API key is required;
// missing configuration is reported here rather than per call.
func NewBaidu(apiKey string, opts ...BaiduOption) (*Baidu, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, eris.Wrap(ErrServiceConfiguration, "baidu: api key is required")
	}

	b := &Baidu{
		apiKey:     apiKey,
		endpoint:   baiduGeocodeURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Name implements Service.
func (b *Baidu) Name() string { return "baidu" }

// GetLocationInfo implements Service. Transport faults map to
// NETWORK_ERROR, provider rejections and unparseable payloads to
// PROVIDER_ERROR, and an answered-but-empty response to NOT_FOUND.
func (b *Baidu) GetLocationInfo(ctx context.Context, location string) Result {
	if strings.TrimSpace(location) == "" {
		return Result{Status: StatusNotFound, ErrorMessage: "empty location"}
	}

	params := url.Values{
		"address": {location},
		"output":  {"json"},
		"ak":      {b.apiKey},
	}

	reqURL := b.endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Result{Status: StatusNetworkError, ErrorMessage: fmt.Sprintf("build request: %v", err)}
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return Result{Status: StatusNetworkError, ErrorMessage: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Status: StatusNetworkError, ErrorMessage: fmt.Sprintf("read response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return Result{
			Status:       StatusProviderError,
			Raw:          body,
			ErrorMessage: fmt.Sprintf("provider returned http status %d", resp.StatusCode),
		}
	}

	var payload baiduPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Result{
			Status:       StatusProviderError,
			Raw:          body,
			ErrorMessage: fmt.Sprintf("malformed provider response: %v", err),
		}
	}

	if payload.Status != 0 {
		return Result{
			Status:       StatusProviderError,
			Raw:          body,
			ErrorMessage: fmt.Sprintf("provider status %d: %s", payload.Status, baiduMessage(payload)),
		}
	}

	var res baiduResult
	if len(payload.Result) == 0 || string(payload.Result) == "null" {
		return Result{Status: StatusNotFound, Raw: body, ErrorMessage: "no result for location"}
	}
	if err := json.Unmarshal(payload.Result, &res); err != nil {
		return Result{
			Status:       StatusProviderError,
			Raw:          body,
			ErrorMessage: fmt.Sprintf("malformed provider result: %v", err),
		}
	}
	if res.Location == nil {
		return Result{Status: StatusNotFound, Raw: body, ErrorMessage: "no result for location"}
	}

	return Result{
		Status:           StatusOK,
		Latitude:         res.Location.Lat,
		Longitude:        res.Location.Lng,
		FormattedAddress: res.FormattedAddress,
		Raw:              body,
	}
}

// BatchGeocode implements Service. The limiter enforces the request delay:
// the first call passes immediately, each subsequent call waits out the
// remaining spacing, and nothing waits after the last call. The limiter is
// shared across batches, so the spacing also holds across chunk boundaries.
func (b *Baidu) BatchGeocode(ctx context.Context, queries []Query) []Result {
	results := make([]Result, 0, len(queries))
	for _, q := range queries {
		if err := b.limiter.Wait(ctx); err != nil {
			r := Result{
				Row:          q.Row,
				Status:       StatusNetworkError,
				ErrorMessage: fmt.Sprintf("rate limit wait: %v", err),
			}
			results = append(results, r)
			continue
		}

		r := b.GetLocationInfo(ctx, q.Location)
		r.Row = q.Row
		results = append(results, r)

		if r.OK() {
			zap.L().Info("geocoded location",
				zap.String("provider", b.Name()),
				zap.Int("row", q.Row),
				zap.String("location", q.Location),
			)
		} else {
			zap.L().Warn("geocode failed",
				zap.String("provider", b.Name()),
				zap.Int("row", q.Row),
				zap.String("location", q.Location),
				zap.String("status", string(r.Status)),
				zap.String("reason", r.ErrorMessage),
			)
		}
	}
	return results
}

func baiduMessage(p baiduPayload) string {
	if p.Message != "" {
		return p.Message
	}
	if p.Msg != "" {
		return p.Msg
	}
	return "unknown"
}
