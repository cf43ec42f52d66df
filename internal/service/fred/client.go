package fred

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"MacroPulse/internal/domain/models"
	drepo "MacroPulse/internal/domain/repository"
	"MacroPulse/internal/service/ratelimit"
	phttp "MacroPulse/pkg/http"
	"MacroPulse/pkg/logger"
)

const (
	dateLayout = "2006-01-02"

	// ALFRED window wide enough to cover every recorded vintage.
	vintageStart = "1776-07-04"
	vintageEnd   = "9999-12-31"

	// FRED allows 120 requests per minute per key.
	rateKey       = "fred"
	rateCapacity  = 120
	ratePerSecond = 2
)

// Client fetches series observations from the FRED and ALFRED APIs.
type Client struct {
	baseURL string
	apiKey  string
	http    *phttp.Client
	limiter *ratelimit.Limiter
	log     *logger.Logger
}

// New creates an ObservationSource backed by FRED.
func New(baseURL, apiKey string, timeout time.Duration, limiter *ratelimit.Limiter, log *logger.Logger) drepo.ObservationSource {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    phttp.NewClient(phttp.WithTimeout(timeout)),
		limiter: limiter,
		log:     log,
	}
}

type fredObservation struct {
	RealtimeStart string `json:"realtime_start"`
	RealtimeEnd   string `json:"realtime_end"`
	Date          string `json:"date"`
	Value         string `json:"value"`
}

type fredResponse struct {
	Count        int               `json:"count"`
	Observations []fredObservation `json:"observations"`
}

// Observations returns the latest-vintage series for seriesID, sorted by date.
func (c *Client) Observations(ctx context.Context, seriesID string) ([]models.Observation, error) {
	params := map[string][]string{
		"series_id": {seriesID},
		"api_key":   {c.apiKey},
		"file_type": {"json"},
	}
	raw, err := c.fetch(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("fred observations %s: %w", seriesID, err)
	}
	return c.convert(seriesID, raw, false), nil
}

// InitialReleases returns the first recorded release of each observation,
// with the vintage set to the realtime_start of that release.
func (c *Client) InitialReleases(ctx context.Context, seriesID string) ([]models.Observation, error) {
	params := map[string][]string{
		"series_id":      {seriesID},
		"api_key":        {c.apiKey},
		"file_type":      {"json"},
		"realtime_start": {vintageStart},
		"realtime_end":   {vintageEnd},
		// output_type 4 restricts the vintage matrix to initial releases.
		"output_type": {"4"},
	}
	raw, err := c.fetch(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("alfred initial releases %s: %w", seriesID, err)
	}
	return c.convert(seriesID, raw, true), nil
}

func (c *Client) fetch(ctx context.Context, params map[string][]string) ([]fredObservation, error) {
	if err := c.limiter.Wait(ctx, rateKey, rateCapacity, ratePerSecond); err != nil {
		return nil, err
	}

	var resp fredResponse
	err := c.http.SendAndParse(ctx, &phttp.RequestOptions{
		Method:      phttp.MethodGet,
		URL:         c.baseURL + "/series/observations",
		QueryParams: params,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Observations, nil
}

// convert parses raw observations, skipping rows with unparseable dates and
// mapping the provider's "." placeholder to NaN.
func (c *Client) convert(seriesID string, raw []fredObservation, withVintage bool) []models.Observation {
	out := make([]models.Observation, 0, len(raw))
	for _, r := range raw {
		asOf, err := time.Parse(dateLayout, r.Date)
		if err != nil {
			c.log.Warn("fred: skipping observation with bad date",
				logger.String("series", seriesID),
				logger.String("date", r.Date))
			continue
		}

		obs := models.Observation{AsOfDate: asOf.UTC(), Value: parseValue(r.Value)}
		if withVintage {
			v, err := time.Parse(dateLayout, r.RealtimeStart)
			if err != nil {
				c.log.Warn("fred: skipping observation with bad vintage",
					logger.String("series", seriesID),
					logger.String("realtime_start", r.RealtimeStart))
				continue
			}
			vu := v.UTC()
			obs.Vintage = &vu
		}
		out = append(out, obs)
	}
	return out
}

func parseValue(s string) float64 {
	if s == "" || s == "." {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
