// Package ergast collects season data from an Ergast-compatible racing API.
package ergast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"f1stats/internal/config"
	"f1stats/internal/logger"
	"f1stats/internal/models"
	"f1stats/pkg/utils"
)

// Client errors.
var (
	// ErrUnexpectedStatusCode indicates an HTTP response with unexpected status.
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrIncompleteReply marks a paged reply that stopped before its total.
	ErrIncompleteReply = errors.New("incomplete reply")
)

// Endpoint names a per-season API resource.
type Endpoint string

// Endpoints fetched for every season.
const (
	DriverStandings      Endpoint = "driverStandings"
	ConstructorStandings Endpoint = "constructorStandings"
	Results              Endpoint = "results"
	Qualifying           Endpoint = "qualifying"
	Drivers              Endpoint = "drivers"
)

// AllEndpoints lists endpoints in collection order.
var AllEndpoints = []Endpoint{DriverStandings, ConstructorStandings, Results, Qualifying, Drivers}

// Fetcher returns the raw body of one (season, endpoint) request.
type Fetcher interface {
	Fetch(ctx context.Context, season int, endpoint Endpoint) ([]byte, error)
}

// Client talks to the API with retry and a politeness delay between requests.
type Client struct {
	http        *resty.Client
	retryPolicy config.RetryPolicy
	pageLimit   int
	log         *logger.Logger
}

// NewClient creates a client from the api and retry sections of the config.
func NewClient(api config.APIConfig, retryPolicy config.RetryPolicy, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(api.BaseURL)
	httpClient.SetHeaders(utils.NewHTTPHelper(api.UserAgent).BuildHeaders(nil))
	httpClient.SetTimeout(retryPolicy.GetTimeout())

	limiter := rate.NewLimiter(rate.Inf, 1)
	if api.PolitenessDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(api.PolitenessDelay), 1)
	}

	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	pageLimit := api.PageLimit
	if pageLimit <= 0 {
		pageLimit = 1000
	}

	return &Client{
		http:        httpClient,
		retryPolicy: retryPolicy,
		pageLimit:   pageLimit,
		log:         log,
	}
}

// Fetch performs GET <base>/<season>/<endpoint>.json?limit=<n>, retrying
// transport failures and retryable statuses. Exhausted retries yield *models.FetchError.
// When MRData.total exceeds the rows of the first page, the remaining pages
// are requested by offset and merged into one reply; a page that comes back
// empty before the total is reached fails with ErrIncompleteReply.
func (c *Client) Fetch(ctx context.Context, season int, endpoint Endpoint) ([]byte, error) {
	body, err := c.fetchPage(ctx, season, endpoint, 0)
	if err != nil {
		return nil, err
	}

	source := fmt.Sprintf("%d/%s", season, endpoint)

	// undecodable bodies are reported by the collector
	merged, err := decode(source, body)
	if err != nil {
		return body, nil
	}

	total, ok := merged.MRData.Total.Int()
	if !ok {
		return body, nil
	}

	got := merged.MRData.rows()
	if got >= total {
		return body, nil
	}

	pages := 1

	for got < total {
		body, err := c.fetchPage(ctx, season, endpoint, got)
		if err != nil {
			return nil, err
		}

		page, err := decode(source, body)
		if err != nil {
			return nil, pageError(season, endpoint, err)
		}

		n := page.MRData.rows()
		if n == 0 {
			return nil, pageError(season, endpoint, fmt.Errorf("%w: %d of %d rows", ErrIncompleteReply, got, total))
		}

		merged.MRData.appendPage(page.MRData)
		got += n
		pages++
	}

	c.log.Debug("paged reply merged", "season", season, "endpoint", endpoint, "pages", pages, "rows", got)

	merged.MRData.Offset = "0"
	merged.MRData.Limit = Text(strconv.Itoa(total))

	out, err := json.Marshal(merged)
	if err != nil {
		return nil, pageError(season, endpoint, err)
	}

	return out, nil
}

func pageError(season int, endpoint Endpoint, err error) error {
	return &models.FetchError{Season: season, Endpoint: string(endpoint), Attempts: 1, Err: err}
}

func (c *Client) fetchPage(ctx context.Context, season int, endpoint Endpoint, offset int) ([]byte, error) {
	path := fmt.Sprintf("/%d/%s.json", season, endpoint)

	var lastErr error

	var lastStatusCode int

	attempts := 0

	for attempt := 1; attempt <= c.retryPolicy.MaxAttempts; attempt++ {
		if err := sleep(ctx, c.retryPolicy.GetRetryDelay(attempt)); err != nil {
			lastErr = err
			break
		}

		attempts = attempt
		startTime := time.Now()

		req := c.http.R().
			SetContext(ctx).
			SetQueryParam("limit", strconv.Itoa(c.pageLimit))
		if offset > 0 {
			req.SetQueryParam("offset", strconv.Itoa(offset))
		}

		resp, err := req.Get(path)
		if err != nil {
			lastErr = fmt.Errorf("request failed (attempt %d/%d): %w", attempt, c.retryPolicy.MaxAttempts, err)
			c.log.Debug("request failed", "season", season, "endpoint", endpoint, "offset", offset, "attempt", attempt, "error", err)

			if ctx.Err() != nil {
				break
			}

			continue
		}

		lastStatusCode = resp.StatusCode()

		c.log.Debug("request done",
			"season", season, "endpoint", endpoint, "offset", offset, "attempt", attempt,
			"status", lastStatusCode, "duration", time.Since(startTime))

		if lastStatusCode == 200 {
			return resp.Body(), nil
		}

		lastErr = fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, lastStatusCode)

		// Only retry on specific status codes
		if !utils.IsRetryableStatus(lastStatusCode) {
			break
		}
	}

	return nil, &models.FetchError{
		Season:     season,
		Endpoint:   string(endpoint),
		Attempts:   attempts,
		StatusCode: lastStatusCode,
		Err:        lastErr,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
