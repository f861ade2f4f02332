package ergast

import (
	"context"
	"errors"
	"fmt"

	"f1stats/internal/cache"
	"f1stats/internal/logger"
	"f1stats/internal/models"
)

// SeasonData is everything collected for one season. Endpoints that failed
// contribute nothing and are listed in Failures.
type SeasonData struct {
	Season               int
	DriverStandings      []DriverStanding
	ConstructorStandings []ConstructorStanding
	Races                []Race
	Qualifying           []Race
	Drivers              []Driver
	Failures             []error
}

// Failed reports whether any endpoint failed.
func (s *SeasonData) Failed() bool {
	return len(s.Failures) > 0
}

// Collector fetches every endpoint of a season, going through the raw cache.
type Collector struct {
	fetcher Fetcher
	cache   cache.Cache
	offline bool
	log     *logger.Logger
}

// NewCollector wires a fetcher to a cache. With offline set the fetcher is
// never called. A nil cache disables caching.
func NewCollector(fetcher Fetcher, c cache.Cache, offline bool, log *logger.Logger) *Collector {
	if c == nil {
		c = cache.Nop{}
	}

	if log == nil {
		log = logger.Discard()
	}

	return &Collector{fetcher: fetcher, cache: c, offline: offline, log: log}
}

// Collect runs CollectSeason for each season in order and stops early only
// when ctx is cancelled.
func (c *Collector) Collect(ctx context.Context, seasons []int) []*SeasonData {
	out := make([]*SeasonData, 0, len(seasons))

	for _, season := range seasons {
		if ctx.Err() != nil {
			break
		}

		out = append(out, c.CollectSeason(ctx, season))
	}

	return out
}

// CollectSeason fetches and decodes all endpoints of season sequentially.
func (c *Collector) CollectSeason(ctx context.Context, season int) *SeasonData {
	data := &SeasonData{Season: season}

	for _, endpoint := range AllEndpoints {
		body, err := c.body(ctx, season, endpoint)
		if err != nil {
			c.fail(data, endpoint, err)
			continue
		}

		source := fmt.Sprintf("%d/%s", season, endpoint)

		switch endpoint {
		case DriverStandings:
			data.DriverStandings, err = DecodeDriverStandings(source, body)
		case ConstructorStandings:
			data.ConstructorStandings, err = DecodeConstructorStandings(source, body)
		case Results:
			data.Races, err = DecodeRaces(source, body)
		case Qualifying:
			data.Qualifying, err = DecodeRaces(source, body)
		case Drivers:
			data.Drivers, err = DecodeDrivers(source, body)
		}

		if err != nil {
			c.fail(data, endpoint, err)
		}
	}

	return data
}

func (c *Collector) fail(data *SeasonData, endpoint Endpoint, err error) {
	c.log.Warn("endpoint failed, continuing without it",
		"season", data.Season, "endpoint", endpoint, "error", err)

	data.Failures = append(data.Failures, err)
}

func (c *Collector) body(ctx context.Context, season int, endpoint Endpoint) ([]byte, error) {
	if c.offline {
		body, err := c.cache.Get(ctx, season, string(endpoint))
		if err != nil {
			return nil, &models.FetchError{Season: season, Endpoint: string(endpoint), Err: err}
		}

		return body, nil
	}

	body, fetchErr := c.fetcher.Fetch(ctx, season, endpoint)
	if fetchErr == nil {
		if err := c.cache.Put(ctx, season, string(endpoint), body); err != nil {
			c.log.Warn("failed to cache response", "season", season, "endpoint", endpoint, "error", err)
		}

		return body, nil
	}

	// serve a stale copy when the source is unreachable
	body, err := c.cache.Get(ctx, season, string(endpoint))
	if err == nil {
		c.log.Warn("fetch failed, using cached response",
			"season", season, "endpoint", endpoint, "error", fetchErr)

		return body, nil
	}

	if !errors.Is(err, cache.ErrMiss) {
		c.log.Warn("cache read failed", "season", season, "endpoint", endpoint, "error", err)
	}

	return nil, fetchErr
}
