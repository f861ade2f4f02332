package career

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"f1stats/internal/config"
	"f1stats/internal/logger"
	"f1stats/pkg/utils"
)

// DefaultWikiAPI is the English Wikipedia action API.
const DefaultWikiAPI = "https://en.wikipedia.org/w/api.php"

// Wiki errors.
var (
	ErrWikiStatus = errors.New("unexpected wiki status code")
	ErrWikiAPI    = errors.New("wiki api error")
)

// PageSource looks pages up and returns their readable text.
type PageSource interface {
	Search(ctx context.Context, query string) (string, error)
	PageText(ctx context.Context, title string) (string, error)
}

// WikiClient queries a MediaWiki action API.
type WikiClient struct {
	http        *resty.Client
	retryPolicy config.RetryPolicy
	log         *logger.Logger
}

// NewWikiClient creates a client for endpoint with the given politeness delay.
func NewWikiClient(endpoint, userAgent string, delay time.Duration, retryPolicy config.RetryPolicy, log *logger.Logger) *WikiClient {
	if log == nil {
		log = logger.Discard()
	}

	if endpoint == "" {
		endpoint = DefaultWikiAPI
	}

	if retryPolicy.MaxAttempts < 1 {
		retryPolicy.MaxAttempts = 1
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(endpoint)
	httpClient.SetHeaders(utils.NewHTTPHelper(userAgent).BuildHeaders(nil))
	httpClient.SetTimeout(retryPolicy.GetTimeout())

	limiter := rate.NewLimiter(rate.Inf, 1)
	if delay > 0 {
		limiter = rate.NewLimiter(rate.Every(delay), 1)
	}

	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	return &WikiClient{http: httpClient, retryPolicy: retryPolicy, log: log}
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
	Error *apiError `json:"error"`
}

type parseResponse struct {
	Parse struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	} `json:"parse"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *apiError) err() error {
	if e == nil {
		return nil
	}

	return fmt.Errorf("%w: %s: %s", ErrWikiAPI, e.Code, e.Info)
}

// Search returns the title of the best match for query, or "" when nothing matches.
func (c *WikiClient) Search(ctx context.Context, query string) (string, error) {
	body, err := c.get(ctx, map[string]string{
		"action":   "query",
		"list":     "search",
		"srsearch": query,
		"srlimit":  "1",
		"format":   "json",
	})
	if err != nil {
		return "", err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode search response: %w", err)
	}

	if err := resp.Error.err(); err != nil {
		return "", err
	}

	if len(resp.Query.Search) == 0 {
		return "", nil
	}

	return resp.Query.Search[0].Title, nil
}

// PageText returns the visible text of a page's rendered HTML.
func (c *WikiClient) PageText(ctx context.Context, title string) (string, error) {
	body, err := c.get(ctx, map[string]string{
		"action":        "parse",
		"page":          title,
		"prop":          "text",
		"redirects":     "1",
		"format":        "json",
		"formatversion": "2",
	})
	if err != nil {
		return "", err
	}

	var resp parseResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode parse response: %w", err)
	}

	if err := resp.Error.err(); err != nil {
		return "", err
	}

	return HTMLText(resp.Parse.Text)
}

// HTMLText extracts readable text from an HTML fragment. Scripts, styles and
// reference markers are dropped; block elements end with a newline.
func HTMLText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	doc.Find("script, style, sup.reference, .mw-editsection").Remove()
	doc.Find("p, li, tr, h1, h2, h3, h4, th, td, caption").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" \n")
	})

	return utils.NewStringHelper().NormalizeLines(doc.Text()), nil
}

// PageURL returns the canonical article URL for title.
func PageURL(title string) string {
	return "https://en.wikipedia.org/wiki/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
}

func (c *WikiClient) get(ctx context.Context, params map[string]string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retryPolicy.MaxAttempts; attempt++ {
		if err := sleep(ctx, c.retryPolicy.GetRetryDelay(attempt)); err != nil {
			return nil, err
		}

		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(params).
			Get("")
		if err != nil {
			lastErr = fmt.Errorf("request failed (attempt %d/%d): %w", attempt, c.retryPolicy.MaxAttempts, err)
			c.log.Debug("wiki request failed", "attempt", attempt, "error", err)

			if ctx.Err() != nil {
				return nil, lastErr
			}

			continue
		}

		if resp.StatusCode() == 200 {
			return resp.Body(), nil
		}

		lastErr = fmt.Errorf("%w: %d", ErrWikiStatus, resp.StatusCode())

		if !utils.IsRetryableStatus(resp.StatusCode()) {
			break
		}
	}

	return nil, lastErr
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
