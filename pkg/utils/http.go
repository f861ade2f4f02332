// Package utils provides common utility functions.
package utils

import (
	"net/http"
	"net/url"
)

// DefaultUserAgent identifies f1stats to upstream APIs.
const DefaultUserAgent = "f1stats/1.0"

// HTTPHelper provides HTTP utility functions.
type HTTPHelper struct {
	userAgent string
}

// NewHTTPHelper creates a new HTTP helper. An empty user agent means DefaultUserAgent.
func NewHTTPHelper(userAgent string) *HTTPHelper {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &HTTPHelper{userAgent: userAgent}
}

// IsValidURL reports whether raw is an absolute http(s) URL.
func (h *HTTPHelper) IsValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// BuildHeaders creates request headers with defaults. Custom headers override.
func (h *HTTPHelper) BuildHeaders(customHeaders map[string]string) map[string]string {
	headers := map[string]string{
		"User-Agent": h.userAgent,
		"Accept":     "application/json",
	}

	for key, value := range customHeaders {
		headers[http.CanonicalHeaderKey(key)] = value
	}

	return headers
}

// IsRetryableStatus reports whether an HTTP status is worth another attempt.
func IsRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}

	return statusCode >= http.StatusInternalServerError
}
