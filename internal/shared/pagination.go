package shared

import (
	"net/url"
	"strconv"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

// ListWindow carries offset pagination parameters for listings.
type ListWindow struct {
	Skip  int
	Limit int
}

// NewListWindow normalizes raw skip/limit values.
func NewListWindow(skip, limit int) ListWindow {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return ListWindow{Skip: skip, Limit: limit}
}

// WindowFromQuery parses skip/limit query parameters, applying defaults.
func WindowFromQuery(values url.Values) ListWindow {
	skip, _ := strconv.Atoi(values.Get("skip"))
	limit, _ := strconv.Atoi(values.Get("limit"))
	return NewListWindow(skip, limit)
}
