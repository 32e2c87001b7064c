package common

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

func ParseDateParam(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func ParseDateRequired(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	return time.Parse("2006-01-02", value)
}

func ParseIntParam(value string, fallback int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0, fmt.Errorf("invalid int")
	}
	return parsed, nil
}

func ParseBoolParam(value string) (*bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil, fmt.Errorf("invalid bool")
	}
	return &parsed, nil
}

func ParseDecimalParam(value string) (*decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid amount")
	}
	return &parsed, nil
}

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePage reads page and limit. Page defaults to 1, limit to 10 and is
// capped at 100.
func ParsePage(query url.Values) (Page, error) {
	page, err := ParseIntParam(query.Get("page"), 1)
	if err != nil || page < 1 {
		return Page{}, fmt.Errorf("invalid page")
	}
	limit, err := ParseIntParam(query.Get("limit"), DefaultPageLimit)
	if err != nil || limit < 1 {
		return Page{}, fmt.Errorf("invalid limit")
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Page: page, Limit: limit}, nil
}

type PageMeta struct {
	TotalItems   int64 `json:"totalItems"`
	ItemCount    int   `json:"itemCount"`
	ItemsPerPage int   `json:"itemsPerPage"`
	TotalPages   int64 `json:"totalPages"`
	CurrentPage  int   `json:"currentPage"`
}

type PageResponse[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

func NewPage[T any](items []T, total int64, page Page) PageResponse[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := int64(0)
	if page.Limit > 0 {
		totalPages = (total + int64(page.Limit) - 1) / int64(page.Limit)
	}
	return PageResponse[T]{
		Data: items,
		Meta: PageMeta{
			TotalItems:   total,
			ItemCount:    len(items),
			ItemsPerPage: page.Limit,
			TotalPages:   totalPages,
			CurrentPage:  page.Page,
		},
	}
}
