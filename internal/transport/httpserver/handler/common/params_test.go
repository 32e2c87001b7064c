package common

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"equb-app-go/internal/domain/apperr"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    Page
		wantErr bool
	}{
		{"defaults", "", Page{Page: 1, Limit: DefaultPageLimit}, false},
		{"explicit", "page=3&limit=25", Page{Page: 3, Limit: 25}, false},
		{"limit capped", "limit=1000", Page{Page: 1, Limit: MaxPageLimit}, false},
		{"zero page", "page=0", Page{}, true},
		{"negative limit", "limit=-1", Page{}, true},
		{"garbage", "page=two", Page{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("parse query: %v", err)
			}
			got, err := ParsePage(query)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestNewPageMeta(t *testing.T) {
	page := NewPage([]string{"a", "b"}, 12, Page{Page: 2, Limit: 5})
	if page.Meta.TotalPages != 3 || page.Meta.ItemCount != 2 || page.Meta.CurrentPage != 2 || page.Meta.ItemsPerPage != 5 {
		t.Fatalf("unexpected meta %+v", page.Meta)
	}

	empty := NewPage[string](nil, 0, Page{Page: 1, Limit: 10})
	if empty.Data == nil || empty.Meta.TotalPages != 0 {
		t.Fatalf("expected empty non-nil data, got %+v", empty)
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.New(apperr.KindNotFound, "x", "x"), http.StatusNotFound},
		{apperr.New(apperr.KindConflict, "x", "x"), http.StatusConflict},
		{apperr.New(apperr.KindInvalidInput, "x", "x"), http.StatusBadRequest},
		{apperr.New(apperr.KindInvalidOperation, "x", "x"), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusOf(tt.err); got != tt.want {
			t.Fatalf("StatusOf(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRequireAdminRejectsAnonymous(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/equbs", nil)

	if _, ok := RequireAdmin(rec, req); ok {
		t.Fatalf("expected anonymous request to be rejected")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
