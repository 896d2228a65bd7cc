package views

import (
	"math"
	"testing"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		name        string
		page, limit string
		want        Page
	}{
		{"defaults", "", "", Page{Number: 1, Limit: 10}},
		{"explicit", "3", "25", Page{Number: 3, Limit: 25}},
		{"garbage", "abc", "x1", Page{Number: 1, Limit: 10}},
		{"non positive", "0", "-4", Page{Number: 1, Limit: 10}},
		{"capped", "2", "1000", Page{Number: 2, Limit: MaxLimit}},
		{"padded", " 4 ", " 5", Page{Number: 4, Limit: 5}},
		{"huge page", "100000000000000001", "100", Page{Number: MaxPage, Limit: 100}},
		{"overflowing page", "99999999999999999999999", "10", Page{Number: MaxPage, Limit: 10}},
		{"overflowing negative page", "-99999999999999999999999", "10", Page{Number: 1, Limit: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParsePage(tt.page, tt.limit); got != tt.want {
				t.Fatalf("ParsePage(%q, %q) = %+v, want %+v", tt.page, tt.limit, got, tt.want)
			}
		})
	}
}

func TestNewPagedTotals(t *testing.T) {
	tests := []struct {
		name      string
		items     int
		total     int
		page      Page
		wantPages int
		wantNext  bool
		wantPrev  bool
	}{
		{"first of three", 10, 25, Page{Number: 1, Limit: 10}, 3, true, false},
		{"remainder", 5, 25, Page{Number: 3, Limit: 10}, 3, false, true},
		{"past the end", 0, 25, Page{Number: 9, Limit: 10}, 3, false, true},
		{"empty", 0, 0, Page{Number: 1, Limit: 10}, 0, false, false},
		{"exact", 10, 20, Page{Number: 2, Limit: 10}, 2, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paged := newPaged(make([]int, tt.items), tt.total, tt.page)
			if paged.TotalPages != tt.wantPages || paged.HasNextPage != tt.wantNext || paged.HasPrevPage != tt.wantPrev {
				t.Fatalf("got pages=%d next=%v prev=%v, want pages=%d next=%v prev=%v",
					paged.TotalPages, paged.HasNextPage, paged.HasPrevPage, tt.wantPages, tt.wantNext, tt.wantPrev)
			}
			if paged.TotalItems != tt.total || len(paged.Items) != tt.items {
				t.Fatalf("got total=%d items=%d", paged.TotalItems, len(paged.Items))
			}
		})
	}
}

func TestNewPagedNeverNil(t *testing.T) {
	paged := newPaged[string](nil, 0, Page{})
	if paged.Items == nil {
		t.Fatal("expected empty, non-nil items")
	}
	if paged.Page != DefaultPage || paged.Limit != DefaultLimit {
		t.Fatalf("expected default page, got %d/%d", paged.Page, paged.Limit)
	}
}

func TestPageOffset(t *testing.T) {
	if got := (Page{Number: 3, Limit: 20}).Offset(); got != 40 {
		t.Fatalf("Offset() = %d, want 40", got)
	}
	if got := (Page{}).Offset(); got != 0 {
		t.Fatalf("zero page Offset() = %d, want 0", got)
	}
	if got := (Page{Number: math.MaxInt, Limit: MaxLimit}).Offset(); got < 0 {
		t.Fatalf("huge page Offset() = %d, want non-negative", got)
	}
}
