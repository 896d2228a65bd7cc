package views

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit within int for every accepted limit.
	MaxPage = math.MaxInt / MaxLimit
)

// Page is a normalised 1-based pagination request.
type Page struct {
	Number int
	Limit  int
}

// ParsePage reads page and limit query values. Missing, malformed or
// non-positive values fall back to the defaults. Limit is capped at
// MaxLimit and page at MaxPage, so an oversized page is still past the end.
func ParsePage(page, limit string) Page {
	p := Page{Number: DefaultPage, Limit: DefaultLimit}
	n, err := strconv.Atoi(strings.TrimSpace(page))
	switch {
	case err == nil && n > 0:
		p.Number = min(n, MaxPage)
	case errors.Is(err, strconv.ErrRange) && n > 0:
		p.Number = MaxPage
	}
	if n, err := strconv.Atoi(strings.TrimSpace(limit)); err == nil && n > 0 {
		p.Limit = min(n, MaxLimit)
	}
	return p
}

func (p Page) normalised() Page {
	return ParsePage(strconv.Itoa(p.Number), strconv.Itoa(p.Limit))
}

// Offset is the number of items preceding this page.
func (p Page) Offset() int {
	p = p.normalised()
	return (p.Number - 1) * p.Limit
}

// Paged is one page of a sorted result set.
type Paged[T any] struct {
	Items       []T  `json:"docs"`
	TotalItems  int  `json:"totalDocs"`
	TotalPages  int  `json:"totalPages"`
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

func newPaged[T any](items []T, total int, p Page) Paged[T] {
	p = p.normalised()
	if items == nil {
		items = []T{}
	}
	pages := (total + p.Limit - 1) / p.Limit
	return Paged[T]{
		Items:       items,
		TotalItems:  total,
		TotalPages:  pages,
		Page:        p.Number,
		Limit:       p.Limit,
		HasNextPage: p.Number < pages,
		HasPrevPage: p.Number > 1,
	}
}
