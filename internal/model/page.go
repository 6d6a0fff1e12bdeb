package model

import "math"

// MaxOffset is the largest row offset a page may address. Pages beyond it
// are empty without touching the database.
const MaxOffset = math.MaxInt32

// Page is one page of a newest-first listing. Page numbers start at 1.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
	NextNum *int `json:"next_num,omitempty"`
	PrevNum *int `json:"prev_num,omitempty"`
}

// NormalizePage clamps page to >= 1 and perPage to >= 1 (falling back to def).
func NormalizePage(page, perPage, def int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = def
	}
	return page, perPage
}

// PastEnd reports whether the first row of page lies beyond MaxOffset.
// perPage must already be normalized.
func PastEnd(page, perPage int) bool {
	return page-1 > MaxOffset/perPage
}

// Offset is the row offset of the first item on page. Callers check
// PastEnd first so the product cannot overflow.
func Offset(page, perPage int) int {
	return (page - 1) * perPage
}

// NewPage builds a page from rows fetched with limit perPage+1: an extra row
// means a next page exists and is dropped from the result.
func NewPage[T any](rows []T, page, perPage int) Page[T] {
	p := Page[T]{Page: page, PerPage: perPage}
	if len(rows) > perPage {
		rows = rows[:perPage]
		if page < math.MaxInt {
			p.HasNext = true
			next := page + 1
			p.NextNum = &next
		}
	}
	if page > 1 {
		p.HasPrev = true
		prev := page - 1
		p.PrevNum = &prev
	}
	if rows == nil {
		rows = []T{}
	}
	p.Items = rows
	return p
}
