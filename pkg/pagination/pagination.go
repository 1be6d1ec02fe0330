// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pagination turns ?page=&limit= into a window over a listing and
describes that window back to the client.

Each listing picks a [Policy]. Book listings (catalogue, wishlists) use
[Catalogue]; the author directory, whose rows are small, uses [Directory].
Bad input never fails a request: it falls back to the policy defaults.
*/
package pagination

import (
	"net/http"
	"strconv"
)

// Policy bounds the page size of one kind of listing.
type Policy struct {
	DefaultLimit int
	MaxLimit     int
}

var (
	// Catalogue serves book listings, which carry authors and tags per row.
	Catalogue = Policy{DefaultLimit: 20, MaxLimit: 100}
	// Directory serves the author directory.
	Directory = Policy{DefaultLimit: 50, MaxLimit: 200}
)

// Params is a 1-based page and its size. A zero Limit means unbounded.
type Params struct {
	Page  int
	Limit int
}

// All asks a repository for every matching row.
var All = Params{Page: 1}

func (p Params) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

func (p Params) Unbounded() bool {
	return p.Limit <= 0
}

// FromRequest reads page and limit, replacing missing, malformed or
// out-of-range values with the policy defaults.
func (policy Policy) FromRequest(r *http.Request) Params {
	query := r.URL.Query()

	page, ok := positive(query.Get("page"))
	if !ok {
		page = 1
	}
	limit, ok := positive(query.Get("limit"))
	if !ok || limit > policy.MaxLimit {
		limit = policy.DefaultLimit
	}
	return Params{Page: page, Limit: limit}
}

func positive(raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	return n, err == nil && n >= 1
}

// Meta is the "meta" block of a list response.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

func NewMeta(page, limit, total int) Meta {
	meta := Meta{Page: page, Limit: limit, Total: total}
	if limit > 0 {
		meta.TotalPages = (total + limit - 1) / limit
	}
	meta.HasNext = page < meta.TotalPages
	return meta
}
