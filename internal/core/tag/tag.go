// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package tag manages the labels attached to books. Adult tags drive the
// catalogue's content gate. A tag created or saved with editable=false is
// locked for good; migrations seed the locked audience tags.
package tag

import (
	"time"

	"github.com/taibuivan/librio/internal/platform/apperr"
)

// Tag categorizes books. A book carrying any adult tag is adult.
type Tag struct {
	ID      int    `json:"id"`
	Label   string `json:"label"`
	Slug    string `json:"slug"`
	IsAdult bool   `json:"is_adult"`

	// Editable is false for tags that can be neither updated nor deleted.
	Editable  bool      `json:"editable"`
	CreatedAt time.Time `json:"created_at"`
}

// Input carries the writable fields of a tag.
type Input struct {
	Label   string `json:"label"`
	IsAdult bool   `json:"is_adult"`

	// Editable defaults to true; false locks the tag after this write.
	Editable *bool `json:"editable"`
}

// Filter narrows a tag listing.
type Filter struct {
	// Search is matched against the label, case-insensitive.
	Search string
}

var (
	ErrTagNotFound = apperr.NotFound("Tag")
	ErrTagLocked   = apperr.Forbidden("This tag cannot be modified")
	ErrSlugTaken   = apperr.Conflict("A tag with this label already exists")
)

// Field names for validation
const (
	FieldLabel = "label"
)

const maxLabelLength = 100
