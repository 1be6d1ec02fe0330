// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"time"

	"github.com/taibuivan/librio/internal/platform/constants"
	"github.com/taibuivan/librio/internal/platform/ctxkey"
)

// Viewer is who is looking at the catalogue.
type Viewer struct {
	UserID            string
	Authenticated     bool
	IsAdult           bool
	HidesAdultContent bool
}

// Anonymous is the viewer of unauthenticated requests.
var Anonymous = Viewer{}

// CanSeeAdult is true only for authenticated adults who do not hide adult content.
func (v Viewer) CanSeeAdult() bool {
	return v.Authenticated && v.IsAdult && !v.HidesAdultContent
}

// CanView reports whether viewer may see book. It is false iff the book is
// adult and the viewer cannot see adult content.
func CanView(viewer Viewer, book *Book) bool {
	return viewer.CanSeeAdult() || !book.IsAdult()
}

// IsAdultOn reports whether someone born on birthDate has reached
// [constants.AdultAge] on day now. A missing birth date is not adult.
func IsAdultOn(birthDate *time.Time, now time.Time) bool {
	if birthDate == nil {
		return false
	}

	birth := birthDate.UTC()
	now = now.UTC()
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years >= constants.AdultAge
}

// WithViewer stores the resolved viewer in ctx.
func WithViewer(ctx context.Context, viewer Viewer) context.Context {
	return context.WithValue(ctx, ctxkey.KeyViewer, viewer)
}

// ViewerFrom returns the viewer stored in ctx, or [Anonymous].
func ViewerFrom(ctx context.Context) Viewer {
	viewer, ok := ctx.Value(ctxkey.KeyViewer).(Viewer)
	if !ok {
		return Anonymous
	}
	return viewer
}
