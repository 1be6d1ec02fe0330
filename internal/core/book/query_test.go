// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/librio/internal/core/book"
	"github.com/taibuivan/librio/pkg/pagination"
	"github.com/taibuivan/librio/pkg/pointer"
)

func listAll(t *testing.T, viewer book.Viewer, query book.Query) []*book.Book {
	t.Helper()
	books, _, err := newMemoryRepository(catalogue()...).List(context.Background(), book.NewPlan(viewer, query), pagination.All)
	require.NoError(t, err)
	return books
}

/*
TestPlan_NoAdultLeak runs every viewer through a grid of queries and checks
that only eligible viewers ever receive an adult book.
*/
func TestPlan_NoAdultLeak(t *testing.T) {
	queries := []book.Query{
		{},
		{Text: "polar"},
		{Text: "e"},
		{TagIDs: []int{tagErotica.ID}},
		{TagIDs: []int{tagPolar.ID, tagErotica.ID}},
		{TagIDs: []int{tagErotica.ID, tagErotica.ID}},
		{AuthorID: pointer.To(authorHugo.ID)},
		{Text: "Emmanuelle", TagIDs: []int{tagRoman.ID}, AuthorID: pointer.To(authorHugo.ID)},
	}

	for _, viewer := range allViewers {
		for _, query := range queries {
			for _, b := range listAll(t, viewer, query) {
				if b.IsAdult() {
					assert.True(t, viewer.CanSeeAdult(), "adult book %q leaked to %+v with %+v", b.Title, viewer, query)
				}
			}
		}
	}
}

/*
TestPlan_EmptyQuery checks that an empty query returns the visibility base set.
*/
func TestPlan_EmptyQuery(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{idMaigret, idMiserables, idEmmanuelle, idPolarNoir},
		ids(listAll(t, eligible, book.Query{})),
	)

	for _, viewer := range []book.Viewer{book.Anonymous, minor, squeamish} {
		assert.ElementsMatch(t, []string{idMaigret, idMiserables}, ids(listAll(t, viewer, book.Query{})))
	}
}

/*
TestPlan_TagIntersection checks that every requested tag must be present.
*/
func TestPlan_TagIntersection(t *testing.T) {
	books := listAll(t, eligible, book.Query{TagIDs: []int{tagPolar.ID, tagRoman.ID}})
	assert.Equal(t, []string{idMaigret}, ids(books))

	books = listAll(t, eligible, book.Query{TagIDs: []int{tagRoman.ID}})
	assert.ElementsMatch(t, []string{idMaigret, idMiserables, idEmmanuelle}, ids(books))
}

/*
TestPlan_TextAndAuthor narrows by title substring and author.
*/
func TestPlan_TextAndAuthor(t *testing.T) {
	assert.Equal(t, []string{idMiserables}, ids(listAll(t, eligible, book.Query{Text: "  MISÉR "})))
	assert.ElementsMatch(t,
		[]string{idMiserables, idEmmanuelle},
		ids(listAll(t, eligible, book.Query{AuthorID: pointer.To(authorHugo.ID)})),
	)
	assert.Equal(t, []string{idMiserables}, ids(listAll(t, minor, book.Query{AuthorID: pointer.To(authorHugo.ID)})))
}

/*
TestPlan_TitleCaseFolding matches titles whose case differs outside ASCII.
*/
func TestPlan_TitleCaseFolding(t *testing.T) {
	titles := []*book.Book{
		{ID: "strasse", Title: "Die große Straße"},
		{ID: "istanbul", Title: "İstanbul Hatıraları"},
		{ID: "odyssey", Title: "ΟΔΥΣΣΕΙΑ"},
		{ID: "ete", Title: "L'ÉTÉ"},
	}
	match := func(text string) []string {
		books, _, err := newMemoryRepository(titles...).List(context.Background(), book.NewPlan(eligible, book.Query{Text: text}), pagination.All)
		require.NoError(t, err)
		return ids(books)
	}

	assert.Equal(t, []string{"strasse"}, match("GROSSE STRASSE"))
	assert.Equal(t, []string{"strasse"}, match("große"))
	assert.Equal(t, []string{"istanbul"}, match("istanbul"))
	assert.Equal(t, []string{"odyssey"}, match("οδυσσεια"))
	assert.Equal(t, []string{"ete"}, match("l'été"))
	assert.Empty(t, match("hiver"))
}

/*
TestPlan_NonEligibleViewer lists an adult and a plain book for a minor.
*/
func TestPlan_NonEligibleViewer(t *testing.T) {
	adult := &book.Book{ID: "a", Title: "A", Tags: []book.TagRef{tagErotica}}
	plain := &book.Book{ID: "b", Title: "B"}

	books, total, err := newMemoryRepository(adult, plain).List(context.Background(), book.NewPlan(minor, book.Query{}), pagination.All)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, []string{"b"}, ids(books))
}

/*
TestPlan_Steps checks step order and tag deduplication.
*/
func TestPlan_Steps(t *testing.T) {
	plan := book.NewPlan(minor, book.Query{
		Text:       "dune",
		TagIDs:     []int{2, 2, 1},
		AuthorID:   pointer.To(7),
		WishlistOf: "reader-minor",
	})

	var names []string
	for _, step := range plan.Steps() {
		names = append(names, step.Name())
	}
	assert.Equal(t, []string{"hide_adult", "title_contains", "has_tag", "has_tag", "by_author", "in_wishlist"}, names)
	assert.True(t, plan.HidesAdult())

	assert.Empty(t, book.NewPlan(eligible, book.Query{}).Steps())
	assert.Nil(t, book.NewPlan(eligible, book.Query{}).Where())
}

/*
TestListSQL checks the rendered SQL of the listing query.
*/
func TestListSQL(t *testing.T) {
	tests := []struct {
		name        string
		viewer      book.Viewer
		query       book.Query
		page        pagination.Params
		contains    []string
		notContains []string
		existsCount int
	}{
		{
			name:        "anonymous_base",
			viewer:      book.Anonymous,
			page:        pagination.Params{Page: 2, Limit: 10},
			contains:    []string{"NOT EXISTS", `"t"."isadult" IS TRUE`, "LIMIT", "OFFSET", `ORDER BY "b"."title" ASC, "b"."id" ASC`},
			existsCount: 1,
		},
		{
			name:        "eligible_unrestricted",
			viewer:      eligible,
			page:        pagination.All,
			notContains: []string{"NOT EXISTS", "LIMIT", "OFFSET"},
		},
		{
			name:        "all_criteria",
			viewer:      minor,
			query:       book.Query{Text: "dune", TagIDs: []int{1, 2}, AuthorID: pointer.To(3)},
			page:        pagination.Params{Page: 1, Limit: 20},
			contains:    []string{"NOT EXISTS", `"b"."title" ILIKE`, `"core"."booktag" AS "bt"`, `"core"."bookauthor" AS "ba"`},
			existsCount: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, _, err := book.ListSQL(book.NewPlan(tt.viewer, tt.query), tt.page)
			require.NoError(t, err)

			for _, fragment := range tt.contains {
				assert.Contains(t, query, fragment)
			}
			for _, fragment := range tt.notContains {
				assert.NotContains(t, query, fragment)
			}

			// The select list itself carries no EXISTS; every occurrence is a step.
			assert.Equal(t, tt.existsCount, strings.Count(query, "EXISTS"))
		})
	}
}

/*
TestCountSQL escapes LIKE wildcards in the search text.
*/
func TestCountSQL(t *testing.T) {
	query, args, err := book.CountSQL(book.NewPlan(eligible, book.Query{Text: "50%_off"}))
	require.NoError(t, err)

	assert.Contains(t, query, "COUNT(*)")
	assert.Contains(t, args, `%50\%\_off%`)
}
