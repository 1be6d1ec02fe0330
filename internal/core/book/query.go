// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"golang.org/x/text/cases"

	"github.com/taibuivan/librio/internal/platform/database/schema"
	"github.com/taibuivan/librio/internal/platform/postgres"
)

// Query holds the optional search criteria of a catalogue listing.
type Query struct {
	// Text is matched against the title as a case-insensitive substring.
	Text string
	// TagIDs must all be carried by a book.
	TagIDs []int
	// AuthorID restricts to books credited to that author.
	AuthorID *int
	// WishlistOf restricts to books in that user's wishlist.
	WishlistOf string
}

/*
Step is one restriction of a catalogue listing.

Every step has two renderings that must agree: a SQL predicate over
[Alias] used by the repository, and an in-memory predicate used to
re-check the rows that come back.
*/
type Step interface {
	Name() string
	Expression() exp.Expression
	Match(book *Book) bool
}

/*
Plan is the resolved form of a listing request.

The visibility step is derived once from the viewer and always comes first;
the query steps follow in a fixed order. The SQL form ANDs all of them into
a single predicate, so no combination of criteria is evaluated against
books the viewer cannot see.
*/
type Plan struct {
	visibility Step
	steps      []Step
}

// NewPlan resolves viewer and query into a [Plan].
func NewPlan(viewer Viewer, query Query) Plan {
	plan := Plan{}

	if !viewer.CanSeeAdult() {
		plan.visibility = hideAdult{}
	}

	if text := strings.TrimSpace(query.Text); text != "" {
		plan.steps = append(plan.steps, titleContains{text: text})
	}

	seen := make(map[int]struct{}, len(query.TagIDs))
	for _, tagID := range query.TagIDs {
		if _, duplicate := seen[tagID]; duplicate {
			continue
		}
		seen[tagID] = struct{}{}
		plan.steps = append(plan.steps, hasTag{tagID: tagID})
	}

	if query.AuthorID != nil {
		plan.steps = append(plan.steps, byAuthor{authorID: *query.AuthorID})
	}

	if query.WishlistOf != "" {
		plan.steps = append(plan.steps, inWishlist{userID: query.WishlistOf})
	}

	return plan
}

// HidesAdult reports whether the plan excludes adult books.
func (p Plan) HidesAdult() bool {
	return p.visibility != nil
}

// Steps returns every step, visibility first.
func (p Plan) Steps() []Step {
	steps := make([]Step, 0, len(p.steps)+1)
	if p.visibility != nil {
		steps = append(steps, p.visibility)
	}
	return append(steps, p.steps...)
}

// Where returns the conjunction of all steps, or nil when nothing restricts.
func (p Plan) Where() exp.Expression {
	steps := p.Steps()
	if len(steps) == 0 {
		return nil
	}

	expressions := make([]exp.Expression, 0, len(steps))
	for _, step := range steps {
		expressions = append(expressions, step.Expression())
	}
	return goqu.And(expressions...)
}

// Match applies the plan to a single book. Visibility is checked after each
// narrowing step, not only once.
func (p Plan) Match(book *Book) bool {
	if p.visibility != nil && !p.visibility.Match(book) {
		return false
	}
	for _, step := range p.steps {
		if !step.Match(book) {
			return false
		}
		if p.visibility != nil && !p.visibility.Match(book) {
			return false
		}
	}
	return true
}

// # Steps

// Alias names core.book in every catalogue query.
const Alias = "b"

func bookColumn(column string) exp.IdentifierExpression {
	return goqu.I(Alias + "." + column)
}

// hideAdult excludes books carrying at least one adult tag.
type hideAdult struct{}

func (hideAdult) Name() string { return "hide_adult" }

func (hideAdult) Expression() exp.Expression {
	adultTags := postgres.Dialect.
		From(goqu.I(schema.BookTag.Table).As("bt")).
		Join(goqu.I(schema.Tag.Table).As("t"), goqu.On(goqu.I("t."+schema.Tag.ID).Eq(goqu.I("bt."+schema.BookTag.TagID)))).
		Select(goqu.L("1")).
		Where(
			goqu.I("bt."+schema.BookTag.BookID).Eq(bookColumn(schema.Book.ID)),
			goqu.I("t."+schema.Tag.IsAdult).IsTrue(),
		)
	return goqu.L("NOT EXISTS ?", adultTags)
}

func (hideAdult) Match(book *Book) bool { return !book.IsAdult() }

// titleContains keeps books whose title contains text, ignoring case.
// Match must accept at least what ILIKE accepts, so it tries both the
// per-rune lowering ILIKE applies and full Unicode case folding.
type titleContains struct{ text string }

func (titleContains) Name() string { return "title_contains" }

func (s titleContains) Expression() exp.Expression {
	return bookColumn(schema.Book.Title).ILike("%" + postgres.EscapeLike(s.text) + "%")
}

func (s titleContains) Match(book *Book) bool {
	if strings.Contains(strings.ToLower(book.Title), strings.ToLower(s.text)) {
		return true
	}
	// Casers are stateful; one per call.
	fold := cases.Fold()
	return strings.Contains(fold.String(book.Title), fold.String(s.text))
}

// hasTag keeps books carrying one tag. One step per requested tag gives
// intersection semantics without duplicating rows through a join.
type hasTag struct{ tagID int }

func (hasTag) Name() string { return "has_tag" }

func (s hasTag) Expression() exp.Expression {
	tagged := postgres.Dialect.
		From(goqu.I(schema.BookTag.Table).As("bt")).
		Select(goqu.L("1")).
		Where(
			goqu.I("bt."+schema.BookTag.BookID).Eq(bookColumn(schema.Book.ID)),
			goqu.I("bt."+schema.BookTag.TagID).Eq(s.tagID),
		)
	return goqu.L("EXISTS ?", tagged)
}

func (s hasTag) Match(book *Book) bool { return book.HasTag(s.tagID) }

// byAuthor keeps books credited to one author.
type byAuthor struct{ authorID int }

func (byAuthor) Name() string { return "by_author" }

func (s byAuthor) Expression() exp.Expression {
	credited := postgres.Dialect.
		From(goqu.I(schema.BookAuthor.Table).As("ba")).
		Select(goqu.L("1")).
		Where(
			goqu.I("ba."+schema.BookAuthor.BookID).Eq(bookColumn(schema.Book.ID)),
			goqu.I("ba."+schema.BookAuthor.AuthorID).Eq(s.authorID),
		)
	return goqu.L("EXISTS ?", credited)
}

func (s byAuthor) Match(book *Book) bool { return book.HasAuthor(s.authorID) }

// inWishlist keeps books saved by one user. Membership is not part of the
// book row, so the in-memory check trusts the SQL result.
type inWishlist struct{ userID string }

func (inWishlist) Name() string { return "in_wishlist" }

func (s inWishlist) Expression() exp.Expression {
	saved := postgres.Dialect.
		From(goqu.I(schema.Wishlist.Table).As("w")).
		Select(goqu.L("1")).
		Where(
			goqu.I("w."+schema.Wishlist.BookID).Eq(bookColumn(schema.Book.ID)),
			goqu.I("w."+schema.Wishlist.UserID).Eq(s.userID),
		)
	return goqu.L("EXISTS ?", saved)
}

func (inWishlist) Match(*Book) bool { return true }
