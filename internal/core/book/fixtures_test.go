// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/librio/internal/core/book"
	"github.com/taibuivan/librio/internal/platform/apperr"
	"github.com/taibuivan/librio/pkg/pagination"
)

var (
	tagPolar   = book.TagRef{ID: 1, Label: "Polar", Slug: "polar"}
	tagRoman   = book.TagRef{ID: 2, Label: "Roman", Slug: "roman"}
	tagErotica = book.TagRef{ID: 3, Label: "Érotique", Slug: "erotique", IsAdult: true}

	authorHugo  = book.AuthorRef{ID: 1, Name: "Victor Hugo"}
	authorSimon = book.AuthorRef{ID: 2, Name: "Georges Simenon"}
)

const (
	idMaigret    = "0190f5c2-0000-7000-8000-000000000001"
	idMiserables = "0190f5c2-0000-7000-8000-000000000002"
	idEmmanuelle = "0190f5c2-0000-7000-8000-000000000003"
	idPolarNoir  = "0190f5c2-0000-7000-8000-000000000004"
)

// catalogue returns a fresh set of books covering every tag combination used in tests.
func catalogue() []*book.Book {
	return []*book.Book{
		{ID: idMaigret, Title: "Maigret tend un piège", PageCount: 190, Authors: []book.AuthorRef{authorSimon}, Tags: []book.TagRef{tagPolar, tagRoman}},
		{ID: idMiserables, Title: "Les Misérables", PageCount: 1900, Authors: []book.AuthorRef{authorHugo}, Tags: []book.TagRef{tagRoman}},
		{ID: idEmmanuelle, Title: "Emmanuelle", PageCount: 240, Authors: []book.AuthorRef{authorHugo}, Tags: []book.TagRef{tagRoman, tagErotica}},
		{ID: idPolarNoir, Title: "Polar noir", PageCount: 300, Authors: []book.AuthorRef{authorSimon}, Tags: []book.TagRef{tagPolar, tagErotica}},
	}
}

// memoryRepository evaluates plans in memory with [book.Plan.Match].
type memoryRepository struct {
	mu      sync.Mutex
	books   map[string]*book.Book
	ratings map[string][]int
	tags    map[int]book.TagRef
	authors map[int]book.AuthorRef
}

func newMemoryRepository(books ...*book.Book) *memoryRepository {
	repository := &memoryRepository{
		books:   make(map[string]*book.Book),
		ratings: make(map[string][]int),
		tags:    map[int]book.TagRef{1: tagPolar, 2: tagRoman, 3: tagErotica},
		authors: map[int]book.AuthorRef{1: authorHugo, 2: authorSimon},
	}
	for _, b := range books {
		b.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		repository.books[b.ID] = b
	}
	return repository
}

func (repository *memoryRepository) List(_ context.Context, plan book.Plan, page pagination.Params) ([]*book.Book, int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	var matched []*book.Book
	for _, b := range repository.books {
		if plan.Match(b) {
			copied := *b
			matched = append(matched, &copied)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Title < matched[j].Title })

	total := len(matched)
	if !page.Unbounded() {
		start := min(page.Offset(), total)
		end := min(start+page.Limit, total)
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (repository *memoryRepository) FindByID(_ context.Context, id string) (*book.Book, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	b, ok := repository.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	copied := *b
	return &copied, nil
}

func (repository *memoryRepository) AverageRating(_ context.Context, id string) (*float64, error) {
	ratings := repository.ratings[id]
	if len(ratings) == 0 {
		return nil, nil
	}
	sum := 0
	for _, rating := range ratings {
		sum += rating
	}
	average := float64(sum) / float64(len(ratings))
	return &average, nil
}

func (repository *memoryRepository) Create(_ context.Context, b *book.Book, authorIDs, tagIDs []int) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if err := repository.link(b, authorIDs, tagIDs); err != nil {
		return err
	}
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	copied := *b
	repository.books[b.ID] = &copied
	return nil
}

func (repository *memoryRepository) Update(_ context.Context, b *book.Book, authorIDs, tagIDs []int) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.books[b.ID]; !ok {
		return book.ErrBookNotFound
	}
	if err := repository.link(b, authorIDs, tagIDs); err != nil {
		return err
	}
	copied := *b
	repository.books[b.ID] = &copied
	return nil
}

func (repository *memoryRepository) link(b *book.Book, authorIDs, tagIDs []int) error {
	if authorIDs != nil {
		b.Authors = nil
		for _, id := range authorIDs {
			author, ok := repository.authors[id]
			if !ok {
				return apperr.Unprocessable("Referenced resource does not exist")
			}
			b.Authors = append(b.Authors, author)
		}
	}
	if tagIDs != nil {
		b.Tags = nil
		for _, id := range tagIDs {
			tag, ok := repository.tags[id]
			if !ok {
				return apperr.Unprocessable("Referenced resource does not exist")
			}
			b.Tags = append(b.Tags, tag)
		}
	}
	return nil
}

func (repository *memoryRepository) SetCoverKey(_ context.Context, id, key string) (string, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	b, ok := repository.books[id]
	if !ok {
		return "", book.ErrBookNotFound
	}
	previous := b.CoverKey
	b.CoverKey = key
	return previous, nil
}

func (repository *memoryRepository) Delete(_ context.Context, id string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.books[id]; !ok {
		return book.ErrBookNotFound
	}
	delete(repository.books, id)
	return nil
}

// Viewers used across tests.
var (
	eligible   = book.Viewer{UserID: "reader-adult", Authenticated: true, IsAdult: true}
	minor      = book.Viewer{UserID: "reader-minor", Authenticated: true}
	squeamish  = book.Viewer{UserID: "reader-hides", Authenticated: true, IsAdult: true, HidesAdultContent: true}
	allViewers = []book.Viewer{book.Anonymous, eligible, minor, squeamish}
)

func ids(books []*book.Book) []string {
	result := make([]string, 0, len(books))
	for _, b := range books {
		result = append(result, b.ID)
	}
	return result
}
