// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/librio/internal/core/book"
	"github.com/taibuivan/librio/internal/platform/validate"
	"github.com/taibuivan/librio/pkg/pagination"
)

// BookLister is the catalogue query used for an author's bibliography.
type BookLister interface {
	ListBooks(context context.Context, viewer book.Viewer, query book.Query, page pagination.Params) ([]*book.Book, int, error)
}

type Service struct {
	repo   Repository
	books  BookLister
	logger *slog.Logger
}

func NewService(repo Repository, books BookLister, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		books:  books,
		logger: logger,
	}
}

func (service *Service) ListAuthors(context context.Context, filter Filter, page pagination.Params) ([]*Author, int, error) {
	return service.repo.ListAuthors(context, filter, page)
}

func (service *Service) GetAuthor(context context.Context, id int) (*Author, error) {
	return service.repo.GetAuthor(context, id)
}

/*
GetAuthorDetail returns an author with every book credited to them that the
viewer may see. The bibliography goes through the catalogue engine, so adult
books stay hidden for ineligible viewers.
*/
func (service *Service) GetAuthorDetail(context context.Context, viewer book.Viewer, id int) (*Detail, error) {
	author, err := service.repo.GetAuthor(context, id)
	if err != nil {
		return nil, err
	}

	books, _, err := service.books.ListBooks(context, viewer, book.Query{AuthorID: &author.ID}, pagination.All)
	if err != nil {
		return nil, err
	}

	return &Detail{Author: author, Books: books}, nil
}

func (service *Service) CreateAuthor(context context.Context, input Input) (*Author, error) {
	author := fromInput(input)
	if err := validateAuthor(author, time.Now()); err != nil {
		return nil, err
	}

	if err := service.repo.CreateAuthor(context, author); err != nil {
		return nil, err
	}

	service.logger.Info("author_created", slog.Int("author_id", author.ID), slog.String("name", author.Name))
	return author, nil
}

func (service *Service) UpdateAuthor(context context.Context, id int, input Input) (*Author, error) {
	author := fromInput(input)
	author.ID = id
	if err := validateAuthor(author, time.Now()); err != nil {
		return nil, err
	}

	if err := service.repo.UpdateAuthor(context, author); err != nil {
		return nil, err
	}

	service.logger.Info("author_updated", slog.Int("author_id", author.ID))
	return author, nil
}

func (service *Service) DeleteAuthor(context context.Context, id int) error {
	if err := service.repo.DeleteAuthor(context, id); err != nil {
		return err
	}

	service.logger.Warn("author_deleted", slog.Int("author_id", id))
	return nil
}

func fromInput(input Input) *Author {
	return &Author{
		Name:      strings.TrimSpace(input.Name),
		BirthDate: input.BirthDate,
		DeathDate: input.DeathDate,
		Biography: strings.TrimSpace(input.Biography),
	}
}

func validateAuthor(author *Author, now time.Time) error {
	validator := &validate.Validator{}

	validator.Required(FieldName, author.Name).MaxLen(FieldName, author.Name, maxNameLength)
	validator.MaxLen(FieldBiography, author.Biography, maxBiographyLength)
	validator.NotFuture(FieldBirthDate, author.BirthDate, now)
	validator.NotFuture(FieldDeathDate, author.DeathDate, now)
	validator.DateOrder(FieldDeathDate, author.BirthDate, author.DeathDate)

	return validator.Err()
}
