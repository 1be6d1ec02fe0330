// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/librio/internal/platform/validate"
	"github.com/taibuivan/librio/pkg/pointer"
	"github.com/taibuivan/librio/pkg/slug"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (service *Service) ListTags(context context.Context, filter Filter) ([]*Tag, error) {
	return service.repo.List(context, filter)
}

func (service *Service) GetTag(context context.Context, id int) (*Tag, error) {
	return service.repo.FindByID(context, id)
}

// CreateTag validates input and stores a new tag, editable unless the input
// locks it.
func (service *Service) CreateTag(context context.Context, input Input) (*Tag, error) {
	t := &Tag{
		Label:    strings.TrimSpace(input.Label),
		IsAdult:  input.IsAdult,
		Editable: pointer.Or(input.Editable, true),
	}
	if err := validateTag(t); err != nil {
		return nil, err
	}

	if err := service.repo.Create(context, t); err != nil {
		return nil, err
	}

	service.logger.Info("tag_created",
		slog.Int("tag_id", t.ID),
		slog.String("slug", t.Slug),
		slog.Bool("is_adult", t.IsAdult),
		slog.Bool("editable", t.Editable),
	)
	return t, nil
}

/*
UpdateTag rewrites the label and adult flag of an editable tag. Setting
editable to false locks it against every later change.

Returns:
  - *Tag: The updated tag
  - error: ErrTagLocked (403) for non-editable tags, validation or conflict errors
*/
func (service *Service) UpdateTag(context context.Context, id int, input Input) (*Tag, error) {
	t, err := service.editable(context, id)
	if err != nil {
		return nil, err
	}

	t.Label = strings.TrimSpace(input.Label)
	t.IsAdult = input.IsAdult
	t.Editable = pointer.Or(input.Editable, true)
	if err := validateTag(t); err != nil {
		return nil, err
	}

	if err := service.repo.Update(context, t); err != nil {
		return nil, err
	}

	service.logger.Info("tag_updated", slog.Int("tag_id", id), slog.Bool("is_adult", t.IsAdult), slog.Bool("editable", t.Editable))
	return t, nil
}

// DeleteTag removes an editable tag; it disappears from every book.
func (service *Service) DeleteTag(context context.Context, id int) error {
	if _, err := service.editable(context, id); err != nil {
		return err
	}

	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	service.logger.Warn("tag_deleted", slog.Int("tag_id", id))
	return nil
}

func (service *Service) editable(context context.Context, id int) (*Tag, error) {
	t, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}
	if !t.Editable {
		return nil, ErrTagLocked
	}
	return t, nil
}

// validateTag checks the label and derives the slug from it.
func validateTag(t *Tag) error {
	t.Slug = slug.From(t.Label)

	validator := &validate.Validator{}
	validator.Required(FieldLabel, t.Label).MaxLen(FieldLabel, t.Label, maxLabelLength)
	validator.Custom(FieldLabel, t.Label != "" && t.Slug == "", "Must contain at least one letter or digit")

	return validator.Err()
}
