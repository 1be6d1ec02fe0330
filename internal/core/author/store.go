// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author

import (
	"context"

	"github.com/taibuivan/librio/pkg/pagination"
)

type Repository interface {
	ListAuthors(context context.Context, filter Filter, page pagination.Params) ([]*Author, int, error)
	GetAuthor(context context.Context, id int) (*Author, error)
	CreateAuthor(context context.Context, author *Author) error
	UpdateAuthor(context context.Context, author *Author) error

	// DeleteAuthor removes the author and its book credits.
	DeleteAuthor(context context.Context, id int) error
}
