// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import "context"

// Repository persists tags.
type Repository interface {
	List(context context.Context, filter Filter) ([]*Tag, error)
	FindByID(context context.Context, id int) (*Tag, error)

	// Create stores tag and fills its ID. A taken slug yields [ErrSlugTaken].
	Create(context context.Context, tag *Tag) error
	Update(context context.Context, tag *Tag) error
	Delete(context context.Context, id int) error
}
