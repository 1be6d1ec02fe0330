// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/taibuivan/librio/internal/core/book"
	"github.com/taibuivan/librio/internal/platform/ctxutil"
	"github.com/taibuivan/librio/internal/platform/respond"
)

// ViewerMiddleware stores the request's [book.Viewer] in the context.
// It must be mounted after the token middleware.
func ViewerMiddleware(service *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			viewer, err := service.ResolveViewer(request.Context(), ctxutil.GetAuthUser(request.Context()))
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			next.ServeHTTP(writer, request.WithContext(book.WithViewer(request.Context(), viewer)))
		})
	}
}
