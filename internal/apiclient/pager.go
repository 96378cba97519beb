package apiclient

import (
	"context"

	"marketplace-admin/internal/domain"
)

// List is one page of a resource listing.
type List[T any] struct {
	Items []T         `json:"items"`
	Page  domain.Page `json:"page"`
}

// flatPage is the paging block categories, jobs and locations inline next to
// their items.
type flatPage struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

func (f flatPage) page() domain.Page {
	return domain.Page{Page: f.Page, Limit: f.Limit, Total: f.Total, TotalPages: f.TotalPages}
}

// maxPages caps Collect so a server that never reports the last page cannot
// keep it looping.
const maxPages = 10000

// Collect calls fetch for page 1, 2, ... until the server reports no further
// page, handing every item to visit. It stops at the first error.
func Collect[T any](ctx context.Context, fetch func(ctx context.Context, page int) (*List[T], error), visit func(T) error) error {
	for page := 1; page <= maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		list, err := fetch(ctx, page)
		if err != nil {
			return err
		}
		for _, item := range list.Items {
			if err := visit(item); err != nil {
				return err
			}
		}
		if len(list.Items) == 0 || !list.Page.HasNext() {
			return nil
		}
	}
	return nil
}

// All gathers every item Collect visits.
func All[T any](ctx context.Context, fetch func(ctx context.Context, page int) (*List[T], error)) ([]T, error) {
	var out []T
	err := Collect(ctx, fetch, func(item T) error {
		out = append(out, item)
		return nil
	})
	return out, err
}
