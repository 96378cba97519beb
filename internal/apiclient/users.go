package apiclient

import (
	"context"
	"net/http"

	"marketplace-admin/internal/domain"
)

// UserUpdate is a partial profile update; nil fields are not sent.
type UserUpdate struct {
	FullName     *string  `json:"full_name,omitempty"`
	Phone        *string  `json:"phone,omitempty"`
	Bio          *string  `json:"bio,omitempty"`
	Location     *string  `json:"location,omitempty"`
	ProfileImg   *string  `json:"profile_img,omitempty"`
	CoverImg     *string  `json:"cover_img,omitempty"`
	HourlyCharge *float64 `json:"hourly_charge,omitempty"`
}

type UserService struct {
	client *Client
}

func (s *UserService) List(ctx context.Context, params UserListParams) (*List[domain.User], error) {
	var data struct {
		Users      []domain.User `json:"users"`
		Pagination struct {
			CurrentPage int  `json:"currentPage"`
			TotalPages  int  `json:"totalPages"`
			TotalUsers  int  `json:"totalUsers"`
			Limit       int  `json:"limit"`
			HasNextPage bool `json:"hasNextPage"`
			HasPrevPage bool `json:"hasPrevPage"`
		} `json:"pagination"`
	}
	if _, err := s.client.call(ctx, http.MethodGet, "/api/user", params.values(), nil, &data, "Failed to fetch users"); err != nil {
		return nil, err
	}
	p := data.Pagination
	return &List[domain.User]{
		Items: data.Users,
		Page: domain.Page{
			Page:       p.CurrentPage,
			Limit:      p.Limit,
			Total:      p.TotalUsers,
			TotalPages: p.TotalPages,
		},
	}, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	if err := requireID(id, "user"); err != nil {
		return nil, err
	}
	var user domain.User
	if _, err := s.client.call(ctx, http.MethodGet, "/api/user/"+escape(id), nil, nil, &user, "Failed to fetch user"); err != nil {
		return nil, err
	}
	return &user, nil
}

// Me returns the profile of the signed-in operator.
func (s *UserService) Me(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if _, err := s.client.call(ctx, http.MethodGet, "/api/user/me", nil, nil, &user, "Failed to fetch current user"); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) UpdateMe(ctx context.Context, update UserUpdate) (*domain.User, error) {
	in, err := jsonPayload(update)
	if err != nil {
		return nil, err
	}
	var user domain.User
	if _, err := s.client.call(ctx, http.MethodPatch, "/api/user/me", nil, in, &user, "Failed to update user"); err != nil {
		return nil, err
	}
	return &user, nil
}
