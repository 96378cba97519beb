package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"marketplace-admin/internal/domain"
)

// LocationInput is the body for creating a location. For updates nil
// fields are left untouched.
type LocationInput struct {
	Name        string              `json:"name,omitempty"`
	State       string              `json:"state,omitempty"`
	Coordinates *domain.Coordinates `json:"coordinates,omitempty"`
}

type LocationService struct {
	client *Client
}

// List returns one page of locations. Older backends answer with a bare
// array; that is reported as a single complete page.
func (s *LocationService) List(ctx context.Context, params LocationListParams) (*List[domain.Location], error) {
	const fallback = "Failed to fetch locations"
	var raw json.RawMessage
	if _, err := s.client.call(ctx, http.MethodGet, "/location", params.values(), nil, &raw, fallback); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []domain.Location
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%s: decode data: %w", fallback, err)
		}
		return &List[domain.Location]{
			Items: items,
			Page:  domain.Page{Page: 1, Limit: len(items), Total: len(items), TotalPages: 1},
		}, nil
	}

	var data struct {
		Locations []domain.Location `json:"locations"`
		flatPage
	}
	if len(trimmed) > 0 {
		if err := json.Unmarshal(trimmed, &data); err != nil {
			return nil, fmt.Errorf("%s: decode data: %w", fallback, err)
		}
	}
	return &List[domain.Location]{Items: data.Locations, Page: data.page()}, nil
}

// All walks every page of the listing.
func (s *LocationService) All(ctx context.Context, params LocationListParams) ([]domain.Location, error) {
	return All(ctx, func(ctx context.Context, page int) (*List[domain.Location], error) {
		p := params
		p.ListParams = p.withPage(page)
		return s.List(ctx, p)
	})
}

func (s *LocationService) Get(ctx context.Context, id string) (*domain.Location, error) {
	if err := requireID(id, "location"); err != nil {
		return nil, err
	}
	var location domain.Location
	if _, err := s.client.call(ctx, http.MethodGet, "/location/"+escape(id), nil, nil, &location, "Failed to fetch location"); err != nil {
		return nil, err
	}
	return &location, nil
}

func (s *LocationService) Create(ctx context.Context, input LocationInput) (*domain.Location, error) {
	in, err := jsonPayload(input)
	if err != nil {
		return nil, err
	}
	var location domain.Location
	if _, err := s.client.call(ctx, http.MethodPost, "/location", nil, in, &location, "Failed to create location"); err != nil {
		return nil, err
	}
	return &location, nil
}

func (s *LocationService) Update(ctx context.Context, id string, input LocationInput) (*domain.Location, error) {
	if err := requireID(id, "location"); err != nil {
		return nil, err
	}
	in, err := jsonPayload(input)
	if err != nil {
		return nil, err
	}
	var location domain.Location
	if _, err := s.client.call(ctx, http.MethodPut, "/location/"+escape(id), nil, in, &location, "Failed to update location"); err != nil {
		return nil, err
	}
	return &location, nil
}

func (s *LocationService) Delete(ctx context.Context, id string) error {
	if err := requireID(id, "location"); err != nil {
		return err
	}
	_, err := s.client.call(ctx, http.MethodDelete, "/location/"+escape(id), nil, nil, nil, "Failed to delete location")
	return err
}
