package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"marketplace-admin/internal/domain"
)

// Upload is a file sent in a multipart form.
type Upload struct {
	Filename string
	Content  io.Reader
}

// CategoryInput is the multipart form for creating or updating a category.
// Empty fields are not sent, so an update only touches what is set.
type CategoryInput struct {
	Name        string
	Description string
	Icon        *Upload
}

type CategoryService struct {
	client *Client
}

func (s *CategoryService) List(ctx context.Context, params CategoryListParams) (*List[domain.Category], error) {
	var data struct {
		Categories []domain.Category `json:"categories"`
		flatPage
	}
	if _, err := s.client.call(ctx, http.MethodGet, "/category", params.values(), nil, &data, "Failed to fetch categories"); err != nil {
		return nil, err
	}
	return &List[domain.Category]{Items: data.Categories, Page: data.page()}, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	if err := requireID(id, "category"); err != nil {
		return nil, err
	}
	var category domain.Category
	if _, err := s.client.call(ctx, http.MethodGet, "/category/"+escape(id), nil, nil, &category, "Failed to fetch category"); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("category name is required")
	}
	if input.Icon == nil {
		return nil, fmt.Errorf("category icon is required")
	}
	in, err := input.form()
	if err != nil {
		return nil, err
	}
	var category domain.Category
	if _, err := s.client.call(ctx, http.MethodPost, "/category", nil, in, &category, "Failed to create category"); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, input CategoryInput) (*domain.Category, error) {
	if err := requireID(id, "category"); err != nil {
		return nil, err
	}
	in, err := input.form()
	if err != nil {
		return nil, err
	}
	var category domain.Category
	if _, err := s.client.call(ctx, http.MethodPut, "/category/"+escape(id), nil, in, &category, "Failed to update category"); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if err := requireID(id, "category"); err != nil {
		return err
	}
	_, err := s.client.call(ctx, http.MethodDelete, "/category/"+escape(id), nil, nil, nil, "Failed to delete category")
	return err
}

func (in CategoryInput) form() (*payload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if in.Name != "" {
		if err := w.WriteField("name", in.Name); err != nil {
			return nil, fmt.Errorf("write name field: %w", err)
		}
	}
	if in.Description != "" {
		if err := w.WriteField("description", in.Description); err != nil {
			return nil, fmt.Errorf("write description field: %w", err)
		}
	}
	if in.Icon != nil {
		part, err := w.CreateFormFile("icon", in.Icon.Filename)
		if err != nil {
			return nil, fmt.Errorf("create icon part: %w", err)
		}
		if _, err := io.Copy(part, in.Icon.Content); err != nil {
			return nil, fmt.Errorf("copy icon: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart form: %w", err)
	}
	return &payload{contentType: w.FormDataContentType(), body: buf.Bytes()}, nil
}
