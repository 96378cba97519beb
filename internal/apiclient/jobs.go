package apiclient

import (
	"context"
	"net/http"
	"time"

	"marketplace-admin/internal/domain"
)

// JobInput is the body for creating a job.
type JobInput struct {
	Title       string    `json:"title"`
	Category    []string  `json:"category"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Address     string    `json:"address"`
	Budget      float64   `json:"budget"`
	Date        time.Time `json:"date"`
	CoverImg    string    `json:"coverImg,omitempty"`
}

type JobService struct {
	client *Client
}

func (s *JobService) List(ctx context.Context, params JobListParams) (*List[domain.Job], error) {
	var data struct {
		Jobs []domain.Job `json:"jobs"`
		flatPage
	}
	if _, err := s.client.call(ctx, http.MethodGet, "/job", params.values(), nil, &data, "Failed to fetch jobs"); err != nil {
		return nil, err
	}
	return &List[domain.Job]{Items: data.Jobs, Page: data.page()}, nil
}

func (s *JobService) Get(ctx context.Context, id string) (*domain.Job, error) {
	if err := requireID(id, "job"); err != nil {
		return nil, err
	}
	var job domain.Job
	if _, err := s.client.call(ctx, http.MethodGet, "/job/"+escape(id), nil, nil, &job, "Failed to fetch job"); err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *JobService) Create(ctx context.Context, input JobInput) (*domain.Job, error) {
	in, err := jsonPayload(input)
	if err != nil {
		return nil, err
	}
	var job domain.Job
	if _, err := s.client.call(ctx, http.MethodPost, "/job", nil, in, &job, "Failed to create job"); err != nil {
		return nil, err
	}
	return &job, nil
}
