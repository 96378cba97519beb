package apiclient

import (
	"context"
	"net/http"

	"marketplace-admin/internal/domain"
)

type TransactionService struct {
	client *Client
}

func (s *TransactionService) List(ctx context.Context, params TransactionListParams) (*List[domain.Transaction], error) {
	var data struct {
		Transactions []domain.Transaction `json:"transactions"`
		Pagination   flatPage             `json:"pagination"`
	}
	if _, err := s.client.call(ctx, http.MethodGet, "/wallet/transactions", params.values(), nil, &data, "Failed to fetch transactions"); err != nil {
		return nil, err
	}
	return &List[domain.Transaction]{Items: data.Transactions, Page: data.Pagination.page()}, nil
}
