package apiclient

import (
	"net/url"
	"strconv"

	"marketplace-admin/internal/domain"
)

// ListParams are the paging, search and sort parameters every listing accepts.
// Zero values are left out of the query string so the server defaults apply.
type ListParams struct {
	Search    string
	Page      int
	Limit     int
	SortBy    string
	SortOrder domain.SortOrder
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	set(v, "search", p.Search)
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	set(v, "sortBy", p.SortBy)
	set(v, "sortOrder", string(p.SortOrder))
	return v
}

func (p ListParams) withPage(page int) ListParams {
	p.Page = page
	return p
}

type CategoryListParams struct {
	ListParams
}

func (p CategoryListParams) values() url.Values {
	return p.ListParams.values()
}

type JobListParams struct {
	ListParams
	Status       domain.JobStatus
	Location     string
	Category     string
	CustomerID   string
	ContractorID string
}

func (p JobListParams) values() url.Values {
	v := p.ListParams.values()
	set(v, "status", string(p.Status))
	set(v, "location", p.Location)
	set(v, "category", p.Category)
	set(v, "customerId", p.CustomerID)
	set(v, "contractorId", p.ContractorID)
	return v
}

type LocationListParams struct {
	ListParams
	State string
}

func (p LocationListParams) values() url.Values {
	v := p.ListParams.values()
	set(v, "state", p.State)
	return v
}

type UserListParams struct {
	ListParams
	Role     domain.UserRole
	Location string
	Category string
}

func (p UserListParams) values() url.Values {
	v := p.ListParams.values()
	set(v, "role", string(p.Role))
	set(v, "location", p.Location)
	set(v, "category", p.Category)
	return v
}

type TransactionListParams struct {
	ListParams
	Type    domain.TransactionType
	Status  domain.TransactionStatus
	UserID  string
	JobID   string
	OfferID string
}

func (p TransactionListParams) values() url.Values {
	v := p.ListParams.values()
	set(v, "type", string(p.Type))
	set(v, "status", string(p.Status))
	set(v, "userId", p.UserID)
	set(v, "jobId", p.JobID)
	set(v, "offerId", p.OfferID)
	return v
}

func set(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}
