package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"marketplace-admin/internal/domain"
	"marketplace-admin/internal/forms"
	"marketplace-admin/internal/repository"
)

// Collection names in the document store.
const (
	CollectionUsers        = "users"
	CollectionJobs         = "jobs"
	CollectionCategories   = "categories"
	CollectionLocations    = "locations"
	CollectionTransactions = "transactions"
)

var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = repository.ErrNotFound
	// ErrConflict is returned when a resource with the same name already exists.
	ErrConflict = errors.New("already exists")
)

// CategoryInput creates or, with empty fields left alone, updates a category.
type CategoryInput struct {
	Name        string
	Description string
	Icon        string
}

type LocationInput struct {
	Name        string
	State       string
	Coordinates *domain.Coordinates
}

type JobInput struct {
	Title       string    `json:"title"`
	Category    []string  `json:"category"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Address     string    `json:"address"`
	Budget      float64   `json:"budget"`
	Date        time.Time `json:"date"`
	CoverImg    string    `json:"coverImg"`
}

// UserPatch carries the profile fields an operator may change on themselves.
type UserPatch struct {
	FullName     *string  `json:"full_name"`
	Phone        *string  `json:"phone"`
	Bio          *string  `json:"bio"`
	Location     *string  `json:"location"`
	ProfileImg   *string  `json:"profile_img"`
	CoverImg     *string  `json:"cover_img"`
	HourlyCharge *float64 `json:"hourly_charge"`
}

// Catalog serves the marketplace resources of the sandbox API from the
// document store.
type Catalog struct {
	docs  repository.DocumentRepository
	now   func() time.Time
	newID func() string
}

func NewCatalog(docs repository.DocumentRepository) *Catalog {
	return &Catalog{
		docs:  docs,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (c *Catalog) timestamp() time.Time {
	return c.now().UTC().Truncate(time.Second)
}

// Categories

func (c *Catalog) ListCategories(ctx context.Context, q Query) (*Result[domain.Category], error) {
	return find[domain.Category](ctx, c.docs, CollectionCategories, q, "name", "description")
}

func (c *Catalog) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	return getDoc[domain.Category](ctx, c.docs, CollectionCategories, id)
}

func (c *Catalog) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	if err := forms.Validate(forms.Category{Name: in.Name, Description: in.Description, Icon: in.Icon}); err != nil {
		return nil, err
	}
	if err := c.ensureUniqueCategory(ctx, in.Name, ""); err != nil {
		return nil, err
	}
	now := c.timestamp()
	category := &domain.Category{
		ID:          c.newID(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Icon:        in.Icon,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := putDoc(ctx, c.docs, CollectionCategories, category.ID, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (c *Catalog) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*domain.Category, error) {
	if err := forms.Validate(forms.CategoryUpdate{Name: in.Name, Description: in.Description}); err != nil {
		return nil, err
	}
	category, err := c.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" && !strings.EqualFold(name, category.Name) {
		if err := c.ensureUniqueCategory(ctx, name, id); err != nil {
			return nil, err
		}
		category.Name = name
	}
	if in.Description != "" {
		category.Description = strings.TrimSpace(in.Description)
	}
	if in.Icon != "" {
		category.Icon = in.Icon
	}
	category.UpdatedAt = c.timestamp()
	if err := putDoc(ctx, c.docs, CollectionCategories, category.ID, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (c *Catalog) DeleteCategory(ctx context.Context, id string) error {
	return c.docs.Delete(ctx, CollectionCategories, id)
}

func (c *Catalog) ensureUniqueCategory(ctx context.Context, name, except string) error {
	all, err := find[domain.Category](ctx, c.docs, CollectionCategories, Query{Limit: maxLimit, Search: name}, "name")
	if err != nil {
		return err
	}
	for _, existing := range all.Items {
		if existing.ID != except && strings.EqualFold(existing.Name, strings.TrimSpace(name)) {
			return fmt.Errorf("category %q %w", existing.Name, ErrConflict)
		}
	}
	return nil
}

// Locations

func (c *Catalog) ListLocations(ctx context.Context, q Query) (*Result[domain.Location], error) {
	return find[domain.Location](ctx, c.docs, CollectionLocations, q, "name", "state")
}

func (c *Catalog) GetLocation(ctx context.Context, id string) (*domain.Location, error) {
	return getDoc[domain.Location](ctx, c.docs, CollectionLocations, id)
}

func (c *Catalog) CreateLocation(ctx context.Context, in LocationInput) (*domain.Location, error) {
	var coords domain.Coordinates
	if in.Coordinates != nil {
		coords = *in.Coordinates
	}
	if err := forms.Validate(forms.Location{Name: in.Name, State: in.State, Lat: coords.Lat, Lng: coords.Lng}); err != nil {
		return nil, err
	}
	now := c.timestamp()
	location := &domain.Location{
		ID:          c.newID(),
		Name:        strings.TrimSpace(in.Name),
		State:       strings.TrimSpace(in.State),
		Coordinates: coords,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := putDoc(ctx, c.docs, CollectionLocations, location.ID, location); err != nil {
		return nil, err
	}
	return location, nil
}

func (c *Catalog) UpdateLocation(ctx context.Context, id string, in LocationInput) (*domain.Location, error) {
	location, err := c.GetLocation(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		location.Name = strings.TrimSpace(in.Name)
	}
	if in.State != "" {
		location.State = strings.TrimSpace(in.State)
	}
	if in.Coordinates != nil {
		location.Coordinates = *in.Coordinates
	}
	if err := forms.Validate(forms.Location{
		Name:  location.Name,
		State: location.State,
		Lat:   location.Coordinates.Lat,
		Lng:   location.Coordinates.Lng,
	}); err != nil {
		return nil, err
	}
	location.UpdatedAt = c.timestamp()
	if err := putDoc(ctx, c.docs, CollectionLocations, location.ID, location); err != nil {
		return nil, err
	}
	return location, nil
}

func (c *Catalog) DeleteLocation(ctx context.Context, id string) error {
	return c.docs.Delete(ctx, CollectionLocations, id)
}

// Jobs

func (c *Catalog) ListJobs(ctx context.Context, q Query) (*Result[domain.Job], error) {
	return find[domain.Job](ctx, c.docs, CollectionJobs, q, "title", "description", "address")
}

func (c *Catalog) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	return getDoc[domain.Job](ctx, c.docs, CollectionJobs, id)
}

// CreateJob posts a new open job on behalf of customerID.
func (c *Catalog) CreateJob(ctx context.Context, customerID string, in JobInput) (*domain.Job, error) {
	if err := forms.Validate(forms.Job{
		Title:       in.Title,
		Category:    in.Category,
		Description: in.Description,
		Location:    in.Location,
		Address:     in.Address,
		Budget:      in.Budget,
		Date:        in.Date,
	}); err != nil {
		return nil, err
	}
	now := c.timestamp()
	job := &domain.Job{
		ID:          c.newID(),
		Title:       strings.TrimSpace(in.Title),
		Category:    in.Category,
		Description: strings.TrimSpace(in.Description),
		Location:    in.Location,
		Address:     strings.TrimSpace(in.Address),
		Budget:      in.Budget,
		Date:        in.Date.UTC(),
		CoverImg:    in.CoverImg,
		CustomerID:  customerID,
		Status:      domain.JobStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := putDoc(ctx, c.docs, CollectionJobs, job.ID, job); err != nil {
		return nil, err
	}
	return job, nil
}

// PutJob stores job as is; used for seeding.
func (c *Catalog) PutJob(ctx context.Context, job domain.Job) error {
	return putDoc(ctx, c.docs, CollectionJobs, job.ID, job)
}

// Users

func (c *Catalog) ListUsers(ctx context.Context, q Query) (*Result[domain.User], error) {
	return find[domain.User](ctx, c.docs, CollectionUsers, q, "full_name", "email")
}

func (c *Catalog) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return getDoc[domain.User](ctx, c.docs, CollectionUsers, id)
}

// PutUser stores user as is, filling in missing timestamps.
func (c *Catalog) PutUser(ctx context.Context, user domain.User) error {
	if user.ID == "" {
		return fmt.Errorf("user id is required")
	}
	now := c.timestamp()
	if user.CreatedAt == nil {
		user.CreatedAt = &now
	}
	if user.UpdatedAt == nil {
		user.UpdatedAt = &now
	}
	return putDoc(ctx, c.docs, CollectionUsers, user.ID, user)
}

func (c *Catalog) UpdateUser(ctx context.Context, id string, patch UserPatch) (*domain.User, error) {
	user, err := c.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	apply := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	apply(&user.FullName, patch.FullName)
	apply(&user.Phone, patch.Phone)
	apply(&user.Bio, patch.Bio)
	apply(&user.Location, patch.Location)
	apply(&user.ProfileImg, patch.ProfileImg)
	apply(&user.CoverImg, patch.CoverImg)
	if patch.HourlyCharge != nil {
		if *patch.HourlyCharge < 0 {
			return nil, forms.Errors{{Field: "hourly_charge", Message: "Hourly charge must not be negative"}}
		}
		user.HourlyCharge = *patch.HourlyCharge
	}
	if strings.TrimSpace(user.FullName) == "" {
		return nil, forms.Errors{{Field: "full_name", Message: "Full name is required"}}
	}
	now := c.timestamp()
	user.UpdatedAt = &now
	if err := putDoc(ctx, c.docs, CollectionUsers, user.ID, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Transactions

func (c *Catalog) ListTransactions(ctx context.Context, q Query) (*Result[domain.Transaction], error) {
	return find[domain.Transaction](ctx, c.docs, CollectionTransactions, q, "description", "from.email", "to.email")
}

func (c *Catalog) PutTransaction(ctx context.Context, tx domain.Transaction) error {
	return putDoc(ctx, c.docs, CollectionTransactions, tx.ID, tx)
}
