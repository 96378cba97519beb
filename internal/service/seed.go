package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"marketplace-admin/internal/domain"
)

// Seed fills an empty catalog with a small marketplace: categories,
// locations, contractors and customers, jobs in every status and the
// transactions of the completed ones. It is a no-op when categories exist.
func (c *Catalog) Seed(ctx context.Context) error {
	n, err := c.docs.Count(ctx, CollectionCategories)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	base := c.timestamp().AddDate(0, -5, 0)
	at := func(days int) time.Time { return base.AddDate(0, 0, days) }

	categories := []domain.Category{
		{ID: "cat-plumbing", Name: "Plumbing", Description: "Pipes, leaks and fittings"},
		{ID: "cat-electrical", Name: "Electrical", Description: "Wiring and installations"},
		{ID: "cat-cleaning", Name: "Cleaning", Description: "Home and office cleaning"},
		{ID: "cat-painting", Name: "Painting", Description: "Interior and exterior painting"},
	}
	for i := range categories {
		categories[i].Icon = "/uploads/" + categories[i].ID + ".png"
		categories[i].CreatedAt, categories[i].UpdatedAt = at(i), at(i)
		if err := putDoc(ctx, c.docs, CollectionCategories, categories[i].ID, categories[i]); err != nil {
			return err
		}
	}

	locations := []domain.Location{
		{ID: "loc-ikeja", Name: "Ikeja", State: "Lagos", Coordinates: domain.Coordinates{Lat: 6.6018, Lng: 3.3515}},
		{ID: "loc-lekki", Name: "Lekki", State: "Lagos", Coordinates: domain.Coordinates{Lat: 6.4698, Lng: 3.5852}},
		{ID: "loc-wuse", Name: "Wuse", State: "FCT", Coordinates: domain.Coordinates{Lat: 9.0765, Lng: 7.4704}},
	}
	for i := range locations {
		locations[i].CreatedAt, locations[i].UpdatedAt = at(i), at(i)
		if err := putDoc(ctx, c.docs, CollectionLocations, locations[i].ID, locations[i]); err != nil {
			return err
		}
	}

	var users []domain.User
	for i := range 12 {
		role := domain.UserRoleCustomer
		if i%2 == 0 {
			role = domain.UserRoleContractor
		}
		created := at(i * 12)
		u := domain.User{
			ID:         fmt.Sprintf("user-%02d", i+1),
			Role:       role,
			FullName:   fmt.Sprintf("%s %02d", role, i+1),
			Email:      fmt.Sprintf("user%02d@example.com", i+1),
			Location:   locations[i%len(locations)].ID,
			IsVerified: i%3 != 0,
			CreatedAt:  &created,
			UpdatedAt:  &created,
		}
		if role == domain.UserRoleContractor {
			u.Category = []string{categories[i%len(categories)].ID}
			u.Skills = []string{categories[i%len(categories)].Name}
			u.HourlyCharge = float64(20 + i*5)
			u.StartingBudget = float64(50 + i*10)
		}
		users = append(users, u)
		if err := c.PutUser(ctx, u); err != nil {
			return err
		}
	}

	statuses := []domain.JobStatus{
		domain.JobStatusOpen, domain.JobStatusInProgress, domain.JobStatusCompleted,
		domain.JobStatusCompleted, domain.JobStatusCancelled, domain.JobStatusOpen,
	}
	for i, status := range statuses {
		customer := users[2*i+1]
		created := at(30 + i*20)
		job := domain.Job{
			ID:          fmt.Sprintf("job-%02d", i+1),
			Title:       fmt.Sprintf("%s job %d", categories[i%len(categories)].Name, i+1),
			Category:    []string{categories[i%len(categories)].ID},
			Description: "Seeded job",
			Location:    customer.Location,
			Address:     fmt.Sprintf("%d Marina Road", 10+i),
			Budget:      float64(100 + 50*i),
			Date:        created.AddDate(0, 0, 7),
			CustomerID:  customer.ID,
			Status:      status,
			CreatedAt:   created,
			UpdatedAt:   created,
		}
		if status != domain.JobStatusOpen {
			job.ContractorID = users[2*i].ID
		}
		if err := c.PutJob(ctx, job); err != nil {
			return err
		}
		if status == domain.JobStatusCompleted {
			if err := c.seedPayment(ctx, job, customer, users[2*i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// seedPayment records the money movements of a completed job: the escrow
// release to the contractor and the platform and service fees.
func (c *Catalog) seedPayment(ctx context.Context, job domain.Job, customer, contractor domain.User) error {
	completed := job.Date
	budget := decimal.NewFromFloat(job.Budget)
	platformFee := budget.Mul(decimal.RequireFromString("0.10")).Round(2)
	serviceFee := budget.Mul(decimal.RequireFromString("0.05")).Round(2)
	platform := domain.TransactionParty{ID: "platform", FullName: "Platform", Email: "payments@example.com"}
	from := domain.TransactionParty{ID: customer.ID, FullName: customer.FullName, Email: customer.Email}
	to := domain.TransactionParty{ID: contractor.ID, FullName: contractor.FullName, Email: contractor.Email}

	txs := []domain.Transaction{
		{Type: domain.TransactionTypeEscrowRelease, Amount: budget.Sub(platformFee), From: from, To: to},
		{Type: domain.TransactionTypePlatformFee, Amount: platformFee, From: to, To: platform},
		{Type: domain.TransactionTypeServiceFee, Amount: serviceFee, From: from, To: platform},
	}
	for i := range txs {
		tx := txs[i]
		tx.ID = fmt.Sprintf("tx-%s-%d", job.ID, i+1)
		tx.Job = job.ID
		tx.Status = domain.TransactionStatusCompleted
		tx.Description = fmt.Sprintf("%s for %s", tx.Type, job.Title)
		tx.CompletedAt = &completed
		tx.CreatedAt, tx.UpdatedAt = completed, completed
		if err := c.PutTransaction(ctx, tx); err != nil {
			return err
		}
	}
	return nil
}
