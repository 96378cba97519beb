// Package overview computes the dashboard summary from the admin API.
package overview

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"marketplace-admin/internal/apiclient"
	"marketplace-admin/internal/domain"
)

type userLister interface {
	List(ctx context.Context, params apiclient.UserListParams) (*apiclient.List[domain.User], error)
}

type jobLister interface {
	List(ctx context.Context, params apiclient.JobListParams) (*apiclient.List[domain.Job], error)
}

type transactionLister interface {
	List(ctx context.Context, params apiclient.TransactionListParams) (*apiclient.List[domain.Transaction], error)
}

// MonthCount is the number of accounts created in one calendar month.
type MonthCount struct {
	Month time.Time `json:"month"`
	Count int       `json:"count"`
}

// DayTotals is the revenue and commission settled on one day.
type DayTotals struct {
	Day        time.Time       `json:"day"`
	Revenue    decimal.Decimal `json:"revenue"`
	Commission decimal.Decimal `json:"commission"`
}

// WeekdayCount is the number of recent jobs posted on one day of the week.
type WeekdayCount struct {
	Day   time.Weekday `json:"day"`
	Count int          `json:"count"`
}

type Summary struct {
	TotalUsers    int `json:"totalUsers"`
	Contractors   int `json:"contractors"`
	Customers     int `json:"customers"`
	ActiveJobs    int `json:"activeJobs"`
	PendingJobs   int `json:"pendingJobs"`
	CompletedJobs int `json:"completedJobs"`

	// Revenue is completed transaction volume net of refunds.
	Revenue decimal.Decimal `json:"revenue"`
	// Commission is what the platform kept: completed platform and service fees.
	Commission decimal.Decimal `json:"commission"`

	UserGrowth []MonthCount `json:"userGrowth"`
	Weekly     []DayTotals  `json:"weekly"`
	// JobsByWeekday covers the latest page of jobs, Sunday first.
	JobsByWeekday []WeekdayCount `json:"jobsByWeekday"`
	GeneratedAt   time.Time      `json:"generatedAt"`
}

type Builder struct {
	users        userLister
	jobs         jobLister
	transactions transactionLister

	now      func() time.Time
	months   int
	pageSize int
}

type Option func(*Builder)

// WithClock fixes the time the summary is computed relative to.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// WithMonths sets how many months of user growth are reported.
func WithMonths(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.months = n
		}
	}
}

// WithPageSize sets the page size used when walking users and transactions.
func WithPageSize(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.pageSize = n
		}
	}
}

func NewBuilder(users userLister, jobs jobLister, transactions transactionLister, opts ...Option) *Builder {
	b := &Builder{
		users:        users,
		jobs:         jobs,
		transactions: transactions,
		now:          time.Now,
		months:       6,
		pageSize:     100,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FromClient wires a Builder to the services of c.
func FromClient(c *apiclient.Client, opts ...Option) *Builder {
	return NewBuilder(c.Users, c.Jobs, c.Transactions, opts...)
}

// Build fetches every figure concurrently; the first failure cancels the rest.
func (b *Builder) Build(ctx context.Context) (*Summary, error) {
	now := b.now().UTC()
	s := &Summary{GeneratedAt: now}
	g, ctx := errgroup.WithContext(ctx)

	userCount := func(dst *int, role domain.UserRole) {
		g.Go(func() error {
			list, err := b.users.List(ctx, apiclient.UserListParams{ListParams: apiclient.ListParams{Limit: 1}, Role: role})
			if err != nil {
				return fmt.Errorf("count users %q: %w", role, err)
			}
			*dst = list.Page.Total
			return nil
		})
	}
	userCount(&s.TotalUsers, "")
	userCount(&s.Contractors, domain.UserRoleContractor)
	userCount(&s.Customers, domain.UserRoleCustomer)

	var open, inProgress int
	jobCount := func(dst *int, status domain.JobStatus) {
		g.Go(func() error {
			list, err := b.jobs.List(ctx, apiclient.JobListParams{ListParams: apiclient.ListParams{Limit: 1}, Status: status})
			if err != nil {
				return fmt.Errorf("count %s jobs: %w", status, err)
			}
			*dst = list.Page.Total
			return nil
		})
	}
	jobCount(&open, domain.JobStatusOpen)
	jobCount(&inProgress, domain.JobStatusInProgress)
	jobCount(&s.CompletedJobs, domain.JobStatusCompleted)

	g.Go(func() error {
		growth, err := b.userGrowth(ctx, now)
		if err != nil {
			return err
		}
		s.UserGrowth = growth
		return nil
	})

	g.Go(func() error {
		return b.money(ctx, now, s)
	})

	g.Go(func() error {
		days, err := b.jobsByWeekday(ctx)
		if err != nil {
			return err
		}
		s.JobsByWeekday = days
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.ActiveJobs = open + inProgress
	s.PendingJobs = open
	return s, nil
}

func (b *Builder) userGrowth(ctx context.Context, now time.Time) ([]MonthCount, error) {
	first := monthStart(now).AddDate(0, -(b.months - 1), 0)
	buckets := make([]MonthCount, b.months)
	for i := range buckets {
		buckets[i].Month = first.AddDate(0, i, 0)
	}

	err := apiclient.Collect(ctx, func(ctx context.Context, page int) (*apiclient.List[domain.User], error) {
		return b.users.List(ctx, apiclient.UserListParams{ListParams: apiclient.ListParams{Page: page, Limit: b.pageSize}})
	}, func(u domain.User) error {
		if u.CreatedAt == nil || u.CreatedAt.Before(first) {
			return nil
		}
		created := u.CreatedAt.UTC()
		i := (created.Year()-first.Year())*12 + int(created.Month()-first.Month())
		if i >= 0 && i < len(buckets) {
			buckets[i].Count++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk users: %w", err)
	}
	return buckets, nil
}

func (b *Builder) jobsByWeekday(ctx context.Context) ([]WeekdayCount, error) {
	list, err := b.jobs.List(ctx, apiclient.JobListParams{ListParams: apiclient.ListParams{
		Limit:     b.pageSize,
		SortBy:    "createdAt",
		SortOrder: domain.SortDesc,
	}})
	if err != nil {
		return nil, fmt.Errorf("recent jobs: %w", err)
	}
	days := make([]WeekdayCount, 7)
	for i := range days {
		days[i].Day = time.Weekday(i)
	}
	for _, j := range list.Items {
		if j.CreatedAt.IsZero() {
			continue
		}
		days[j.CreatedAt.UTC().Weekday()].Count++
	}
	return days, nil
}

func (b *Builder) money(ctx context.Context, now time.Time, s *Summary) error {
	today := dayStart(now)
	firstDay := today.AddDate(0, 0, -6)
	days := make([]DayTotals, 7)
	for i := range days {
		days[i] = DayTotals{Day: firstDay.AddDate(0, 0, i), Revenue: decimal.Zero, Commission: decimal.Zero}
	}

	revenue, commission := decimal.Zero, decimal.Zero
	err := apiclient.Collect(ctx, func(ctx context.Context, page int) (*apiclient.List[domain.Transaction], error) {
		return b.transactions.List(ctx, apiclient.TransactionListParams{
			ListParams: apiclient.ListParams{Page: page, Limit: b.pageSize},
			Status:     domain.TransactionStatusCompleted,
		})
	}, func(tx domain.Transaction) error {
		if tx.Status != domain.TransactionStatusCompleted {
			return nil
		}
		rev, fee := contribution(tx)
		revenue = revenue.Add(rev)
		commission = commission.Add(fee)

		settled := tx.CreatedAt
		if tx.CompletedAt != nil {
			settled = *tx.CompletedAt
		}
		if i := int(dayStart(settled).Sub(firstDay).Hours() / 24); i >= 0 && i < len(days) {
			days[i].Revenue = days[i].Revenue.Add(rev)
			days[i].Commission = days[i].Commission.Add(fee)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk transactions: %w", err)
	}

	s.Revenue = revenue
	s.Commission = commission
	s.Weekly = days
	return nil
}

// contribution splits a completed transaction into its effect on revenue
// and on commission.
func contribution(tx domain.Transaction) (revenue, commission decimal.Decimal) {
	switch {
	case tx.Type == domain.TransactionTypeRefund:
		return tx.Amount.Neg(), decimal.Zero
	case tx.Type.IsFee():
		return tx.Amount, tx.Amount
	default:
		return tx.Amount, decimal.Zero
	}
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TopMonth returns the month with the most sign-ups; ties go to the latest.
func (s *Summary) TopMonth() (MonthCount, bool) {
	if len(s.UserGrowth) == 0 {
		return MonthCount{}, false
	}
	growth := append([]MonthCount(nil), s.UserGrowth...)
	sort.SliceStable(growth, func(i, j int) bool {
		if growth[i].Count != growth[j].Count {
			return growth[i].Count > growth[j].Count
		}
		return growth[i].Month.After(growth[j].Month)
	})
	return growth[0], true
}
