package domain

import "time"

type JobStatus string

const (
	JobStatusOpen       JobStatus = "open"
	JobStatusInProgress JobStatus = "in-progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// Valid reports whether s is one of the known job statuses.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusOpen, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled:
		return true
	}
	return false
}

// Job is a customer posting that contractors apply to.
type Job struct {
	ID           string    `json:"_id"`
	Title        string    `json:"title"`
	Category     []string  `json:"category"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	Address      string    `json:"address"`
	Budget       float64   `json:"budget"`
	Date         time.Time `json:"date"`
	CoverImg     string    `json:"coverImg"`
	CustomerID   string    `json:"customerId"`
	ContractorID string    `json:"contractorId"`
	Status       JobStatus `json:"status"`
	IsApplied    bool      `json:"isApplied"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
