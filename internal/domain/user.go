package domain

import "time"

type UserRole string

const (
	UserRoleContractor UserRole = "contractor"
	UserRoleCustomer   UserRole = "customer"
	UserRoleAdmin      UserRole = "admin"
)

// User is a marketplace account as exposed by the users API.
type User struct {
	ID             string       `json:"_id"`
	Role           UserRole     `json:"role"`
	FullName       string       `json:"full_name"`
	ProfileImg     string       `json:"profile_img"`
	CoverImg       string       `json:"cover_img"`
	Email          string       `json:"email"`
	Phone          string       `json:"phone"`
	Bio            string       `json:"bio"`
	Location       string       `json:"location"`
	Availability   *string      `json:"availability"`
	IsVerified     bool         `json:"is_verified"`
	Category       []string     `json:"category"`
	Skills         []string     `json:"skills"`
	Experience     []Experience `json:"experience"`
	WorkSamples    []WorkSample `json:"work_samples"`
	StartingBudget float64      `json:"starting_budget"`
	Certification  string       `json:"certification"`
	HourlyCharge   float64      `json:"hourly_charge"`
	CreatedAt      *time.Time   `json:"createdAt"`
	UpdatedAt      *time.Time   `json:"updatedAt"`
}

type Experience struct {
	CompanyName string  `json:"company_name"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

type WorkSample struct {
	Name        string `json:"name"`
	Img         string `json:"img"`
	Description string `json:"description"`
}

// Admin is an operator account able to sign in to the admin API.
type Admin struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
