package domain

import "time"

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location is a service area jobs and users can be attached to.
type Location struct {
	ID          string      `json:"_id"`
	Name        string      `json:"name"`
	State       string      `json:"state"`
	Coordinates Coordinates `json:"coordinates"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
