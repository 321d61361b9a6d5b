package domain

import "time"

// Store is a shop created and owned by a single manager. Ownership is fixed
// at creation; every mutation must prove the caller is the recorded owner.
type Store struct {
	ID          int64     `json:"store_id"`
	OwnerID     int64     `json:"manager_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Street      string    `json:"street"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	ZipCode     string    `json:"zip_code"`
	Latitude    float64   `json:"latitude,omitempty"`
	Longitude   float64   `json:"longitude,omitempty"`
	PhotoKey    string    `json:"photo_key,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// StoreChanges carries the mutable store fields for a partial update.
// Nil pointers mean "leave unchanged".
type StoreChanges struct {
	Name        *string
	Description *string
	Street      *string
	City        *string
	State       *string
	ZipCode     *string
	Latitude    *float64
	Longitude   *float64
	PhotoKey    *string
}

// Empty reports whether the update carries no changes at all.
func (c StoreChanges) Empty() bool {
	return c.Name == nil && c.Description == nil && c.Street == nil &&
		c.City == nil && c.State == nil && c.ZipCode == nil &&
		c.Latitude == nil && c.Longitude == nil && c.PhotoKey == nil
}
