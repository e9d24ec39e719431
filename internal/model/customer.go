package model

import "time"

// GuestCustomerName is the walk-in placeholder. Sales recorded under it are
// never matched to a loyalty account.
const GuestCustomerName = "Guest"

// Customer is a loyalty-program member. Points is a float balance credited
// by the sale processor; TotalPurchases and LastVisit are derived from the
// sales history, never stored.
type Customer struct {
	BaseModel
	Name        string  `gorm:"type:varchar(255);not null;index" json:"name" validate:"required"`
	Code        string  `gorm:"type:varchar(32);index" json:"code"` // optional member card code
	Serial      int64   `gorm:"uniqueIndex;not null" json:"serial"`
	PhoneNumber string  `gorm:"type:varchar(20)" json:"phone_number"`
	Points      float64 `gorm:"not null;default:0" json:"points"`
}

// CustomerResponse adds the derived purchase aggregates for API responses.
type CustomerResponse struct {
	Customer
	TotalPurchases float64    `json:"total_purchases"`
	LastVisit      *time.Time `json:"last_visit,omitempty"`
}
