package model

import "time"

// AppStateID is the primary key of the single app_state row.
const AppStateID = 1

// AppState is a single-row table holding the last accepted transaction
// timestamp. Sales and returns lock this row, compare their own timestamp
// against it and refuse to run backwards; this is the only ordering guard
// the system carries.
type AppState struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	LastTransactionAt *time.Time `json:"last_transaction_at,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (AppState) TableName() string {
	return "app_state"
}
