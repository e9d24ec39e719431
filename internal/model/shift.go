package model

import (
	"time"

	"github.com/google/uuid"
)

type ShiftStatus string

const (
	ShiftOpen   ShiftStatus = "open"
	ShiftClosed ShiftStatus = "closed"
)

// Shift is a cash-register session. At most one shift is open system-wide;
// sales and returns append CashTransaction rows and bump the running totals
// while it stays open.
type Shift struct {
	BaseModel
	Status   ShiftStatus `gorm:"type:varchar(10);not null;default:'open';index" json:"status"`
	OpenedAt time.Time   `gorm:"not null" json:"opened_at"`
	ClosedAt *time.Time  `json:"closed_at,omitempty"`

	OpeningCash  float64  `gorm:"not null;default:0" json:"opening_cash"`
	DeclaredCash *float64 `json:"declared_cash,omitempty"` // counted at close
	CashSales    float64  `gorm:"not null;default:0" json:"cash_sales"`
	CardSales    float64  `gorm:"not null;default:0" json:"card_sales"`
	Returns      float64  `gorm:"not null;default:0" json:"returns"` // refunds paid out

	OpenedByUserID *string `gorm:"type:varchar(255)" json:"opened_by_user_id,omitempty"`
	OpenedByUser   *User   `gorm:"foreignKey:OpenedByUserID;references:ID" json:"opened_by_user,omitempty"`
	ClosedByUserID *string `gorm:"type:varchar(255)" json:"closed_by_user_id,omitempty"`

	Transactions []CashTransaction `gorm:"foreignKey:ShiftID" json:"transactions,omitempty"`
}

// ExpectedCash is what the drawer should hold at close: opening float plus
// cash sales minus refunds. Card sales never touch the drawer.
func (s *Shift) ExpectedCash() float64 {
	return s.OpeningCash + s.CashSales - s.Returns
}

type CashTransactionType string

const (
	CashTxSale   CashTransactionType = "sale"
	CashTxReturn CashTransactionType = "return"
)

// CashTransaction is an immutable entry in the shift ledger. Corrections are
// new inverse entries, never edits.
type CashTransaction struct {
	BaseModel
	ShiftID     uuid.UUID           `gorm:"type:uuid;not null;index" json:"shift_id"`
	Type        CashTransactionType `gorm:"type:varchar(10);not null" json:"type"`
	Method      PaymentMethod       `gorm:"type:varchar(10);not null" json:"method"`
	Amount      float64             `gorm:"not null" json:"amount"`
	ReferenceID *uuid.UUID          `gorm:"type:uuid" json:"reference_id,omitempty"` // originating sale or return
}
