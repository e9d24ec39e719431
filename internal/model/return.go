package model

import (
	"time"

	"github.com/google/uuid"
)

// Return records refunded line items against a prior sale. Created once,
// immutable thereafter. There is deliberately no dedup guard: the caller is
// trusted to submit each return exactly once (accepted weakness, kept as-is).
type Return struct {
	BaseModel
	SaleID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"sale_id" validate:"uuid_required"`
	Sale        *Sale        `gorm:"foreignKey:SaleID" json:"sale,omitempty" validate:"-"`
	Items       []ReturnItem `json:"items" validate:"required,min=1,dive"`
	TotalRefund float64      `gorm:"not null" json:"total_refund"`
	Date        time.Time    `gorm:"not null;index" json:"date"`

	ProcessedByUserID *string `gorm:"type:varchar(255)" json:"processed_by_user_id,omitempty"`
	ProcessedByUser   *User   `gorm:"foreignKey:ProcessedByUserID;references:ID" json:"processed_by_user,omitempty"`
}

type ReturnItem struct {
	BaseModel
	ReturnID     uuid.UUID `gorm:"type:uuid;not null;index" json:"return_id"`
	DrugID       uuid.UUID `gorm:"type:uuid;not null" json:"drug_id" validate:"uuid_required"`
	Drug         *Drug     `gorm:"foreignKey:DrugID" json:"drug,omitempty" validate:"-"`
	Quantity     int       `gorm:"not null" json:"quantity" validate:"required,gt=0"` // quantity returned, in sold units
	RefundAmount float64   `gorm:"not null" json:"refund_amount" validate:"gte=0"`
	IsUnit       bool      `gorm:"not null;default:true" json:"is_unit"`
}
