package model

import (
	"time"

	"github.com/google/uuid"
)

type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseCompleted PurchaseStatus = "completed"
	PurchaseRejected  PurchaseStatus = "rejected"
)

// Purchase is a purchase order against a supplier. Quantities are in packs;
// approval converts them to units when restocking. Status transitions are
// pending -> completed (restock + cost update) or pending -> rejected
// (terminal, no inventory effect).
type Purchase struct {
	BaseModel
	InvoiceID  string         `gorm:"type:varchar(64);not null;index" json:"invoice_id" validate:"required"`
	SupplierID *string        `gorm:"type:varchar(255)" json:"supplier_id,omitempty"`
	Supplier   *Supplier      `gorm:"foreignKey:SupplierID;references:ID" json:"supplier,omitempty"`
	Items      []PurchaseItem `json:"items" validate:"required,min=1,dive"`
	TotalCost  float64        `gorm:"not null;default:0" json:"total_cost"`
	Status     PurchaseStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	ApprovalDate *time.Time `json:"approval_date,omitempty"`
	ApprovedBy   string     `gorm:"type:varchar(255)" json:"approved_by"`
}

type PurchaseItem struct {
	BaseModel
	PurchaseID uuid.UUID `gorm:"type:uuid;not null;index" json:"purchase_id"`
	DrugID     uuid.UUID `gorm:"type:uuid;not null" json:"drug_id" validate:"uuid_required"`
	Drug       *Drug     `gorm:"foreignKey:DrugID" json:"drug,omitempty" validate:"-"`
	Quantity   int       `gorm:"not null" json:"quantity" validate:"required,gt=0"` // in packs
	CostPrice  float64   `gorm:"not null" json:"cost_price" validate:"gte=0"`       // per unit
}
