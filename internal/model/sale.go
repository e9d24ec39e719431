package model

import (
	"time"

	"github.com/google/uuid"
)

// FirstSaleSerial is the serial assigned to the first sale ever recorded.
// Subsequent sales get FirstSaleSerial + prior sale count.
const FirstSaleSerial = 100001

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "CASH"
	PaymentCard PaymentMethod = "CARD"
)

type SaleStatus string

const (
	SaleCompleted         SaleStatus = "completed"
	SalePartiallyReturned SaleStatus = "partially_returned"
)

// Sale is the immutable record of a checkout. Returns never delete or edit
// line items; they only bump ReturnedQty counters and lower NetTotal.
type Sale struct {
	BaseModel
	Serial        int64         `gorm:"uniqueIndex;not null" json:"serial"`
	OrderNumber   int           `gorm:"not null" json:"order_number"` // per-day sequence
	Date          time.Time     `gorm:"not null;index" json:"date"`
	Items         []SaleItem    `json:"items"`
	Total         float64       `gorm:"not null" json:"total"`
	Discount      float64       `gorm:"not null;default:0" json:"discount"`
	NetTotal      float64       `gorm:"not null" json:"net_total"` // total minus all refunds
	PaymentMethod PaymentMethod `gorm:"type:varchar(10);not null" json:"payment_method" validate:"required,payment_method"`
	Status        SaleStatus    `gorm:"type:varchar(30);not null;default:'completed'" json:"status"`

	CustomerID *uuid.UUID `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	Customer   *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Points     float64    `gorm:"not null;default:0" json:"points"` // loyalty points credited by this sale

	SoldByUserID *string `gorm:"type:varchar(255)" json:"sold_by_user_id,omitempty"`
	SoldByUser   *User   `gorm:"foreignKey:SoldByUserID;references:ID" json:"sold_by_user,omitempty"`
}

// SaleItem snapshots price and pack size at checkout time so later catalog
// edits cannot change what was sold.
type SaleItem struct {
	BaseModel
	SaleID       uuid.UUID `gorm:"type:uuid;not null;index" json:"sale_id"`
	DrugID       uuid.UUID `gorm:"type:uuid;not null" json:"drug_id"`
	Drug         *Drug     `gorm:"foreignKey:DrugID" json:"drug,omitempty"`
	Quantity     int       `gorm:"not null" json:"quantity"`
	UnitPrice    float64   `gorm:"not null" json:"unit_price"` // price of the sold unit (pack price when IsUnit is false)
	IsUnit       bool      `gorm:"not null;default:true" json:"is_unit"`
	UnitsPerPack int       `gorm:"not null;default:1" json:"units_per_pack"`
	ReturnedQty  int       `gorm:"not null;default:0" json:"returned_qty"` // cumulative across all returns
}

// EffectiveUnitPrice is the per-unit price used for loyalty tiering:
// the line price divided by pack size when sold by pack.
func (i *SaleItem) EffectiveUnitPrice() float64 {
	if i.IsUnit || i.UnitsPerPack <= 1 {
		return i.UnitPrice
	}
	return i.UnitPrice / float64(i.UnitsPerPack)
}
