package model

import "time"

// Drug is a catalog item. Stock is always counted in the smallest
// sellable unit; UnitsPerPack is the pack-to-unit conversion factor.
type Drug struct {
	BaseModel
	Name         string     `gorm:"type:varchar(255);not null;index" json:"name" validate:"required"`
	GenericName  string     `gorm:"type:varchar(255)" json:"generic_name"`
	Category     string     `gorm:"type:varchar(100);index" json:"category"`
	Price        float64    `gorm:"not null;default:0" json:"price"`      // sale price per unit
	CostPrice    float64    `gorm:"not null;default:0" json:"cost_price"` // last known purchase cost per unit
	Stock        int        `gorm:"not null;default:0" json:"stock"`
	UnitsPerPack int        `gorm:"not null;default:1" json:"units_per_pack" validate:"gte=1"`
	ExpiryDate   *time.Time `gorm:"type:date" json:"expiry_date,omitempty"`
	Barcode      string     `gorm:"type:varchar(64);index" json:"barcode"`
	InternalCode string     `gorm:"type:varchar(32);uniqueIndex;not null" json:"internal_code" validate:"required"`

	SupplierID *string   `gorm:"type:varchar(255)" json:"supplier_id,omitempty"`
	Supplier   *Supplier `gorm:"foreignKey:SupplierID;references:ID" json:"supplier,omitempty"`

	// User tracking
	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
	UpdatedByUserID *string `gorm:"type:varchar(255)" json:"updated_by_user_id,omitempty"`
	CreatedByUser   *User   `gorm:"foreignKey:CreatedByUserID;references:ID" json:"created_by_user,omitempty"`
	UpdatedByUser   *User   `gorm:"foreignKey:UpdatedByUserID;references:ID" json:"updated_by_user,omitempty"`
}

// UnitsFor converts a sold quantity to stock units.
// Quantity maps 1:1 when sold by unit, otherwise one quantity is a full pack.
func (d *Drug) UnitsFor(quantity int, isUnit bool) int {
	if isUnit {
		return quantity
	}
	upp := d.UnitsPerPack
	if upp < 1 {
		upp = 1
	}
	return quantity * upp
}
