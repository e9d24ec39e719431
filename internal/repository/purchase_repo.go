package repository

import (
	"go-pharmacy-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseRepository interface {
	Create(purchase *model.Purchase) error
	FindAll() ([]model.Purchase, error)
	FindByID(id uuid.UUID) (*model.Purchase, error)
	FindByStatus(status model.PurchaseStatus) ([]model.Purchase, error)

	// FindForUpdate locks the purchase row for the approval transaction.
	FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Purchase, error)
	UpdateStatus(tx *gorm.DB, purchase *model.Purchase) error
}

type purchaseRepo struct {
	db *gorm.DB
}

func NewPurchaseRepo(db *gorm.DB) PurchaseRepository {
	return &purchaseRepo{db}
}

func (r *purchaseRepo) Create(purchase *model.Purchase) error {
	return r.db.Create(purchase).Error
}

func (r *purchaseRepo) FindAll() ([]model.Purchase, error) {
	var purchases []model.Purchase
	err := r.db.Preload("Items").Preload("Items.Drug").Preload("Supplier").
		Order("created_at DESC").Find(&purchases).Error
	return purchases, err
}

func (r *purchaseRepo) FindByID(id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	err := r.db.Preload("Items").Preload("Items.Drug").Preload("Supplier").
		First(&purchase, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepo) FindByStatus(status model.PurchaseStatus) ([]model.Purchase, error) {
	var purchases []model.Purchase
	err := r.db.Preload("Items").Preload("Supplier").
		Where("status = ?", status).
		Order("created_at DESC").Find(&purchases).Error
	return purchases, err
}

func (r *purchaseRepo) FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	err := tx.Set("gorm:query_option", "FOR UPDATE").
		Preload("Items").
		First(&purchase, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepo) UpdateStatus(tx *gorm.DB, purchase *model.Purchase) error {
	return tx.Model(&model.Purchase{}).
		Where("id = ?", purchase.ID).
		Updates(map[string]interface{}{
			"status":        purchase.Status,
			"approval_date": purchase.ApprovalDate,
			"approved_by":   purchase.ApprovedBy,
			"updated_by":    purchase.UpdatedBy,
		}).Error
}
