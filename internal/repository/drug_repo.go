package repository

import (
	"time"

	"go-pharmacy-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DrugRepository interface {
	Create(drug *model.Drug) error
	FindAll() ([]model.Drug, error)
	FindByID(id uuid.UUID) (*model.Drug, error)
	FindByInternalCode(code string) (*model.Drug, error)
	FindByBarcode(barcode string) (*model.Drug, error)
	Search(query string) ([]model.Drug, error)
	Update(drug *model.Drug) error
	Delete(id uuid.UUID, deletedBy string) error

	// UpdateStock runs inside the caller's transaction so stock mutation
	// stays atomic with the sale/return/purchase that caused it.
	UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error
	UpdateCostPrice(tx *gorm.DB, id uuid.UUID, costPrice float64, updatedBy string) error

	FindLowStock(threshold int) ([]model.Drug, error)
	FindExpiringBefore(cutoff time.Time) ([]model.Drug, error)
}

type drugRepo struct {
	db *gorm.DB
}

func NewDrugRepo(db *gorm.DB) DrugRepository {
	return &drugRepo{db}
}

func (r *drugRepo) Create(drug *model.Drug) error {
	return r.db.Create(drug).Error
}

func (r *drugRepo) FindAll() ([]model.Drug, error) {
	var drugs []model.Drug
	err := r.db.Preload("Supplier").Order("name ASC").Find(&drugs).Error
	return drugs, err
}

func (r *drugRepo) FindByID(id uuid.UUID) (*model.Drug, error) {
	var drug model.Drug
	err := r.db.Preload("Supplier").First(&drug, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &drug, nil
}

func (r *drugRepo) FindByInternalCode(code string) (*model.Drug, error) {
	var drug model.Drug
	err := r.db.First(&drug, "internal_code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &drug, nil
}

func (r *drugRepo) FindByBarcode(barcode string) (*model.Drug, error) {
	var drug model.Drug
	err := r.db.First(&drug, "barcode = ?", barcode).Error
	if err != nil {
		return nil, err
	}
	return &drug, nil
}

func (r *drugRepo) Search(query string) ([]model.Drug, error) {
	var drugs []model.Drug
	pattern := "%" + query + "%"
	err := r.db.
		Where("name ILIKE ? OR generic_name ILIKE ? OR barcode = ? OR internal_code = ?",
			pattern, pattern, query, query).
		Order("name ASC").
		Limit(50).
		Find(&drugs).Error
	return drugs, err
}

func (r *drugRepo) Update(drug *model.Drug) error {
	return r.db.Save(drug).Error
}

func (r *drugRepo) Delete(id uuid.UUID, deletedBy string) error {
	return r.db.Model(&model.Drug{}).Where("id = ?", id).Updates(map[string]interface{}{
		"deleted_at": gorm.Expr("NOW()"),
		"deleted_by": deletedBy,
	}).Error
}

func (r *drugRepo) UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error {
	return tx.Model(&model.Drug{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      newStock,
			"updated_by": updatedBy,
		}).Error
}

func (r *drugRepo) UpdateCostPrice(tx *gorm.DB, id uuid.UUID, costPrice float64, updatedBy string) error {
	return tx.Model(&model.Drug{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"cost_price": costPrice,
			"updated_by": updatedBy,
		}).Error
}

func (r *drugRepo) FindLowStock(threshold int) ([]model.Drug, error) {
	var drugs []model.Drug
	err := r.db.Where("stock < ?", threshold).Order("stock ASC").Find(&drugs).Error
	return drugs, err
}

func (r *drugRepo) FindExpiringBefore(cutoff time.Time) ([]model.Drug, error) {
	var drugs []model.Drug
	err := r.db.
		Where("expiry_date IS NOT NULL AND expiry_date <= ?", cutoff).
		Order("expiry_date ASC").
		Find(&drugs).Error
	return drugs, err
}
