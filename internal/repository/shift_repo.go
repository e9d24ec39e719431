package repository

import (
	"go-pharmacy-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShiftRepository interface {
	Create(shift *model.Shift) error
	Update(shift *model.Shift) error
	FindByID(id uuid.UUID) (*model.Shift, error)
	FindAll() ([]model.Shift, error)

	// FindOpen returns the single open shift, or gorm.ErrRecordNotFound.
	FindOpen() (*model.Shift, error)

	// FindOpenForUpdate locks the open shift row inside a sale/return
	// transaction. Missing open shift is not an error for callers: they
	// check for gorm.ErrRecordNotFound and skip the register append.
	FindOpenForUpdate(tx *gorm.DB) (*model.Shift, error)
	AppendTransaction(tx *gorm.DB, cashTx *model.CashTransaction) error
	AddToTotals(tx *gorm.DB, shiftID uuid.UUID, cashSales, cardSales, returns float64) error
}

type shiftRepo struct {
	db *gorm.DB
}

func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db}
}

func (r *shiftRepo) Create(shift *model.Shift) error {
	return r.db.Create(shift).Error
}

func (r *shiftRepo) Update(shift *model.Shift) error {
	return r.db.Save(shift).Error
}

func (r *shiftRepo) FindByID(id uuid.UUID) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.Preload("Transactions").Preload("OpenedByUser").
		First(&shift, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) FindAll() ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.Preload("OpenedByUser").Order("opened_at DESC").Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) FindOpen() (*model.Shift, error) {
	var shift model.Shift
	err := r.db.Preload("Transactions").Where("status = ?", model.ShiftOpen).First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) FindOpenForUpdate(tx *gorm.DB) (*model.Shift, error) {
	var shift model.Shift
	err := tx.Set("gorm:query_option", "FOR UPDATE").
		Where("status = ?", model.ShiftOpen).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) AppendTransaction(tx *gorm.DB, cashTx *model.CashTransaction) error {
	return tx.Create(cashTx).Error
}

func (r *shiftRepo) AddToTotals(tx *gorm.DB, shiftID uuid.UUID, cashSales, cardSales, returns float64) error {
	return tx.Model(&model.Shift{}).
		Where("id = ?", shiftID).
		Updates(map[string]interface{}{
			"cash_sales": gorm.Expr("cash_sales + ?", cashSales),
			"card_sales": gorm.Expr("card_sales + ?", cardSales),
			"returns":    gorm.Expr("returns + ?", returns),
		}).Error
}
