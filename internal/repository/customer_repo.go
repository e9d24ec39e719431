package repository

import (
	"go-pharmacy-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(customer *model.Customer) error
	FindAll() ([]model.Customer, error)
	FindByID(id uuid.UUID) (*model.Customer, error)
	FindByCode(code string) (*model.Customer, error)
	FindBySerial(serial int64) (*model.Customer, error)
	FindByExactName(name string) (*model.Customer, error)
	NextSerial() (int64, error)
	Update(customer *model.Customer) error
	Delete(id uuid.UUID, deletedBy string) error

	// AddPoints credits loyalty points inside the caller's sale transaction.
	AddPoints(tx *gorm.DB, id uuid.UUID, points float64) error
}

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepo(db *gorm.DB) CustomerRepository {
	return &customerRepo{db}
}

func (r *customerRepo) Create(customer *model.Customer) error {
	return r.db.Create(customer).Error
}

func (r *customerRepo) FindAll() ([]model.Customer, error) {
	var customers []model.Customer
	err := r.db.Order("name ASC").Find(&customers).Error
	return customers, err
}

func (r *customerRepo) FindByID(id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepo) FindByCode(code string) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.Where("code = ? AND code <> ''", code).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepo) FindBySerial(serial int64) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.First(&customer, "serial = ?", serial).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepo) FindByExactName(name string) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.Where("name = ?", name).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepo) NextSerial() (int64, error) {
	var max int64
	err := r.db.Model(&model.Customer{}).Select("COALESCE(MAX(serial), 0)").Scan(&max).Error
	return max + 1, err
}

func (r *customerRepo) Update(customer *model.Customer) error {
	return r.db.Save(customer).Error
}

func (r *customerRepo) Delete(id uuid.UUID, deletedBy string) error {
	return r.db.Model(&model.Customer{}).Where("id = ?", id).Updates(map[string]interface{}{
		"deleted_at": gorm.Expr("NOW()"),
		"deleted_by": deletedBy,
	}).Error
}

func (r *customerRepo) AddPoints(tx *gorm.DB, id uuid.UUID, points float64) error {
	return tx.Model(&model.Customer{}).
		Where("id = ?", id).
		Update("points", gorm.Expr("points + ?", points)).Error
}
