package service

import (
	"errors"
	"fmt"

	"go-pharmacy-pos/internal/model"
	"go-pharmacy-pos/internal/repository"
	"go-pharmacy-pos/pkg/validator"

	"github.com/google/uuid"
)

var (
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrDuplicateCustomer = errors.New("customer code already in use")
)

type CustomerService interface {
	CreateCustomer(req *model.Customer, userID string) error
	UpdateCustomer(id uuid.UUID, req *model.Customer, userID string) (*model.Customer, error)
	DeleteCustomer(id uuid.UUID, userID string) error
	GetAllCustomers() ([]model.Customer, error)

	// GetCustomer returns the stored record plus the aggregates derived
	// from the sales history (total purchases, last visit).
	GetCustomer(id uuid.UUID) (*model.CustomerResponse, error)
}

type customerService struct {
	customerRepo repository.CustomerRepository
	saleRepo     repository.SaleRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository, saleRepo repository.SaleRepository) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		saleRepo:     saleRepo,
	}
}

func (s *customerService) CreateCustomer(req *model.Customer, userID string) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}

	if req.Code != "" {
		if existing, _ := s.customerRepo.FindByCode(req.Code); existing != nil {
			return ErrDuplicateCustomer
		}
	}

	serial, err := s.customerRepo.NextSerial()
	if err != nil {
		return err
	}
	req.Serial = serial
	req.Points = 0
	req.CreatedBy = userID
	req.UpdatedBy = userID

	return s.customerRepo.Create(req)
}

func (s *customerService) UpdateCustomer(id uuid.UUID, req *model.Customer, userID string) (*model.Customer, error) {
	existing, err := s.customerRepo.FindByID(id)
	if err != nil {
		return nil, ErrCustomerNotFound
	}

	if req.Code != "" && req.Code != existing.Code {
		if other, _ := s.customerRepo.FindByCode(req.Code); other != nil && other.ID != id {
			return nil, ErrDuplicateCustomer
		}
	}

	existing.Name = req.Name
	existing.Code = req.Code
	existing.PhoneNumber = req.PhoneNumber
	// Serial and Points are never edited through this path: the serial is
	// permanent and points only move through the sale processor.
	existing.UpdatedBy = userID

	if err := s.customerRepo.Update(existing); err != nil {
		return nil, err
	}

	return existing, nil
}

func (s *customerService) DeleteCustomer(id uuid.UUID, userID string) error {
	if _, err := s.customerRepo.FindByID(id); err != nil {
		return ErrCustomerNotFound
	}
	return s.customerRepo.Delete(id, userID)
}

func (s *customerService) GetAllCustomers() ([]model.Customer, error) {
	return s.customerRepo.FindAll()
}

func (s *customerService) GetCustomer(id uuid.UUID) (*model.CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(id)
	if err != nil {
		return nil, ErrCustomerNotFound
	}

	total, lastVisit, err := s.saleRepo.CustomerAggregates(customer.ID)
	if err != nil {
		return nil, err
	}

	return &model.CustomerResponse{
		Customer:       *customer,
		TotalPurchases: total,
		LastVisit:      lastVisit,
	}, nil
}
