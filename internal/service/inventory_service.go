package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-pharmacy-pos/internal/model"
	"go-pharmacy-pos/internal/repository"
	"go-pharmacy-pos/internal/ws"
	"go-pharmacy-pos/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrDuplicateInternalCode = errors.New("internal code already exists")
	ErrNegativeStock         = errors.New("adjustment would make stock negative")
)

type InventoryService interface {
	CreateDrug(req *model.Drug, userID, userName string) error
	UpdateDrug(id uuid.UUID, req *model.Drug, userID, userName string) (*model.Drug, error)
	DeleteDrug(id uuid.UUID, userID string) error
	AdjustStock(id uuid.UUID, delta int, reason, userID, userName string) (*model.Drug, error)
	GetAllDrugs() ([]model.Drug, error)
	GetDrugByID(id uuid.UUID) (*model.Drug, error)
	GetDrugByBarcode(barcode string) (*model.Drug, error)
	SearchDrugs(query string) ([]model.Drug, error)
	GetLowStock(threshold int) ([]model.Drug, error)
	GetExpiringSoon(withinDays int) ([]model.Drug, error)
}

type inventoryService struct {
	drugRepo repository.DrugRepository
	db       *gorm.DB
	wsHub    *ws.Hub
}

func NewInventoryService(drugRepo repository.DrugRepository, db *gorm.DB, hub *ws.Hub) InventoryService {
	return &inventoryService{
		drugRepo: drugRepo,
		db:       db,
		wsHub:    hub,
	}
}

func (s *inventoryService) CreateDrug(req *model.Drug, userID, userName string) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}
	if req.Stock < 0 {
		return ErrNegativeStock
	}
	if req.UnitsPerPack < 1 {
		req.UnitsPerPack = 1
	}

	existing, _ := s.drugRepo.FindByInternalCode(req.InternalCode)
	if existing != nil && existing.ID != uuid.Nil {
		return ErrDuplicateInternalCode
	}

	req.CreatedBy = userID
	req.UpdatedBy = userID
	req.CreatedByUserID = &userID
	req.UpdatedByUserID = &userID

	if err := s.drugRepo.Create(req); err != nil {
		return err
	}

	go s.broadcastStock("drug_created", req, userID, userName,
		fmt.Sprintf("%s added '%s' to the catalog", userName, req.Name))

	return nil
}

func (s *inventoryService) UpdateDrug(id uuid.UUID, req *model.Drug, userID, userName string) (*model.Drug, error) {
	var updated *model.Drug

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing model.Drug
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&existing, "id = ?", id).Error; err != nil {
			return ErrDrugNotFound
		}

		if req.Stock < 0 {
			return ErrNegativeStock
		}
		if req.UnitsPerPack < 1 {
			req.UnitsPerPack = 1
		}

		existing.Name = req.Name
		existing.GenericName = req.GenericName
		existing.Category = req.Category
		existing.Price = req.Price
		existing.CostPrice = req.CostPrice
		existing.Stock = req.Stock
		existing.UnitsPerPack = req.UnitsPerPack
		existing.ExpiryDate = req.ExpiryDate
		existing.Barcode = req.Barcode
		existing.InternalCode = req.InternalCode
		existing.SupplierID = req.SupplierID
		existing.UpdatedBy = userID
		existing.UpdatedByUserID = &userID

		if err := tx.Save(&existing).Error; err != nil {
			return err
		}

		updated = &existing
		return nil
	})

	if err != nil {
		return nil, err
	}

	go s.broadcastStock("drug_updated", updated, userID, userName,
		fmt.Sprintf("%s updated '%s'", userName, updated.Name))

	return updated, nil
}

func (s *inventoryService) DeleteDrug(id uuid.UUID, userID string) error {
	if _, err := s.drugRepo.FindByID(id); err != nil {
		return ErrDrugNotFound
	}
	return s.drugRepo.Delete(id, userID)
}

// AdjustStock applies a manual correction (stock count, damaged goods).
// Unlike the sale path it rejects underflow outright: a human typing a
// correction should get an error, not a silent clamp.
func (s *inventoryService) AdjustStock(id uuid.UUID, delta int, reason, userID, userName string) (*model.Drug, error) {
	var adjusted *model.Drug

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var drug model.Drug
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&drug, "id = ?", id).Error; err != nil {
			return ErrDrugNotFound
		}

		newStock := drug.Stock + delta
		if newStock < 0 {
			return ErrNegativeStock
		}

		if err := s.drugRepo.UpdateStock(tx, drug.ID, newStock, userID); err != nil {
			return err
		}

		drug.Stock = newStock
		adjusted = &drug
		return nil
	})

	if err != nil {
		return nil, err
	}

	go s.broadcastStock("stock_adjusted", adjusted, userID, userName,
		fmt.Sprintf("%s adjusted '%s' by %+d (%s)", userName, adjusted.Name, delta, reason))

	return adjusted, nil
}

func (s *inventoryService) GetAllDrugs() ([]model.Drug, error) {
	return s.drugRepo.FindAll()
}

func (s *inventoryService) GetDrugByID(id uuid.UUID) (*model.Drug, error) {
	return s.drugRepo.FindByID(id)
}

// GetDrugByBarcode serves the scan gun at checkout.
func (s *inventoryService) GetDrugByBarcode(barcode string) (*model.Drug, error) {
	return s.drugRepo.FindByBarcode(barcode)
}

func (s *inventoryService) SearchDrugs(query string) ([]model.Drug, error) {
	return s.drugRepo.Search(query)
}

func (s *inventoryService) GetLowStock(threshold int) ([]model.Drug, error) {
	if threshold <= 0 {
		threshold = 10
	}
	return s.drugRepo.FindLowStock(threshold)
}

func (s *inventoryService) GetExpiringSoon(withinDays int) ([]model.Drug, error) {
	if withinDays <= 0 {
		withinDays = 30
	}
	return s.drugRepo.FindExpiringBefore(time.Now().AddDate(0, 0, withinDays))
}

func (s *inventoryService) broadcastStock(action string, drug *model.Drug, userID, userName, message string) {
	payload := map[string]interface{}{
		"type":   "stock_update",
		"action": action,
		"drug": map[string]interface{}{
			"id":            drug.ID,
			"internal_code": drug.InternalCode,
			"name":          drug.Name,
			"stock":         drug.Stock,
			"price":         drug.Price,
		},
		"user": map[string]interface{}{
			"id":   userID,
			"name": userName,
		},
		"message": message,
	}
	msg, _ := json.Marshal(payload)
	s.wsHub.Broadcast <- msg
}
