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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrPurchaseNotFound   = errors.New("purchase not found")
	ErrPurchaseNotPending = errors.New("purchase is not pending")
)

type PurchaseLineRequest struct {
	DrugID    string  `json:"drug_id" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"` // in packs
	CostPrice float64 `json:"cost_price" validate:"gte=0"`       // per unit
}

type CreatePurchaseRequest struct {
	InvoiceID  string                `json:"invoice_id" validate:"required"`
	SupplierID string                `json:"supplier_id"`
	Items      []PurchaseLineRequest `json:"items" validate:"required,min=1,dive"`
}

type PurchaseService interface {
	CreatePurchase(req *CreatePurchaseRequest, userID string) (*model.Purchase, error)
	ApprovePurchase(id uuid.UUID, approverID, approverName string) (*model.Purchase, error)
	RejectPurchase(id uuid.UUID, userID string) (*model.Purchase, error)
	GetAllPurchases() ([]model.Purchase, error)
	GetPurchaseByID(id uuid.UUID) (*model.Purchase, error)
	GetPurchasesByStatus(status model.PurchaseStatus) ([]model.Purchase, error)
}

type purchaseService struct {
	db           *gorm.DB
	purchaseRepo repository.PurchaseRepository
	drugRepo     repository.DrugRepository
	wsHub        *ws.Hub
}

func NewPurchaseService(
	db *gorm.DB,
	purchaseRepo repository.PurchaseRepository,
	drugRepo repository.DrugRepository,
	hub *ws.Hub,
) PurchaseService {
	return &purchaseService{
		db:           db,
		purchaseRepo: purchaseRepo,
		drugRepo:     drugRepo,
		wsHub:        hub,
	}
}

func (s *purchaseService) CreatePurchase(req *CreatePurchaseRequest, userID string) (*model.Purchase, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}

	totalCost := decimal.NewFromFloat(0)
	items := make([]model.PurchaseItem, 0, len(req.Items))
	for _, line := range req.Items {
		drugID, err := uuid.Parse(line.DrugID)
		if err != nil {
			return nil, ErrDrugNotFound
		}
		drug, err := s.drugRepo.FindByID(drugID)
		if err != nil {
			return nil, ErrDrugNotFound
		}

		items = append(items, model.PurchaseItem{
			DrugID:    drugID,
			Quantity:  line.Quantity,
			CostPrice: line.CostPrice,
		})
		// Line cost covers all units inside the ordered packs.
		totalCost = totalCost.Add(decimal.NewFromFloat(line.CostPrice).
			Mul(decimal.NewFromInt(int64(line.Quantity * drug.UnitsPerPack))))
	}

	purchase := &model.Purchase{
		InvoiceID: req.InvoiceID,
		Items:     items,
		TotalCost: totalCost.InexactFloat64(),
		Status:    model.PurchasePending,
	}
	if req.SupplierID != "" {
		purchase.SupplierID = &req.SupplierID
	}
	purchase.CreatedBy = userID
	purchase.UpdatedBy = userID

	if err := s.purchaseRepo.Create(purchase); err != nil {
		return nil, err
	}

	return purchase, nil
}

// ApprovePurchase transitions pending -> completed: each line's pack
// quantity converts to units and lands in stock, and the drug's cost price
// takes the line cost (last-cost-wins, no weighted averaging).
func (s *purchaseService) ApprovePurchase(id uuid.UUID, approverID, approverName string) (*model.Purchase, error) {
	var approved *model.Purchase

	err := s.db.Transaction(func(tx *gorm.DB) error {
		purchase, err := s.purchaseRepo.FindForUpdate(tx, id)
		if err != nil {
			return ErrPurchaseNotFound
		}
		if purchase.Status != model.PurchasePending {
			return ErrPurchaseNotPending
		}

		for _, item := range purchase.Items {
			var drug model.Drug
			if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&drug, "id = ?", item.DrugID).Error; err != nil {
				return ErrDrugNotFound
			}

			units := item.Quantity * drug.UnitsPerPack
			if err := s.drugRepo.UpdateStock(tx, drug.ID, drug.Stock+units, approverID); err != nil {
				return err
			}
			if err := s.drugRepo.UpdateCostPrice(tx, drug.ID, item.CostPrice, approverID); err != nil {
				return err
			}
		}

		now := time.Now()
		purchase.Status = model.PurchaseCompleted
		purchase.ApprovalDate = &now
		purchase.ApprovedBy = approverName
		purchase.UpdatedBy = approverID

		if err := s.purchaseRepo.UpdateStatus(tx, purchase); err != nil {
			return err
		}

		approved = purchase
		return nil
	})

	if err != nil {
		return nil, err
	}

	go s.broadcastApproval(approved, approverName)

	return approved, nil
}

// RejectPurchase is a terminal transition with no inventory effect.
func (s *purchaseService) RejectPurchase(id uuid.UUID, userID string) (*model.Purchase, error) {
	var rejected *model.Purchase

	err := s.db.Transaction(func(tx *gorm.DB) error {
		purchase, err := s.purchaseRepo.FindForUpdate(tx, id)
		if err != nil {
			return ErrPurchaseNotFound
		}
		if purchase.Status != model.PurchasePending {
			return ErrPurchaseNotPending
		}

		purchase.Status = model.PurchaseRejected
		purchase.UpdatedBy = userID

		if err := s.purchaseRepo.UpdateStatus(tx, purchase); err != nil {
			return err
		}

		rejected = purchase
		return nil
	})

	if err != nil {
		return nil, err
	}

	return rejected, nil
}

func (s *purchaseService) GetAllPurchases() ([]model.Purchase, error) {
	return s.purchaseRepo.FindAll()
}

func (s *purchaseService) GetPurchaseByID(id uuid.UUID) (*model.Purchase, error) {
	return s.purchaseRepo.FindByID(id)
}

func (s *purchaseService) GetPurchasesByStatus(status model.PurchaseStatus) ([]model.Purchase, error) {
	return s.purchaseRepo.FindByStatus(status)
}

func (s *purchaseService) broadcastApproval(purchase *model.Purchase, approverName string) {
	payload := map[string]interface{}{
		"type":   "stock_update",
		"action": "purchase_approved",
		"purchase": map[string]interface{}{
			"id":         purchase.ID,
			"invoice_id": purchase.InvoiceID,
			"total_cost": purchase.TotalCost,
		},
		"message": fmt.Sprintf("%s approved purchase invoice %s", approverName, purchase.InvoiceID),
	}
	msg, _ := json.Marshal(payload)
	s.wsHub.Broadcast <- msg
}
