package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"go-pharmacy-pos/internal/loyalty"
	"go-pharmacy-pos/internal/model"
	"go-pharmacy-pos/internal/repository"
	"go-pharmacy-pos/internal/ws"
	"go-pharmacy-pos/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidTransactionTime = errors.New("transaction time is not later than the last recorded transaction")
	ErrEmptyCart              = errors.New("cart has no items")
	ErrSaleNotFound           = errors.New("sale not found")
	ErrDrugNotFound           = errors.New("drug not found")
	ErrReturnItemNotOnSale    = errors.New("returned drug is not on the referenced sale")
)

type SaleLineRequest struct {
	DrugID    string  `json:"drug_id" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
	IsUnit    bool    `json:"is_unit"`
}

type CompleteSaleRequest struct {
	Date          time.Time           `json:"date" validate:"required"`
	Items         []SaleLineRequest   `json:"items" validate:"required,min=1,dive"`
	Discount      float64             `json:"discount" validate:"gte=0"`
	PaymentMethod model.PaymentMethod `json:"payment_method" validate:"required,payment_method"`
	CustomerCode  string              `json:"customer_code"`
	CustomerName  string              `json:"customer_name"`
}

type ReturnLineRequest struct {
	DrugID       string  `json:"drug_id" validate:"required"`
	Quantity     int     `json:"quantity" validate:"required,gt=0"`
	RefundAmount float64 `json:"refund_amount" validate:"gte=0"`
	IsUnit       bool    `json:"is_unit"`
}

type CreateReturnRequest struct {
	SaleID string              `json:"sale_id" validate:"required"`
	Date   time.Time           `json:"date" validate:"required"`
	Items  []ReturnLineRequest `json:"items" validate:"required,min=1,dive"`
}

type SalesService interface {
	CompleteSale(req *CompleteSaleRequest, userID, userName string) (*model.Sale, error)
	CreateReturn(req *CreateReturnRequest, userID, userName string) (*model.Return, error)
	GetAllSales() ([]model.Sale, error)
	GetSaleByID(id uuid.UUID) (*model.Sale, error)
	GetAllReturns() ([]model.Return, error)
	GetReturnsForSale(saleID uuid.UUID) ([]model.Return, error)
}

type salesService struct {
	db           *gorm.DB
	drugRepo     repository.DrugRepository
	saleRepo     repository.SaleRepository
	customerRepo repository.CustomerRepository
	shiftRepo    repository.ShiftRepository
	wsHub        *ws.Hub
}

func NewSalesService(
	db *gorm.DB,
	drugRepo repository.DrugRepository,
	saleRepo repository.SaleRepository,
	customerRepo repository.CustomerRepository,
	shiftRepo repository.ShiftRepository,
	hub *ws.Hub,
) SalesService {
	return &salesService{
		db:           db,
		drugRepo:     drugRepo,
		saleRepo:     saleRepo,
		customerRepo: customerRepo,
		shiftRepo:    shiftRepo,
		wsHub:        hub,
	}
}

// validateTransactionTime enforces the monotonic ordering rule: every sale
// and return must carry a timestamp strictly later than the last accepted
// transaction. This guards against clock skew and back-dated entries, not
// against concurrent writers.
func validateTransactionTime(last *time.Time, next time.Time) error {
	if next.IsZero() {
		return ErrInvalidTransactionTime
	}
	if last != nil && !next.After(*last) {
		return ErrInvalidTransactionTime
	}
	return nil
}

// saleSerial derives the sequential serial from the number of prior sales.
func saleSerial(priorCount int64) int64 {
	return model.FirstSaleSerial + priorCount
}

// deductStock subtracts sold units from stock, clamping at zero. A clamped
// result means the catalog disagreed with reality; the sale still completes
// and the caller logs the integrity violation.
func deductStock(stock, units int) (newStock int, clamped bool) {
	newStock = stock - units
	if newStock < 0 {
		return 0, true
	}
	return newStock, false
}

// resolveCustomer matches a loyalty account for a checkout: by member code
// first, then by the code read as a serial number, then by exact name when
// no code was given and the name is not the walk-in placeholder.
func resolveCustomer(repo repository.CustomerRepository, code, name string) *model.Customer {
	if code != "" {
		if c, err := repo.FindByCode(code); err == nil {
			return c
		}
		if serial, err := strconv.ParseInt(code, 10, 64); err == nil {
			if c, err := repo.FindBySerial(serial); err == nil {
				return c
			}
		}
		return nil
	}
	if name == "" || name == model.GuestCustomerName {
		return nil
	}
	c, err := repo.FindByExactName(name)
	if err != nil {
		return nil
	}
	return c
}

func (s *salesService) lockAppState(tx *gorm.DB) (*model.AppState, error) {
	var state model.AppState
	err := tx.Set("gorm:query_option", "FOR UPDATE").First(&state, "id = ?", model.AppStateID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		state = model.AppState{ID: model.AppStateID}
		if err := tx.Create(&state).Error; err != nil {
			return nil, err
		}
		return &state, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *salesService) advanceTransactionTime(tx *gorm.DB, at time.Time) error {
	return tx.Model(&model.AppState{}).
		Where("id = ?", model.AppStateID).
		Update("last_transaction_at", at).Error
}

func (s *salesService) CompleteSale(req *CompleteSaleRequest, userID, userName string) (*model.Sale, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	var sale *model.Sale

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// 1. Ordering guard runs before any mutation.
		state, err := s.lockAppState(tx)
		if err != nil {
			return err
		}
		if err := validateTransactionTime(state.LastTransactionAt, req.Date); err != nil {
			return err
		}

		// 2. Serial and per-day order number from prior sale counts.
		priorCount, err := s.saleRepo.CountAll(tx)
		if err != nil {
			return err
		}
		sameDay, err := s.saleRepo.CountOnDay(tx, req.Date)
		if err != nil {
			return err
		}

		// 3. Deduct stock line by line, building item snapshots and the
		// loyalty view of the cart as we go.
		total := decimal.NewFromFloat(0)
		items := make([]model.SaleItem, 0, len(req.Items))
		lines := make([]loyalty.Line, 0, len(req.Items))

		for _, line := range req.Items {
			drugID, err := uuid.Parse(line.DrugID)
			if err != nil {
				return ErrDrugNotFound
			}

			var drug model.Drug
			if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&drug, "id = ?", drugID).Error; err != nil {
				return ErrDrugNotFound
			}

			units := drug.UnitsFor(line.Quantity, line.IsUnit)
			newStock, clamped := deductStock(drug.Stock, units)
			if clamped {
				log.Printf("stock integrity violation: drug %s would go to %d units, clamped to 0",
					drug.InternalCode, drug.Stock-units)
			}
			if err := s.drugRepo.UpdateStock(tx, drug.ID, newStock, userID); err != nil {
				return err
			}

			item := model.SaleItem{
				DrugID:       drug.ID,
				Quantity:     line.Quantity,
				UnitPrice:    line.UnitPrice,
				IsUnit:       line.IsUnit,
				UnitsPerPack: drug.UnitsPerPack,
			}
			items = append(items, item)
			lines = append(lines, loyalty.Line{
				EffectiveUnitPrice: item.EffectiveUnitPrice(),
				Quantity:           line.Quantity,
			})

			total = total.Add(decimal.NewFromFloat(line.UnitPrice).
				Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		total = total.Sub(decimal.NewFromFloat(req.Discount))
		saleTotal := total.InexactFloat64()

		// 4. Tiered loyalty points over the discounted total.
		points := loyalty.Points(saleTotal, lines)

		// 5. Credit the matching loyalty account, if there is one.
		customer := resolveCustomer(s.customerRepo, req.CustomerCode, req.CustomerName)

		sale = &model.Sale{
			Serial:        saleSerial(priorCount),
			OrderNumber:   int(sameDay) + 1,
			Date:          req.Date,
			Items:         items,
			Total:         saleTotal,
			Discount:      req.Discount,
			NetTotal:      saleTotal,
			PaymentMethod: req.PaymentMethod,
			Status:        model.SaleCompleted,
			Points:        points,
			SoldByUserID:  &userID,
		}
		sale.CreatedBy = userID
		sale.UpdatedBy = userID

		if customer != nil {
			sale.CustomerID = &customer.ID
			if points > 0 {
				if err := s.customerRepo.AddPoints(tx, customer.ID, points); err != nil {
					return err
				}
			}
		}

		if err := tx.Create(sale).Error; err != nil {
			return err
		}

		// 6. Append to the open register shift. No open shift is not an
		// error: the sale completes, the register just has no ledger.
		if err := s.appendSaleToShift(tx, sale); err != nil {
			return err
		}

		return s.advanceTransactionTime(tx, req.Date)
	})

	if err != nil {
		return nil, err
	}

	go s.broadcastSale(sale, userID, userName)

	return sale, nil
}

func (s *salesService) appendSaleToShift(tx *gorm.DB, sale *model.Sale) error {
	shift, err := s.shiftRepo.FindOpenForUpdate(tx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	cashTx := &model.CashTransaction{
		ShiftID:     shift.ID,
		Type:        model.CashTxSale,
		Method:      sale.PaymentMethod,
		Amount:      sale.Total,
		ReferenceID: &sale.ID,
	}
	if err := s.shiftRepo.AppendTransaction(tx, cashTx); err != nil {
		return err
	}

	cash, card := 0.0, 0.0
	if sale.PaymentMethod == model.PaymentCard {
		card = sale.Total
	} else {
		cash = sale.Total
	}
	return s.shiftRepo.AddToTotals(tx, shift.ID, cash, card, 0)
}

func (s *salesService) CreateReturn(req *CreateReturnRequest, userID, userName string) (*model.Return, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}

	saleID, err := uuid.Parse(req.SaleID)
	if err != nil {
		return nil, ErrSaleNotFound
	}

	var ret *model.Return

	err = s.db.Transaction(func(tx *gorm.DB) error {
		state, err := s.lockAppState(tx)
		if err != nil {
			return err
		}
		if err := validateTransactionTime(state.LastTransactionAt, req.Date); err != nil {
			return err
		}

		var sale model.Sale
		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			Preload("Items").
			First(&sale, "id = ?", saleID).Error; err != nil {
			return ErrSaleNotFound
		}

		// 1. Build and persist the immutable return record.
		retItems, totalRefund, err := buildReturnItems(sale.Items, req.Items)
		if err != nil {
			return err
		}

		ret = &model.Return{
			SaleID:            sale.ID,
			Items:             retItems,
			TotalRefund:       totalRefund,
			Date:              req.Date,
			ProcessedByUserID: &userID,
		}
		ret.CreatedBy = userID
		ret.UpdatedBy = userID

		if err := tx.Create(ret).Error; err != nil {
			return err
		}

		// 2. Net total is recomputed from the full refund history so the
		// invariant netTotal = total - sum(refunds) holds regardless of
		// how many returns the sale already has.
		refunded, err := s.saleRepo.TotalRefundsForSale(tx, sale.ID)
		if err != nil {
			return err
		}
		netTotal := decimal.NewFromFloat(sale.Total).
			Sub(decimal.NewFromFloat(refunded)).
			InexactFloat64()

		if err := tx.Model(&model.Sale{}).
			Where("id = ?", sale.ID).
			Updates(map[string]interface{}{
				"net_total":  netTotal,
				"status":     model.SalePartiallyReturned,
				"updated_by": userID,
			}).Error; err != nil {
			return err
		}

		// 3. Merge cumulative returned quantities into the sale items and
		// restore inventory with the sold-unit conversion in reverse.
		for _, line := range ret.Items {
			saleItem := matchSaleItem(sale.Items, line.DrugID, line.IsUnit)
			if err := tx.Model(&model.SaleItem{}).
				Where("id = ?", saleItem.ID).
				Update("returned_qty", gorm.Expr("returned_qty + ?", line.Quantity)).Error; err != nil {
				return err
			}

			var drug model.Drug
			if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&drug, "id = ?", line.DrugID).Error; err != nil {
				return ErrDrugNotFound
			}
			units := line.Quantity
			if !line.IsUnit {
				units = line.Quantity * saleItem.UnitsPerPack
			}
			if err := s.drugRepo.UpdateStock(tx, drug.ID, drug.Stock+units, userID); err != nil {
				return err
			}
		}

		// 4. Register ledger entry keyed off the original payment method.
		if err := s.appendReturnToShift(tx, &sale, ret); err != nil {
			return err
		}

		return s.advanceTransactionTime(tx, req.Date)
	})

	if err != nil {
		return nil, err
	}

	go s.broadcastReturn(ret, userID, userName)

	return ret, nil
}

// buildReturnItems validates the requested return lines against what the
// sale actually contains and converts them into persistable return items.
// Every line must refer to a drug that was sold on this sale; a return may
// not conjure stock for something the customer never bought.
func buildReturnItems(saleItems []model.SaleItem, lines []ReturnLineRequest) ([]model.ReturnItem, float64, error) {
	totalRefund := decimal.NewFromFloat(0)
	items := make([]model.ReturnItem, 0, len(lines))
	for _, line := range lines {
		drugID, err := uuid.Parse(line.DrugID)
		if err != nil {
			return nil, 0, ErrDrugNotFound
		}
		if matchSaleItem(saleItems, drugID, line.IsUnit) == nil {
			return nil, 0, ErrReturnItemNotOnSale
		}
		items = append(items, model.ReturnItem{
			DrugID:       drugID,
			Quantity:     line.Quantity,
			RefundAmount: line.RefundAmount,
			IsUnit:       line.IsUnit,
		})
		totalRefund = totalRefund.Add(decimal.NewFromFloat(line.RefundAmount))
	}
	return items, totalRefund.InexactFloat64(), nil
}

// matchSaleItem finds the sale line a return line refers to, preferring an
// exact unit/pack match before falling back to the drug alone.
func matchSaleItem(items []model.SaleItem, drugID uuid.UUID, isUnit bool) *model.SaleItem {
	for i := range items {
		if items[i].DrugID == drugID && items[i].IsUnit == isUnit {
			return &items[i]
		}
	}
	for i := range items {
		if items[i].DrugID == drugID {
			return &items[i]
		}
	}
	return nil
}

func (s *salesService) appendReturnToShift(tx *gorm.DB, sale *model.Sale, ret *model.Return) error {
	shift, err := s.shiftRepo.FindOpenForUpdate(tx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	cashTx := &model.CashTransaction{
		ShiftID:     shift.ID,
		Type:        model.CashTxReturn,
		Method:      sale.PaymentMethod,
		Amount:      ret.TotalRefund,
		ReferenceID: &ret.ID,
	}
	if err := s.shiftRepo.AppendTransaction(tx, cashTx); err != nil {
		return err
	}
	return s.shiftRepo.AddToTotals(tx, shift.ID, 0, 0, ret.TotalRefund)
}

func (s *salesService) GetAllSales() ([]model.Sale, error) {
	return s.saleRepo.FindAll()
}

func (s *salesService) GetSaleByID(id uuid.UUID) (*model.Sale, error) {
	return s.saleRepo.FindByID(id)
}

func (s *salesService) GetAllReturns() ([]model.Return, error) {
	return s.saleRepo.FindAllReturns()
}

func (s *salesService) GetReturnsForSale(saleID uuid.UUID) ([]model.Return, error) {
	return s.saleRepo.FindReturnsBySaleID(saleID)
}

func (s *salesService) broadcastSale(sale *model.Sale, userID, userName string) {
	payload := map[string]interface{}{
		"type":   "sale_update",
		"action": "sale_completed",
		"sale": map[string]interface{}{
			"id":           sale.ID,
			"serial":       sale.Serial,
			"order_number": sale.OrderNumber,
			"total":        sale.Total,
			"points":       sale.Points,
			"method":       sale.PaymentMethod,
		},
		"user": map[string]interface{}{
			"id":   userID,
			"name": userName,
		},
		"message": fmt.Sprintf("%s completed sale #%d", userName, sale.Serial),
	}
	msg, _ := json.Marshal(payload)
	s.wsHub.Broadcast <- msg
}

func (s *salesService) broadcastReturn(ret *model.Return, userID, userName string) {
	payload := map[string]interface{}{
		"type":   "sale_update",
		"action": "return_processed",
		"return": map[string]interface{}{
			"id":           ret.ID,
			"sale_id":      ret.SaleID,
			"total_refund": ret.TotalRefund,
		},
		"user": map[string]interface{}{
			"id":   userID,
			"name": userName,
		},
		"message": fmt.Sprintf("%s processed a return of %.2f", userName, ret.TotalRefund),
	}
	msg, _ := json.Marshal(payload)
	s.wsHub.Broadcast <- msg
}
