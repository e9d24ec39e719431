package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-pharmacy-pos/internal/model"
	"go-pharmacy-pos/internal/repository"
	"go-pharmacy-pos/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrShiftNotFound     = errors.New("shift not found")
	ErrShiftAlreadyOpen  = errors.New("a shift is already open")
	ErrNoOpenShift       = errors.New("no shift is currently open")
	ErrShiftNotOpen      = errors.New("shift is not open")
	ErrNegativeCashFloat = errors.New("opening cash cannot be negative")
)

type ShiftService interface {
	OpenShift(openingCash float64, userID string) (*model.Shift, error)
	CloseShift(declaredCash float64, userID string) (*ShiftCloseSummary, error)
	GetCurrentShift() (*model.Shift, error)
	GetShiftByID(id uuid.UUID) (*model.Shift, error)
	GetAllShifts() ([]model.Shift, error)
}

// ShiftCloseSummary reports the drawer reconciliation at close time.
type ShiftCloseSummary struct {
	Shift        model.Shift `json:"shift"`
	ExpectedCash float64     `json:"expected_cash"`
	DeclaredCash float64     `json:"declared_cash"`
	Variance     float64     `json:"variance"` // declared minus expected
}

type shiftService struct {
	shiftRepo repository.ShiftRepository
	db        *gorm.DB
	wsHub     *ws.Hub
}

func NewShiftService(shiftRepo repository.ShiftRepository, db *gorm.DB, hub *ws.Hub) ShiftService {
	return &shiftService{
		shiftRepo: shiftRepo,
		db:        db,
		wsHub:     hub,
	}
}

func (s *shiftService) OpenShift(openingCash float64, userID string) (*model.Shift, error) {
	if openingCash < 0 {
		return nil, ErrNegativeCashFloat
	}

	var shift *model.Shift

	// The single-open-shift invariant is enforced under a transaction so
	// two registers racing to open both see the other's row.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		_, err := s.shiftRepo.FindOpenForUpdate(tx)
		if err == nil {
			return ErrShiftAlreadyOpen
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		shift = &model.Shift{
			Status:         model.ShiftOpen,
			OpenedAt:       time.Now(),
			OpeningCash:    openingCash,
			OpenedByUserID: &userID,
		}
		shift.CreatedBy = userID
		shift.UpdatedBy = userID

		return tx.Create(shift).Error
	})

	if err != nil {
		return nil, err
	}

	go s.broadcastShift("shift_opened", shift)

	return shift, nil
}

func (s *shiftService) CloseShift(declaredCash float64, userID string) (*ShiftCloseSummary, error) {
	var summary *ShiftCloseSummary

	err := s.db.Transaction(func(tx *gorm.DB) error {
		shift, err := s.shiftRepo.FindOpenForUpdate(tx)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoOpenShift
		}
		if err != nil {
			return err
		}

		now := time.Now()
		shift.Status = model.ShiftClosed
		shift.ClosedAt = &now
		shift.DeclaredCash = &declaredCash
		shift.ClosedByUserID = &userID
		shift.UpdatedBy = userID

		if err := tx.Save(shift).Error; err != nil {
			return err
		}

		expected := shift.ExpectedCash()
		summary = &ShiftCloseSummary{
			Shift:        *shift,
			ExpectedCash: expected,
			DeclaredCash: declaredCash,
			Variance:     declaredCash - expected,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	go s.broadcastShift("shift_closed", &summary.Shift)

	return summary, nil
}

func (s *shiftService) GetCurrentShift() (*model.Shift, error) {
	shift, err := s.shiftRepo.FindOpen()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoOpenShift
	}
	if err != nil {
		return nil, err
	}
	return shift, nil
}

func (s *shiftService) GetShiftByID(id uuid.UUID) (*model.Shift, error) {
	shift, err := s.shiftRepo.FindByID(id)
	if err != nil {
		return nil, ErrShiftNotFound
	}
	return shift, nil
}

func (s *shiftService) GetAllShifts() ([]model.Shift, error) {
	return s.shiftRepo.FindAll()
}

func (s *shiftService) broadcastShift(action string, shift *model.Shift) {
	payload := map[string]interface{}{
		"type":   "shift_notification",
		"action": action,
		"shift": map[string]interface{}{
			"id":         shift.ID,
			"status":     shift.Status,
			"opened_at":  shift.OpenedAt,
			"cash_sales": shift.CashSales,
			"card_sales": shift.CardSales,
			"returns":    shift.Returns,
		},
		"message": fmt.Sprintf("register %s", action),
	}
	msg, _ := json.Marshal(payload)
	s.wsHub.Broadcast <- msg
}
