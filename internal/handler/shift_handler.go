package handler

import (
	"errors"

	"go-pharmacy-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ShiftHandler struct {
	service service.ShiftService
}

func NewShiftHandler(s service.ShiftService) *ShiftHandler {
	return &ShiftHandler{service: s}
}

type openShiftRequest struct {
	OpeningCash float64 `json:"opening_cash"`
}

// OpenShift starts a register session.
// POST /api/v1/shifts/open
func (h *ShiftHandler) OpenShift(c *fiber.Ctx) error {
	var req openShiftRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	shift, err := h.service.OpenShift(req.OpeningCash, getUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrShiftAlreadyOpen) {
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Shift opened", "data": shift})
}

type closeShiftRequest struct {
	DeclaredCash float64 `json:"declared_cash"`
}

// CloseShift ends the open session and reports the drawer variance.
// POST /api/v1/shifts/close
func (h *ShiftHandler) CloseShift(c *fiber.Ctx) error {
	var req closeShiftRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	summary, err := h.service.CloseShift(req.DeclaredCash, getUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrNoOpenShift) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Shift closed", "data": summary})
}

func (h *ShiftHandler) GetCurrentShift(c *fiber.Ctx) error {
	shift, err := h.service.GetCurrentShift()
	if err != nil {
		if errors.Is(err, service.ErrNoOpenShift) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(shift)
}

func (h *ShiftHandler) GetShift(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid shift ID"})
	}

	shift, err := h.service.GetShiftByID(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Shift not found"})
	}
	return c.JSON(shift)
}

func (h *ShiftHandler) GetShifts(c *fiber.Ctx) error {
	shifts, err := h.service.GetAllShifts()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(shifts)
}
