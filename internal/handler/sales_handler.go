package handler

import (
	"errors"

	"go-pharmacy-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SalesHandler struct {
	service service.SalesService
}

func NewSalesHandler(s service.SalesService) *SalesHandler {
	return &SalesHandler{service: s}
}

// CompleteSale handles checkout.
// POST /api/v1/sales
func (h *SalesHandler) CompleteSale(c *fiber.Ctx) error {
	var req service.CompleteSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sale, err := h.service.CompleteSale(&req, getUserID(c), getUserName(c))
	if err != nil {
		if errors.Is(err, service.ErrInvalidTransactionTime) {
			return c.Status(422).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Sale completed", "data": sale})
}

// CreateReturn handles returning line items from a prior sale.
// POST /api/v1/returns
func (h *SalesHandler) CreateReturn(c *fiber.Ctx) error {
	var req service.CreateReturnRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	ret, err := h.service.CreateReturn(&req, getUserID(c), getUserName(c))
	if err != nil {
		if errors.Is(err, service.ErrInvalidTransactionTime) {
			return c.Status(422).JSON(fiber.Map{"error": err.Error()})
		}
		if errors.Is(err, service.ErrSaleNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Return processed", "data": ret})
}

func (h *SalesHandler) GetSales(c *fiber.Ctx) error {
	sales, err := h.service.GetAllSales()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(sales)
}

func (h *SalesHandler) GetSale(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	sale, err := h.service.GetSaleByID(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Sale not found"})
	}
	return c.JSON(sale)
}

func (h *SalesHandler) GetReturns(c *fiber.Ctx) error {
	returns, err := h.service.GetAllReturns()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(returns)
}

func (h *SalesHandler) GetSaleReturns(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	returns, err := h.service.GetReturnsForSale(id)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(returns)
}
