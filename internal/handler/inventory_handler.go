package handler

import (
	"strconv"

	"go-pharmacy-pos/internal/model"
	"go-pharmacy-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

// Helpers to pull user info from the JWT context (set by auth middleware)
func getUserID(c *fiber.Ctx) string {
	userID := c.Locals("user_id")
	if userID == nil {
		return "system"
	}
	return userID.(string)
}

func getUserName(c *fiber.Ctx) string {
	userName := c.Locals("user_name")
	if userName == nil {
		return "Unknown"
	}
	return userName.(string)
}

func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

func (h *InventoryHandler) CreateDrug(c *fiber.Ctx) error {
	var drug model.Drug
	if err := c.BodyParser(&drug); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.service.CreateDrug(&drug, getUserID(c), getUserName(c)); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Drug created", "data": drug})
}

func (h *InventoryHandler) UpdateDrug(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid drug ID"})
	}

	var drug model.Drug
	if err := c.BodyParser(&drug); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.service.UpdateDrug(id, &drug, getUserID(c), getUserName(c))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Drug updated", "data": updated})
}

func (h *InventoryHandler) DeleteDrug(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid drug ID"})
	}

	if err := h.service.DeleteDrug(id, getUserID(c)); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Drug deleted"})
}

type adjustStockRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid drug ID"})
	}

	var req adjustStockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Delta == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Delta must be non-zero"})
	}

	drug, err := h.service.AdjustStock(id, req.Delta, req.Reason, getUserID(c), getUserName(c))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Stock adjusted", "data": drug})
}

func (h *InventoryHandler) GetDrugs(c *fiber.Ctx) error {
	if query := c.Query("q"); query != "" {
		drugs, err := h.service.SearchDrugs(query)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
		}
		return c.JSON(drugs)
	}

	drugs, err := h.service.GetAllDrugs()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(drugs)
}

// GetDrugByBarcode resolves a scanned barcode to a catalog item.
// GET /api/v1/drugs/barcode/:code
func (h *InventoryHandler) GetDrugByBarcode(c *fiber.Ctx) error {
	drug, err := h.service.GetDrugByBarcode(c.Params("code"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Drug not found"})
	}
	return c.JSON(drug)
}

func (h *InventoryHandler) GetDrug(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid drug ID"})
	}

	drug, err := h.service.GetDrugByID(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Drug not found"})
	}
	return c.JSON(drug)
}

func (h *InventoryHandler) GetLowStock(c *fiber.Ctx) error {
	threshold, _ := strconv.Atoi(c.Query("threshold", "10"))

	drugs, err := h.service.GetLowStock(threshold)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(drugs)
}

func (h *InventoryHandler) GetExpiringSoon(c *fiber.Ctx) error {
	days, _ := strconv.Atoi(c.Query("days", "30"))

	drugs, err := h.service.GetExpiringSoon(days)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(drugs)
}
