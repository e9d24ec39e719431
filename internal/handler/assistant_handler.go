package handler

import (
	"go-pharmacy-pos/internal/assistant"

	"github.com/gofiber/fiber/v2"
)

type AssistantHandler struct {
	service assistant.AssistantService
}

func NewAssistantHandler(s assistant.AssistantService) *AssistantHandler {
	return &AssistantHandler{service: s}
}

type interactionRequest struct {
	DrugName string `json:"drug_name"`
	Question string `json:"question"`
}

// AnalyzeDrugInteraction asks the assistant a free-text question about a
// drug. Failures of the external service surface here as an inline error
// and never affect the rest of the system.
// POST /api/v1/assistant/drug-interaction
func (h *AssistantHandler) AnalyzeDrugInteraction(c *fiber.Ctx) error {
	var req interactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if req.DrugName == "" || req.Question == "" {
		return c.Status(400).JSON(fiber.Map{"error": "drug_name and question are required"})
	}

	answer, err := h.service.AnalyzeDrugInteraction(c.Context(), req.DrugName, req.Question)
	if err != nil {
		return c.Status(502).JSON(fiber.Map{"error": "Assistant unavailable: " + err.Error()})
	}

	return c.JSON(fiber.Map{"answer": answer})
}
