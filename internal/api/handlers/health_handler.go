package handlers

import (
	"rag-mentor/internal/dto"

	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	generatorConfigured bool
}

func NewHealthHandler(generatorConfigured bool) *HealthHandler {
	return &HealthHandler{generatorConfigured: generatorConfigured}
}

// Health godoc
// @Summary Liveness check
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{
		Status:              "ok",
		GeneratorConfigured: h.generatorConfigured,
	})
}

// Root godoc
// @Summary Service banner
// @Produce json
// @Success 200 {object} dto.RootResponse
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(dto.RootResponse{
		Message: "Mentor RAG server работает!",
		Status:  "ok",
	})
}
