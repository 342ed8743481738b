package handlers

import (
	"github.com/gofiber/fiber/v2"

	"jobfit/analyzer/internal/services"
)

type PortfolioHandler struct {
	portfolio services.PortfolioService
}

func NewPortfolioHandler(portfolio services.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolio: portfolio}
}

// HandleGetPortfolio handles GET /portfolio. It lists the loaded facts
// without their bodies.
func (h *PortfolioHandler) HandleGetPortfolio(c *fiber.Ctx) error {
	facts := h.portfolio.Facts()

	return c.JSON(fiber.Map{
		"count": len(facts),
		"facts": facts,
	})
}
