package rest

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

func (s *Server) upsertProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	product, err := s.catalog.UpsertProduct(actorFromCtx(c), domain.Product{
		ID:         req.ID,
		Name:       req.Name,
		PriceMinor: req.PriceMinor,
		Stock:      req.Stock,
		CategoryID: req.CategoryID,
		SellerID:   req.SellerID,
	})
	if err != nil {
		return domainErrorResponse(c, err)
	}
	return successResponse(c, "product saved", mapProduct(product))
}

func (s *Server) getProduct(c *fiber.Ctx) error {
	product, err := s.catalog.GetProduct(c.Params("id"))
	if err != nil {
		return domainErrorResponse(c, err)
	}
	return successResponse(c, "product retrieved", mapProduct(product))
}
