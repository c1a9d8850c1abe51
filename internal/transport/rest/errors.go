package rest

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// domainErrorResponse переводит ошибку доменного слоя в HTTP-ответ.
//
// Таксономия: ошибки валидации запроса — 400, отсутствующие сущности — 404,
// запреты по роли — 403, конфликты состояния (остаток, версия, повтор
// idempotency-key) — 409, всё остальное — 500 без деталей.
func domainErrorResponse(c *fiber.Ctx, err error) error {
	var insufficientStock *domain.InsufficientStockError
	if errors.As(err, &insufficientStock) {
		return errorResponse(c, fiber.StatusConflict, "INSUFFICIENT_STOCK", insufficientStock.Error(), map[string]interface{}{
			"product_id": insufficientStock.ProductID,
			"available":  insufficientStock.Available,
		})
	}

	var productNotFound *domain.ProductNotFoundError
	if errors.As(err, &productNotFound) {
		return errorResponse(c, fiber.StatusNotFound, "PRODUCT_NOT_FOUND", productNotFound.Error(), map[string]interface{}{
			"product_id": productNotFound.ProductID,
		})
	}

	switch {
	case errors.Is(err, domain.ErrEmptyOrder),
		errors.Is(err, domain.ErrItemQtyInvalid),
		errors.Is(err, domain.ErrDeliveryAddressRequired),
		errors.Is(err, domain.ErrPaymentMethodInvalid),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrRoleInvalid),
		errors.Is(err, domain.ErrProductNameRequired),
		errors.Is(err, domain.ErrProductPriceNegative),
		errors.Is(err, domain.ErrProductStockNegative),
		errors.Is(err, domain.ErrProductSellerRequired):
		return errorResponse(c, fiber.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, domain.ErrProductNotFound):
		return errorResponse(c, fiber.StatusNotFound, "PRODUCT_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, domain.ErrOrderNotFound):
		return errorResponse(c, fiber.StatusNotFound, "ORDER_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, domain.ErrAccountNotFound):
		return errorResponse(c, fiber.StatusNotFound, "ACCOUNT_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrAccountSuspended):
		return errorResponse(c, fiber.StatusForbidden, "FORBIDDEN", err.Error(), nil)
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrOrderVersionConflict),
		errors.Is(err, domain.ErrIdempotencyHashMismatch):
		return errorResponse(c, fiber.StatusConflict, "CONFLICT", err.Error(), nil)
	default:
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal server error", nil)
	}
}
