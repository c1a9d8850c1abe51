package rest

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
	"github.com/vladislavdragonenkov/marketplace/internal/service/orders"
)

const defaultListLimit = 50

// placeOrder размещает заказ. Заголовок Idempotency-Key делает запрос
// повторяемым: повтор с тем же телом вернёт сохранённый ответ.
func (s *Server) placeOrder(c *fiber.Ctx) error {
	var req placeOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	if key := c.Get("Idempotency-Key"); key != "" {
		return s.withIdempotency(c, key, func() error {
			return s.doPlaceOrder(c, req)
		})
	}
	return s.doPlaceOrder(c, req)
}

func (s *Server) doPlaceOrder(c *fiber.Ctx, req placeOrderRequest) error {
	items := make([]orders.PlaceOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, orders.PlaceOrderItem{ProductID: item.ProductID, Qty: item.Qty})
	}

	order, err := s.orders.PlaceOrder(actorFromCtx(c), orders.PlaceOrderRequest{
		Items:           items,
		DeliveryAddress: req.DeliveryAddress,
		PaymentMethod:   domain.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		return domainErrorResponse(c, err)
	}

	return createdResponse(c, "order placed", mapOrder(order))
}

func (s *Server) listCustomerOrders(c *fiber.Ctx) error {
	found, err := s.orders.CustomerOrders(actorFromCtx(c), limitQuery(c))
	if err != nil {
		return domainErrorResponse(c, err)
	}
	return successResponse(c, "orders retrieved", mapOrders(found))
}

func (s *Server) listSellerOrders(c *fiber.Ctx) error {
	views, err := s.orders.SellerOrders(actorFromCtx(c), limitQuery(c))
	if err != nil {
		return domainErrorResponse(c, err)
	}
	return successResponse(c, "orders retrieved", mapSellerOrders(views))
}

// getOrder отдаёт заказ по роли актора: продавец получает проекцию со
// своими позициями и подытогом, покупатель и администратор — заказ целиком.
func (s *Server) getOrder(c *fiber.Ctx) error {
	actor := actorFromCtx(c)

	if actor.Role == domain.RoleSeller {
		view, err := s.orders.SellerOrder(actor, c.Params("id"))
		if err != nil {
			return domainErrorResponse(c, err)
		}
		return successResponse(c, "order retrieved", mapSellerOrder(view))
	}

	order, err := s.orders.GetOrder(actor, c.Params("id"))
	if err != nil {
		return domainErrorResponse(c, err)
	}
	return successResponse(c, "order retrieved", mapOrder(order))
}

func (s *Server) getOrderHistory(c *fiber.Ctx) error {
	changes, err := s.orders.History(actorFromCtx(c), c.Params("id"))
	if err != nil {
		return domainErrorResponse(c, err)
	}
	return successResponse(c, "history retrieved", mapStatusChanges(changes))
}

func (s *Server) updateOrderStatus(c *fiber.Ctx) error {
	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		return domainErrorResponse(c, err)
	}

	order, err := s.orders.UpdateStatus(actorFromCtx(c), c.Params("id"), status, req.Note)
	if err != nil {
		return domainErrorResponse(c, err)
	}
	return successResponse(c, "order status updated", mapOrder(order))
}

func limitQuery(c *fiber.Ctx) int {
	raw := c.Query("limit")
	if raw == "" {
		return defaultListLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > 100 {
		return defaultListLimit
	}
	return limit
}
