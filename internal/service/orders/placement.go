package orders

import (
	"encoding/json"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
	"github.com/vladislavdragonenkov/marketplace/internal/messaging/kafka"
)

// PlaceOrderItem — запрошенная позиция заказа.
type PlaceOrderItem struct {
	ProductID string
	Qty       int32
}

// PlaceOrderRequest — параметры размещения заказа.
type PlaceOrderRequest struct {
	Items           []PlaceOrderItem
	DeliveryAddress string
	PaymentMethod   domain.PaymentMethod
}

// PlaceOrder размещает заказ от имени покупателя.
//
// Порядок работы: сначала валидируются все позиции против каталога, затем
// остатки списываются условными декрементами по одному. Если списание
// очередной позиции не удалось, уже списанные остатки возвращаются
// компенсирующим RestoreStock, и заказ не создаётся. Цена, название и
// продавец каждой позиции фиксируются на момент размещения.
func (s *Service) PlaceOrder(actor domain.Actor, req PlaceOrderRequest) (domain.Order, error) {
	started := s.now()
	s.metrics.RecordPlacementStarted()
	defer func() {
		s.metrics.RecordPlacementFinished()
		s.metrics.RecordPlacementDuration(s.now().Sub(started))
	}()

	if actor.Role != domain.RoleCustomer {
		s.metrics.RecordPlacementFailed("forbidden")
		return domain.Order{}, domain.ErrForbidden
	}
	if len(req.Items) == 0 {
		s.metrics.RecordPlacementFailed("empty_order")
		return domain.Order{}, domain.ErrEmptyOrder
	}
	for _, item := range req.Items {
		if item.Qty <= 0 {
			s.metrics.RecordPlacementFailed("invalid_qty")
			return domain.Order{}, domain.ErrItemQtyInvalid
		}
	}
	if req.DeliveryAddress == "" {
		s.metrics.RecordPlacementFailed("invalid_request")
		return domain.Order{}, domain.ErrDeliveryAddressRequired
	}
	if !req.PaymentMethod.Valid() {
		s.metrics.RecordPlacementFailed("invalid_request")
		return domain.Order{}, domain.ErrPaymentMethodInvalid
	}

	products, err := s.resolveProducts(req.Items)
	if err != nil {
		s.metrics.RecordPlacementFailed(placementFailureReason(err))
		return domain.Order{}, err
	}

	if err := s.reserveStock(req.Items); err != nil {
		s.metrics.RecordPlacementFailed(placementFailureReason(err))
		return domain.Order{}, err
	}

	order := s.buildOrder(actor.ID, req, products)
	if err := s.orders.Create(order); err != nil {
		s.releaseStock(req.Items)
		s.metrics.RecordPlacementFailed("storage")
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	s.appendHistory(domain.StatusChange{
		OrderID:   order.ID,
		Status:    order.Status,
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Note:      "order placed",
		Occurred:  order.CreatedAt,
	})
	s.enqueuePlacedEvent(order)

	s.metrics.RecordOrderPlaced()
	s.logger.WithFields(log.Fields{
		"order_id":     order.ID,
		"customer_id":  order.CustomerID,
		"amount_minor": order.AmountMinor,
		"items":        len(order.Items),
	}).Info("order placed")

	return order, nil
}

// resolveProducts загружает и проверяет все товары заказа до каких-либо списаний.
func (s *Service) resolveProducts(items []PlaceOrderItem) (map[string]domain.Product, error) {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	found, err := s.products.FindByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	byID := make(map[string]domain.Product, len(found))
	for _, product := range found {
		byID[product.ID] = product
	}

	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, &domain.ProductNotFoundError{ProductID: item.ProductID}
		}
		// Ранняя проверка остатка. Решающая проверка происходит в условном
		// декременте, эта лишь даёт точный Available до начала списаний.
		if product.Stock < item.Qty {
			return nil, &domain.InsufficientStockError{ProductID: item.ProductID, Available: product.Stock}
		}
	}

	return byID, nil
}

// reserveStock списывает остатки по позициям; при отказе возвращает
// уже списанное обратно.
func (s *Service) reserveStock(items []PlaceOrderItem) error {
	for i, item := range items {
		if err := s.products.DecrementStock(item.ProductID, item.Qty); err != nil {
			s.releaseStock(items[:i])
			return err
		}
	}
	return nil
}

func (s *Service) releaseStock(items []PlaceOrderItem) {
	for _, item := range items {
		if err := s.products.RestoreStock(item.ProductID, item.Qty); err != nil {
			s.logger.WithError(err).WithField("product_id", item.ProductID).
				Error("failed to restore stock after placement failure")
			continue
		}
		s.metrics.RecordStockCompensation()
	}
}

func (s *Service) buildOrder(customerID string, req PlaceOrderRequest, products map[string]domain.Product) domain.Order {
	now := s.now()

	items := make([]domain.OrderItem, 0, len(req.Items))
	var amount int64
	for _, reqItem := range req.Items {
		product := products[reqItem.ProductID]
		item := domain.OrderItem{
			ID:         s.newID(),
			ProductID:  product.ID,
			SellerID:   product.SellerID,
			Name:       product.Name,
			Qty:        reqItem.Qty,
			PriceMinor: product.PriceMinor,
			CreatedAt:  now,
		}
		amount += item.LineTotalMinor()
		items = append(items, item)
	}

	return domain.Order{
		ID:              s.newID(),
		CustomerID:      customerID,
		Status:          domain.OrderStatusPending,
		AmountMinor:     amount,
		Items:           items,
		DeliveryAddress: req.DeliveryAddress,
		PaymentMethod:   req.PaymentMethod,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (s *Service) appendHistory(change domain.StatusChange) {
	if s.history == nil {
		return
	}
	if err := s.history.Append(change); err != nil {
		s.logger.WithError(err).WithField("order_id", change.OrderID).
			Warn("failed to append status history")
	}
}

func (s *Service) enqueuePlacedEvent(order domain.Order) {
	if s.outbox == nil {
		return
	}

	eventItems := make([]kafka.OrderEventItem, 0, len(order.Items))
	for _, item := range order.Items {
		eventItems = append(eventItems, kafka.OrderEventItem{
			ProductID:  item.ProductID,
			SellerID:   item.SellerID,
			Qty:        item.Qty,
			PriceMinor: item.PriceMinor,
		})
	}

	payload, err := json.Marshal(kafka.OrderPlacedEvent{
		EventType:   kafka.EventTypeOrderPlaced,
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		AmountMinor: order.AmountMinor,
		Items:       eventItems,
		Timestamp:   order.CreatedAt,
	})
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to marshal placed event")
		return
	}

	if _, err := s.outbox.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     string(kafka.EventTypeOrderPlaced),
		Payload:       payload,
	}); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to enqueue placed event")
	}
}

func placementFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, domain.ErrEmptyOrder):
		return "empty_order"
	default:
		return "storage"
	}
}
