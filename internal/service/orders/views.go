package orders

import (
	"time"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// SellerOrderView — проекция заказа для продавца: только его позиции
// и подытог по ним. Позиции других продавцов и общая сумма заказа
// продавцу не раскрываются.
type SellerOrderView struct {
	OrderID       string
	CustomerID    string
	Status        domain.OrderStatus
	Items         []domain.OrderItem
	SubtotalMinor int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// GetOrder возвращает заказ целиком владельцу-покупателю или администратору.
// Продавцу полный заказ не выдаётся: для него есть проекция SellerOrder.
func (s *Service) GetOrder(actor domain.Actor, orderID string) (domain.Order, error) {
	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if actor.Role == domain.RoleSeller || !domain.CanViewOrder(actor, &order) {
		return domain.Order{}, domain.ErrForbidden
	}
	return order, nil
}

// SellerOrder возвращает заказ в проекции продавца: только его позиции и
// подытог по ним, без общей суммы и чужих позиций.
func (s *Service) SellerOrder(actor domain.Actor, orderID string) (SellerOrderView, error) {
	if actor.Role != domain.RoleSeller {
		return SellerOrderView{}, domain.ErrForbidden
	}

	order, err := s.orders.Get(orderID)
	if err != nil {
		return SellerOrderView{}, err
	}
	if !order.HasSellerItem(actor.ID) {
		return SellerOrderView{}, domain.ErrForbidden
	}
	return newSellerOrderView(&order, actor.ID), nil
}

// CustomerOrders возвращает заказы покупателя, новые первыми.
func (s *Service) CustomerOrders(actor domain.Actor, limit int) ([]domain.Order, error) {
	if actor.Role != domain.RoleCustomer {
		return nil, domain.ErrForbidden
	}
	return s.orders.ListByCustomer(actor.ID, limit)
}

// SellerOrders возвращает проекции заказов, в которых у продавца есть
// хотя бы одна позиция.
func (s *Service) SellerOrders(actor domain.Actor, limit int) ([]SellerOrderView, error) {
	if actor.Role != domain.RoleSeller {
		return nil, domain.ErrForbidden
	}

	found, err := s.orders.ListBySeller(actor.ID, limit)
	if err != nil {
		return nil, err
	}

	views := make([]SellerOrderView, 0, len(found))
	for i := range found {
		views = append(views, newSellerOrderView(&found[i], actor.ID))
	}
	return views, nil
}

func newSellerOrderView(order *domain.Order, sellerID string) SellerOrderView {
	items := order.ItemsOfSeller(sellerID)

	var subtotal int64
	for _, item := range items {
		subtotal += item.LineTotalMinor()
	}

	return SellerOrderView{
		OrderID:       order.ID,
		CustomerID:    order.CustomerID,
		Status:        order.Status,
		Items:         items,
		SubtotalMinor: subtotal,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}
