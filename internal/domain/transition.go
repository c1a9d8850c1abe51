package domain

// CanTransition решает, может ли актор перевести заказ в новый статус.
//
// Таблица правил:
//   - покупатель: только собственный заказ, только в cancelled и только из pending;
//   - продавец: только заказ с хотя бы одной своей позицией, в любой из
//     {processing, shipped, delivered, cancelled};
//   - администратор: любой заказ, любой статус.
//
// Направление переходов намеренно не ограничивается: ничто, кроме правила
// отмены покупателем, не запрещает перевести delivered обратно в pending.
func CanTransition(actor Actor, order *Order, newStatus OrderStatus) bool {
	switch actor.Role {
	case RoleCustomer:
		return order.CustomerID == actor.ID &&
			newStatus == OrderStatusCancelled &&
			order.Status == OrderStatusPending
	case RoleSeller:
		if !order.HasSellerItem(actor.ID) {
			return false
		}
		switch newStatus {
		case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
			return true
		default:
			return false
		}
	case RoleAdmin:
		return true
	default:
		return false
	}
}

// CanViewOrder решает, доступен ли актору просмотр заказа.
func CanViewOrder(actor Actor, order *Order) bool {
	switch actor.Role {
	case RoleCustomer:
		return order.CustomerID == actor.ID
	case RoleSeller:
		return order.HasSellerItem(actor.ID)
	case RoleAdmin:
		return true
	default:
		return false
	}
}
