package domain

import "time"

// OrderStatus описывает жизненный цикл заказа на маркетплейсе.
type OrderStatus string

const (
	// OrderStatusPending — заказ размещён и ждёт действий продавца или администратора.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusProcessing — продавец подтвердил заказ и готовит отправку.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped — товары переданы в доставку.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered — товары получены покупателем.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled — заказ прекращён.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ParseOrderStatus валидирует строковое значение статуса из внешнего запроса.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(raw)
	switch status {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return status, nil
	default:
		return "", ErrInvalidStatus
	}
}

// PaymentMethod — способ оплаты, выбранный при оформлении заказа.
type PaymentMethod string

const (
	PaymentMethodCard           PaymentMethod = "card"
	PaymentMethodCashOnDelivery PaymentMethod = "cod"
)

// Valid проверяет, что способ оплаты относится к поддерживаемым значениям.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodCashOnDelivery:
		return true
	default:
		return false
	}
}

// OrderItem представляет одну позицию заказа.
// Позиция — неизменяемый снимок товара на момент оформления: последующие
// изменения цены или владельца товара в каталоге на неё не влияют.
type OrderItem struct {
	// ID позиции нужен для однозначной идентификации и аудита.
	ID string
	// ProductID — ссылка на товар в каталоге.
	ProductID string
	// SellerID — продавец позиции, зафиксированный при оформлении.
	SellerID string
	// Name — название товара на момент оформления.
	Name string
	// Qty — количество единиц товара.
	Qty int32
	// PriceMinor — цена за единицу в минимальных денежных единицах.
	PriceMinor int64
	// CreatedAt фиксирует момент добавления позиции в заказ.
	CreatedAt time.Time
}

// LineTotalMinor возвращает стоимость позиции: qty * price.
func (i OrderItem) LineTotalMinor() int64 {
	return int64(i.Qty) * i.PriceMinor
}

// Order агрегирует состояние заказа и его позиции.
type Order struct {
	ID              string
	CustomerID      string
	Status          OrderStatus
	AmountMinor     int64
	Items           []OrderItem
	DeliveryAddress string
	PaymentMethod   PaymentMethod
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.AmountMinor < 0 {
		errs = append(errs, ErrAmountNegative)
	}
	if o.DeliveryAddress == "" {
		errs = append(errs, ErrDeliveryAddressRequired)
	}
	if !o.PaymentMethod.Valid() {
		errs = append(errs, ErrPaymentMethodInvalid)
	}

	// Сверяем сумму заказа с суммой позиций: qty * price.
	var calc int64
	for _, item := range o.Items {
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.PriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
		if item.SellerID == "" {
			errs = append(errs, ErrItemSellerRequired)
		}
		calc += item.LineTotalMinor()
	}
	if calc != o.AmountMinor {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}

// HasSellerItem сообщает, содержит ли заказ хотя бы одну позицию продавца.
func (o *Order) HasSellerItem(sellerID string) bool {
	for _, item := range o.Items {
		if item.SellerID == sellerID {
			return true
		}
	}
	return false
}

// ItemsOfSeller возвращает копию позиций, принадлежащих продавцу.
func (o *Order) ItemsOfSeller(sellerID string) []OrderItem {
	items := make([]OrderItem, 0, len(o.Items))
	for _, item := range o.Items {
		if item.SellerID == sellerID {
			items = append(items, item)
		}
	}
	return items
}
