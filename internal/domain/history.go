package domain

import "time"

// StatusChange описывает запись истории смены статуса заказа.
type StatusChange struct {
	OrderID   string
	Status    OrderStatus
	ActorID   string
	ActorRole Role
	Note      string
	Occurred  time.Time
}
