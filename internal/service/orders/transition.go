package orders

import (
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
	"github.com/vladislavdragonenkov/marketplace/internal/messaging/kafka"
)

const (
	saveMaxRetries = 3
	saveBaseDelay  = 10 * time.Millisecond
)

// UpdateStatus переводит заказ в новый статус от имени актора.
//
// Право на переход определяется ролью: покупатель отменяет собственный
// pending-заказ, продавец управляет заказами со своими позициями,
// администратор не ограничен. При конфликте версий заказ перечитывается,
// право на переход проверяется заново и сохранение повторяется.
func (s *Service) UpdateStatus(actor domain.Actor, orderID string, newStatus domain.OrderStatus, note string) (domain.Order, error) {
	var lastErr error

	for attempt := 1; attempt <= saveMaxRetries; attempt++ {
		order, err := s.orders.Get(orderID)
		if err != nil {
			return domain.Order{}, err
		}

		if !domain.CanTransition(actor, &order, newStatus) {
			return domain.Order{}, domain.ErrForbidden
		}

		oldStatus := order.Status
		order.Status = newStatus
		order.UpdatedAt = s.now()

		if err := s.orders.Save(order); err != nil {
			if domain.IsVersionConflict(err) {
				lastErr = err
				time.Sleep(saveBackoff(attempt))
				continue
			}
			return domain.Order{}, fmt.Errorf("save order %s: %w", orderID, err)
		}
		order.Version++

		s.appendHistory(domain.StatusChange{
			OrderID:   order.ID,
			Status:    newStatus,
			ActorID:   actor.ID,
			ActorRole: actor.Role,
			Note:      note,
			Occurred:  order.UpdatedAt,
		})
		s.enqueueStatusChangedEvent(order, oldStatus, actor)

		s.metrics.RecordStatusTransition(string(oldStatus), string(newStatus))
		s.logger.WithFields(log.Fields{
			"order_id":   order.ID,
			"old_status": oldStatus,
			"new_status": newStatus,
			"actor_id":   actor.ID,
			"actor_role": actor.Role,
		}).Info("order status changed")

		return order, nil
	}

	return domain.Order{}, fmt.Errorf("update order %s status after %d attempts: %w", orderID, saveMaxRetries, lastErr)
}

// History возвращает историю смен статуса заказа, доступную актору.
func (s *Service) History(actor domain.Actor, orderID string) ([]domain.StatusChange, error) {
	order, err := s.orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	if !domain.CanViewOrder(actor, &order) {
		return nil, domain.ErrForbidden
	}

	// Хранилище истории опционально, как и при записи в appendHistory.
	if s.history == nil {
		return []domain.StatusChange{}, nil
	}

	changes, err := s.history.List(orderID)
	if err != nil {
		return nil, fmt.Errorf("list status history for order %s: %w", orderID, err)
	}
	return changes, nil
}

func saveBackoff(attempt int) time.Duration {
	delay := saveBaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return delay
}

func (s *Service) enqueueStatusChangedEvent(order domain.Order, oldStatus domain.OrderStatus, actor domain.Actor) {
	if s.outbox == nil {
		return
	}

	payload, err := json.Marshal(kafka.OrderStatusChangedEvent{
		EventType:  kafka.EventTypeOrderStatusChanged,
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		OldStatus:  string(oldStatus),
		NewStatus:  string(order.Status),
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		Timestamp:  order.UpdatedAt,
	})
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to marshal status event")
		return
	}

	if _, err := s.outbox.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     string(kafka.EventTypeOrderStatusChanged),
		Payload:       payload,
	}); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to enqueue status event")
	}
}
