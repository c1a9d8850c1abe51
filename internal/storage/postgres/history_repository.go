package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// HistoryRepository хранит историю смен статуса заказа в PostgreSQL.
type HistoryRepository struct {
	db *sql.DB
}

var _ domain.HistoryRepository = (*HistoryRepository)(nil)

// NewHistoryRepository создаёт репозиторий истории поверх открытого Store.
func NewHistoryRepository(store *Store) *HistoryRepository {
	return &HistoryRepository{db: store.DB()}
}

// Append добавляет запись в историю заказа.
func (r *HistoryRepository) Append(change domain.StatusChange) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	occurred := change.Occurred
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO status_history (order_id, status, actor_id, actor_role, note, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, change.OrderID, string(change.Status), change.ActorID, string(change.ActorRole), change.Note, occurred); err != nil {
		return fmt.Errorf("insert status change for order %s: %w", change.OrderID, err)
	}

	return nil
}

// List возвращает историю заказа в хронологическом порядке.
func (r *HistoryRepository) List(orderID string) ([]domain.StatusChange, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, status, actor_id, actor_role, note, occurred_at
		FROM status_history
		WHERE order_id = $1
		ORDER BY occurred_at, id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query status history for order %s: %w", orderID, err)
	}
	defer rows.Close()

	changes := make([]domain.StatusChange, 0, 8)
	for rows.Next() {
		var (
			change domain.StatusChange
			status string
			role   string
		)
		if err := rows.Scan(&change.OrderID, &status, &change.ActorID, &role, &change.Note, &change.Occurred); err != nil {
			return nil, fmt.Errorf("scan status change row: %w", err)
		}
		change.Status = domain.OrderStatus(status)
		change.ActorRole = domain.Role(role)
		changes = append(changes, change)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status change rows: %w", err)
	}

	return changes, nil
}
