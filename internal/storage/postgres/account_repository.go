package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// AccountRepository хранит учётные записи в PostgreSQL.
type AccountRepository struct {
	db *sql.DB
}

var _ domain.AccountRepository = (*AccountRepository)(nil)

// NewAccountRepository создаёт репозиторий учётных записей поверх открытого Store.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{db: store.DB()}
}

// Put сохраняет или обновляет учётную запись.
func (r *AccountRepository) Put(account domain.Account) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET role = EXCLUDED.role,
		    status = EXCLUDED.status,
		    updated_at = NOW()
	`, account.ID, string(account.Role), string(account.Status)); err != nil {
		return fmt.Errorf("upsert account %s: %w", account.ID, err)
	}

	return nil
}

// Get возвращает учётную запись по идентификатору.
func (r *AccountRepository) Get(id string) (domain.Account, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		account domain.Account
		role    string
		status  string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, role, status, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`, id).Scan(&account.ID, &role, &status, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("query account %s: %w", id, err)
	}
	account.Role = domain.Role(role)
	account.Status = domain.AccountStatus(status)

	return account, nil
}
