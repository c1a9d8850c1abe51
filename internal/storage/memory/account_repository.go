package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// accountRepositoryInMemory — in-memory реализация хранилища учётных записей.
type accountRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Account
}

// NewAccountRepository возвращает in-memory хранилище учётных записей.
func NewAccountRepository() domain.AccountRepository {
	return &accountRepositoryInMemory{
		items: make(map[string]domain.Account),
	}
}

// Put сохраняет или обновляет учётную запись.
func (r *accountRepositoryInMemory) Put(account domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[account.ID] = account
	return nil
}

// Get возвращает учётную запись или ErrAccountNotFound, если её нет.
func (r *accountRepositoryInMemory) Get(id string) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.items[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return account, nil
}

var _ domain.AccountRepository = (*accountRepositoryInMemory)(nil)
