package memory

import (
	"sync"
	"time"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// productRepositoryInMemory — in-memory реализация каталога.
type productRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductRepository возвращает in-memory каталог для локальной разработки и тестов.
func NewProductRepository() domain.ProductRepository {
	return &productRepositoryInMemory{
		items: make(map[string]domain.Product),
	}
}

// Put сохраняет или обновляет товар.
func (r *productRepositoryInMemory) Put(product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[product.ID] = product
	return nil
}

// Get возвращает товар или ErrProductNotFound, если его нет.
func (r *productRepositoryInMemory) Get(id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, &domain.ProductNotFoundError{ProductID: id}
	}
	return product, nil
}

// FindByIDs возвращает найденные товары; отсутствующие ID пропускаются.
func (r *productRepositoryInMemory) FindByIDs(ids []string) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if product, ok := r.items[id]; ok {
			result = append(result, product)
		}
	}
	return result, nil
}

// DecrementStock уменьшает остаток под мьютексом: проверка и запись атомарны,
// поэтому конкурирующие заказы не могут увести остаток в минус.
func (r *productRepositoryInMemory) DecrementStock(id string, qty int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[id]
	if !ok {
		return &domain.ProductNotFoundError{ProductID: id}
	}
	if product.Stock < qty {
		return &domain.InsufficientStockError{ProductID: id, Available: product.Stock}
	}

	product.Stock -= qty
	product.UpdatedAt = time.Now().UTC()
	r.items[id] = product
	return nil
}

// RestoreStock возвращает остаток на место после неудачного размещения.
func (r *productRepositoryInMemory) RestoreStock(id string, qty int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[id]
	if !ok {
		return &domain.ProductNotFoundError{ProductID: id}
	}

	product.Stock += qty
	product.UpdatedAt = time.Now().UTC()
	r.items[id] = product
	return nil
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
