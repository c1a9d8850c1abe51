package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// ProductRepository хранит каталог товаров в PostgreSQL.
type ProductRepository struct {
	db *sql.DB
}

var _ domain.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository создаёт репозиторий каталога поверх открытого Store.
func NewProductRepository(store *Store) *ProductRepository {
	return &ProductRepository{db: store.DB()}
}

// Put сохраняет или обновляет товар (upsert по идентификатору).
func (r *ProductRepository) Put(product domain.Product) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, price_minor, stock, category_id, seller_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    price_minor = EXCLUDED.price_minor,
		    stock = EXCLUDED.stock,
		    category_id = EXCLUDED.category_id,
		    seller_id = EXCLUDED.seller_id,
		    updated_at = NOW()
	`, product.ID, product.Name, product.PriceMinor, product.Stock, product.CategoryID, product.SellerID); err != nil {
		return fmt.Errorf("upsert product %s: %w", product.ID, err)
	}

	return nil
}

// Get возвращает товар по идентификатору.
func (r *ProductRepository) Get(id string) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var product domain.Product
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, price_minor, stock, category_id, seller_id, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id).Scan(&product.ID, &product.Name, &product.PriceMinor, &product.Stock,
		&product.CategoryID, &product.SellerID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, &domain.ProductNotFoundError{ProductID: id}
		}
		return domain.Product{}, fmt.Errorf("query product %s: %w", id, err)
	}

	return product, nil
}

// FindByIDs возвращает найденные товары; отсутствующие идентификаторы пропускаются.
func (r *ProductRepository) FindByIDs(ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, price_minor, stock, category_id, seller_id, created_at, updated_at
		FROM products
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("query products by ids: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, len(ids))
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(&product.ID, &product.Name, &product.PriceMinor, &product.Stock,
			&product.CategoryID, &product.SellerID, &product.CreatedAt, &product.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

// DecrementStock атомарно уменьшает остаток при условии stock >= qty.
func (r *ProductRepository) DecrementStock(id string, qty int32) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - $2,
		    updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`, id, qty)
	if err != nil {
		return fmt.Errorf("decrement stock for product %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for product %s: %w", id, err)
	}
	if affected > 0 {
		return nil
	}

	// Условие не сработало: товара нет или остатка не хватает.
	var available int32
	err = r.db.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = $1`, id).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.ProductNotFoundError{ProductID: id}
	}
	if err != nil {
		return fmt.Errorf("query stock for product %s: %w", id, err)
	}

	return &domain.InsufficientStockError{ProductID: id, Available: available}
}

// RestoreStock возвращает остаток (компенсация неудачного размещения).
func (r *ProductRepository) RestoreStock(id string, qty int32) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET stock = stock + $2,
		    updated_at = NOW()
		WHERE id = $1
	`, id, qty)
	if err != nil {
		return fmt.Errorf("restore stock for product %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for product %s: %w", id, err)
	}
	if affected == 0 {
		return &domain.ProductNotFoundError{ProductID: id}
	}

	return nil
}
