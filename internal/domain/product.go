package domain

import "time"

// Product описывает товар каталога.
// Stock уменьшается при размещении заказа и никогда не уходит в минус.
type Product struct {
	ID         string
	Name       string
	PriceMinor int64
	Stock      int32
	CategoryID string
	SellerID   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ValidateInvariants проверяет базовые инварианты товара.
func (p *Product) ValidateInvariants() []error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.PriceMinor < 0 {
		errs = append(errs, ErrProductPriceNegative)
	}
	if p.Stock < 0 {
		errs = append(errs, ErrProductStockNegative)
	}
	if p.SellerID == "" {
		errs = append(errs, ErrProductSellerRequired)
	}

	return errs
}
