package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// Service управляет каталогом товаров.
type Service struct {
	products domain.ProductRepository
	logger   *log.Entry
	now      func() time.Time
	newID    func() string
}

// NewService создаёт сервис каталога.
func NewService(products domain.ProductRepository) *Service {
	return &Service{
		products: products,
		logger:   log.WithField("component", "catalog-service"),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// UpsertProduct создаёт или обновляет товар.
//
// Продавец управляет только собственными товарами и становится владельцем
// создаваемых. Администратор может сохранить товар любого продавца.
func (s *Service) UpsertProduct(actor domain.Actor, product domain.Product) (domain.Product, error) {
	switch actor.Role {
	case domain.RoleSeller:
		product.SellerID = actor.ID
	case domain.RoleAdmin:
		if product.SellerID == "" {
			return domain.Product{}, domain.ErrProductSellerRequired
		}
	default:
		return domain.Product{}, domain.ErrForbidden
	}

	now := s.now()
	if product.ID == "" {
		product.ID = s.newID()
		product.CreatedAt = now
	} else if existing, err := s.products.Get(product.ID); err == nil {
		if actor.Role == domain.RoleSeller && existing.SellerID != actor.ID {
			return domain.Product{}, domain.ErrForbidden
		}
		product.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, domain.ErrProductNotFound) {
		return domain.Product{}, err
	} else {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	if errs := product.ValidateInvariants(); len(errs) > 0 {
		return domain.Product{}, errs[0]
	}

	if err := s.products.Put(product); err != nil {
		return domain.Product{}, err
	}

	s.logger.WithFields(log.Fields{
		"product_id": product.ID,
		"seller_id":  product.SellerID,
	}).Info("product saved")

	return product, nil
}

// GetProduct возвращает товар каталога.
func (s *Service) GetProduct(id string) (domain.Product, error) {
	return s.products.Get(id)
}
