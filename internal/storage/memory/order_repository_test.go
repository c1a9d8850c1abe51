package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
	"github.com/vladislavdragonenkov/marketplace/internal/storage/memory"
)

func newOrder(id string, createdAt time.Time) domain.Order {
	return domain.Order{
		ID:          id,
		CustomerID:  "customer-1",
		Status:      domain.OrderStatusPending,
		AmountMinor: 500,
		Items: []domain.OrderItem{
			{ID: id + "-item-1", ProductID: "product-1", SellerID: "seller-1", Name: "Ceramic mug", Qty: 5, PriceMinor: 100, CreatedAt: createdAt},
		},
		DeliveryAddress: "221B Baker Street",
		PaymentMethod:   domain.PaymentMethodCard,
		Version:         0,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}

func TestOrderRepository_CreateGet(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder("order-1", time.Now().UTC())

	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.ID != order.ID {
		t.Fatalf("expected id %s, got %s", order.ID, stored.ID)
	}
	if len(stored.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(stored.Items))
	}
}

func TestOrderRepository_GetMissing(t *testing.T) {
	repo := memory.NewOrderRepository()

	if _, err := repo.Get("missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_CreateDuplicate(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder("order-1", time.Now().UTC())

	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(order); !errors.Is(err, domain.ErrOrderVersionConflict) {
		t.Fatalf("expected version conflict on duplicate, got %v", err)
	}
}

func TestOrderRepository_ListByCustomer_NewestFirst(t *testing.T) {
	repo := memory.NewOrderRepository()
	base := time.Now().UTC()

	older := newOrder("order-1", base.Add(-time.Hour))
	newer := newOrder("order-2", base)
	if err := repo.Create(older); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(newer); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	orders, err := repo.ListByCustomer("customer-1", 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].ID != "order-2" || orders[1].ID != "order-1" {
		t.Fatalf("expected newest first, got %s, %s", orders[0].ID, orders[1].ID)
	}
}

func TestOrderRepository_ListBySeller(t *testing.T) {
	repo := memory.NewOrderRepository()
	now := time.Now().UTC()

	mine := newOrder("order-1", now)
	foreign := newOrder("order-2", now)
	foreign.Items[0].SellerID = "seller-2"

	if err := repo.Create(mine); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(foreign); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	orders, err := repo.ListBySeller("seller-1", 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != "order-1" {
		t.Fatalf("expected only seller-1 order, got %+v", orders)
	}
}

func TestOrderRepository_SaveVersionConflict(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder("order-1", time.Now().UTC())

	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	order.Status = domain.OrderStatusProcessing
	if err := repo.Save(order); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// Повторное сохранение со старой версией должно конфликтовать.
	order.Status = domain.OrderStatusShipped
	if err := repo.Save(order); !errors.Is(err, domain.ErrOrderVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}

	stored, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Status != domain.OrderStatusProcessing {
		t.Fatalf("expected status processing, got %s", stored.Status)
	}
	if stored.Version != 1 {
		t.Fatalf("expected version 1, got %d", stored.Version)
	}
}
