package domain_test

import (
	"testing"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

func TestCanTransition_Customer(t *testing.T) {
	owner := domain.Actor{ID: "customer-1", Role: domain.RoleCustomer}
	stranger := domain.Actor{ID: "customer-2", Role: domain.RoleCustomer}

	cases := []struct {
		name    string
		actor   domain.Actor
		current domain.OrderStatus
		next    domain.OrderStatus
		want    bool
	}{
		{"owner cancels pending", owner, domain.OrderStatusPending, domain.OrderStatusCancelled, true},
		{"owner cancels processing", owner, domain.OrderStatusProcessing, domain.OrderStatusCancelled, false},
		{"owner promotes to shipped", owner, domain.OrderStatusPending, domain.OrderStatusShipped, false},
		{"stranger cancels pending", stranger, domain.OrderStatusPending, domain.OrderStatusCancelled, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := makeOrder()
			order.Status = tc.current
			if got := domain.CanTransition(tc.actor, &order, tc.next); got != tc.want {
				t.Fatalf("CanTransition = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanTransition_Seller(t *testing.T) {
	attributed := domain.Actor{ID: "seller-1", Role: domain.RoleSeller}
	outsider := domain.Actor{ID: "seller-9", Role: domain.RoleSeller}

	order := makeOrder()

	for _, next := range []domain.OrderStatus{
		domain.OrderStatusProcessing,
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
		domain.OrderStatusCancelled,
	} {
		if !domain.CanTransition(attributed, &order, next) {
			t.Fatalf("attributed seller must be allowed to set %s", next)
		}
		if domain.CanTransition(outsider, &order, next) {
			t.Fatalf("outsider seller must not be allowed to set %s", next)
		}
	}

	// Возврат в pending продавцу недоступен.
	if domain.CanTransition(attributed, &order, domain.OrderStatusPending) {
		t.Fatal("seller must not reset order to pending")
	}
}

func TestCanTransition_Admin(t *testing.T) {
	admin := domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}

	// Администратору разрешён любой переход из любого статуса,
	// включая движение назад.
	for _, current := range []domain.OrderStatus{
		domain.OrderStatusPending,
		domain.OrderStatusDelivered,
		domain.OrderStatusCancelled,
	} {
		for _, next := range []domain.OrderStatus{
			domain.OrderStatusPending,
			domain.OrderStatusProcessing,
			domain.OrderStatusDelivered,
			domain.OrderStatusCancelled,
		} {
			order := makeOrder()
			order.Status = current
			if !domain.CanTransition(admin, &order, next) {
				t.Fatalf("admin transition %s -> %s must be allowed", current, next)
			}
		}
	}
}

func TestCanViewOrder(t *testing.T) {
	order := makeOrder()

	cases := []struct {
		name  string
		actor domain.Actor
		want  bool
	}{
		{"owner customer", domain.Actor{ID: "customer-1", Role: domain.RoleCustomer}, true},
		{"other customer", domain.Actor{ID: "customer-2", Role: domain.RoleCustomer}, false},
		{"attributed seller", domain.Actor{ID: "seller-2", Role: domain.RoleSeller}, true},
		{"outsider seller", domain.Actor{ID: "seller-9", Role: domain.RoleSeller}, false},
		{"admin", domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := domain.CanViewOrder(tc.actor, &order); got != tc.want {
				t.Fatalf("CanViewOrder = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAccountCanAct(t *testing.T) {
	cases := []struct {
		name    string
		account domain.Account
		want    bool
	}{
		{"approved seller", domain.Account{Role: domain.RoleSeller, Status: domain.AccountStatusApproved}, true},
		{"pending seller", domain.Account{Role: domain.RoleSeller, Status: domain.AccountStatusPending}, false},
		{"rejected seller", domain.Account{Role: domain.RoleSeller, Status: domain.AccountStatusRejected}, false},
		{"pending customer", domain.Account{Role: domain.RoleCustomer, Status: domain.AccountStatusPending}, true},
		{"rejected customer", domain.Account{Role: domain.RoleCustomer, Status: domain.AccountStatusRejected}, false},
		{"admin", domain.Account{Role: domain.RoleAdmin, Status: domain.AccountStatusApproved}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.account.CanAct(); got != tc.want {
				t.Fatalf("CanAct = %v, want %v", got, tc.want)
			}
		})
	}
}
