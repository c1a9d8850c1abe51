package orders_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
	"github.com/vladislavdragonenkov/marketplace/internal/service/orders"
)

func placeMultiSellerOrder(t *testing.T, env *testEnv) domain.Order {
	t.Helper()

	env.seedProduct(t, "product-1", "seller-1", 100, 5)
	env.seedProduct(t, "product-2", "seller-2", 300, 1)

	order, err := env.service.PlaceOrder(customer, orders.PlaceOrderRequest{
		Items: []orders.PlaceOrderItem{
			{ProductID: "product-1", Qty: 5},
			{ProductID: "product-2", Qty: 1},
		},
		DeliveryAddress: "Lenina 1, Moscow",
		PaymentMethod:   domain.PaymentMethodCard,
	})
	require.NoError(t, err)
	return order
}

func TestGetOrder_ViewAccess(t *testing.T) {
	env := newTestEnv(t)
	order := placeMultiSellerOrder(t, env)

	cases := []struct {
		name    string
		actor   domain.Actor
		wantErr error
	}{
		{"owner customer", customer, nil},
		{"foreign customer", domain.Actor{ID: "customer-2", Role: domain.RoleCustomer}, domain.ErrForbidden},
		{"attributed seller", domain.Actor{ID: "seller-1", Role: domain.RoleSeller}, domain.ErrForbidden},
		{"foreign seller", domain.Actor{ID: "seller-3", Role: domain.RoleSeller}, domain.ErrForbidden},
		{"admin", domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := env.service.GetOrder(tc.actor, order.ID)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, order.ID, got.ID)
		})
	}
}

func TestSellerOrder_HidesForeignItemsAndTotal(t *testing.T) {
	env := newTestEnv(t)
	order := placeMultiSellerOrder(t, env)
	require.Equal(t, int64(800), order.AmountMinor)

	seller1 := domain.Actor{ID: "seller-1", Role: domain.RoleSeller}
	view, err := env.service.SellerOrder(seller1, order.ID)
	require.NoError(t, err)

	assert.Equal(t, order.ID, view.OrderID)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "product-1", view.Items[0].ProductID)
	// Продавец видит подытог своих позиций, а не общую сумму заказа.
	assert.Equal(t, int64(500), view.SubtotalMinor)
	assert.NotEqual(t, order.AmountMinor, view.SubtotalMinor)

	seller2 := domain.Actor{ID: "seller-2", Role: domain.RoleSeller}
	view, err = env.service.SellerOrder(seller2, order.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(300), view.SubtotalMinor)
}

func TestSellerOrder_AccessGates(t *testing.T) {
	env := newTestEnv(t)
	order := placeMultiSellerOrder(t, env)

	foreign := domain.Actor{ID: "seller-3", Role: domain.RoleSeller}
	_, err := env.service.SellerOrder(foreign, order.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.service.SellerOrder(customer, order.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	seller1 := domain.Actor{ID: "seller-1", Role: domain.RoleSeller}
	_, err = env.service.SellerOrder(seller1, "missing")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestGetOrder_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.GetOrder(customer, "missing")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestCustomerOrders_ReturnsOwnOrdersOnly(t *testing.T) {
	env := newTestEnv(t)
	placeMultiSellerOrder(t, env)

	other := domain.Actor{ID: "customer-2", Role: domain.RoleCustomer}
	_, err := env.service.PlaceOrder(other, orders.PlaceOrderRequest{
		Items:           []orders.PlaceOrderItem{{ProductID: "product-2", Qty: 0}},
		DeliveryAddress: "Lenina 1, Moscow",
		PaymentMethod:   domain.PaymentMethodCard,
	})
	require.Error(t, err) // qty 0 отклоняется, у второго покупателя заказов нет

	mine, err := env.service.CustomerOrders(customer, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	theirs, err := env.service.CustomerOrders(other, 0)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestCustomerOrders_RoleGate(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.CustomerOrders(domain.Actor{ID: "seller-1", Role: domain.RoleSeller}, 0)
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestSellerOrders_FiltersItemsAndSubtotals(t *testing.T) {
	env := newTestEnv(t)
	order := placeMultiSellerOrder(t, env)

	seller1 := domain.Actor{ID: "seller-1", Role: domain.RoleSeller}
	views, err := env.service.SellerOrders(seller1, 0)
	require.NoError(t, err)
	require.Len(t, views, 1)

	view := views[0]
	assert.Equal(t, order.ID, view.OrderID)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "product-1", view.Items[0].ProductID)
	assert.Equal(t, int64(500), view.SubtotalMinor)

	seller2 := domain.Actor{ID: "seller-2", Role: domain.RoleSeller}
	views, err = env.service.SellerOrders(seller2, 0)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, int64(300), views[0].SubtotalMinor)

	seller3 := domain.Actor{ID: "seller-3", Role: domain.RoleSeller}
	views, err = env.service.SellerOrders(seller3, 0)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestSellerOrders_RoleGate(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.SellerOrders(customer, 0)
	require.ErrorIs(t, err, domain.ErrForbidden)
}
