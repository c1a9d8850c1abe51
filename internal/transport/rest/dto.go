package rest

import (
	"time"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
	"github.com/vladislavdragonenkov/marketplace/internal/service/orders"
)

type placeOrderItemRequest struct {
	ProductID string `json:"product_id"`
	Qty       int32  `json:"qty"`
}

type placeOrderRequest struct {
	Items           []placeOrderItemRequest `json:"items"`
	DeliveryAddress string                  `json:"delivery_address"`
	PaymentMethod   string                  `json:"payment_method"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

type productRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceMinor int64  `json:"price_minor"`
	Stock      int32  `json:"stock"`
	CategoryID string `json:"category_id"`
	SellerID   string `json:"seller_id"`
}

type orderItemResponse struct {
	ID             string `json:"id"`
	ProductID      string `json:"product_id"`
	SellerID       string `json:"seller_id"`
	Name           string `json:"name"`
	Qty            int32  `json:"qty"`
	PriceMinor     int64  `json:"price_minor"`
	LineTotalMinor int64  `json:"line_total_minor"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	CustomerID      string              `json:"customer_id"`
	Status          string              `json:"status"`
	AmountMinor     int64               `json:"amount_minor"`
	Items           []orderItemResponse `json:"items"`
	DeliveryAddress string              `json:"delivery_address"`
	PaymentMethod   string              `json:"payment_method"`
	Version         int64               `json:"version"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type sellerOrderResponse struct {
	OrderID       string              `json:"order_id"`
	CustomerID    string              `json:"customer_id"`
	Status        string              `json:"status"`
	Items         []orderItemResponse `json:"items"`
	SubtotalMinor int64               `json:"subtotal_minor"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

type statusChangeResponse struct {
	Status     string    `json:"status"`
	ActorID    string    `json:"actor_id"`
	ActorRole  string    `json:"actor_role"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type productResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	PriceMinor int64     `json:"price_minor"`
	Stock      int32     `json:"stock"`
	CategoryID string    `json:"category_id"`
	SellerID   string    `json:"seller_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func mapOrderItems(items []domain.OrderItem) []orderItemResponse {
	result := make([]orderItemResponse, 0, len(items))
	for _, item := range items {
		result = append(result, orderItemResponse{
			ID:             item.ID,
			ProductID:      item.ProductID,
			SellerID:       item.SellerID,
			Name:           item.Name,
			Qty:            item.Qty,
			PriceMinor:     item.PriceMinor,
			LineTotalMinor: item.LineTotalMinor(),
		})
	}
	return result
}

func mapOrder(order domain.Order) orderResponse {
	return orderResponse{
		ID:              order.ID,
		CustomerID:      order.CustomerID,
		Status:          string(order.Status),
		AmountMinor:     order.AmountMinor,
		Items:           mapOrderItems(order.Items),
		DeliveryAddress: order.DeliveryAddress,
		PaymentMethod:   string(order.PaymentMethod),
		Version:         order.Version,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func mapOrders(found []domain.Order) []orderResponse {
	result := make([]orderResponse, 0, len(found))
	for _, order := range found {
		result = append(result, mapOrder(order))
	}
	return result
}

func mapSellerOrder(view orders.SellerOrderView) sellerOrderResponse {
	return sellerOrderResponse{
		OrderID:       view.OrderID,
		CustomerID:    view.CustomerID,
		Status:        string(view.Status),
		Items:         mapOrderItems(view.Items),
		SubtotalMinor: view.SubtotalMinor,
		CreatedAt:     view.CreatedAt,
		UpdatedAt:     view.UpdatedAt,
	}
}

func mapSellerOrders(views []orders.SellerOrderView) []sellerOrderResponse {
	result := make([]sellerOrderResponse, 0, len(views))
	for _, view := range views {
		result = append(result, mapSellerOrder(view))
	}
	return result
}

func mapStatusChanges(changes []domain.StatusChange) []statusChangeResponse {
	result := make([]statusChangeResponse, 0, len(changes))
	for _, change := range changes {
		result = append(result, statusChangeResponse{
			Status:     string(change.Status),
			ActorID:    change.ActorID,
			ActorRole:  string(change.ActorRole),
			Note:       change.Note,
			OccurredAt: change.Occurred,
		})
	}
	return result
}

func mapProduct(product domain.Product) productResponse {
	return productResponse{
		ID:         product.ID,
		Name:       product.Name,
		PriceMinor: product.PriceMinor,
		Stock:      product.Stock,
		CategoryID: product.CategoryID,
		SellerID:   product.SellerID,
		CreatedAt:  product.CreatedAt,
		UpdatedAt:  product.UpdatedAt,
	}
}
