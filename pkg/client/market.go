package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/evtb/evtb/pkg/domain"
)

// --- Orders & payments ---

// CreateOrder places an order for a listing.
func (c *Client) CreateOrder(ctx context.Context, o domain.Order) (*domain.Order, error) {
	var created domain.Order
	if err := c.post(ctx, "/api/Order", o, &created); err != nil {
		return nil, fmt.Errorf("client.CreateOrder: %w", err)
	}
	return &created, nil
}

// ListOrders returns every order (admin only).
func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.get(ctx, "/api/Order", &orders); err != nil {
		return nil, fmt.Errorf("client.ListOrders: %w", err)
	}
	return orders, nil
}

// UserOrders returns a user's orders.
func (c *Client) UserOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.get(ctx, idPath("/api/Order/user", userID), &orders); err != nil {
		return nil, fmt.Errorf("client.UserOrders: %w", err)
	}
	return orders, nil
}

// CancelOrder cancels an order.
func (c *Client) CancelOrder(ctx context.Context, id int64) error {
	if err := c.put(ctx, idPath("/api/Order", id)+"/cancel", nil, nil); err != nil {
		return fmt.Errorf("client.CancelOrder: %w", err)
	}
	return nil
}

// CreatePayment starts a payment for an order.
func (c *Client) CreatePayment(ctx context.Context, p domain.Payment) (*domain.Payment, error) {
	var created domain.Payment
	if err := c.post(ctx, "/api/payment", p, &created); err != nil {
		return nil, fmt.Errorf("client.CreatePayment: %w", err)
	}
	return &created, nil
}

// GetPayment fetches a payment.
func (c *Client) GetPayment(ctx context.Context, id int64) (*domain.Payment, error) {
	var p domain.Payment
	if err := c.get(ctx, idPath("/api/payment", id), &p); err != nil {
		return nil, fmt.Errorf("client.GetPayment: %w", err)
	}
	return &p, nil
}

// --- Reviews ---

// ProductReviews returns the reviews of a listing.
func (c *Client) ProductReviews(ctx context.Context, productID int64) ([]domain.Review, error) {
	var reviews []domain.Review
	if err := c.get(ctx, idPath("/api/Review/product", productID), &reviews); err != nil {
		return nil, fmt.Errorf("client.ProductReviews: %w", err)
	}
	return reviews, nil
}

// CreateReview posts a review.
func (c *Client) CreateReview(ctx context.Context, r domain.Review) (*domain.Review, error) {
	var created domain.Review
	if err := c.post(ctx, "/api/Review", r, &created); err != nil {
		return nil, fmt.Errorf("client.CreateReview: %w", err)
	}
	return &created, nil
}

// --- Statistics ---

// DashboardStats returns a seller's dashboard numbers.
func (c *Client) DashboardStats(ctx context.Context, userID int64) (*domain.DashboardStats, error) {
	var s domain.DashboardStats
	if err := c.get(ctx, idPath("/api/Statistics/dashboard", userID), &s); err != nil {
		return nil, fmt.Errorf("client.DashboardStats: %w", err)
	}
	return &s, nil
}

// AdminStats returns marketplace-wide numbers (admin only).
func (c *Client) AdminStats(ctx context.Context) (*domain.DashboardStats, error) {
	var s domain.DashboardStats
	if err := c.get(ctx, "/api/Statistics/admin", &s); err != nil {
		return nil, fmt.Errorf("client.AdminStats: %w", err)
	}
	return &s, nil
}

// --- Search & health ---

// SearchProducts searches listings by text query.
func (c *Client) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	params := url.Values{}
	params.Set("q", query)

	var products []domain.Product
	if err := c.Do(ctx, "/api/Search/products", RequestOptions{Query: params}, &products); err != nil {
		return nil, fmt.Errorf("client.SearchProducts: %w", err)
	}
	return products, nil
}

// Health checks that the backend is reachable and healthy.
func (c *Client) Health(ctx context.Context) error {
	if err := c.Do(ctx, "/api/Health", RequestOptions{NoAuth: true}, nil); err != nil {
		return fmt.Errorf("client.Health: %w", err)
	}
	return nil
}
