package domain

import "time"

// Order is a purchase of a listing.
type Order struct {
	ID          int64     `json:"orderId"`
	BuyerID     int64     `json:"buyerId"`
	SellerID    int64     `json:"sellerId,omitempty"`
	ProductID   int64     `json:"productId"`
	TotalAmount float64   `json:"totalAmount"`
	Status      string    `json:"status,omitempty"`
	CreatedAt   time.Time `json:"createdDate,omitempty"`
}

// Payment is a payment attempt for an order.
type Payment struct {
	ID          int64   `json:"paymentId"`
	OrderID     int64   `json:"orderId"`
	Amount      float64 `json:"amount"`
	Method      string  `json:"paymentMethod,omitempty"`
	Status      string  `json:"status,omitempty"`
	RedirectURL string  `json:"paymentUrl,omitempty"`
}

// DashboardStats summarizes a seller's or admin's activity.
type DashboardStats struct {
	TotalListings    int     `json:"totalListings"`
	PendingListings  int     `json:"pendingListings"`
	ApprovedListings int     `json:"approvedListings"`
	RejectedListings int     `json:"rejectedListings"`
	TotalOrders      int     `json:"totalOrders"`
	TotalRevenue     float64 `json:"totalRevenue"`
}
