package domain

import (
	"strings"
	"time"
)

// ProductStatus is the moderation state of a listing.
type ProductStatus string

const (
	StatusPending  ProductStatus = "pending"
	StatusApproved ProductStatus = "approved"
	StatusRejected ProductStatus = "rejected"
	StatusSold     ProductStatus = "sold"
)

// Product types sold on the marketplace.
const (
	ProductVehicle = "vehicle"
	ProductBattery = "battery"
)

// Product is a marketplace listing.
type Product struct {
	ID              int64          `json:"productId"`
	SellerID        int64          `json:"sellerId"`
	Title           string         `json:"title"`
	Description     string         `json:"description,omitempty"`
	Price           float64        `json:"price"`
	ProductType     string         `json:"productType,omitempty"`
	Brand           string         `json:"brand,omitempty"`
	Model           string         `json:"model,omitempty"`
	Year            int            `json:"year,omitempty"`
	BatteryCapacity float64        `json:"batteryCapacity,omitempty"`
	Condition       string         `json:"condition,omitempty"`
	Status          string         `json:"status,omitempty"`
	RejectionReason string         `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time      `json:"createdDate,omitempty"`
	Images          []ProductImage `json:"images,omitempty"`
}

// ProductImage is an image attached to a listing.
type ProductImage struct {
	ID        int64  `json:"imageId"`
	ProductID int64  `json:"productId"`
	ImageURL  string `json:"imageData"`
	ImageType string `json:"imageType,omitempty"`
}

// NormalizedStatus maps the backend's free-form status text onto a ProductStatus.
// Unknown or empty values are treated as pending.
func (p *Product) NormalizedStatus() ProductStatus {
	return NormalizeStatus(p.Status)
}

// NormalizeStatus maps free-form status text (English or Vietnamese) onto a ProductStatus.
func NormalizeStatus(raw string) ProductStatus {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "", strings.Contains(s, "pending"), strings.Contains(s, "chờ"):
		return StatusPending
	case strings.Contains(s, "approve"), strings.Contains(s, "duyệt"):
		return StatusApproved
	case strings.Contains(s, "reject"), strings.Contains(s, "từ chối"):
		return StatusRejected
	case strings.Contains(s, "sold"), strings.Contains(s, "đã bán"):
		return StatusSold
	default:
		return ProductStatus(s)
	}
}
