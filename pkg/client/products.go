package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/evtb/evtb/pkg/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CreateProductRequest is the payload for creating a listing.
type CreateProductRequest struct {
	SellerID        int64   `json:"sellerId" validate:"required,gt=0"`
	Title           string  `json:"title" validate:"required,min=3,max=200"`
	Description     string  `json:"description,omitempty" validate:"max=5000"`
	Price           float64 `json:"price" validate:"gt=0"`
	ProductType     string  `json:"productType" validate:"required,oneof=vehicle battery"`
	Brand           string  `json:"brand,omitempty"`
	Model           string  `json:"model,omitempty"`
	Year            int     `json:"year,omitempty" validate:"omitempty,gte=1990,lte=2100"`
	BatteryCapacity float64 `json:"batteryCapacity,omitempty" validate:"gte=0"`
	Condition       string  `json:"condition,omitempty"`
}

// ListProducts returns every listing.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.get(ctx, "/api/Product", &products); err != nil {
		return nil, fmt.Errorf("client.ListProducts: %w", err)
	}
	return products, nil
}

// ProductsByStatus returns the listings whose normalized status matches.
func (c *Client) ProductsByStatus(ctx context.Context, status domain.ProductStatus) ([]domain.Product, error) {
	all, err := c.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if p.NormalizedStatus() == status {
			out = append(out, p)
		}
	}
	return out, nil
}

// GetProduct fetches a single listing.
func (c *Client) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := c.get(ctx, idPath("/api/Product", id), &p); err != nil {
		return nil, fmt.Errorf("client.GetProduct: %w", err)
	}
	return &p, nil
}

// ProductsBySeller returns a seller's listings.
func (c *Client) ProductsBySeller(ctx context.Context, sellerID int64) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.get(ctx, idPath("/api/Product/seller", sellerID), &products); err != nil {
		return nil, fmt.Errorf("client.ProductsBySeller: %w", err)
	}
	return products, nil
}

// CreateProduct validates and creates a listing. New listings start pending.
func (c *Client) CreateProduct(ctx context.Context, req CreateProductRequest) (*domain.Product, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("client.CreateProduct: %w", err)
	}
	var p domain.Product
	if err := c.post(ctx, "/api/Product", req, &p); err != nil {
		return nil, fmt.Errorf("client.CreateProduct: %w", err)
	}
	return &p, nil
}

// UpdateProduct applies a partial update to a listing.
func (c *Client) UpdateProduct(ctx context.Context, id int64, patch map[string]any) (*domain.Product, error) {
	var p domain.Product
	if err := c.put(ctx, idPath("/api/Product", id), patch, &p); err != nil {
		return nil, fmt.Errorf("client.UpdateProduct: %w", err)
	}
	return &p, nil
}

// DeleteProduct removes a listing.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	if err := c.delete(ctx, idPath("/api/Product", id)); err != nil {
		return fmt.Errorf("client.DeleteProduct: %w", err)
	}
	return nil
}

// ApproveProduct marks a listing approved (admin only).
func (c *Client) ApproveProduct(ctx context.Context, id int64) error {
	if err := c.put(ctx, idPath("/api/Product", id), map[string]string{"status": string(domain.StatusApproved)}, nil); err != nil {
		return fmt.Errorf("client.ApproveProduct: %w", err)
	}
	return nil
}

// RejectProduct marks a listing rejected with an optional reason (admin only).
func (c *Client) RejectProduct(ctx context.Context, id int64, reason string) error {
	body := map[string]string{"status": string(domain.StatusRejected)}
	if reason != "" {
		body["rejectionReason"] = reason
	}
	if err := c.put(ctx, idPath("/api/Product", id), body, nil); err != nil {
		return fmt.Errorf("client.RejectProduct: %w", err)
	}
	return nil
}

// RequestVerification asks for a vehicle inspection. Older backends do not know
// the verificationStatus field, so a rejection falls back to inspectionRequested.
func (c *Client) RequestVerification(ctx context.Context, id int64) error {
	path := idPath("/api/Product", id)
	err := c.put(ctx, path, map[string]any{"verificationStatus": "Requested"}, nil)
	if err == nil {
		return nil
	}
	if !IsStatus(err, http.StatusBadRequest) && !IsStatus(err, http.StatusUnprocessableEntity) {
		return fmt.Errorf("client.RequestVerification: %w", err)
	}
	c.logger.Debug("verificationStatus rejected, falling back to inspectionRequested",
		zap.Int64("product_id", id), zap.Error(err))
	if err := c.put(ctx, path, map[string]any{"inspectionRequested": true}, nil); err != nil {
		return fmt.Errorf("client.RequestVerification: %w", err)
	}
	return nil
}

// --- Images ---

// ProductImages returns the images attached to a listing.
func (c *Client) ProductImages(ctx context.Context, productID int64) ([]domain.ProductImage, error) {
	var images []domain.ProductImage
	if err := c.get(ctx, idPath("/api/ProductImage/product", productID), &images); err != nil {
		return nil, fmt.Errorf("client.ProductImages: %w", err)
	}
	return images, nil
}

// ImageFile is one image to upload.
type ImageFile struct {
	Name string
	Data []byte
}

// UploadImages uploads images for a listing. It tries the batch endpoint
// first; when that fails each image is uploaded on its own and failures are
// skipped. It returns how many images were stored.
func (c *Client) UploadImages(ctx context.Context, productID int64, imageType string, files []ImageFile) (int, error) {
	if len(files) == 0 {
		return 0, nil
	}
	pid := strconv.FormatInt(productID, 10)
	fields := []FormField{{Name: "productId", Value: pid}}
	if imageType != "" {
		fields = append(fields, FormField{Name: "imageType", Value: imageType})
	}

	batch := &Multipart{Fields: fields}
	for _, f := range files {
		batch.Files = append(batch.Files, FilePart{Field: "images", FileName: f.Name, Data: f.Data})
	}
	batchErr := c.Do(ctx, "/api/ProductImage/multiple", RequestOptions{Method: http.MethodPost, Body: batch}, nil)
	if batchErr == nil {
		return len(files), nil
	}
	c.logger.Warn("batch image upload failed, uploading one by one",
		zap.Int64("product_id", productID), zap.Error(batchErr))

	uploaded := 0
	errs := []error{batchErr}
	for i, f := range files {
		single := &Multipart{
			Fields: fields,
			Files:  []FilePart{{Field: "imageFile", FileName: f.Name, Data: f.Data}},
		}
		if err := c.Do(ctx, "/api/ProductImage", RequestOptions{Method: http.MethodPost, Body: single}, nil); err != nil {
			c.logger.Warn("image upload failed", zap.Int("index", i), zap.String("name", f.Name), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		uploaded++
	}
	if uploaded == 0 {
		return 0, fmt.Errorf("client.UploadImages: %w", errors.Join(errs...))
	}
	return uploaded, nil
}

// DeleteImage removes an image.
func (c *Client) DeleteImage(ctx context.Context, imageID int64) error {
	if err := c.delete(ctx, idPath("/api/ProductImage", imageID)); err != nil {
		return fmt.Errorf("client.DeleteImage: %w", err)
	}
	return nil
}
