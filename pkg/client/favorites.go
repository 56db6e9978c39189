package client

import (
	"context"
	"fmt"
	"time"

	"github.com/evtb/evtb/pkg/domain"
)

// AddFavorite saves a listing for a user.
func (c *Client) AddFavorite(ctx context.Context, userID, productID int64) (*domain.Favorite, error) {
	body := domain.Favorite{UserID: userID, ProductID: productID, CreatedAt: time.Now().UTC()}
	var fav domain.Favorite
	if err := c.post(ctx, "/api/Favorite", body, &fav); err != nil {
		return nil, fmt.Errorf("client.AddFavorite: %w", err)
	}
	return &fav, nil
}

// RemoveFavorite deletes a favorite by its own id.
func (c *Client) RemoveFavorite(ctx context.Context, favoriteID int64) error {
	if err := c.delete(ctx, idPath("/api/Favorite", favoriteID)); err != nil {
		return fmt.Errorf("client.RemoveFavorite: %w", err)
	}
	return nil
}

// UserFavorites returns a user's saved listings.
func (c *Client) UserFavorites(ctx context.Context, userID int64) ([]domain.Favorite, error) {
	var favs []domain.Favorite
	if err := c.get(ctx, idPath("/api/Favorite/user", userID), &favs); err != nil {
		return nil, fmt.Errorf("client.UserFavorites: %w", err)
	}
	return favs, nil
}

// FavoriteFor returns the user's favorite for productID, or nil.
func (c *Client) FavoriteFor(ctx context.Context, userID, productID int64) (*domain.Favorite, error) {
	favs, err := c.UserFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range favs {
		if favs[i].ProductID == productID {
			return &favs[i], nil
		}
	}
	return nil, nil
}

// ToggleFavorite adds the listing to the user's favorites, or removes it when
// already present. It reports whether the listing is now a favorite.
func (c *Client) ToggleFavorite(ctx context.Context, userID, productID int64) (bool, error) {
	existing, err := c.FavoriteFor(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("client.ToggleFavorite: %w", err)
	}
	if existing != nil {
		if err := c.RemoveFavorite(ctx, existing.ID); err != nil {
			return true, fmt.Errorf("client.ToggleFavorite: %w", err)
		}
		return false, nil
	}
	if _, err := c.AddFavorite(ctx, userID, productID); err != nil {
		return false, fmt.Errorf("client.ToggleFavorite: %w", err)
	}
	return true, nil
}
