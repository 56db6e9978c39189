package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/evtb/evtb/pkg/domain"
)

// OAuth providers supported by /api/Auth/{provider}.
const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

// RegisterRequest is the payload for /api/User/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
}

// AuthResponse is what login and register return. The backend is loose about
// its shape, so the body is kept to allow fallbacks.
type AuthResponse struct {
	Token        string          `json:"token"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	User         *domain.User    `json:"user"`
	Profile      *domain.Profile `json:"profile"`
	Raw          json.RawMessage `json:"-"`
}

// BearerToken returns token, falling back to accessToken.
func (r *AuthResponse) BearerToken() string {
	if r.Token != "" {
		return r.Token
	}
	return r.AccessToken
}

// UserOr returns the nested user; failing that, the whole body read as a user;
// failing that, a user carrying only the given email.
func (r *AuthResponse) UserOr(email string) *domain.User {
	if r.User != nil {
		return r.User
	}
	if len(r.Raw) > 0 {
		var u domain.User
		if json.Unmarshal(r.Raw, &u) == nil && (u.ID != 0 || u.Email != "") {
			return &u
		}
	}
	return &domain.User{Email: email}
}

func (c *Client) authCall(ctx context.Context, path string, body any) (*AuthResponse, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, path, RequestOptions{Method: http.MethodPost, Body: body, NoAuth: true}, &raw); err != nil {
		return nil, err
	}
	resp := &AuthResponse{Raw: raw}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, resp); err != nil {
			return nil, fmt.Errorf("decode auth response: %w", err)
		}
	}
	return resp, nil
}

// Login signs in with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	resp, err := c.authCall(ctx, "/api/User/login", map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return resp, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	resp, err := c.authCall(ctx, "/api/User/register", req)
	if err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return resp, nil
}

// RefreshToken exchanges a refresh token for a new bearer token.
// It never consults the token source.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	resp, err := c.authCall(ctx, "/api/Auth/refresh", map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return "", fmt.Errorf("client.RefreshToken: %w", err)
	}
	tok := resp.BearerToken()
	if tok == "" {
		return "", errors.New("client.RefreshToken: response carried no token")
	}
	return tok, nil
}

// GetUser fetches a user by id.
func (c *Client) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, idPath("/api/User", id), &u); err != nil {
		return nil, fmt.Errorf("client.GetUser: %w", err)
	}
	return &u, nil
}

// ListUsers returns every account (admin only).
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.get(ctx, "/api/User", &users); err != nil {
		return nil, fmt.Errorf("client.ListUsers: %w", err)
	}
	return users, nil
}

// UpdateUser applies patch to the user and returns the updated profile.
func (c *Client) UpdateUser(ctx context.Context, id int64, patch map[string]any) (*domain.Profile, error) {
	var p domain.Profile
	if err := c.put(ctx, idPath("/api/User", id), patch, &p); err != nil {
		return nil, fmt.Errorf("client.UpdateUser: %w", err)
	}
	if p.UserID == 0 {
		p.UserID = id
	}
	return &p, nil
}

// OAuthURL returns the backend URL that starts the provider's sign-in flow and
// eventually redirects to returnURL with a token query parameter.
func (c *Client) OAuthURL(provider, returnURL string) (string, error) {
	switch provider {
	case ProviderGoogle, ProviderFacebook:
	default:
		return "", fmt.Errorf("client.OAuthURL: unsupported provider %q", provider)
	}
	params := url.Values{}
	params.Set("returnUrl", returnURL)
	return c.baseURL + "/api/Auth/" + provider + "?" + params.Encode(), nil
}
