// Package token decodes bearer tokens and keeps the stored one fresh.
package token

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiringSoonWindow is how close to expiry a token counts as expiring soon.
const ExpiringSoonWindow = 5 * time.Minute

// State classifies a token by its remaining lifetime.
type State int

const (
	Valid State = iota
	ExpiringSoon
	Expired
)

func (s State) String() string {
	switch s {
	case Valid:
		return "valid"
	case ExpiringSoon:
		return "expiring-soon"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Claims are the fields the client reads from a bearer token. The token is
// never verified here; the backend is the authority.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	// NameID is the user id claim emitted by ASP.NET backends.
	NameID string `json:"nameid,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the numeric user id from nameid, falling back to sub.
func (c *Claims) UserID() (int64, bool) {
	for _, v := range []string{c.NameID, c.Subject} {
		if v == "" {
			continue
		}
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			return id, true
		}
	}
	return 0, false
}

// Decode reads the claims segment of a JWT without checking its signature.
func Decode(raw string) (*Claims, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return nil, fmt.Errorf("token.Decode: %w", err)
	}
	return &claims, nil
}

// Classify reports the state of raw at now. Anything that cannot be decoded
// is Expired. A token without an exp claim never expires.
func Classify(raw string, now time.Time) State {
	if raw == "" {
		return Expired
	}
	claims, err := Decode(raw)
	if err != nil {
		return Expired
	}
	return classifyClaims(claims, now)
}

func classifyClaims(c *Claims, now time.Time) State {
	if c.ExpiresAt == nil {
		return Valid
	}
	exp := c.ExpiresAt.Time
	// exp has whole-second precision.
	now = now.Truncate(time.Second)
	if exp.Before(now) {
		return Expired
	}
	if exp.Sub(now) < ExpiringSoonWindow {
		return ExpiringSoon
	}
	return Valid
}

// ExpiresAt returns the expiry of raw, or the zero time when it has none or
// cannot be decoded.
func ExpiresAt(raw string) time.Time {
	claims, err := Decode(raw)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
