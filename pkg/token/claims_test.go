package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testNow = time.Unix(1_700_000_000, 0)

func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func tokenExpiringIn(t *testing.T, d time.Duration) string {
	t.Helper()
	return mintToken(t, jwt.MapClaims{"exp": testNow.Add(d).Unix(), "nameid": "42"})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want State
	}{
		{"expired 10s ago", tokenExpiringIn(t, -10*time.Second), Expired},
		{"expired long ago", tokenExpiringIn(t, -48*time.Hour), Expired},
		{"expires in 10s", tokenExpiringIn(t, 10*time.Second), ExpiringSoon},
		{"expires in 299s", tokenExpiringIn(t, 299*time.Second), ExpiringSoon},
		{"expires in exactly 300s", tokenExpiringIn(t, 300*time.Second), Valid},
		{"expires in an hour", tokenExpiringIn(t, time.Hour), Valid},
		{"no exp claim", mintToken(t, jwt.MapClaims{"sub": "1"}), Valid},
		{"empty", "", Expired},
		{"not a jwt", "opaque-token", Expired},
		{"bad payload", "aaa.!!!.bbb", Expired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.raw, testNow); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyWithinExpirySecond(t *testing.T) {
	raw := tokenExpiringIn(t, 0)
	if got := Classify(raw, testNow.Add(500*time.Millisecond)); got != ExpiringSoon {
		t.Errorf("Classify() half a second into the exp second = %v, want ExpiringSoon", got)
	}
	if got := Classify(raw, testNow.Add(time.Second)); got != Expired {
		t.Errorf("Classify() one second past exp = %v, want Expired", got)
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{Valid: "valid", ExpiringSoon: "expiring-soon", Expired: "expired", State(9): "unknown"} {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}

func TestDecodeClaims(t *testing.T) {
	raw := mintToken(t, jwt.MapClaims{
		"exp":    testNow.Add(time.Hour).Unix(),
		"email":  "seller@evtb.vn",
		"role":   "admin",
		"nameid": "17",
	})
	c, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if c.Email != "seller@evtb.vn" || c.Role != "admin" {
		t.Errorf("claims = %+v", c)
	}
	if id, ok := c.UserID(); !ok || id != 17 {
		t.Errorf("UserID() = %d, %v; want 17, true", id, ok)
	}
	if got := ExpiresAt(raw); !got.Equal(testNow.Add(time.Hour)) {
		t.Errorf("ExpiresAt() = %v", got)
	}
}

func TestClaimsUserIDFallsBackToSubject(t *testing.T) {
	c, err := Decode(mintToken(t, jwt.MapClaims{"sub": "8"}))
	if err != nil {
		t.Fatal(err)
	}
	if id, ok := c.UserID(); !ok || id != 8 {
		t.Errorf("UserID() = %d, %v; want 8, true", id, ok)
	}

	c, _ = Decode(mintToken(t, jwt.MapClaims{"sub": "not-a-number"}))
	if _, ok := c.UserID(); ok {
		t.Error("expected no user id for non-numeric subject")
	}
}
