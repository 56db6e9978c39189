package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/evtb/evtb/internal/storage"
	"github.com/evtb/evtb/pkg/client"
	"github.com/evtb/evtb/pkg/domain"
)

type fakeAPI struct {
	login    *client.AuthResponse
	register *client.AuthResponse
	user     *domain.User
	profile  *domain.Profile
	err      error

	gotRegister client.RegisterRequest
	gotPatch    map[string]any
}

func (f *fakeAPI) Login(context.Context, string, string) (*client.AuthResponse, error) {
	return f.login, f.err
}

func (f *fakeAPI) Register(_ context.Context, req client.RegisterRequest) (*client.AuthResponse, error) {
	f.gotRegister = req
	return f.register, f.err
}

func (f *fakeAPI) GetUser(context.Context, int64) (*domain.User, error) {
	return f.user, f.err
}

func (f *fakeAPI) UpdateUser(_ context.Context, _ int64, patch map[string]any) (*domain.Profile, error) {
	f.gotPatch = patch
	return f.profile, f.err
}

// spyStore counts writes.
type spyStore struct {
	*storage.MemoryStore
	sets int
}

func (s *spyStore) Set(key, value string) error {
	s.sets++
	return s.MemoryStore.Set(key, value)
}

func TestSignInWithoutTokenWritesNothing(t *testing.T) {
	st := &spyStore{MemoryStore: storage.NewMemoryStore()}
	api := &fakeAPI{login: &client.AuthResponse{User: &domain.User{ID: 1, Email: "a@b.vn"}}}
	s := New(api, st, nil)

	_, err := s.SignIn(context.Background(), "a@b.vn", "secret")
	if !errors.Is(err, ErrLoginFailed) {
		t.Fatalf("SignIn() error = %v, want ErrLoginFailed", err)
	}
	if st.sets != 0 {
		t.Errorf("storage written %d times, want 0", st.sets)
	}
	if _, ok := s.Current().(domain.Anonymous); !ok {
		t.Errorf("Current() = %T, want Anonymous", s.Current())
	}
}

func TestSignInPersists(t *testing.T) {
	st := storage.NewMemoryStore()
	api := &fakeAPI{login: &client.AuthResponse{
		AccessToken:  "tok",
		RefreshToken: "ref",
		User:         &domain.User{ID: 5, Email: "a@b.vn", FullName: "An", Role: "Admin"},
	}}
	s := New(api, st, nil)

	u, err := s.SignIn(context.Background(), "a@b.vn", "secret")
	if err != nil {
		t.Fatalf("SignIn() error: %v", err)
	}
	if u.ID != 5 {
		t.Errorf("user id = %d", u.ID)
	}
	auth, ok := s.Current().(domain.Authenticated)
	if !ok || auth.Token != "tok" {
		t.Fatalf("Current() = %#v", s.Current())
	}
	if !s.IsAdmin() {
		t.Error("IsAdmin() = false for role Admin")
	}
	if p := s.Profile(); p == nil || p.UserID != 5 || p.FullName != "An" {
		t.Errorf("Profile() = %+v", p)
	}

	rec, err := storage.LoadAuth(st)
	if err != nil || rec == nil {
		t.Fatalf("LoadAuth() = %v, %v", rec, err)
	}
	if rec.Token != "tok" || rec.RefreshToken != "ref" || rec.User.Email != "a@b.vn" {
		t.Errorf("stored record = %+v", rec)
	}

	// A fresh store picks the session back up.
	again := New(api, st, nil)
	if err := again.Hydrate(); err != nil {
		t.Fatal(err)
	}
	if again.Token() != "tok" {
		t.Errorf("hydrated Token() = %q", again.Token())
	}
}

func TestSignInUserFallbacks(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantID    int64
		wantEmail string
	}{
		{"nested user", `{"token":"t","user":{"userId":3,"email":"x@y.vn"}}`, 3, "x@y.vn"},
		{"flat body", `{"token":"t","userId":4,"email":"flat@y.vn"}`, 4, "flat@y.vn"},
		{"email only", `{"token":"t"}`, 0, "typed@y.vn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/User/login" {
					t.Errorf("path = %s", r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body)) //nolint:errcheck
			}))
			defer srv.Close()

			s := New(client.New(srv.URL), storage.NewMemoryStore(), nil)
			u, err := s.SignIn(context.Background(), "typed@y.vn", "pw")
			if err != nil {
				t.Fatalf("SignIn() error: %v", err)
			}
			if u.ID != tt.wantID || u.Email != tt.wantEmail {
				t.Errorf("user = %+v, want id %d email %s", u, tt.wantID, tt.wantEmail)
			}
		})
	}
}

func TestSignInBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "wrong password"}) //nolint:errcheck
	}))
	defer srv.Close()

	st := storage.NewMemoryStore()
	s := New(client.New(srv.URL), st, nil)
	_, err := s.SignIn(context.Background(), "a@b.vn", "bad")
	var httpErr *client.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Message != "wrong password" {
		t.Fatalf("SignIn() error = %v", err)
	}
	if rec, _ := storage.LoadAuth(st); rec != nil {
		t.Error("session stored after a failed sign in")
	}
}

func TestSignOutClearsEverything(t *testing.T) {
	st := storage.NewMemoryStore()
	storage.SaveAuth(st, &domain.AuthRecord{ //nolint:errcheck
		Token:   "tok",
		User:    &domain.User{ID: 1},
		Profile: &domain.Profile{UserID: 1},
	})
	s := New(&fakeAPI{}, st, nil)
	if err := s.Hydrate(); err != nil {
		t.Fatal(err)
	}

	if err := s.SignOut(); err != nil {
		t.Fatalf("SignOut() error: %v", err)
	}
	if _, ok, _ := st.Get(storage.AuthKey); ok {
		t.Error("evtb_auth still present")
	}
	if s.User() != nil || s.Profile() != nil {
		t.Error("user or profile still set")
	}
	if _, ok := s.Current().(domain.Anonymous); !ok {
		t.Errorf("Current() = %T, want Anonymous", s.Current())
	}

	// Signing out twice is fine.
	if err := s.SignOut(); err != nil {
		t.Errorf("second SignOut() error: %v", err)
	}
}

func TestHydrateCorrupt(t *testing.T) {
	st := storage.NewMemoryStore()
	st.Set(storage.AuthKey, "not json") //nolint:errcheck
	s := New(&fakeAPI{}, st, nil)
	if err := s.Hydrate(); err != nil {
		t.Fatalf("Hydrate() error: %v", err)
	}
	if _, ok := s.Current().(domain.Anonymous); !ok {
		t.Errorf("Current() = %T, want Anonymous", s.Current())
	}
}

func TestSignUp(t *testing.T) {
	t.Run("invalid form", func(t *testing.T) {
		api := &fakeAPI{}
		s := New(api, storage.NewMemoryStore(), nil)
		_, err := s.SignUp(context.Background(), SignUpRequest{Email: "nope", Password: "123", FullName: "A"})
		if err == nil {
			t.Fatal("expected validation error")
		}
		if api.gotRegister.Email != "" {
			t.Error("backend called for an invalid form")
		}
	})

	t.Run("no token stays anonymous", func(t *testing.T) {
		st := storage.NewMemoryStore()
		api := &fakeAPI{register: &client.AuthResponse{User: &domain.User{ID: 9, Email: "n@b.vn"}}}
		s := New(api, st, nil)
		u, err := s.SignUp(context.Background(), SignUpRequest{Email: "n@b.vn", Password: "secret1", FullName: "New"})
		if err != nil {
			t.Fatalf("SignUp() error: %v", err)
		}
		if u.ID != 9 || u.FullName != "New" {
			t.Errorf("user = %+v", u)
		}
		if _, ok := s.Current().(domain.Anonymous); !ok {
			t.Error("expected Anonymous after sign up without token")
		}
		if rec, _ := storage.LoadAuth(st); rec != nil {
			t.Error("nothing should be stored")
		}
		if api.gotRegister.FullName != "New" {
			t.Errorf("register payload = %+v", api.gotRegister)
		}
	})

	t.Run("token signs in", func(t *testing.T) {
		api := &fakeAPI{register: &client.AuthResponse{Token: "t", User: &domain.User{ID: 9}}}
		s := New(api, storage.NewMemoryStore(), nil)
		if _, err := s.SignUp(context.Background(), SignUpRequest{Email: "n@b.vn", Password: "secret1", FullName: "New"}); err != nil {
			t.Fatal(err)
		}
		if s.Token() != "t" {
			t.Errorf("Token() = %q", s.Token())
		}
	})
}

func TestUpdateProfile(t *testing.T) {
	t.Run("requires sign in", func(t *testing.T) {
		s := New(&fakeAPI{}, storage.NewMemoryStore(), nil)
		if _, err := s.UpdateProfile(context.Background(), map[string]any{"phone": "1"}); !errors.Is(err, ErrNotSignedIn) {
			t.Errorf("UpdateProfile() error = %v, want ErrNotSignedIn", err)
		}
	})

	t.Run("keeps refreshed token", func(t *testing.T) {
		st := storage.NewMemoryStore()
		storage.SaveAuth(st, &domain.AuthRecord{Token: "old", RefreshToken: "r", User: &domain.User{ID: 2}}) //nolint:errcheck
		api := &fakeAPI{profile: &domain.Profile{UserID: 2, Phone: "0909"}}
		s := New(api, st, nil)
		s.Hydrate() //nolint:errcheck

		// The token manager rewrote the record behind the store's back.
		storage.SaveAuth(st, &domain.AuthRecord{Token: "new", RefreshToken: "r", User: &domain.User{ID: 2}}) //nolint:errcheck

		p, err := s.UpdateProfile(context.Background(), map[string]any{"phone": "0909"})
		if err != nil {
			t.Fatalf("UpdateProfile() error: %v", err)
		}
		if p.Phone != "0909" || api.gotPatch["phone"] != "0909" {
			t.Errorf("profile = %+v, patch = %v", p, api.gotPatch)
		}
		rec, _ := storage.LoadAuth(st)
		if rec.Token != "new" || rec.Profile.Phone != "0909" {
			t.Errorf("stored record = %+v", rec)
		}
	})
}

func TestAdoptToken(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"nameid": "12",
		"email":  "oauth@b.vn",
		"role":   "member",
		"exp":    time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}

	st := storage.NewMemoryStore()
	s := New(&fakeAPI{user: &domain.User{FullName: "OAuth User"}}, st, nil)
	u, err := s.AdoptToken(context.Background(), raw)
	if err != nil {
		t.Fatalf("AdoptToken() error: %v", err)
	}
	if u.ID != 12 || u.Email != "oauth@b.vn" || u.Role != "member" || u.FullName != "OAuth User" {
		t.Errorf("user = %+v", u)
	}
	if s.Token() != raw {
		t.Error("token not adopted")
	}

	t.Run("lookup failure clears", func(t *testing.T) {
		st := storage.NewMemoryStore()
		s := New(&fakeAPI{err: errors.New("boom")}, st, nil)
		if _, err := s.AdoptToken(context.Background(), raw); err == nil {
			t.Fatal("expected error")
		}
		if rec, _ := storage.LoadAuth(st); rec != nil {
			t.Error("session left behind after failed lookup")
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		s := New(&fakeAPI{}, storage.NewMemoryStore(), nil)
		if _, err := s.AdoptToken(context.Background(), "garbage"); err == nil {
			t.Error("expected error")
		}
	})
}
