// Package session owns the signed-in user and keeps it in local storage.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/evtb/evtb/internal/storage"
	"github.com/evtb/evtb/pkg/client"
	"github.com/evtb/evtb/pkg/domain"
	"github.com/evtb/evtb/pkg/token"
)

// AuthAPI is the slice of the backend the session store talks to.
// *client.Client satisfies it.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*client.AuthResponse, error)
	Register(ctx context.Context, req client.RegisterRequest) (*client.AuthResponse, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	UpdateUser(ctx context.Context, id int64, patch map[string]any) (*domain.Profile, error)
}

// SignUpRequest is the registration form.
type SignUpRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	FullName string `validate:"required"`
	Phone    string `validate:"omitempty,min=8,max=15"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Store holds the current session and mirrors it to storage.
type Store struct {
	api    AuthAPI
	store  storage.Store
	logger *zap.Logger

	mu  sync.RWMutex
	rec *domain.AuthRecord
}

// New returns an Anonymous store. Call Hydrate to pick up a saved session.
func New(api AuthAPI, store storage.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{api: api, store: store, logger: logger}
}

// Hydrate loads the saved session. An unreadable blob leaves the store Anonymous.
func (s *Store) Hydrate() error {
	rec, err := storage.LoadAuth(s.store)
	if errors.Is(err, storage.ErrCorrupt) {
		s.logger.Warn("ignoring unreadable saved session", zap.Error(err))
		rec, err = nil, nil
	}
	if err != nil {
		return fmt.Errorf("session.Hydrate: %w", err)
	}
	if rec != nil && rec.Token == "" {
		rec = nil
	}
	s.mu.Lock()
	s.rec = rec
	s.mu.Unlock()
	return nil
}

// Current returns the session as Anonymous or Authenticated.
func (s *Store) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec.Session()
}

// User returns the signed-in user, or nil.
func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rec == nil {
		return nil
	}
	return s.rec.User
}

// Profile returns the signed-in user's profile, or nil.
func (s *Store) Profile() *domain.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rec == nil {
		return nil
	}
	return s.rec.Profile
}

// Token returns the stored bearer token, or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rec == nil {
		return ""
	}
	return s.rec.Token
}

// IsAdmin reports whether the signed-in user is an administrator.
func (s *Store) IsAdmin() bool {
	return s.User().IsAdmin()
}

// SignIn authenticates with email and password. Nothing is stored unless the
// backend returns a token.
func (s *Store) SignIn(ctx context.Context, email, password string) (*domain.User, error) {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("session.SignIn: %w", err)
	}
	tok := resp.BearerToken()
	if tok == "" {
		return nil, ErrLoginFailed
	}
	user := resp.UserOr(email)
	rec := &domain.AuthRecord{
		Token:        tok,
		RefreshToken: resp.RefreshToken,
		User:         user,
		Profile:      profileOr(resp.Profile, user),
	}
	if err := s.save(rec); err != nil {
		return nil, fmt.Errorf("session.SignIn: %w", err)
	}
	s.logger.Info("signed in", zap.Int64("user_id", user.ID))
	return user, nil
}

// SignUp registers a new account. When the backend signs the new user in
// right away the session becomes Authenticated; otherwise it stays Anonymous.
func (s *Store) SignUp(ctx context.Context, req SignUpRequest) (*domain.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("session.SignUp: %w", err)
	}
	resp, err := s.api.Register(ctx, client.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		return nil, fmt.Errorf("session.SignUp: %w", err)
	}
	user := resp.UserOr(req.Email)
	if user.FullName == "" {
		user.FullName = req.FullName
	}
	tok := resp.BearerToken()
	if tok == "" {
		s.logger.Debug("registered without auto sign-in", zap.String("email", req.Email))
		return user, nil
	}
	rec := &domain.AuthRecord{
		Token:        tok,
		RefreshToken: resp.RefreshToken,
		User:         user,
		Profile:      profileOr(resp.Profile, user),
	}
	if err := s.save(rec); err != nil {
		return nil, fmt.Errorf("session.SignUp: %w", err)
	}
	return user, nil
}

// AdoptToken signs in with a token obtained elsewhere, such as the OAuth
// redirect. The user is looked up by the id in the token's claims.
func (s *Store) AdoptToken(ctx context.Context, raw string) (*domain.User, error) {
	claims, err := token.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("session.AdoptToken: %w", err)
	}
	id, ok := claims.UserID()
	if !ok {
		return nil, fmt.Errorf("session.AdoptToken: token carries no user id")
	}
	if token.Classify(raw, time.Now()) == token.Expired {
		return nil, fmt.Errorf("session.AdoptToken: token already expired")
	}

	// The lookup is authenticated by the token itself, so it is stored first.
	if err := s.save(&domain.AuthRecord{Token: raw, User: &domain.User{ID: id, Email: claims.Email}}); err != nil {
		return nil, fmt.Errorf("session.AdoptToken: %w", err)
	}
	user, err := s.api.GetUser(ctx, id)
	if err != nil {
		s.Clear()
		return nil, fmt.Errorf("session.AdoptToken: %w", err)
	}
	if user.ID == 0 {
		user.ID = id
	}
	if user.Email == "" {
		user.Email = claims.Email
	}
	if user.Role == "" {
		user.Role = claims.Role
	}
	rec := &domain.AuthRecord{Token: raw, User: user, Profile: profileOr(nil, user)}
	if err := s.save(rec); err != nil {
		return nil, fmt.Errorf("session.AdoptToken: %w", err)
	}
	return user, nil
}

// UpdateProfile sends patch to the backend and stores the returned profile.
func (s *Store) UpdateProfile(ctx context.Context, patch map[string]any) (*domain.Profile, error) {
	cur := s.latest()
	if cur.Token == "" || cur.User == nil {
		return nil, ErrNotSignedIn
	}

	p, err := s.api.UpdateUser(ctx, cur.User.ID, patch)
	if err != nil {
		return nil, fmt.Errorf("session.UpdateProfile: %w", err)
	}
	cur.Profile = p
	if err := s.save(&cur); err != nil {
		return nil, fmt.Errorf("session.UpdateProfile: %w", err)
	}
	return p, nil
}

// SignOut forgets the session, in memory and in storage.
func (s *Store) SignOut() error {
	s.mu.Lock()
	s.rec = nil
	s.mu.Unlock()
	if err := storage.ClearAuth(s.store); err != nil {
		return fmt.Errorf("session.SignOut: %w", err)
	}
	s.logger.Info("signed out")
	return nil
}

// Clear is SignOut for callers that cannot handle an error, such as the
// token manager and the client's 401 hook.
func (s *Store) Clear() {
	if err := s.SignOut(); err != nil {
		s.logger.Warn("failed to clear session", zap.Error(err))
	}
}

func (s *Store) save(rec *domain.AuthRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := storage.SaveAuth(s.store, rec); err != nil {
		return err
	}
	s.rec = rec
	return nil
}

// latest returns a copy of the stored record, which may carry a token the
// token manager refreshed after this store last saved.
func (s *Store) latest() domain.AuthRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, err := storage.LoadAuth(s.store); err == nil && rec != nil && s.rec != nil {
		return *rec
	}
	if s.rec == nil {
		return domain.AuthRecord{}
	}
	return *s.rec
}

func profileOr(p *domain.Profile, u *domain.User) *domain.Profile {
	if p != nil {
		return p
	}
	if u == nil {
		return nil
	}
	return &domain.Profile{
		UserID:   u.ID,
		FullName: u.FullName,
		Phone:    u.Phone,
		Role:     u.Role,
	}
}
