package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/evtb/evtb/internal/storage"
)

// DefaultCheckInterval is how often Monitor looks at the stored token.
const DefaultCheckInterval = time.Minute

// Refresher exchanges a refresh token for a new bearer token.
type Refresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}

// Clearer ends the current session.
type Clearer interface {
	Clear()
}

// ClearFunc adapts a function to Clearer.
type ClearFunc func()

func (f ClearFunc) Clear() { f() }

// Manager hands out bearer tokens from storage, refreshing or dropping them
// as they approach expiry.
type Manager struct {
	store     storage.Store
	refresher Refresher
	clearer   Clearer
	logger    *zap.Logger
	now       func() time.Time
	demo      bool
	group     singleflight.Group
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithDemoMode forces demo mode regardless of the stored flag.
func WithDemoMode(on bool) Option {
	return func(m *Manager) { m.demo = on }
}

// NewManager returns a Manager reading the session from store. When clearer
// is nil, clearing only removes the stored session.
func NewManager(store storage.Store, refresher Refresher, clearer Clearer, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		refresher: refresher,
		clearer:   clearer,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.clearer == nil {
		m.clearer = ClearFunc(func() {
			if err := storage.ClearAuth(m.store); err != nil {
				m.logger.Warn("failed to clear session", zap.Error(err))
			}
		})
	}
	return m
}

// DemoMode reports whether expiry checks are bypassed.
func (m *Manager) DemoMode() bool {
	return m.demo || storage.DemoMode(m.store)
}

func (m *Manager) stored() (string, error) {
	rec, err := storage.LoadAuth(m.store)
	if errors.Is(err, storage.ErrCorrupt) {
		m.logger.Warn("stored session is unreadable", zap.Error(err))
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", nil
	}
	return rec.Token, nil
}

// ValidToken returns a usable bearer token, or "" when there is none.
//
// An expired token gets one refresh attempt; if that fails the session is
// cleared. A token expiring soon is refreshed proactively, but kept when the
// refresh fails. In demo mode the stored token is returned unchecked.
func (m *Manager) ValidToken(ctx context.Context) (string, error) {
	tok, err := m.stored()
	if err != nil {
		return "", fmt.Errorf("token.ValidToken: %w", err)
	}
	if tok == "" {
		return "", nil
	}
	if m.DemoMode() {
		return tok, nil
	}

	switch state := Classify(tok, m.now()); state {
	case Expired:
		m.logger.Debug("token expired, attempting refresh")
		fresh, err := m.Refresh(ctx)
		if err != nil {
			m.logger.Warn("token refresh failed, clearing session", zap.Error(err))
			m.clearer.Clear()
			return "", nil
		}
		return fresh, nil
	case ExpiringSoon:
		m.logger.Debug("token expiring soon, refreshing proactively")
		fresh, err := m.Refresh(ctx)
		if err != nil {
			m.logger.Warn("proactive refresh failed, keeping current token", zap.Error(err))
			return tok, nil
		}
		return fresh, nil
	default:
		return tok, nil
	}
}

// Token implements client.TokenSource.
func (m *Manager) Token(ctx context.Context) (string, error) {
	return m.ValidToken(ctx)
}

// Refresh exchanges the stored refresh token for a new bearer token and
// stores it. Concurrent callers share a single in-flight refresh.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	v, err, shared := m.group.Do("refresh", func() (any, error) {
		return m.refresh(ctx)
	})
	if shared {
		m.logger.Debug("joined in-flight token refresh")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (m *Manager) refresh(ctx context.Context) (string, error) {
	rec, err := storage.LoadAuth(m.store)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	if rec == nil || rec.RefreshToken == "" {
		return "", ErrNoRefreshToken
	}
	if m.refresher == nil {
		return "", fmt.Errorf("%w: no refresher configured", ErrRefreshFailed)
	}

	fresh, err := m.refresher.RefreshToken(ctx, rec.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	// Re-read so a concurrent profile update is not overwritten and a
	// concurrent sign-out is not undone.
	latest, err := storage.LoadAuth(m.store)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	if latest == nil {
		return "", fmt.Errorf("%w: session ended during refresh", ErrRefreshFailed)
	}
	latest.Token = fresh
	if err := storage.SaveAuth(m.store, latest); err != nil {
		return "", fmt.Errorf("%w: store: %v", ErrRefreshFailed, err)
	}
	m.logger.Info("token refreshed", zap.Time("expires_at", ExpiresAt(fresh)))
	return fresh, nil
}

// Status describes the stored token.
type Status struct {
	Present   bool
	State     State
	ExpiresAt time.Time
	Demo      bool
}

// Remaining returns the lifetime left at now, or zero when unknown or past.
func (s Status) Remaining(now time.Time) time.Duration {
	if s.ExpiresAt.IsZero() || s.ExpiresAt.Before(now) {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}

// Status inspects the stored token without refreshing it.
func (m *Manager) Status() (Status, error) {
	tok, err := m.stored()
	if err != nil {
		return Status{}, fmt.Errorf("token.Status: %w", err)
	}
	st := Status{Demo: m.DemoMode()}
	if tok == "" {
		st.State = Expired
		return st, nil
	}
	st.Present = true
	st.State = Classify(tok, m.now())
	st.ExpiresAt = ExpiresAt(tok)
	return st, nil
}

// Monitor checks the stored token every interval until ctx is done. When the
// token is not valid it applies the ValidToken policy and, if the token is
// still not valid afterwards, reports the state to onAlert.
func (m *Manager) Monitor(ctx context.Context, interval time.Duration, onAlert func(State)) {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	if onAlert == nil {
		onAlert = func(State) {}
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.check(ctx, onAlert)
		}
	}
}

func (m *Manager) check(ctx context.Context, onAlert func(State)) {
	before, err := m.Status()
	if err != nil {
		m.logger.Warn("token check failed", zap.Error(err))
		return
	}
	if !before.Present || before.Demo || before.State == Valid {
		return
	}
	if _, err := m.ValidToken(ctx); err != nil {
		m.logger.Warn("token check failed", zap.Error(err))
		return
	}
	after, err := m.Status()
	if err != nil {
		return
	}
	switch {
	case !after.Present:
		onAlert(Expired)
	case after.State != Valid:
		onAlert(after.State)
	}
}
