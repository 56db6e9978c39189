package storage

import (
	"encoding/json"
	"fmt"

	"github.com/evtb/evtb/pkg/domain"
)

// LoadAuth reads the session blob. It returns (nil, nil) when nothing is stored
// and ErrCorrupt (wrapped) when the blob is not valid JSON.
func LoadAuth(s Store) (*domain.AuthRecord, error) {
	raw, ok, err := s.Get(AuthKey)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var rec domain.AuthRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, AuthKey, err)
	}
	return &rec, nil
}

// SaveAuth writes the full session blob.
func SaveAuth(s Store, rec *domain.AuthRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("storage.SaveAuth: %w", err)
	}
	return s.Set(AuthKey, string(data))
}

// ClearAuth removes the session blob.
func ClearAuth(s Store) error {
	return s.Remove(AuthKey)
}

// DemoMode reports whether the demo mode flag is set to "true".
func DemoMode(s Store) bool {
	v, ok, err := s.Get(DemoModeKey)
	return err == nil && ok && v == "true"
}

// SetDemoMode stores the demo mode flag as "true" or "false".
func SetDemoMode(s Store, on bool) error {
	v := "false"
	if on {
		v = "true"
	}
	return s.Set(DemoModeKey, v)
}
