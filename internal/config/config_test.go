package config

import (
	"strings"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{"EVTB_STATE_DIR": "/tmp/evtb"}))
	if err != nil {
		t.Fatalf("FromEnv() error: %v", err)
	}
	if cfg.APIBase != "http://localhost:5044" {
		t.Errorf("APIBase = %q", cfg.APIBase)
	}
	if !cfg.MockNotifications {
		t.Error("MockNotifications should default to true")
	}
	if cfg.DemoMode || cfg.Debug {
		t.Error("DemoMode and Debug should default to false")
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.TokenCheckEvery != time.Minute {
		t.Errorf("TokenCheckEvery = %v", cfg.TokenCheckEvery)
	}
	if cfg.StateDir != "/tmp/evtb" {
		t.Errorf("StateDir = %q", cfg.StateDir)
	}
}

func TestFromEnvAPIBasePrecedence(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"base wins", map[string]string{"VITE_API_BASE": "https://a.example/", "VITE_API_BASE_URL": "https://b.example"}, "https://a.example"},
		{"base url fallback", map[string]string{"VITE_API_BASE_URL": "https://b.example//"}, "https://b.example"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.env["EVTB_STATE_DIR"] = t.TempDir()
			cfg, err := FromEnv(envMap(tt.env))
			if err != nil {
				t.Fatal(err)
			}
			if cfg.APIBase != tt.want {
				t.Errorf("APIBase = %q, want %q", cfg.APIBase, tt.want)
			}
		})
	}
}

func TestFromEnvInvalid(t *testing.T) {
	tests := []struct {
		key, val string
	}{
		{"VITE_DEMO_MODE", "maybe"},
		{"EVTB_HTTP_TIMEOUT", "soon"},
		{"EVTB_TOKEN_CHECK_INTERVAL", "-1s"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			_, err := FromEnv(envMap(map[string]string{tt.key: tt.val, "EVTB_STATE_DIR": "/tmp/x"}))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error %q should name %s", err, tt.key)
			}
		})
	}
}
