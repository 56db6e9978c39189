package tui

import (
	"testing"
	"time"
)

func TestFormatVND(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0 ₫"},
		{999, "999 ₫"},
		{1000, "1.000 ₫"},
		{450000000, "450.000.000 ₫"},
		{-25000, "-25.000 ₫"},
	}
	for _, tt := range tests {
		if got := FormatVND(tt.in); got != tt.want {
			t.Errorf("FormatVND(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncStr(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"Xe điện VinFast", 8, "Xe điện…"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := truncStr(tt.in, tt.max); got != tt.want {
			t.Errorf("truncStr(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Time{}, ""},
		{time.Now().Add(-10 * time.Second), "just now"},
		{time.Now().Add(-5 * time.Minute), "5m ago"},
		{time.Now().Add(-3 * time.Hour), "3h ago"},
		{time.Now().Add(-50 * time.Hour), "2d ago"},
	}
	for _, tt := range tests {
		if got := formatTime(tt.at); got != tt.want {
			t.Errorf("formatTime(%v) = %q, want %q", tt.at, got, tt.want)
		}
	}
}

func TestEditRune(t *testing.T) {
	s := ""
	for _, k := range []string{"đ", "i", "ệ", "n", "backspace", "enter"} {
		s = editRune(s, k)
	}
	if s != "điệ" {
		t.Errorf("editRune sequence = %q, want điệ", s)
	}
}

func TestTruncateToHeight(t *testing.T) {
	if got := truncateToHeight("a\nb\nc\n", 2); got != "a\nb\n" {
		t.Errorf("truncateToHeight = %q", got)
	}
	if got := truncateToHeight("a\nb", 0); got != "a\nb" {
		t.Errorf("truncateToHeight with 0 = %q", got)
	}
}
