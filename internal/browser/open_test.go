package browser

import "testing"

func TestOpenRejectsNonHTTP(t *testing.T) {
	for _, raw := range []string{"file:///etc/passwd", "javascript:alert(1)", "ftp://host/x", "::"} {
		if err := Open(raw); err == nil {
			t.Errorf("Open(%q) = nil, want error", raw)
		}
	}
}
