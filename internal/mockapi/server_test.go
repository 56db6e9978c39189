package mockapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evtb/evtb/internal/notify"
	"github.com/evtb/evtb/pkg/domain"
)

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, New(notify.NewMemoryStore(), nil).Routes(), http.MethodGet, "/api/Health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	json.NewDecoder(rec.Body).Decode(&body) //nolint:errcheck
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestCreateAndList(t *testing.T) {
	store := notify.NewMemoryStore()
	h := New(store, nil).Routes()

	for _, title := range []string{"a", "b", "c"} {
		rec := do(t, h, http.MethodPost, "/api/Notification", `{"userId":4,"notificationType":"test","title":"`+title+`"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
		}
	}

	rec := do(t, h, http.MethodGet, "/api/Notification/user/4", "")
	var list []domain.Notification
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("plain list is not an array: %v", err)
	}
	if len(list) != 3 {
		t.Errorf("len = %d, want 3", len(list))
	}

	rec = do(t, h, http.MethodGet, "/api/Notification/user/4?page=1&pageSize=2", "")
	var page domain.NotificationPage
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatalf("paged list is not an object: %v", err)
	}
	if len(page.Notifications) != 2 || page.TotalCount != 3 || page.TotalPages != 2 {
		t.Errorf("page = %+v", page)
	}

	rec = do(t, h, http.MethodGet, "/api/Notification/user/4?page=2&pageSize=9223372036854775807", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("huge page size status = %d: %s", rec.Code, rec.Body)
	}
	page = domain.NotificationPage{}
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatal(err)
	}
	if len(page.Notifications) != 0 || page.TotalCount != 3 {
		t.Errorf("huge page size page = %+v", page)
	}
}

func TestCreateValidation(t *testing.T) {
	h := New(notify.NewMemoryStore(), nil).Routes()
	tests := []struct {
		name string
		body string
	}{
		{"missing user", `{"notificationType":"test","title":"x"}`},
		{"missing title", `{"userId":1,"notificationType":"test"}`},
		{"not json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/Notification", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestUpdateAndDelete(t *testing.T) {
	store := notify.NewMemoryStore()
	h := New(store, nil).Routes()
	do(t, h, http.MethodPost, "/api/Notification", `{"userId":1,"notificationType":"test","title":"x"}`)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"mark read", http.MethodPut, "/api/Notification/1", `{"isRead":true}`, http.StatusOK},
		{"mark unread rejected", http.MethodPut, "/api/Notification/1", `{"isRead":false}`, http.StatusBadRequest},
		{"missing field", http.MethodPut, "/api/Notification/1", `{}`, http.StatusBadRequest},
		{"unknown id", http.MethodPut, "/api/Notification/9", `{"isRead":true}`, http.StatusNotFound},
		{"bad id", http.MethodPut, "/api/Notification/abc", `{"isRead":true}`, http.StatusBadRequest},
		{"delete", http.MethodDelete, "/api/Notification/1", "", http.StatusNoContent},
		{"delete again", http.MethodDelete, "/api/Notification/1", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := do(t, h, tt.method, tt.path, tt.body)
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.want)
		}
	}
}
