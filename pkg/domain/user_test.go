package domain

import "testing"

func TestUserIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		user *User
		want bool
	}{
		{"nil user", nil, false},
		{"member", &User{Role: "member", RoleID: 2}, false},
		{"admin by name", &User{Role: "Admin"}, true},
		{"admin by id", &User{RoleID: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.IsAdmin(); got != tt.want {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserDisplayName(t *testing.T) {
	if got := (&User{Email: "a@b.c"}).DisplayName(); got != "a@b.c" {
		t.Errorf("DisplayName() = %q, want email fallback", got)
	}
	if got := (&User{Email: "a@b.c", FullName: "An Nguyen"}).DisplayName(); got != "An Nguyen" {
		t.Errorf("DisplayName() = %q, want %q", got, "An Nguyen")
	}
}

func TestAuthRecordSession(t *testing.T) {
	var nilRec *AuthRecord
	if _, ok := nilRec.Session().(Anonymous); !ok {
		t.Error("nil record should be Anonymous")
	}
	if _, ok := (&AuthRecord{User: &User{ID: 1}}).Session().(Anonymous); !ok {
		t.Error("record without token should be Anonymous")
	}

	s, ok := (&AuthRecord{Token: "tok", User: &User{ID: 7}}).Session().(Authenticated)
	if !ok {
		t.Fatal("record with token should be Authenticated")
	}
	if s.Token != "tok" || s.User.ID != 7 {
		t.Errorf("Authenticated = %+v, want token tok and user 7", s)
	}
}

func TestConversationHasParticipants(t *testing.T) {
	c := Conversation{Participants: []int64{3, 9}}
	if !c.HasParticipants(3, 9) {
		t.Error("expected both participants present")
	}
	if c.HasParticipants(3, 4) {
		t.Error("expected missing participant to fail")
	}
}
