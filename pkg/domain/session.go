package domain

// Session is either Anonymous or Authenticated.
type Session interface {
	isSession()
}

// Anonymous is the session of a client with no stored credentials.
type Anonymous struct{}

// Authenticated is the session of a signed-in user.
type Authenticated struct {
	Token   string
	User    *User
	Profile *Profile
}

func (Anonymous) isSession()     {}
func (Authenticated) isSession() {}

// AuthRecord is the JSON blob persisted under the evtb_auth storage key.
type AuthRecord struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken,omitempty"`
	User         *User    `json:"user"`
	Profile      *Profile `json:"profile"`
}

// Session converts a stored record into a Session value.
func (r *AuthRecord) Session() Session {
	if r == nil || r.Token == "" {
		return Anonymous{}
	}
	return Authenticated{Token: r.Token, User: r.User, Profile: r.Profile}
}
