package domain

// SessionUser identifies the operator a session belongs to.
type SessionUser struct {
	ID       string `json:"_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Session is the persisted authentication state of the admin client.
type Session struct {
	User         *SessionUser
	AccessToken  string
	RefreshToken string
}

// Authenticated reports whether an access token is held.
func (s *Session) Authenticated() bool {
	return s != nil && s.AccessToken != ""
}
