package models

import "time"

// Session is the server-side record of an authenticated browser: the bearer
// token the backend issued and the user it belongs to. It is replaced
// wholesale on login and deleted wholesale on logout, never patched.
type Session struct {
	ID         string     `json:"id"`
	Token      string     `json:"token"`
	User       UserRecord `json:"user"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastSeenAt time.Time  `json:"lastSeenAt"`
	ExpiresAt  time.Time  `json:"expiresAt"`
}

func (s *Session) IsAuthenticated() bool {
	return s != nil && s.Token != "" && s.User.Role.Valid()
}

func (s *Session) HasRole(role Role) bool {
	return s.IsAuthenticated() && s.User.Role == role
}
