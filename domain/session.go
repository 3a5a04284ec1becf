package domain

import "time"

// Session is the snapshot of the logged-in user taken at login time.
type Session struct {
	ID        string    `json:"id"`
	UserID    int       `json:"user_id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Valid reports whether the record carries enough data to resolve a user.
func (s *Session) Valid() bool {
	return s != nil && s.UserID > 0
}
