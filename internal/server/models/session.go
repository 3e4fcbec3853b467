package models

import "time"

// UserSession is an authenticated session. It borrows the user it points to
// and is never persisted.
type UserSession struct {
	ID           string
	User         *User
	AccessToken  string
	RefreshToken string
	// ExpiresAt is zero for sessions without expiry.
	ExpiresAt time.Time
}

// ExpiresIn returns the remaining lifetime, or 0 for sessions without expiry.
func (s *UserSession) ExpiresIn(now time.Time) time.Duration {
	if s.ExpiresAt.IsZero() {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}
