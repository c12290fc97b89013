package domain

import "time"

// TokenPair is what login and refresh hand back: a short-lived access
// credential and the long-lived refresh credential that rotates it.
type TokenPair struct {
	SubjectID        string
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}
