package domain

import "time"

// Principal is the authenticated identity carried by an admin token.
type Principal struct {
	Email     string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}
