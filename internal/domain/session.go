package domain

import "time"

// An authenticated caller, as vouched for by the identity provider's token.
type Session struct {
	Subject   string
	TokenID   string
	ExpiresAt time.Time
}
