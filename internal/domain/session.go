package domain

import "time"

// Cookie is one persisted browser cookie. Only the triple the portal cares
// about is kept; path and expiry are re-established on restore.
type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
}

// StoredSession is the persisted login state for one student. Exactly one
// record exists per student; every successful login overwrites it
// (last-write-wins) and records are never pruned automatically. Stale
// cookies are detected lazily on next use.
type StoredSession struct {
	StudentID   string
	AccessToken string
	Cookies     []Cookie
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TokenPair is what a successful login returns: the short-lived access token
// used on every API call and the long-lived refresh token used to mint a new
// access token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in"`
}
