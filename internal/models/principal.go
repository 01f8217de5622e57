package models

import "time"

// Principal is the authenticated identity held for one browser session. It is
// written to the session store atomically at login and destroyed on logout or
// on an auth-expiry signal from the platform API.
type Principal struct {
	Username     string    `json:"username"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	RoleLabel    string    `json:"roleLabel"`
	Role         Role      `json:"role"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	IssuedAt     time.Time `json:"issuedAt"`
}

// Authenticated reports whether the principal carries a bearer token.
func (p *Principal) Authenticated() bool {
	return p != nil && p.AccessToken != ""
}
