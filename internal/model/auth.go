package model

// TokenResponse is returned by login and register.
type TokenResponse struct {
	AccessToken string   `json:"accessToken"`
	ExpiresIn   int      `json:"expiresIn"`
	User        *Creator `json:"user"`
}
