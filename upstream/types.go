// Package upstream holds the wire types and route paths of the Astrovia
// REST API this app relays to. The API is an external collaborator; only
// its boundary is modelled here.
package upstream

// AccessToken is the token triple minted by generate-token and
// refresh-token. The refresh token is single-use: every refresh rotates it.
type AccessToken struct {
	AccessToken  string `json:"AccessToken"`
	RefreshToken string `json:"RefreshToken"`
	ExpiresIn    int64  `json:"ExpiresIn"` // seconds
}

// User carries the identity fields returned alongside a token grant.
type User struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// LoginData is the payload of a successful generate-token or
// refresh-token call.
type LoginData struct {
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
	AccessToken AccessToken `json:"access_token"`
	User        User        `json:"user"`
}

// AccountState is returned by the account check used to route the login
// wizard.
type AccountState struct {
	HasPassword bool `json:"has_password"`
	IsVerified  bool `json:"is_verified"`
}

// OTPData carries the server-side OTP bookkeeping: how many attempts
// remain and when the current code expires.
type OTPData struct {
	AttemptLeft  *int   `json:"attempt_left,omitempty"`
	OTPExpiredAt string `json:"otp_expired_at,omitempty"`
}
