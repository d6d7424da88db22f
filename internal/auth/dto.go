package auth

// Credentials is the signup/signin request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthenticationToken is the token pair returned on signup, signin and
// refresh, and presented back on refresh and signout.
type AuthenticationToken struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserStatus is the signout response.
type UserStatus struct {
	Username  string `json:"username"`
	LoggedOut bool   `json:"loggedOut"`
}
