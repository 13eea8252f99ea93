package models

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // don’t expose hash
}

// AuthResult is what register and login hand back to the caller.
type AuthResult struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

// Public strips the credential and attaches a freshly issued token.
func (u User) Public(token string) AuthResult {
	return AuthResult{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Token:    token,
	}
}
