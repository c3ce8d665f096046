package auth

import "time"

// User is an authenticated account. Identity comes from the OIDC provider;
// the subject claim is the stable key, email and username are local state.
type User struct {
	ID        string    `json:"id"`
	Subject   string    `json:"-"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
