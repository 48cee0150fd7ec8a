package domain

import "time"

// User is an account that owns links. Password holds the bcrypt hash,
// never the plaintext; it is excluded from JSON output.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// CanModify is the authorization decision for link mutations: the owner
// or any admin may act, everyone else is denied.
func (u *User) CanModify(ownerID int64) bool {
	return u.IsAdmin || u.ID == ownerID
}
