package domain

import "time"

// Account mirrors the persisted representation in the accounts.users table.
// Username and Email are stored lowercase and are globally unique.
type Account struct {
	ID            string
	Username      string
	Email         string
	FirstName     string
	LastName      string
	Phone         string
	PasswordHash  string
	EmailVerified bool
	CreatedAt     time.Time
	Profile       *Profile
}

// Profile holds the optional non-identity details linked 1:1 to an account.
// It is created lazily on the first profile update.
type Profile struct {
	ID         string
	AccountID  string
	Headline   string
	Bio        string
	City       string
	Country    string
	PictureRef string
}

// AccountDraft carries the caller-supplied fields for a new account.
// Password is plaintext here and must never cross a persistence boundary.
type AccountDraft struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Password  string
}

// Sanitized returns a copy of the account with the password hash cleared.
func (a Account) Sanitized() Account {
	copied := a
	copied.PasswordHash = ""
	return copied
}
