package models

import "time"

// MaxProfilesPerUser caps how many viewing profiles one account may own.
const MaxProfilesPerUser = 5

// User models an account that owns up to MaxProfilesPerUser viewing
// profiles.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	ProfileIDs   []string  `json:"profileIds"`
	IsAdmin      bool      `json:"isAdmin,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Public returns a copy safe to serialise in API responses.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// RegisterRequest captures the fields accepted when registering a user.
type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	ProfileName string `json:"profileName,omitempty"`
}

// UserUpdate captures the mutable account fields.
type UserUpdate struct {
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}
