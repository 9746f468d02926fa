// Package user provides the User domain entity.
package user

import (
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

var (
	ErrMissingFields = errors.New("all fields are required")
	ErrInvalidEmail  = errors.New("invalid email address")
)

// AvatarBaseURL is the placeholder avatar service used for new accounts.
const AvatarBaseURL = "https://i.pravatar.cc/150?u="

// User represents a registered account.
type User struct {
	ID           string    // UUID
	Username     string    // Display name
	Email        string    // Login email (unique, lower-cased)
	PasswordHash string    // bcrypt hash
	AvatarURL    string    // Avatar image URL
	CoverURL     string    // Profile cover image URL (optional)
	Bio          string    // Profile bio (optional)
	Followers    int       // Follower count
	Following    int       // Following count
	TotalPlays   int       // Total plays of the user's uploads
	CreatedAt    time.Time // Registration time
}

// ProfilePatch holds the editable profile fields. Nil fields are left as-is.
type ProfilePatch struct {
	Username  *string
	Bio       *string
	AvatarURL *string
	CoverURL  *string
}

// NewUser creates a new user with a generated placeholder avatar.
func NewUser(id, username, email string) *User {
	return &User{
		ID:        id,
		Username:  username,
		Email:     NormalizeEmail(email),
		AvatarURL: AvatarBaseURL + url.QueryEscape(username),
		CreatedAt: time.Now(),
	}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateRegistration checks the registration fields.
func ValidateRegistration(email, password, username string) error {
	if strings.TrimSpace(email) == "" || password == "" || strings.TrimSpace(username) == "" {
		return ErrMissingFields
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// Apply applies a profile patch. Empty usernames are ignored.
func (u *User) Apply(p ProfilePatch) {
	if p.Username != nil && strings.TrimSpace(*p.Username) != "" {
		u.Username = strings.TrimSpace(*p.Username)
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	if p.CoverURL != nil {
		u.CoverURL = *p.CoverURL
	}
}
