package models

import (
	"time"

	"github.com/gofrs/uuid"
)

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

type User struct {
	ID       uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Name     string    `json:"name" gorm:"not null"`
	Email    string    `json:"email" gorm:"unique;not null"`
	Password string    `json:"-"`

	GoogleID           *string `json:"-" gorm:"uniqueIndex"`
	GoogleAccessToken  string  `json:"-"`
	GoogleRefreshToken string  `json:"-"`

	AuthProvider string `json:"auth_provider" gorm:"not null;default:'local'"`

	CalendarSyncEnabled bool       `json:"calendar_sync_enabled" gorm:"default:false"`
	LastSynced          *time.Time `json:"last_synced"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasGoogleLink reports whether the account has Google credentials on file.
func (u *User) HasGoogleLink() bool {
	return u.GoogleAccessToken != ""
}

// IsGoogleOnly reports whether the account has no local password and can
// only sign in through Google.
func (u *User) IsGoogleOnly() bool {
	return u.Password == "" && u.GoogleID != nil
}

// PublicUser is the projection returned by the auth endpoints. Password
// hashes and Google tokens never leave the server.
type PublicUser struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	AuthProvider string `json:"authProvider"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:           u.ID.String(),
		Name:         u.Name,
		Email:        u.Email,
		AuthProvider: u.AuthProvider,
	}
}
