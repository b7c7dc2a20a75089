package services

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/polymathuniversata/toDoApp/internal/models"
)

var (
	// ErrInvalidCredentials covers both "no such user" and "wrong
	// password" so responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrGoogleAccount means the account has no local password and must
	// sign in through Google.
	ErrGoogleAccount = errors.New("please sign in with Google")
)

type AuthService interface {
	LoginUser(db *gorm.DB, email, password string) (*models.User, error)
}

type AuthServiceImpl struct{}

func NewAuthService() *AuthServiceImpl {
	return &AuthServiceImpl{}
}

func (s *AuthServiceImpl) LoginUser(db *gorm.DB, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.IsGoogleOnly() {
		return nil, ErrGoogleAccount
	}

	// Constant-time comparison against the stored hash. Never compare
	// raw strings.
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}
