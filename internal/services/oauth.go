package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
	"gorm.io/gorm"

	"github.com/polymathuniversata/toDoApp/internal/cache"
	"github.com/polymathuniversata/toDoApp/internal/config"
	"github.com/polymathuniversata/toDoApp/internal/models"
)

// ErrStateMismatch means the state parameter on the callback was missing,
// already used, or never issued by this server.
var ErrStateMismatch = errors.New("oauth state mismatch")

const stateTTL = 10 * time.Minute

// GoogleProfile is the slice of the userinfo response the broker needs.
type GoogleProfile struct {
	ID    string
	Email string
	Name  string
}

// OAuthBroker drives the three-legged consent flow against Google and
// maps the returned profile onto a local user record.
type OAuthBroker struct {
	config *oauth2.Config
	states *cache.RedisCache
}

func NewOAuthBroker(cfg config.GoogleConfig, states *cache.RedisCache) *OAuthBroker {
	return &OAuthBroker{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Endpoint:     google.Endpoint,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.profile",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/calendar",
			},
		},
		states: states,
	}
}

// Config exposes the oauth2 config so the calendar adapter can reuse the
// same client credentials for token refresh.
func (b *OAuthBroker) Config() *oauth2.Config {
	return b.config
}

// BeginConsent issues a one-time state nonce and returns the Google
// consent URL. Offline access plus forced re-consent guarantees a refresh
// token even when the user has approved the app before.
func (b *OAuthBroker) BeginConsent() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(buf)

	if err := b.states.Set("oauth_state:"+state, true, stateTTL); err != nil {
		return "", fmt.Errorf("failed to store state: %w", err)
	}

	return b.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// ConsumeState validates and burns a state nonce. A nonce is valid exactly
// once.
func (b *OAuthBroker) ConsumeState(state string) error {
	if state == "" {
		return ErrStateMismatch
	}
	var ok bool
	if err := b.states.Take("oauth_state:"+state, &ok); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return ErrStateMismatch
		}
		return err
	}
	return nil
}

// Exchange redeems the authorization code for an access/refresh token pair.
func (b *OAuthBroker) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := b.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return token, nil
}

// FetchProfile retrieves the Google profile for an exchanged token.
func (b *OAuthBroker) FetchProfile(ctx context.Context, token *oauth2.Token) (*GoogleProfile, error) {
	svc, err := googleoauth.NewService(ctx, option.WithHTTPClient(b.config.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	return &GoogleProfile{
		ID:    info.Id,
		Email: info.Email,
		Name:  info.Name,
	}, nil
}

// UpsertGoogleUser stores the exchanged tokens on the user with this
// Google id, creating the user on first sign-in. Google omits the refresh
// token on repeat consent, so an empty refresh token never overwrites a
// stored one.
func (b *OAuthBroker) UpsertGoogleUser(db *gorm.DB, profile *GoogleProfile, token *oauth2.Token) (*models.User, error) {
	var user models.User
	err := db.Where("google_id = ?", profile.ID).First(&user).Error
	if err == nil {
		user.GoogleAccessToken = token.AccessToken
		if token.RefreshToken != "" {
			user.GoogleRefreshToken = token.RefreshToken
		}
		if err := db.Save(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	googleID := profile.ID
	user = models.User{
		ID:                 uuid.Must(uuid.NewV4()),
		Name:               profile.Name,
		Email:              profile.Email,
		GoogleID:           &googleID,
		GoogleAccessToken:  token.AccessToken,
		GoogleRefreshToken: token.RefreshToken,
		AuthProvider:       models.ProviderGoogle,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
