package handlers

import (
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/polymathuniversata/toDoApp/internal/services"
)

// GoogleAuthHandler drives the consent redirect and the provider
// callback. The callback hands the session token back to the frontend
// as a query parameter on the redirect URL.
type GoogleAuthHandler struct {
	db          *gorm.DB
	broker      *services.OAuthBroker
	tokens      services.TokenService
	frontendURL string
}

func NewGoogleAuthHandler(db *gorm.DB, broker *services.OAuthBroker, tokens services.TokenService, frontendURL string) *GoogleAuthHandler {
	return &GoogleAuthHandler{
		db:          db,
		broker:      broker,
		tokens:      tokens,
		frontendURL: frontendURL,
	}
}

func (h *GoogleAuthHandler) Consent(c *gin.Context) {
	consentURL, err := h.broker.BeginConsent()
	if err != nil {
		internalError(c, err)
		return
	}
	c.Redirect(http.StatusFound, consentURL)
}

func (h *GoogleAuthHandler) Callback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		log.Printf("google callback rejected by provider: %s", errParam)
		h.failLogin(c)
		return
	}

	if err := h.broker.ConsumeState(c.Query("state")); err != nil {
		log.Printf("google callback state check failed: %v", err)
		h.failLogin(c)
		return
	}

	code := c.Query("code")
	if code == "" {
		h.failLogin(c)
		return
	}

	ctx := c.Request.Context()

	oauthToken, err := h.broker.Exchange(ctx, code)
	if err != nil {
		log.Printf("google token exchange failed: %v", err)
		h.failLogin(c)
		return
	}

	profile, err := h.broker.FetchProfile(ctx, oauthToken)
	if err != nil {
		log.Printf("google profile fetch failed: %v", err)
		h.failLogin(c)
		return
	}

	user, err := h.broker.UpsertGoogleUser(h.db, profile, oauthToken)
	if err != nil {
		log.Printf("google user upsert failed: %v", err)
		h.failLogin(c)
		return
	}

	sessionToken, err := h.tokens.Issue(user.ID)
	if err != nil {
		log.Printf("session token issue failed: %v", err)
		h.failLogin(c)
		return
	}

	c.Redirect(http.StatusFound, h.frontendURL+"?token="+url.QueryEscape(sessionToken))
}

func (h *GoogleAuthHandler) failLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, h.frontendURL+"/login?error=oauth_failed")
}
