package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/polymathuniversata/toDoApp/internal/middleware"
	"github.com/polymathuniversata/toDoApp/internal/models"
	"github.com/polymathuniversata/toDoApp/internal/services"
)

type AuthHandler struct {
	db              *gorm.DB
	registerService services.RegisterService
	authService     services.AuthService
	tokens          services.TokenService
}

func NewAuthHandler(db *gorm.DB, registerService services.RegisterService, authService services.AuthService, tokens services.TokenService) *AuthHandler {
	return &AuthHandler{
		db:              db,
		registerService: registerService,
		authService:     authService,
		tokens:          tokens,
	}
}

type sessionResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request format",
		})
		return
	}

	user, err := h.registerService.RegisterUser(h.db, req)
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "validation_failed",
				"errors": verr.Errors,
			})
		case errors.Is(err, services.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "duplicate_account",
				"message": "User already exists",
			})
		default:
			internalError(c, err)
		}
		return
	}

	h.respondWithSession(c, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request format",
		})
		return
	}

	user, err := h.authService.LoginUser(h.db, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			// Same message for unknown email and wrong password.
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_credentials",
				"message": "Invalid credentials",
			})
		case errors.Is(err, services.ErrGoogleAccount):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "google_account",
				"message": "Please sign in with Google",
			})
		default:
			internalError(c, err)
		}
		return
	}

	h.respondWithSession(c, user)
}

func (h *AuthHandler) CurrentUser(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_token",
			"message": "Token is not valid",
		})
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

func (h *AuthHandler) respondWithSession(c *gin.Context, user *models.User) {
	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{Token: token, User: user.Public()})
}
