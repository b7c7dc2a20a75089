package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/polymathuniversata/toDoApp/internal/calendar"
	"github.com/polymathuniversata/toDoApp/internal/middleware"
	"github.com/polymathuniversata/toDoApp/internal/models"
	"github.com/polymathuniversata/toDoApp/internal/services"
)

type CalendarHandler struct {
	db     *gorm.DB
	broker *services.OAuthBroker
}

func NewCalendarHandler(db *gorm.DB, broker *services.OAuthBroker) *CalendarHandler {
	return &CalendarHandler{db: db, broker: broker}
}

// client builds a calendar client for the request's user, or writes the
// not-linked error and returns false.
func (h *CalendarHandler) client(c *gin.Context) (*calendar.Client, *models.User, bool) {
	user := middleware.CurrentUser(c)
	if user == nil || !user.HasGoogleLink() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "google_not_linked",
			"message": "User not authenticated with Google",
		})
		return nil, nil, false
	}

	client, err := calendar.NewClient(c.Request.Context(), h.broker.Config(), user)
	if err != nil {
		internalError(c, err)
		return nil, nil, false
	}
	return client, user, true
}

func (h *CalendarHandler) GetEvents(c *gin.Context) {
	var start, end *time.Time
	if v := c.Query("startDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			badQueryParam(c, "startDate")
			return
		}
		start = &t
	}
	if v := c.Query("endDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			badQueryParam(c, "endDate")
			return
		}
		end = &t
	}

	var maxResults int64
	if v := c.Query("maxResults"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			badQueryParam(c, "maxResults")
			return
		}
		maxResults = n
	}

	client, _, ok := h.client(c)
	if !ok {
		return
	}

	events, err := client.ListEvents(c.Request.Context(), start, end, maxResults)
	if err != nil {
		handleCalendarError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *CalendarHandler) CreateEvent(c *gin.Context) {
	client, _, ok := h.client(c)
	if !ok {
		return
	}

	var input calendar.EventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request format",
		})
		return
	}

	event, err := client.CreateEvent(c.Request.Context(), input)
	if err != nil {
		handleCalendarError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *CalendarHandler) UpdateEvent(c *gin.Context) {
	client, _, ok := h.client(c)
	if !ok {
		return
	}

	var input calendar.EventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request format",
		})
		return
	}

	event, err := client.UpdateEvent(c.Request.Context(), c.Param("eventId"), input)
	if err != nil {
		handleCalendarError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *CalendarHandler) DeleteEvent(c *gin.Context) {
	client, _, ok := h.client(c)
	if !ok {
		return
	}

	if err := client.DeleteEvent(c.Request.Context(), c.Param("eventId")); err != nil {
		handleCalendarError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}

func (h *CalendarHandler) SyncStatus(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "not_found",
			"message": "User not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"isConnected":         user.HasGoogleLink(),
		"calendarSyncEnabled": user.CalendarSyncEnabled,
		"lastSynced":          user.LastSynced,
	})
}

// ToggleSync flips the sync flag. The flag is advisory: no background
// process acts on it.
func (h *CalendarHandler) ToggleSync(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || !user.HasGoogleLink() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "google_not_linked",
			"message": "User not authenticated with Google",
		})
		return
	}

	user.CalendarSyncEnabled = !user.CalendarSyncEnabled
	if user.CalendarSyncEnabled {
		now := time.Now()
		user.LastSynced = &now
	}

	if err := h.db.Save(user).Error; err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"calendarSyncEnabled": user.CalendarSyncEnabled,
		"lastSynced":          user.LastSynced,
	})
}

func badQueryParam(c *gin.Context, name string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "invalid_request",
		"message": "Invalid value for " + name,
	})
}

func handleCalendarError(c *gin.Context, err error) {
	if calendar.IsProviderError(err) {
		body := gin.H{
			"error":   "calendar_provider_error",
			"message": "Calendar provider request failed",
		}
		if exposeErrorDetail {
			body["details"] = err.Error()
		}
		c.JSON(http.StatusBadGateway, body)
		return
	}
	internalError(c, err)
}
