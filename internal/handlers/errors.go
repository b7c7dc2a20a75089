package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// exposeErrorDetail controls whether 5xx responses carry the underlying
// error message. Left off in production.
var exposeErrorDetail = true

// SetProduction hides internal error detail from responses.
func SetProduction(production bool) {
	exposeErrorDetail = !production
}

func internalError(c *gin.Context, err error) {
	log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)

	body := gin.H{
		"error":   "internal_error",
		"message": "Something went wrong!",
	}
	if exposeErrorDetail {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}
