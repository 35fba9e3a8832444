package handlers

import (
	"net/http"

	"github.com/farellandr/eventick/internal/helpers"
	"github.com/farellandr/eventick/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Index returns the static page context of the landing page.
func Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"breadcrumb": gin.H{
			"parent": "Color Version",
			"child":  "Layout Light",
		},
	})
}

func Healthz(c *gin.Context) {
	db := middleware.GetDB(c)
	if db == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		_ = c.Error(err)
		helpers.RespondWithError(c, http.StatusServiceUnavailable, "Database unavailable.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
