package middleware

import (
	"github.com/farellandr/eventick/internal/cache"
	"github.com/farellandr/eventick/internal/models"
	"github.com/farellandr/eventick/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("db", db)
		c.Next()
	}
}

func GetDB(c *gin.Context) *gorm.DB {
	db, exists := c.Get("db")
	if !exists {
		return nil
	}
	return db.(*gorm.DB)
}

func ServicesMiddleware(svc *services.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("services", svc)
		c.Next()
	}
}

func GetServices(c *gin.Context) *services.Services {
	svc, exists := c.Get("services")
	if !exists {
		return nil
	}
	return svc.(*services.Services)
}

// EventCacheMiddleware is only installed when redis is configured.
func EventCacheMiddleware(events *cache.EventCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("event_cache", events)
		c.Next()
	}
}

func GetEventCache(c *gin.Context) *cache.EventCache {
	events, exists := c.Get("event_cache")
	if !exists {
		return nil
	}
	return events.(*cache.EventCache)
}

// GetUser returns the admin set by JWTAuthMiddleware.
func GetUser(c *gin.Context) *models.AdminUser {
	user, exists := c.Get("user")
	if !exists {
		return nil
	}
	return user.(*models.AdminUser)
}
