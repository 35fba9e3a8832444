package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/farellandr/eventick/internal/helpers"
	"github.com/farellandr/eventick/internal/logger"
	"github.com/farellandr/eventick/internal/middleware"
	"github.com/farellandr/eventick/internal/models"
	"github.com/farellandr/eventick/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type EventRequest struct {
	Name         string    `json:"name" binding:"required,max=120"`
	Start        time.Time `json:"start" binding:"required"`
	End          time.Time `json:"end" binding:"required"`
	Description  string    `json:"description" binding:"required"`
	Remark       string    `json:"remark" binding:"max=255"`
	Address      string    `json:"address"`
	Slug         string    `json:"slug" binding:"max=500"`
	Status       string    `json:"status" binding:"omitempty,oneof=draft published"`
	GoogleMapURL string    `json:"google_map_url" binding:"omitempty,url,max=500"`
	PinCode      string    `json:"pin_code" binding:"omitempty,pincode"`
}

func (req *EventRequest) apply(event *models.Event) {
	event.Name = req.Name
	event.Start = req.Start
	event.End = req.End
	event.Description = req.Description
	event.Remark = req.Remark
	event.Address = req.Address
	event.Slug = req.Slug
	event.Status = req.Status
	event.GoogleMapURL = req.GoogleMapURL
	event.PinCode = req.PinCode
}

var (
	ListEvents = listHandler(func(s *services.Services) lister[models.Event] { return s.Events }, "events")

	DeleteEvent = deleteHandler(func(s *services.Services) deleter { return s.Events }, "Event")
)

func CreateEvent(c *gin.Context) {
	var req EventRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	event := &models.Event{}
	req.apply(event)
	if err := event.Validate(); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := svc.Events.Create(c.Request.Context(), event); err != nil {
		respondWithServiceError(c, err, "Failed to create event.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Event created successfully.",
		"event":   event,
	})
}

func GetEvent(c *gin.Context) {
	svc, ok := getServices(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	event, err := svc.Events.GetWithTickets(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		respondWithServiceError(c, err, "Error retrieving event.")
		return
	}

	c.JSON(http.StatusOK, event)
}

func UpdateEvent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req EventRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	event, err := svc.Events.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		respondWithServiceError(c, err, "Error finding event.")
		return
	}

	// PIN and slug are shared with attendees; leaving them out keeps them.
	pinCode, slug := event.PinCode, event.Slug
	req.apply(event)
	if event.PinCode == "" {
		event.PinCode = pinCode
	}
	if event.Slug == "" {
		event.Slug = slug
	}
	if err := event.Validate(); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := svc.Events.Update(c.Request.Context(), event); err != nil {
		respondWithServiceError(c, err, "Failed to update event.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event updated successfully.",
		"event":   event,
	})
}

func GetPublishedEventByPin(c *gin.Context) {
	findPublishedEvent(c, "pin_code", c.Param("pin"))
}

func GetPublishedEventBySlug(c *gin.Context) {
	findPublishedEvent(c, "slug", c.Param("slug"))
}

// findPublishedEvent serves public lookups from the event cache when redis is
// configured. Cache failures only cost a database read.
func findPublishedEvent(c *gin.Context, field, value string) {
	svc, ok := getServices(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	log := logger.Get()

	events := middleware.GetEventCache(c)
	if events != nil {
		cached, err := events.Get(ctx, field, value)
		if err != nil {
			log.Warn("event cache read failed", zap.String("field", field), zap.Error(err))
		} else if cached != nil {
			c.Header("X-Cache", "HIT")
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	event, err := svc.Events.FindPublished(ctx, field, value)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		respondWithServiceError(c, err, "Error retrieving event.")
		return
	}

	if events != nil {
		if err := events.Set(ctx, event); err != nil {
			log.Warn("event cache write failed", zap.String("event_id", event.ID.String()), zap.Error(err))
		}
	}

	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, event)
}
