package handlers

import (
	"errors"
	"net/http"

	"github.com/farellandr/eventick/internal/helpers"
	"github.com/farellandr/eventick/internal/models"
	"github.com/farellandr/eventick/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RegistrantRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=255"`
	Phone     string `json:"phone" binding:"required,max=255"`
	Email     string `json:"email" binding:"required,email,max=255"`
}

func (req *RegistrantRequest) apply(registrant *models.Registrant) {
	registrant.FirstName = req.FirstName
	registrant.LastName = req.LastName
	registrant.Phone = req.Phone
	registrant.Email = req.Email
}

var (
	ListRegistrants = listHandler(func(s *services.Services) lister[models.Registrant] { return s.Registrants }, "registrants")

	GetRegistrant = getHandler(func(s *services.Services) getter[models.Registrant] { return s.Registrants }, "Registrant")

	DeleteRegistrant = deleteHandler(func(s *services.Services) deleter { return s.Registrants }, "Registrant")
)

func CreateRegistrant(c *gin.Context) {
	var req RegistrantRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	registrant := &models.Registrant{}
	req.apply(registrant)
	if err := svc.Registrants.Create(c.Request.Context(), registrant); err != nil {
		respondWithServiceError(c, err, "Failed to create registrant.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Registrant created successfully.",
		"registrant": registrant,
	})
}

func UpdateRegistrant(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req RegistrantRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	registrant, err := svc.Registrants.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Registrant not found.")
			return
		}
		respondWithServiceError(c, err, "Error finding registrant.")
		return
	}

	req.apply(registrant)
	if err := svc.Registrants.Update(c.Request.Context(), registrant); err != nil {
		respondWithServiceError(c, err, "Failed to update registrant.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Registrant updated successfully.",
		"registrant": registrant,
	})
}
