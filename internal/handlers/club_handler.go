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

type ClubRequest struct {
	Code string `json:"code" binding:"required,max=100"`
	Name string `json:"name" binding:"required,max=255"`
}

var (
	ListClubs = listHandler(func(s *services.Services) lister[models.Club] { return s.Clubs }, "clubs")

	GetClub = getHandler(func(s *services.Services) getter[models.Club] { return s.Clubs }, "Club")

	DeleteClub = deleteHandler(func(s *services.Services) deleter { return s.Clubs }, "Club")
)

func CreateClub(c *gin.Context) {
	var req ClubRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	club := &models.Club{Code: req.Code, Name: req.Name}
	if err := svc.Clubs.Create(c.Request.Context(), club); err != nil {
		respondWithServiceError(c, err, "Failed to create club.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Club created successfully.",
		"club":    club,
	})
}

func UpdateClub(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req ClubRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	club, err := svc.Clubs.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Club not found.")
			return
		}
		respondWithServiceError(c, err, "Error finding club.")
		return
	}

	club.Code = req.Code
	club.Name = req.Name
	if err := svc.Clubs.Update(c.Request.Context(), club); err != nil {
		respondWithServiceError(c, err, "Failed to update club.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Club updated successfully.",
		"club":    club,
	})
}
