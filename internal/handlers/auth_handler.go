package handlers

import (
	"errors"
	"net/http"

	"github.com/farellandr/eventick/internal/helpers"
	"github.com/farellandr/eventick/internal/models"
	"github.com/farellandr/eventick/internal/services"
	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	token, user, err := svc.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials.")
			return
		}
		respondWithServiceError(c, err, "Failed to generate token.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"email":    user.Email,
			"is_staff": user.IsStaff(),
		},
	})
}

// CreateAdminUser registers another admin user. Only reachable by staff.
func CreateAdminUser(c *gin.Context) {
	var req services.CreateUserInput
	if !bindJSON(c, &req) {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	user, err := svc.Auth.CreateUser(c.Request.Context(), req)
	if err != nil {
		if models.IsUniqueViolation(err) {
			helpers.RespondWithError(c, http.StatusConflict, "User already exists.")
			return
		}
		respondWithServiceError(c, err, "Failed to create user.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully.",
		"user":    user,
	})
}
