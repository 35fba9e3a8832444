package handlers

import (
	"net/http"

	"github.com/farellandr/eventick/internal/helpers"
	"github.com/farellandr/eventick/internal/middleware"
	"github.com/gin-gonic/gin"
)

func GetProfile(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not found in token.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":             user,
		"is_staff":         user.IsStaff(),
		"is_payment_staff": user.IsPaymentStaff(),
	})
}
