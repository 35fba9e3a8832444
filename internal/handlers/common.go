package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/farellandr/eventick/internal/helpers"
	"github.com/farellandr/eventick/internal/middleware"
	"github.com/farellandr/eventick/internal/models"
	"github.com/farellandr/eventick/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var badRequestErrors = []error{
	models.ErrEventDates,
	models.ErrInvalidStatus,
	models.ErrInvalidPinCode,
	models.ErrInvalidDeliveryStatus,
	models.ErrInvalidQuantity,
	models.ErrInvalidPrice,
	models.ErrSalesDates,
	models.ErrTooManyAttendees,
	models.ErrEmptyOrder,
	models.ErrInvalidQRCode,
	services.ErrInvalidFilter,
}

// StatusFor maps an error returned by the services package to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case models.IsUniqueViolation(err),
		errors.Is(err, models.ErrInsufficientInventory),
		errors.Is(err, models.ErrTicketAlreadyUsed):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrTicketNotOnSale):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrPinCodeExhausted):
		return http.StatusServiceUnavailable
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// respondWithServiceError reports err to the client. Internal errors are
// recorded on the context for the request logger and replaced by fallback.
func respondWithServiceError(c *gin.Context, err error, fallback string) {
	status := StatusFor(err)
	message := err.Error()
	switch status {
	case http.StatusInternalServerError:
		_ = c.Error(err)
		message = fallback
	case http.StatusConflict:
		if models.IsUniqueViolation(err) {
			message = "A record with the same unique value already exists."
		}
	}
	helpers.RespondWithError(c, status, message)
}

func getServices(c *gin.Context) (*services.Services, bool) {
	svc := middleware.GetServices(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Services not configured.")
		return nil, false
	}
	return svc, true
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		_ = c.Error(err)
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return false
	}
	return true
}

func paramID(c *gin.Context) (uuid.UUID, bool) {
	id, err := helpers.ParseUUID(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ID.")
		return uuid.Nil, false
	}
	return id, true
}

// listParams reads q, page and limit; every other query value is passed on as
// a filter and ignored by resources that do not declare it.
func listParams(c *gin.Context) (services.ListParams, bool) {
	page, limit, err := helpers.ParsePagination(c.Query("page"), c.Query("limit"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid pagination: %v.", err))
		return services.ListParams{}, false
	}

	params := services.ListParams{
		Search:  c.Query("q"),
		Filters: map[string]string{},
		Page:    page,
		Limit:   limit,
	}
	for name, values := range c.Request.URL.Query() {
		switch name {
		case "q", "page", "limit":
			continue
		}
		if len(values) > 0 {
			params.Filters[name] = values[0]
		}
	}
	return params, true
}

type lister[T any] interface {
	List(ctx context.Context, p services.ListParams) ([]T, int64, error)
}

type getter[T any] interface {
	Get(ctx context.Context, id uuid.UUID) (*T, error)
}

type deleter interface {
	Delete(ctx context.Context, id uuid.UUID) error
}

func listHandler[T any](pick func(*services.Services) lister[T], noun string) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc, ok := getServices(c)
		if !ok {
			return
		}
		params, ok := listParams(c)
		if !ok {
			return
		}

		items, total, err := pick(svc).List(c.Request.Context(), params)
		if err != nil {
			respondWithServiceError(c, err, fmt.Sprintf("Error retrieving %s.", noun))
			return
		}
		helpers.RespondWithPage(c, items, total, params.Page, params.Limit)
	}
}

func getHandler[T any](pick func(*services.Services) getter[T], noun string) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc, ok := getServices(c)
		if !ok {
			return
		}
		id, ok := paramID(c)
		if !ok {
			return
		}

		item, err := pick(svc).Get(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				helpers.RespondWithError(c, http.StatusNotFound, fmt.Sprintf("%s not found.", noun))
				return
			}
			respondWithServiceError(c, err, fmt.Sprintf("Error retrieving %s.", noun))
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func deleteHandler(pick func(*services.Services) deleter, noun string) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc, ok := getServices(c)
		if !ok {
			return
		}
		id, ok := paramID(c)
		if !ok {
			return
		}

		if err := pick(svc).Delete(c.Request.Context(), id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				helpers.RespondWithError(c, http.StatusNotFound, fmt.Sprintf("%s not found.", noun))
				return
			}
			respondWithServiceError(c, err, fmt.Sprintf("Failed to delete %s.", noun))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("%s deleted successfully.", noun)})
	}
}
