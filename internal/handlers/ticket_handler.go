package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/farellandr/eventick/internal/helpers"
	"github.com/farellandr/eventick/internal/models"
	"github.com/farellandr/eventick/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventTicketRequest takes sales dates as 2006-01-02 or RFC3339; an empty
// value clears the date.
type EventTicketRequest struct {
	EventID        uuid.UUID `json:"event_id" binding:"required"`
	IsFree         bool      `json:"is_free"`
	RemainingCount *int      `json:"remaining_count" binding:"required"`
	Price          float64   `json:"price" binding:"min=0"`
	SalesStartDate string    `json:"sales_start_date"`
	SalesEndDate   string    `json:"sales_end_date"`
	Description    string    `json:"description"`
}

func (req *EventTicketRequest) apply(ticket *models.EventTicket) error {
	start, err := optionalDate(req.SalesStartDate)
	if err != nil {
		return err
	}
	end, err := optionalDate(req.SalesEndDate)
	if err != nil {
		return err
	}

	ticket.EventID = req.EventID
	ticket.IsFree = req.IsFree
	ticket.RemainingCount = *req.RemainingCount
	ticket.Price = req.Price
	ticket.SalesStartDate = start
	ticket.SalesEndDate = end
	ticket.Description = req.Description
	return nil
}

func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := helpers.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

var (
	ListEventTickets = listHandler(func(s *services.Services) lister[models.EventTicket] { return s.Tickets }, "event tickets")

	GetEventTicket = getHandler(func(s *services.Services) getter[models.EventTicket] { return s.Tickets }, "Event ticket")

	DeleteEventTicket = deleteHandler(func(s *services.Services) deleter { return s.Tickets }, "Event ticket")
)

func CreateEventTicket(c *gin.Context) {
	var req EventTicketRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	ticket := &models.EventTicket{}
	if err := req.apply(ticket); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid sales date format.")
		return
	}

	if err := svc.Tickets.Create(c.Request.Context(), ticket); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusBadRequest, "Event not found.")
			return
		}
		respondWithServiceError(c, err, "Failed to create ticket.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Ticket created successfully.",
		"ticket":  ticket,
	})
}

func UpdateEventTicket(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req EventTicketRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	ticket, err := svc.Tickets.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
			return
		}
		respondWithServiceError(c, err, "Error finding ticket.")
		return
	}

	if err := req.apply(ticket); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid sales date format.")
		return
	}

	if err := svc.Tickets.Update(c.Request.Context(), ticket); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusBadRequest, "Event not found.")
			return
		}
		respondWithServiceError(c, err, "Failed to update ticket.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ticket updated successfully.",
		"ticket":  ticket,
	})
}
