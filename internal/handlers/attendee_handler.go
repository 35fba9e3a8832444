package handlers

import (
	"errors"
	"net/http"

	"github.com/farellandr/eventick/internal/helpers"
	"github.com/farellandr/eventick/internal/models"
	"github.com/farellandr/eventick/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TicketDetailRequest struct {
	OrderDetailID uuid.UUID `json:"order_detail_id" binding:"required"`
	Name          string    `json:"name" binding:"required,max=120"`
	Email         string    `json:"email" binding:"omitempty,email,max=254"`
	Used          bool      `json:"used"`
	ContactID     string    `json:"contact_id" binding:"max=200"`
	MobileNum     string    `json:"mobile_num" binding:"max=80"`
	QRCode        string    `json:"qrcode" binding:"max=500"`
}

func (req *TicketDetailRequest) apply(ticket *models.TicketDetail) {
	ticket.OrderDetailID = req.OrderDetailID
	ticket.Name = req.Name
	ticket.Email = req.Email
	ticket.Used = req.Used
	ticket.ContactID = req.ContactID
	ticket.MobileNum = req.MobileNum
	ticket.QRCode = req.QRCode
}

type RedeemRequest struct {
	QRData string `json:"qr_data" binding:"required"`
}

var (
	ListTicketDetails = listHandler(func(s *services.Services) lister[models.TicketDetail] { return s.Attendees }, "tickets")

	GetTicketDetail = getHandler(func(s *services.Services) getter[models.TicketDetail] { return s.Attendees }, "Ticket")

	DeleteTicketDetail = deleteHandler(func(s *services.Services) deleter { return s.Attendees }, "Ticket")
)

func CreateTicketDetail(c *gin.Context) {
	var req TicketDetailRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	ticket := &models.TicketDetail{}
	req.apply(ticket)
	if err := svc.Attendees.Create(c.Request.Context(), ticket); err != nil {
		respondWithServiceError(c, err, "Failed to create ticket.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Ticket created successfully.",
		"ticket":  ticket,
	})
}

func UpdateTicketDetail(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req TicketDetailRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	ticket, err := svc.Attendees.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
			return
		}
		respondWithServiceError(c, err, "Error finding ticket.")
		return
	}

	req.apply(ticket)
	if err := svc.Attendees.Update(c.Request.Context(), ticket); err != nil {
		respondWithServiceError(c, err, "Failed to update ticket.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ticket updated successfully.",
		"ticket":  ticket,
	})
}

// GetTicketQRCode serves the PNG linked from a ticket's qrcode URL.
func GetTicketQRCode(c *gin.Context) {
	svc, ok := getServices(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	png, err := svc.Attendees.QRCode(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
			return
		}
		respondWithServiceError(c, err, "Failed to generate QR code.")
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

func RedeemTicket(c *gin.Context) {
	var req RedeemRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	ticket, err := svc.Attendees.Redeem(c.Request.Context(), req.QRData)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
			return
		}
		respondWithServiceError(c, err, "Failed to redeem ticket.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ticket redeemed successfully.",
		"ticket": gin.H{
			"id":         ticket.ID,
			"name":       ticket.Name,
			"event_name": ticket.OrderDetail.EventName(),
		},
	})
}
