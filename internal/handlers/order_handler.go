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

type TicketOrderRequest struct {
	TotalPrice     float64 `json:"total_price" binding:"min=0"`
	SentTicketTo   string  `json:"sent_ticket_to" binding:"required,email,max=254"`
	ContactName    string  `json:"contact_name" binding:"max=120"`
	ContactClub    string  `json:"contact_club" binding:"max=255"`
	ContactID      string  `json:"contact_id" binding:"max=200"`
	ContactMobile  string  `json:"contact_mobile" binding:"max=80"`
	OrderNum       string  `json:"order_num" binding:"max=20"`
	DeliveryStatus string  `json:"delivery_status" binding:"omitempty,oneof=pending delivered"`
}

func (req *TicketOrderRequest) apply(order *models.TicketOrder) {
	order.TotalPrice = req.TotalPrice
	order.SentTicketTo = req.SentTicketTo
	order.ContactName = req.ContactName
	order.ContactClub = req.ContactClub
	order.ContactID = req.ContactID
	order.ContactMobile = req.ContactMobile
	order.OrderNum = req.OrderNum
	order.DeliveryStatus = req.DeliveryStatus
}

type CreateOrderDetailRequest struct {
	OrderID  uuid.UUID `json:"order_id" binding:"required"`
	TicketID uuid.UUID `json:"ticket_id" binding:"required"`
	Count    int       `json:"count" binding:"required,min=1"`
	Price    float64   `json:"price" binding:"min=0"`
}

type UpdateOrderDetailRequest struct {
	Count int     `json:"count" binding:"required,min=1"`
	Price float64 `json:"price" binding:"min=0"`
}

var (
	ListOrders = listHandler(func(s *services.Services) lister[models.TicketOrder] { return s.Orders.Orders }, "orders")

	DeleteOrder = deleteHandler(func(s *services.Services) deleter { return s.Orders.Orders }, "Order")

	ListOrderDetails = listHandler(func(s *services.Services) lister[models.TicketOrderDetail] { return s.Orders.Details }, "order details")

	GetOrderDetail = getHandler(func(s *services.Services) getter[models.TicketOrderDetail] { return s.Orders.Details }, "Order detail")

	DeleteOrderDetail = deleteHandler(func(s *services.Services) deleter { return s.Orders.Details }, "Order detail")
)

// PlaceOrder is the public purchase endpoint.
func PlaceOrder(c *gin.Context) {
	var req services.PlaceOrderInput
	if !bindJSON(c, &req) {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	order, err := svc.Orders.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		respondWithServiceError(c, err, "Failed to place order.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully.",
		"order":   order,
	})
}

func GetOrder(c *gin.Context) {
	svc, ok := getServices(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	order, err := svc.Orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Order not found.")
			return
		}
		respondWithServiceError(c, err, "Error retrieving order.")
		return
	}

	c.JSON(http.StatusOK, order)
}

func CreateOrder(c *gin.Context) {
	var req TicketOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	order := &models.TicketOrder{}
	req.apply(order)
	if err := svc.Orders.CreateOrder(c.Request.Context(), order); err != nil {
		respondWithServiceError(c, err, "Failed to create order.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully.",
		"order":   order,
	})
}

func UpdateOrder(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req TicketOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	order, err := svc.Orders.Orders.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Order not found.")
			return
		}
		respondWithServiceError(c, err, "Error finding order.")
		return
	}

	req.apply(order)
	if err := svc.Orders.UpdateOrder(c.Request.Context(), order); err != nil {
		respondWithServiceError(c, err, "Failed to update order.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order updated successfully.",
		"order":   order,
	})
}

func DeliverOrder(c *gin.Context) {
	svc, ok := getServices(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	changed, err := svc.Orders.MarkDelivered(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Order not found.")
			return
		}
		respondWithServiceError(c, err, "Failed to mark order delivered.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order marked as delivered.",
		"changed": changed,
	})
}

func CreateOrderDetail(c *gin.Context) {
	var req CreateOrderDetailRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	detail := &models.TicketOrderDetail{
		OrderID:  req.OrderID,
		TicketID: req.TicketID,
		Count:    req.Count,
		Price:    req.Price,
	}
	if err := svc.Orders.CreateDetail(c.Request.Context(), detail); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondWithServiceError(c, err, "Failed to create order detail.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order detail created successfully.",
		"detail":  detail,
	})
}

func UpdateOrderDetail(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req UpdateOrderDetailRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, ok := getServices(c)
	if !ok {
		return
	}

	detail, err := svc.Orders.UpdateDetail(c.Request.Context(), id, req.Count, req.Price)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Order detail not found.")
			return
		}
		respondWithServiceError(c, err, "Failed to update order detail.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order detail updated successfully.",
		"detail":  detail,
	})
}

// FulfillOrderDetail applies a detail to inventory. Calling it again is a
// no-op reported as applied=false.
func FulfillOrderDetail(c *gin.Context) {
	svc, ok := getServices(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	applied, err := svc.Orders.Fulfill(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Order detail not found.")
			return
		}
		respondWithServiceError(c, err, "Failed to fulfill order detail.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order detail fulfilled.",
		"applied": applied,
	})
}
