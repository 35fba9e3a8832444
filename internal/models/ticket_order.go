package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DeliveryStatusPending   = "pending"
	DeliveryStatusDelivered = "delivered"
)

type TicketOrder struct {
	Base
	TotalPrice     float64             `gorm:"not null" json:"total_price"`
	SentTicketTo   string              `gorm:"size:254;not null" json:"sent_ticket_to"`
	ContactName    string              `gorm:"size:120" json:"contact_name"`
	ContactClub    string              `gorm:"size:255" json:"contact_club"`
	ContactID      string              `gorm:"size:200" json:"contact_id"`
	ContactMobile  string              `gorm:"size:80" json:"contact_mobile"`
	OrderNum       string              `gorm:"size:20;index" json:"order_num"`
	DeliveryStatus string              `gorm:"size:80;not null;default:delivered" json:"delivery_status"`
	Details        []TicketOrderDetail `gorm:"foreignKey:OrderID" json:"details,omitempty"`
}

func (order *TicketOrder) String() string {
	return order.ID.String()
}

func ValidDeliveryStatus(status string) bool {
	return status == DeliveryStatusPending || status == DeliveryStatusDelivered
}

// TicketOrderDetail is one line of an order. FulfilledAt is set the moment
// its count has been taken out of the ticket inventory.
type TicketOrderDetail struct {
	Base
	OrderID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"order_id"`
	Order       *TicketOrder   `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	TicketID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"ticket_id"`
	Ticket      *EventTicket   `gorm:"foreignKey:TicketID" json:"ticket,omitempty"`
	Count       int            `gorm:"not null" json:"count"`
	Price       float64        `gorm:"not null" json:"price"`
	FulfilledAt *time.Time     `json:"fulfilled_at"`
	Tickets     []TicketDetail `gorm:"foreignKey:OrderDetailID" json:"tickets,omitempty"`
}

func (detail *TicketOrderDetail) Fulfilled() bool {
	return detail.FulfilledAt != nil
}

// EventName is empty unless Ticket.Event was preloaded. Safe on a nil detail.
func (detail *TicketOrderDetail) EventName() string {
	if detail == nil || detail.Ticket == nil {
		return ""
	}
	return detail.Ticket.EventName()
}

// TicketDetail is a single issued ticket held by one attendee.
type TicketDetail struct {
	Base
	OrderDetailID uuid.UUID          `gorm:"type:uuid;not null;index" json:"order_detail_id"`
	OrderDetail   *TicketOrderDetail `gorm:"foreignKey:OrderDetailID" json:"order_detail,omitempty"`
	Name          string             `gorm:"size:120;not null" json:"name"`
	Email         string             `gorm:"size:254" json:"email"`
	Used          bool               `gorm:"not null;default:false" json:"used"`
	ContactID     string             `gorm:"size:200" json:"contact_id"`
	MobileNum     string             `gorm:"size:80" json:"mobile_num"`
	QRCode        string             `gorm:"column:qrcode;size:500" json:"qrcode"`
}

func (ticket *TicketDetail) String() string {
	return ticket.Name
}
