package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EventTicket struct {
	Base
	IsFree         bool       `gorm:"not null;default:false" json:"is_free"`
	RemainingCount int        `gorm:"not null" json:"remaining_count"`
	Price          float64    `gorm:"not null" json:"price"`
	EventID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"event_id"`
	Event          *Event     `gorm:"foreignKey:EventID" json:"event,omitempty"`
	SalesStartDate *time.Time `gorm:"type:date" json:"sales_start_date"`
	SalesEndDate   *time.Time `gorm:"type:date" json:"sales_end_date"`
	Description    string     `gorm:"type:text" json:"description"`
}

func (ticket *EventTicket) String() string {
	if ticket.Event == nil {
		return ticket.Description
	}
	return fmt.Sprintf("%s - %s", ticket.Event.Name, ticket.Description)
}

// EventName is empty unless Event was preloaded.
func (ticket *EventTicket) EventName() string {
	if ticket.Event == nil {
		return ""
	}
	return ticket.Event.Name
}

// UnitPrice is what one ticket of this class costs a buyer.
func (ticket *EventTicket) UnitPrice() float64 {
	if ticket.IsFree {
		return 0
	}
	return ticket.Price
}

// OnSale reports whether the ticket can be sold on day now. A missing start
// date falls back to the event creation date; the end date is inclusive.
func (ticket *EventTicket) OnSale(now time.Time) bool {
	day := truncateDay(now)

	start := ticket.SalesStartDate
	if start == nil && ticket.Event != nil && !ticket.Event.CreatedAt.IsZero() {
		start = &ticket.Event.CreatedAt
	}
	if start != nil && day.Before(truncateDay(*start)) {
		return false
	}
	if ticket.SalesEndDate != nil && day.After(truncateDay(*ticket.SalesEndDate)) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
