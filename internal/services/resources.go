package services

import "errors"

var ErrInvalidFilter = errors.New("invalid filter")

const newestFirst = "created_at DESC"

var (
	EventResource = Resource{
		Search: []string{
			"LOWER(name) LIKE ?",
			"LOWER(pin_code) LIKE ?",
			"LOWER(status) LIKE ?",
			"LOWER(slug) LIKE ?",
		},
		Filters: map[string]Filter{
			"name":   {Column: "name", Parse: parseString},
			"status": {Column: "status", Parse: parseString},
		},
		Order: "start_at ASC",
	}

	EventTicketResource = Resource{
		Search: []string{
			"LOWER(description) LIKE ?",
			"event_id IN (SELECT id FROM events WHERE LOWER(events.name) LIKE ?)",
		},
		Filters: map[string]Filter{
			"event_id": {Column: "event_id", Parse: parseUUID},
			"is_free":  {Column: "is_free", Parse: parseBool},
		},
		Order:    newestFirst,
		Preloads: []string{"Event"},
	}

	TicketOrderResource = Resource{
		Search: []string{
			"LOWER(order_num) LIKE ?",
			"LOWER(sent_ticket_to) LIKE ?",
			"LOWER(contact_name) LIKE ?",
			"LOWER(contact_club) LIKE ?",
			"LOWER(contact_id) LIKE ?",
			"LOWER(contact_mobile) LIKE ?",
			"LOWER(delivery_status) LIKE ?",
		},
		Filters: map[string]Filter{
			"sent_ticket_to":  {Column: "sent_ticket_to", Parse: parseString},
			"contact_name":    {Column: "contact_name", Parse: parseString},
			"delivery_status": {Column: "delivery_status", Parse: parseString},
		},
		Order: newestFirst,
	}

	TicketOrderDetailResource = Resource{
		Search: []string{
			"ticket_id IN (SELECT event_tickets.id FROM event_tickets JOIN events ON events.id = event_tickets.event_id WHERE LOWER(events.name) LIKE ?)",
			"order_id IN (SELECT id FROM ticket_orders WHERE LOWER(ticket_orders.order_num) LIKE ?)",
		},
		Filters: map[string]Filter{
			"order_id":  {Column: "order_id", Parse: parseUUID},
			"ticket_id": {Column: "ticket_id", Parse: parseUUID},
		},
		Order:    newestFirst,
		Preloads: []string{"Ticket.Event", "Order"},
	}

	TicketDetailResource = Resource{
		Search: []string{
			"LOWER(name) LIKE ?",
			"LOWER(email) LIKE ?",
			"LOWER(contact_id) LIKE ?",
			"LOWER(mobile_num) LIKE ?",
		},
		Filters: map[string]Filter{
			"name":            {Column: "name", Parse: parseString},
			"order_detail_id": {Column: "order_detail_id", Parse: parseUUID},
			"used":            {Column: "used", Parse: parseBool},
		},
		Order: newestFirst,
	}

	ClubResource = Resource{
		Search: []string{"LOWER(code) LIKE ?", "LOWER(name) LIKE ?"},
		Order:  newestFirst,
	}

	RegistrantResource = Resource{
		Search: []string{
			"LOWER(first_name) LIKE ?",
			"LOWER(last_name) LIKE ?",
			"LOWER(phone) LIKE ?",
			"LOWER(email) LIKE ?",
		},
		Order: newestFirst,
	}
)
