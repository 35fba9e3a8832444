package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/farellandr/eventick/internal/helpers"
	"github.com/farellandr/eventick/internal/metrics"
	"github.com/farellandr/eventick/internal/models"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRedeemTicket(t *testing.T) {
	f := newOrderFixture(t, OrderOptions{})
	ctx := context.Background()
	attendees := NewAttendeeService(f.db, zap.NewNop(), helpers.NewQRSigner("qr-secret"))

	order, err := f.orders.PlaceOrder(ctx, PlaceOrderInput{
		SentTicketTo: "buyer@example.com",
		ContactName:  "Jane Buyer",
		Items:        []OrderItemInput{{TicketID: f.ticket.ID, Count: 2}},
	})
	require.NoError(t, err)
	issued := order.Details[0].Tickets[0]

	png, err := attendees.QRCode(ctx, issued.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	payload, err := attendees.Payload(ctx, issued.ID)
	require.NoError(t, err)

	before := promtest.ToFloat64(metrics.TicketsRedeemed)
	redeemed, err := attendees.Redeem(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, before+1, promtest.ToFloat64(metrics.TicketsRedeemed))
	assert.True(t, redeemed.Used)
	assert.Equal(t, issued.ID, redeemed.ID)
	assert.Equal(t, "Spring Fest", redeemed.OrderDetail.EventName())

	_, err = attendees.Redeem(ctx, payload)
	assert.ErrorIs(t, err, models.ErrTicketAlreadyUsed)
	assert.Equal(t, before+1, promtest.ToFloat64(metrics.TicketsRedeemed))

	_, err = attendees.QRCode(ctx, issued.ID)
	assert.ErrorIs(t, err, models.ErrTicketAlreadyUsed)

	other := order.Details[0].Tickets[1]
	stored, err := attendees.Get(ctx, other.ID)
	require.NoError(t, err)
	assert.False(t, stored.Used)
}

func TestRedeemRejectsForgedPayload(t *testing.T) {
	f := newOrderFixture(t, OrderOptions{})
	ctx := context.Background()
	attendees := NewAttendeeService(f.db, zap.NewNop(), helpers.NewQRSigner("qr-secret"))

	order, err := f.orders.PlaceOrder(ctx, PlaceOrderInput{
		SentTicketTo: "buyer@example.com",
		Items:        []OrderItemInput{{TicketID: f.ticket.ID, Count: 1}},
	})
	require.NoError(t, err)
	issued := order.Details[0].Tickets[0]

	forged := helpers.NewQRSigner("guessed").Payload(issued.ID, issued.OrderDetailID)
	_, err = attendees.Redeem(ctx, forged)
	assert.ErrorIs(t, err, models.ErrInvalidQRCode)

	_, err = attendees.Redeem(ctx, "not a ticket")
	assert.ErrorIs(t, err, models.ErrInvalidQRCode)
}

func TestAttendeeListFilters(t *testing.T) {
	f := newOrderFixture(t, OrderOptions{})
	ctx := context.Background()
	attendees := NewAttendeeService(f.db, zap.NewNop(), helpers.NewQRSigner("qr-secret"))

	_, err := f.orders.PlaceOrder(ctx, PlaceOrderInput{
		SentTicketTo: "buyer@example.com",
		Items: []OrderItemInput{{
			TicketID:  f.ticket.ID,
			Count:     3,
			Attendees: []AttendeeInput{{Name: "Ann"}, {Name: "Bob"}, {Name: "Annette"}},
		}},
	})
	require.NoError(t, err)

	items, total, err := attendees.List(ctx, ListParams{Search: "ann", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)

	items, _, err = attendees.List(ctx, ListParams{Filters: map[string]string{"name": "Bob"}, Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Bob", items[0].Name)

	_, total, err = attendees.List(ctx, ListParams{Filters: map[string]string{"used": "true"}, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)

	_, _, err = attendees.List(ctx, ListParams{Filters: map[string]string{"used": "maybe"}})
	assert.ErrorIs(t, err, ErrInvalidFilter)
}
