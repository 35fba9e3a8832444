package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/farellandr/eventick/internal/cache"
	"github.com/farellandr/eventick/internal/handlers"
	"github.com/farellandr/eventick/internal/models"
	"github.com/farellandr/eventick/internal/services"
	"github.com/farellandr/eventick/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	router *gin.Engine
	svc    *services.Services
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, handlers.RegisterValidators())

	db := testutil.NewDB(t)
	mr := miniredis.RunT(t)
	events := cache.NewEventCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	t.Cleanup(func() { _ = events.Close() })

	svc := services.New(db, zap.NewNop(), services.Options{
		Events:    services.EventOptions{Cache: events},
		Orders:    services.OrderOptions{PublicBaseURL: "http://tickets.test"},
		QRSecret:  "qr-secret",
		JWTSecret: "jwt-secret",
		JWTTTL:    time.Hour,
	})

	ctx := context.Background()
	_, err := svc.Auth.CreateUser(ctx, services.CreateUserInput{
		Email:    "admin@example.com",
		Phone:    "555-0100",
		Password: "password",
		IsAdmin:  true,
	})
	require.NoError(t, err)
	token, _, err := svc.Auth.Login(ctx, "admin@example.com", "password")
	require.NoError(t, err)

	router := NewRouter(Dependencies{DB: db, Services: svc, Cache: events, Log: zap.NewNop()})
	return &testServer{router: router, svc: svc, token: token}
}

func (s *testServer) do(t *testing.T, method, path string, body any, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func eventBody(name string, start, end time.Time) map[string]any {
	return map[string]any{
		"name":        name,
		"start":       start.Format(time.RFC3339),
		"end":         end.Format(time.RFC3339),
		"description": "Outdoor festival",
	}
}

func TestIndex(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/", nil, false)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]map[string]string
	decode(t, w, &body)
	assert.Equal(t, "Color Version", body["breadcrumb"]["parent"])
	assert.Equal(t, "Layout Light", body["breadcrumb"]["child"])
}

func TestHealthzAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/metrics", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "eventick_http_requests_total")
}

func TestAdminRequiresToken(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/v1/admin/events", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/events", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/v1/admin/me", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/v1/auth/login", map[string]string{"email": "admin@example.com", "password": "password"}, false)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Token string `json:"token"`
	}
	decode(t, w, &body)
	assert.NotEmpty(t, body.Token)

	w = s.do(t, http.MethodPost, "/v1/auth/login", map[string]string{"email": "admin@example.com", "password": "nope"}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEventLifecycle(t *testing.T) {
	s := newTestServer(t)
	start := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)

	w := s.do(t, http.MethodPost, "/v1/admin/events", eventBody("Spring Fest", start, start.Add(-time.Hour)), true)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "start date should not be greater than end date")

	short := eventBody("Spring Fest", start, start)
	short["pin_code"] = "12"
	w = s.do(t, http.MethodPost, "/v1/admin/events", short, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/v1/admin/events", eventBody("Spring Fest", start, start), true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Event models.Event `json:"event"`
	}
	decode(t, w, &created)
	event := created.Event
	assert.Len(t, event.PinCode, 6)
	assert.Equal(t, "spring-fest", event.Slug)
	assert.Equal(t, models.EventStatusDraft, event.Status)

	w = s.do(t, http.MethodGet, "/v1/events/pin/"+event.PinCode, nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code, "drafts are not public")

	update := eventBody("Spring Fest", start, start.Add(4*time.Hour))
	update["status"] = models.EventStatusPublished
	update["pin_code"] = event.PinCode
	update["slug"] = event.Slug
	w = s.do(t, http.MethodPut, "/v1/admin/events/"+event.ID.String(), update, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/v1/events/pin/"+event.PinCode, nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	w = s.do(t, http.MethodGet, "/v1/events/slug/spring-fest", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

	w = s.do(t, http.MethodGet, "/v1/admin/events?name=Spring+Fest", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Total int64 `json:"total"`
	}
	decode(t, w, &page)
	assert.Equal(t, int64(1), page.Total)

	w = s.do(t, http.MethodDelete, "/v1/admin/events/"+event.ID.String(), nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/v1/events/pin/"+event.PinCode, nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, "/v1/admin/events/"+event.ID.String(), nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func createTicket(t *testing.T, s *testServer, remaining int) *models.EventTicket {
	t.Helper()
	ctx := context.Background()
	start := time.Now().AddDate(0, 1, 0)
	event := &models.Event{Name: "Summer Fest", Start: start, End: start.Add(time.Hour), Description: "x"}
	require.NoError(t, s.svc.Events.Create(ctx, event))

	ticket := &models.EventTicket{EventID: event.ID, Price: 10, RemainingCount: remaining, Description: "GA"}
	require.NoError(t, s.svc.Tickets.Create(ctx, ticket))
	return ticket
}

func remaining(t *testing.T, s *testServer, ticket *models.EventTicket) int {
	t.Helper()
	got, err := s.svc.Tickets.Get(context.Background(), ticket.ID)
	require.NoError(t, err)
	return got.RemainingCount
}

func TestPlaceOrderAndRedeem(t *testing.T) {
	s := newTestServer(t)
	ticket := createTicket(t, s, 5)

	w := s.do(t, http.MethodPost, "/v1/orders", map[string]any{
		"sent_ticket_to": "buyer@example.com",
		"contact_name":   "Jane Buyer",
		"items":          []map[string]any{{"ticket_id": ticket.ID, "count": 2}},
	}, false)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var placed struct {
		Order models.TicketOrder `json:"order"`
	}
	decode(t, w, &placed)
	assert.Equal(t, float64(20), placed.Order.TotalPrice)
	assert.Equal(t, 3, remaining(t, s, ticket))
	require.Len(t, placed.Order.Details, 1)
	require.Len(t, placed.Order.Details[0].Tickets, 2)
	issued := placed.Order.Details[0].Tickets[0]
	assert.Equal(t, fmt.Sprintf("http://tickets.test/v1/tickets/%s/qrcode", issued.ID), issued.QRCode)

	w = s.do(t, http.MethodGet, "/v1/tickets/"+issued.ID.String()+"/qrcode", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	payload, err := s.svc.Attendees.Payload(context.Background(), issued.ID)
	require.NoError(t, err)

	w = s.do(t, http.MethodPost, "/v1/admin/ticket-details/redeem", map[string]string{"qr_data": payload}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Summer Fest")

	w = s.do(t, http.MethodPost, "/v1/admin/ticket-details/redeem", map[string]string{"qr_data": payload}, true)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/v1/admin/ticket-details/redeem", map[string]string{"qr_data": "ticket:x"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/v1/orders", map[string]any{
		"sent_ticket_to": "buyer@example.com",
		"items":          []map[string]any{{"ticket_id": ticket.ID, "count": 4}},
	}, false)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 3, remaining(t, s, ticket))
}

func TestOrderDetailInventory(t *testing.T) {
	s := newTestServer(t)
	ticket := createTicket(t, s, 10)

	w := s.do(t, http.MethodPost, "/v1/admin/orders", map[string]any{"sent_ticket_to": "buyer@example.com"}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Order models.TicketOrder `json:"order"`
	}
	decode(t, w, &created)
	assert.Equal(t, models.DeliveryStatusDelivered, created.Order.DeliveryStatus)

	w = s.do(t, http.MethodPost, "/v1/admin/order-details", map[string]any{
		"order_id":  created.Order.ID,
		"ticket_id": ticket.ID,
		"count":     3,
		"price":     30,
	}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var detail struct {
		Detail models.TicketOrderDetail `json:"detail"`
	}
	decode(t, w, &detail)
	assert.Equal(t, 7, remaining(t, s, ticket))

	path := "/v1/admin/order-details/" + detail.Detail.ID.String()

	w = s.do(t, http.MethodPost, path+"/fulfill", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"applied":false`)
	assert.Equal(t, 7, remaining(t, s, ticket))

	w = s.do(t, http.MethodPut, path, map[string]any{"count": 3, "price": 30}, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, remaining(t, s, ticket))

	w = s.do(t, http.MethodPut, path, map[string]any{"count": 11, "price": 110}, true)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 7, remaining(t, s, ticket))

	w = s.do(t, http.MethodPut, path, map[string]any{"count": 1, "price": 10}, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 9, remaining(t, s, ticket))

	w = s.do(t, http.MethodPost, "/v1/admin/order-details", map[string]any{
		"order_id":  created.Order.ID,
		"ticket_id": ticket.ID,
		"count":     0,
	}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListValidation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/v1/admin/ticket-details?used=maybe", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/v1/admin/clubs?page=0", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/v1/admin/clubs/not-a-uuid", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClubUniqueness(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/v1/admin/clubs", map[string]string{"code": "RC", "name": "Running Club"}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/v1/admin/clubs", map[string]string{"code": "RC", "name": "Rowing Club"}, true)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodGet, "/v1/admin/clubs?q=run", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Total int64 `json:"total"`
	}
	decode(t, w, &page)
	assert.Equal(t, int64(1), page.Total)
}

func TestPublicLookupSeesTicketChanges(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	start := time.Now().AddDate(0, 1, 0)
	event := &models.Event{
		Name:        "Autumn Fest",
		Start:       start,
		End:         start.Add(time.Hour),
		Description: "x",
		Status:      models.EventStatusPublished,
	}
	require.NoError(t, s.svc.Events.Create(ctx, event))
	general := &models.EventTicket{EventID: event.ID, Price: 10, RemainingCount: 5, Description: "GA"}
	require.NoError(t, s.svc.Tickets.Create(ctx, general))

	lookup := func() (*httptest.ResponseRecorder, models.Event) {
		w := s.do(t, http.MethodGet, "/v1/events/pin/"+event.PinCode, nil, false)
		require.Equal(t, http.StatusOK, w.Code)
		var got models.Event
		decode(t, w, &got)
		return w, got
	}

	w, _ := lookup()
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	w, _ = lookup()
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

	w = s.do(t, http.MethodPost, "/v1/orders", map[string]any{
		"sent_ticket_to": "buyer@example.com",
		"items":          []map[string]any{{"ticket_id": general.ID, "count": 3}},
	}, false)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/v1/admin/event-tickets", map[string]any{
		"event_id":        event.ID,
		"remaining_count": 20,
		"price":           50,
		"description":     "VIP",
	}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, got := lookup()
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	require.Len(t, got.Tickets, 2)
	assert.Equal(t, general.ID, got.Tickets[0].ID)
	assert.Equal(t, 2, got.Tickets[0].RemainingCount)
	assert.Equal(t, "VIP", got.Tickets[1].Description)

	w = s.do(t, http.MethodDelete, "/v1/admin/event-tickets/"+got.Tickets[1].ID.String(), nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	_, got = lookup()
	assert.Len(t, got.Tickets, 1)
}

func TestEventUpdateKeepsPinAndSlugWhenOmitted(t *testing.T) {
	s := newTestServer(t)
	start := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)

	w := s.do(t, http.MethodPost, "/v1/admin/events", eventBody("Spring Fest", start, start), true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Event models.Event `json:"event"`
	}
	decode(t, w, &created)

	body := eventBody("Spring Fest Reloaded", start, start.Add(time.Hour))
	body["description"] = "Now with more bands"
	w = s.do(t, http.MethodPut, "/v1/admin/events/"+created.Event.ID.String(), body, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated struct {
		Event models.Event `json:"event"`
	}
	decode(t, w, &updated)
	assert.Equal(t, created.Event.PinCode, updated.Event.PinCode)
	assert.Equal(t, "spring-fest", updated.Event.Slug)
	assert.Equal(t, "Now with more bands", updated.Event.Description)
}
