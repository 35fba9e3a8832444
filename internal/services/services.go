package services

import (
	"time"

	"github.com/farellandr/eventick/internal/helpers"
	"github.com/farellandr/eventick/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Options struct {
	Events    EventOptions
	Orders    OrderOptions
	QRSecret  string
	JWTSecret string
	JWTTTL    time.Duration
}

// Services bundles everything the HTTP handlers and the worker call into.
type Services struct {
	Events      *EventService
	Tickets     *TicketService
	Orders      *OrderService
	Attendees   *AttendeeService
	Auth        *AuthService
	Clubs       *Repository[models.Club]
	Registrants *Repository[models.Registrant]
}

// New shares the event cache in opts.Events with ticket and order writes,
// which change the ticket list embedded in cached events.
func New(db *gorm.DB, log *zap.Logger, opts Options) *Services {
	if opts.Orders.Cache == nil {
		opts.Orders.Cache = opts.Events.Cache
	}
	return &Services{
		Events:      NewEventService(db, log, opts.Events),
		Tickets:     NewTicketService(db, log, opts.Events.Cache),
		Orders:      NewOrderService(db, log, opts.Orders),
		Attendees:   NewAttendeeService(db, log, helpers.NewQRSigner(opts.QRSecret)),
		Auth:        NewAuthService(db, opts.JWTSecret, opts.JWTTTL),
		Clubs:       NewRepository[models.Club](db, ClubResource),
		Registrants: NewRepository[models.Registrant](db, RegistrantResource),
	}
}
