package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/farellandr/eventick/internal/helpers"
	"github.com/farellandr/eventick/internal/metrics"
	"github.com/farellandr/eventick/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeliveryEnqueuer schedules the delivery of an order's tickets to the buyer.
type DeliveryEnqueuer interface {
	EnqueueDelivery(ctx context.Context, orderID uuid.UUID) error
}

type OrderOptions struct {
	// AllowOversell lets remaining_count go below zero.
	AllowOversell bool
	PublicBaseURL string
	Queue         DeliveryEnqueuer
	// Cache drops cached events whose ticket stock changed.
	Cache EventInvalidator
	Now   func() time.Time
}

type OrderService struct {
	Orders  *Repository[models.TicketOrder]
	Details *Repository[models.TicketOrderDetail]

	db         *gorm.DB
	log        *zap.Logger
	opts       OrderOptions
	invalidate eventInvalidation
}

func NewOrderService(db *gorm.DB, log *zap.Logger, opts OrderOptions) *OrderService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")
	return &OrderService{
		Orders:     NewRepository[models.TicketOrder](db, TicketOrderResource),
		Details:    NewRepository[models.TicketOrderDetail](db, TicketOrderDetailResource),
		db:         db,
		log:        log,
		opts:       opts,
		invalidate: eventInvalidation{db: db, log: log, cache: opts.Cache},
	}
}

type AttendeeInput struct {
	Name      string `json:"name"`
	Email     string `json:"email" binding:"omitempty,email"`
	ContactID string `json:"contact_id"`
	MobileNum string `json:"mobile_num"`
}

type OrderItemInput struct {
	TicketID  uuid.UUID       `json:"ticket_id" binding:"required"`
	Count     int             `json:"count" binding:"required,min=1"`
	Attendees []AttendeeInput `json:"attendees" binding:"dive"`
}

type PlaceOrderInput struct {
	SentTicketTo  string           `json:"sent_ticket_to" binding:"required,email"`
	ContactName   string           `json:"contact_name"`
	ContactClub   string           `json:"contact_club"`
	ContactID     string           `json:"contact_id"`
	ContactMobile string           `json:"contact_mobile"`
	Items         []OrderItemInput `json:"items" binding:"required,min=1,dive"`
}

// PlaceOrder records a purchase in one transaction: the order, a line per
// ticket class with its inventory taken, and one attendee ticket per seat.
func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*models.TicketOrder, error) {
	if len(in.Items) == 0 {
		return nil, models.ErrEmptyOrder
	}
	for _, item := range in.Items {
		if item.Count <= 0 {
			return nil, models.ErrInvalidQuantity
		}
		if len(item.Attendees) > item.Count {
			return nil, models.ErrTooManyAttendees
		}
	}

	now := s.opts.Now()
	order := &models.TicketOrder{
		SentTicketTo:   in.SentTicketTo,
		ContactName:    in.ContactName,
		ContactClub:    in.ContactClub,
		ContactID:      in.ContactID,
		ContactMobile:  in.ContactMobile,
		OrderNum:       helpers.GenerateOrderNum(now),
		DeliveryStatus: models.DeliveryStatusPending,
	}

	issued := 0
	var eventIDs []uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tickets := make([]models.EventTicket, len(in.Items))
		for i, item := range in.Items {
			if err := tx.Preload("Event").Where("id = ?", item.TicketID).First(&tickets[i]).Error; err != nil {
				return fmt.Errorf("ticket %s: %w", item.TicketID, err)
			}
			if !tickets[i].OnSale(now) {
				return fmt.Errorf("%w: %s", models.ErrTicketNotOnSale, item.TicketID)
			}
			order.TotalPrice += tickets[i].UnitPrice() * float64(item.Count)
			eventIDs = append(eventIDs, tickets[i].EventID)
		}

		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}

		for i, item := range in.Items {
			detail := models.TicketOrderDetail{
				OrderID:  order.ID,
				TicketID: item.TicketID,
				Count:    item.Count,
				Price:    tickets[i].UnitPrice() * float64(item.Count),
			}
			if err := tx.Omit(clause.Associations).Create(&detail).Error; err != nil {
				return err
			}
			if _, err := s.fulfill(tx, &detail); err != nil {
				return err
			}

			detail.Tickets = s.attendeeTickets(in, item, detail.ID)
			if err := tx.Omit(clause.Associations).Create(&detail.Tickets).Error; err != nil {
				return err
			}
			issued += len(detail.Tickets)

			detail.Ticket = &tickets[i]
			order.Details = append(order.Details, detail)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate.events(ctx, eventIDs...)

	metrics.OrdersPlaced.Inc()
	metrics.TicketsIssued.Add(float64(issued))
	s.log.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("order_num", order.OrderNum),
		zap.Float64("total_price", order.TotalPrice),
		zap.Int("tickets", issued))

	if s.opts.Queue != nil {
		if err := s.opts.Queue.EnqueueDelivery(ctx, order.ID); err != nil {
			s.log.Error("enqueue delivery failed", zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}
	return order, nil
}

func (s *OrderService) attendeeTickets(in PlaceOrderInput, item OrderItemInput, detailID uuid.UUID) []models.TicketDetail {
	holder := in.ContactName
	if holder == "" {
		holder = in.SentTicketTo
	}

	tickets := make([]models.TicketDetail, item.Count)
	for n := range tickets {
		attendee := AttendeeInput{Name: holder, Email: in.SentTicketTo, ContactID: in.ContactID, MobileNum: in.ContactMobile}
		if n < len(item.Attendees) {
			attendee = item.Attendees[n]
			if attendee.Name == "" {
				attendee.Name = holder
			}
		}

		id := uuid.New()
		tickets[n] = models.TicketDetail{
			Base:          models.Base{ID: id},
			OrderDetailID: detailID,
			Name:          attendee.Name,
			Email:         attendee.Email,
			ContactID:     attendee.ContactID,
			MobileNum:     attendee.MobileNum,
			QRCode:        s.qrCodeURL(id),
		}
	}
	return tickets
}

func (s *OrderService) qrCodeURL(ticketID uuid.UUID) string {
	return fmt.Sprintf("%s/v1/tickets/%s/qrcode", s.opts.PublicBaseURL, ticketID)
}

// Fulfill takes the detail's count out of its ticket inventory unless that
// already happened. applied reports whether inventory changed.
func (s *OrderService) Fulfill(ctx context.Context, detailID uuid.UUID) (applied bool, err error) {
	var detail models.TicketOrderDetail
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", detailID).First(&detail).Error; err != nil {
			return err
		}
		applied, err = s.fulfill(tx, &detail)
		return err
	})
	if err != nil {
		return false, err
	}
	if applied {
		s.invalidate.tickets(ctx, detail.TicketID)
	}
	return applied, nil
}

// CreateDetail adds a line to an existing order and fulfills it in the same
// transaction.
func (s *OrderService) CreateDetail(ctx context.Context, detail *models.TicketOrderDetail) error {
	if detail.Count <= 0 {
		return models.ErrInvalidQuantity
	}
	if detail.Price < 0 {
		return models.ErrInvalidPrice
	}
	detail.FulfilledAt = nil

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.TicketOrder{}, detail.OrderID); err != nil {
			return fmt.Errorf("order %s: %w", detail.OrderID, err)
		}
		if err := exists(tx, &models.EventTicket{}, detail.TicketID); err != nil {
			return fmt.Errorf("ticket %s: %w", detail.TicketID, err)
		}
		if err := tx.Omit(clause.Associations).Create(detail).Error; err != nil {
			return err
		}
		_, err := s.fulfill(tx, detail)
		return err
	})
	if err != nil {
		return err
	}
	s.invalidate.tickets(ctx, detail.TicketID)
	return nil
}

// UpdateDetail changes count and price. For a fulfilled line only the
// difference in count is moved in or out of inventory; saving an unchanged
// count leaves inventory alone.
func (s *OrderService) UpdateDetail(ctx context.Context, id uuid.UUID, count int, price float64) (*models.TicketOrderDetail, error) {
	if count <= 0 {
		return nil, models.ErrInvalidQuantity
	}
	if price < 0 {
		return nil, models.ErrInvalidPrice
	}

	var detail models.TicketOrderDetail
	moved := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&detail).Error; err != nil {
			return err
		}

		delta := count - detail.Count
		if detail.Fulfilled() && delta != 0 {
			moved = true
			if err := s.adjustInventory(tx, detail.TicketID, delta); err != nil {
				return err
			}
		}

		detail.Count = count
		detail.Price = price
		return tx.Model(&detail).Updates(map[string]any{"count": count, "price": price}).Error
	})
	if err != nil {
		return nil, err
	}
	if moved {
		s.invalidate.tickets(ctx, detail.TicketID)
	}
	return &detail, nil
}

func (s *OrderService) fulfill(tx *gorm.DB, detail *models.TicketOrderDetail) (bool, error) {
	now := s.opts.Now()
	claim := tx.Model(&models.TicketOrderDetail{}).
		Where("id = ? AND fulfilled_at IS NULL", detail.ID).
		Update("fulfilled_at", now)
	if claim.Error != nil {
		return false, claim.Error
	}
	if claim.RowsAffected == 0 {
		return false, nil
	}

	if err := s.adjustInventory(tx, detail.TicketID, detail.Count); err != nil {
		return false, err
	}
	detail.FulfilledAt = &now
	metrics.InventoryDecremented.Add(float64(detail.Count))
	return true, nil
}

// adjustInventory subtracts n from the ticket's remaining count; a negative n
// returns tickets to stock.
func (s *OrderService) adjustInventory(tx *gorm.DB, ticketID uuid.UUID, n int) error {
	query := tx.Model(&models.EventTicket{}).Where("id = ?", ticketID)
	if n > 0 && !s.opts.AllowOversell {
		query = query.Where("remaining_count >= ?", n)
	}

	result := query.Update("remaining_count", gorm.Expr("remaining_count - ?", n))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if err := exists(tx, &models.EventTicket{}, ticketID); err != nil {
			return fmt.Errorf("ticket %s: %w", ticketID, err)
		}
		return fmt.Errorf("%w: ticket %s", models.ErrInsufficientInventory, ticketID)
	}
	return nil
}

// GetOrder loads an order with its lines and issued tickets.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.TicketOrder, error) {
	var order models.TicketOrder
	err := s.db.WithContext(ctx).
		Preload("Details.Ticket.Event").
		Preload("Details.Tickets").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrderService) CreateOrder(ctx context.Context, order *models.TicketOrder) error {
	if err := checkOrder(order); err != nil {
		return err
	}
	return s.Orders.Create(ctx, order)
}

func (s *OrderService) UpdateOrder(ctx context.Context, order *models.TicketOrder) error {
	if err := checkOrder(order); err != nil {
		return err
	}
	return s.Orders.Update(ctx, order)
}

func checkOrder(order *models.TicketOrder) error {
	if order.DeliveryStatus == "" {
		order.DeliveryStatus = models.DeliveryStatusDelivered
	}
	if !models.ValidDeliveryStatus(order.DeliveryStatus) {
		return fmt.Errorf("%w: %q", models.ErrInvalidDeliveryStatus, order.DeliveryStatus)
	}
	if order.TotalPrice < 0 {
		return models.ErrInvalidPrice
	}
	return nil
}

// MarkDelivered moves the order to delivered. It reports false when the order
// was already delivered.
func (s *OrderService) MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error) {
	db := s.db.WithContext(ctx)
	result := db.Model(&models.TicketOrder{}).
		Where("id = ? AND delivery_status <> ?", id, models.DeliveryStatusDelivered).
		Update("delivery_status", models.DeliveryStatusDelivered)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		if err := exists(db, &models.TicketOrder{}, id); err != nil {
			return false, err
		}
		return false, nil
	}

	metrics.OrdersDelivered.Inc()
	s.log.Info("order delivered", zap.String("order_id", id.String()))
	return true, nil
}

func exists(tx *gorm.DB, model any, id uuid.UUID) error {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
