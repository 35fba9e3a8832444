package services

import (
	"context"
	"fmt"

	"github.com/farellandr/eventick/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TicketService manages the ticket classes sold for an event. Every write
// drops the cached copy of the owning event.
type TicketService struct {
	*Repository[models.EventTicket]
	db         *gorm.DB
	invalidate eventInvalidation
}

// NewTicketService takes a nil cache when redis is not configured.
func NewTicketService(db *gorm.DB, log *zap.Logger, cache EventInvalidator) *TicketService {
	return &TicketService{
		Repository: NewRepository[models.EventTicket](db, EventTicketResource),
		db:         db,
		invalidate: eventInvalidation{db: db, log: log, cache: cache},
	}
}

func (s *TicketService) Create(ctx context.Context, ticket *models.EventTicket) error {
	if err := s.check(ctx, ticket); err != nil {
		return err
	}
	if err := s.Repository.Create(ctx, ticket); err != nil {
		return err
	}
	s.invalidate.events(ctx, ticket.EventID)
	return nil
}

func (s *TicketService) Update(ctx context.Context, ticket *models.EventTicket) error {
	if err := s.check(ctx, ticket); err != nil {
		return err
	}

	var previous []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.EventTicket{}).Where("id = ?", ticket.ID).Pluck("event_id", &previous).Error; err != nil {
		return err
	}
	if err := s.Repository.Update(ctx, ticket); err != nil {
		return err
	}
	s.invalidate.events(ctx, append(previous, ticket.EventID)...)
	return nil
}

func (s *TicketService) Delete(ctx context.Context, id uuid.UUID) error {
	var eventIDs []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.EventTicket{}).Where("id = ?", id).Pluck("event_id", &eventIDs).Error; err != nil {
		return err
	}
	if err := s.Repository.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate.events(ctx, eventIDs...)
	return nil
}

func (s *TicketService) check(ctx context.Context, ticket *models.EventTicket) error {
	if ticket.Price < 0 {
		return models.ErrInvalidPrice
	}
	if ticket.SalesStartDate != nil && ticket.SalesEndDate != nil && ticket.SalesStartDate.After(*ticket.SalesEndDate) {
		return models.ErrSalesDates
	}

	var event models.Event
	if err := s.db.WithContext(ctx).Select("id", "name", "created_at").Where("id = ?", ticket.EventID).First(&event).Error; err != nil {
		return fmt.Errorf("event %s: %w", ticket.EventID, err)
	}
	ticket.Event = &event
	return nil
}
