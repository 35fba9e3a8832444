package services

import (
	"context"

	"github.com/farellandr/eventick/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// eventInvalidation drops the cached public copy of events whose ticket
// classes changed. Cached events embed their tickets, so stock and prices go
// stale otherwise. Call it after the write has committed.
type eventInvalidation struct {
	db    *gorm.DB
	log   *zap.Logger
	cache EventInvalidator
}

func (inv eventInvalidation) events(ctx context.Context, eventIDs ...uuid.UUID) {
	if inv.cache == nil || len(eventIDs) == 0 {
		return
	}

	var events []models.Event
	err := inv.db.WithContext(ctx).
		Select("id", "pin_code", "slug").
		Where("id IN ?", eventIDs).
		Find(&events).Error
	if err != nil {
		inv.log.Warn("load events for cache invalidation failed", zap.Error(err))
		return
	}
	for i := range events {
		if err := inv.cache.Invalidate(ctx, &events[i]); err != nil {
			inv.log.Warn("event cache invalidation failed", zap.String("event_id", events[i].ID.String()), zap.Error(err))
		}
	}
}

func (inv eventInvalidation) tickets(ctx context.Context, ticketIDs ...uuid.UUID) {
	if inv.cache == nil || len(ticketIDs) == 0 {
		return
	}

	var eventIDs []uuid.UUID
	err := inv.db.WithContext(ctx).
		Model(&models.EventTicket{}).
		Where("id IN ?", ticketIDs).
		Distinct().
		Pluck("event_id", &eventIDs).Error
	if err != nil {
		inv.log.Warn("load tickets for cache invalidation failed", zap.Error(err))
		return
	}
	inv.events(ctx, eventIDs...)
}
