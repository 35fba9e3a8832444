package services

import (
	"context"
	"errors"

	"github.com/farellandr/eventick/internal/helpers"
	"github.com/farellandr/eventick/internal/metrics"
	"github.com/farellandr/eventick/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultPinMaxAttempts = 10

// EventInvalidator drops cached copies of an event after it changes.
type EventInvalidator interface {
	Invalidate(ctx context.Context, event *models.Event) error
}

type EventOptions struct {
	PinLength      int
	PinMaxAttempts int
	GeneratePin    helpers.PinGenerator
	Cache          EventInvalidator
}

type EventService struct {
	*Repository[models.Event]
	db   *gorm.DB
	log  *zap.Logger
	opts EventOptions
}

func NewEventService(db *gorm.DB, log *zap.Logger, opts EventOptions) *EventService {
	if opts.PinLength == 0 {
		opts.PinLength = helpers.DefaultPinCodeSize
	}
	if opts.PinMaxAttempts <= 0 {
		opts.PinMaxAttempts = DefaultPinMaxAttempts
	}
	if opts.GeneratePin == nil {
		opts.GeneratePin = helpers.GeneratePinCode
	}
	return &EventService{
		Repository: NewRepository[models.Event](db, EventResource),
		db:         db,
		log:        log,
		opts:       opts,
	}
}

// Create inserts the event, assigning a PIN code and slug when they are empty.
func (s *EventService) Create(ctx context.Context, event *models.Event) error {
	err := s.persist(ctx, event, func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(event).Error
	})
	if err != nil {
		return err
	}
	s.log.Info("event created",
		zap.String("event_id", event.ID.String()),
		zap.String("slug", event.Slug),
		zap.String("pin_code", event.PinCode))
	return nil
}

func (s *EventService) Update(ctx context.Context, event *models.Event) error {
	var previous models.Event
	if err := s.db.WithContext(ctx).Select("id", "pin_code", "slug").Where("id = ?", event.ID).First(&previous).Error; err != nil {
		return err
	}

	err := s.persist(ctx, event, func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Save(event).Error
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, &previous)
	s.invalidate(ctx, event)
	return nil
}

// Delete removes the event together with its ticket classes.
func (s *EventService) Delete(ctx context.Context, id uuid.UUID) error {
	var event models.Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&event).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&models.EventTicket{}).Error; err != nil {
			return err
		}
		return tx.Delete(&event).Error
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, &event)
	return nil
}

func (s *EventService) GetWithTickets(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := s.db.WithContext(ctx).
		Preload("Tickets", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// FindPublished looks an event up by "pin_code" or "slug". Drafts are not found.
func (s *EventService) FindPublished(ctx context.Context, field, value string) (*models.Event, error) {
	if field != "pin_code" && field != "slug" {
		return nil, gorm.ErrRecordNotFound
	}
	var event models.Event
	err := s.db.WithContext(ctx).
		Preload("Tickets", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where(clause.Eq{Column: clause.Column{Name: field}, Value: value}).
		Where("status = ?", models.EventStatusPublished).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// persist runs write, generating PIN candidates when the event has none. Each
// attempt runs in its own savepoint so a collision on the unique index can be
// rolled back and retried without losing the surrounding transaction.
func (s *EventService) persist(ctx context.Context, event *models.Event, write func(tx *gorm.DB) error) error {
	if event.PinCode != "" {
		return write(s.db.WithContext(ctx))
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for attempt := 1; attempt <= s.opts.PinMaxAttempts; attempt++ {
			candidate := s.opts.GeneratePin(s.opts.PinLength)
			event.PinCode = candidate

			err := tx.Transaction(write)
			if err == nil {
				metrics.PinCodeAttempts.WithLabelValues("assigned").Inc()
				return nil
			}
			event.PinCode = ""
			if !models.IsUniqueViolation(err) {
				return err
			}

			taken, cerr := pinTaken(tx, candidate, event.ID)
			if cerr != nil {
				return cerr
			}
			if !taken {
				return err
			}
			metrics.PinCodeAttempts.WithLabelValues("collision").Inc()
			s.log.Debug("pin code collision", zap.Int("attempt", attempt))
		}

		s.log.Warn("pin code attempts exhausted", zap.Int("attempts", s.opts.PinMaxAttempts))
		return models.ErrPinCodeExhausted
	})
}

func pinTaken(tx *gorm.DB, pin string, self uuid.UUID) (bool, error) {
	var n int64
	err := tx.Model(&models.Event{}).Where("pin_code = ? AND id <> ?", pin, self).Count(&n).Error
	return n > 0, err
}

func (s *EventService) invalidate(ctx context.Context, event *models.Event) {
	if s.opts.Cache == nil {
		return
	}
	if err := s.opts.Cache.Invalidate(ctx, event); err != nil {
		s.log.Warn("event cache invalidation failed", zap.String("event_id", event.ID.String()), zap.Error(err))
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
