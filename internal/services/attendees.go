package services

import (
	"context"
	"fmt"

	"github.com/farellandr/eventick/internal/helpers"
	"github.com/farellandr/eventick/internal/metrics"
	"github.com/farellandr/eventick/internal/models"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const qrCodeSize = 256

// AttendeeService manages issued tickets: their QR codes and redemption at
// the door.
type AttendeeService struct {
	*Repository[models.TicketDetail]
	db     *gorm.DB
	log    *zap.Logger
	signer *helpers.QRSigner
}

func NewAttendeeService(db *gorm.DB, log *zap.Logger, signer *helpers.QRSigner) *AttendeeService {
	return &AttendeeService{
		Repository: NewRepository[models.TicketDetail](db, TicketDetailResource),
		db:         db,
		log:        log,
		signer:     signer,
	}
}

// QRCode renders the signed payload of a ticket as a PNG.
func (s *AttendeeService) QRCode(ctx context.Context, id uuid.UUID) ([]byte, error) {
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.Used {
		return nil, models.ErrTicketAlreadyUsed
	}
	return qrcode.Encode(s.signer.Payload(ticket.ID, ticket.OrderDetailID), qrcode.Medium, qrCodeSize)
}

// Payload returns the text encoded in a ticket's QR code.
func (s *AttendeeService) Payload(ctx context.Context, id uuid.UUID) (string, error) {
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.signer.Payload(ticket.ID, ticket.OrderDetailID), nil
}

// Redeem marks the ticket identified by a scanned QR payload as used. A ticket
// can be redeemed once.
func (s *AttendeeService) Redeem(ctx context.Context, qrData string) (*models.TicketDetail, error) {
	ticketID, detailID, err := s.signer.Parse(qrData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidQRCode, err)
	}

	var ticket models.TicketDetail
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("OrderDetail.Ticket.Event").
			Where("id = ? AND order_detail_id = ?", ticketID, detailID).
			First(&ticket).Error; err != nil {
			return err
		}

		result := tx.Model(&models.TicketDetail{}).
			Where("id = ? AND used = ?", ticket.ID, false).
			Update("used", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.ErrTicketAlreadyUsed
		}
		ticket.Used = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.TicketsRedeemed.Inc()
	s.log.Info("ticket redeemed", zap.String("ticket_id", ticket.ID.String()))
	return &ticket, nil
}
