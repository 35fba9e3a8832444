package helpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// QRSigner produces and checks the payload encoded in attendee QR codes:
//
//	ticket:<ticket id>;detail:<order detail id>;signature:<hex hmac-sha256>
type QRSigner struct {
	secret []byte
}

func NewQRSigner(secret string) *QRSigner {
	return &QRSigner{secret: []byte(secret)}
}

func (s *QRSigner) Payload(ticketID, orderDetailID uuid.UUID) string {
	return fmt.Sprintf("ticket:%s;detail:%s;signature:%s",
		ticketID.String(),
		orderDetailID.String(),
		s.sign(ticketID, orderDetailID),
	)
}

// Parse validates data and returns the ticket and order detail it was issued for.
func (s *QRSigner) Parse(data string) (ticketID, orderDetailID uuid.UUID, err error) {
	parts := strings.Split(data, ";")
	if len(parts) != 3 ||
		!strings.HasPrefix(parts[0], "ticket:") ||
		!strings.HasPrefix(parts[1], "detail:") ||
		!strings.HasPrefix(parts[2], "signature:") {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid QR data format")
	}

	ticketID, err = uuid.Parse(strings.TrimPrefix(parts[0], "ticket:"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid ticket ID format")
	}
	orderDetailID, err = uuid.Parse(strings.TrimPrefix(parts[1], "detail:"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid order detail ID format")
	}

	signature := strings.TrimPrefix(parts[2], "signature:")
	expected := s.sign(ticketID, orderDetailID)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid QR signature")
	}
	return ticketID, orderDetailID, nil
}

func (s *QRSigner) sign(ticketID, orderDetailID uuid.UUID) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(ticketID.String() + ":" + orderDetailID.String()))
	return hex.EncodeToString(h.Sum(nil))
}
