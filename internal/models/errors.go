package models

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrEventDates            = errors.New("start date should not be greater than end date")
	ErrInvalidStatus         = errors.New("invalid status")
	ErrInvalidPinCode        = errors.New("pin code must be 4 to 6 characters")
	ErrPinCodeExhausted      = errors.New("could not generate a unique pin code")
	ErrInvalidDeliveryStatus = errors.New("invalid delivery status")
	ErrInsufficientInventory = errors.New("insufficient tickets remaining")
	ErrTicketNotOnSale       = errors.New("ticket is not on sale")
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrInvalidPrice          = errors.New("price must not be negative")
	ErrSalesDates            = errors.New("sales start date should not be after sales end date")
	ErrTooManyAttendees      = errors.New("more attendees than tickets")
	ErrEmptyOrder            = errors.New("order has no items")
	ErrTicketAlreadyUsed     = errors.New("ticket already used")
	ErrInvalidQRCode         = errors.New("invalid qr code")
	ErrInvalidCredentials    = errors.New("invalid credentials")
)

// IsUniqueViolation recognises duplicate key errors whether or not the
// dialector translated them.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
