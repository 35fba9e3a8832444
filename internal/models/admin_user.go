package models

import "strings"

// AdminUser is a staff identity allowed into the admin API.
type AdminUser struct {
	Base
	Email              string `gorm:"size:255;unique;not null" json:"email"`
	Phone              string `gorm:"size:20;not null;default:''" json:"phone"`
	Password           string `gorm:"not null" json:"-"`
	IsActive           bool   `gorm:"not null" json:"is_active"`
	IsAdmin            bool   `gorm:"not null;default:false" json:"is_admin"`
	IsPaymentProcessor bool   `gorm:"not null;default:false" json:"is_payment_processor"`
}

// IsStaff reports whether the user may use the admin API. All admins are staff.
func (u *AdminUser) IsStaff() bool {
	return u.IsAdmin
}

func (u *AdminUser) IsPaymentStaff() bool {
	return u.IsPaymentProcessor
}

// NormalizeEmail lowercases the domain part of an address, leaving the local part intact.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}
