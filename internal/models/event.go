package models

import (
	"fmt"
	"time"

	"github.com/farellandr/eventick/internal/helpers"
	"gorm.io/gorm"
)

const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"

	DefaultGoogleMapURL = "https://www.google.com/maps"

	PinCodeMinLength = 4
	PinCodeMaxLength = 6
)

type Event struct {
	Base
	Name         string        `gorm:"size:120;not null;index" json:"name"`
	Start        time.Time     `gorm:"column:start_at;not null" json:"start"`
	End          time.Time     `gorm:"column:end_at;not null" json:"end"`
	Description  string        `gorm:"type:text;not null" json:"description"`
	Remark       string        `gorm:"size:255" json:"remark"`
	Address      string        `gorm:"type:text" json:"address"`
	Slug         string        `gorm:"size:500;uniqueIndex" json:"slug"`
	Status       string        `gorm:"size:120;not null;default:draft" json:"status"`
	GoogleMapURL string        `gorm:"size:500;not null" json:"google_map_url"`
	PinCode      string        `gorm:"size:6;uniqueIndex" json:"pin_code"`
	Tickets      []EventTicket `gorm:"foreignKey:EventID" json:"tickets,omitempty"`
}

func (event *Event) String() string {
	return event.Name
}

func (event *Event) IsPublished() bool {
	return event.Status == EventStatusPublished
}

// Validate checks the fields an admin form would reject. Saving through the
// services package does not call it.
func (event *Event) Validate() error {
	if !event.Start.IsZero() && !event.End.IsZero() && event.Start.After(event.End) {
		return ErrEventDates
	}
	if event.Status != "" && event.Status != EventStatusDraft && event.Status != EventStatusPublished {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, event.Status)
	}
	if event.PinCode != "" && (len(event.PinCode) < PinCodeMinLength || len(event.PinCode) > PinCodeMaxLength) {
		return ErrInvalidPinCode
	}
	return nil
}

// BeforeSave fills in defaults and derives the slug from the name. When the
// plain slug is taken the start date is appended once; a second collision is
// left to the unique index.
func (event *Event) BeforeSave(tx *gorm.DB) (err error) {
	if event.Status == "" {
		event.Status = EventStatusDraft
	}
	if event.GoogleMapURL == "" {
		event.GoogleMapURL = DefaultGoogleMapURL
	}
	if event.Slug != "" || event.Name == "" {
		return nil
	}

	slug := helpers.Slugify(event.Name)
	var taken int64
	err = tx.Session(&gorm.Session{NewDB: true}).
		Model(&Event{}).
		Where("slug = ? AND id <> ?", slug, event.ID).
		Count(&taken).Error
	if err != nil {
		return err
	}
	if taken > 0 && !event.Start.IsZero() {
		slug = helpers.SlugWithDate(slug, event.Start)
	}
	event.Slug = slug
	return nil
}
