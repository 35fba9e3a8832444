package helpers

import (
	"time"

	"github.com/gosimple/slug"
)

// Slugify turns an event name into a lowercase, hyphen separated URL handle.
func Slugify(name string) string {
	return slug.Make(name)
}

// SlugWithDate disambiguates s with the date as MMDDYYYY, taken in UTC so it
// matches the stored start.
func SlugWithDate(s string, date time.Time) string {
	return s + "-" + date.UTC().Format("01022006")
}
