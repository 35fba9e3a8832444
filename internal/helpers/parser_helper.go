package helpers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

func StringToInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// ParsePagination reads page and limit query values, applying defaults and bounds.
func ParsePagination(page, limit string) (int, int, error) {
	pageNum := 1
	limitNum := DefaultPageSize
	var err error

	if page != "" {
		if pageNum, err = StringToInt(page); err != nil || pageNum < 1 {
			return 0, 0, fmt.Errorf("invalid page number")
		}
	}
	if limit != "" {
		if limitNum, err = StringToInt(limit); err != nil || limitNum < 1 {
			return 0, 0, fmt.Errorf("invalid limit")
		}
	}
	if limitNum > MaxPageSize {
		limitNum = MaxPageSize
	}
	return pageNum, limitNum, nil
}

func ParseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// ParseDate accepts either a plain date (2006-01-02) or an RFC3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
