package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Filter is an exact-match column filter exposed on a list endpoint.
type Filter struct {
	Column string
	Parse  func(string) (any, error)
}

// Resource describes how a table is browsed from the admin API.
type Resource struct {
	// Search holds SQL conditions with a single placeholder that receives the
	// lowercased LIKE pattern. Conditions are OR-ed together.
	Search   []string
	Filters  map[string]Filter
	Order    string
	Preloads []string
}

type ListParams struct {
	Search  string
	Filters map[string]string
	Page    int
	Limit   int
}

func (p ListParams) offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Repository is the gorm backed CRUD shared by every admin resource.
type Repository[T any] struct {
	db  *gorm.DB
	res Resource
}

func NewRepository[T any](db *gorm.DB, res Resource) *Repository[T] {
	return &Repository[T]{db: db, res: res}
}

func (r *Repository[T]) List(ctx context.Context, p ListParams) ([]T, int64, error) {
	query := r.db.WithContext(ctx).Model(new(T))

	if term := strings.TrimSpace(p.Search); term != "" && len(r.res.Search) > 0 {
		pattern := "%" + strings.ToLower(term) + "%"
		args := make([]any, len(r.res.Search))
		for i := range args {
			args[i] = pattern
		}
		query = query.Where("("+strings.Join(r.res.Search, " OR ")+")", args...)
	}

	for name, raw := range p.Filters {
		filter, ok := r.res.Filters[name]
		if !ok || raw == "" {
			continue
		}
		value, err := filter.Parse(raw)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %s: %v", ErrInvalidFilter, name, err)
		}
		query = query.Where(clause.Eq{Column: clause.Column{Name: filter.Column}, Value: value})
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	for _, preload := range r.res.Preloads {
		query = query.Preload(preload)
	}
	if r.res.Order != "" {
		query = query.Order(r.res.Order)
	}
	if p.Limit > 0 {
		query = query.Offset(p.offset()).Limit(p.Limit)
	}

	var items []T
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *Repository[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	query := r.db.WithContext(ctx)
	for _, preload := range r.res.Preloads {
		query = query.Preload(preload)
	}

	var item T
	if err := query.Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository[T]) Create(ctx context.Context, item *T) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

func (r *Repository[T]) Update(ctx context.Context, item *T) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(item).Error
}

// Delete removes the row without touching dependants.
func (r *Repository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func parseString(s string) (any, error) {
	return s, nil
}

func parseUUID(s string) (any, error) {
	return uuid.Parse(s)
}

func parseBool(s string) (any, error) {
	return strconv.ParseBool(s)
}
