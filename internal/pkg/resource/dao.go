package resource

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DAO is the gorm repository for one entity table.
type DAO[T any] struct {
	DB    *gorm.DB
	order string
	scope func(*gorm.DB) *gorm.DB
}

func NewDAO[T any](db *gorm.DB, order string, scope func(*gorm.DB) *gorm.DB) *DAO[T] {
	if order == "" {
		order = "id ASC"
	}
	return &DAO[T]{DB: db, order: order, scope: scope}
}

func (d *DAO[T]) read(ctx context.Context) *gorm.DB {
	q := d.DB.WithContext(ctx)
	if d.scope != nil {
		q = d.scope(q)
	}
	return q
}

func (d *DAO[T]) List(ctx context.Context) ([]T, error) {
	var list []T
	if err := d.read(ctx).Order(d.order).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// FindByID returns nil, nil when the row does not exist.
func (d *DAO[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	var item T
	if err := d.read(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (d *DAO[T]) Create(ctx context.Context, item *T) error {
	return d.DB.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

// Save writes every column, so false/zero values from a PATCH are persisted.
func (d *DAO[T]) Save(ctx context.Context, item *T) error {
	return d.DB.WithContext(ctx).Omit(clause.Associations).Save(item).Error
}

// Delete reports whether a row was removed.
func (d *DAO[T]) Delete(ctx context.Context, id int64) (bool, error) {
	var zero T
	res := d.DB.WithContext(ctx).Delete(&zero, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (d *DAO[T]) Count(ctx context.Context, query any, args ...any) (int64, error) {
	var n int64
	var zero T
	q := d.DB.WithContext(ctx).Model(&zero)
	if query != nil {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
