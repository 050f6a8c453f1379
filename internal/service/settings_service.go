package service

import (
	"context"
	"sync"

	"go-studioadmin/internal/domain/model"
	"go-studioadmin/internal/pkg/resource"

	"gorm.io/gorm"
)

// Singleton manages a settings table that holds exactly one row.
type Singleton[T any, PT resource.Model[T]] struct {
	DB       *gorm.DB
	defaults func() T
	mu       sync.Mutex
}

func NewSingleton[T any, PT resource.Model[T]](db *gorm.DB, defaults func() T) *Singleton[T, PT] {
	return &Singleton[T, PT]{DB: db, defaults: defaults}
}

// Get returns the row, creating it from defaults on first read.
func (s *Singleton[T, PT]) Get(ctx context.Context) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Singleton[T, PT]) load(ctx context.Context) (*T, error) {
	var rows []T
	if err := s.DB.WithContext(ctx).Order("id ASC").Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return &rows[0], nil
	}
	item := s.defaults()
	if err := s.DB.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Update merges a partial JSON object into the row.
func (s *Singleton[T, PT]) Update(ctx context.Context, patch []byte) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	ro := map[string]struct{}{"id": {}, "created_at": {}, "updated_at": {}}
	next, err := resource.Merge(cur, patch, ro)
	if err != nil {
		return nil, err
	}
	PT(next).SetEntityID(PT(cur).EntityID())
	if err := resource.Validate(next); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Save(next).Error; err != nil {
		return nil, err
	}
	return next, nil
}

type Settings struct {
	Blog     *Singleton[model.BlogSettings, *model.BlogSettings]
	Telegram *Singleton[model.TelegramSettings, *model.TelegramSettings]
}

func NewSettings(r *Resources) *Settings {
	return &Settings{
		Blog:     NewSingleton[model.BlogSettings](r.DB, model.DefaultBlogSettings),
		Telegram: NewSingleton[model.TelegramSettings](r.DB, model.DefaultTelegramSettings),
	}
}
