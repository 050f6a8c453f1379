package resource

import (
	"context"
	"time"

	"go-studioadmin/internal/logging"
	"go-studioadmin/internal/metrics"
	"go-studioadmin/internal/pkg/cache"

	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

// Service applies Config hooks around the DAO and keeps the list cached.
type Service[T any, PT Model[T]] struct {
	cfg   Config[T]
	DAO   *DAO[T]
	Cache cache.Cache
	TTL   time.Duration
}

func NewService[T any, PT Model[T]](dao *DAO[T], cfg Config[T], c cache.Cache, ttl time.Duration) *Service[T, PT] {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Service[T, PT]{cfg: cfg, DAO: dao, Cache: c, TTL: ttl}
}

func (s *Service[T, PT]) Name() string { return s.cfg.Name }

func (s *Service[T, PT]) Config() Config[T] { return s.cfg }

func (s *Service[T, PT]) listKey() string { return "res:" + s.cfg.Name + ":list" }

// List returns all rows in list order, filtered by query when non-empty.
func (s *Service[T, PT]) List(ctx context.Context, query string) ([]T, error) {
	var items []T
	if cache.GetJSON(ctx, s.Cache, s.listKey(), &items) {
		metrics.ResourceListCache.WithLabelValues(s.cfg.Name, "hit").Inc()
	} else {
		metrics.ResourceListCache.WithLabelValues(s.cfg.Name, "miss").Inc()
		list, err := s.DAO.List(ctx)
		if err != nil {
			return nil, err
		}
		items = list
		cache.SetJSON(ctx, s.Cache, s.listKey(), items, s.TTL)
	}
	items = Filter(items, query, s.cfg.Search)
	if s.cfg.Decorate != nil {
		for i := range items {
			s.cfg.Decorate(&items[i])
		}
	}
	return items, nil
}

func (s *Service[T, PT]) Get(ctx context.Context, id int64) (*T, error) {
	if id <= 0 {
		return nil, ErrNotFound
	}
	item, err := s.DAO.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	s.decorate(item)
	return item, nil
}

// Create stores item and returns the materialized row with its new id.
func (s *Service[T, PT]) Create(ctx context.Context, item *T) (*T, error) {
	PT(item).SetEntityID(0)
	if s.cfg.Normalize != nil {
		s.cfg.Normalize(item)
	}
	if err := Validate(item); err != nil {
		s.count("create", "invalid")
		return nil, err
	}
	if s.cfg.BeforeCreate != nil {
		if err := s.cfg.BeforeCreate(ctx, item); err != nil {
			s.count("create", "invalid")
			return nil, err
		}
	}
	if err := s.DAO.Create(ctx, item); err != nil {
		s.count("create", "error")
		return nil, err
	}
	s.Invalidate(ctx)
	s.count("create", "ok")
	if s.cfg.AfterSave != nil {
		s.cfg.AfterSave(ctx, item)
	}
	return s.reload(ctx, PT(item).EntityID(), item)
}

// Update merges a partial JSON object into the stored row.
func (s *Service[T, PT]) Update(ctx context.Context, id int64, patch []byte) (*T, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := Merge(current, patch, s.cfg.readOnly())
	if err != nil {
		s.count("update", "invalid")
		return nil, err
	}
	return s.Replace(ctx, current, next)
}

// Replace persists next in place of old. The id of old always wins.
func (s *Service[T, PT]) Replace(ctx context.Context, old, next *T) (*T, error) {
	id := PT(old).EntityID()
	PT(next).SetEntityID(id)
	if s.cfg.Normalize != nil {
		s.cfg.Normalize(next)
	}
	if err := Validate(next); err != nil {
		s.count("update", "invalid")
		return nil, err
	}
	if s.cfg.BeforeUpdate != nil {
		if err := s.cfg.BeforeUpdate(ctx, old, next); err != nil {
			s.count("update", "invalid")
			return nil, err
		}
	}
	if err := s.DAO.Save(ctx, next); err != nil {
		s.count("update", "error")
		return nil, err
	}
	s.Invalidate(ctx)
	s.count("update", "ok")
	if s.cfg.AfterSave != nil {
		s.cfg.AfterSave(ctx, next)
	}
	return s.reload(ctx, id, next)
}

func (s *Service[T, PT]) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrNotFound
	}
	ok, err := s.DAO.Delete(ctx, id)
	if err != nil {
		s.count("delete", "error")
		return err
	}
	if !ok {
		s.count("delete", "not_found")
		return ErrNotFound
	}
	s.Invalidate(ctx)
	s.count("delete", "ok")
	if s.cfg.AfterDelete != nil {
		s.cfg.AfterDelete(ctx, id)
	}
	return nil
}

// Invalidate drops the cached list; services that write the table directly call it too.
// A failed delete leaves the old list visible until its TTL, so it is logged.
func (s *Service[T, PT]) Invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(ctx, s.listKey()); err != nil {
		metrics.ResourceListCache.WithLabelValues(s.cfg.Name, "invalidate_error").Inc()
		logging.FromContext(ctx).Warn("resource_cache_invalidate_failed",
			zap.String("resource", s.cfg.Name), zap.String("key", s.listKey()), zap.Error(err))
	}
}

// reload reads the row back so defaults and normalized values reach the caller.
func (s *Service[T, PT]) reload(ctx context.Context, id int64, fallback *T) (*T, error) {
	item, err := s.DAO.FindByID(ctx, id)
	if err != nil || item == nil {
		s.decorate(fallback)
		return fallback, err
	}
	s.decorate(item)
	return item, nil
}

func (s *Service[T, PT]) decorate(item *T) {
	if s.cfg.Decorate != nil && item != nil {
		s.cfg.Decorate(item)
	}
}

func (s *Service[T, PT]) count(op, result string) {
	metrics.ResourceMutations.WithLabelValues(s.cfg.Name, op, result).Inc()
}

// Validate runs the gin binding validator over the struct tags.
func Validate(item any) error {
	if binding.Validator == nil {
		return nil
	}
	return binding.Validator.ValidateStruct(item)
}
