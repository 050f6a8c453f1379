package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-studioadmin/internal/domain/model"
	"go-studioadmin/internal/pkg/cache"

	"gorm.io/gorm"
)

// LogService reads the admin audit log written by the oplog consumer.
type LogService struct {
	DB    *gorm.DB
	Cache cache.Cache
	TTL   time.Duration
}

func NewLogService(db *gorm.DB, c cache.Cache) *LogService {
	return &LogService{DB: db, Cache: c, TTL: 30 * time.Second}
}

type LogListResult struct {
	Items []model.AuditEntry `json:"items"`
	Count int64              `json:"count"`
}

type LogQuery struct {
	UserID   int64
	Keywords string
	Page     int
	Limit    int
}

func (s *LogService) List(ctx context.Context, p LogQuery) (LogListResult, error) {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 || p.Limit > 200 {
		p.Limit = 20
	}
	key := s.key(p)
	var res LogListResult
	if cache.GetJSON(ctx, s.Cache, key, &res) {
		return res, nil
	}
	q := s.DB.WithContext(ctx).Model(&model.AuditEntry{})
	if p.UserID > 0 {
		q = q.Where("user_id = ?", p.UserID)
	}
	if kw := strings.ToLower(strings.TrimSpace(p.Keywords)); kw != "" {
		like := "%" + kw + "%"
		q = q.Where("LOWER(action_name) LIKE ? OR LOWER(url) LIKE ?", like, like)
	}
	if err := q.Count(&res.Count).Error; err != nil {
		return LogListResult{}, err
	}
	if err := q.Order("id DESC").Offset((p.Page - 1) * p.Limit).Limit(p.Limit).Find(&res.Items).Error; err != nil {
		return LogListResult{}, err
	}
	if res.Items == nil {
		res.Items = []model.AuditEntry{}
	}
	cache.SetJSON(ctx, s.Cache, key, res, s.TTL)
	return res, nil
}

// Record stores one entry; used by the oplog consumer.
func (s *LogService) Record(ctx context.Context, e *model.AuditEntry) error {
	return s.DB.WithContext(ctx).Create(e).Error
}

func (s *LogService) key(p LogQuery) string {
	return fmt.Sprintf("auditlog:%d|%s|%d|%d", p.UserID, p.Keywords, p.Page, p.Limit)
}
