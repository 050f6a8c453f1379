package service

import (
	"context"
	"sort"

	"go-studioadmin/internal/domain/model"

	"gorm.io/gorm"
)

// Stat is one dashboard counter.
type Stat struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// preferredStats come first, in this order; the rest follow by key.
var preferredStats = []string{
	"applications_new",
	"groups_active",
	"users_active",
	"enrollments_overdue",
	"support_open",
}

type DashboardService struct {
	DB   *gorm.DB
	opts Options
}

func NewDashboardService(r *Resources) *DashboardService {
	return &DashboardService{DB: r.DB, opts: r.opts}
}

type statQuery struct {
	key, label string
	model      any
	where      func(q *gorm.DB) *gorm.DB
}

func (s *DashboardService) queries() []statQuery {
	now := s.opts.now()
	return []statQuery{
		{"applications_new", "Новые заявки", &model.Application{}, func(q *gorm.DB) *gorm.DB {
			return q.Where("status = ?", model.ApplicationNew)
		}},
		{"applications_total", "Всего заявок", &model.Application{}, nil},
		{"groups_active", "Активные группы", &model.Group{}, func(q *gorm.DB) *gorm.DB {
			return q.Where("is_active = ?", true)
		}},
		{"groups_total", "Всего групп", &model.Group{}, nil},
		{"users_active", "Активные пользователи", &model.User{}, func(q *gorm.DB) *gorm.DB {
			return q.Where("is_active = ?", true)
		}},
		{"users_total", "Всего пользователей", &model.User{}, nil},
		{"enrollments_overdue", "Просроченные оплаты", &model.Enrollment{}, func(q *gorm.DB) *gorm.DB {
			return q.Where("is_active = ? AND next_payment_due_at IS NOT NULL AND next_payment_due_at < ?", true, now)
		}},
		{"enrollments_active", "Активные абонементы", &model.Enrollment{}, func(q *gorm.DB) *gorm.DB {
			return q.Where("is_active = ?", true)
		}},
		{"support_open", "Открытые обращения", &model.SupportConversation{}, func(q *gorm.DB) *gorm.DB {
			return q.Where("status IN ?", []string{model.SupportOpen, model.SupportInProgress})
		}},
		{"blog_posts_published", "Опубликованные записи", &model.BlogPost{}, func(q *gorm.DB) *gorm.DB {
			return q.Where("is_published = ?", true)
		}},
		{"gallery_items", "Фото в галерее", &model.GalleryItem{}, nil},
	}
}

// Stats counts every dashboard key and returns them in display order.
func (s *DashboardService) Stats(ctx context.Context) ([]Stat, error) {
	qs := s.queries()
	out := make([]Stat, 0, len(qs))
	for _, sq := range qs {
		q := s.DB.WithContext(ctx).Model(sq.model)
		if sq.where != nil {
			q = sq.where(q)
		}
		var n int64
		if err := q.Count(&n).Error; err != nil {
			return nil, err
		}
		out = append(out, Stat{Key: sq.key, Label: sq.label, Value: n})
	}
	return OrderStats(out), nil
}

// OrderStats puts preferred keys first and sorts the remainder by key.
func OrderStats(stats []Stat) []Stat {
	rank := make(map[string]int, len(preferredStats))
	for i, k := range preferredStats {
		rank[k] = i
	}
	out := append([]Stat(nil), stats...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, iok := rank[out[i].Key]
		rj, jok := rank[out[j].Key]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return out[i].Key < out[j].Key
		}
	})
	return out
}
