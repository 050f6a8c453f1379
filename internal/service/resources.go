package service

import (
	"context"
	"strings"
	"time"

	"go-studioadmin/internal/domain/model"
	"go-studioadmin/internal/pkg/cache"
	"go-studioadmin/internal/pkg/resource"

	"gorm.io/gorm"
)

const sortOrder = "sort_order ASC, id ASC"

// Options carries the knobs shared by all admin collections.
type Options struct {
	ListTTL time.Duration
	DueSoon time.Duration
	Now     func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Resources holds one generic service per admin collection.
type Resources struct {
	TeamMembers   *resource.Service[model.TeamMember, *model.TeamMember]
	Content       *resource.Service[model.ContentBlock, *model.ContentBlock]
	Sections      *resource.Service[model.Section, *model.Section]
	SectionNews   *resource.Service[model.SectionNews, *model.SectionNews]
	Groups        *resource.Service[model.Group, *model.Group]
	Schedule      *resource.Service[model.ScheduleItem, *model.ScheduleItem]
	Applications  *resource.Service[model.Application, *model.Application]
	Enrollments   *resource.Service[model.Enrollment, *model.Enrollment]
	Payments      *resource.Service[model.Payment, *model.Payment]
	BlogPosts     *resource.Service[model.BlogPost, *model.BlogPost]
	GalleryItems  *resource.Service[model.GalleryItem, *model.GalleryItem]
	Collages      *resource.Service[model.GalleryCollage, *model.GalleryCollage]
	Conversations *resource.Service[model.SupportConversation, *model.SupportConversation]
	TelegramLinks *resource.Service[model.TelegramLink, *model.TelegramLink]
	Users         *resource.Service[model.User, *model.User]

	DB   *gorm.DB
	opts Options
}

func newService[T any, PT resource.Model[T]](db *gorm.DB, c cache.Cache, ttl time.Duration, cfg resource.Config[T]) *resource.Service[T, PT] {
	return resource.NewService[T, PT](resource.NewDAO[T](db, cfg.Order, cfg.Scope), cfg, c, ttl)
}

func NewResources(db *gorm.DB, c cache.Cache, opts Options) *Resources {
	if opts.DueSoon <= 0 {
		opts.DueSoon = 7 * 24 * time.Hour
	}
	r := &Resources{DB: db, opts: opts}
	ttl := opts.ListTTL

	r.TeamMembers = newService[model.TeamMember](db, c, ttl, resource.Config[model.TeamMember]{
		Name:   "team-members",
		Order:  sortOrder,
		Search: (*model.TeamMember).SearchFields,
		Normalize: func(m *model.TeamMember) {
			model.NullIfEmpty(&m.Bio)
			model.NullIfEmpty(&m.PhotoURL)
		},
	})
	r.Content = newService[model.ContentBlock](db, c, ttl, resource.Config[model.ContentBlock]{
		Name:   "content",
		Order:  sortOrder,
		Search: (*model.ContentBlock).SearchFields,
		Normalize: func(b *model.ContentBlock) {
			b.Key = strings.TrimSpace(b.Key)
		},
		BeforeCreate: func(ctx context.Context, b *model.ContentBlock) error {
			return r.unique(ctx, &model.ContentBlock{}, "key", b.Key, 0)
		},
		BeforeUpdate: func(ctx context.Context, _, b *model.ContentBlock) error {
			return r.unique(ctx, &model.ContentBlock{}, "key", b.Key, b.ID)
		},
	})
	r.Sections = newService[model.Section](db, c, ttl, resource.Config[model.Section]{
		Name:   "sections",
		Order:  sortOrder,
		Search: (*model.Section).SearchFields,
		Normalize: func(s *model.Section) {
			s.Slug = strings.ToLower(strings.TrimSpace(s.Slug))
			model.NullIfEmpty(&s.Description)
		},
		BeforeCreate: func(ctx context.Context, s *model.Section) error {
			return r.unique(ctx, &model.Section{}, "slug", s.Slug, 0)
		},
		BeforeUpdate: func(ctx context.Context, _, s *model.Section) error {
			return r.unique(ctx, &model.Section{}, "slug", s.Slug, s.ID)
		},
	})
	r.SectionNews = newService[model.SectionNews](db, c, ttl, resource.Config[model.SectionNews]{
		Name:   "section-news",
		Search: (*model.SectionNews).SearchFields,
		Normalize: func(n *model.SectionNews) {
			stampPublished(n.IsPublished, &n.PublishedAt, opts.now())
		},
		BeforeCreate: func(ctx context.Context, n *model.SectionNews) error {
			return r.exists(ctx, &model.Section{}, n.SectionID, "section")
		},
		BeforeUpdate: func(ctx context.Context, _, n *model.SectionNews) error {
			return r.exists(ctx, &model.Section{}, n.SectionID, "section")
		},
	})
	r.Groups = newService[model.Group](db, c, ttl, resource.Config[model.Group]{
		Name:   "groups",
		Search: (*model.Group).SearchFields,
		Normalize: func(g *model.Group) {
			g.Name = strings.TrimSpace(g.Name)
			g.Style = strings.TrimSpace(g.Style)
		},
		BeforeCreate: func(_ context.Context, g *model.Group) error { return checkAgeRange(g) },
		BeforeUpdate: func(_ context.Context, _, g *model.Group) error { return checkAgeRange(g) },
	})
	r.Schedule = newService[model.ScheduleItem](db, c, ttl, resource.Config[model.ScheduleItem]{
		Name:   "schedule",
		Order:  "day_of_week ASC, start_time ASC, id ASC",
		Search: (*model.ScheduleItem).SearchFields,
		BeforeCreate: func(ctx context.Context, s *model.ScheduleItem) error {
			return r.fillGroupName(ctx, s.GroupID, &s.GroupName)
		},
		BeforeUpdate: func(ctx context.Context, _, s *model.ScheduleItem) error {
			return r.fillGroupName(ctx, s.GroupID, &s.GroupName)
		},
	})
	r.Applications = newService[model.Application](db, c, ttl, resource.Config[model.Application]{
		Name:   "applications",
		Search: (*model.Application).SearchFields,
		Normalize: func(a *model.Application) {
			model.NullIfEmpty(&a.Email)
			model.NullIfEmpty(&a.Comment)
			if a.Status == "" {
				a.Status = model.ApplicationNew
			}
			if a.Source == "" {
				a.Source = "admin"
			}
		},
		BeforeCreate: func(ctx context.Context, a *model.Application) error {
			return r.fillAssignedGroup(ctx, a)
		},
		BeforeUpdate: func(ctx context.Context, _, a *model.Application) error {
			return r.fillAssignedGroup(ctx, a)
		},
	})
	r.Enrollments = newService[model.Enrollment](db, c, ttl, resource.Config[model.Enrollment]{
		Name:     "billing/enrollments",
		ReadOnly: []string{"due_status"},
		Search:   (*model.Enrollment).SearchFields,
		Normalize: func(e *model.Enrollment) {
			model.NullIfEmpty(&e.Notes)
			if e.Currency == "" {
				e.Currency = "RUB"
			}
			if e.PeriodDays == 0 {
				e.PeriodDays = 30
			}
		},
		BeforeCreate: func(ctx context.Context, e *model.Enrollment) error { return r.fillEnrollment(ctx, e) },
		BeforeUpdate: func(ctx context.Context, _, e *model.Enrollment) error { return r.fillEnrollment(ctx, e) },
		Decorate: func(e *model.Enrollment) {
			e.DueStatus = model.ClassifyDue(e.NextPaymentDueAt, opts.now(), opts.DueSoon)
		},
	})
	r.Payments = newService[model.Payment](db, c, ttl, resource.Config[model.Payment]{
		Name:   "billing/payments",
		Order:  "id DESC",
		Search: (*model.Payment).SearchFields,
		Normalize: func(p *model.Payment) {
			model.NullIfEmpty(&p.Comment)
			if p.Status == "" {
				p.Status = model.PaymentPending
			}
			if p.Currency == "" {
				p.Currency = "RUB"
			}
			if p.Status == model.PaymentPaid && p.PaidAt == nil {
				now := opts.now()
				p.PaidAt = &now
			}
		},
		BeforeCreate: func(ctx context.Context, p *model.Payment) error { return r.fillPayment(ctx, p) },
		BeforeUpdate: func(ctx context.Context, _, p *model.Payment) error { return r.fillPayment(ctx, p) },
		AfterSave:    r.applyPayment,
	})
	r.BlogPosts = newService[model.BlogPost](db, c, ttl, resource.Config[model.BlogPost]{
		Name:   "blog-posts",
		Order:  "id DESC",
		Search: (*model.BlogPost).SearchFields,
		Normalize: func(p *model.BlogPost) {
			p.Slug = strings.ToLower(strings.TrimSpace(p.Slug))
			model.NullIfEmpty(&p.Excerpt)
			model.NullIfEmpty(&p.CoverURL)
			stampPublished(p.IsPublished, &p.PublishedAt, opts.now())
		},
		BeforeCreate: func(ctx context.Context, p *model.BlogPost) error {
			return r.unique(ctx, &model.BlogPost{}, "slug", p.Slug, 0)
		},
		BeforeUpdate: func(ctx context.Context, _, p *model.BlogPost) error {
			return r.unique(ctx, &model.BlogPost{}, "slug", p.Slug, p.ID)
		},
	})
	r.GalleryItems = newService[model.GalleryItem](db, c, ttl, resource.Config[model.GalleryItem]{
		Name:   "gallery/items",
		Order:  sortOrder,
		Search: (*model.GalleryItem).SearchFields,
	})
	r.Collages = newService[model.GalleryCollage](db, c, ttl, resource.Config[model.GalleryCollage]{
		Name:   "gallery/collages",
		Order:  sortOrder,
		Search: (*model.GalleryCollage).SearchFields,
		Normalize: func(g *model.GalleryCollage) {
			if g.ItemIDs == nil {
				g.ItemIDs = model.IDList{}
			}
			if g.Layout == "" {
				g.Layout = "grid"
			}
		},
	})
	r.Conversations = newService[model.SupportConversation](db, c, ttl, resource.Config[model.SupportConversation]{
		Name:     "support/conversations",
		Order:    "id DESC",
		ReadOnly: []string{"messages", "last_message_at"},
		Scope: func(q *gorm.DB) *gorm.DB {
			return q.Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
		},
		Search: (*model.SupportConversation).SearchFields,
		Normalize: func(s *model.SupportConversation) {
			if s.Status == "" {
				s.Status = model.SupportOpen
			}
			if s.Source == "" {
				s.Source = "admin"
			}
			if s.Messages == nil {
				s.Messages = []model.SupportMessage{}
			}
		},
		AfterDelete: func(ctx context.Context, id int64) {
			db.WithContext(ctx).Where("conversation_id = ?", id).Delete(&model.SupportMessage{})
		},
	})
	r.TelegramLinks = newService[model.TelegramLink](db, c, ttl, resource.Config[model.TelegramLink]{
		Name:   "telegram/links",
		Search: (*model.TelegramLink).SearchFields,
		Normalize: func(l *model.TelegramLink) {
			l.ChatID = strings.TrimSpace(l.ChatID)
			if l.Username != nil {
				u := strings.TrimPrefix(strings.TrimSpace(*l.Username), "@")
				l.Username = &u
			}
			model.NullIfEmpty(&l.Username)
			if l.LinkedAt == nil {
				now := opts.now()
				l.LinkedAt = &now
			}
		},
		BeforeCreate: func(ctx context.Context, l *model.TelegramLink) error {
			if err := r.fillUserName(ctx, l.UserID, &l.UserName); err != nil {
				return err
			}
			return r.unique(ctx, &model.TelegramLink{}, "chat_id", l.ChatID, 0)
		},
		BeforeUpdate: func(ctx context.Context, _, l *model.TelegramLink) error {
			if err := r.fillUserName(ctx, l.UserID, &l.UserName); err != nil {
				return err
			}
			return r.unique(ctx, &model.TelegramLink{}, "chat_id", l.ChatID, l.ID)
		},
	})
	r.Users = newService[model.User](db, c, ttl, resource.Config[model.User]{
		Name:     "users",
		ReadOnly: []string{"last_login_at"},
		Search:   (*model.User).SearchFields,
		Normalize: func(u *model.User) {
			if u.Email != nil {
				e := strings.ToLower(*u.Email)
				u.Email = &e
			}
			model.NullIfEmpty(&u.Email)
			model.NullIfEmpty(&u.Phone)
			if u.Role == "" {
				u.Role = model.RoleStudent
			}
		},
		BeforeCreate: func(ctx context.Context, u *model.User) error {
			if u.Email != nil {
				if err := r.unique(ctx, &model.User{}, "email", *u.Email, 0); err != nil {
					return err
				}
			}
			return hashUserPassword(u)
		},
		BeforeUpdate: func(ctx context.Context, old, u *model.User) error {
			if u.Email != nil {
				if err := r.unique(ctx, &model.User{}, "email", *u.Email, u.ID); err != nil {
					return err
				}
			}
			// rows decoded from JSON carry no hash
			if u.PasswordHash == "" {
				u.PasswordHash = old.PasswordHash
			}
			return hashUserPassword(u)
		},
	})
	return r
}

// Routables lists the generic collections in mount order.
func (r *Resources) Routables() []resource.Routable {
	return []resource.Routable{
		resource.NewHandler(r.TeamMembers),
		resource.NewHandler(r.Content),
		resource.NewHandler(r.Sections),
		resource.NewHandler(r.SectionNews),
		resource.NewHandler(r.Groups),
		resource.NewHandler(r.Schedule),
		resource.NewHandler(r.Applications),
		resource.NewHandler(r.Enrollments),
		resource.NewHandler(r.Payments),
		resource.NewHandler(r.BlogPosts),
		resource.NewHandler(r.GalleryItems),
		resource.NewHandler(r.Collages),
		resource.NewHandler(r.Conversations),
		resource.NewHandler(r.TelegramLinks),
		resource.NewHandler(r.Users),
	}
}

func (r *Resources) unique(ctx context.Context, m any, column, value string, selfID int64) error {
	if value == "" {
		return nil
	}
	var n int64
	q := r.DB.WithContext(ctx).Model(m).Where(column+" = ?", value)
	if selfID > 0 {
		q = q.Where("id <> ?", selfID)
	}
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return resource.Conflictf("%s %q already exists", column, value)
	}
	return nil
}

func (r *Resources) exists(ctx context.Context, m any, id int64, what string) error {
	var n int64
	if err := r.DB.WithContext(ctx).Model(m).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return resource.Invalidf("%s %d does not exist", what, id)
	}
	return nil
}

func (r *Resources) fillGroupName(ctx context.Context, groupID *int64, name *string) error {
	if groupID == nil || *groupID == 0 {
		return nil
	}
	g, err := r.Groups.DAO.FindByID(ctx, *groupID)
	if err != nil {
		return err
	}
	if g == nil {
		return resource.Invalidf("group %d does not exist", *groupID)
	}
	*name = g.Name
	return nil
}

func (r *Resources) fillUserName(ctx context.Context, userID *int64, name *string) error {
	if userID == nil || *userID == 0 {
		return nil
	}
	u, err := r.Users.DAO.FindByID(ctx, *userID)
	if err != nil {
		return err
	}
	if u == nil {
		return resource.Invalidf("user %d does not exist", *userID)
	}
	*name = u.Name
	return nil
}

func (r *Resources) fillAssignedGroup(ctx context.Context, a *model.Application) error {
	if a.AssignedGroupID == nil || *a.AssignedGroupID == 0 {
		a.AssignedGroupID = nil
		a.AssignedGroupName = nil
		return nil
	}
	var name string
	if err := r.fillGroupName(ctx, a.AssignedGroupID, &name); err != nil {
		return err
	}
	a.AssignedGroupName = &name
	return nil
}

func (r *Resources) fillEnrollment(ctx context.Context, e *model.Enrollment) error {
	uid, gid := e.UserID, e.GroupID
	if err := r.fillUserName(ctx, &uid, &e.UserName); err != nil {
		return err
	}
	if err := r.fillGroupName(ctx, &gid, &e.GroupName); err != nil {
		return err
	}
	if e.StartedAt == nil {
		now := r.opts.now()
		e.StartedAt = &now
	}
	return nil
}

func (r *Resources) fillPayment(ctx context.Context, p *model.Payment) error {
	if p.EnrollmentID != nil && *p.EnrollmentID > 0 {
		if err := r.exists(ctx, &model.Enrollment{}, *p.EnrollmentID, "enrollment"); err != nil {
			return err
		}
	} else {
		p.EnrollmentID = nil
	}
	uid := p.UserID
	return r.fillUserName(ctx, &uid, &p.UserName)
}

func checkAgeRange(g *model.Group) error {
	if g.AgeMin != nil && g.AgeMax != nil && *g.AgeMin > *g.AgeMax {
		return resource.Invalidf("age_min must not exceed age_max")
	}
	return nil
}

func stampPublished(published bool, at **time.Time, now time.Time) {
	if published && *at == nil {
		*at = &now
	}
}
