package model

import "time"

// TeamMember is a teacher or staff card on the About page.
type TeamMember struct {
	Base
	Name      string  `gorm:"size:120" json:"name" binding:"required"`
	Role      string  `gorm:"size:120" json:"role"`
	Bio       *string `json:"bio"`
	PhotoURL  *string `gorm:"size:500" json:"photo_url"`
	SortOrder int     `json:"sort_order"`
	IsActive  bool    `json:"is_active"`
}

func (TeamMember) TableName() string { return "team_members" }

// ContentBlock is an editable text fragment of a public page, addressed by key.
type ContentBlock struct {
	Base
	Key       string `gorm:"size:120;uniqueIndex" json:"key" binding:"required"`
	Page      string `gorm:"size:60;index" json:"page"`
	Title     string `gorm:"size:255" json:"title"`
	Body      string `json:"body"`
	SortOrder int    `json:"sort_order"`
}

func (ContentBlock) TableName() string { return "content_blocks" }

// Section is a studio direction (e.g. hip-hop, contemporary) with its own landing page.
type Section struct {
	Base
	Name        string  `gorm:"size:120" json:"name" binding:"required"`
	Slug        string  `gorm:"size:120;uniqueIndex" json:"slug" binding:"required"`
	Description *string `json:"description"`
	SortOrder   int     `json:"sort_order"`
	IsActive    bool    `json:"is_active"`
}

func (Section) TableName() string { return "sections" }

type SectionNews struct {
	Base
	SectionID   int64      `gorm:"index" json:"section_id" binding:"required"`
	Title       string     `gorm:"size:255" json:"title" binding:"required"`
	Body        string     `json:"body"`
	IsPublished bool       `json:"is_published"`
	PublishedAt *time.Time `json:"published_at"`
}

func (SectionNews) TableName() string { return "section_news" }
