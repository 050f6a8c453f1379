package model

import "time"

type BlogPost struct {
	Base
	Title       string     `gorm:"size:255" json:"title" binding:"required"`
	Slug        string     `gorm:"size:190;uniqueIndex" json:"slug" binding:"required"`
	Excerpt     *string    `json:"excerpt"`
	Content     string     `json:"content"`
	CoverURL    *string    `gorm:"size:500" json:"cover_url"`
	IsPublished bool       `json:"is_published"`
	PublishedAt *time.Time `json:"published_at"`
}

func (BlogPost) TableName() string { return "blog_posts" }

// BlogSettings is a single-row table.
type BlogSettings struct {
	Base
	Title           string `gorm:"size:255" json:"title"`
	Description     string `json:"description"`
	PostsPerPage    int    `json:"posts_per_page" binding:"gte=1,lte=100"`
	CommentsEnabled bool   `json:"comments_enabled"`
}

func (BlogSettings) TableName() string { return "blog_settings" }

func DefaultBlogSettings() BlogSettings {
	return BlogSettings{Title: "Блог студии", PostsPerPage: 9}
}
