package model

type GalleryItem struct {
	Base
	Title     string `gorm:"size:255" json:"title"`
	ImageURL  string `gorm:"size:500" json:"image_url" binding:"required"`
	Category  string `gorm:"size:80;index" json:"category"`
	SortOrder int    `json:"sort_order"`
	IsVisible bool   `json:"is_visible"`
}

func (GalleryItem) TableName() string { return "gallery_items" }

// GalleryCollage groups gallery items into one tile layout.
type GalleryCollage struct {
	Base
	Title     string `gorm:"size:255" json:"title" binding:"required"`
	Layout    string `gorm:"size:40" json:"layout"`
	ItemIDs   IDList `gorm:"type:text" json:"item_ids"`
	SortOrder int    `json:"sort_order"`
	IsVisible bool   `json:"is_visible"`
}

func (GalleryCollage) TableName() string { return "gallery_collages" }
