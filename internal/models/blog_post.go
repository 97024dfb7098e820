package models

import "time"

// BlogPost is a marketing article. Content is rich-text HTML from the admin
// editor; Excerpt is the derived plain-text summary used for indexing.
type BlogPost struct {
	ID        string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title     string         `gorm:"type:text;not null" json:"title"`
	Slug      string         `gorm:"type:varchar(255);not null;uniqueIndex" json:"slug"`
	Content   string         `gorm:"type:longtext" json:"content,omitempty"`
	Excerpt   string         `gorm:"type:text" json:"excerpt,omitempty"`
	HeroImage string         `gorm:"type:text" json:"hero_image,omitempty"`
	Status    PropertyStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BlogPost) TableName() string {
	return "blog_posts"
}
