package models

import "time"

// Category groups properties for the public site. SortOrder is an explicit
// integer for manual ordering, not creation-time ordering.
type Category struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"slug"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	HeroImage   string    `gorm:"type:text" json:"hero_image,omitempty"`
	IsActive    bool      `gorm:"not null;default:true;index" json:"is_active"`
	SortOrder   int       `gorm:"not null;default:0;index" json:"sort_order"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}
