package models

import "time"

// Review is a guest testimonial, optionally with a single photo.
type Review struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	AuthorName string    `gorm:"type:varchar(255);not null" json:"author_name"`
	Rating     int       `gorm:"not null" json:"rating"`
	Body       string    `gorm:"type:text" json:"body,omitempty"`
	Photo      string    `gorm:"type:text" json:"photo,omitempty"`
	IsApproved bool      `gorm:"not null;default:false;index" json:"is_approved"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Review) TableName() string {
	return "reviews"
}
