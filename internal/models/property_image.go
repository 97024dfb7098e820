package models

import "time"

// PropertyImage is one gallery image owned by a property. SortOrder is the
// position in the original upload selection; a failed upload leaves a gap
// rather than renumbering the survivors.
type PropertyImage struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID string    `gorm:"type:varchar(36);not null;index" json:"property_id"`
	Path       string    `gorm:"type:text;not null" json:"path"`
	AltText    string    `gorm:"type:text" json:"alt_text,omitempty"`
	SortOrder  int       `gorm:"not null;default:0;index" json:"sort_order"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
	ImageHash  string    `gorm:"type:varchar(32)" json:"image_hash,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PropertyImage) TableName() string {
	return "property_images"
}
