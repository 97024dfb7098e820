package models

import (
	"encoding/json"
	"time"
)

type Property struct {
	// Identity
	ID    string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title string `gorm:"type:text;not null" json:"title"`
	Slug  string `gorm:"type:varchar(255);not null;uniqueIndex" json:"slug"`

	// Listing classification and pricing
	ListingType ListingType `gorm:"type:varchar(10);not null;default:'rental';index" json:"listing_type"`
	RentalPrice *float64    `gorm:"type:decimal(12,2);index" json:"rental_price,omitempty"`
	SalePrice   *float64    `gorm:"type:decimal(12,2);index" json:"sale_price,omitempty"`
	Currency    string      `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`

	// Filter attributes
	Bedrooms    *int   `gorm:"type:int;index" json:"bedrooms,omitempty"`
	Bathrooms   *int   `gorm:"type:int;index" json:"bathrooms,omitempty"`
	MaxGuests   *int   `gorm:"type:int;index" json:"max_guests,omitempty"`
	Location    string `gorm:"type:text" json:"location,omitempty"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	// Amenities is stored as a JSON-encoded string array; use AmenityList to read it.
	Amenities string `gorm:"type:text" json:"amenities,omitempty"`
	VideoURL  string `gorm:"type:text" json:"video_url,omitempty"`

	// Lifecycle
	Status     PropertyStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	IsActive   bool           `gorm:"not null;default:true;index" json:"is_active"`
	IsFeatured bool           `gorm:"not null;default:false;index" json:"is_featured"`

	// Hero image storage path (gallery images live in property_images)
	HeroImage string `gorm:"type:text" json:"hero_image,omitempty"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime;index:idx_properties_created_at,sort:desc" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:datetime;not null;autoUpdateTime" json:"updated_at"`
}

// ListingType classifies a property as available for rent, sale, or both.
type ListingType string

const (
	ListingRental ListingType = "rental"
	ListingSale   ListingType = "sale"
	ListingBoth   ListingType = "both"
)

// PropertyStatus is the publication lifecycle state.
type PropertyStatus string

const (
	PropertyStatusDraft     PropertyStatus = "draft"
	PropertyStatusPublished PropertyStatus = "published"
	PropertyStatusArchived  PropertyStatus = "archived"
)

func (Property) TableName() string {
	return "properties"
}

// IsPublished reports whether the property is visible on the public site.
func (p *Property) IsPublished() bool {
	return p.Status == PropertyStatusPublished && p.IsActive
}

// AmenityList decodes the stored amenities JSON. An empty or malformed
// column yields an empty list rather than an error.
func (p *Property) AmenityList() []string {
	if p.Amenities == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(p.Amenities), &tags); err != nil {
		return nil
	}
	return tags
}

// SetAmenities encodes the tag list into the amenities column.
func (p *Property) SetAmenities(tags []string) {
	if len(tags) == 0 {
		p.Amenities = ""
		return
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return
	}
	p.Amenities = string(data)
}

// HasAmenities reports whether the property carries every tag in want.
func (p *Property) HasAmenities(want []string) bool {
	if len(want) == 0 {
		return true
	}
	have := make(map[string]bool)
	for _, tag := range p.AmenityList() {
		have[tag] = true
	}
	for _, tag := range want {
		if !have[tag] {
			return false
		}
	}
	return true
}

// PriceFor returns the price field relevant to the given listing view.
// Missing prices are treated as zero.
func (p *Property) PriceFor(view ListingType) float64 {
	if view == ListingSale {
		if p.SalePrice != nil {
			return *p.SalePrice
		}
		return 0
	}
	if p.RentalPrice != nil {
		return *p.RentalPrice
	}
	return 0
}

// MatchesListingType reports whether the property appears in a view filtered
// by the given type. Properties listed as "both" appear in every view.
func (p *Property) MatchesListingType(t ListingType) bool {
	return p.ListingType == t || p.ListingType == ListingBoth
}
