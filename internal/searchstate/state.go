// Package searchstate owns the canonical search-page filter state and its
// bidirectional synchronization with URL query parameters.
package searchstate

import (
	"net/url"
	"strconv"
	"strings"

	"estate-cms/internal/models"
	"estate-cms/internal/search"
)

// Tri-state values for boolean filters; "all" means no filter applied.
const (
	TriAll   = "all"
	TriTrue  = "true"
	TriFalse = "false"
)

// FilterState holds every filter dimension as it appears in the URL. Numeric
// dimensions stay strings here; Params parses them when a query runs.
type FilterState struct {
	Query       string   // q
	ListingType string   // type
	Location    string   // location
	MinPrice    string   // minPrice
	MaxPrice    string   // maxPrice
	Bedrooms    string   // bedrooms
	Bathrooms   string   // beds
	MaxGuests   string   // maxGuests
	Amenities   []string // amenities, comma-joined
	HasVideo    string   // hasVideo
	IsFeatured  string   // isFeatured
	PropertyAge string   // propertyAge
	SortBy      string   // sortBy
}

// DefaultFilterState returns the documented defaults for every dimension.
func DefaultFilterState() FilterState {
	return FilterState{
		ListingType: TriAll,
		HasVideo:    TriAll,
		IsFeatured:  TriAll,
		PropertyAge: TriAll,
		SortBy:      search.SortNewest,
	}
}

// DecodeQuery hydrates filter state from URL query parameters. Absent
// parameters take their defaults.
func DecodeQuery(v url.Values) FilterState {
	s := DefaultFilterState()

	pick := func(key string, dst *string) {
		if val := v.Get(key); val != "" {
			*dst = val
		}
	}
	pick("q", &s.Query)
	pick("type", &s.ListingType)
	pick("location", &s.Location)
	pick("minPrice", &s.MinPrice)
	pick("maxPrice", &s.MaxPrice)
	pick("bedrooms", &s.Bedrooms)
	pick("beds", &s.Bathrooms)
	pick("maxGuests", &s.MaxGuests)
	pick("hasVideo", &s.HasVideo)
	pick("isFeatured", &s.IsFeatured)
	pick("propertyAge", &s.PropertyAge)
	pick("sortBy", &s.SortBy)

	if raw := v.Get("amenities"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				s.Amenities = append(s.Amenities, tag)
			}
		}
	}

	return s
}

// Encode serializes the state back to query parameters. A dimension at its
// default is never written, keeping URLs minimal.
func (s FilterState) Encode() url.Values {
	def := DefaultFilterState()
	v := url.Values{}

	put := func(key, val, defVal string) {
		if val != "" && val != defVal {
			v.Set(key, val)
		}
	}
	put("q", s.Query, def.Query)
	put("type", s.ListingType, def.ListingType)
	put("location", s.Location, def.Location)
	put("minPrice", s.MinPrice, def.MinPrice)
	put("maxPrice", s.MaxPrice, def.MaxPrice)
	put("bedrooms", s.Bedrooms, def.Bedrooms)
	put("beds", s.Bathrooms, def.Bathrooms)
	put("maxGuests", s.MaxGuests, def.MaxGuests)
	put("hasVideo", s.HasVideo, def.HasVideo)
	put("isFeatured", s.IsFeatured, def.IsFeatured)
	put("propertyAge", s.PropertyAge, def.PropertyAge)
	put("sortBy", s.SortBy, def.SortBy)

	if len(s.Amenities) > 0 {
		v.Set("amenities", strings.Join(s.Amenities, ","))
	}

	return v
}

// QueryString renders the encoded state, empty when everything is default.
func (s FilterState) QueryString() string {
	return s.Encode().Encode()
}

// Params converts the URL-shaped state into the typed filter object the
// query builder consumes. Malformed numeric values behave as unset.
func (s FilterState) Params() search.FilterParams {
	p := search.FilterParams{
		Query:     s.Query,
		Location:  s.Location,
		Amenities: s.Amenities,
		SortBy:    s.SortBy,
	}

	if s.ListingType != "" && s.ListingType != TriAll {
		p.ListingType = models.ListingType(s.ListingType)
	}

	p.MinPrice = parseFloat(s.MinPrice)
	p.MaxPrice = parseFloat(s.MaxPrice)
	p.MinBedrooms = parseInt(s.Bedrooms)
	p.MinBathrooms = parseInt(s.Bathrooms)
	p.MinGuests = parseInt(s.MaxGuests)

	p.HasVideo = parseTri(s.HasVideo)
	p.IsFeatured = parseTri(s.IsFeatured)

	if s.PropertyAge != "" && s.PropertyAge != TriAll {
		p.Age = models.AgeBucket(s.PropertyAge)
	}

	return p
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseInt(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func parseTri(s string) *bool {
	switch s {
	case TriTrue:
		b := true
		return &b
	case TriFalse:
		b := false
		return &b
	}
	return nil
}
