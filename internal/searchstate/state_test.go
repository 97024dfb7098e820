package searchstate

import (
	"net/url"
	"testing"

	"estate-cms/internal/models"
)

func TestEncodeOmitsDefaults(t *testing.T) {
	if qs := DefaultFilterState().QueryString(); qs != "" {
		t.Errorf("default state should encode to an empty query string, got %q", qs)
	}

	s := DefaultFilterState()
	s.Bedrooms = "3"
	s.SortBy = "price_low"

	v := s.Encode()
	if v.Get("bedrooms") != "3" || v.Get("sortBy") != "price_low" {
		t.Errorf("encoded values wrong: %v", v)
	}
	for _, key := range []string{"type", "hasVideo", "isFeatured", "propertyAge", "q", "location"} {
		if v.Has(key) {
			t.Errorf("default-valued %s should be omitted, got %v", key, v)
		}
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	raw := url.Values{
		"q":           {"beach"},
		"type":        {"sale"},
		"minPrice":    {"100000"},
		"bedrooms":    {"3"},
		"beds":        {"2"},
		"amenities":   {"wifi,pool"},
		"hasVideo":    {"true"},
		"propertyAge": {"new"},
		"sortBy":      {"price_low"},
	}

	s := DecodeQuery(raw)
	if s.Query != "beach" || s.ListingType != "sale" || s.Bedrooms != "3" || s.Bathrooms != "2" {
		t.Fatalf("decoded state = %+v", s)
	}
	if len(s.Amenities) != 2 || s.Amenities[0] != "wifi" || s.Amenities[1] != "pool" {
		t.Fatalf("amenities = %v", s.Amenities)
	}

	back := s.Encode()
	for key, want := range raw {
		if got := back.Get(key); got != want[0] {
			t.Errorf("%s round-tripped to %q, want %q", key, got, want[0])
		}
	}
}

func TestDecodeAbsentParamsTakeDefaults(t *testing.T) {
	s := DecodeQuery(url.Values{"q": {"villa"}})

	def := DefaultFilterState()
	if s.ListingType != def.ListingType || s.SortBy != def.SortBy || s.PropertyAge != def.PropertyAge {
		t.Errorf("absent params should default: %+v", s)
	}
}

func TestParamsParsing(t *testing.T) {
	s := DefaultFilterState()
	s.Query = "villa"
	s.ListingType = "sale"
	s.MinPrice = "1500.5"
	s.Bedrooms = "3"
	s.HasVideo = TriTrue
	s.IsFeatured = TriFalse
	s.PropertyAge = "recent"

	p := s.Params()

	if p.Query != "villa" || p.ListingType != models.ListingSale {
		t.Errorf("params = %+v", p)
	}
	if p.MinPrice == nil || *p.MinPrice != 1500.5 {
		t.Error("minPrice not parsed")
	}
	if p.MinBedrooms == nil || *p.MinBedrooms != 3 {
		t.Error("bedrooms not parsed")
	}
	if p.HasVideo == nil || !*p.HasVideo {
		t.Error("hasVideo tri-state not parsed")
	}
	if p.IsFeatured == nil || *p.IsFeatured {
		t.Error("isFeatured tri-state not parsed")
	}
	if p.Age != models.AgeRecent {
		t.Errorf("age = %v", p.Age)
	}
}

func TestParamsMalformedNumbersBehaveAsUnset(t *testing.T) {
	s := DefaultFilterState()
	s.MinPrice = "cheap"
	s.Bedrooms = "many"

	p := s.Params()
	if p.MinPrice != nil || p.MinBedrooms != nil {
		t.Errorf("malformed numerics should be unset: %+v", p)
	}
}

func TestParamsAllMeansNoFilter(t *testing.T) {
	p := DefaultFilterState().Params()

	if p.ListingType != "" || p.HasVideo != nil || p.IsFeatured != nil || p.Age != "" {
		t.Errorf("all-valued dimensions should not filter: %+v", p)
	}
}
