package models

import (
	"testing"
	"time"
)

func TestMatchesListingType(t *testing.T) {
	rental := Property{ListingType: ListingRental}
	sale := Property{ListingType: ListingSale}
	both := Property{ListingType: ListingBoth}

	if !rental.MatchesListingType(ListingRental) {
		t.Error("rental property should match the rental view")
	}
	if rental.MatchesListingType(ListingSale) {
		t.Error("rental property should not match the sale view")
	}
	if !both.MatchesListingType(ListingRental) || !both.MatchesListingType(ListingSale) {
		t.Error("a property listed as both should match every view")
	}
	if sale.MatchesListingType(ListingBoth) {
		t.Error("a sale-only property should not match the both view")
	}
}

func TestPriceFor(t *testing.T) {
	rent := 1200.0
	sale := 250000.0
	p := Property{RentalPrice: &rent, SalePrice: &sale}

	if got := p.PriceFor(ListingRental); got != rent {
		t.Errorf("rental view price = %v, want %v", got, rent)
	}
	if got := p.PriceFor(ListingSale); got != sale {
		t.Errorf("sale view price = %v, want %v", got, sale)
	}
	// The default view routes to the rental field.
	if got := p.PriceFor(""); got != rent {
		t.Errorf("default view price = %v, want %v", got, rent)
	}

	var empty Property
	if got := empty.PriceFor(ListingSale); got != 0 {
		t.Errorf("missing price = %v, want 0", got)
	}
}

func TestAmenitiesRoundTrip(t *testing.T) {
	var p Property
	p.SetAmenities([]string{"wifi", "pool", "parking"})

	got := p.AmenityList()
	if len(got) != 3 || got[0] != "wifi" || got[2] != "parking" {
		t.Fatalf("AmenityList() = %v", got)
	}

	if !p.HasAmenities([]string{"pool"}) {
		t.Error("subset check failed for a carried tag")
	}
	if !p.HasAmenities([]string{"wifi", "parking"}) {
		t.Error("subset check failed for multiple carried tags")
	}
	if p.HasAmenities([]string{"wifi", "sauna"}) {
		t.Error("subset check passed with a missing tag")
	}
	if !p.HasAmenities(nil) {
		t.Error("empty filter should match everything")
	}
}

func TestAmenityListMalformed(t *testing.T) {
	p := Property{Amenities: "not-json"}
	if got := p.AmenityList(); got != nil {
		t.Errorf("malformed column should yield nil, got %v", got)
	}
}

func TestAgeBounds(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	after, before := AgeBounds(AgeNew, now)
	if after == nil || before != nil {
		t.Fatal("new bucket should be bounded below only")
	}
	if want := now.AddDate(0, 0, -30); !after.Equal(want) {
		t.Errorf("new lower bound = %v, want %v", after, want)
	}

	after, before = AgeBounds(AgeRecent, now)
	if after == nil || before == nil {
		t.Fatal("recent bucket should be bounded on both sides")
	}
	if !after.Equal(now.AddDate(0, 0, -180)) || !before.Equal(now.AddDate(0, 0, -30)) {
		t.Errorf("recent bounds = [%v, %v]", after, before)
	}

	after, before = AgeBounds(AgeOlder, now)
	if after != nil || before == nil {
		t.Fatal("older bucket should be bounded above only")
	}

	after, before = AgeBounds("", now)
	if after != nil || before != nil {
		t.Error("empty bucket should be unbounded")
	}
}
