package search

import (
	"testing"
	"time"

	"estate-cms/internal/gateway"
	"estate-cms/internal/models"
)

type recordingRows struct {
	lastTable string
	lastQuery gateway.Query
	result    []models.Property
}

func (r *recordingRows) Select(table string, q gateway.Query, dest interface{}) error {
	r.lastTable = table
	r.lastQuery = q
	*dest.(*[]models.Property) = r.result
	return nil
}

func (r *recordingRows) Insert(table string, row interface{}) error                      { return nil }
func (r *recordingRows) Update(table string, id string, patch map[string]interface{}) error { return nil }
func (r *recordingRows) Delete(table string, id string) error                            { return nil }

func findPredicate(preds []gateway.Predicate, field string) (gateway.Predicate, bool) {
	for _, p := range preds {
		if p.Field == field {
			return p, true
		}
	}
	return gateway.Predicate{}, false
}

func fptr(f float64) *float64 { return &f }
func iptr(n int) *int         { return &n }
func bptr(b bool) *bool       { return &b }

func withAmenities(p models.Property, tags ...string) models.Property {
	p.SetAmenities(tags)
	return p
}

func TestSearchBaselinePredicates(t *testing.T) {
	rows := &recordingRows{}
	e := NewEngine(rows)

	if _, err := e.Search(FilterParams{}); err != nil {
		t.Fatalf("Search: %v", err)
	}

	if rows.lastTable != "properties" {
		t.Errorf("queried table %q", rows.lastTable)
	}
	if p, ok := findPredicate(rows.lastQuery.Where, "status"); !ok || p.Value != "published" {
		t.Error("every search must be scoped to published rows")
	}
	if p, ok := findPredicate(rows.lastQuery.Where, "is_active"); !ok || p.Value != true {
		t.Error("every search must be scoped to active rows")
	}
	if rows.lastQuery.OrderBy != "created_at" || !rows.lastQuery.Desc {
		t.Error("store order should be created_at descending")
	}
}

func TestSearchListingTypeIncludesBoth(t *testing.T) {
	rows := &recordingRows{}
	e := NewEngine(rows)

	_, _ = e.Search(FilterParams{ListingType: models.ListingRental})

	if len(rows.lastQuery.OrGroups) != 1 {
		t.Fatalf("expected one OR group, got %d", len(rows.lastQuery.OrGroups))
	}
	group := rows.lastQuery.OrGroups[0]
	values := map[interface{}]bool{}
	for _, p := range group {
		if p.Field != "listing_type" {
			t.Errorf("unexpected field %q in listing type group", p.Field)
		}
		values[p.Value] = true
	}
	if !values["rental"] || !values["both"] {
		t.Errorf("rental view must also match both-typed rows, got %v", values)
	}
}

func TestSearchPriceFieldRouting(t *testing.T) {
	rows := &recordingRows{}
	e := NewEngine(rows)

	_, _ = e.Search(FilterParams{ListingType: models.ListingSale, MinPrice: fptr(100000)})
	if _, ok := findPredicate(rows.lastQuery.Where, "sale_price"); !ok {
		t.Error("sale view should bound sale_price")
	}

	_, _ = e.Search(FilterParams{ListingType: models.ListingRental, MaxPrice: fptr(2000)})
	if _, ok := findPredicate(rows.lastQuery.Where, "rental_price"); !ok {
		t.Error("rental view should bound rental_price")
	}

	// No view selected: the rental field is the default.
	_, _ = e.Search(FilterParams{MinPrice: fptr(500)})
	if _, ok := findPredicate(rows.lastQuery.Where, "rental_price"); !ok {
		t.Error("default view should bound rental_price")
	}
}

func TestSearchTextQuerySpansFields(t *testing.T) {
	rows := &recordingRows{}
	e := NewEngine(rows)

	_, _ = e.Search(FilterParams{Query: "beach"})

	if len(rows.lastQuery.OrGroups) != 1 {
		t.Fatalf("expected one OR group, got %d", len(rows.lastQuery.OrGroups))
	}
	fields := map[string]bool{}
	for _, p := range rows.lastQuery.OrGroups[0] {
		if p.Op != gateway.OpContains {
			t.Errorf("text match should be a contains predicate, got %v", p.Op)
		}
		fields[p.Field] = true
	}
	for _, f := range []string{"title", "description", "location"} {
		if !fields[f] {
			t.Errorf("text query should span %s", f)
		}
	}
}

func TestSearchAgeBuckets(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	rows := &recordingRows{}
	e := NewEngine(rows)
	e.now = func() time.Time { return now }

	_, _ = e.Search(FilterParams{Age: models.AgeNew})
	p, ok := findPredicate(rows.lastQuery.Where, "created_at")
	if !ok || p.Op != gateway.OpGte {
		t.Fatal("new bucket should set a created_at lower bound")
	}
	if !p.Value.(time.Time).Equal(now.AddDate(0, 0, -30)) {
		t.Errorf("new bucket lower bound = %v", p.Value)
	}

	_, _ = e.Search(FilterParams{Age: models.AgeRecent})
	bounds := 0
	for _, pred := range rows.lastQuery.Where {
		if pred.Field == "created_at" {
			bounds++
		}
	}
	if bounds != 2 {
		t.Errorf("recent bucket should bound created_at on both sides, got %d", bounds)
	}

	_, _ = e.Search(FilterParams{Age: models.AgeOlder})
	p, ok = findPredicate(rows.lastQuery.Where, "created_at")
	if !ok || p.Op != gateway.OpLte {
		t.Error("older bucket should set a created_at upper bound only")
	}
}

func TestSearchRefinesAmenitiesAndVideo(t *testing.T) {
	rows := &recordingRows{result: []models.Property{
		withAmenities(models.Property{ID: "a", VideoURL: "http://v/1"}, "wifi", "pool"),
		withAmenities(models.Property{ID: "b"}, "wifi"),
		withAmenities(models.Property{ID: "c", VideoURL: "http://v/2"}, "pool"),
	}}
	e := NewEngine(rows)

	got, err := e.Search(FilterParams{Amenities: []string{"wifi"}, HasVideo: bptr(true)})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("expected only property a, got %v", ids(got))
	}

	got, _ = e.Search(FilterParams{HasVideo: bptr(false)})
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("hasVideo=false should keep only video-less rows, got %v", ids(got))
	}
}

func TestSearchSortByPriceUsesView(t *testing.T) {
	rows := &recordingRows{result: []models.Property{
		{ID: "a", RentalPrice: fptr(900), SalePrice: fptr(400000)},
		{ID: "b", RentalPrice: fptr(500), SalePrice: fptr(600000)},
	}}
	e := NewEngine(rows)

	got, _ := e.Search(FilterParams{SortBy: SortPriceLow})
	if got[0].ID != "b" {
		t.Errorf("rental view price_low should lead with b, got %v", ids(got))
	}

	got, _ = e.Search(FilterParams{ListingType: models.ListingSale, SortBy: SortPriceLow})
	if got[0].ID != "a" {
		t.Errorf("sale view price_low should lead with a, got %v", ids(got))
	}

	got, _ = e.Search(FilterParams{SortBy: SortPriceHigh})
	if got[0].ID != "a" {
		t.Errorf("price_high should lead with a, got %v", ids(got))
	}
}

func TestSearchSortByBedroomsMissingLast(t *testing.T) {
	rows := &recordingRows{result: []models.Property{
		{ID: "none"},
		{ID: "three", Bedrooms: iptr(3)},
		{ID: "one", Bedrooms: iptr(1)},
	}}
	e := NewEngine(rows)

	got, _ := e.Search(FilterParams{SortBy: SortBedrooms})
	want := []string{"three", "one", "none"}
	for i, w := range want {
		if got[i].ID != w {
			t.Fatalf("order = %v, want %v", ids(got), want)
		}
	}
}

func ids(props []models.Property) []string {
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = p.ID
	}
	return out
}
