// Package search implements the property search and filter engine: predicate
// construction against the row store, client-side refinement and sort, and
// the lightweight autocomplete path.
package search

import (
	"sort"
	"strings"
	"time"

	"estate-cms/internal/gateway"
	"estate-cms/internal/models"
)

// Sort keys accepted by the search page.
const (
	SortNewest    = "newest"
	SortPriceLow  = "price_low"
	SortPriceHigh = "price_high"
	SortBedrooms  = "bedrooms"
)

// FilterParams is the closed filter object for a property search. Pointer
// fields are optional and independent; nil means "no filter".
type FilterParams struct {
	Query        string
	ListingType  models.ListingType // zero value means all types
	Location     string
	MinPrice     *float64
	MaxPrice     *float64
	MinBedrooms  *int
	MinBathrooms *int
	MinGuests    *int
	Amenities    []string // conjunctive: rows must carry every tag
	HasVideo     *bool    // nil = all
	IsFeatured   *bool    // nil = all
	Age          models.AgeBucket
	SortBy       string
	Limit        int
	Offset       int
}

// Engine translates filter params into row-store queries and refines the
// result client-side where the store has no matching predicate.
type Engine struct {
	rows gateway.Rows
	now  func() time.Time
}

func NewEngine(rows gateway.Rows) *Engine {
	return &Engine{rows: rows, now: time.Now}
}

// Search runs a filtered property query. Only published, active rows are
// considered. The store orders by creation time descending; any other sort
// key is applied in memory afterward.
func (e *Engine) Search(p FilterParams) ([]models.Property, error) {
	q := e.buildQuery(p)

	var props []models.Property
	if err := e.rows.Select(models.Property{}.TableName(), q, &props); err != nil {
		return nil, err
	}

	props = refine(props, p)
	applySort(props, p)

	return props, nil
}

func (e *Engine) buildQuery(p FilterParams) gateway.Query {
	q := gateway.Query{OrderBy: "created_at", Desc: true, Limit: p.Limit, Offset: p.Offset}
	q = q.Eq("status", string(models.PropertyStatusPublished)).Eq("is_active", true)

	if s := strings.TrimSpace(p.Query); s != "" {
		q = q.Or(
			gateway.Predicate{Field: "title", Op: gateway.OpContains, Value: s},
			gateway.Predicate{Field: "description", Op: gateway.OpContains, Value: s},
			gateway.Predicate{Field: "location", Op: gateway.OpContains, Value: s},
		)
	}

	// A property marked "both" must appear in either filtered view.
	if p.ListingType != "" {
		q = q.Or(
			gateway.Predicate{Field: "listing_type", Op: gateway.OpEq, Value: string(p.ListingType)},
			gateway.Predicate{Field: "listing_type", Op: gateway.OpEq, Value: string(models.ListingBoth)},
		)
	}

	if p.Location != "" {
		q = q.Contains("location", p.Location)
	}

	// Price bounds apply to the field matching the selected listing view.
	priceField := "rental_price"
	if p.ListingType == models.ListingSale {
		priceField = "sale_price"
	}
	if p.MinPrice != nil {
		q = q.Gte(priceField, *p.MinPrice)
	}
	if p.MaxPrice != nil {
		q = q.Lte(priceField, *p.MaxPrice)
	}

	if p.MinBedrooms != nil {
		q = q.Gte("bedrooms", *p.MinBedrooms)
	}
	if p.MinBathrooms != nil {
		q = q.Gte("bathrooms", *p.MinBathrooms)
	}
	if p.MinGuests != nil {
		q = q.Gte("max_guests", *p.MinGuests)
	}

	if p.IsFeatured != nil {
		q = q.Eq("is_featured", *p.IsFeatured)
	}

	// Age boundaries are computed per query, relative to now.
	if after, before := models.AgeBounds(p.Age, e.now()); after != nil || before != nil {
		if after != nil {
			q = q.Gte("created_at", *after)
		}
		if before != nil {
			q = q.Lte("created_at", *before)
		}
	}

	return q
}

// refine applies the filters the row store has no predicate for: the
// conjunctive amenity subset check and the video-presence tri-state.
func refine(props []models.Property, p FilterParams) []models.Property {
	if len(p.Amenities) == 0 && p.HasVideo == nil {
		return props
	}

	out := props[:0]
	for _, prop := range props {
		if !prop.HasAmenities(p.Amenities) {
			continue
		}
		if p.HasVideo != nil && (prop.VideoURL != "") != *p.HasVideo {
			continue
		}
		out = append(out, prop)
	}
	return out
}

func applySort(props []models.Property, p FilterParams) {
	view := p.ListingType
	switch p.SortBy {
	case SortPriceLow:
		sort.SliceStable(props, func(i, j int) bool {
			return props[i].PriceFor(view) < props[j].PriceFor(view)
		})
	case SortPriceHigh:
		sort.SliceStable(props, func(i, j int) bool {
			return props[i].PriceFor(view) > props[j].PriceFor(view)
		})
	case SortBedrooms:
		sort.SliceStable(props, func(i, j int) bool {
			return bedroomCount(props[i]) > bedroomCount(props[j])
		})
	}
	// SortNewest and the zero value keep the store's created_at DESC order.
}

func bedroomCount(p models.Property) int {
	if p.Bedrooms == nil {
		return 0
	}
	return *p.Bedrooms
}
