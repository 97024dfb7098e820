package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"estate-cms/internal/gateway"
	"estate-cms/internal/models"
	"estate-cms/internal/search"
)

type stubRows struct {
	mu         sync.Mutex
	properties []models.Property
	images     []models.PropertyImage
	categories []models.Category
	lastQuery  gateway.Query
}

func (s *stubRows) Select(table string, q gateway.Query, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastQuery = q
	switch d := dest.(type) {
	case *[]models.Property:
		*d = s.properties
	case *[]models.PropertyImage:
		*d = s.images
	case *[]models.Category:
		*d = s.categories
	}
	return nil
}

func (s *stubRows) Insert(table string, row interface{}) error                      { return nil }
func (s *stubRows) Update(table string, id string, patch map[string]interface{}) error { return nil }
func (s *stubRows) Delete(table string, id string) error                            { return nil }

type stubObjects struct{}

func (stubObjects) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (gateway.ObjectInfo, error) {
	return gateway.ObjectInfo{Path: path}, nil
}
func (stubObjects) PublicURL(bucket, path string) string {
	return "http://store/" + bucket + "/" + path
}
func (stubObjects) Session(ctx context.Context) (*gateway.Session, error) { return nil, nil }

func newPublicRouter(rows *stubRows) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPublicHandler(rows, stubObjects{}, search.NewEngine(rows), nil, "media")

	r := gin.New()
	r.GET("/api/properties", h.SearchProperties)
	r.GET("/api/properties/:slug", h.GetProperty)
	r.GET("/api/categories", h.GetCategories)
	return r
}

func TestGetPropertyBySlug(t *testing.T) {
	rows := &stubRows{
		properties: []models.Property{{
			ID:        "p1",
			Title:     "Ocean View Villa",
			Slug:      "ocean-view-villa",
			Status:    models.PropertyStatusPublished,
			IsActive:  true,
			HeroImage: "property/hero/p1/1_hero.jpg",
		}},
		images: []models.PropertyImage{
			{PropertyID: "p1", Path: "property/gallery/p1/1_a.jpg", SortOrder: 0},
			{PropertyID: "p1", Path: "property/gallery/p1/2_c.jpg", SortOrder: 2},
		},
	}
	r := newPublicRouter(rows)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/properties/ocean-view-villa", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body struct {
		Property models.Property `json:"property"`
		Gallery  []struct {
			URL       string `json:"url"`
			SortOrder int    `json:"sort_order"`
		} `json:"gallery"`
		HeroURL string `json:"hero_url"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Property.Slug != "ocean-view-villa" {
		t.Errorf("property = %+v", body.Property)
	}
	if body.HeroURL != "http://store/media/property/hero/p1/1_hero.jpg" {
		t.Errorf("hero_url = %q", body.HeroURL)
	}
	if len(body.Gallery) != 2 || body.Gallery[1].SortOrder != 2 {
		t.Errorf("gallery = %+v", body.Gallery)
	}
	if body.Gallery[0].URL != "http://store/media/property/gallery/p1/1_a.jpg" {
		t.Errorf("gallery url = %q", body.Gallery[0].URL)
	}
}

func TestGetPropertyNotFound(t *testing.T) {
	r := newPublicRouter(&stubRows{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/properties/nope", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSearchPropertiesDecodesFilters(t *testing.T) {
	rows := &stubRows{}
	r := newPublicRouter(rows)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/properties?type=sale&bedrooms=3&sortBy=price_low", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	found := false
	for _, p := range rows.lastQuery.Where {
		if p.Field == "bedrooms" && p.Op == gateway.OpGte {
			found = true
		}
	}
	if !found {
		t.Errorf("bedrooms filter not applied: %+v", rows.lastQuery.Where)
	}
	if len(rows.lastQuery.OrGroups) != 1 {
		t.Errorf("listing type OR group missing: %+v", rows.lastQuery.OrGroups)
	}
}

func TestGetCategories(t *testing.T) {
	rows := &stubRows{categories: []models.Category{
		{ID: "c1", Name: "Beachfront", SortOrder: 0},
		{ID: "c2", Name: "Mountain", SortOrder: 1},
	}}
	r := newPublicRouter(rows)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 2 {
		t.Errorf("count = %d", body.Count)
	}
	if rows.lastQuery.OrderBy != "sort_order" {
		t.Errorf("categories should use manual sort order, got %q", rows.lastQuery.OrderBy)
	}
}
