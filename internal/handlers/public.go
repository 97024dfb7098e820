package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"estate-cms/internal/gateway"
	"estate-cms/internal/models"
	"estate-cms/internal/search"
	"estate-cms/internal/searchstate"
)

// PublicHandler serves the marketing site: property search, detail pages,
// autocomplete and categories.
type PublicHandler struct {
	rows    gateway.Rows
	objects gateway.Objects
	engine  *search.Engine
	suggest *search.SuggestClient
	bucket  string
}

func NewPublicHandler(rows gateway.Rows, objects gateway.Objects, engine *search.Engine, suggest *search.SuggestClient, bucket string) *PublicHandler {
	return &PublicHandler{
		rows:    rows,
		objects: objects,
		engine:  engine,
		suggest: suggest,
		bucket:  bucket,
	}
}

// SearchProperties runs the full filtered search. Query parameter names are
// the search page's URL contract; absent parameters mean defaults.
func (h *PublicHandler) SearchProperties(c *gin.Context) {
	state := searchstate.DecodeQuery(c.Request.URL.Query())
	params := state.Params()

	properties, err := h.engine.Search(params)
	if err != nil {
		// Degrade to an empty result set rather than a failed page.
		log.Printf("Public: search failed: %v", err)
		properties = nil
	}

	c.JSON(http.StatusOK, gin.H{
		"properties": h.withHeroURLs(properties),
		"count":      len(properties),
		"filters":    state,
	})
}

// GetProperty returns one published property by slug, with its ordered
// gallery.
func (h *PublicHandler) GetProperty(c *gin.Context) {
	slug := c.Param("slug")

	var props []models.Property
	q := gateway.Query{Limit: 1}
	q = q.Eq("slug", slug).Eq("status", string(models.PropertyStatusPublished)).Eq("is_active", true)
	if err := h.rows.Select(models.Property{}.TableName(), q, &props); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load property"})
		return
	}
	if len(props) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}
	prop := props[0]

	var images []models.PropertyImage
	iq := gateway.Query{OrderBy: "sort_order"}
	iq = iq.Eq("property_id", prop.ID).Eq("is_active", true)
	if err := h.rows.Select(models.PropertyImage{}.TableName(), iq, &images); err != nil {
		log.Printf("Public: failed to load gallery for %s: %v", prop.ID, err)
	}

	gallery := make([]gin.H, 0, len(images))
	for _, img := range images {
		gallery = append(gallery, gin.H{
			"path":       img.Path,
			"url":        h.objects.PublicURL(h.bucket, img.Path),
			"alt_text":   img.AltText,
			"sort_order": img.SortOrder,
		})
	}

	resp := gin.H{
		"property": prop,
		"gallery":  gallery,
	}
	if prop.HeroImage != "" {
		resp["hero_url"] = h.objects.PublicURL(h.bucket, prop.HeroImage)
	}

	c.JSON(http.StatusOK, resp)
}

// Suggest serves the autocomplete path: at most five hits, nothing for
// queries of two characters or fewer.
func (h *PublicHandler) Suggest(c *gin.Context) {
	query := c.Query("q")

	suggestions, err := h.suggest.Suggest(query, search.DefaultSuggestLimit)
	if err != nil {
		log.Printf("Public: suggest failed: %v", err)
		suggestions = nil
	}

	c.JSON(http.StatusOK, gin.H{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}

// GetCategories lists active categories in manual sort order.
func (h *PublicHandler) GetCategories(c *gin.Context) {
	var categories []models.Category
	q := gateway.Query{OrderBy: "sort_order"}
	q = q.Eq("is_active", true)
	if err := h.rows.Select(models.Category{}.TableName(), q, &categories); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"count":      len(categories),
	})
}

func (h *PublicHandler) withHeroURLs(props []models.Property) []gin.H {
	out := make([]gin.H, 0, len(props))
	for _, p := range props {
		item := gin.H{"property": p}
		if p.HeroImage != "" {
			item["hero_url"] = h.objects.PublicURL(h.bucket, p.HeroImage)
		}
		out = append(out, item)
	}
	return out
}
