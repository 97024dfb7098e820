package handlers

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"estate-cms/internal/gateway"
	"estate-cms/internal/imaging"
	"estate-cms/internal/models"
	"estate-cms/internal/ratelimit"
	"estate-cms/internal/retry"
	"estate-cms/internal/scheduler"
	"estate-cms/internal/search"
	"estate-cms/internal/uploader"
)

// AdminHandler serves the content-management surface: entity creation with
// attached image uploads, manual reindexing and basic stats.
type AdminHandler struct {
	rows      gateway.Rows
	objects   gateway.Objects
	uploads   *uploader.Orchestrator
	suggest   *search.SuggestClient
	scheduler *scheduler.Scheduler
	limiter   *ratelimit.UploadLimiter
}

func NewAdminHandler(rows gateway.Rows, objects gateway.Objects, uploads *uploader.Orchestrator, suggest *search.SuggestClient, sched *scheduler.Scheduler, limiter *ratelimit.UploadLimiter) *AdminHandler {
	return &AdminHandler{
		rows:      rows,
		objects:   objects,
		uploads:   uploads,
		suggest:   suggest,
		scheduler: sched,
		limiter:   limiter,
	}
}

// RequireSession gates upload routes on an authenticated session. The session
// fetch is retried, since an expired token refresh can race the first call.
func (h *AdminHandler) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		var session *gateway.Session
		err := retry.Do(c.Request.Context(), 3, 500*time.Millisecond, func() error {
			var err error
			session, err = h.objects.Session(c.Request.Context())
			return err
		})
		if err != nil {
			log.Printf("Admin: session check failed: %v", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "could not verify session"})
			return
		}
		if session == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set("session", session)
		c.Next()
	}
}

// RateLimit guards upload routes with the sliding-window limiter.
func (h *AdminHandler) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "upload rate limit exceeded, try again later"})
			return
		}
		c.Next()
	}
}

// CreateProperty creates a property row, then uploads the attached hero and
// gallery files. The row is committed before any upload starts; upload
// failures never roll it back.
func (h *AdminHandler) CreateProperty(c *gin.Context) {
	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	listingType := models.ListingType(c.DefaultPostForm("listing_type", string(models.ListingRental)))
	switch listingType {
	case models.ListingRental, models.ListingSale, models.ListingBoth:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "listing_type must be rental, sale or both"})
		return
	}

	prop := models.Property{
		ID:          uuid.NewString(),
		Title:       title,
		Slug:        models.GenerateSlug(title),
		ListingType: listingType,
		RentalPrice: formFloat(c, "rental_price"),
		SalePrice:   formFloat(c, "sale_price"),
		Currency:    c.DefaultPostForm("currency", "USD"),
		Bedrooms:    formInt(c, "bedrooms"),
		Bathrooms:   formInt(c, "bathrooms"),
		MaxGuests:   formInt(c, "max_guests"),
		Location:    strings.TrimSpace(c.PostForm("location")),
		Description: c.PostForm("description"),
		VideoURL:    strings.TrimSpace(c.PostForm("video_url")),
		Status:      models.PropertyStatus(c.DefaultPostForm("status", string(models.PropertyStatusDraft))),
		IsActive:    true,
		IsFeatured:  c.PostForm("is_featured") == "true",
	}
	if amenities := c.PostForm("amenities"); amenities != "" {
		prop.SetAmenities(strings.Split(amenities, ","))
	}

	if err := h.rows.Insert(prop.TableName(), &prop); err != nil {
		log.Printf("Admin: failed to create property: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create property"})
		return
	}

	resp := gin.H{"property": prop}

	if f, ok := formFile(c, "hero"); ok {
		result := h.uploads.UploadHero(c.Request.Context(), uploader.ParentProperty, prop.ID, f)
		resp["hero"] = result.Message()
		if result.Linked {
			prop.HeroImage = result.Path
			resp["property"] = prop
		}
	}

	gallery, ok := formFiles(c, "gallery")
	if ok {
		report, err := h.uploads.UploadGallery(c.Request.Context(), prop.ID, gallery)
		if err != nil {
			// Validation failure: the whole batch was rejected, but the
			// property itself stands.
			resp["gallery"] = fmt.Sprintf("gallery rejected: %v", err)
		} else {
			resp["gallery"] = report.Summary()
			resp["gallery_report"] = report
		}
	}

	if prop.IsPublished() {
		if err := h.suggest.IndexProperties([]models.Property{prop}); err != nil {
			log.Printf("Admin: failed to index new property %s: %v", prop.ID, err)
		}
	}

	c.JSON(http.StatusCreated, resp)
}

// UpdateProperty patches submitted fields only. The slug is fixed at creation
// and never regenerated, so published URLs stay stable across title edits.
func (h *AdminHandler) UpdateProperty(c *gin.Context) {
	id := c.Param("id")

	patch := map[string]interface{}{}
	for _, field := range []string{"title", "location", "description", "currency", "video_url", "status", "listing_type"} {
		if v, ok := c.GetPostForm(field); ok {
			patch[field] = v
		}
	}
	for _, field := range []string{"rental_price", "sale_price"} {
		if v, ok := c.GetPostForm(field); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s must be a number", field)})
				return
			}
			patch[field] = f
		}
	}
	for _, field := range []string{"bedrooms", "bathrooms", "max_guests"} {
		if v, ok := c.GetPostForm(field); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s must be an integer", field)})
				return
			}
			patch[field] = n
		}
	}
	if v, ok := c.GetPostForm("is_featured"); ok {
		patch["is_featured"] = v == "true"
	}
	if v, ok := c.GetPostForm("amenities"); ok {
		var p models.Property
		p.SetAmenities(strings.Split(v, ","))
		patch["amenities"] = p.Amenities
	}

	if len(patch) > 0 {
		if err := h.rows.Update(models.Property{}.TableName(), id, patch); err != nil {
			log.Printf("Admin: failed to update property %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update property"})
			return
		}
	}

	resp := gin.H{"updated": true}

	if f, ok := formFile(c, "hero"); ok {
		result := h.uploads.UploadHero(c.Request.Context(), uploader.ParentProperty, id, f)
		resp["hero"] = result.Message()
	}
	if gallery, ok := formFiles(c, "gallery"); ok {
		report, err := h.uploads.UploadGallery(c.Request.Context(), id, gallery)
		if err != nil {
			resp["gallery"] = fmt.Sprintf("gallery rejected: %v", err)
		} else {
			resp["gallery"] = report.Summary()
			resp["gallery_report"] = report
		}
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteProperty soft-deletes by deactivating, then drops the row.
func (h *AdminHandler) DeleteProperty(c *gin.Context) {
	id := c.Param("id")

	if err := h.rows.Delete(models.Property{}.TableName(), id); err != nil {
		log.Printf("Admin: failed to delete property %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete property"})
		return
	}
	if err := h.suggest.RemoveProperty(id); err != nil {
		log.Printf("Admin: failed to remove property %s from index: %v", id, err)
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// CreateCategory creates a category with an optional hero image.
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	cat := models.Category{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        models.GenerateSlug(name),
		Description: c.PostForm("description"),
		SortOrder:   intOrZero(c.PostForm("sort_order")),
		IsActive:    true,
	}
	if err := h.rows.Insert(cat.TableName(), &cat); err != nil {
		log.Printf("Admin: failed to create category: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create category"})
		return
	}

	resp := gin.H{"category": cat}
	if f, ok := formFile(c, "hero"); ok {
		result := h.uploads.UploadHero(c.Request.Context(), uploader.ParentCategory, cat.ID, f)
		resp["hero"] = result.Message()
	}

	c.JSON(http.StatusCreated, resp)
}

// CreateBlogPost creates a post; the listing excerpt is derived from the HTML
// body, not author-supplied.
func (h *AdminHandler) CreateBlogPost(c *gin.Context) {
	title := strings.TrimSpace(c.PostForm("title"))
	content := c.PostForm("content")
	if title == "" || content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and content are required"})
		return
	}

	post := models.BlogPost{
		ID:      uuid.NewString(),
		Title:   title,
		Slug:    models.GenerateSlug(title),
		Content: content,
		Excerpt: search.ExtractExcerpt(content, 280),
		Status:  models.PropertyStatus(c.DefaultPostForm("status", string(models.PropertyStatusDraft))),
	}
	if err := h.rows.Insert(post.TableName(), &post); err != nil {
		log.Printf("Admin: failed to create blog post: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create blog post"})
		return
	}

	resp := gin.H{"post": post}
	if f, ok := formFile(c, "hero"); ok {
		result := h.uploads.UploadHero(c.Request.Context(), uploader.ParentBlogPost, post.ID, f)
		resp["hero"] = result.Message()
	}

	c.JSON(http.StatusCreated, resp)
}

// CreateReview creates a guest review with an optional author photo.
func (h *AdminHandler) CreateReview(c *gin.Context) {
	author := strings.TrimSpace(c.PostForm("author_name"))
	if author == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "author_name is required"})
		return
	}
	rating := intOrZero(c.PostForm("rating"))
	if rating < 1 || rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
		return
	}

	review := models.Review{
		ID:         uuid.NewString(),
		AuthorName: author,
		Rating:     rating,
		Body:       c.PostForm("body"),
		IsApproved: c.PostForm("is_approved") == "true",
	}
	if err := h.rows.Insert(review.TableName(), &review); err != nil {
		log.Printf("Admin: failed to create review: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create review"})
		return
	}

	resp := gin.H{"review": review}
	if f, ok := formFile(c, "photo"); ok {
		result := h.uploads.UploadHero(c.Request.Context(), uploader.ParentReview, review.ID, f)
		resp["photo"] = result.Message()
	}

	c.JSON(http.StatusCreated, resp)
}

// TriggerReindex rebuilds the search index in the background.
func (h *AdminHandler) TriggerReindex(c *gin.Context) {
	go func() {
		if err := h.scheduler.Reindex(); err != nil {
			log.Printf("Admin: manual reindex failed: %v", err)
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"message": "reindex started"})
}

// GetStats reports property counts by status.
func (h *AdminHandler) GetStats(c *gin.Context) {
	var props []models.Property
	if err := h.rows.Select(models.Property{}.TableName(), gateway.Query{}, &props); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}

	byStatus := map[models.PropertyStatus]int{}
	featured := 0
	for _, p := range props {
		byStatus[p.Status]++
		if p.IsFeatured {
			featured++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total":     len(props),
		"published": byStatus[models.PropertyStatusPublished],
		"draft":     byStatus[models.PropertyStatusDraft],
		"archived":  byStatus[models.PropertyStatusArchived],
		"featured":  featured,
	})
}

// GetRateLimitStats exposes the limiter's current window usage.
func (h *AdminHandler) GetRateLimitStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.limiter.GetStats())
}

func formFile(c *gin.Context, field string) (imaging.File, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		return imaging.File{}, false
	}
	f, err := readUpload(fh)
	if err != nil {
		log.Printf("Admin: failed to read %s upload: %v", field, err)
		return imaging.File{}, false
	}
	return f, true
}

func formFiles(c *gin.Context, field string) ([]imaging.File, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, false
	}
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, false
	}

	files := make([]imaging.File, 0, len(headers))
	for _, fh := range headers {
		f, err := readUpload(fh)
		if err != nil {
			log.Printf("Admin: failed to read %s upload %s: %v", field, fh.Filename, err)
			continue
		}
		files = append(files, f)
	}
	return files, len(files) > 0
}

func readUpload(fh *multipart.FileHeader) (imaging.File, error) {
	src, err := fh.Open()
	if err != nil {
		return imaging.File{}, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return imaging.File{}, err
	}

	return imaging.File{
		Name: fh.Filename,
		MIME: fh.Header.Get("Content-Type"),
		Data: data,
	}, nil
}

func formFloat(c *gin.Context, field string) *float64 {
	v := c.PostForm(field)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func formInt(c *gin.Context, field string) *int {
	v := c.PostForm(field)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func intOrZero(v string) int {
	n, _ := strconv.Atoi(v)
	return n
}
