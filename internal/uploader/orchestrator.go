// Package uploader sequences hero and gallery image uploads for a parent
// entity, applying per-item timeouts, bounded concurrency and partial-failure
// accounting. It never unwinds a parent row that was already created.
package uploader

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"estate-cms/internal/gateway"
	"estate-cms/internal/imaging"
	"estate-cms/internal/models"
)

// ParentKind identifies the entity a file is attached to. It determines the
// storage namespace and which row/column receives the uploaded path.
type ParentKind string

const (
	ParentProperty ParentKind = "property"
	ParentCategory ParentKind = "category"
	ParentBlogPost ParentKind = "blog"
	ParentReview   ParentKind = "review"
)

func (k ParentKind) table() string {
	switch k {
	case ParentProperty:
		return models.Property{}.TableName()
	case ParentCategory:
		return models.Category{}.TableName()
	case ParentBlogPost:
		return models.BlogPost{}.TableName()
	case ParentReview:
		return models.Review{}.TableName()
	}
	return string(k)
}

func (k ParentKind) heroColumn() string {
	if k == ParentReview {
		return "photo"
	}
	return "hero_image"
}

// Config tunes the orchestrator. Zero values fall back to the defaults the
// admin UI promises its users.
type Config struct {
	Bucket          string
	MaxGalleryFiles int
	WindowSize      int
	WindowPause     time.Duration
	HeroTimeout     time.Duration
	GalleryTimeout  time.Duration
	LinkTimeout     time.Duration
}

func (c Config) withDefaults() Config {
	if c.Bucket == "" {
		c.Bucket = "media"
	}
	if c.MaxGalleryFiles == 0 {
		c.MaxGalleryFiles = 15
	}
	if c.WindowSize == 0 {
		c.WindowSize = 2
	}
	if c.WindowPause == 0 {
		c.WindowPause = 500 * time.Millisecond
	}
	if c.HeroTimeout == 0 {
		c.HeroTimeout = 60 * time.Second
	}
	if c.GalleryTimeout == 0 {
		c.GalleryTimeout = 45 * time.Second
	}
	if c.LinkTimeout == 0 {
		c.LinkTimeout = 15 * time.Second
	}
	return c
}

type Orchestrator struct {
	rows    gateway.Rows
	objects gateway.Objects
	cfg     Config
	now     func() time.Time
}

func New(rows gateway.Rows, objects gateway.Objects, cfg Config) *Orchestrator {
	return &Orchestrator{
		rows:    rows,
		objects: objects,
		cfg:     cfg.withDefaults(),
		now:     time.Now,
	}
}

// HeroResult reports the outcome of a hero upload. Err carries the name of
// the step that failed; Path is set whenever the file itself made it into
// storage, linked or not, so a later edit can recover it.
type HeroResult struct {
	Path   string `json:"path,omitempty"`
	Linked bool   `json:"linked"`
	Err    error  `json:"-"`
}

// Message renders the user-facing outcome.
func (r HeroResult) Message() string {
	switch {
	case r.Err == nil:
		return "hero image uploaded"
	case r.Path == "":
		return fmt.Sprintf("hero image upload failed: %v", r.Err)
	default:
		return fmt.Sprintf("failed to link hero image: %v", r.Err)
	}
}

// UploadHero validates, processes, uploads and links a single hero image.
// A link failure after a successful upload is reported but the stored object
// is kept; the admin can re-link by editing the entity.
func (o *Orchestrator) UploadHero(ctx context.Context, kind ParentKind, parentID string, f imaging.File) HeroResult {
	if err := imaging.ValidateFile(f); err != nil {
		return HeroResult{Err: err}
	}

	processed, err := imaging.Process(f)
	if err != nil {
		return HeroResult{Err: fmt.Errorf("hero image processing failed: %w", err)}
	}

	path := o.objectPath(kind, "hero", parentID, processed.Name)
	if err := o.uploadWithTimeout(ctx, o.cfg.HeroTimeout, path, processed); err != nil {
		return HeroResult{Err: fmt.Errorf("hero image upload failed: %w", err)}
	}

	err = runWithTimeout(ctx, o.cfg.LinkTimeout, func(ctx context.Context) error {
		return o.rows.Update(kind.table(), parentID, map[string]interface{}{
			kind.heroColumn(): path,
		})
	})
	if err != nil {
		log.Printf("Uploader: hero uploaded but linking failed kind=%s id=%s path=%s: %v", kind, parentID, path, err)
		return HeroResult{Path: path, Err: err}
	}

	return HeroResult{Path: path, Linked: true}
}

// GalleryReport aggregates a gallery batch. The orchestrator completes and
// reports even when individual items fail.
type GalleryReport struct {
	Requested int      `json:"requested"`
	Attempted int      `json:"attempted"`
	Completed int      `json:"completed"`
	Failed    int      `json:"failed"`
	Truncated bool     `json:"truncated"`
	Failures  []string `json:"failures,omitempty"`
}

// Summary renders the user-facing outcome, previewing at most three failure
// reasons.
func (r GalleryReport) Summary() string {
	if r.Attempted == 0 {
		return "no gallery images uploaded"
	}

	msg := fmt.Sprintf("uploaded %d of %d gallery images", r.Completed, r.Attempted)
	if r.Truncated {
		msg += fmt.Sprintf(" (only the first %d of %d selected files were processed)", r.Attempted, r.Requested)
	}
	if r.Failed > 0 {
		preview := r.Failures
		suffix := ""
		if len(preview) > 3 {
			preview = preview[:3]
			suffix = "; …"
		}
		msg += fmt.Sprintf("; %d failed: %s%s", r.Failed, strings.Join(preview, "; "), suffix)
	}
	return msg
}

// UploadGallery uploads a batch of gallery images for a property. Every file
// is validated before any upload starts; one invalid file aborts the whole
// batch, and the returned error names it. Past the validation gate the batch
// is partial-tolerant: items run in concurrency windows, each failure is
// recorded, and the report always comes back without an error.
//
// Sort order is the position in the original selection, so a failed item
// leaves a gap rather than renumbering its successors.
func (o *Orchestrator) UploadGallery(ctx context.Context, propertyID string, files []imaging.File) (GalleryReport, error) {
	report := GalleryReport{Requested: len(files)}
	if len(files) == 0 {
		return report, nil
	}

	if len(files) > o.cfg.MaxGalleryFiles {
		log.Printf("Uploader: gallery batch of %d truncated to %d for property %s", len(files), o.cfg.MaxGalleryFiles, propertyID)
		files = files[:o.cfg.MaxGalleryFiles]
		report.Truncated = true
	}
	report.Attempted = len(files)

	for _, f := range files {
		if err := imaging.ValidateFile(f); err != nil {
			return GalleryReport{Requested: report.Requested}, err
		}
	}

	tasks := make([]func() error, len(files))
	for i := range files {
		i := i
		tasks[i] = func() error {
			return o.uploadGalleryItem(ctx, propertyID, files[i], i)
		}
	}

	pool := &WindowPool{Size: o.cfg.WindowSize, Pause: o.cfg.WindowPause}
	for i, err := range pool.Run(tasks) {
		if err != nil {
			report.Failed++
			report.Failures = append(report.Failures, fmt.Sprintf("%s: %v", files[i].Name, err))
		} else {
			report.Completed++
		}
	}

	log.Printf("Uploader: gallery batch done for property %s: %d ok, %d failed", propertyID, report.Completed, report.Failed)
	return report, nil
}

func (o *Orchestrator) uploadGalleryItem(ctx context.Context, propertyID string, f imaging.File, position int) error {
	processed, err := imaging.Process(f)
	if err != nil {
		return err
	}

	// Duplicate detection is advisory: a hash failure never fails the item.
	hash, err := imaging.Hash(processed)
	if err != nil {
		log.Printf("Uploader: could not hash %s: %v", processed.Name, err)
	}

	path := o.objectPath(ParentProperty, "gallery", propertyID, processed.Name)
	if err := o.uploadWithTimeout(ctx, o.cfg.GalleryTimeout, path, processed); err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	record := &models.PropertyImage{
		PropertyID: propertyID,
		Path:       path,
		SortOrder:  position,
		IsActive:   true,
		ImageHash:  hash,
	}
	if err := o.rows.Insert(record.TableName(), record); err != nil {
		return fmt.Errorf("failed to link image record: %w", err)
	}

	return nil
}

func (o *Orchestrator) uploadWithTimeout(ctx context.Context, d time.Duration, path string, f imaging.File) error {
	return runWithTimeout(ctx, d, func(ctx context.Context) error {
		_, err := o.objects.Upload(ctx, o.cfg.Bucket, path, f.Data, f.MIME)
		return err
	})
}

// objectPath namespaces an object by entity kind, role and parent id, with a
// millisecond timestamp prefix so two uploads of the same filename never
// collide.
func (o *Orchestrator) objectPath(kind ParentKind, role, parentID, filename string) string {
	return fmt.Sprintf("%s/%s/%s/%d_%s", kind, role, parentID, o.now().UnixMilli(), sanitizeFilename(filename))
}

func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// runWithTimeout races fn against a timer. On expiry the caller gets a
// timeout error immediately; the in-flight call is not aborted and may still
// settle in the background with no further effect.
func runWithTimeout(ctx context.Context, d time.Duration, fn func(context.Context) error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn(ctx)
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("timed out after %s", d)
	case <-ctx.Done():
		return ctx.Err()
	}
}
