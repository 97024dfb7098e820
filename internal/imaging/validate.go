// Package imaging validates candidate image files against the upload policy
// and normalizes them into formats the storage backend serves reliably.
package imaging

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Upload policy constants. The 10 MiB ceiling is a hard domain constant
// surfaced to users; the compress threshold is where downsizing kicks in for
// files that are acceptable but heavy.
const (
	MaxFileBytes      = 10 << 20
	CompressThreshold = 2 << 20
)

// File is an in-memory candidate for upload.
type File struct {
	Name string
	MIME string
	Data []byte
}

var allowedMIMEs = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
	"image/avif": true,
}

var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".avif": true,
}

const allowedFormatsMsg = "JPEG, PNG, WebP, AVIF"

// ValidateFile checks a candidate against the format allow-list and size
// ceiling. When the reported MIME type is absent or generic it falls back to
// the filename extension; some browsers report AVIF as an octet stream.
func ValidateFile(f File) error {
	if !mimeAllowed(f.MIME) {
		if !genericMIME(f.MIME) || !allowedExts[strings.ToLower(filepath.Ext(f.Name))] {
			return fmt.Errorf("unsupported image format for %q: allowed formats are %s", f.Name, allowedFormatsMsg)
		}
	}

	if int64(len(f.Data)) > MaxFileBytes {
		return fmt.Errorf("%q is %.1f MiB; images may be at most %d MiB",
			f.Name, float64(len(f.Data))/(1<<20), MaxFileBytes>>20)
	}

	return nil
}

func mimeAllowed(mime string) bool {
	return allowedMIMEs[strings.ToLower(mime)]
}

func genericMIME(mime string) bool {
	return mime == "" || strings.EqualFold(mime, "application/octet-stream")
}

// IsAVIF reports whether the file is AVIF by MIME or extension. Extension is
// consulted regardless of MIME because of the misreporting above.
func IsAVIF(f File) bool {
	return strings.EqualFold(f.MIME, "image/avif") ||
		strings.EqualFold(filepath.Ext(f.Name), ".avif")
}

func isWebP(f File) bool {
	return strings.EqualFold(f.MIME, "image/webp") ||
		strings.EqualFold(filepath.Ext(f.Name), ".webp")
}

func isPNG(f File) bool {
	return strings.EqualFold(f.MIME, "image/png") ||
		strings.EqualFold(filepath.Ext(f.Name), ".png")
}
