package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/corona10/goimagehash"
	"github.com/gen2brain/avif"
	"github.com/nfnt/resize"
	"golang.org/x/image/webp"
)

// Downscale bound for heavy images. One policy for every call site: a hero
// and a gallery image get the same treatment.
const (
	MaxWidth    = 1920
	MaxHeight   = 1080
	JPEGQuality = 85
)

// Process turns a validated candidate into the file that actually gets
// uploaded. AVIF is always re-encoded as JPEG because the storage backend
// does not reliably serve AVIF; oversized files are downscaled and re-encoded;
// everything else passes through untouched.
func Process(f File) (File, error) {
	switch {
	case IsAVIF(f):
		return convertToJPEG(f)
	case int64(len(f.Data)) > CompressThreshold:
		return compress(f)
	default:
		return f, nil
	}
}

// convertToJPEG decodes an AVIF file and re-encodes it as JPEG. AVIF may
// carry alpha and JPEG has none, so the image is composited onto an opaque
// white background before encoding; skipping that step leaves black edges.
func convertToJPEG(f File) (File, error) {
	img, err := avif.Decode(bytes.NewReader(f.Data))
	if err != nil {
		return File{}, fmt.Errorf("could not decode %q as AVIF: %w", f.Name, err)
	}

	flat := flattenOnWhite(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return File{}, fmt.Errorf("could not re-encode %q as JPEG: %w", f.Name, err)
	}

	return File{
		Name: replaceExt(f.Name, ".jpg"),
		MIME: "image/jpeg",
		Data: buf.Bytes(),
	}, nil
}

// compress downscales a heavy non-AVIF image to fit within MaxWidth x
// MaxHeight, preserving aspect ratio, and re-encodes it. WebP has no pure-Go
// encoder, so a downscaled WebP comes back as JPEG.
func compress(f File) (File, error) {
	img, err := decode(f)
	if err != nil {
		return File{}, err
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > MaxWidth || h > MaxHeight {
		scale := float64(MaxWidth) / float64(w)
		if s := float64(MaxHeight) / float64(h); s < scale {
			scale = s
		}
		img = resize.Resize(uint(float64(w)*scale+0.5), 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	out := f
	switch {
	case isPNG(f):
		if err := png.Encode(&buf, img); err != nil {
			return File{}, fmt.Errorf("could not re-encode %q as PNG: %w", f.Name, err)
		}
		out.MIME = "image/png"
	case isWebP(f):
		if err := jpeg.Encode(&buf, flattenOnWhite(img), &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return File{}, fmt.Errorf("could not re-encode %q as JPEG: %w", f.Name, err)
		}
		out.Name = replaceExt(f.Name, ".jpg")
		out.MIME = "image/jpeg"
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return File{}, fmt.Errorf("could not re-encode %q as JPEG: %w", f.Name, err)
		}
		out.MIME = "image/jpeg"
	}
	out.Data = buf.Bytes()

	return out, nil
}

// Hash computes the perceptual hash of an image, used to flag duplicate
// gallery uploads. Failures are reported, not fatal; callers may ignore them.
func Hash(f File) (string, error) {
	img, err := decode(f)
	if err != nil {
		return "", err
	}
	h, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return "", err
	}
	return h.ToString(), nil
}

func decode(f File) (image.Image, error) {
	r := bytes.NewReader(f.Data)

	var img image.Image
	var err error
	switch {
	case IsAVIF(f):
		img, err = avif.Decode(r)
	case isWebP(f):
		img, err = webp.Decode(r)
	default:
		img, _, err = image.Decode(r)
	}
	if err != nil {
		return nil, fmt.Errorf("could not decode image %q: %w", f.Name, err)
	}
	return img, nil
}

func flattenOnWhite(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.White, image.Point{}, draw.Src)
	draw.Draw(dst, b, img, b.Min, draw.Over)
	return dst
}

func replaceExt(name, ext string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i] + ext
	}
	return name + ext
}
