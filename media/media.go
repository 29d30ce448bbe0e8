// Package media turns uploaded images into durable references.
//
// Every image is decoded, scaled down to MaxWidth if needed and re-encoded
// as JPEG before being handed to an ImageStore, which returns the URL the
// project record keeps.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const (
	MaxWidth      = 800
	MaxUploadSize = 10 << 20 // 10MB
	jpegQuality   = 80
)

// ErrTooLarge is returned when an upload exceeds MaxUploadSize.
var ErrTooLarge = errors.New("image too large (max 10MB)")

// ImageStore persists processed images and returns a durable URL for them.
type ImageStore interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Image is a processed upload ready to be stored.
type Image struct {
	Name   string
	Width  int
	Height int
	Data   []byte
}

// Process decodes an image from src, resizes it to MaxWidth when wider and
// encodes it as JPEG. The returned name is a slug of originalName with a
// .jpg extension.
func Process(src io.Reader, originalName string) (Image, error) {
	raw, err := io.ReadAll(io.LimitReader(src, MaxUploadSize+1))
	if err != nil {
		return Image{}, fmt.Errorf("read image: %w", err)
	}
	if len(raw) > MaxUploadSize {
		return Image{}, ErrTooLarge
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Image{}, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > MaxWidth {
		newH := h * MaxWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, MaxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w, h = MaxWidth, newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Image{}, fmt.Errorf("encode jpeg: %w", err)
	}

	return Image{
		Name:   baseName(originalName) + ".jpg",
		Width:  w,
		Height: h,
		Data:   buf.Bytes(),
	}, nil
}

// baseName slugifies a file name without its extension.
func baseName(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	var b strings.Builder
	prev := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	s := strings.TrimRight(b.String(), "-")
	if s == "" {
		return "image"
	}
	return s
}
