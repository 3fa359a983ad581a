// Package images exposes the size-tagged image pipeline hooks the release
// path depends on: locating sized variants on disk, probing dimensions,
// and enqueueing optimization work for variants not yet produced.
package images

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"zcomx/internal/config"
)

// Tagged sizes. Every uploaded image eventually has all three variants.
const (
	SizeOriginal = "original"
	SizeWeb      = "web"
	SizeCBZ      = "cbz"
)

// AllSizes returns the tagged sizes in pipeline order.
func AllSizes() []string {
	return []string{SizeOriginal, SizeWeb, SizeCBZ}
}

// CBZ acceptance thresholds. A page narrower than MinCBZWidth is still
// acceptable when it is tall enough, which exempts landscape spreads that
// were scanned at full height.
const (
	MinCBZWidth        = 1600
	CBZHeightExemption = 2560
)

// Path returns the on-disk location of a sized variant under the uploads
// tree: <uploads>/<size>/<name>.
func Path(cfg *config.Config, size, name string) string {
	return filepath.Join(cfg.Paths.UploadsDir, size, name)
}

// Dimensions probes an image file's width and height without decoding
// pixel data. PNG, JPEG, GIF and WebP are recognized.
func Dimensions(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode image config %s: %w", filepath.Base(path), err)
	}
	return cfg.Width, cfg.Height, nil
}

// MeetsCBZMinimum reports whether an image with the given dimensions is
// large enough for CBZ inclusion.
func MeetsCBZMinimum(width, height int) bool {
	return width >= MinCBZWidth || height >= CBZHeightExemption
}

// IsLandscape reports whether an image file is wider than tall. Used to
// pick the indicia orientation from a book's last page.
func IsLandscape(path string) (bool, error) {
	width, height, err := Dimensions(path)
	if err != nil {
		return false, err
	}
	return width > height, nil
}
