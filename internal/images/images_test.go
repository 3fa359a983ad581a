package images_test

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"zcomx/internal/images"
	"zcomx/internal/testsupport"
)

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
}

func TestDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.png")
	writePNG(t, path, 1700, 2400)

	width, height, err := images.Dimensions(path)
	if err != nil {
		t.Fatalf("Dimensions: %v", err)
	}
	if width != 1700 || height != 2400 {
		t.Fatalf("got %dx%d, want 1700x2400", width, height)
	}
}

func TestDimensionsMissingFile(t *testing.T) {
	if _, _, err := images.Dimensions(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestMeetsCBZMinimum(t *testing.T) {
	cases := []struct {
		width, height int
		want          bool
	}{
		{1600, 100, true},   // exactly at minimum width
		{1599, 2559, false}, // under both thresholds
		{800, 2560, true},   // tall enough to be exempt
		{3000, 4000, true},
	}
	for _, tc := range cases {
		if got := images.MeetsCBZMinimum(tc.width, tc.height); got != tc.want {
			t.Errorf("MeetsCBZMinimum(%d, %d) = %v, want %v", tc.width, tc.height, got, tc.want)
		}
	}
}

func TestIsLandscape(t *testing.T) {
	dir := t.TempDir()
	landscape := filepath.Join(dir, "wide.png")
	portrait := filepath.Join(dir, "tall.png")
	writePNG(t, landscape, 200, 100)
	writePNG(t, portrait, 100, 200)

	if got, err := images.IsLandscape(landscape); err != nil || !got {
		t.Fatalf("IsLandscape(wide) = %v, %v", got, err)
	}
	if got, err := images.IsLandscape(portrait); err != nil || got {
		t.Fatalf("IsLandscape(tall) = %v, %v", got, err)
	}
}

func TestBaseImagesOptimize(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	names := []string{"p1.png", "p2.png"}
	collection := images.CBZImagesForRelease(s, names)

	pending, err := collection.Unoptimized(ctx)
	if err != nil {
		t.Fatalf("Unoptimized: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending variants, got %d", len(pending))
	}

	if err := s.MarkOptimized(ctx, "p1.png", images.SizeCBZ); err != nil {
		t.Fatalf("MarkOptimized: %v", err)
	}

	var queued []images.Variant
	count, err := collection.Optimize(ctx, func(_ context.Context, img, size string) error {
		queued = append(queued, images.Variant{Image: img, Size: size})
		return nil
	})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if count != 1 || len(queued) != 1 {
		t.Fatalf("expected 1 queued job, got count=%d queued=%v", count, queued)
	}
	if queued[0].Image != "p2.png" || queued[0].Size != images.SizeCBZ {
		t.Fatalf("unexpected variant: %+v", queued[0])
	}

	has, err := collection.HasUnoptimized(ctx)
	if err != nil {
		t.Fatalf("HasUnoptimized: %v", err)
	}
	if !has {
		t.Fatal("p2.png still unoptimized")
	}
}

func TestAllSizesImages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	collection := images.AllSizesImages(s, []string{"cover.png"})
	pending, err := collection.Unoptimized(ctx)
	if err != nil {
		t.Fatalf("Unoptimized: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("expected one variant per size, got %d", len(pending))
	}
}
