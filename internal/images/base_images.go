package images

import (
	"context"
	"fmt"

	"zcomx/internal/store"
)

// Variant names one (image, size) pair awaiting optimization.
type Variant struct {
	Image string
	Size  string
}

// Optimizer enqueues the optimization of a single (image, size) pair.
type Optimizer func(ctx context.Context, image, size string) error

// BaseImages is a collection of image names checked against the
// optimization log at a fixed set of sizes.
type BaseImages struct {
	store *store.Store
	names []string
	sizes []string
}

// NewBaseImages builds a collection over explicit sizes.
func NewBaseImages(st *store.Store, names, sizes []string) *BaseImages {
	return &BaseImages{store: st, names: names, sizes: sizes}
}

// CBZImagesForRelease tracks only the cbz variant, the single size the
// fileshare pipeline blocks on.
func CBZImagesForRelease(st *store.Store, names []string) *BaseImages {
	return NewBaseImages(st, names, []string{SizeCBZ})
}

// AllSizesImages tracks every tagged size.
func AllSizesImages(st *store.Store, names []string) *BaseImages {
	return NewBaseImages(st, names, AllSizes())
}

// Unoptimized returns the (image, size) pairs with no optimization log
// entry, in collection order.
func (b *BaseImages) Unoptimized(ctx context.Context) ([]Variant, error) {
	var pending []Variant
	for _, name := range b.names {
		for _, size := range b.sizes {
			optimized, err := b.store.IsOptimized(ctx, name, size)
			if err != nil {
				return nil, fmt.Errorf("check %s@%s: %w", name, size, err)
			}
			if !optimized {
				pending = append(pending, Variant{Image: name, Size: size})
			}
		}
	}
	return pending, nil
}

// HasUnoptimized reports whether any tracked variant still needs work.
func (b *BaseImages) HasUnoptimized(ctx context.Context) (bool, error) {
	pending, err := b.Unoptimized(ctx)
	if err != nil {
		return false, err
	}
	return len(pending) > 0, nil
}

// Optimize enqueues one job per unoptimized variant and returns how many
// were queued.
func (b *BaseImages) Optimize(ctx context.Context, enqueue Optimizer) (int, error) {
	pending, err := b.Unoptimized(ctx)
	if err != nil {
		return 0, err
	}
	for _, variant := range pending {
		if err := enqueue(ctx, variant.Image, variant.Size); err != nil {
			return 0, fmt.Errorf("enqueue optimize %s@%s: %w", variant.Image, variant.Size, err)
		}
	}
	return len(pending), nil
}
