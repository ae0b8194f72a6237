// Package lut loads the user textures (lookup tables) a preset declares.
//
// Textures are decoded once when a chain is activated. PNG, JPEG, BMP, TIFF
// and WebP are supported; EXIF orientation is applied. When the preset asks
// for mipmaps, the full chain down to 1x1 is generated on the CPU with a box
// filter so backends without mip generation can upload it as is.
package lut

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math/bits"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	// Formats beyond the standard library's PNG and JPEG.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/shaderchain/core"
	"github.com/gogpu/shaderchain/preset"
)

// ErrLoad matches every *LoadError.
var ErrLoad = errors.New("lut: cannot load texture")

// LoadError reports a texture that could not be read or decoded.
type LoadError struct {
	Name string
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("lut: texture %q (%s): %v", e.Name, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is reports whether target is ErrLoad.
func (e *LoadError) Is(target error) bool { return target == ErrLoad }

// Texture is a decoded user texture.
type Texture struct {
	Config preset.TextureConfig

	// Levels holds the mip chain; Levels[0] is the full image. Only level 0
	// is present unless Config.Mipmap is set.
	Levels []*image.NRGBA
}

// Name returns the preset name of the texture.
func (t *Texture) Name() string { return t.Config.Name }

// Size returns the size of level 0.
func (t *Texture) Size() core.Size {
	b := t.Levels[0].Bounds()
	return core.Sz(uint32(b.Dx()), uint32(b.Dy()))
}

// Format returns the upload format. Texels are straight-alpha RGBA8.
func (t *Texture) Format() core.Format { return core.FormatR8G8B8A8Unorm }

// Load decodes the texture cfg describes.
func Load(cfg preset.TextureConfig) (*Texture, error) {
	img, err := imaging.Open(cfg.Path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &LoadError{Name: cfg.Name, Path: cfg.Path, Err: err}
	}
	base := imaging.Clone(img)
	if base.Bounds().Empty() {
		return nil, &LoadError{Name: cfg.Name, Path: cfg.Path, Err: errors.New("empty image")}
	}

	t := &Texture{Config: cfg, Levels: []*image.NRGBA{base}}
	if cfg.Mipmap {
		t.Levels = MipChain(base)
	}
	return t, nil
}

// LoadAll decodes cfgs concurrently, at most workers at a time (workers <= 0
// means one per texture). The result is in cfgs order. The first failure
// cancels the remaining loads.
func LoadAll(ctx context.Context, cfgs []preset.TextureConfig, workers int) ([]*Texture, error) {
	out := make([]*Texture, len(cfgs))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, cfg := range cfgs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := Load(cfg)
			if err != nil {
				return err
			}
			out[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// MipLevels returns the number of levels in a full mip chain for size.
func MipLevels(size core.Size) int {
	m := max(size.Width, size.Height)
	if m == 0 {
		return 0
	}
	return bits.Len32(m)
}

// MipChain returns base followed by successively halved copies down to
// 1x1. Odd dimensions round down, never below 1.
func MipChain(base *image.NRGBA) []*image.NRGBA {
	b := base.Bounds()
	n := MipLevels(core.Sz(uint32(b.Dx()), uint32(b.Dy())))
	levels := make([]*image.NRGBA, 0, n)
	levels = append(levels, base)
	w, h := b.Dx(), b.Dy()
	for len(levels) < n {
		w, h = max(1, w/2), max(1, h/2)
		levels = append(levels, imaging.Resize(levels[len(levels)-1], w, h, imaging.Box))
	}
	return levels
}
