package graph

import (
	"math"

	"github.com/gogpu/shaderchain/core"
)

// sizePasses computes every output size in pass order. Each pass scales
// against the output of the pass before it, the chain input or the viewport.
func (b *builder) sizePasses(passes []ResolvedPass) {
	source := b.opts.Source
	last := len(passes) - 1
	for i := range passes {
		cfg := &passes[i].Config
		source = OutputSize(cfg.ScaleX, cfg.ScaleY, i == last, source, b.opts.Source, b.opts.Viewport)
		passes[i].OutputSize = source
	}
}

// OutputSize returns the output size of a pass scaled by x and y. source is
// the output of the previous pass (the chain input for pass 0); final marks
// the last pass, which follows the viewport when neither axis sets a scale
// type. An unset axis otherwise follows source.
func OutputSize(x, y core.Scale, final bool, source, original, viewport core.Size) core.Size {
	final = final && x.Type == core.ScaleUnset && y.Type == core.ScaleUnset
	return core.Size{
		Width:  axis(x, final, source.Width, original.Width, viewport.Width),
		Height: axis(y, final, source.Height, original.Height, viewport.Height),
	}
}

func axis(s core.Scale, final bool, source, original, viewport uint32) uint32 {
	factor := s.Factor
	if factor <= 0 {
		factor = 1
	}
	var ref uint32
	switch s.Type {
	case core.ScaleAbsolute:
		return clampDim(factor)
	case core.ScaleViewport:
		ref = viewport
	case core.ScaleOriginal:
		ref = original
	case core.ScaleSource:
		ref = source
	default:
		if final {
			ref, factor = viewport, 1
		} else {
			ref, factor = source, 1
		}
	}
	return clampDim(math.Round(float64(ref) * factor))
}

func clampDim(v float64) uint32 {
	return uint32(core.Clamp(v, 1, MaxOutputDimension))
}
