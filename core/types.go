// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package core

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"golang.org/x/exp/constraints"
)

// FilterMode selects texel filtering when a pass samples a texture.
type FilterMode uint8

const (
	// FilterNearest samples the closest texel.
	FilterNearest FilterMode = iota
	// FilterLinear interpolates between neighbouring texels.
	FilterLinear
)

// String returns the preset spelling of the mode.
func (f FilterMode) String() string {
	if f == FilterLinear {
		return "linear"
	}
	return "nearest"
}

// GPU returns the equivalent WebGPU filter mode.
func (f FilterMode) GPU() gputypes.FilterMode {
	if f == FilterLinear {
		return gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest
}

// WrapMode selects how texture coordinates outside [0, 1] are resolved.
type WrapMode uint8

const (
	// WrapClampToBorder returns the border color (transparent black).
	WrapClampToBorder WrapMode = iota
	// WrapClampToEdge clamps to the outermost texel.
	WrapClampToEdge
	// WrapRepeat tiles the texture.
	WrapRepeat
	// WrapMirroredRepeat tiles the texture, mirroring every other tile.
	WrapMirroredRepeat
)

var wrapNames = [...]string{
	WrapClampToBorder:  "clamp_to_border",
	WrapClampToEdge:    "clamp_to_edge",
	WrapRepeat:         "repeat",
	WrapMirroredRepeat: "mirrored_repeat",
}

// String returns the preset spelling of the mode.
func (w WrapMode) String() string {
	if int(w) < len(wrapNames) {
		return wrapNames[w]
	}
	return fmt.Sprintf("WrapMode(%d)", w)
}

// ParseWrapMode parses a preset wrap mode value. Matching is case-insensitive.
func ParseWrapMode(s string) (WrapMode, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range wrapNames {
		if s == name {
			return WrapMode(i), true
		}
	}
	return 0, false
}

// AddressMode returns the closest WebGPU address mode.
// WebGPU has no border clamping, so WrapClampToBorder degrades to edge clamping;
// backends with native border support should switch on WrapMode directly.
func (w WrapMode) AddressMode() gputypes.AddressMode {
	switch w {
	case WrapRepeat:
		return gputypes.AddressModeRepeat
	case WrapMirroredRepeat:
		return gputypes.AddressModeMirrorRepeat
	default:
		return gputypes.AddressModeClampToEdge
	}
}

// ScaleType is the reference a pass scales its output size against.
type ScaleType uint8

const (
	// ScaleUnset means the preset did not name a scale type for the axis.
	// It acts as ScaleSource, except on a final pass whose axes are both
	// unset, which follows the viewport.
	ScaleUnset ScaleType = iota
	// ScaleSource scales the previous pass output (or the original input for pass 0).
	ScaleSource
	// ScaleViewport scales the final viewport.
	ScaleViewport
	// ScaleAbsolute uses the factor verbatim as a pixel count.
	ScaleAbsolute
	// ScaleOriginal scales the original input frame.
	ScaleOriginal
)

var scaleNames = [...]string{
	ScaleUnset:    "",
	ScaleSource:   "source",
	ScaleViewport: "viewport",
	ScaleAbsolute: "absolute",
	ScaleOriginal: "original",
}

// String returns the preset spelling of the scale type.
func (s ScaleType) String() string {
	if int(s) < len(scaleNames) {
		return scaleNames[s]
	}
	return fmt.Sprintf("ScaleType(%d)", s)
}

// ParseScaleType parses a preset scale type value. Matching is case-insensitive.
func ParseScaleType(s string) (ScaleType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	for i, name := range scaleNames {
		if s == name {
			return ScaleType(i), true
		}
	}
	return 0, false
}

// Scale is the scaling policy of one axis.
// For ScaleAbsolute, Factor is a whole pixel count.
type Scale struct {
	Type   ScaleType
	Factor float64
}

// Stage is a bitmask of shader stages.
type Stage uint8

const (
	// StageVertex is the vertex stage.
	StageVertex Stage = 1 << iota
	// StageFragment is the fragment stage.
	StageFragment

	// StageNone is the empty mask.
	StageNone Stage = 0
	// StageAll covers every stage a pass has.
	StageAll = StageVertex | StageFragment
)

// Has reports whether every stage in o is present in s.
func (s Stage) Has(o Stage) bool { return s&o == o }

// String implements fmt.Stringer.
func (s Stage) String() string {
	switch s {
	case StageNone:
		return "none"
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageAll:
		return "vertex|fragment"
	}
	return fmt.Sprintf("Stage(%#x)", uint8(s))
}

// Size is a 2D extent in pixels.
type Size struct {
	Width  uint32
	Height uint32
}

// Sz is shorthand for Size{w, h}.
func Sz(w, h uint32) Size { return Size{Width: w, Height: h} }

// IsZero reports whether either dimension is zero.
func (s Size) IsZero() bool { return s.Width == 0 || s.Height == 0 }

// Aspect returns width/height, or 0 for an empty size.
func (s Size) Aspect() float64 {
	if s.Height == 0 {
		return 0
	}
	return float64(s.Width) / float64(s.Height)
}

// Vec4 returns the size uniform layout used by shaders:
// (width, height, 1/width, 1/height).
func (s Size) Vec4() [4]float32 {
	var v [4]float32
	v[0], v[1] = float32(s.Width), float32(s.Height)
	if s.Width > 0 {
		v[2] = 1 / v[0]
	}
	if s.Height > 0 {
		v[3] = 1 / v[1]
	}
	return v
}

// String implements fmt.Stringer.
func (s Size) String() string { return fmt.Sprintf("%dx%d", s.Width, s.Height) }

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
