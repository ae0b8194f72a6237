// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package core

import (
	"strings"

	"github.com/gogpu/gputypes"
)

// Format is a framebuffer format named by a shader's format pragma.
// The zero value means "backend default" (RGBA8 unorm, or sRGB/float when the
// preset asks for it).
type Format uint8

// Supported framebuffer formats. Names follow the Vulkan spelling used by
// shader format pragmas.
const (
	FormatUnknown Format = iota
	FormatR8Unorm
	FormatR8G8Unorm
	FormatR8G8B8A8Unorm
	FormatR8G8B8A8Srgb
	FormatB8G8R8A8Unorm
	FormatA2B10G10R10UnormPack32
	FormatR16Sfloat
	FormatR16G16B16A16Sfloat
	FormatR32Sfloat
	FormatR32G32B32A32Sfloat
)

var formatNames = map[string]Format{
	"R8_UNORM":                 FormatR8Unorm,
	"R8G8_UNORM":               FormatR8G8Unorm,
	"R8G8B8A8_UNORM":           FormatR8G8B8A8Unorm,
	"R8G8B8A8_SRGB":            FormatR8G8B8A8Srgb,
	"B8G8R8A8_UNORM":           FormatB8G8R8A8Unorm,
	"A2B10G10R10_UNORM_PACK32": FormatA2B10G10R10UnormPack32,
	"R16_SFLOAT":               FormatR16Sfloat,
	"R16G16B16A16_SFLOAT":      FormatR16G16B16A16Sfloat,
	"R32_SFLOAT":               FormatR32Sfloat,
	"R32G32B32A32_SFLOAT":      FormatR32G32B32A32Sfloat,
}

// ParseFormat parses a pragma format name. Matching is case-insensitive.
func ParseFormat(s string) (Format, bool) {
	f, ok := formatNames[strings.ToUpper(strings.TrimSpace(s))]
	return f, ok
}

// String returns the pragma spelling of the format.
func (f Format) String() string {
	for name, v := range formatNames {
		if v == f {
			return name
		}
	}
	return "UNKNOWN"
}

// IsFloat reports whether the format stores floating point channels.
func (f Format) IsFloat() bool {
	switch f {
	case FormatR16Sfloat, FormatR16G16B16A16Sfloat, FormatR32Sfloat, FormatR32G32B32A32Sfloat:
		return true
	}
	return false
}

// Resolve picks the effective format of a pass output from the shader
// pragma and the preset framebuffer flags. An explicit pragma wins; otherwise
// sRGB beats float, which beats the RGBA8 default.
func (f Format) Resolve(srgb, float bool) Format {
	switch {
	case f != FormatUnknown:
		return f
	case srgb:
		return FormatR8G8B8A8Srgb
	case float:
		return FormatR16G16B16A16Sfloat
	default:
		return FormatR8G8B8A8Unorm
	}
}

// GPU returns the WebGPU texture format.
func (f Format) GPU() gputypes.TextureFormat {
	switch f {
	case FormatR8Unorm:
		return gputypes.TextureFormatR8Unorm
	case FormatR8G8Unorm:
		return gputypes.TextureFormatRG8Unorm
	case FormatR8G8B8A8Srgb:
		return gputypes.TextureFormatRGBA8UnormSrgb
	case FormatB8G8R8A8Unorm:
		return gputypes.TextureFormatBGRA8Unorm
	case FormatA2B10G10R10UnormPack32:
		return gputypes.TextureFormatRGB10A2Unorm
	case FormatR16Sfloat:
		return gputypes.TextureFormatR16Float
	case FormatR16G16B16A16Sfloat:
		return gputypes.TextureFormatRGBA16Float
	case FormatR32Sfloat:
		return gputypes.TextureFormatR32Float
	case FormatR32G32B32A32Sfloat:
		return gputypes.TextureFormatRGBA32Float
	default:
		return gputypes.TextureFormatRGBA8Unorm
	}
}
