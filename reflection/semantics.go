// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package reflection

import (
	"strconv"
	"strings"
)

// Limits shared by every target.
const (
	// MaxBindings is the number of binding slots in group 0.
	MaxBindings = 16

	// MaxPushSize is the largest push block in bytes.
	MaxPushSize = 128

	// maxIndex bounds the numeric suffix of indexed texture names.
	maxIndex = 1 << 16
)

// Semantic is the meaning of a uniform member.
type Semantic uint8

const (
	SemanticMVP                   Semantic = iota // mat4
	SemanticOutputSize                            // vec4, this pass's output
	SemanticFinalViewportSize                     // vec4, the viewport
	SemanticFrameCount                            // uint, wrapped by frame_count_mod
	SemanticFrameDirection                        // int, 1 or -1 when rewinding
	SemanticRotation                              // uint, quarter turns
	SemanticTotalSubFrames                        // uint
	SemanticCurrentSubFrame                       // uint
	SemanticOriginalAspect                        // float
	SemanticOriginalAspectRotated                 // float
	SemanticOriginalFPS                           // float
	SemanticFrameTimeDelta                        // uint, milliseconds

	// SemanticTextureSize is the vec4 size of the texture in UniformKey.Texture.
	SemanticTextureSize

	// SemanticParameter is the float user parameter named UniformKey.Name.
	SemanticParameter
)

var semanticNames = [...]string{
	SemanticMVP:                   "MVP",
	SemanticOutputSize:            "OutputSize",
	SemanticFinalViewportSize:     "FinalViewportSize",
	SemanticFrameCount:            "FrameCount",
	SemanticFrameDirection:        "FrameDirection",
	SemanticRotation:              "Rotation",
	SemanticTotalSubFrames:        "TotalSubFrames",
	SemanticCurrentSubFrame:       "CurrentSubFrame",
	SemanticOriginalAspect:        "OriginalAspect",
	SemanticOriginalAspectRotated: "OriginalAspectRotated",
	SemanticOriginalFPS:           "OriginalFPS",
	SemanticFrameTimeDelta:        "FrameTimeDelta",
	SemanticTextureSize:           "TextureSize",
	SemanticParameter:             "Parameter",
}

func (s Semantic) String() string {
	if int(s) < len(semanticNames) {
		return semanticNames[s]
	}
	return "Semantic(" + strconv.Itoa(int(s)) + ")"
}

// valueKind is the type class a semantic requires.
type valueKind uint8

const (
	kindMat4 valueKind = iota
	kindVec4
	kindInteger
	kindFloat
)

func (k valueKind) String() string {
	switch k {
	case kindMat4:
		return "mat4x4<f32>"
	case kindVec4:
		return "vec4<f32>"
	case kindInteger:
		return "a 32-bit integer scalar"
	default:
		return "f32"
	}
}

func (s Semantic) kind() valueKind {
	switch s {
	case SemanticMVP:
		return kindMat4
	case SemanticOutputSize, SemanticFinalViewportSize, SemanticTextureSize:
		return kindVec4
	case SemanticFrameCount, SemanticFrameDirection, SemanticRotation,
		SemanticTotalSubFrames, SemanticCurrentSubFrame, SemanticFrameTimeDelta:
		return kindInteger
	default:
		return kindFloat
	}
}

// variableSemantics is the fixed name table for built-in uniforms.
var variableSemantics = map[string]Semantic{
	"MVP":                   SemanticMVP,
	"OutputSize":            SemanticOutputSize,
	"FinalViewportSize":     SemanticFinalViewportSize,
	"FrameCount":            SemanticFrameCount,
	"FrameDirection":        SemanticFrameDirection,
	"Rotation":              SemanticRotation,
	"TotalSubFrames":        SemanticTotalSubFrames,
	"CurrentSubFrame":       SemanticCurrentSubFrame,
	"OriginalAspect":        SemanticOriginalAspect,
	"OriginalAspectRotated": SemanticOriginalAspectRotated,
	"OriginalFPS":           SemanticOriginalFPS,
	"FrameTimeDelta":        SemanticFrameTimeDelta,
}

// TextureSemantic is the meaning of a sampled texture.
type TextureSemantic uint8

const (
	// TextureOriginal is the chain input of the current frame.
	TextureOriginal TextureSemantic = iota
	// TextureSource is the previous pass output, or the chain input for pass 0.
	TextureSource
	// TextureOriginalHistory is the chain input Index frames ago (Index ≥ 1).
	TextureOriginalHistory
	// TexturePassOutput is the output of pass Index.
	TexturePassOutput
	// TexturePassFeedback is the previous-frame output of pass Index.
	TexturePassFeedback
	// TextureUser is a preset texture or pass alias called Name.
	TextureUser
)

// TextureKey identifies what a texture binding samples.
type TextureKey struct {
	Semantic TextureSemantic
	Index    int    // history depth or pass index
	Name     string // TextureUser only
}

func (k TextureKey) String() string {
	switch k.Semantic {
	case TextureOriginal:
		return "Original"
	case TextureSource:
		return "Source"
	case TextureOriginalHistory:
		return "OriginalHistory" + strconv.Itoa(k.Index)
	case TexturePassOutput:
		return "PassOutput" + strconv.Itoa(k.Index)
	case TexturePassFeedback:
		return "PassFeedback" + strconv.Itoa(k.Index)
	default:
		return k.Name
	}
}

// UniformKey identifies what a uniform member holds.
type UniformKey struct {
	Semantic Semantic
	Texture  TextureKey // SemanticTextureSize only
	Name     string     // SemanticParameter only
}

func (k UniformKey) String() string {
	switch k.Semantic {
	case SemanticTextureSize:
		return k.Texture.String() + "Size"
	case SemanticParameter:
		return k.Name
	default:
		return k.Semantic.String()
	}
}

// Classifier maps declared names to semantics.
type Classifier struct {
	// User holds the names that are opaque user bindings: preset textures,
	// pass aliases (and their Feedback forms) and parameter names.
	User map[string]bool
}

// Texture classifies a texture name.
func (c Classifier) Texture(name string) (TextureKey, bool) {
	switch name {
	case "Original":
		return TextureKey{Semantic: TextureOriginal}, true
	case "Source":
		return TextureKey{Semantic: TextureSource}, true
	}
	// OriginalHistory must be tried before anything keyed on "Original".
	if i, ok := indexed(name, "OriginalHistory"); ok {
		if i == 0 {
			return TextureKey{Semantic: TextureOriginal}, true
		}
		return TextureKey{Semantic: TextureOriginalHistory, Index: i}, true
	}
	if i, ok := indexed(name, "PassOutput"); ok {
		return TextureKey{Semantic: TexturePassOutput, Index: i}, true
	}
	if i, ok := indexed(name, "PassFeedback"); ok {
		return TextureKey{Semantic: TexturePassFeedback, Index: i}, true
	}
	if c.User[name] {
		return TextureKey{Semantic: TextureUser, Name: name}, true
	}
	return TextureKey{}, false
}

// Uniform classifies a uniform member name. Built-in names win over texture
// sizes, which win over user parameters.
func (c Classifier) Uniform(name string) (UniformKey, bool) {
	if s, ok := variableSemantics[name]; ok {
		return UniformKey{Semantic: s}, true
	}
	if tex, ok := strings.CutSuffix(name, "Size"); ok && tex != "" {
		if k, ok := c.Texture(tex); ok {
			return UniformKey{Semantic: SemanticTextureSize, Texture: k}, true
		}
	}
	if c.User[name] {
		return UniformKey{Semantic: SemanticParameter, Name: name}, true
	}
	return UniformKey{}, false
}

// indexed parses prefix followed by a decimal index.
func indexed(name, prefix string) (int, bool) {
	digits, ok := strings.CutPrefix(name, prefix)
	if !ok || digits == "" || len(digits) > 5 {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	i, err := strconv.Atoi(digits)
	if err != nil || i >= maxIndex {
		return 0, false
	}
	return i, true
}
