// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package reflection

import (
	"github.com/gogpu/naga/ir"

	"github.com/gogpu/shaderchain/core"
)

// Raw is the native reflection of one compiled pass shader.
type Raw struct {
	// Module is the shader IR. Both entry points live in the same module.
	Module *ir.Module

	// Target decides whether the push block is native or emulated.
	Target core.Target

	// UserNames marks names as opaque user bindings. Texture, uniform and
	// sampler names that are neither built-in semantics nor listed here are
	// rejected with AmbiguousSemanticError.
	UserNames map[string]bool
}

// BlockKind says which block a uniform member lives in.
type BlockKind uint8

const (
	BlockUniform BlockKind = iota
	BlockPush
)

func (b BlockKind) String() string {
	if b == BlockPush {
		return "push"
	}
	return "uniform"
}

// UniformBlock is the bound uniform buffer.
type UniformBlock struct {
	Name    string
	Binding uint32
	Size    uint32
	Stage   core.Stage
}

// PushBlock is the push (or root) constant block.
type PushBlock struct {
	Name  string
	Size  uint32
	Stage core.Stage

	// Emulated is set when the target has no push constants. The backend
	// then binds the block as a uniform buffer at Binding.
	Emulated bool

	// Binding is the lowest slot left free by every other binding. Backends
	// without push constants (WebGPU included) bind the block there.
	Binding uint32
}

// Uniform is one uniform or push block member.
type Uniform struct {
	Key    UniformKey
	Name   string // declared member name
	Block  BlockKind
	Offset uint32
	Size   uint32
}

// Texture is one sampled texture binding.
type Texture struct {
	Key     TextureKey
	Name    string // declared variable name
	Binding uint32
	Stage   core.Stage

	// Depth is set for depth textures, which need a non-filtering sample type.
	Depth bool

	// HasSampler reports whether a TSampler binding was paired with the
	// texture; SamplerBinding is meaningful only then.
	HasSampler     bool
	SamplerBinding uint32
}

// ShaderReflection is the normalized binding model of one pass.
//
// Uniforms are ordered by block then offset; Textures by binding.
type ShaderReflection struct {
	UBO  *UniformBlock
	Push *PushBlock

	Uniforms []Uniform
	Textures []Texture
}

// Uniform returns the member holding key.
func (r *ShaderReflection) Uniform(key UniformKey) (Uniform, bool) {
	for _, u := range r.Uniforms {
		if u.Key == key {
			return u, true
		}
	}
	return Uniform{}, false
}

// Texture returns the binding sampling key.
func (r *ShaderReflection) Texture(key TextureKey) (Texture, bool) {
	for _, t := range r.Textures {
		if t.Key == key {
			return t, true
		}
	}
	return Texture{}, false
}

// PushMembers returns the members routed through the push block.
func (r *ShaderReflection) PushMembers() []Uniform {
	var out []Uniform
	for _, u := range r.Uniforms {
		if u.Block == BlockPush {
			out = append(out, u)
		}
	}
	return out
}

// Opaque returns the declared names of user bindings (textures and
// uniforms) in binding order.
func (r *ShaderReflection) Opaque() []string {
	var out []string
	for _, t := range r.Textures {
		if t.Key.Semantic == TextureUser {
			out = append(out, t.Name)
		}
	}
	for _, u := range r.Uniforms {
		if u.Key.Semantic == SemanticParameter ||
			(u.Key.Semantic == SemanticTextureSize && u.Key.Texture.Semantic == TextureUser) {
			out = append(out, u.Name)
		}
	}
	return out
}
