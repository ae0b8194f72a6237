package preset

import "github.com/gogpu/shaderchain/core"

// Preset is a parsed shader chain.
type Preset struct {
	// Passes in execution order. Never empty.
	Passes []PassConfig

	// Textures are the user textures (LUTs) in declaration order.
	// Names are unique.
	Textures []TextureConfig

	// Parameters are the preset-level parameter values in declaration order.
	// Names are unique and case-sensitive.
	Parameters []ParameterConfig
}

// PassConfig configures one pass of the chain.
type PassConfig struct {
	// Shader is the absolute path of the pass shader.
	Shader string

	// Alias names the pass output so later passes (and earlier passes, via
	// feedback) can sample it by name. Empty when unset.
	Alias string

	Filter      core.FilterMode
	Wrap        core.WrapMode
	MipmapInput bool

	ScaleX core.Scale
	ScaleY core.Scale

	// FrameCountMod is the period of the frame count uniform; 0 means unbounded.
	FrameCountMod uint32

	FloatFramebuffer bool
	SRGBFramebuffer  bool
}

// TextureConfig describes a user texture loaded once when the preset is
// activated.
type TextureConfig struct {
	Name   string
	Path   string // absolute
	Filter core.FilterMode
	Wrap   core.WrapMode
	Mipmap bool
}

// ParameterConfig is a tunable shader parameter.
//
// Presets usually only carry a default; bounds and step normally come from
// the shader's parameter pragmas and are merged in by the preprocessor.
// Bounded reports whether Min and Max are meaningful.
type ParameterConfig struct {
	Name    string
	Default float64
	Bounded bool
	Min     float64
	Max     float64
	Step    float64
}

// Clamp limits an override to the parameter's bounds. Unbounded parameters
// return v unchanged.
func (p ParameterConfig) Clamp(v float64) float64 {
	if !p.Bounded {
		return v
	}
	return core.Clamp(v, p.Min, p.Max)
}

// Texture returns the user texture called name.
func (p *Preset) Texture(name string) (TextureConfig, bool) {
	for _, t := range p.Textures {
		if t.Name == name {
			return t, true
		}
	}
	return TextureConfig{}, false
}

// TextureIndex returns the declaration index of the user texture called
// name, or -1.
func (p *Preset) TextureIndex(name string) int {
	for i, t := range p.Textures {
		if t.Name == name {
			return i
		}
	}
	return -1
}

// Parameter returns the parameter called name.
func (p *Preset) Parameter(name string) (ParameterConfig, bool) {
	for _, prm := range p.Parameters {
		if prm.Name == name {
			return prm, true
		}
	}
	return ParameterConfig{}, false
}

// PassByAlias returns the index of the pass whose alias is name, or -1.
func (p *Preset) PassByAlias(name string) int {
	if name == "" {
		return -1
	}
	for i, pass := range p.Passes {
		if pass.Alias == name {
			return i
		}
	}
	return -1
}
