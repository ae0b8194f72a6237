package shaderchain

import (
	"github.com/gogpu/shaderchain/core"
	"github.com/gogpu/shaderchain/graph"
	"github.com/gogpu/shaderchain/preprocess"
	"github.com/gogpu/shaderchain/preset"
	"github.com/gogpu/shaderchain/reflection"
)

// ParsePreset parses preset text. Relative paths resolve against baseDir.
func ParsePreset(text, baseDir string) (*preset.Preset, error) {
	return preset.Parse(text, baseDir)
}

// PreprocessShader expands the includes and pragmas of the shader at path.
func PreprocessShader(path string) (*preprocess.Source, error) {
	return preprocess.File(path)
}

// NormalizeReflection maps the raw reflection of a compiled pass onto
// semantics.
func NormalizeReflection(raw reflection.Raw, stage core.Stage) (*reflection.ShaderReflection, error) {
	return reflection.Normalize(raw, stage)
}

// BuildPipeline resolves the render graph of p from one reflection per pass.
func BuildPipeline(p *preset.Preset, reflections []*reflection.ShaderReflection, opts graph.Options) (*graph.Pipeline, error) {
	return graph.Build(p, reflections, opts)
}
