package compiler

import (
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/hlsl"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/msl"
	"github.com/gogpu/naga/spirv"

	"github.com/gogpu/shaderchain/core"
)

func init() {
	Register(core.TargetSPIRV, EmitterFunc(emitSPIRV))
	Register(core.TargetGLSL, EmitterFunc(emitGLSL))
	Register(core.TargetHLSL, EmitterFunc(emitHLSL))
	Register(core.TargetMSL, EmitterFunc(emitMSL))
}

func emitSPIRV(m *ir.Module, opts Options) ([]Unit, error) {
	code, err := naga.GenerateSPIRV(m, spirv.Options{Version: spirv.Version1_3, Debug: opts.Debug})
	if err != nil {
		return nil, err
	}
	return []Unit{{Stage: core.StageAll, Code: code}}, nil
}

// emitGLSL compiles each stage separately; GLSL has one entry point per
// program object stage.
func emitGLSL(m *ir.Module, _ Options) ([]Unit, error) {
	stages := []struct {
		ir   ir.ShaderStage
		core core.Stage
	}{
		{ir.StageVertex, core.StageVertex},
		{ir.StageFragment, core.StageFragment},
	}
	units := make([]Unit, 0, len(stages))
	for _, s := range stages {
		ep, err := entryPoint(m, s.ir)
		if err != nil {
			return nil, err
		}
		opts := glsl.DefaultOptions()
		opts.LangVersion = glsl.Version330
		opts.EntryPoint = ep.Name
		code, _, err := glsl.Compile(m, opts)
		if err != nil {
			return nil, fmt.Errorf("%s stage: %w", s.core, err)
		}
		units = append(units, Unit{Stage: s.core, EntryPoint: ep.Name, Code: []byte(code)})
	}
	return units, nil
}

func emitHLSL(m *ir.Module, _ Options) ([]Unit, error) {
	code, _, err := hlsl.Compile(m, hlsl.DefaultOptions())
	if err != nil {
		return nil, err
	}
	return []Unit{{Stage: core.StageAll, Code: []byte(code)}}, nil
}

func emitMSL(m *ir.Module, _ Options) ([]Unit, error) {
	opts := msl.DefaultOptions()
	opts.FakeMissingBindings = true
	code, _, err := msl.Compile(m, opts)
	if err != nil {
		return nil, err
	}
	return []Unit{{Stage: core.StageAll, Code: []byte(code)}}, nil
}
