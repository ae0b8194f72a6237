// Package shaderchain compiles multi-pass shader presets into backend-neutral
// render pipelines.
//
// # Overview
//
// A preset is a small key/value file listing the passes of a
// post-processing chain, the textures it samples and the parameters a user
// may tune. shaderchain parses it, preprocesses every pass shader, compiles
// the WGSL to the requested target with naga, maps the reflected bindings
// onto semantics and resolves the render graph a GPU backend executes each
// frame.
//
// # Quick Start
//
//	l := shaderchain.NewLoader(shaderchain.WithViewport(core.Sz(1920, 1080)))
//	chain, err := l.Load(ctx, "crt-royale.slangp")
//	if err != nil {
//	    return err
//	}
//	for _, pass := range chain.Pipeline.Passes {
//	    code, _ := chain.Code(pass.Index, core.StageFragment)
//	    // create the pipeline, bind pass.Inputs, size the target to pass.OutputSize
//	}
//
// # Reloading
//
// Loader keeps one active Chain. Load, Reload, SetParameter and Resize each
// activate a new immutable Chain; backends pick up Active() at frame
// boundaries. A newer load cancels an older one still compiling, and a
// failed load never replaces the active chain.
//
// # Architecture
//
// The library is organized into:
//   - core: modes, formats, targets and sizes shared by every stage
//   - preset: preset parsing, #reference layering and serialization
//   - preprocess: #include, #pragma and conditional expansion with line mapping
//   - compiler: WGSL to SPIR-V, GLSL, HLSL and MSL through naga
//   - cache: compile-or-fetch artifact cache with in-flight deduplication
//   - reflection: binding and uniform semantics from naga IR
//   - graph: pass ordering, feedback and history wiring, output sizes
//   - lut: user texture decoding and mip generation
//
// The functions ParsePreset, PreprocessShader, NormalizeReflection and
// BuildPipeline expose each stage on its own for callers that drive the
// pipeline themselves.
//
// # Logging
//
// shaderchain is silent by default. See SetLogger.
package shaderchain
