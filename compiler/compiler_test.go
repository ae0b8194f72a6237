package compiler_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/naga/ir"

	"github.com/gogpu/shaderchain/compiler"
	"github.com/gogpu/shaderchain/core"
	"github.com/gogpu/shaderchain/preprocess"
	"github.com/gogpu/shaderchain/reflection"
)

const passShader = `struct UBO {
    MVP: mat4x4<f32>,
}

@group(0) @binding(0) var<uniform> global: UBO;
@group(0) @binding(1) var Source: texture_2d<f32>;
@group(0) @binding(2) var SourceSampler: sampler;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(@location(0) pos: vec4<f32>, @location(1) uv: vec2<f32>) -> VertexOutput {
    var output: VertexOutput;
    output.position = global.MVP * pos;
    output.uv = uv;
    return output;
}

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    return textureSample(Source, SourceSampler, uv);
}
`

func writeShader(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, text := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func load(t *testing.T, files map[string]string, root string) *preprocess.Source {
	t.Helper()
	dir := writeShader(t, files)
	src, err := preprocess.File(filepath.Join(dir, root))
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	return src
}

func TestCompileSPIRV(t *testing.T) {
	src := load(t, map[string]string{"pass.slang": passShader}, "pass.slang")

	art, err := compiler.Compile(context.Background(), src, core.TargetSPIRV, compiler.Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if art.Target != core.TargetSPIRV || art.Module == nil {
		t.Fatalf("artifact = %+v", art)
	}
	u, ok := art.Unit(core.StageFragment)
	if !ok || u.Stage != core.StageAll {
		t.Fatalf("Unit(fragment) = %+v, %v", u, ok)
	}
	// SPIR-V magic number, little endian.
	if len(u.Code) < 4 || u.Code[0] != 0x03 || u.Code[1] != 0x02 || u.Code[2] != 0x23 || u.Code[3] != 0x07 {
		t.Errorf("code does not start with the SPIR-V magic: % x", u.Code[:min(4, len(u.Code))])
	}
}

func TestCompileFeedsReflection(t *testing.T) {
	src := load(t, map[string]string{"pass.slang": passShader}, "pass.slang")
	art, err := compiler.New(compiler.Options{}).Compile(context.Background(), src, core.TargetSPIRV)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	r, err := reflection.Normalize(reflection.Raw{Module: art.Module, Target: art.Target}, core.StageAll)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if r.UBO == nil || r.UBO.Binding != 0 || r.UBO.Stage != core.StageVertex {
		t.Errorf("UBO = %+v", r.UBO)
	}
	if _, ok := r.Uniform(reflection.UniformKey{Semantic: reflection.SemanticMVP}); !ok {
		t.Error("MVP not reflected")
	}
	tex, ok := r.Texture(reflection.TextureKey{Semantic: reflection.TextureSource})
	if !ok {
		t.Fatal("Source not reflected")
	}
	if tex.Binding != 1 || !tex.HasSampler || tex.SamplerBinding != 2 || tex.Stage != core.StageFragment {
		t.Errorf("Source = %+v", tex)
	}
}

// TestCompileTargets exercises every registered emitter. Like naga's own
// snapshot tests, a backend that cannot translate the shader skips rather
// than fails.
func TestCompileTargets(t *testing.T) {
	src := load(t, map[string]string{"pass.slang": passShader}, "pass.slang")
	for _, target := range core.Targets() {
		t.Run(target.String(), func(t *testing.T) {
			art, err := compiler.Compile(context.Background(), src, target, compiler.Options{})
			var ce *compiler.Error
			if errors.As(err, &ce) && ce.Phase == compiler.PhaseEmit {
				t.Skipf("%s backend: %v", target, err)
			}
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			for _, stage := range []core.Stage{core.StageVertex, core.StageFragment} {
				u, ok := art.Unit(stage)
				if !ok || len(u.Code) == 0 {
					t.Errorf("no %s code", stage)
				}
			}
			if target == core.TargetGLSL {
				if len(art.Units) != 2 {
					t.Fatalf("GLSL units = %d, want 2", len(art.Units))
				}
				if art.Units[0].EntryPoint != "vs_main" || art.Units[1].EntryPoint != "fs_main" {
					t.Errorf("GLSL entry points = %q, %q", art.Units[0].EntryPoint, art.Units[1].EntryPoint)
				}
			}
		})
	}
}

func TestCompileParseErrorPointsAtInclude(t *testing.T) {
	helper := "fn helper() -> f32 {\n    let x: f32 = ;\n    return x;\n}\n"
	files := map[string]string{
		"helper.inc": helper,
		"pass.slang": "#include \"helper.inc\"\n" + passShader,
	}
	src := load(t, files, "pass.slang")

	_, err := compiler.Compile(context.Background(), src, core.TargetSPIRV, compiler.Options{})
	var ce *compiler.Error
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *compiler.Error", err)
	}
	if ce.Phase != compiler.PhaseParse {
		t.Errorf("Phase = %v", ce.Phase)
	}
	if filepath.Base(ce.At.File) != "helper.inc" || ce.At.Line != 2 {
		t.Errorf("At = %v, want helper.inc:2", ce.At)
	}
	if !errors.Is(err, compiler.ErrCompile) {
		t.Error("errors.Is(ErrCompile) = false")
	}
	if !strings.Contains(err.Error(), "helper.inc:2") {
		t.Errorf("message %q lacks the position", err.Error())
	}
}

func TestCompileLowerErrorPointsAtInclude(t *testing.T) {
	helper := "fn helper() -> f32 {\n    return undefined_name;\n}\n"
	files := map[string]string{
		"helper.inc": helper,
		"pass.slang": "#include \"helper.inc\"\n" + passShader,
	}
	src := load(t, files, "pass.slang")

	_, err := compiler.Compile(context.Background(), src, core.TargetSPIRV, compiler.Options{})
	var ce *compiler.Error
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *compiler.Error", err)
	}
	if ce.Phase != compiler.PhaseLower {
		t.Errorf("Phase = %v, want lower", ce.Phase)
	}
	if filepath.Base(ce.At.File) != "helper.inc" || ce.At.Line != 1 {
		t.Errorf("At = %v, want helper.inc:1", ce.At)
	}
	if !strings.Contains(ce.Msg, "undefined_name") {
		t.Errorf("Msg = %q", ce.Msg)
	}
}

func TestCompileMissingEntryPoint(t *testing.T) {
	vertexOnly := passShader[:strings.Index(passShader, "@fragment")]
	src := load(t, map[string]string{"pass.slang": vertexOnly}, "pass.slang")

	_, err := compiler.Compile(context.Background(), src, core.TargetSPIRV, compiler.Options{})
	if !errors.Is(err, compiler.ErrMissingEntryPoint) {
		t.Fatalf("err = %v, want ErrMissingEntryPoint", err)
	}
}

func TestCompileCanceled(t *testing.T) {
	src := load(t, map[string]string{"pass.slang": passShader}, "pass.slang")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := compiler.Compile(ctx, src, core.TargetSPIRV, compiler.Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestCompileUnknownTarget(t *testing.T) {
	src := &preprocess.Source{Text: passShader}
	if _, err := compiler.Compile(context.Background(), src, core.Target(42), compiler.Options{}); !errors.Is(err, compiler.ErrUnknownTarget) {
		t.Fatalf("err = %v, want ErrUnknownTarget", err)
	}
}

func TestRegistry(t *testing.T) {
	if got := compiler.Registered(); len(got) != len(core.Targets()) {
		t.Fatalf("Registered = %v", got)
	}

	const custom = core.Target(200)
	calls := 0
	compiler.Register(custom, compiler.EmitterFunc(func(m *ir.Module, _ compiler.Options) ([]compiler.Unit, error) {
		calls++
		if len(m.EntryPoints) != 2 {
			return nil, errors.New("want two entry points")
		}
		return []compiler.Unit{{Stage: core.StageAll, Code: []byte("custom")}}, nil
	}))
	t.Cleanup(func() { compiler.Unregister(custom) })

	src := &preprocess.Source{Text: passShader}
	art, err := compiler.Compile(context.Background(), src, custom, compiler.Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if calls != 1 || string(art.Units[0].Code) != "custom" {
		t.Errorf("calls = %d, code = %q", calls, art.Units[0].Code)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("duplicate Register did not panic")
			}
		}()
		compiler.Register(custom, compiler.EmitterFunc(nil))
	}()

	func() {
		defer func() {
			if recover() == nil {
				t.Error("nil Register did not panic")
			}
		}()
		compiler.Register(core.Target(201), nil)
	}()
}

func TestEmitErrorIsReported(t *testing.T) {
	const failing = core.Target(202)
	boom := errors.New("boom")
	compiler.Register(failing, compiler.EmitterFunc(func(*ir.Module, compiler.Options) ([]compiler.Unit, error) {
		return nil, boom
	}))
	t.Cleanup(func() { compiler.Unregister(failing) })

	_, err := compiler.Compile(context.Background(), &preprocess.Source{Text: passShader}, failing, compiler.Options{})
	var ce *compiler.Error
	if !errors.As(err, &ce) || ce.Phase != compiler.PhaseEmit {
		t.Fatalf("err = %v, want an emit error", err)
	}
	if !errors.Is(err, boom) {
		t.Error("emit error does not unwrap to the emitter's error")
	}
}
