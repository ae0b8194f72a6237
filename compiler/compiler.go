package compiler

import (
	"context"
	"errors"
	"regexp"
	"strconv"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/wgsl"

	"github.com/gogpu/shaderchain/core"
	"github.com/gogpu/shaderchain/preprocess"
)

// Options configures compilation. The zero value validates the IR and emits
// release code.
type Options struct {
	// SkipValidation disables IR validation before emission.
	SkipValidation bool

	// Debug keeps debug names and line info in SPIR-V output.
	Debug bool
}

// Unit is a piece of generated code. Whole-module targets produce a single
// unit covering core.StageAll; GLSL produces one unit per stage.
type Unit struct {
	Stage      core.Stage
	EntryPoint string
	Code       []byte
}

// Artifact is the result of compiling one pass shader for one target.
type Artifact struct {
	Target core.Target

	// Module is the validated IR, the raw reflection of the pass.
	Module *ir.Module

	Units []Unit
}

// Unit returns the unit holding code for stage.
func (a *Artifact) Unit(stage core.Stage) (Unit, bool) {
	for _, u := range a.Units {
		if u.Stage.Has(stage) {
			return u, true
		}
	}
	return Unit{}, false
}

// Compiler compiles with fixed options. It is safe for concurrent use.
type Compiler struct {
	opts Options
}

// New returns a compiler using opts.
func New(opts Options) *Compiler {
	return &Compiler{opts: opts}
}

// Compile compiles src for target.
func (c *Compiler) Compile(ctx context.Context, src *preprocess.Source, target core.Target) (*Artifact, error) {
	return Compile(ctx, src, target, c.opts)
}

// Compile parses, lowers and validates src, then emits code for target.
// ctx is checked between phases; naga itself is not interruptible.
func Compile(ctx context.Context, src *preprocess.Source, target core.Target, opts Options) (*Artifact, error) {
	emitter, err := Lookup(target)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ast, err := naga.Parse(src.Text)
	if err != nil {
		return nil, diagnose(src, PhaseParse, target, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	module, err := naga.LowerWithSource(ast, src.Text)
	if err != nil {
		return nil, diagnose(src, PhaseLower, target, err)
	}
	if _, err := entryPoint(module, ir.StageVertex); err != nil {
		return nil, err
	}
	if _, err := entryPoint(module, ir.StageFragment); err != nil {
		return nil, err
	}

	if !opts.SkipValidation {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		verrs, err := naga.Validate(module)
		if err != nil {
			return nil, &Error{Phase: PhaseValidate, Target: target, Msg: err.Error(), Err: err}
		}
		if len(verrs) > 0 {
			return nil, &Error{Phase: PhaseValidate, Target: target, Msg: verrs[0].Error(), Err: &verrs[0]}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	units, err := emitter.Emit(module, opts)
	if err != nil {
		return nil, &Error{Phase: PhaseEmit, Target: target, Msg: err.Error(), Err: err}
	}
	return &Artifact{Target: target, Module: module, Units: units}, nil
}

// naga's front end returns its own error types from internal packages. Their
// messages carry the position: "line L, column C: msg" from the parser and
// "L:C: msg" from lowering.
var (
	parsePos = regexp.MustCompile(`(?s)^line (\d+), column (\d+): (.*)$`)
	lowerPos = regexp.MustCompile(`(?s)^(\d+):(\d+): (.*?)(?: \(and \d+ more errors\))?$`)
)

// diagnose maps a naga front-end error back to the original files.
func diagnose(src *preprocess.Source, phase Phase, target core.Target, err error) *Error {
	e := &Error{Phase: phase, Target: target, Msg: err.Error(), Err: err}

	line, col := 0, 0
	var pe wgsl.ParseError
	if errors.As(err, &pe) {
		line, col, e.Msg = pe.Line, pe.Column, pe.Message
	} else {
		line, col = position(err, &e.Msg)
	}
	if at, ok := src.Origin(line); ok {
		e.At, e.Column = at, col
	}
	return e
}

// position finds the innermost error in the chain whose message starts with
// a position, and sets msg to the rest of that message.
func position(err error, msg *string) (line, col int) {
	for ; err != nil; err = errors.Unwrap(err) {
		text := err.Error()
		m := parsePos.FindStringSubmatch(text)
		if m == nil {
			m = lowerPos.FindStringSubmatch(text)
		}
		if m == nil {
			continue
		}
		line, _ = strconv.Atoi(m[1])
		col, _ = strconv.Atoi(m[2])
		*msg = m[3]
	}
	return line, col
}

func entryPoint(m *ir.Module, stage ir.ShaderStage) (*ir.EntryPoint, error) {
	for i := range m.EntryPoints {
		if m.EntryPoints[i].Stage == stage {
			return &m.EntryPoints[i], nil
		}
	}
	name := "vertex"
	if stage == ir.StageFragment {
		name = "fragment"
	}
	return nil, &Error{Phase: PhaseLower, Msg: "no @" + name + " entry point", Err: ErrMissingEntryPoint}
}
