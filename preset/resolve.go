package preset

import (
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gogpu/shaderchain/core"
	"github.com/gogpu/shaderchain/internal/textio"
)

// MaxPasses bounds the shaders key so a typo cannot allocate millions of passes.
const MaxPasses = 1024

// resolver interprets a Values mapping. It never mutates the mapping.
type resolver struct {
	v    *Values
	file string
}

// Resolve interprets a flattened mapping into a Preset. Relative paths
// resolve against the directory recorded on each entry.
//
// Unknown keys are ignored. Cross references (aliases, texture names,
// parameter bounds) are checked only here, after every key is known.
func Resolve(v *Values, file string) (*Preset, error) {
	r := &resolver{v: v, file: file}

	n, err := r.count()
	if err != nil {
		return nil, err
	}

	p := &Preset{Passes: make([]PassConfig, n)}
	for i := range p.Passes {
		if p.Passes[i], err = r.pass(i); err != nil {
			return nil, err
		}
	}
	if p.Textures, err = r.textures(); err != nil {
		return nil, err
	}
	if p.Parameters, err = r.parameters(); err != nil {
		return nil, err
	}
	if err := r.checkNames(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *resolver) count() (int, error) {
	e, ok := r.v.Lookup("shaders")
	if !ok {
		return 0, r.fail("shaders", "required key is missing")
	}
	n, err := r.integer(e)
	if err != nil {
		return 0, err
	}
	if n < 1 || n > MaxPasses {
		return 0, r.fail("shaders", "pass count "+strconv.FormatInt(n, 10)+" out of range [1, "+strconv.Itoa(MaxPasses)+"]")
	}
	return int(n), nil
}

func (r *resolver) pass(i int) (PassConfig, error) {
	idx := strconv.Itoa(i)
	var pc PassConfig

	shaderKey := "shader" + idx
	e, ok := r.v.Lookup(shaderKey)
	if !ok || e.Value == "" {
		return pc, r.fail(shaderKey, "pass "+idx+" has no shader")
	}
	path, err := r.path(e)
	if err != nil {
		return pc, err
	}
	pc.Shader = path

	if e, ok := r.v.Lookup("alias" + idx); ok && e.Value != "" {
		if !isIdentifier(e.Value) {
			return pc, r.fail(e.Key, quote(e.Value)+" is not a valid alias")
		}
		pc.Alias = e.Value
	}
	if pc.Filter, err = r.filter("filter_linear" + idx); err != nil {
		return pc, err
	}
	if pc.Wrap, err = r.wrap("wrap_mode" + idx); err != nil {
		return pc, err
	}
	if pc.MipmapInput, err = r.optBool("mipmap_input" + idx); err != nil {
		return pc, err
	}
	if pc.FloatFramebuffer, err = r.optBool("float_framebuffer" + idx); err != nil {
		return pc, err
	}
	if pc.SRGBFramebuffer, err = r.optBool("srgb_framebuffer" + idx); err != nil {
		return pc, err
	}
	if e, ok := r.v.Lookup("frame_count_mod" + idx); ok {
		n, err := r.integer(e)
		if err != nil {
			return pc, err
		}
		if n < 0 || n > math.MaxUint32 {
			return pc, r.fail(e.Key, "frame count modulus must be non-negative")
		}
		pc.FrameCountMod = uint32(n)
	}

	if pc.ScaleX, err = r.scale(idx, "_x"); err != nil {
		return pc, err
	}
	if pc.ScaleY, err = r.scale(idx, "_y"); err != nil {
		return pc, err
	}
	return pc, nil
}

// scale resolves one axis. scale_type{i} and scale{i} apply to both axes;
// the per-axis keys override them. Factors without a scale type are ignored.
func (r *resolver) scale(idx, axis string) (core.Scale, error) {
	typeEntry, ok := r.v.Lookup("scale_type" + axis + idx)
	if !ok {
		typeEntry, ok = r.v.Lookup("scale_type" + idx)
	}
	if !ok || typeEntry.Value == "" {
		return core.Scale{Type: core.ScaleUnset, Factor: 1}, nil
	}
	st, valid := core.ParseScaleType(typeEntry.Value)
	if !valid {
		return core.Scale{}, r.syntax(typeEntry, "unknown scale type "+quote(typeEntry.Value))
	}

	s := core.Scale{Type: st, Factor: 1}
	factorEntry, ok := r.v.Lookup("scale" + axis + idx)
	if !ok {
		factorEntry, ok = r.v.Lookup("scale" + idx)
	}
	if !ok {
		if st == core.ScaleAbsolute {
			return core.Scale{}, r.fail("scale"+axis+idx, "absolute scaling needs a size")
		}
		return s, nil
	}

	f, err := r.number(factorEntry)
	if err != nil {
		return core.Scale{}, err
	}
	if f <= 0 {
		return core.Scale{}, r.fail(factorEntry.Key, "scale factor must be positive")
	}
	if st == core.ScaleAbsolute && (f != math.Trunc(f) || f > math.MaxUint32) {
		return core.Scale{}, r.fail(factorEntry.Key, "absolute size must be a positive integer")
	}
	s.Factor = f
	return s, nil
}

func (r *resolver) textures() ([]TextureConfig, error) {
	names, err := r.list("textures")
	if err != nil {
		return nil, err
	}
	var out []TextureConfig
	for _, name := range names {
		e, ok := r.v.Lookup(name)
		if !ok || e.Value == "" {
			return nil, r.fail(name, "texture "+quote(name)+" has no path")
		}
		tc := TextureConfig{Name: name}
		if tc.Path, err = r.path(e); err != nil {
			return nil, err
		}
		if tc.Filter, err = r.filter(name + "_linear"); err != nil {
			return nil, err
		}
		if tc.Wrap, err = r.wrap(name + "_wrap_mode"); err != nil {
			return nil, err
		}
		if tc.Mipmap, err = r.optBool(name + "_mipmap"); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, nil
}

func (r *resolver) parameters() ([]ParameterConfig, error) {
	names, err := r.list("parameters")
	if err != nil {
		return nil, err
	}
	var out []ParameterConfig
	for _, name := range names {
		e, ok := r.v.Lookup(name)
		if !ok {
			return nil, r.fail(name, "parameter "+quote(name)+" has no value")
		}
		pc := ParameterConfig{Name: name}
		if pc.Default, err = r.number(e); err != nil {
			return nil, err
		}

		minEntry, hasMin := r.v.Lookup(name + "_min")
		maxEntry, hasMax := r.v.Lookup(name + "_max")
		if hasMin != hasMax {
			return nil, r.fail(name, "parameter bounds need both _min and _max")
		}
		if hasMin {
			if pc.Min, err = r.number(minEntry); err != nil {
				return nil, err
			}
			if pc.Max, err = r.number(maxEntry); err != nil {
				return nil, err
			}
			if pc.Min > pc.Max {
				return nil, r.fail(name, "parameter minimum exceeds maximum")
			}
			if pc.Default < pc.Min || pc.Default > pc.Max {
				return nil, r.fail(name, "parameter default outside [min, max]")
			}
			pc.Bounded = true
		}
		if e, ok := r.v.Lookup(name + "_step"); ok {
			if pc.Step, err = r.number(e); err != nil {
				return nil, err
			}
			if pc.Step < 0 {
				return nil, r.fail(e.Key, "parameter step must not be negative")
			}
		}
		out = append(out, pc)
	}
	return out, nil
}

// checkNames enforces that aliases are unique and do not shadow texture names.
func (r *resolver) checkNames(p *Preset) error {
	seen := make(map[string]string)
	for i, pass := range p.Passes {
		if pass.Alias == "" {
			continue
		}
		key := "alias" + strconv.Itoa(i)
		if prev, dup := seen[pass.Alias]; dup {
			return r.fail(key, "alias "+quote(pass.Alias)+" already used by "+prev)
		}
		seen[pass.Alias] = key
	}
	for _, t := range p.Textures {
		if prev, dup := seen[t.Name]; dup {
			return r.fail(t.Name, "texture name "+quote(t.Name)+" collides with "+prev)
		}
		seen[t.Name] = "texture " + t.Name
	}
	return nil
}

// list splits a ';'-separated name list, rejecting duplicates.
func (r *resolver) list(key string) ([]string, error) {
	e, ok := r.v.Lookup(key)
	if !ok {
		return nil, nil
	}
	var names []string
	seen := make(map[string]bool)
	for _, name := range strings.Split(e.Value, ";") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !isIdentifier(name) {
			return nil, r.syntax(e, quote(name)+" is not a valid name")
		}
		if seen[name] {
			return nil, r.fail(key, quote(name)+" listed twice")
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, nil
}

func (r *resolver) path(e Entry) (string, error) {
	p := filepath.FromSlash(e.Value)
	if !filepath.IsAbs(p) {
		p = filepath.Join(e.Dir, p)
	}
	p, err := filepath.Abs(p)
	if err != nil {
		return "", &ResolutionError{File: r.errFile(e), Key: e.Key, Reason: "cannot resolve path", Err: err}
	}
	if !textio.Exists(p) {
		return "", &ResolutionError{File: r.errFile(e), Key: e.Key, Reason: "file not found: " + p}
	}
	return p, nil
}

func (r *resolver) filter(key string) (core.FilterMode, error) {
	linear, err := r.optBool(key)
	if err != nil || !linear {
		return core.FilterNearest, err
	}
	return core.FilterLinear, nil
}

func (r *resolver) wrap(key string) (core.WrapMode, error) {
	e, ok := r.v.Lookup(key)
	if !ok || e.Value == "" {
		return core.WrapClampToBorder, nil
	}
	w, valid := core.ParseWrapMode(e.Value)
	if !valid {
		return 0, r.syntax(e, "unknown wrap mode "+quote(e.Value))
	}
	return w, nil
}

func (r *resolver) optBool(key string) (bool, error) {
	e, ok := r.v.Lookup(key)
	if !ok {
		return false, nil
	}
	b, valid := parseBool(e.Value)
	if !valid {
		return false, r.syntax(e, "expected a boolean, got "+quote(e.Value))
	}
	return b, nil
}

func (r *resolver) number(e Entry) (float64, error) {
	f, err := strconv.ParseFloat(e.Value, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, r.syntax(e, "expected a number, got "+quote(e.Value))
	}
	return f, nil
}

// integer accepts integral values written either way ("2" or "2.0").
func (r *resolver) integer(e Entry) (int64, error) {
	f, err := r.number(e)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxUint32 {
		return 0, r.syntax(e, "expected an integer, got "+quote(e.Value))
	}
	return int64(f), nil
}

func (r *resolver) fail(key, reason string) error {
	file := r.file
	if e, ok := r.v.Lookup(key); ok && e.File != "" {
		file = e.File
	}
	return &ResolutionError{File: file, Key: key, Reason: reason}
}

func (r *resolver) syntax(e Entry, msg string) error {
	return &SyntaxError{File: r.errFile(e), Line: e.Line, Column: e.Column, Msg: e.Key + ": " + msg}
}

func (r *resolver) errFile(e Entry) string {
	if e.File != "" {
		return e.File
	}
	return r.file
}

// parseBool accepts true/false in any case and 1/0.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	}
	return false, false
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9') {
			continue
		}
		return false
	}
	return true
}
