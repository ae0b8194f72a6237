package preprocess

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gogpu/shaderchain/core"
	"github.com/gogpu/shaderchain/internal/textio"
)

// File preprocesses the shader at path. defines seeds the names visible to
// #ifdef before the first line is read.
func File(path string, defines ...string) (*Source, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &IncludeNotFoundError{Path: path, Err: err}
	}
	p := &processor{
		defines: make(map[string]bool, len(defines)),
		seen:    make(map[string]bool),
	}
	for _, d := range defines {
		p.defines[d] = true
	}
	if err := p.file(abs, Origin{}); err != nil {
		return nil, err
	}
	return &Source{
		Path:       abs,
		Text:       p.out.String(),
		Parameters: p.params,
		Name:       p.name,
		Format:     p.format,
		Files:      p.files,
		origins:    p.origins,
	}, nil
}

type processor struct {
	defines map[string]bool
	stack   []string // files currently being expanded
	seen    map[string]bool
	files   []string

	out     strings.Builder
	origins []Origin
	params  []Parameter

	name     string
	nameAt   Origin
	format   core.Format
	formatAt Origin
}

// cond is one open #ifdef/#ifndef block.
type cond struct {
	parent bool // whether the enclosing region is active
	value  bool // the condition itself
	inElse bool
	at     Origin
}

func (c cond) active() bool {
	if c.inElse {
		return c.parent && !c.value
	}
	return c.parent && c.value
}

func (p *processor) file(path string, at Origin) error {
	text, err := textio.ReadFile(path)
	if err != nil {
		return &IncludeNotFoundError{Path: path, At: at, Err: err}
	}
	if !p.seen[path] {
		p.seen[path] = true
		p.files = append(p.files, path)
	}
	p.stack = append(p.stack, path)
	defer func() { p.stack = p.stack[:len(p.stack)-1] }()

	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	var conds []cond
	active := func() bool { return len(conds) == 0 || conds[len(conds)-1].active() }

	for i, raw := range lines {
		here := Origin{File: path, Line: i + 1}
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			if active() {
				p.emit(line, here)
			}
			continue
		}

		name, arg := cutWord(trimmed[1:])
		switch name {
		case "ifdef", "ifndef":
			id, _ := cutWord(arg)
			if !isIdentifier(id) {
				return &DirectiveError{At: here, Msg: "#" + name + " needs a name"}
			}
			value := p.defines[id]
			if name == "ifndef" {
				value = !value
			}
			conds = append(conds, cond{parent: active(), value: value, at: here})
		case "else":
			if len(conds) == 0 {
				return &DirectiveError{At: here, Msg: "#else without #ifdef"}
			}
			top := &conds[len(conds)-1]
			if top.inElse {
				return &DirectiveError{At: here, Msg: "second #else for the #ifdef at line " + strconv.Itoa(top.at.Line)}
			}
			top.inElse = true
		case "endif":
			if len(conds) == 0 {
				return &DirectiveError{At: here, Msg: "#endif without #ifdef"}
			}
			conds = conds[:len(conds)-1]
		default:
			if !active() {
				continue
			}
			if err := p.directive(name, arg, here); err != nil {
				return err
			}
		}
	}
	if len(conds) > 0 {
		return &DirectiveError{At: conds[len(conds)-1].at, Msg: "unterminated conditional block"}
	}
	return nil
}

func (p *processor) directive(name, arg string, at Origin) error {
	switch name {
	case "include":
		return p.include(arg, at)
	case "define", "undef":
		id, _ := cutWord(arg)
		if !isIdentifier(id) {
			return &DirectiveError{At: at, Msg: "#" + name + " needs a name"}
		}
		p.defines[id] = name == "define"
		return nil
	case "pragma":
		return p.pragma(arg, at)
	}
	return &DirectiveError{At: at, Msg: "unknown directive #" + name}
}

func (p *processor) include(arg string, at Origin) error {
	rel, ok := unquote(arg)
	if !ok || rel == "" {
		return &DirectiveError{At: at, Msg: "#include needs a quoted path"}
	}
	path := filepath.FromSlash(rel)
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(at.File), path)
	}
	path = filepath.Clean(path)

	for _, open := range p.stack {
		if open == path {
			chain := append(append([]string(nil), p.stack...), path)
			return &IncludeCycleError{Chain: chain, At: at}
		}
	}
	return p.file(path, at)
}

func (p *processor) pragma(arg string, at Origin) error {
	kind, rest := cutWord(arg)
	switch kind {
	case "parameter":
		prm, err := parseParameter(rest, at)
		if err != nil {
			return err
		}
		return p.addParameter(prm)
	case "name":
		id, tail := cutWord(rest)
		if !isIdentifier(id) || tail != "" {
			return &DirectiveError{At: at, Msg: "#pragma name needs a single identifier"}
		}
		if p.name != "" && p.name != id {
			return &DirectiveError{At: at, Msg: "pass already named " + strconv.Quote(p.name) + " at " + p.nameAt.String()}
		}
		p.name, p.nameAt = id, at
	case "format":
		word, tail := cutWord(rest)
		f, ok := core.ParseFormat(word)
		if !ok || tail != "" {
			return &DirectiveError{At: at, Msg: "unknown format " + strconv.Quote(rest)}
		}
		if p.format != core.FormatUnknown && p.format != f {
			return &DirectiveError{At: at, Msg: "format already set to " + p.format.String() + " at " + p.formatAt.String()}
		}
		p.format, p.formatAt = f, at
	}
	// Other pragmas are hints for other toolchains.
	return nil
}

func (p *processor) addParameter(prm Parameter) error {
	for _, prev := range p.params {
		if prev.Name != prm.Name {
			continue
		}
		if prev.same(prm) {
			return nil
		}
		return &ParameterConflictError{Name: prm.Name, Reason: "declared twice with different values", First: prev.At, Second: prm.At}
	}
	p.params = append(p.params, prm)
	return nil
}

func (p *processor) emit(line string, at Origin) {
	p.out.WriteString(line)
	p.out.WriteByte('\n')
	p.origins = append(p.origins, at)
}

// parseParameter parses the arguments of
//
//	#pragma parameter NAME "description" default min max [step]
func parseParameter(arg string, at Origin) (Parameter, error) {
	fail := func(msg string) (Parameter, error) {
		return Parameter{}, &DirectiveError{At: at, Msg: "#pragma parameter: " + msg}
	}

	name, rest := cutWord(arg)
	if !isIdentifier(name) {
		return fail("invalid parameter name " + strconv.Quote(name))
	}
	if !strings.HasPrefix(rest, `"`) {
		return fail("expected a quoted description after " + name)
	}
	end := strings.IndexByte(rest[1:], '"')
	if end < 0 {
		return fail("unterminated description")
	}
	prm := Parameter{Name: name, Description: rest[1 : end+1], At: at}

	fields := strings.Fields(rest[end+2:])
	if len(fields) != 3 && len(fields) != 4 {
		return fail("expected default, min, max and an optional step")
	}
	nums := make([]float64, 4)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return fail("invalid number " + strconv.Quote(f))
		}
		nums[i] = v
	}
	prm.Default, prm.Min, prm.Max, prm.Step = nums[0], nums[1], nums[2], nums[3]

	switch {
	case prm.Min > prm.Max:
		return fail("minimum exceeds maximum")
	case prm.Default < prm.Min || prm.Default > prm.Max:
		return fail("default outside [min, max]")
	case prm.Step < 0:
		return fail("negative step")
	}
	return prm, nil
}

// cutWord splits s at the first run of whitespace.
func cutWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i:])
	}
	return s, ""
}

func unquote(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' {
		return "", false
	}
	end := strings.IndexByte(s[1:], '"')
	if end < 0 || strings.TrimSpace(s[end+2:]) != "" {
		return "", false
	}
	return s[1 : end+1], true
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
