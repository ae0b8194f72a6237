package preset

import (
	"path/filepath"
	"strings"

	"github.com/gogpu/shaderchain/internal/textio"
)

// maxReferenceDepth bounds #reference chains.
const maxReferenceDepth = 16

// Parse parses preset text. Relative paths (shaders, textures and
// #reference targets) resolve against baseDir.
func Parse(text, baseDir string) (*Preset, error) {
	values, err := Flatten(text, "", baseDir)
	if err != nil {
		return nil, err
	}
	return Resolve(values, "")
}

// ParseFile reads and parses the preset at path.
func ParseFile(path string) (*Preset, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &ResolutionError{File: path, Key: "#reference", Reason: "cannot resolve preset path", Err: err}
	}
	values, err := FlattenFile(abs)
	if err != nil {
		return nil, err
	}
	return Resolve(values, abs)
}

// Flatten tokenizes text and layers it over every preset it references.
// Keys set by text win over keys set by referenced presets; among several
// #reference directives, later ones win over earlier ones.
func Flatten(text, file, baseDir string) (*Values, error) {
	f := &flattener{}
	if file != "" {
		f.stack = append(f.stack, file)
	}
	return f.flatten(text, file, baseDir)
}

// FlattenFile reads the preset at path and flattens it.
func FlattenFile(path string) (*Values, error) {
	text, err := textio.ReadFile(path)
	if err != nil {
		return nil, &ResolutionError{File: path, Key: "preset", Reason: "cannot read preset", Err: err}
	}
	return Flatten(text, path, filepath.Dir(path))
}

type flattener struct {
	stack []string // absolute paths of presets being flattened
}

func (f *flattener) flatten(text, file, dir string) (*Values, error) {
	own, refs, err := Tokenize(text, file, dir)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return own, nil
	}

	merged := NewValues()
	for _, ref := range refs {
		base, err := f.reference(ref, dir)
		if err != nil {
			return nil, err
		}
		merged.Overlay(base)
	}
	merged.Overlay(own)
	return merged, nil
}

func (f *flattener) reference(ref Reference, dir string) (*Values, error) {
	path := filepath.FromSlash(ref.Path)
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	path = filepath.Clean(path)

	if len(f.stack) >= maxReferenceDepth {
		return nil, &ResolutionError{File: ref.File, Key: "#reference", Reason: "reference chain deeper than 16 presets"}
	}
	for _, open := range f.stack {
		if open == path {
			chain := strings.Join(append(append([]string(nil), f.stack...), path), " -> ")
			return nil, &ResolutionError{File: ref.File, Key: "#reference", Reason: "reference cycle: " + chain}
		}
	}
	text, err := textio.ReadFile(path)
	if err != nil {
		return nil, &ResolutionError{File: ref.File, Key: "#reference", Reason: "cannot read " + path, Err: err}
	}

	f.stack = append(f.stack, path)
	defer func() { f.stack = f.stack[:len(f.stack)-1] }()
	return f.flatten(text, path, filepath.Dir(path))
}
