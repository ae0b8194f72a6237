package preprocess

import (
	"strconv"
	"strings"

	"github.com/gogpu/shaderchain/core"
)

// Origin is a position in an original (unpreprocessed) source file.
type Origin struct {
	File string
	Line int // 1-based
}

func (o Origin) String() string {
	return o.File + ":" + strconv.Itoa(o.Line)
}

// Parameter is a #pragma parameter declaration.
type Parameter struct {
	Name        string
	Description string
	Default     float64
	Min         float64
	Max         float64
	Step        float64
	At          Origin
}

// same reports whether p and o declare identical values.
func (p Parameter) same(o Parameter) bool {
	return p.Description == o.Description && p.Default == o.Default &&
		p.Min == o.Min && p.Max == o.Max && p.Step == o.Step
}

// Source is a fully preprocessed shader.
type Source struct {
	// Path is the absolute path of the root file.
	Path string

	// Text is the expanded source, one output line per origin, each line
	// terminated by '\n'.
	Text string

	// Parameters are the parameter pragmas in declaration order, with
	// identical re-declarations removed.
	Parameters []Parameter

	// Name is the pass alias from #pragma name, or "".
	Name string

	// Format is the output format from #pragma format, or FormatUnknown.
	Format core.Format

	// Files lists every file that contributed to Text, root first, without
	// duplicates. Hot reload watches these.
	Files []string

	origins []Origin
}

// Lines returns the number of output lines.
func (s *Source) Lines() int { return len(s.origins) }

// Origin maps a 1-based output line back to the file and line it came from.
func (s *Source) Origin(line int) (Origin, bool) {
	if line < 1 || line > len(s.origins) {
		return Origin{}, false
	}
	return s.origins[line-1], true
}

// Line returns the text of a 1-based output line without its newline.
func (s *Source) Line(line int) string {
	if line < 1 || line > len(s.origins) {
		return ""
	}
	rest := s.Text
	for i := 1; i < line; i++ {
		rest = rest[strings.IndexByte(rest, '\n')+1:]
	}
	if end := strings.IndexByte(rest, '\n'); end >= 0 {
		return rest[:end]
	}
	return rest
}

// Parameter returns the pragma parameter called name.
func (s *Source) Parameter(name string) (Parameter, bool) {
	for _, p := range s.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}
