package preset

import (
	"strings"
	"unicode"
)

// referenceDirective imports another preset as a base layer.
const referenceDirective = "#reference"

// Reference is a #reference directive found while tokenizing.
type Reference struct {
	Path   string
	File   string
	Line   int
	Column int
}

// Tokenize splits preset text into a flat Values mapping plus the
// #reference directives it contains. Keys are not interpreted; an
// assignment to an unknown key is kept and later ignored by Resolve.
//
// file is only used for error positions and may be empty. dir is recorded on
// every entry as the directory relative paths resolve against.
func Tokenize(text, file, dir string) (*Values, []Reference, error) {
	values := NewValues()
	var refs []Reference

	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		line := strings.TrimRight(raw, "\r")
		indent := len(line) - len(strings.TrimLeftFunc(line, unicode.IsSpace))
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			continue
		case hasDirective(trimmed, referenceDirective):
			arg := strings.TrimSpace(trimmed[len(referenceDirective):])
			col := indent + len(referenceDirective) + 2
			path, err := parseValue(arg, file, lineNo, col)
			if err != nil {
				return nil, nil, err
			}
			if path == "" {
				return nil, nil, &SyntaxError{File: file, Line: lineNo, Column: col, Msg: "#reference needs a path"}
			}
			refs = append(refs, Reference{Path: path, File: file, Line: lineNo, Column: col})
			continue
		case strings.HasPrefix(trimmed, "#"), strings.HasPrefix(trimmed, "//"):
			continue
		}

		eq := strings.IndexByte(trimmed, '=')
		if eq < 0 {
			return nil, nil, &SyntaxError{File: file, Line: lineNo, Column: indent + 1, Msg: "expected key = value"}
		}
		key := strings.TrimSpace(trimmed[:eq])
		if key == "" {
			return nil, nil, &SyntaxError{File: file, Line: lineNo, Column: indent + 1, Msg: "missing key before '='"}
		}
		if pos := strings.IndexFunc(key, func(r rune) bool { return !isKeyRune(r) }); pos >= 0 {
			return nil, nil, &SyntaxError{File: file, Line: lineNo, Column: indent + pos + 1, Msg: "invalid character in key " + quote(key)}
		}

		rest := trimmed[eq+1:]
		valueCol := indent + eq + 2 + (len(rest) - len(strings.TrimLeftFunc(rest, unicode.IsSpace)))
		value, err := parseValue(strings.TrimSpace(rest), file, lineNo, valueCol)
		if err != nil {
			return nil, nil, err
		}
		values.Set(Entry{Key: key, Value: value, Dir: dir, File: file, Line: lineNo, Column: valueCol})
	}
	return values, refs, nil
}

// parseValue strips quotes and trailing comments from a raw value.
func parseValue(s, file string, line, col int) (string, error) {
	if strings.HasPrefix(s, `"`) {
		end := strings.IndexByte(s[1:], '"')
		if end < 0 {
			return "", &SyntaxError{File: file, Line: line, Column: col, Msg: "unterminated quoted value"}
		}
		tail := strings.TrimSpace(s[end+2:])
		if tail != "" && !strings.HasPrefix(tail, "//") && !strings.HasPrefix(tail, "#") {
			return "", &SyntaxError{File: file, Line: line, Column: col + end + 2, Msg: "unexpected text after quoted value"}
		}
		return s[1 : end+1], nil
	}
	if i := commentStart(s); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s), nil
}

// commentStart finds a trailing // comment. The marker must start the value or
// follow whitespace so that URLs and UNC-like paths survive.
func commentStart(s string) int {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '/' && s[i+1] == '/' && (i == 0 || s[i-1] == ' ' || s[i-1] == '\t') {
			return i
		}
	}
	return -1
}

func hasDirective(line, directive string) bool {
	if !strings.HasPrefix(line, directive) {
		return false
	}
	rest := line[len(directive):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '"'
}

func isKeyRune(r rune) bool {
	return r == '_' || r == '-' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func quote(s string) string { return `"` + s + `"` }
