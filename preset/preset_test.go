package preset

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gogpu/shaderchain/core"
)

// writeFiles creates files under dir. Keys are slash-separated relative paths.
func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

func shaderDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	files := make(map[string]string, len(names))
	for _, n := range names {
		files[n] = "// shader\n"
	}
	writeFiles(t, dir, files)
	return dir
}

func TestParseScenarioAbsoluteThenSource(t *testing.T) {
	dir := shaderDir(t, "a.slang", "b.slang")
	text := `shaders = 2
shader0 = a.slang
scale_type0 = absolute
scale_x0 = 256
scale_y0 = 256
shader1 = b.slang
scale_type1 = source
`
	p, err := Parse(text, dir)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(p.Passes) != 2 {
		t.Fatalf("passes = %d, want 2", len(p.Passes))
	}
	want := core.Scale{Type: core.ScaleAbsolute, Factor: 256}
	if p.Passes[0].ScaleX != want || p.Passes[0].ScaleY != want {
		t.Errorf("pass 0 scale = %+v/%+v, want %+v", p.Passes[0].ScaleX, p.Passes[0].ScaleY, want)
	}
	src := core.Scale{Type: core.ScaleSource, Factor: 1}
	if p.Passes[1].ScaleX != src || p.Passes[1].ScaleY != src {
		t.Errorf("pass 1 scale = %+v/%+v, want %+v", p.Passes[1].ScaleX, p.Passes[1].ScaleY, src)
	}
	if got, want := p.Passes[0].Shader, filepath.Join(dir, "a.slang"); got != want {
		t.Errorf("shader0 = %q, want %q", got, want)
	}
}

func TestParseDefaults(t *testing.T) {
	dir := shaderDir(t, "a.slang")
	p, err := Parse("shaders = 1\nshader0 = a.slang\n", dir)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	pass := p.Passes[0]
	if pass.Filter != core.FilterNearest || pass.Wrap != core.WrapClampToBorder {
		t.Errorf("filter/wrap = %v/%v, want nearest/clamp_to_border", pass.Filter, pass.Wrap)
	}
	unset := core.Scale{Type: core.ScaleUnset, Factor: 1}
	if pass.ScaleX != unset || pass.ScaleY != unset {
		t.Errorf("scale = %+v/%+v, want unset", pass.ScaleX, pass.ScaleY)
	}
	if p.Textures != nil || p.Parameters != nil {
		t.Errorf("textures/parameters = %v/%v, want nil", p.Textures, p.Parameters)
	}
}

func TestParseBooleansAndNumbers(t *testing.T) {
	dir := shaderDir(t, "a.slang")
	tests := []struct {
		value      string
		wantLinear bool
		wantErr    bool
	}{
		{"true", true, false},
		{"TRUE", true, false},
		{"True", true, false},
		{"1", true, false},
		{"false", false, false},
		{"FaLsE", false, false},
		{"0", false, false},
		{"yes", false, true},
		{"2", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			text := "shaders = 1.0\nshader0 = a.slang\nfilter_linear0 = " + tt.value + "\n"
			p, err := Parse(text, dir)
			if tt.wantErr {
				if !errors.Is(err, ErrSyntax) {
					t.Fatalf("err = %v, want syntax error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got := p.Passes[0].Filter == core.FilterLinear; got != tt.wantLinear {
				t.Errorf("linear = %v, want %v", got, tt.wantLinear)
			}
		})
	}
}

func TestParseIgnoresUnknownKeysAndComments(t *testing.T) {
	dir := shaderDir(t, "a.slang")
	text := `# leading comment
// another comment

shaders = "1"
some_future_key = whatever
shader0 = a.slang // trailing comment
frame_count_mod0 = 120
`
	p, err := Parse(text, dir)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Passes[0].FrameCountMod != 120 {
		t.Errorf("frame_count_mod0 = %d, want 120", p.Passes[0].FrameCountMod)
	}
}

func TestParseForwardReferences(t *testing.T) {
	dir := shaderDir(t, "a.slang", "lut.png")
	// Parameter and texture values appear before their lists are declared.
	text := `STRENGTH = 0.25
mask = lut.png
mask_linear = true
shader0 = a.slang
parameters = "STRENGTH"
textures = mask
shaders = 1
`
	p, err := Parse(text, dir)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	prm, ok := p.Parameter("STRENGTH")
	if !ok || prm.Default != 0.25 {
		t.Errorf("STRENGTH = %+v, %v", prm, ok)
	}
	tex, ok := p.Texture("mask")
	if !ok || tex.Filter != core.FilterLinear || tex.Path != filepath.Join(dir, "lut.png") {
		t.Errorf("mask = %+v, %v", tex, ok)
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	dir := shaderDir(t, "a.slang")
	tests := []struct {
		name     string
		text     string
		wantLine int
		wantCol  int
	}{
		{"missing equals", "shaders = 1\nshader0 a.slang\n", 2, 1},
		{"missing key", "shaders = 1\n  = a.slang\n", 2, 3},
		{"bad key character", "shaders = 1\n  bad key = 1\n", 2, 6},
		{"unterminated quote", "shaders = 1\nshader0 = \"a.slang\n", 2, 11},
		{"non-numeric count", "shaders = two\n", 1, 11},
		{"bad wrap mode", "shaders = 1\nshader0 = a.slang\nwrap_mode0 = wobble\n", 3, 14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text, dir)
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want *SyntaxError", err)
			}
			if se.Line != tt.wantLine || se.Column != tt.wantCol {
				t.Errorf("position = %d:%d, want %d:%d (%v)", se.Line, se.Column, tt.wantLine, tt.wantCol, se)
			}
		})
	}
}

func TestParseResolutionErrors(t *testing.T) {
	dir := shaderDir(t, "a.slang", "lut.png")
	tests := []struct {
		name    string
		text    string
		wantKey string
	}{
		{"missing count", "shader0 = a.slang\n", "shaders"},
		{"zero passes", "shaders = 0\n", "shaders"},
		{"missing shader", "shaders = 2\nshader0 = a.slang\n", "shader1"},
		{"shader not found", "shaders = 1\nshader0 = nope.slang\n", "shader0"},
		{"negative scale", "shaders = 1\nshader0 = a.slang\nscale_type0 = source\nscale0 = -1\n", "scale0"},
		{"fractional absolute", "shaders = 1\nshader0 = a.slang\nscale_type0 = absolute\nscale0 = 2.5\n", "scale0"},
		{"absolute without size", "shaders = 1\nshader0 = a.slang\nscale_type_x0 = absolute\n", "scale_x0"},
		{"duplicate alias", "shaders = 2\nshader0 = a.slang\nshader1 = a.slang\nalias0 = A\nalias1 = A\n", "alias1"},
		{"alias shadows texture", "shaders = 1\nshader0 = a.slang\nalias0 = mask\ntextures = mask\nmask = lut.png\n", "mask"},
		{"texture without path", "shaders = 1\nshader0 = a.slang\ntextures = mask\n", "mask"},
		{"parameter without value", "shaders = 1\nshader0 = a.slang\nparameters = P\n", "P"},
		{"default above max", "shaders = 1\nshader0 = a.slang\nparameters = P\nP = 2\nP_min = 0\nP_max = 1\n", "P"},
		{"min without max", "shaders = 1\nshader0 = a.slang\nparameters = P\nP = 0\nP_min = 0\n", "P"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text, dir)
			var re *ResolutionError
			if !errors.As(err, &re) {
				t.Fatalf("err = %v, want *ResolutionError", err)
			}
			if re.Key != tt.wantKey {
				t.Errorf("key = %q, want %q", re.Key, tt.wantKey)
			}
			if !errors.Is(err, ErrResolution) {
				t.Error("errors.Is(err, ErrResolution) = false")
			}
		})
	}
}

func TestParameterClamp(t *testing.T) {
	p := ParameterConfig{Name: "P", Default: 0.5, Bounded: true, Min: 0, Max: 1}
	tests := []struct {
		in, want float64
	}{
		{1.7, 1.0},
		{-3, 0.0},
		{0.3, 0.3},
	}
	for _, tt := range tests {
		if got := p.Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := (ParameterConfig{Name: "free"}).Clamp(42); got != 42 {
		t.Errorf("unbounded Clamp(42) = %v", got)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	dir := shaderDir(t, "a.slang", "shaders/b.slang", "tex/mask.png", "tex/noise.png")
	text := `shaders = 3
shader0 = a.slang
alias0 = Prepass
filter_linear0 = true
wrap_mode0 = repeat
scale_type_x0 = absolute
scale_x0 = 320
scale_type_y0 = source
scale_y0 = 1.5
frame_count_mod0 = 60
float_framebuffer0 = true

shader1 = shaders/b.slang
mipmap_input1 = 1
srgb_framebuffer1 = TRUE
scale_type1 = viewport
scale1 = 0.5

shader2 = a.slang
wrap_mode2 = mirrored_repeat

textures = "mask;noise"
mask = tex/mask.png
mask_linear = true
mask_mipmap = true
noise = tex/noise.png
noise_wrap_mode = repeat

parameters = "A;B"
A = 0.1
B = 3
B_min = 0
B_max = 10
B_step = 0.25
`
	first, err := Parse(text, dir)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out := Marshal(first)
	// The output is self-contained: parse it from an unrelated directory.
	second, err := Parse(string(out), t.TempDir())
	if err != nil {
		t.Fatalf("re-Parse: %v\n%s", err, out)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("round trip mismatch:\nfirst:  %+v\nsecond: %+v\ntext:\n%s", first, second, out)
	}
	if again := Marshal(second); string(again) != string(out) {
		t.Errorf("Marshal is not stable:\n%s\nvs\n%s", out, again)
	}
}

func TestReferenceLayering(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"base/a.slang": "",
		"base/base.slangp": `shaders = 1
shader0 = a.slang
filter_linear0 = true
scale_type0 = source
scale0 = 2
parameters = "P"
P = 0.5
`,
		"other.slangp": "P = 0.75\n",
		"top.slangp": `#reference "base/base.slangp"
#reference "other.slangp"
filter_linear0 = false
`,
	})

	p, err := ParseFile(filepath.Join(dir, "top.slangp"))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	pass := p.Passes[0]
	if got, want := pass.Shader, filepath.Join(dir, "base", "a.slang"); got != want {
		t.Errorf("shader0 = %q, want %q (relative to the referenced preset)", got, want)
	}
	if pass.Filter != core.FilterNearest {
		t.Error("local filter_linear0 should override the referenced preset")
	}
	if pass.ScaleX.Factor != 2 {
		t.Errorf("scale factor = %v, want 2 from the base layer", pass.ScaleX.Factor)
	}
	if prm, _ := p.Parameter("P"); prm.Default != 0.75 {
		t.Errorf("P = %v, want 0.75 from the later reference", prm.Default)
	}
}

func TestReferenceCycle(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.slangp": "#reference \"b.slangp\"\nshaders = 1\n",
		"b.slangp": "#reference \"a.slangp\"\n",
	})
	_, err := ParseFile(filepath.Join(dir, "a.slangp"))
	if !errors.Is(err, ErrResolution) {
		t.Fatalf("err = %v, want resolution error", err)
	}
	for _, name := range []string{"a.slangp", "b.slangp"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not name %s", err, name)
		}
	}
}

func TestReferenceMissing(t *testing.T) {
	_, err := Parse("#reference \"missing.slangp\"\n", t.TempDir())
	var re *ResolutionError
	if !errors.As(err, &re) || re.Key != "#reference" {
		t.Fatalf("err = %v, want #reference resolution error", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("errors.Is(err, os.ErrNotExist) = false for %v", err)
	}
}

func TestTokenizeKeepsFirstPosition(t *testing.T) {
	v, refs, err := Tokenize("a = 1\nb = 2\na = 3\n", "x.slangp", "/d")
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 0 {
		t.Errorf("refs = %v", refs)
	}
	if got := v.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Keys = %v", got)
	}
	e, _ := v.Lookup("a")
	if e.Value != "3" || e.Line != 3 || e.Dir != "/d" {
		t.Errorf("a = %+v", e)
	}
}
