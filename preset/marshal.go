package preset

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gogpu/shaderchain/core"
)

// Marshal serializes p in preset syntax. Parsing the output yields a Preset
// equal to p field for field. Paths are written as absolute, slash-separated
// paths so the output does not depend on where it is parsed.
func Marshal(p *Preset) []byte {
	var b bytes.Buffer
	kv := func(key, value string) { fmt.Fprintf(&b, "%s = %s\n", key, value) }
	q := func(s string) string { return `"` + s + `"` }

	kv("shaders", strconv.Itoa(len(p.Passes)))
	for i, pass := range p.Passes {
		idx := strconv.Itoa(i)
		b.WriteByte('\n')
		kv("shader"+idx, q(filepath.ToSlash(pass.Shader)))
		if pass.Alias != "" {
			kv("alias"+idx, q(pass.Alias))
		}
		kv("filter_linear"+idx, strconv.FormatBool(pass.Filter == core.FilterLinear))
		kv("wrap_mode"+idx, pass.Wrap.String())
		kv("mipmap_input"+idx, strconv.FormatBool(pass.MipmapInput))
		kv("float_framebuffer"+idx, strconv.FormatBool(pass.FloatFramebuffer))
		kv("srgb_framebuffer"+idx, strconv.FormatBool(pass.SRGBFramebuffer))
		if pass.FrameCountMod != 0 {
			kv("frame_count_mod"+idx, strconv.FormatUint(uint64(pass.FrameCountMod), 10))
		}
		writeScale(kv, "_x"+idx, pass.ScaleX)
		writeScale(kv, "_y"+idx, pass.ScaleY)
	}

	if len(p.Textures) > 0 {
		b.WriteByte('\n')
		names := make([]string, len(p.Textures))
		for i, t := range p.Textures {
			names[i] = t.Name
		}
		kv("textures", q(strings.Join(names, ";")))
		for _, t := range p.Textures {
			kv(t.Name, q(filepath.ToSlash(t.Path)))
			kv(t.Name+"_linear", strconv.FormatBool(t.Filter == core.FilterLinear))
			kv(t.Name+"_wrap_mode", t.Wrap.String())
			kv(t.Name+"_mipmap", strconv.FormatBool(t.Mipmap))
		}
	}

	if len(p.Parameters) > 0 {
		b.WriteByte('\n')
		names := make([]string, len(p.Parameters))
		for i, prm := range p.Parameters {
			names[i] = prm.Name
		}
		kv("parameters", q(strings.Join(names, ";")))
		for _, prm := range p.Parameters {
			kv(prm.Name, formatFloat(prm.Default))
			if prm.Bounded {
				kv(prm.Name+"_min", formatFloat(prm.Min))
				kv(prm.Name+"_max", formatFloat(prm.Max))
			}
			if prm.Step != 0 {
				kv(prm.Name+"_step", formatFloat(prm.Step))
			}
		}
	}
	return b.Bytes()
}

func writeScale(kv func(string, string), suffix string, s core.Scale) {
	if s.Type == core.ScaleUnset {
		return
	}
	kv("scale_type"+suffix, s.Type.String())
	kv("scale"+suffix, formatFloat(s.Factor))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
