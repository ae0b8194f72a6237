package preprocess

import (
	"fmt"

	"github.com/gogpu/shaderchain/preset"
)

// Collect merges the parameter pragmas of several passes in pass order.
// Passes commonly share an include that declares the same parameters; such
// identical declarations collapse into one. Differing ones conflict.
func Collect(sources ...*Source) ([]Parameter, error) {
	var out []Parameter
	index := make(map[string]int)
	for _, src := range sources {
		for _, prm := range src.Parameters {
			i, ok := index[prm.Name]
			if !ok {
				index[prm.Name] = len(out)
				out = append(out, prm)
				continue
			}
			if !out[i].same(prm) {
				return nil, &ParameterConflictError{
					Name:   prm.Name,
					Reason: "passes declare different values",
					First:  out[i].At,
					Second: prm.At,
				}
			}
		}
	}
	return out, nil
}

// Reconcile merges preset parameters with shader parameter pragmas.
//
// Shader pragmas define the bounds. A preset value for the same name replaces
// the pragma default and must lie within the pragma bounds. A non-zero preset
// step replaces the pragma step. A preset that also declares bounds must
// agree with the pragma exactly. Preset parameters no shader declares are
// kept as they are.
//
// The result lists pragma parameters in declaration order followed by the
// preset-only parameters in preset order.
func Reconcile(params []preset.ParameterConfig, pragmas []Parameter) ([]preset.ParameterConfig, error) {
	fromPreset := make(map[string]preset.ParameterConfig, len(params))
	for _, pc := range params {
		fromPreset[pc.Name] = pc
	}

	var out []preset.ParameterConfig
	declared := make(map[string]bool, len(pragmas))
	for _, prm := range pragmas {
		if declared[prm.Name] {
			continue
		}
		declared[prm.Name] = true

		cfg := preset.ParameterConfig{
			Name:    prm.Name,
			Default: prm.Default,
			Bounded: true,
			Min:     prm.Min,
			Max:     prm.Max,
			Step:    prm.Step,
		}
		if pc, ok := fromPreset[prm.Name]; ok {
			if pc.Bounded && (pc.Min != prm.Min || pc.Max != prm.Max) {
				return nil, &ParameterConflictError{
					Name:   prm.Name,
					Reason: fmt.Sprintf("preset bounds [%g, %g] differ from shader bounds [%g, %g]", pc.Min, pc.Max, prm.Min, prm.Max),
					Second: prm.At,
				}
			}
			if pc.Default < prm.Min || pc.Default > prm.Max {
				return nil, &ParameterConflictError{
					Name:   prm.Name,
					Reason: fmt.Sprintf("preset value %g is outside shader bounds [%g, %g]", pc.Default, prm.Min, prm.Max),
					Second: prm.At,
				}
			}
			cfg.Default = pc.Default
			if pc.Step != 0 {
				cfg.Step = pc.Step
			}
		}
		out = append(out, cfg)
	}
	for _, pc := range params {
		if !declared[pc.Name] {
			out = append(out, pc)
		}
	}
	return out, nil
}
