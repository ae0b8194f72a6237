package graph

import (
	"fmt"
	"slices"

	"github.com/gogpu/shaderchain/core"
	"github.com/gogpu/shaderchain/preset"
	"github.com/gogpu/shaderchain/reflection"
)

// DefaultMaxHistory is the history cap used when Options.MaxHistory is zero.
const DefaultMaxHistory = 7

// MaxOutputDimension bounds each axis of a computed pass output size.
const MaxOutputDimension = 16384

// EdgeKind tags a dependency between two passes.
type EdgeKind uint8

const (
	// EdgeCurrentFrame means the consumer reads the producer's output of
	// the frame being rendered. These edges must form a DAG.
	EdgeCurrentFrame EdgeKind = iota
	// EdgeFeedback means the consumer reads the producer's output of the
	// previous frame.
	EdgeFeedback
)

func (k EdgeKind) String() string {
	if k == EdgeFeedback {
		return "feedback"
	}
	return "current-frame"
}

// Edge is a dependency of pass To on the output of pass From.
type Edge struct {
	From int
	To   int
	Kind EdgeKind
}

// ProducerKind says where a sampled texture comes from.
type ProducerKind uint8

const (
	// ProducerOriginal is the chain input of the current frame.
	ProducerOriginal ProducerKind = iota
	// ProducerPass is the current-frame output of pass Index.
	ProducerPass
	// ProducerFeedback is the previous-frame output of pass Index.
	ProducerFeedback
	// ProducerHistory is the chain input Index frames ago.
	ProducerHistory
	// ProducerTexture is the user texture Preset.Textures[Index].
	ProducerTexture
)

var producerNames = [...]string{
	ProducerOriginal: "original",
	ProducerPass:     "pass",
	ProducerFeedback: "feedback",
	ProducerHistory:  "history",
	ProducerTexture:  "texture",
}

func (k ProducerKind) String() string {
	if int(k) < len(producerNames) {
		return producerNames[k]
	}
	return "unknown"
}

// Producer identifies the texture a binding reads.
type Producer struct {
	Kind  ProducerKind
	Index int    // pass index, history depth or texture index
	Name  string // user texture name, ProducerTexture only
}

// Input is a resolved texture binding of a pass.
type Input struct {
	Texture  reflection.Texture
	Producer Producer

	// Sampler state for the binding.
	Filter core.FilterMode
	Wrap   core.WrapMode
	Mipmap bool
}

// SizeBinding feeds a <Texture>Size uniform with the size of Producer.
type SizeBinding struct {
	Uniform  reflection.Uniform
	Producer Producer
}

// ParameterBinding feeds a user parameter uniform.
type ParameterBinding struct {
	Uniform reflection.Uniform
	Config  preset.ParameterConfig
	Value   float64
}

// ResolvedPass is one pass of a built pipeline.
type ResolvedPass struct {
	Index      int
	Config     preset.PassConfig
	Reflection *reflection.ShaderReflection

	Inputs     []Input
	Sizes      []SizeBinding
	Parameters []ParameterBinding

	OutputSize   core.Size
	OutputFormat core.Format

	// Mipmaps is set when a consumer asked for a mipmapped view of the output.
	Mipmaps bool
}

// FrameCount returns the value of the FrameCount uniform for frame.
func (p *ResolvedPass) FrameCount(frame uint64) uint32 {
	if p.Config.FrameCountMod == 0 {
		return uint32(frame)
	}
	return uint32(frame % uint64(p.Config.FrameCountMod))
}

// Pipeline is the immutable render graph of one chain generation.
type Pipeline struct {
	Passes []ResolvedPass

	// Textures are the user textures the backend must load.
	Textures []preset.TextureConfig

	// Parameters are the chain parameters in declaration order; Values holds
	// their current values.
	Parameters []preset.ParameterConfig
	Values     map[string]float64

	// HistoryDepth is the deepest OriginalHistory read by any pass.
	HistoryDepth int

	// Edges holds every dependency, sorted by consumer, producer, kind.
	// FeedbackEdges is the subset tagged EdgeFeedback.
	Edges         []Edge
	FeedbackEdges []Edge

	Source   core.Size
	Viewport core.Size
}

// Output returns the final pass.
func (p *Pipeline) Output() *ResolvedPass { return &p.Passes[len(p.Passes)-1] }

// FeedbackPasses returns the ascending indices of passes whose previous
// output must be kept alive for one more frame.
func (p *Pipeline) FeedbackPasses() []int {
	var out []int
	seen := make(map[int]bool)
	for _, e := range p.FeedbackEdges {
		if !seen[e.From] {
			seen[e.From] = true
			out = append(out, e.From)
		}
	}
	slices.Sort(out)
	return out
}

// Parameter returns the current value of the named parameter.
func (p *Pipeline) Parameter(name string) (float64, bool) {
	v, ok := p.Values[name]
	return v, ok
}

// WithParameter returns a copy of the pipeline with the named parameter set
// to v, clamped into its bounds. The receiver is not modified.
func (p *Pipeline) WithParameter(name string, v float64) (*Pipeline, error) {
	idx := -1
	for i, prm := range p.Parameters {
		if prm.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	v = p.Parameters[idx].Clamp(v)

	next := *p
	next.Values = make(map[string]float64, len(p.Values))
	for k, old := range p.Values {
		next.Values[k] = old
	}
	next.Values[name] = v

	next.Passes = make([]ResolvedPass, len(p.Passes))
	for i, pass := range p.Passes {
		pass.Parameters = append([]ParameterBinding(nil), pass.Parameters...)
		for j := range pass.Parameters {
			if pass.Parameters[j].Config.Name == name {
				pass.Parameters[j].Value = v
			}
		}
		next.Passes[i] = pass
	}
	return &next, nil
}
