package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/shaderchain/core"
	"github.com/gogpu/shaderchain/preset"
	"github.com/gogpu/shaderchain/reflection"
)

// Options configures Build. The zero value is usable once one size is set.
type Options struct {
	// Source is the size of the chain input. Zero means Viewport.
	Source core.Size

	// Viewport is the size of the final output. Zero means Source.
	Viewport core.Size

	// MaxHistory caps OriginalHistory reads. Zero means DefaultMaxHistory.
	MaxHistory int

	// Formats holds the #pragma format of each pass; missing entries and
	// core.FormatUnknown fall back to the preset framebuffer flags.
	Formats []core.Format
}

func (o Options) withDefaults() (Options, error) {
	switch {
	case o.Source.IsZero() && o.Viewport.IsZero():
		return o, ErrNoSize
	case o.Source.IsZero():
		o.Source = o.Viewport
	case o.Viewport.IsZero():
		o.Viewport = o.Source
	}
	if o.MaxHistory <= 0 {
		o.MaxHistory = DefaultMaxHistory
	}
	return o, nil
}

// Build resolves the render graph of p. reflections[i] is the normalized
// reflection of pass i.
func Build(p *preset.Preset, reflections []*reflection.ShaderReflection, opts Options) (*Pipeline, error) {
	if len(reflections) != len(p.Passes) {
		return nil, fmt.Errorf("%w: %d passes, %d reflections", ErrReflectionCount, len(p.Passes), len(reflections))
	}
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	b := &builder{
		preset: p,
		opts:   opts,
		edges:  make(map[Edge]bool),
	}
	pl := &Pipeline{
		Passes:     make([]ResolvedPass, len(p.Passes)),
		Textures:   slices.Clone(p.Textures),
		Parameters: slices.Clone(p.Parameters),
		Values:     make(map[string]float64, len(p.Parameters)),
		Source:     opts.Source,
		Viewport:   opts.Viewport,
	}
	for _, prm := range p.Parameters {
		pl.Values[prm.Name] = prm.Default
	}

	for i, refl := range reflections {
		if refl == nil {
			return nil, fmt.Errorf("%w: pass %d has no reflection", ErrReflectionCount, i)
		}
		pass, err := b.pass(i, refl)
		if err != nil {
			return nil, err
		}
		pl.Passes[i] = pass
	}

	b.sizePasses(pl.Passes)
	for _, pass := range pl.Passes {
		for _, in := range pass.Inputs {
			if in.Mipmap && (in.Producer.Kind == ProducerPass || in.Producer.Kind == ProducerFeedback) {
				pl.Passes[in.Producer.Index].Mipmaps = true
			}
		}
	}

	pl.Edges = b.sortedEdges()
	for _, e := range pl.Edges {
		if e.Kind == EdgeFeedback {
			pl.FeedbackEdges = append(pl.FeedbackEdges, e)
		}
	}
	if err := checkAcyclic(len(pl.Passes), pl.Edges); err != nil {
		return nil, err
	}
	pl.HistoryDepth = b.history
	return pl, nil
}

type builder struct {
	preset  *preset.Preset
	opts    Options
	edges   map[Edge]bool
	history int
}

func (b *builder) pass(i int, refl *reflection.ShaderReflection) (ResolvedPass, error) {
	cfg := b.preset.Passes[i]
	format := core.FormatUnknown
	if i < len(b.opts.Formats) {
		format = b.opts.Formats[i]
	}
	rp := ResolvedPass{
		Index:        i,
		Config:       cfg,
		Reflection:   refl,
		OutputFormat: format.Resolve(cfg.SRGBFramebuffer, cfg.FloatFramebuffer),
	}

	for _, t := range refl.Textures {
		prod, err := b.resolve(i, t.Key)
		if err != nil {
			return rp, err
		}
		b.addEdge(i, prod)
		in := Input{Texture: t, Producer: prod}
		b.sampler(i, &in)
		rp.Inputs = append(rp.Inputs, in)
	}

	for _, u := range refl.Uniforms {
		switch u.Key.Semantic {
		case reflection.SemanticTextureSize:
			prod, err := b.resolve(i, u.Key.Texture)
			if err != nil {
				return rp, err
			}
			rp.Sizes = append(rp.Sizes, SizeBinding{Uniform: u, Producer: prod})
		case reflection.SemanticParameter:
			prm, ok := b.preset.Parameter(u.Key.Name)
			if !ok {
				return rp, &DanglingReferenceError{Pass: i, Name: u.Name, Reason: "no parameter with that name"}
			}
			rp.Parameters = append(rp.Parameters, ParameterBinding{Uniform: u, Config: prm, Value: prm.Default})
		}
	}
	return rp, nil
}

// resolve finds the producer of key as read by pass i.
func (b *builder) resolve(i int, key reflection.TextureKey) (Producer, error) {
	n := len(b.preset.Passes)
	switch key.Semantic {
	case reflection.TextureOriginal:
		return Producer{Kind: ProducerOriginal}, nil

	case reflection.TextureSource:
		if i == 0 {
			return Producer{Kind: ProducerOriginal}, nil
		}
		return Producer{Kind: ProducerPass, Index: i - 1}, nil

	case reflection.TextureOriginalHistory:
		if key.Index > b.opts.MaxHistory {
			return Producer{}, &HistoryDepthExceededError{Pass: i, Depth: key.Index, Max: b.opts.MaxHistory}
		}
		b.history = max(b.history, key.Index)
		return Producer{Kind: ProducerHistory, Index: key.Index}, nil

	case reflection.TexturePassOutput:
		if key.Index >= n {
			return Producer{}, &DanglingReferenceError{Pass: i, Name: key.String(),
				Reason: fmt.Sprintf("the chain has %d passes", n)}
		}
		return passOutput(i, key.Index), nil

	case reflection.TexturePassFeedback:
		if key.Index >= n {
			return Producer{}, &DanglingReferenceError{Pass: i, Name: key.String(),
				Reason: fmt.Sprintf("the chain has %d passes", n)}
		}
		return Producer{Kind: ProducerFeedback, Index: key.Index}, nil
	}

	name := key.Name
	if k := b.preset.PassByAlias(name); k >= 0 {
		return passOutput(i, k), nil
	}
	if base, ok := strings.CutSuffix(name, "Feedback"); ok {
		if k := b.preset.PassByAlias(base); k >= 0 {
			return Producer{Kind: ProducerFeedback, Index: k}, nil
		}
	}
	if t := b.preset.TextureIndex(name); t >= 0 {
		return Producer{Kind: ProducerTexture, Index: t, Name: name}, nil
	}
	return Producer{}, &DanglingReferenceError{Pass: i, Name: name, Reason: "no texture or pass alias with that name"}
}

// passOutput reads pass k from pass i: the current frame when k precedes i,
// the previous frame otherwise.
func passOutput(i, k int) Producer {
	if k < i {
		return Producer{Kind: ProducerPass, Index: k}
	}
	return Producer{Kind: ProducerFeedback, Index: k}
}

func (b *builder) addEdge(i int, prod Producer) {
	switch prod.Kind {
	case ProducerPass:
		b.edges[Edge{From: prod.Index, To: i, Kind: EdgeCurrentFrame}] = true
	case ProducerFeedback:
		b.edges[Edge{From: prod.Index, To: i, Kind: EdgeFeedback}] = true
	}
}

// sampler fills the sampler state of in. The chain input and its history
// use the settings of pass 0; a pass output uses the settings of the pass
// that reads it as Source; user textures carry their own.
func (b *builder) sampler(i int, in *Input) {
	passes := b.preset.Passes
	from := passes[i]
	switch in.Producer.Kind {
	case ProducerOriginal, ProducerHistory:
		from = passes[0]
	case ProducerPass, ProducerFeedback:
		if k := in.Producer.Index + 1; k < len(passes) {
			from = passes[k]
		}
	case ProducerTexture:
		t := b.preset.Textures[in.Producer.Index]
		in.Filter, in.Wrap, in.Mipmap = t.Filter, t.Wrap, t.Mipmap
		return
	}
	in.Filter, in.Wrap, in.Mipmap = from.Filter, from.Wrap, from.MipmapInput
}

func (b *builder) sortedEdges() []Edge {
	edges := make([]Edge, 0, len(b.edges))
	for e := range b.edges {
		edges = append(edges, e)
	}
	slices.SortFunc(edges, func(x, y Edge) int {
		if x.To != y.To {
			return x.To - y.To
		}
		if x.From != y.From {
			return x.From - y.From
		}
		return int(x.Kind) - int(y.Kind)
	})
	return edges
}

// checkAcyclic rejects cycles among the current-frame edges of an n-pass
// graph. Feedback edges are ignored.
func checkAcyclic(n int, edges []Edge) error {
	adj := make([][]int, n)
	for _, e := range edges {
		if e.Kind == EdgeCurrentFrame {
			adj[e.From] = append(adj[e.From], e.To)
		}
	}

	const (
		unvisited = iota
		active
		done
	)
	state := make([]uint8, n)
	var stack []int
	var visit func(int) []int
	visit = func(v int) []int {
		state[v] = active
		stack = append(stack, v)
		for _, w := range adj[v] {
			switch state[w] {
			case active:
				start := slices.Index(stack, w)
				cycle := append(slices.Clone(stack[start:]), w)
				return cycle
			case unvisited:
				if c := visit(w); c != nil {
					return c
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[v] = done
		return nil
	}
	for v := range n {
		if state[v] == unvisited {
			if c := visit(v); c != nil {
				return &CyclicDependencyError{Cycle: c}
			}
		}
	}
	return nil
}
