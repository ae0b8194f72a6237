package shaderchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/shaderchain/cache"
	"github.com/gogpu/shaderchain/compiler"
	"github.com/gogpu/shaderchain/core"
	"github.com/gogpu/shaderchain/graph"
	"github.com/gogpu/shaderchain/lut"
	"github.com/gogpu/shaderchain/preprocess"
	"github.com/gogpu/shaderchain/preset"
	"github.com/gogpu/shaderchain/reflection"
)

// Chain is one activated generation of a preset. It is immutable; parameter
// changes, resizes and reloads produce a new Chain.
type Chain struct {
	// Generation increases by one with every chain a Loader activates.
	Generation uint64

	Path   string
	Target core.Target

	// Preset is the parsed preset with pass aliases from #pragma name and
	// parameters reconciled with the shader pragmas.
	Preset *preset.Preset

	// Per-pass results, indexed like Preset.Passes.
	Sources     []*preprocess.Source
	Artifacts   []*compiler.Artifact
	Reflections []*reflection.ShaderReflection

	Pipeline *graph.Pipeline

	// Textures holds the decoded user textures, in Preset.Textures order.
	// Nil when the loader was created with WithTextures(false).
	Textures []*lut.Texture
}

// Code returns the generated code of pass i for stage.
func (c *Chain) Code(i int, stage core.Stage) ([]byte, bool) {
	if i < 0 || i >= len(c.Artifacts) {
		return nil, false
	}
	u, ok := c.Artifacts[i].Unit(stage)
	return u.Code, ok
}

// Files returns every file the chain was built from, sorted. A watcher that
// sees any of them change should call Reload.
func (c *Chain) Files() []string {
	files := []string{c.Path}
	for _, src := range c.Sources {
		files = append(files, src.Files...)
	}
	for _, t := range c.Preset.Textures {
		files = append(files, t.Path)
	}
	slices.Sort(files)
	return slices.Compact(files)
}

// Loader turns preset files into chains and keeps the active one.
//
// Loads may overlap: starting a load cancels the one in progress, which
// then returns ErrSuperseded without waiting for its compilations. Only the
// newest load can activate its chain. A failed load leaves the active chain
// untouched. A chain activated by a load reflects every Resize and
// SetParameter call made while it was being built. All methods are safe for
// concurrent use.
type Loader struct {
	opts    loaderOptions
	compile *cache.Cache
	active  atomic.Pointer[Chain]

	mu         sync.Mutex
	seq        uint64 // number of loads started
	epoch      uint64 // number of Resize and SetParameter calls
	generation uint64
	cancel     context.CancelCauseFunc
	source     core.Size
	viewport   core.Size
	tuned      map[string]tuning
}

// tuning is a parameter value set through SetParameter.
type tuning struct {
	value float64
	epoch uint64
}

// NewLoader returns a loader with no active chain.
func NewLoader(opts ...LoaderOption) *Loader {
	o := defaultLoaderOptions()
	for _, opt := range opts {
		opt(&o)
	}
	l := &Loader{
		opts:     o,
		compile:  o.resolveCompiler(),
		source:   o.source,
		viewport: o.viewport,
		tuned:    make(map[string]tuning),
	}
	if l.source.IsZero() && l.viewport.IsZero() {
		l.viewport = DefaultViewport
	}
	return l
}

// Active returns the active chain, or nil before the first successful load.
func (l *Loader) Active() *Chain { return l.active.Load() }

// Cache returns the compilation cache of the loader.
func (l *Loader) Cache() *cache.Cache { return l.compile }

// Load parses the preset at path, compiles every pass and activates the
// resulting chain.
func (l *Loader) Load(ctx context.Context, path string) (*Chain, error) {
	ctx, seq, from, done := l.begin(ctx)
	defer done()

	log := Logger().With("preset", path, "load", seq)
	log.Debug("shaderchain: load started", "target", l.opts.target)

	c, err := l.build(ctx, log, path, from)
	if err == nil {
		err = l.activate(seq, from, c)
	}
	if err != nil {
		log.Warn("shaderchain: load failed", "err", err)
		return nil, err
	}
	log.Info("shaderchain: chain activated",
		"generation", c.Generation,
		"passes", len(c.Pipeline.Passes),
		"history", c.Pipeline.HistoryDepth)
	return c, nil
}

// Reload loads the preset of the active chain again.
func (l *Loader) Reload(ctx context.Context) (*Chain, error) {
	cur := l.Active()
	if cur == nil {
		return nil, ErrNoChain
	}
	return l.Load(ctx, cur.Path)
}

// SetParameter activates a copy of the active chain with the named
// parameter set to v, clamped into its bounds.
func (l *Loader) SetParameter(name string, v float64) (*Chain, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur := l.active.Load()
	if cur == nil {
		return nil, ErrNoChain
	}
	pipe, err := cur.Pipeline.WithParameter(name, v)
	if err != nil {
		return nil, err
	}
	next := *cur
	next.Pipeline = pipe
	got, _ := pipe.Parameter(name)
	l.epoch++
	l.tuned[name] = tuning{value: got, epoch: l.epoch}
	l.store(&next)

	Logger().Debug("shaderchain: parameter set", "name", name, "value", got, "generation", next.Generation)
	return &next, nil
}

// Resize rebuilds the render graph of the active chain for new source and
// viewport sizes, keeping its parameter values. Later loads use the new
// sizes too. A zero size follows the other one.
func (l *Loader) Resize(source, viewport core.Size) (*Chain, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur := l.active.Load()
	if cur == nil {
		return nil, ErrNoChain
	}
	pipe, err := graph.Build(cur.Preset, cur.Reflections, l.graphOptions(cur.Sources, source, viewport))
	if err != nil {
		return nil, err
	}
	for _, prm := range cur.Pipeline.Parameters {
		v, _ := cur.Pipeline.Parameter(prm.Name)
		if pipe.Values[prm.Name] == v {
			continue
		}
		if pipe, err = pipe.WithParameter(prm.Name, v); err != nil {
			return nil, err
		}
	}
	l.source, l.viewport = source, viewport
	l.epoch++

	next := *cur
	next.Pipeline = pipe
	l.store(&next)
	Logger().Info("shaderchain: chain resized",
		"generation", next.Generation,
		"source", pipe.Source,
		"viewport", pipe.Viewport)
	return &next, nil
}

// snapshot is the loader state a load starts from.
type snapshot struct {
	epoch            uint64
	source, viewport core.Size
}

// begin registers a new load, cancelling the one in progress.
func (l *Loader) begin(parent context.Context) (context.Context, uint64, snapshot, func()) {
	ctx, cancel := context.WithCancelCause(parent)

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel(ErrSuperseded)
	}
	l.seq++
	seq := l.seq
	l.cancel = cancel
	from := snapshot{epoch: l.epoch, source: l.source, viewport: l.viewport}
	l.mu.Unlock()

	return ctx, seq, from, func() {
		l.mu.Lock()
		if l.seq == seq {
			l.cancel = nil
		}
		l.mu.Unlock()
		cancel(nil)
	}
}

// activate makes c the active chain unless a newer load has started.
func (l *Loader) activate(seq uint64, from snapshot, c *Chain) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.seq {
		return ErrSuperseded
	}
	if err := l.catchUp(from, c); err != nil {
		return err
	}
	l.store(c)
	return nil
}

// catchUp applies to c the resizes and parameter changes made since from.
// It must be called with l.mu held.
func (l *Loader) catchUp(from snapshot, c *Chain) error {
	if from.epoch == l.epoch {
		return nil
	}
	pipe := c.Pipeline
	if l.source != from.source || l.viewport != from.viewport {
		p, err := graph.Build(c.Preset, c.Reflections, l.graphOptions(c.Sources, l.source, l.viewport))
		if err != nil {
			return err
		}
		pipe = p
	}
	for name, t := range l.tuned {
		if t.epoch <= from.epoch {
			continue
		}
		p, err := pipe.WithParameter(name, t.value)
		if errors.Is(err, graph.ErrUnknownParameter) {
			continue
		}
		if err != nil {
			return err
		}
		pipe = p
	}
	c.Pipeline = pipe
	return nil
}

// store must be called with l.mu held.
func (l *Loader) store(c *Chain) {
	l.generation++
	c.Generation = l.generation
	l.active.Store(c)
}

func (l *Loader) graphOptions(sources []*preprocess.Source, source, viewport core.Size) graph.Options {
	formats := make([]core.Format, len(sources))
	for i, src := range sources {
		formats[i] = src.Format
	}
	return graph.Options{
		Source:     source,
		Viewport:   viewport,
		MaxHistory: l.opts.historyCap,
		Formats:    formats,
	}
}

// interrupted replaces err with the reason ctx ended, if it did.
func interrupted(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return context.Cause(ctx)
	}
	return err
}

func (l *Loader) build(ctx context.Context, log *slog.Logger, path string, from snapshot) (*Chain, error) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	p, err := preset.ParseFile(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, context.Cause(ctx)
	}

	sources, err := l.preprocess(ctx, p)
	if err != nil {
		return nil, interrupted(ctx, err)
	}
	resolved, err := reconcile(p, sources)
	if err != nil {
		return nil, err
	}

	target := l.opts.target
	artifacts, refls, err := l.compilePasses(ctx, log, resolved, sources, target)
	if err != nil {
		return nil, interrupted(ctx, err)
	}

	pipe, err := graph.Build(resolved, refls, l.graphOptions(sources, from.source, from.viewport))
	if err != nil {
		return nil, err
	}

	var textures []*lut.Texture
	if l.opts.textures && len(resolved.Textures) > 0 {
		textures, err = lut.LoadAll(ctx, resolved.Textures, l.opts.workers)
		if err != nil {
			return nil, interrupted(ctx, err)
		}
		log.Debug("shaderchain: textures loaded", "count", len(textures))
	}

	return &Chain{
		Path:        path,
		Target:      target,
		Preset:      resolved,
		Sources:     sources,
		Artifacts:   artifacts,
		Reflections: refls,
		Pipeline:    pipe,
		Textures:    textures,
	}, nil
}

func (l *Loader) preprocess(ctx context.Context, p *preset.Preset) ([]*preprocess.Source, error) {
	sources := make([]*preprocess.Source, len(p.Passes))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.workers)
	for i, pc := range p.Passes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, err := preprocess.File(pc.Shader)
			if err != nil {
				return &PassError{Pass: i, Shader: pc.Shader, Err: err}
			}
			sources[i] = src
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sources, nil
}

func (l *Loader) compilePasses(ctx context.Context, log *slog.Logger, p *preset.Preset, sources []*preprocess.Source, target core.Target) ([]*compiler.Artifact, []*reflection.ShaderReflection, error) {
	names := userNames(p)
	artifacts := make([]*compiler.Artifact, len(sources))
	refls := make([]*reflection.ShaderReflection, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.workers)
	for i, src := range sources {
		g.Go(func() error {
			key := cache.KeyOf(src, target)
			_, cached := l.compile.Lookup(key)
			art, err := l.compile.Compile(ctx, src, target)
			if err != nil {
				return &PassError{Pass: i, Shader: src.Path, Err: err}
			}
			r, err := reflection.Normalize(reflection.Raw{
				Module:    art.Module,
				Target:    target,
				UserNames: names,
			}, core.StageAll)
			if err != nil {
				return &PassError{Pass: i, Shader: src.Path, Err: err}
			}
			log.Debug("shaderchain: pass compiled", "pass", i, "shader", src.Path, "key", key.String(), "cached", cached)
			artifacts[i], refls[i] = art, r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return artifacts, refls, nil
}

// reconcile returns a copy of p with pass aliases taken from #pragma name
// where the preset sets none, and parameters merged with the pragmas of
// every pass.
func reconcile(p *preset.Preset, sources []*preprocess.Source) (*preset.Preset, error) {
	out := *p
	out.Passes = slices.Clone(p.Passes)

	owner := make(map[string]int, len(out.Passes))
	for i := range out.Passes {
		pc := &out.Passes[i]
		if pc.Alias == "" {
			pc.Alias = sources[i].Name
		}
		if pc.Alias == "" {
			continue
		}
		if j, dup := owner[pc.Alias]; dup {
			return nil, &PassError{
				Pass:   i,
				Shader: pc.Shader,
				Err:    fmt.Errorf("alias %q already names pass %d", pc.Alias, j),
			}
		}
		if p.TextureIndex(pc.Alias) >= 0 {
			return nil, &PassError{
				Pass:   i,
				Shader: pc.Shader,
				Err:    fmt.Errorf("alias %q shadows a texture", pc.Alias),
			}
		}
		owner[pc.Alias] = i
	}

	pragmas, err := preprocess.Collect(sources...)
	if err != nil {
		return nil, err
	}
	if out.Parameters, err = preprocess.Reconcile(p.Parameters, pragmas); err != nil {
		return nil, err
	}
	return &out, nil
}

// userNames lists the names a pass may bind besides the built-in semantics.
func userNames(p *preset.Preset) map[string]bool {
	names := make(map[string]bool)
	for _, t := range p.Textures {
		names[t.Name] = true
	}
	for _, pc := range p.Passes {
		if pc.Alias != "" {
			names[pc.Alias] = true
			names[pc.Alias+"Feedback"] = true
		}
	}
	for _, prm := range p.Parameters {
		names[prm.Name] = true
	}
	return names
}
