package shaderchain

import (
	"runtime"

	"github.com/gogpu/shaderchain/cache"
	"github.com/gogpu/shaderchain/compiler"
	"github.com/gogpu/shaderchain/core"
	"github.com/gogpu/shaderchain/graph"
)

// DefaultViewport is the viewport used when a loader is given no size.
var DefaultViewport = core.Sz(640, 480)

// LoaderOption configures a Loader during creation.
//
// Example:
//
//	// SPIR-V for a 1080p window, compiling four passes at a time.
//	l := shaderchain.NewLoader(
//	    shaderchain.WithViewport(core.Sz(1920, 1080)),
//	    shaderchain.WithWorkers(4),
//	)
type LoaderOption func(*loaderOptions)

type loaderOptions struct {
	target     core.Target
	workers    int
	historyCap int
	source     core.Size
	viewport   core.Size
	textures   bool

	cache    *cache.Cache
	compiler cache.Compiler
}

func defaultLoaderOptions() loaderOptions {
	return loaderOptions{
		target:     core.TargetSPIRV,
		workers:    runtime.GOMAXPROCS(0),
		historyCap: graph.DefaultMaxHistory,
		textures:   true,
	}
}

// resolveCompiler returns the compile front the loader uses: the shared
// cache if one was given, otherwise a private cache in front of the
// configured (or default) compiler.
func (o *loaderOptions) resolveCompiler() *cache.Cache {
	if o.cache != nil {
		return o.cache
	}
	next := o.compiler
	if next == nil {
		next = compiler.New(compiler.Options{})
	}
	return cache.New(next, 0)
}

// WithTarget selects the code generation target. Default: SPIR-V.
func WithTarget(t core.Target) LoaderOption {
	return func(o *loaderOptions) {
		o.target = t
	}
}

// WithWorkers bounds the number of passes compiled concurrently.
// n <= 0 restores the default of GOMAXPROCS.
func WithWorkers(n int) LoaderOption {
	return func(o *loaderOptions) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		o.workers = n
	}
}

// WithHistoryCap sets the deepest OriginalHistory a preset may read.
func WithHistoryCap(n int) LoaderOption {
	return func(o *loaderOptions) {
		o.historyCap = n
	}
}

// WithCache shares a compilation cache between loaders. It takes precedence
// over WithCompiler.
func WithCache(c *cache.Cache) LoaderOption {
	return func(o *loaderOptions) {
		o.cache = c
	}
}

// WithCompiler replaces the naga compiler, for instance with one using
// different compiler.Options. The loader still puts its own cache in front.
func WithCompiler(c cache.Compiler) LoaderOption {
	return func(o *loaderOptions) {
		o.compiler = c
	}
}

// WithViewport sets the size of the final output.
func WithViewport(s core.Size) LoaderOption {
	return func(o *loaderOptions) {
		o.viewport = s
	}
}

// WithSourceSize sets the size of the chain input. When unset, the viewport
// size is used.
func WithSourceSize(s core.Size) LoaderOption {
	return func(o *loaderOptions) {
		o.source = s
	}
}

// WithTextures controls whether user textures are decoded during a load.
// Backends that upload textures on their own can turn it off. Default: on.
func WithTextures(load bool) LoaderOption {
	return func(o *loaderOptions) {
		o.textures = load
	}
}
