// Command chainc loads a shader preset and prints its resolved render graph.
//
// Usage:
//
//	chainc -preset crt.slangp [-target spirv|glsl|hlsl|msl] [-width W -height H]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/gogpu/shaderchain"
	"github.com/gogpu/shaderchain/core"
	"github.com/gogpu/shaderchain/graph"
)

func main() {
	var (
		presetPath = flag.String("preset", "", "preset file")
		target     = flag.String("target", "spirv", "code generation target (spirv, glsl, hlsl, msl)")
		width      = flag.Uint("width", 640, "viewport width")
		height     = flag.Uint("height", 480, "viewport height")
		srcWidth   = flag.Uint("source-width", 0, "input width (default: viewport)")
		srcHeight  = flag.Uint("source-height", 0, "input height (default: viewport)")
		verbose    = flag.Bool("v", false, "log compilation details to stderr")
	)
	flag.Parse()
	log.SetFlags(0)

	if *presetPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	t, ok := core.ParseTarget(*target)
	if !ok {
		log.Fatalf("chainc: unknown target %q", *target)
	}
	if *verbose {
		shaderchain.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	l := shaderchain.NewLoader(
		shaderchain.WithTarget(t),
		shaderchain.WithViewport(core.Sz(uint32(*width), uint32(*height))),
		shaderchain.WithSourceSize(core.Sz(uint32(*srcWidth), uint32(*srcHeight))),
		shaderchain.WithTextures(false),
	)
	c, err := l.Load(context.Background(), *presetPath)
	if err != nil {
		log.Fatalf("chainc: %v", err)
	}

	p := printer{w: os.Stdout, color: term.IsTerminal(int(os.Stdout.Fd()))}
	p.chain(c)
}

type printer struct {
	w     io.Writer
	color bool
}

func (p printer) heading(s string) {
	if p.color {
		fmt.Fprintf(p.w, "\x1b[1;36m%s\x1b[0m\n", s)
		return
	}
	fmt.Fprintln(p.w, s)
}

func (p printer) chain(c *shaderchain.Chain) {
	pipe := c.Pipeline
	p.heading(fmt.Sprintf("%s (%s, %d passes)", c.Path, c.Target, len(pipe.Passes)))
	fmt.Fprintf(p.w, "source %v, viewport %v, history depth %d\n\n", pipe.Source, pipe.Viewport, pipe.HistoryDepth)

	p.heading("Passes")
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\talias\toutput\tformat\tinputs\tshader")
	for i := range pipe.Passes {
		rp := &pipe.Passes[i]
		alias := rp.Config.Alias
		if alias == "" {
			alias = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%v\t%v\t%s\t%s\n",
			rp.Index, alias, rp.OutputSize, rp.OutputFormat, inputs(rp), rp.Config.Shader)
	}
	tw.Flush()

	if len(pipe.Edges) > 0 {
		fmt.Fprintln(p.w)
		p.heading("Edges")
		for _, e := range pipe.Edges {
			fmt.Fprintf(p.w, "  %d -> %d  %s\n", e.From, e.To, e.Kind)
		}
	}

	if len(pipe.Parameters) > 0 {
		fmt.Fprintln(p.w)
		p.heading("Parameters")
		tw = tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "name\tvalue\tmin\tmax\tstep")
		for _, prm := range pipe.Parameters {
			v, _ := pipe.Parameter(prm.Name)
			fmt.Fprintf(tw, "%s\t%g\t%g\t%g\t%g\n", prm.Name, v, prm.Min, prm.Max, prm.Step)
		}
		tw.Flush()
	}
}

func inputs(rp *graph.ResolvedPass) string {
	if len(rp.Inputs) == 0 {
		return "-"
	}
	parts := make([]string, len(rp.Inputs))
	for i, in := range rp.Inputs {
		parts[i] = fmt.Sprintf("%s=%s", in.Texture.Name, producer(in.Producer))
	}
	return strings.Join(parts, ",")
}

func producer(p graph.Producer) string {
	switch p.Kind {
	case graph.ProducerPass, graph.ProducerFeedback, graph.ProducerHistory:
		return fmt.Sprintf("%s[%d]", p.Kind, p.Index)
	case graph.ProducerTexture:
		return "texture:" + p.Name
	default:
		return p.Kind.String()
	}
}
