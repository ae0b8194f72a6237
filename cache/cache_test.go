package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/shaderchain/compiler"
	"github.com/gogpu/shaderchain/core"
	"github.com/gogpu/shaderchain/preprocess"
)

func TestRecency(t *testing.T) {
	var l recency[string]
	a := l.push("a")
	l.push("b")
	c := l.push("c")
	if l.len() != 3 {
		t.Fatalf("len = %d", l.len())
	}

	l.touch(a) // order: a c b
	if k, _ := l.evict(); k != "b" {
		t.Errorf("evicted %q, want b", k)
	}
	l.remove(c)
	if k, _ := l.evict(); k != "a" {
		t.Errorf("evicted %q, want a", k)
	}
	if _, ok := l.evict(); ok || l.len() != 0 {
		t.Errorf("evict on empty list: ok=%v len=%d", ok, l.len())
	}

	// A single element stays consistent through touch.
	x := l.push("x")
	l.touch(x)
	if k, ok := l.evict(); !ok || k != "x" {
		t.Errorf("evicted %q, %v", k, ok)
	}
}

func sameShard(string) uint64 { return 0 }

func TestShardedEviction(t *testing.T) {
	s := NewSharded[string, int](2, sameShard)
	s.Add("a", 1)
	s.Add("b", 2)
	s.Add("c", 3) // evicts a
	if _, ok := s.Get("a"); ok {
		t.Error("a survived eviction")
	}
	if v, ok := s.Get("b"); !ok || v != 2 { // b is now most recent
		t.Errorf("Get(b) = %d, %v", v, ok)
	}
	s.Add("d", 4) // evicts c
	if _, ok := s.Get("c"); ok {
		t.Error("c survived eviction")
	}
	s.Add("b", 20)
	if v, _ := s.Get("b"); v != 20 {
		t.Errorf("Get(b) after update = %d", v)
	}

	st := s.Stats()
	if st.Len != 2 || st.Evictions != 2 || st.Capacity != 2*ShardCount {
		t.Errorf("Stats = %+v", st)
	}
	if st.Hits != 2 || st.Misses != 2 {
		t.Errorf("hits/misses = %d/%d, want 2/2", st.Hits, st.Misses)
	}
	if r := st.HitRate(); r != 0.5 {
		t.Errorf("HitRate = %v", r)
	}

	if !s.Remove("b") || s.Remove("b") {
		t.Error("Remove(b) should succeed exactly once")
	}
	s.Purge()
	if s.Len() != 0 {
		t.Errorf("Len after Purge = %d", s.Len())
	}
}

func TestShardedConcurrent(t *testing.T) {
	s := NewSharded[int, int](64, func(k int) uint64 { return uint64(k) * 0x9e3779b97f4a7c15 })
	var wg sync.WaitGroup
	for g := 0; g < 32; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := g*200 + i
				s.Add(k, k)
				if v, ok := s.Get(k); ok && v != k {
					t.Errorf("Get(%d) = %d", k, v)
				}
			}
		}(g)
	}
	wg.Wait()
	if n := s.Len(); n == 0 || n > 64*ShardCount {
		t.Errorf("Len = %d", n)
	}
}

// fakeCompiler counts compilations and optionally blocks until released.
type fakeCompiler struct {
	calls   atomic.Int32
	release chan struct{}
	fail    atomic.Bool
	ctxErr  atomic.Value
}

func (f *fakeCompiler) Compile(ctx context.Context, src *preprocess.Source, target core.Target) (*compiler.Artifact, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	f.ctxErr.Store(errString(ctx.Err()))
	if f.fail.Load() {
		return nil, errors.New("compile failed")
	}
	return &compiler.Artifact{
		Target: target,
		Units:  []compiler.Unit{{Stage: core.StageAll, Code: []byte(src.Text)}},
	}, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func source(text string) *preprocess.Source { return &preprocess.Source{Text: text} }

func TestCacheHit(t *testing.T) {
	f := &fakeCompiler{}
	c := New(f, 0)
	ctx := context.Background()

	a, err := c.Compile(ctx, source("shader"), core.TargetSPIRV)
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Compile(ctx, source("shader"), core.TargetSPIRV)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("second compile returned a different artifact")
	}
	if n := f.calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
	if _, ok := c.Lookup(KeyOf(source("shader"), core.TargetSPIRV)); !ok {
		t.Error("Lookup missed a cached key")
	}
	if !c.Forget(KeyOf(source("shader"), core.TargetSPIRV)) || c.Len() != 0 {
		t.Error("Forget did not drop the artifact")
	}
}

func TestCacheKeys(t *testing.T) {
	f := &fakeCompiler{}
	c := New(f, 0)
	ctx := context.Background()

	for _, target := range []core.Target{core.TargetSPIRV, core.TargetGLSL} {
		for _, text := range []string{"a", "b"} {
			if _, err := c.Compile(ctx, source(text), target); err != nil {
				t.Fatal(err)
			}
		}
	}
	if n := f.calls.Load(); n != 4 {
		t.Errorf("calls = %d, want 4", n)
	}
	if KeyOf(source("a"), core.TargetSPIRV) == KeyOf(source("a"), core.TargetGLSL) {
		t.Error("keys ignore the target")
	}
	if KeyOf(source("a"), core.TargetSPIRV) != KeyOf(&preprocess.Source{Path: "/elsewhere", Text: "a"}, core.TargetSPIRV) {
		t.Error("keys depend on more than the text")
	}
}

func TestCacheDeduplicatesInFlight(t *testing.T) {
	f := &fakeCompiler{release: make(chan struct{})}
	c := New(f, 0)

	const callers = 16
	var wg sync.WaitGroup
	results := make([]*compiler.Artifact, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			art, err := c.Compile(context.Background(), source("same"), core.TargetHLSL)
			if err != nil {
				t.Error(err)
			}
			results[i] = art
		}()
	}
	for f.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(10 * time.Millisecond)
	close(f.release)
	wg.Wait()

	if n := f.calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
	for i, r := range results {
		if r != results[0] {
			t.Errorf("caller %d got a different artifact", i)
		}
	}
}

func TestCacheIndependentKeys(t *testing.T) {
	f := &blockingByText{blocked: make(chan struct{})}
	c := New(f, 0)

	done := make(chan error, 1)
	go func() {
		_, err := c.Compile(context.Background(), source("slow"), core.TargetSPIRV)
		done <- err
	}()

	// "fast" must not wait for "slow".
	if _, err := c.Compile(context.Background(), source("fast"), core.TargetSPIRV); err != nil {
		t.Fatal(err)
	}
	close(f.blocked)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

type blockingByText struct{ blocked chan struct{} }

func (b *blockingByText) Compile(_ context.Context, src *preprocess.Source, target core.Target) (*compiler.Artifact, error) {
	if src.Text == "slow" {
		<-b.blocked
	}
	return &compiler.Artifact{Target: target}, nil
}

func TestCacheWaiterGivesUp(t *testing.T) {
	f := &fakeCompiler{release: make(chan struct{})}
	c := New(f, 0)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := c.Compile(ctx, source("x"), core.TargetMSL)
		errc <- err
	}()
	for f.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("canceled caller kept waiting")
	}

	close(f.release)
	if _, err := c.Compile(context.Background(), source("x"), core.TargetMSL); err != nil {
		t.Fatal(err)
	}
	if n := f.calls.Load(); n != 1 {
		t.Errorf("calls = %d, want the abandoned compilation to be reused", n)
	}
	if got := f.ctxErr.Load(); got != "" {
		t.Errorf("compilation saw ctx error %q", got)
	}
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	f := &fakeCompiler{}
	f.fail.Store(true)
	c := New(f, 0)

	if _, err := c.Compile(context.Background(), source("bad"), core.TargetSPIRV); err == nil {
		t.Fatal("expected an error")
	}
	f.fail.Store(false)
	if _, err := c.Compile(context.Background(), source("bad"), core.TargetSPIRV); err != nil {
		t.Fatal(err)
	}
	if n := f.calls.Load(); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
}

func TestCacheStats(t *testing.T) {
	c := New(&fakeCompiler{}, 1)
	ctx := context.Background()
	for i := range 3 {
		if _, err := c.Compile(ctx, source(strconv.Itoa(i)), core.TargetSPIRV); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := c.Compile(ctx, source("0"), core.TargetSPIRV); err != nil {
		t.Fatal(err)
	}
	st := c.Stats()
	if st.Capacity != ShardCount {
		t.Errorf("Capacity = %d", st.Capacity)
	}
	if st.Hits+st.Misses == 0 {
		t.Errorf("no lookups counted: %+v", st)
	}
	c.Purge()
	if c.Len() != 0 {
		t.Errorf("Len after Purge = %d", c.Len())
	}
}
