package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/gogpu/shaderchain/compiler"
	"github.com/gogpu/shaderchain/core"
	"github.com/gogpu/shaderchain/preprocess"
)

// Compiler produces an artifact for a preprocessed source.
// *compiler.Compiler and *Cache both implement it.
type Compiler interface {
	Compile(ctx context.Context, src *preprocess.Source, target core.Target) (*compiler.Artifact, error)
}

// Key identifies a compilation: the digest of the expanded source text and
// the target. Equal text always compiles to the same artifact.
type Key struct {
	Digest [sha256.Size]byte
	Target core.Target
}

// KeyOf returns the key of compiling src for target.
func KeyOf(src *preprocess.Source, target core.Target) Key {
	return Key{Digest: sha256.Sum256([]byte(src.Text)), Target: target}
}

func (k Key) String() string {
	return hex.EncodeToString(k.Digest[:]) + "/" + k.Target.String()
}

func hashKey(k Key) uint64 {
	return binary.LittleEndian.Uint64(k.Digest[:8]) ^ uint64(k.Target)
}

// Cache is a compile-or-fetch front for a Compiler. Artifacts are kept in a
// sharded LRU keyed by Key; concurrent requests for the same key share one
// compilation. Failures are not cached.
type Cache struct {
	next   Compiler
	lru    *Sharded[Key, *compiler.Artifact]
	group  singleflight.Group
	shared atomic.Uint64
}

// New returns a cache in front of next holding up to capacity artifacts per
// shard.
func New(next Compiler, capacity int) *Cache {
	return &Cache{
		next: next,
		lru:  NewSharded[Key, *compiler.Artifact](capacity, hashKey),
	}
}

// Compile returns the cached artifact for (src, target), compiling it on a
// miss. Only one compilation per key runs at a time; other callers wait for
// it.
//
// The compilation itself is detached from ctx so that one caller giving up
// does not fail the others. A caller whose ctx ends stops waiting and gets
// ctx.Err(); the result still lands in the cache.
func (c *Cache) Compile(ctx context.Context, src *preprocess.Source, target core.Target) (*compiler.Artifact, error) {
	key := KeyOf(src, target)
	if art, ok := c.lru.Get(key); ok {
		return art, nil
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key.String(), func() (any, error) {
		if art, ok := c.lru.Get(key); ok {
			return art, nil
		}
		art, err := c.next.Compile(detached, src, target)
		if err != nil {
			return nil, err
		}
		c.lru.Add(key, art)
		return art, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.shared.Add(1)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*compiler.Artifact), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Lookup returns the cached artifact for key without compiling.
func (c *Cache) Lookup(key Key) (*compiler.Artifact, bool) {
	return c.lru.Get(key)
}

// Forget drops the artifact for key.
func (c *Cache) Forget(key Key) bool { return c.lru.Remove(key) }

// Purge drops every artifact.
func (c *Cache) Purge() { c.lru.Purge() }

// Len returns the number of cached artifacts.
func (c *Cache) Len() int { return c.lru.Len() }

// Stats returns the cache counters.
func (c *Cache) Stats() Stats {
	st := c.lru.Stats()
	st.Shared = c.shared.Load()
	return st
}
