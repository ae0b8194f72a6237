// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package reflection turns compiled shader IR into a backend-neutral binding
// model.
//
// A pass shader talks to the runtime only through names. Uniform block
// members, push block members and textures are matched against a fixed table
// of semantics (MVP, OutputSize, FrameCount, Source, PassOutput2,
// OriginalHistory1, SourceSize and so on). Names that are not in the table
// but belong to the preset (user textures, pass aliases, parameters) are kept
// as opaque user bindings keyed by their declared name; the render graph
// builder resolves them later. Anything else is an error.
//
// Samplers are paired with textures by name: the sampler for texture T must
// be called TSampler.
//
// Offsets and sizes come straight from the IR. Normalize validates, renames
// and re-buckets; it never computes a layout of its own.
package reflection
