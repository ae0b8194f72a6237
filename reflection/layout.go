// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package reflection

import (
	"sort"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/shaderchain/core"
)

// BindGroupLayout renders the reflection as a WebGPU bind group layout for
// group 0. WebGPU has no push constants, so a push block always appears as a
// uniform buffer at PushBlock.Binding. Entries are ordered by binding.
func (r *ShaderReflection) BindGroupLayout() []gputypes.BindGroupLayoutEntry {
	var entries []gputypes.BindGroupLayoutEntry

	if r.UBO != nil {
		e := gputypes.BindGroupLayoutEntry{
			Binding: r.UBO.Binding,
			Buffer:  &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		}
		setVisibility(&e, r.UBO.Stage)
		entries = append(entries, e)
	}
	if r.Push != nil {
		e := gputypes.BindGroupLayoutEntry{
			Binding: r.Push.Binding,
			Buffer:  &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		}
		setVisibility(&e, r.Push.Stage)
		entries = append(entries, e)
	}
	for _, t := range r.Textures {
		sampleType := gputypes.TextureSampleTypeFloat
		if t.Depth {
			sampleType = gputypes.TextureSampleTypeDepth
		}
		e := gputypes.BindGroupLayoutEntry{
			Binding: t.Binding,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    sampleType,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		}
		setVisibility(&e, t.Stage)
		entries = append(entries, e)

		if t.HasSampler {
			s := gputypes.BindGroupLayoutEntry{
				Binding: t.SamplerBinding,
				Sampler: &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			}
			if t.Depth {
				s.Sampler.Type = gputypes.SamplerBindingTypeNonFiltering
			}
			setVisibility(&s, t.Stage)
			entries = append(entries, s)
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Binding < entries[j].Binding })
	return entries
}

func setVisibility(e *gputypes.BindGroupLayoutEntry, s core.Stage) {
	if s.Has(core.StageVertex) {
		e.Visibility |= gputypes.ShaderStageVertex
	}
	if s.Has(core.StageFragment) {
		e.Visibility |= gputypes.ShaderStageFragment
	}
}
