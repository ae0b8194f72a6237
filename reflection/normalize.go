// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package reflection

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gogpu/naga/ir"

	"github.com/gogpu/shaderchain/core"
)

// Normalize converts raw IR reflection into a ShaderReflection. stage selects
// the entry points whose bindings are reflected, normally core.StageAll.
// Globals no selected entry point uses are ignored.
func Normalize(raw Raw, stage core.Stage) (*ShaderReflection, error) {
	if raw.Module == nil {
		return nil, ErrNoModule
	}
	usage, err := globalUsage(raw.Module, stage)
	if err != nil {
		return nil, err
	}

	n := &normalizer{
		m:        raw.Module,
		raw:      raw,
		classify: Classifier{User: raw.UserNames},
		slots:    make(map[uint32]string),
		out:      &ShaderReflection{},
	}
	for h, gv := range raw.Module.GlobalVariables {
		st := usage[ir.GlobalVariableHandle(h)]
		if st == core.StageNone {
			continue
		}
		switch gv.Space {
		case ir.SpaceUniform:
			err = n.uniformBlock(gv, st)
		case ir.SpacePushConstant:
			err = n.pushBlock(gv, st)
		case ir.SpaceHandle:
			err = n.handle(gv, st)
		case ir.SpaceStorage:
			err = &UnsupportedBindingError{Name: gv.Name, Reason: "storage buffers are not supported"}
		}
		if err != nil {
			return nil, err
		}
	}
	if err := n.pairSamplers(); err != nil {
		return nil, err
	}
	if err := n.checkOverlap(); err != nil {
		return nil, err
	}
	if err := n.placePush(); err != nil {
		return nil, err
	}

	sort.SliceStable(n.out.Uniforms, func(i, j int) bool {
		a, b := n.out.Uniforms[i], n.out.Uniforms[j]
		if a.Block != b.Block {
			return a.Block < b.Block
		}
		return a.Offset < b.Offset
	})
	sort.SliceStable(n.out.Textures, func(i, j int) bool {
		return n.out.Textures[i].Binding < n.out.Textures[j].Binding
	})
	return n.out, nil
}

type normalizer struct {
	m        *ir.Module
	raw      Raw
	classify Classifier
	slots    map[uint32]string // binding slot -> declared name
	samplers []sampler
	out      *ShaderReflection
}

type sampler struct {
	name    string
	binding uint32
	stage   core.Stage
}

func (n *normalizer) claimSlot(gv ir.GlobalVariable) (uint32, error) {
	if gv.Binding == nil {
		return 0, &UnsupportedBindingError{Name: gv.Name, Reason: "resource has no @group/@binding"}
	}
	if gv.Binding.Group != 0 {
		return 0, &UnsupportedBindingError{Name: gv.Name, Reason: fmt.Sprintf("group %d is not supported, only group 0", gv.Binding.Group)}
	}
	b := gv.Binding.Binding
	if b >= MaxBindings {
		return 0, &UnsupportedBindingError{Name: gv.Name, Reason: fmt.Sprintf("binding %d exceeds the limit of %d slots", b, MaxBindings)}
	}
	if prev, taken := n.slots[b]; taken {
		return 0, &BindingCollisionError{First: prev, Second: gv.Name, Reason: fmt.Sprintf("both use binding %d", b)}
	}
	n.slots[b] = gv.Name
	return b, nil
}

func (n *normalizer) structType(gv ir.GlobalVariable) (ir.StructType, error) {
	if int(gv.Type) >= len(n.m.Types) {
		return ir.StructType{}, &UnsupportedBindingError{Name: gv.Name, Reason: "invalid type handle"}
	}
	st, ok := n.m.Types[gv.Type].Inner.(ir.StructType)
	if !ok {
		return ir.StructType{}, &UnsupportedBindingError{Name: gv.Name, Reason: "uniform and push blocks must be structs"}
	}
	return st, nil
}

func (n *normalizer) uniformBlock(gv ir.GlobalVariable, stage core.Stage) error {
	if n.out.UBO != nil {
		return &UnsupportedBindingError{Name: gv.Name, Reason: "only one uniform block is supported, " + n.out.UBO.Name + " is already declared"}
	}
	st, err := n.structType(gv)
	if err != nil {
		return err
	}
	binding, err := n.claimSlot(gv)
	if err != nil {
		return err
	}
	n.out.UBO = &UniformBlock{Name: gv.Name, Binding: binding, Size: st.Span, Stage: stage}
	return n.members(st, BlockUniform)
}

func (n *normalizer) pushBlock(gv ir.GlobalVariable, stage core.Stage) error {
	if n.out.Push != nil {
		return &UnsupportedBindingError{Name: gv.Name, Reason: "only one push block is supported, " + n.out.Push.Name + " is already declared"}
	}
	st, err := n.structType(gv)
	if err != nil {
		return err
	}
	if st.Span > MaxPushSize {
		return &UnsupportedBindingError{Name: gv.Name, Reason: fmt.Sprintf("push block is %d bytes, the limit is %d", st.Span, MaxPushSize)}
	}
	n.out.Push = &PushBlock{
		Name:     gv.Name,
		Size:     st.Span,
		Stage:    stage,
		Emulated: !n.raw.Target.SupportsPushConstants(),
	}
	return n.members(st, BlockPush)
}

func (n *normalizer) members(st ir.StructType, block BlockKind) error {
	for _, mem := range st.Members {
		key, ok := n.classify.Uniform(mem.Name)
		if !ok {
			return &AmbiguousSemanticError{Name: mem.Name, Kind: "uniform"}
		}
		if !n.typeMatches(mem.Type, key.Semantic.kind()) {
			return &UnsupportedBindingError{Name: mem.Name, Reason: "must be " + key.Semantic.kind().String()}
		}
		size := typeSize(n.m, mem.Type)
		if mem.Offset+size > st.Span {
			return &UnsupportedBindingError{Name: mem.Name, Reason: fmt.Sprintf("member ends at byte %d, past the %d byte block", mem.Offset+size, st.Span)}
		}
		for _, prev := range n.out.Uniforms {
			if prev.Key == key {
				return &BindingCollisionError{First: prev.Name, Second: mem.Name, Reason: "both bind semantic " + key.String()}
			}
		}
		n.out.Uniforms = append(n.out.Uniforms, Uniform{
			Key:    key,
			Name:   mem.Name,
			Block:  block,
			Offset: mem.Offset,
			Size:   size,
		})
	}
	return nil
}

func (n *normalizer) handle(gv ir.GlobalVariable, stage core.Stage) error {
	if int(gv.Type) >= len(n.m.Types) {
		return &UnsupportedBindingError{Name: gv.Name, Reason: "invalid type handle"}
	}
	switch t := n.m.Types[gv.Type].Inner.(type) {
	case ir.ImageType:
		return n.texture(gv, t, stage)
	case ir.SamplerType:
		binding, err := n.claimSlot(gv)
		if err != nil {
			return err
		}
		n.samplers = append(n.samplers, sampler{name: gv.Name, binding: binding, stage: stage})
		return nil
	case ir.ArrayType:
		return &UnsupportedBindingError{Name: gv.Name, Reason: "arrays of textures or samplers are not supported"}
	default:
		return &UnsupportedBindingError{Name: gv.Name, Reason: "unsupported resource type"}
	}
}

func (n *normalizer) texture(gv ir.GlobalVariable, img ir.ImageType, stage core.Stage) error {
	switch {
	case img.Class == ir.ImageClassStorage:
		return &UnsupportedBindingError{Name: gv.Name, Reason: "storage textures are not supported"}
	case img.Dim != ir.Dim2D || img.Arrayed:
		return &UnsupportedBindingError{Name: gv.Name, Reason: "only non-arrayed 2D textures are supported"}
	case img.Multisampled:
		return &UnsupportedBindingError{Name: gv.Name, Reason: "multisampled textures are not supported"}
	}
	key, ok := n.classify.Texture(gv.Name)
	if !ok {
		return &AmbiguousSemanticError{Name: gv.Name, Kind: "texture"}
	}
	binding, err := n.claimSlot(gv)
	if err != nil {
		return err
	}
	for _, prev := range n.out.Textures {
		if prev.Key == key {
			return &BindingCollisionError{First: prev.Name, Second: gv.Name, Reason: "both sample " + key.String()}
		}
	}
	n.out.Textures = append(n.out.Textures, Texture{
		Key:     key,
		Name:    gv.Name,
		Binding: binding,
		Stage:   stage,
		Depth:   img.Class == ir.ImageClassDepth,
	})
	return nil
}

func (n *normalizer) pairSamplers() error {
	for _, s := range n.samplers {
		texName, ok := strings.CutSuffix(s.name, "Sampler")
		idx := -1
		if ok {
			for i, t := range n.out.Textures {
				if t.Name == texName {
					idx = i
					break
				}
			}
		}
		if idx < 0 {
			return &AmbiguousSemanticError{Name: s.name, Kind: "sampler"}
		}
		t := &n.out.Textures[idx]
		if t.HasSampler {
			return &BindingCollisionError{First: t.Name + "Sampler", Second: s.name, Reason: "both sample texture " + t.Name}
		}
		t.HasSampler = true
		t.SamplerBinding = s.binding
		t.Stage |= s.stage
	}
	return nil
}

// checkOverlap rejects members whose byte ranges intersect within a block.
func (n *normalizer) checkOverlap() error {
	for _, block := range []BlockKind{BlockUniform, BlockPush} {
		var ms []Uniform
		for _, u := range n.out.Uniforms {
			if u.Block == block {
				ms = append(ms, u)
			}
		}
		sort.SliceStable(ms, func(i, j int) bool { return ms[i].Offset < ms[j].Offset })
		for i := 1; i < len(ms); i++ {
			prev, cur := ms[i-1], ms[i]
			if cur.Offset < prev.Offset+prev.Size {
				return &BindingCollisionError{
					First:  prev.Name,
					Second: cur.Name,
					Reason: fmt.Sprintf("overlap in the %s block at bytes [%d, %d)", block, cur.Offset, prev.Offset+prev.Size),
				}
			}
		}
	}
	return nil
}

func (n *normalizer) placePush() error {
	if n.out.Push == nil {
		return nil
	}
	for b := uint32(0); b < MaxBindings; b++ {
		if _, taken := n.slots[b]; !taken {
			n.out.Push.Binding = b
			return nil
		}
	}
	return &UnsupportedBindingError{Name: n.out.Push.Name, Reason: "no binding slot left for the emulated push block"}
}

func (n *normalizer) typeMatches(h ir.TypeHandle, want valueKind) bool {
	if int(h) >= len(n.m.Types) {
		return false
	}
	switch t := n.m.Types[h].Inner.(type) {
	case ir.ScalarType:
		switch want {
		case kindInteger:
			return (t.Kind == ir.ScalarUint || t.Kind == ir.ScalarSint) && t.Width == 4
		case kindFloat:
			return t.Kind == ir.ScalarFloat && t.Width == 4
		}
	case ir.VectorType:
		return want == kindVec4 && t.Size == ir.Vec4 && t.Scalar.Kind == ir.ScalarFloat && t.Scalar.Width == 4
	case ir.MatrixType:
		return want == kindMat4 && t.Columns == ir.Vec4 && t.Rows == ir.Vec4 && t.Scalar.Kind == ir.ScalarFloat && t.Scalar.Width == 4
	}
	return false
}

// typeSize is the number of bytes a member of type h occupies. Matrix
// columns are padded to vec4 as in uniform buffer layout.
func typeSize(m *ir.Module, h ir.TypeHandle) uint32 {
	if int(h) >= len(m.Types) {
		return 0
	}
	switch t := m.Types[h].Inner.(type) {
	case ir.ScalarType:
		return uint32(t.Width)
	case ir.VectorType:
		return uint32(t.Size) * uint32(t.Scalar.Width)
	case ir.MatrixType:
		rows := uint32(t.Rows)
		if rows == 3 {
			rows = 4
		}
		return uint32(t.Columns) * rows * uint32(t.Scalar.Width)
	case ir.ArrayType:
		if t.Size.Constant == nil {
			return 0
		}
		return *t.Size.Constant * t.Stride
	case ir.StructType:
		return t.Span
	}
	return 0
}
