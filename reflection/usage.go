// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package reflection

import (
	"fmt"

	"github.com/gogpu/naga/ir"

	"github.com/gogpu/shaderchain/core"
)

// globalUsage returns, for every global variable, the stages whose entry
// points reach it through expressions or calls.
func globalUsage(m *ir.Module, mask core.Stage) (map[ir.GlobalVariableHandle]core.Stage, error) {
	usage := make(map[ir.GlobalVariableHandle]core.Stage)
	stages := []struct {
		ir   ir.ShaderStage
		core core.Stage
	}{
		{ir.StageVertex, core.StageVertex},
		{ir.StageFragment, core.StageFragment},
	}
	for _, s := range stages {
		if !mask.Has(s.core) {
			continue
		}
		found := false
		for i := range m.EntryPoints {
			ep := &m.EntryPoints[i]
			if ep.Stage != s.ir {
				continue
			}
			found = true
			st := s.core
			walkFunction(m, &ep.Function, func(h ir.GlobalVariableHandle) { usage[h] |= st })
		}
		if !found {
			return nil, fmt.Errorf("%w: no %s entry point", ErrNoEntryPoint, s.core)
		}
	}
	return usage, nil
}

// walkFunction calls mark for every global referenced by root or any
// function it calls. Entry point functions are stored inline, so root is
// not part of m.Functions.
func walkFunction(m *ir.Module, root *ir.Function, mark func(ir.GlobalVariableHandle)) {
	seen := make(map[ir.FunctionHandle]bool)
	var scan func(*ir.Function)
	visit := func(fh ir.FunctionHandle) {
		if seen[fh] || int(fh) >= len(m.Functions) {
			return
		}
		seen[fh] = true
		scan(&m.Functions[fh])
	}
	scan = func(fn *ir.Function) {
		for _, e := range fn.Expressions {
			switch k := e.Kind.(type) {
			case ir.ExprGlobalVariable:
				mark(k.Variable)
			case ir.ExprCallResult:
				visit(k.Function)
			}
		}
		walkCalls(fn.Body, visit)
	}
	scan(root)
}

func walkCalls(block ir.Block, visit func(ir.FunctionHandle)) {
	for _, s := range block {
		switch k := s.Kind.(type) {
		case ir.StmtCall:
			visit(k.Function)
		case ir.StmtBlock:
			walkCalls(k.Block, visit)
		case ir.StmtIf:
			walkCalls(k.Accept, visit)
			walkCalls(k.Reject, visit)
		case ir.StmtSwitch:
			for _, c := range k.Cases {
				walkCalls(c.Body, visit)
			}
		case ir.StmtLoop:
			walkCalls(k.Body, visit)
			walkCalls(k.Continuing, visit)
		}
	}
}
