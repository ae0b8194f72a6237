// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package core

import "strings"

// Target is a native shading ecosystem a chain is compiled for.
type Target uint8

const (
	// TargetSPIRV is SPIR-V 1.3 for Vulkan.
	TargetSPIRV Target = iota
	// TargetGLSL is GLSL 3.30 for OpenGL.
	TargetGLSL
	// TargetHLSL is HLSL shader model 5.1 for Direct3D 12.
	TargetHLSL
	// TargetMSL is Metal Shading Language 2.1.
	TargetMSL
)

var targetNames = [...]string{
	TargetSPIRV: "spirv",
	TargetGLSL:  "glsl",
	TargetHLSL:  "hlsl",
	TargetMSL:   "msl",
}

// Targets lists every supported target.
func Targets() []Target {
	return []Target{TargetSPIRV, TargetGLSL, TargetHLSL, TargetMSL}
}

func (t Target) String() string {
	if int(t) < len(targetNames) {
		return targetNames[t]
	}
	return "unknown"
}

// ParseTarget parses a target name ("spirv", "glsl", "hlsl", "msl").
func ParseTarget(s string) (Target, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range targetNames {
		if name == s {
			return Target(i), true
		}
	}
	return 0, false
}

// SupportsPushConstants reports whether the target has a native push or
// root constant path. GLSL 3.30 does not; its push blocks are emulated with
// an extra uniform buffer.
func (t Target) SupportsPushConstants() bool {
	return t != TargetGLSL
}
