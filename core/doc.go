// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package core holds the value types shared by every stage of the shader
// chain compiler.
//
// The types here are deliberately small and free of behavior that depends on
// other packages: sampling modes, scale policies, shader stages, 2D sizes and
// output formats. Backends translate them to their native vocabulary; the
// WebGPU vocabulary from gputypes is provided directly.
//
// # Key Types
//
//   - FilterMode, WrapMode: how a pass samples its inputs
//   - ScaleType, Scale: how a pass computes its output size
//   - Stage: bitmask of shader stages a binding is visible to
//   - Size: a 2D extent in pixels
//   - Format: framebuffer format requested by a shader
package core
