// Package compiler turns preprocessed pass shaders into target code.
//
// Pass shaders are WGSL modules holding one @vertex and one @fragment entry
// point. Compile parses and lowers the module with naga, validates the IR and
// hands it to the Emitter registered for the requested target. The IR itself
// is kept on the Artifact: it is the raw reflection the reflection package
// normalizes.
//
// Emitters for SPIR-V, GLSL, HLSL and MSL are registered at init. Register
// and Unregister follow the database/sql driver pattern, so a program can
// swap in its own emitter for a target:
//
//	compiler.Unregister(core.TargetGLSL)
//	compiler.Register(core.TargetGLSL, myGLSLES)
//
// Diagnostics are reported as *Error values whose position points into the
// original shader file, not the expanded source naga saw.
package compiler
