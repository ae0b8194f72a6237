// Package preprocess resolves the directives in pass shader sources.
//
// Shader bodies are WGSL. On top of WGSL the preprocessor understands a small
// set of line directives, each of which must be the only thing on its line:
//
//	#include "common/color.inc"
//	#pragma parameter STRENGTH "Mask strength" 0.5 0.0 1.0 0.05
//	#pragma name Prepass
//	#pragma format R16G16B16A16_SFLOAT
//	#define HAS_FEEDBACK
//	#ifdef HAS_FEEDBACK / #ifndef NAME / #else / #endif
//
// Includes resolve relative to the including file and are substituted
// textually. Parameter pragmas are collected into a side table rather than
// emitted. #define only records a name for #ifdef and #ifndef; there is no
// macro expansion.
//
// Directive lines never reach the output, and every output line keeps the
// file and line it came from so compiler diagnostics can be mapped back.
package preprocess
