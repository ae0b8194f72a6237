// Package preset parses shader chain presets.
//
// A preset is a line-oriented list of key = value assignments describing a
// multi-pass shader chain: the shader of every pass, how each pass samples
// its inputs and sizes its output, user textures (LUTs) and tunable
// parameters.
//
//	shaders = 2
//	shader0 = shaders/blur.slang
//	scale_type0 = absolute
//	scale0 = 256
//	shader1 = shaders/crt.slang
//	filter_linear1 = true
//
//	textures = "mask"
//	mask = textures/mask.png
//
//	parameters = "STRENGTH"
//	STRENGTH = 0.75
//
// Parsing happens in two phases. Tokenize turns text into a flat, ordered
// Values mapping without interpreting any key; Resolve interprets the mapping
// into a Preset, checking cross references only once every key is known.
// This keeps the format tolerant of key order and lets a #reference
// directive layer one preset on top of another before anything is resolved.
//
// The parser checks that referenced files exist but never reads shader
// bodies or texture data.
package preset
