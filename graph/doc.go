// Package graph builds the per-frame render graph of a shader chain.
//
// Build combines a parsed preset with the normalized reflection of every
// pass and resolves, for each texture a pass samples, which producer feeds
// it: the chain input, an earlier pass in the same frame, any pass's output
// from the previous frame, a slot of the input history ring or a user
// texture. Reads of a pass at or after the reader's own index become feedback
// edges; only current-frame edges take part in the acyclicity check.
//
// The resulting Pipeline is immutable. Changing a parameter, the viewport or
// the preset produces a new Pipeline; nothing is updated in place.
package graph
