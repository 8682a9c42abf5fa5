// Package transform applies rule directives to the tracks of a Live set.
//
// For every track with a non-blank name, the [Transformer] resolves a
// directive from a rules.Source and applies, in order, the output routing,
// the mute state and the volume adjustment. Tracks without a directive, or
// whose directive names a channel the source cannot resolve, are left exactly
// as found.
package transform
