// Package expr provides CEL (Common Expression Language) functionality for
// matching tracks by name.
//
// CEL expressions have access to variables:
//   - `name` (string): The track's display name, as written in the set
//   - `kind` (string): One of "AudioTrack", "MidiTrack" or "GroupTrack"
//
// In addition to the standard library and the strings/lists extensions, the
// environment provides:
//   - baseName(string): The name without a trailing number ("E GUITAR 3" -> "E GUITAR")
//   - fold(string): The name upper-cased with surrounding whitespace removed
package expr
