// Package als reads and writes Ableton Live set files.
//
// An .als file is a single gzip member holding one UTF-8 XML document. A
// [Document] owns the parsed tree and exposes its tracks; [Track] provides
// get-or-create accessors for the output routing, speaker (mute) and volume
// elements under each track's DeviceChain. Elements are created at most once
// per parent and reused afterwards, so applying the same edits twice leaves
// the same structure as applying them once.
package als
