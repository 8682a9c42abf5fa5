// Package rules resolves a track's display name to a [Directive]: the output
// channel it is routed to, whether it is muted, and an optional decibel
// adjustment.
//
// Two [Source] implementations exist. A [StaticSource] is built from a fixed
// keyword table (see [StaticTable]) and a [TableSource] reads one destination
// group of a loaded rule table (see package sheet).
package rules
