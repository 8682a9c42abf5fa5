// Package batch routes Live set files on disk.
//
// [ProcessFile] transforms the bytes of one set and names the result. A
// [Runner] discovers .als files under the given paths, processes them
// concurrently, writes each output next to its input (or to a configured
// directory) without overwriting existing files, and can watch directories
// to process sets as they are saved.
//
// Failures are reported per file; one bad set never stops the batch.
package batch
