// Package sheet loads routing rule tables from an external spreadsheet.
//
// A table has one row per track name and, for each destination group, a
// channel token paired with an instruction. Two CSV layouts are accepted:
//
//   - Paired columns: "<Group> Channel" and "<Group> Instruction".
//   - One column per group whose cells hold "<channel> [instruction]",
//     e.g. "5/6 Mute" or "5/6 Turn down".
//
// Tables are fetched over HTTP (Google Sheets links are rewritten to their CSV
// export) or read from disk, and may be held in a [Cache] for a bounded time.
package sheet
