// Package fuzztests houses Go fuzz harnesses that exercise the SDL intake
// path (source -> parser -> document) and the date validator. Its goal is to
// smoke test robustness: arbitrary input must surface as diagnostics or
// parse errors, never as panics or out-of-bounds spans.
//
// It does not generate corpora, write files, or run the CLI.
package fuzztests
