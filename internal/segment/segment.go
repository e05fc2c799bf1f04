// Package segment implements the boundary-marker protocol used to send a
// multi-fragment translation unit through a translator in a single call.
//
// Merge joins the styled fragments of one unit into a single payload with a
// __SEG__ marker between them. Reconcile splits the translated payload back
// into exactly the original number of fragments, repairing whatever the
// translator did to the markers along the way. Envelope captures a source
// fragment's leading/trailing whitespace so it can be reapplied to the
// translated fragment.
package segment

import "strings"

// Boundary is the marker inserted between fragments in a merged payload.
// It is chosen to be improbable in natural text and easy for an LLM to echo.
const Boundary = "__SEG__"

// spacedBoundary is the form actually emitted by Merge and the first split
// key tried by Reconcile. Translators frequently compress or drop the
// surrounding spaces, so Reconcile falls back to the bare marker.
const spacedBoundary = " " + Boundary + " "

// Merge joins fragment texts into a single payload with a boundary marker
// between consecutive fragments. With zero or one fragment no marker is
// inserted.
func Merge(fragments []string) string {
	return strings.Join(fragments, spacedBoundary)
}

// CountMarkers returns the number of boundary markers in text. The engine
// uses it to report marker drift after translation; a mismatch with the
// sent count is expected and never an error.
func CountMarkers(text string) int {
	return strings.Count(text, Boundary)
}

// Reconcile converts an untrusted translated payload into exactly n
// fragment texts, none of which contains the boundary marker. The translator
// may have added, dropped, or relocated markers; Reconcile absorbs all of
// that:
//
//  1. Split on " __SEG__ ", falling back to "__SEG__" when the spaced form
//     yields a single piece.
//  2. Trim each piece, strip any marker text still embedded inside it, trim
//     again, and discard pieces that end up empty so they cannot shift
//     fragment alignment.
//  3. Too many pieces: keep the first n-1 and join the rest into the final
//     slot with single spaces (excess splits are assumed to cluster near the
//     tail; losing granularity beats losing content). Too few: pad on the
//     right with empty strings (an empty target is surfaced by validation,
//     never papered over with invented text).
//
// For n <= 0 the result is nil. Reconcile is pure and idempotent: feeding a
// reconciled fragment back through yields the same fragment.
func Reconcile(translated string, n int) []string {
	if n <= 0 {
		return nil
	}

	pieces := strings.Split(translated, spacedBoundary)
	if len(pieces) == 1 {
		pieces = strings.Split(translated, Boundary)
	}

	cleaned := make([]string, 0, len(pieces))
	for _, p := range pieces {
		p = strings.TrimSpace(p)
		p = strings.ReplaceAll(p, Boundary, "")
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		cleaned = append(cleaned, p)
	}

	switch {
	case len(cleaned) > n:
		cleaned = mergeTail(cleaned, n)
	case len(cleaned) < n:
		for len(cleaned) < n {
			cleaned = append(cleaned, "")
		}
	}

	return cleaned
}

// mergeTail reduces pieces to exactly n entries by joining everything from
// index n-1 onward into the last slot. This is the default excess-piece
// policy; it redistributes content but never drops a piece.
func mergeTail(pieces []string, n int) []string {
	merged := make([]string, 0, n)
	merged = append(merged, pieces[:n-1]...)
	merged = append(merged, strings.Join(pieces[n-1:], " "))
	return merged
}
