// Package validator runs a read-only scan over an assembled XLIFF document
// and reports everything the round-trip may have damaged: leaked boundary
// markers, empty translations, structural tag-count drift, missing targets,
// and optionally a wrong-language translation. It never mutates the
// document, so it can run right after assembly or against a persisted file
// at any later time.
package validator

import (
	"fmt"
	"strings"

	"github.com/AdamBarwell/TranslationTest/internal/detector"
	"github.com/AdamBarwell/TranslationTest/internal/segment"
	"github.com/AdamBarwell/TranslationTest/internal/xliff"
)

// Kind classifies a finding.
type Kind string

const (
	// KindLeakedMarker is the critical one: an internal boundary marker
	// survived into a target fragment.
	KindLeakedMarker Kind = "leaked_marker"
	// KindEmptyTarget flags a translated fragment that came back empty
	// although its source fragment had content.
	KindEmptyTarget Kind = "empty_target"
	// KindTagMismatch flags a styled-fragment count difference between
	// source and target.
	KindTagMismatch Kind = "tag_mismatch"
	// KindMissingTarget flags a unit with no target element at all.
	KindMissingTarget Kind = "missing_target"
	// KindWrongLanguage flags a target that does not read as the expected
	// target language.
	KindWrongLanguage Kind = "wrong_language"
)

// Finding is one issue in one unit. FragmentIndex is -1 when the finding is
// not tied to a specific fragment.
type Finding struct {
	Kind          Kind
	UnitID        string
	FragmentIndex int
	Snippet       string
}

func (f Finding) String() string {
	if f.FragmentIndex >= 0 {
		return fmt.Sprintf("%s: unit %s fragment %d: %q", f.Kind, f.UnitID, f.FragmentIndex, f.Snippet)
	}
	return fmt.Sprintf("%s: unit %s: %q", f.Kind, f.UnitID, f.Snippet)
}

// Report maps unit ids to findings. It is a snapshot: built in one pass and
// never mutated after being returned.
type Report struct {
	Findings map[string][]Finding
}

// Total returns the number of findings across all units.
func (r *Report) Total() int {
	n := 0
	for _, fs := range r.Findings {
		n += len(fs)
	}
	return n
}

// Count returns the number of findings of one kind.
func (r *Report) Count(kind Kind) int {
	n := 0
	for _, fs := range r.Findings {
		for _, f := range fs {
			if f.Kind == kind {
				n++
			}
		}
	}
	return n
}

// tagMismatchTolerance mirrors the original tool's acceptance rule: a few
// structural mismatches are survivable, leaked markers never are.
const tagMismatchTolerance = 5

// Valid reports whether the document passed: zero leaked markers and fewer
// tag mismatches than the tolerance.
func (r *Report) Valid() bool {
	return r.Count(KindLeakedMarker) == 0 && r.Count(KindTagMismatch) < tagMismatchTolerance
}

// Validator scans documents. The language detector is expensive to build
// and optional; without it the wrong-language check is skipped.
type Validator struct {
	det *detector.Detector
}

// New creates a Validator without language checking.
func New() *Validator {
	return &Validator{}
}

// NewWithLanguageCheck creates a Validator that also verifies target texts
// read as targetLang when one is passed to Validate.
func NewWithLanguageCheck() *Validator {
	return &Validator{det: detector.New()}
}

// minLangCheckRunes is the minimum target length for the language check;
// detection on shorter strings is noise.
const minLangCheckRunes = 20

// langConfidence is the detector confidence demanded before a wrong-language
// finding is raised.
const langConfidence = 0.7

// Validate scans doc and returns a fresh report. targetLang may be empty to
// skip the language check.
func (v *Validator) Validate(doc *xliff.Document, targetLang string) *Report {
	report := &Report{Findings: make(map[string][]Finding)}

	add := func(unitID string, f Finding) {
		report.Findings[unitID] = append(report.Findings[unitID], f)
	}

	for _, u := range doc.Units() {
		if !u.HasTarget() {
			add(u.ID, Finding{Kind: KindMissingTarget, UnitID: u.ID, FragmentIndex: -1})
			continue
		}

		targetText, _ := u.TargetText()

		if u.Styled() {
			fragments, _ := u.TargetFragmentTexts()

			if len(fragments) != len(u.Fragments) {
				add(u.ID, Finding{
					Kind:          KindTagMismatch,
					UnitID:        u.ID,
					FragmentIndex: -1,
					Snippet:       fmt.Sprintf("source has %d styled fragments, target has %d", len(u.Fragments), len(fragments)),
				})
			}

			for i, text := range fragments {
				if strings.Contains(text, segment.Boundary) {
					add(u.ID, Finding{Kind: KindLeakedMarker, UnitID: u.ID, FragmentIndex: i, Snippet: clip(text)})
				}
				if i < len(u.Fragments) &&
					strings.TrimSpace(text) == "" && strings.TrimSpace(u.Fragments[i].Text) != "" {
					add(u.ID, Finding{Kind: KindEmptyTarget, UnitID: u.ID, FragmentIndex: i, Snippet: clip(u.Fragments[i].Text)})
				}
			}
		} else {
			if strings.Contains(targetText, segment.Boundary) {
				add(u.ID, Finding{Kind: KindLeakedMarker, UnitID: u.ID, FragmentIndex: -1, Snippet: clip(targetText)})
			}
			if strings.TrimSpace(targetText) == "" && strings.TrimSpace(u.SourceText()) != "" {
				add(u.ID, Finding{Kind: KindEmptyTarget, UnitID: u.ID, FragmentIndex: -1, Snippet: clip(u.SourceText())})
			}
		}

		if v.det != nil && targetLang != "" {
			text := strings.TrimSpace(targetText)
			if len([]rune(text)) >= minLangCheckRunes {
				if detected, ok := v.det.DetectISOConfident(text, langConfidence); ok && !strings.EqualFold(detected, baseLang(targetLang)) {
					add(u.ID, Finding{
						Kind:          KindWrongLanguage,
						UnitID:        u.ID,
						FragmentIndex: -1,
						Snippet:       fmt.Sprintf("expected %s, detected %s", targetLang, detected),
					})
				}
			}
		}
	}

	return report
}

// baseLang reduces a BCP 47 tag like "fr-FR" to its primary subtag, which is
// what the detector reports.
func baseLang(tag string) string {
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		return tag[:i]
	}
	return tag
}

func clip(s string) string {
	const max = 60
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
