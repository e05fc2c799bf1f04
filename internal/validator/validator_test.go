package validator

import (
	"strings"
	"testing"

	"github.com/AdamBarwell/TranslationTest/internal/xliff"
)

const testXLF = `<?xml version="1.0" encoding="utf-8"?>
<xliff xmlns="urn:oasis:names:tc:xliff:document:1.2" version="1.2">
  <file source-language="en" target-language="fr">
    <body>
      <trans-unit id="p1" datatype="plaintext"><source>Hello</source></trans-unit>
      <trans-unit id="s1" datatype="x-DocumentState">
        <source><g id="g1" ctype="x-text">one</g><g id="g2" ctype="x-text">two</g><g id="g3" ctype="x-text">three</g></source>
      </trans-unit>
    </body>
  </file>
</xliff>`

func parse(t *testing.T) *xliff.Document {
	t.Helper()
	doc, err := xliff.Parse(strings.NewReader(testXLF))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return doc
}

func findKinds(r *Report, unitID string) []Kind {
	var kinds []Kind
	for _, f := range r.Findings[unitID] {
		kinds = append(kinds, f.Kind)
	}
	return kinds
}

func TestValidate_MissingTargets(t *testing.T) {
	doc := parse(t)

	report := New().Validate(doc, "")
	if report.Count(KindMissingTarget) != 2 {
		t.Errorf("expected 2 missing targets, got %d", report.Count(KindMissingTarget))
	}
}

func TestValidate_CleanDocument(t *testing.T) {
	doc := parse(t)
	doc.Unit("p1").ApplyPlain("Bonjour")
	if err := doc.Unit("s1").ApplyStyled([]string{"un", "deux", "trois"}); err != nil {
		t.Fatalf("ApplyStyled: %v", err)
	}

	report := New().Validate(doc, "")
	if report.Total() != 0 {
		t.Errorf("expected clean report, got %d findings: %v", report.Total(), report.Findings)
	}
	if !report.Valid() {
		t.Error("expected valid report")
	}
}

func TestValidate_LeakedMarker(t *testing.T) {
	doc := parse(t)
	doc.Unit("p1").ApplyPlain("Bonjour")
	if err := doc.Unit("s1").ApplyStyled([]string{"un", "deux __SEG__", "trois"}); err != nil {
		t.Fatalf("ApplyStyled: %v", err)
	}

	report := New().Validate(doc, "")
	if report.Count(KindLeakedMarker) != 1 {
		t.Fatalf("expected 1 leaked marker, got %d", report.Count(KindLeakedMarker))
	}
	f := report.Findings["s1"][0]
	if f.FragmentIndex != 1 {
		t.Errorf("expected fragment index 1, got %d", f.FragmentIndex)
	}
	if report.Valid() {
		t.Error("a leaked marker must fail validation")
	}
}

func TestValidate_EmptyTargets(t *testing.T) {
	doc := parse(t)
	doc.Unit("p1").ApplyPlain("Bonjour")
	// The decoder pads lost fragments with empty strings; the validator
	// must surface each one.
	if err := doc.Unit("s1").ApplyStyled([]string{"un deux trois", "", ""}); err != nil {
		t.Fatalf("ApplyStyled: %v", err)
	}

	report := New().Validate(doc, "")
	if report.Count(KindEmptyTarget) != 2 {
		t.Errorf("expected 2 empty-target findings, got %d", report.Count(KindEmptyTarget))
	}
	// Padding is survivable; validation still passes overall.
	if !report.Valid() {
		t.Error("empty targets alone should not fail validation")
	}
}

func TestValidate_EmptyPlainTarget(t *testing.T) {
	doc := parse(t)
	doc.Unit("p1").ApplyPlain("")
	kinds := findKinds(New().Validate(doc, ""), "p1")
	if len(kinds) != 1 || kinds[0] != KindEmptyTarget {
		t.Errorf("expected one empty_target finding, got %v", kinds)
	}
}

func TestValidate_ReadOnly(t *testing.T) {
	doc := parse(t)
	doc.Unit("p1").ApplyPlain("Bonjour __SEG__")

	before := string(doc.Bytes())
	New().Validate(doc, "")
	after := string(doc.Bytes())

	if before != after {
		t.Error("Validate must not mutate the document")
	}
}

func TestValidate_PersistedDocument(t *testing.T) {
	doc := parse(t)
	doc.Unit("p1").ApplyPlain("Bonjour __SEG__ monde")

	// Round-trip through serialization: the validator works the same on a
	// re-parsed document.
	reparsed, err := xliff.Parse(strings.NewReader(string(doc.Bytes())))
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}

	report := New().Validate(reparsed, "")
	if report.Count(KindLeakedMarker) != 1 {
		t.Errorf("expected leaked marker on persisted document, got %d", report.Count(KindLeakedMarker))
	}
}
