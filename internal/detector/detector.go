// Package detector wraps lingua-go language detection for source-language
// auto-detection and for the validator's target-language check.
package detector

import (
	lingua "github.com/pemistahl/lingua-go"
)

type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector over all languages lingua supports. Building is
// expensive; reuse the instance.
func New() *Detector {
	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			Build(),
	}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if text == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the ISO 639-1 code of the detected language.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return lang.IsoCode639_1().String(), true
}

// DetectISOConfident returns the ISO 639-1 code only when the top candidate
// reaches minConfidence (0–1). Translated UI strings are short and noisy, so
// callers validating a target language should demand some margin.
func (d *Detector) DetectISOConfident(text string, minConfidence float64) (string, bool) {
	if text == "" {
		return "", false
	}
	values := d.detector.ComputeLanguageConfidenceValues(text)
	if len(values) == 0 {
		return "", false
	}
	top := values[0]
	if top.Value() < minConfidence {
		return "", false
	}
	return top.Language().IsoCode639_1().String(), true
}
