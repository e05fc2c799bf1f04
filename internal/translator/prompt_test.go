package translator

import (
	"strings"
	"testing"
)

func TestBuildPrompt_MarkerRule(t *testing.T) {
	with := buildPrompt(TranslateRequest{
		Text: "a __SEG__ b", SourceLang: "en", TargetLang: "fr", HasMarkers: true,
	})
	if !strings.Contains(with, "__SEG__ markers") {
		t.Error("expected marker rule for marked payload")
	}

	without := buildPrompt(TranslateRequest{
		Text: "plain", SourceLang: "en", TargetLang: "fr",
	})
	if strings.Contains(without, "__SEG__ markers") {
		t.Error("marker rule should be absent for plain payloads")
	}
}

func TestBuildPrompt_PreserveTerms(t *testing.T) {
	got := buildPrompt(TranslateRequest{
		Text: "Visit Acme Store", TargetLang: "de",
		PreserveTerms: []string{"Acme"},
	})
	if !strings.Contains(got, `"Acme"`) {
		t.Errorf("expected preserve term in prompt, got:\n%s", got)
	}
}

func TestBuildPrompt_AutoSource(t *testing.T) {
	got := buildPrompt(TranslateRequest{Text: "hi", SourceLang: "auto", TargetLang: "es"})
	if !strings.Contains(got, "the detected language") {
		t.Error("auto source should be phrased as detected language")
	}
}

func TestBuildPrompt_Instructions(t *testing.T) {
	got := buildPrompt(TranslateRequest{
		Text: "hi", TargetLang: "es",
		Instructions: "Retail training material, informal tone.",
	})
	if !strings.Contains(got, "Retail training material") {
		t.Error("expected custom instructions in prompt")
	}
}
