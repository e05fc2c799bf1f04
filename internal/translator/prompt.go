package translator

import (
	"fmt"
	"strings"
)

// systemPrompt is shared by the LLM-backed services.
const systemPrompt = "You are a professional translator specializing in UI and e-learning content. " +
	"You follow instructions precisely and preserve all formatting markers."

// buildPrompt assembles the user prompt for LLM-backed services. The marker
// and whitespace rules are the load-bearing part: styled units travel as a
// single payload with __SEG__ markers, and the model must hand both the
// markers and the spacing back untouched for downstream reconciliation to
// have anything to work with.
func buildPrompt(req TranslateRequest) string {
	sourceLang := req.SourceLang
	if sourceLang == "" || sourceLang == "auto" {
		sourceLang = "the detected language"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Translate the following text from %s to %s.\n\n", sourceLang, req.TargetLang)

	b.WriteString("RULES:\n")
	b.WriteString("1. Return ONLY the translation, no explanations or labels.\n")
	b.WriteString("2. Preserve ALL whitespace: if the text starts or ends with a space, the translation must too.\n")
	if req.HasMarkers {
		b.WriteString("3. The text contains __SEG__ markers. Keep every marker EXACTLY where it is. Do not translate, move, add, or remove them.\n")
	}
	if len(req.PreserveTerms) > 0 {
		quoted := make([]string, len(req.PreserveTerms))
		for i, t := range req.PreserveTerms {
			quoted[i] = fmt.Sprintf("%q", t)
		}
		fmt.Fprintf(&b, "4. Do NOT translate these terms: %s\n", strings.Join(quoted, ", "))
	}
	if req.Instructions != "" {
		fmt.Fprintf(&b, "\nCONTEXT:\n%s\n", req.Instructions)
	}

	fmt.Fprintf(&b, "\nText: %s\n\nTranslation:", req.Text)
	return b.String()
}
