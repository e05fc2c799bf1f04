// Package postprocess strips common LLM artifacts from raw translation
// output before it reaches segment reconciliation.
//
// It removes thinking blocks, echoed prompt phrases, and wrapping quotes.
// It never touches segment boundary markers: those are repaired downstream
// by the reconciliation decoder, and removing them here would change the
// fragment alignment the decoder relies on.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean removes LLM artifacts in three phases and trims the result:
//  1. thinking / reasoning block removal
//  2. echoed prompt label removal ("Translation:" and friends)
//  3. wrapping quote removal
func Clean(text string) string {
	text = removeThinkingBlocks(text)
	text = removeEchoedLabels(text)
	text = removeQuoteWrapping(text)
	return strings.TrimSpace(text)
}

// thinkingBlockRe matches complete <thinking>…</thinking> style blocks.
// Variants are listed explicitly: RE2 has no backreferences.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>`,
)

// truncatedThinkingRe matches an opened thinking tag that never closes
// (the model ran out of tokens mid-thought).
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// labelPatterns match leading labels models prepend even when told not to.
// The translation prompt ends with "Translation:", which weaker models echo
// back as the first line of their answer.
var labelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^translation\s*:`),
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the)? (?:translated )?(?:translation|text)\s*:`),
	regexp.MustCompile(`(?i)^(?:the )?translated (?:text|version)\s*:`),
	regexp.MustCompile(`(?i)^(?:sure|certainly|of course)[,.]? here(?:'s| is)(?: the)? translation\s*:`),
}

func removeEchoedLabels(text string) string {
	for _, re := range labelPatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// removeQuoteWrapping strips one matching pair of outer quotes when the
// whole text is wrapped in them. The prompt quotes the input text, and some
// models mirror the quoting in their answer.
func removeQuoteWrapping(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	first, last := runes[0], runes[n-1]
	if (first == '"' && last == '"') ||
		(first == '«' && last == '»') ||
		(first == '“' && last == '”') ||
		(first == '‘' && last == '’') {
		return strings.TrimSpace(string(runes[1 : n-1]))
	}
	return text
}
