package segment

// Envelope is the leading and trailing whitespace of a source fragment,
// captured once at parse time. Adjacent styled fragments render with no
// automatic spacing between them, so the source whitespace pattern is the
// only reliable record of the gaps the translator cannot see.
type Envelope struct {
	Leading  string
	Trailing string
}

// whitespace matches the characters the original format treats as spacing.
func isEnvelopeSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// EnvelopeOf extracts the leading and trailing whitespace runs of text.
func EnvelopeOf(text string) Envelope {
	i := 0
	for i < len(text) && isEnvelopeSpace(text[i]) {
		i++
	}
	j := len(text)
	for j > i && isEnvelopeSpace(text[j-1]) {
		j--
	}
	return Envelope{Leading: text[:i], Trailing: text[j:]}
}

// Apply reproduces the envelope around a reconciled (already stripped)
// translated fragment, character for character. An empty fragment stays
// empty: wrapping whitespace around nothing would fabricate content.
func (e Envelope) Apply(translated string) string {
	if translated == "" {
		return ""
	}
	return e.Leading + translated + e.Trailing
}
