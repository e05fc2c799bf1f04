package xliff

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/AdamBarwell/TranslationTest/internal/segment"
)

// Unit is one translatable trans-unit. A plain unit has no fragments; a
// styled unit has one fragment per <g ctype="x-text"> element under its
// source, in document order.
type Unit struct {
	ID            string
	Datatype      string
	PreserveSpace bool

	// Fragments is empty for plain units. Fragment order and text are fixed
	// at parse time and never mutated afterwards.
	Fragments []Fragment

	element *xmlquery.Node // the trans-unit element
	source  *xmlquery.Node
}

// Fragment is one styled sub-span of a unit. Text is the verbatim source
// text; Envelope is derived from it exactly once at parse time.
type Fragment struct {
	Index    int
	Text     string
	Envelope segment.Envelope

	node *xmlquery.Node
}

var collapseRe = regexp.MustCompile(`\s+`)

func parseUnit(node *xmlquery.Node) (*Unit, error) {
	source := xmlquery.QuerySelector(node, exprSource)
	if source == nil {
		return nil, nil // nothing translatable
	}

	u := &Unit{
		ID:            node.SelectAttr("id"),
		Datatype:      node.SelectAttr("datatype"),
		PreserveSpace: node.SelectAttr("xml:space") == "preserve",
		element:       node,
		source:        source,
	}
	if u.Datatype == "" {
		u.Datatype = DatatypePlaintext
	}

	if u.Datatype == DatatypeDocumentState {
		if err := u.checkTagPairing(); err != nil {
			return nil, err
		}
		for i, g := range xmlquery.QuerySelectorAll(source, exprTextG) {
			text := elementText(g)
			u.Fragments = append(u.Fragments, Fragment{
				Index:    i,
				Text:     text,
				Envelope: segment.EnvelopeOf(text),
				node:     g,
			})
		}
	}

	return u, nil
}

// Styled reports whether the unit carries styled fragments.
func (u *Unit) Styled() bool {
	return len(u.Fragments) > 0
}

// SourceText returns the full source text of the unit: the source element
// text for plain units, the concatenated fragment texts for styled ones.
func (u *Unit) SourceText() string {
	if u.Styled() {
		var b strings.Builder
		for _, f := range u.Fragments {
			b.WriteString(f.Text)
		}
		return b.String()
	}
	return elementText(u.source)
}

// TranslatableText returns what gets sent to the translation port: the plain
// source text, or the fragments merged with boundary markers. Fragment text
// is whitespace-collapsed for submission unless xml:space="preserve" is set;
// the stored fragment text itself stays untouched.
func (u *Unit) TranslatableText() string {
	if !u.Styled() {
		text := elementText(u.source)
		if !u.PreserveSpace {
			text = strings.TrimSpace(text)
		}
		return text
	}

	parts := make([]string, len(u.Fragments))
	for i, f := range u.Fragments {
		if u.PreserveSpace {
			parts[i] = f.Text
		} else {
			parts[i] = strings.TrimSpace(collapseRe.ReplaceAllString(f.Text, " "))
		}
	}
	return segment.Merge(parts)
}

// checkTagPairing verifies that every <bpt> under the source has a matching
// <ept> and vice versa. Storyline produces paired ids; a mismatch means the
// unit's structure cannot be trusted for styled substitution.
func (u *Unit) checkTagPairing() error {
	bpt := map[string]bool{}
	for _, n := range xmlquery.QuerySelectorAll(u.source, exprBpt) {
		bpt[n.SelectAttr("id")] = true
	}
	ept := map[string]bool{}
	for _, n := range xmlquery.QuerySelectorAll(u.source, exprEpt) {
		ept[n.SelectAttr("id")] = true
	}

	var missing []string
	for id := range bpt {
		if !ept[id] {
			missing = append(missing, fmt.Sprintf("missing <ept> for %q", id))
		}
	}
	for id := range ept {
		if !bpt[id] {
			missing = append(missing, fmt.Sprintf("missing <bpt> for %q", id))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("unpaired inline tags: %s", strings.Join(missing, "; "))
	}
	return nil
}

// target returns the unit's target element, or nil.
func (u *Unit) target() *xmlquery.Node {
	return xmlquery.QuerySelector(u.element, exprTarget)
}

// HasTarget reports whether a target element exists.
func (u *Unit) HasTarget() bool {
	return u.target() != nil
}

// TargetText returns the full text content of the target element.
func (u *Unit) TargetText() (string, bool) {
	t := u.target()
	if t == nil {
		return "", false
	}
	return t.InnerText(), true
}

// TargetFragmentTexts returns the text of each <g ctype="x-text"> under the
// target, in document order. ok is false when no target exists.
func (u *Unit) TargetFragmentTexts() ([]string, bool) {
	t := u.target()
	if t == nil {
		return nil, false
	}
	nodes := xmlquery.QuerySelectorAll(t, exprTextG)
	texts := make([]string, len(nodes))
	for i, n := range nodes {
		texts[i] = elementText(n)
	}
	return texts, true
}

// elementText returns the direct text content of an element (first-level
// text nodes only, matching how Storyline nests <g> elements).
func elementText(n *xmlquery.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.TextNode || c.Type == xmlquery.CharDataNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}
