package xliff

import (
	"encoding/xml"
	"fmt"

	"github.com/antchfx/xmlquery"
)

// ApplyPlain writes translated text into the unit's target element, creating
// the element after <source> when missing. Any previous target content is
// replaced.
func (u *Unit) ApplyPlain(translated string) {
	t := u.ensureTarget()
	clearChildren(t)
	setElementText(t, translated)
}

// ApplyStyled writes one already-restored fragment text per source fragment
// into the unit's target. The target receives a deep copy of the source
// structure so every inline tag survives, then each <g ctype="x-text"> gets
// its fragment text.
//
// The fragment count must equal the unit's fragment count; anything else is
// a structural defect and the unit is left untouched rather than assembled
// from a guessed structure.
func (u *Unit) ApplyStyled(fragments []string) error {
	if len(fragments) != len(u.Fragments) {
		return fmt.Errorf("unit %s: %d fragments for %d styled slots", u.ID, len(fragments), len(u.Fragments))
	}

	t := u.ensureTarget()
	clearChildren(t)
	for c := u.source.FirstChild; c != nil; c = c.NextSibling {
		appendChild(t, deepCopy(c))
	}

	targets := xmlquery.QuerySelectorAll(t, exprTextG)
	if len(targets) != len(u.Fragments) {
		// The copied structure does not carry the fragments the source
		// claims; drop the half-built target and keep the original.
		clearChildren(t)
		for c := u.source.FirstChild; c != nil; c = c.NextSibling {
			appendChild(t, deepCopy(c))
		}
		return fmt.Errorf("unit %s: target structure has %d styled slots, source has %d", u.ID, len(targets), len(u.Fragments))
	}

	for i, g := range targets {
		setElementText(g, fragments[i])
	}
	return nil
}

// ensureTarget returns the unit's target element, creating one directly
// after <source> when absent. xml:space="preserve" is carried over so the
// restored whitespace survives re-parsing.
func (u *Unit) ensureTarget() *xmlquery.Node {
	if t := u.target(); t != nil {
		return t
	}

	t := &xmlquery.Node{
		Type:         xmlquery.ElementNode,
		Data:         "target",
		Prefix:       u.source.Prefix,
		NamespaceURI: u.source.NamespaceURI,
	}
	if u.PreserveSpace {
		t.Attr = append(t.Attr, xmlquery.Attr{
			Name:  xml.Name{Space: "xml", Local: "space"},
			Value: "preserve",
		})
	}
	insertAfter(u.source, t)
	return t
}

// deepCopy clones an element subtree without linking it into any tree.
func deepCopy(n *xmlquery.Node) *xmlquery.Node {
	c := &xmlquery.Node{
		Type:         n.Type,
		Data:         n.Data,
		Prefix:       n.Prefix,
		NamespaceURI: n.NamespaceURI,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]xmlquery.Attr, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		appendChild(c, deepCopy(child))
	}
	return c
}

// setElementText replaces the element's direct text content with text,
// keeping child elements in place.
func setElementText(n *xmlquery.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == xmlquery.TextNode || c.Type == xmlquery.CharDataNode {
			removeChild(n, c)
		}
		c = next
	}
	if text == "" {
		return
	}
	t := &xmlquery.Node{Type: xmlquery.TextNode, Data: text}
	// Text precedes any child elements, matching the source layout.
	if n.FirstChild != nil {
		insertBefore(n.FirstChild, t)
	} else {
		appendChild(n, t)
	}
}

// --- tree plumbing ---

func appendChild(parent, n *xmlquery.Node) {
	n.Parent = parent
	n.NextSibling = nil
	if parent.LastChild == nil {
		parent.FirstChild = n
		n.PrevSibling = nil
	} else {
		parent.LastChild.NextSibling = n
		n.PrevSibling = parent.LastChild
	}
	parent.LastChild = n
}

func insertAfter(ref, n *xmlquery.Node) {
	n.Parent = ref.Parent
	n.PrevSibling = ref
	n.NextSibling = ref.NextSibling
	if ref.NextSibling != nil {
		ref.NextSibling.PrevSibling = n
	} else if ref.Parent != nil {
		ref.Parent.LastChild = n
	}
	ref.NextSibling = n
}

func insertBefore(ref, n *xmlquery.Node) {
	n.Parent = ref.Parent
	n.NextSibling = ref
	n.PrevSibling = ref.PrevSibling
	if ref.PrevSibling != nil {
		ref.PrevSibling.NextSibling = n
	} else if ref.Parent != nil {
		ref.Parent.FirstChild = n
	}
	ref.PrevSibling = n
}

func removeChild(parent, n *xmlquery.Node) {
	if n.PrevSibling != nil {
		n.PrevSibling.NextSibling = n.NextSibling
	} else {
		parent.FirstChild = n.NextSibling
	}
	if n.NextSibling != nil {
		n.NextSibling.PrevSibling = n.PrevSibling
	} else {
		parent.LastChild = n.PrevSibling
	}
	n.Parent, n.PrevSibling, n.NextSibling = nil, nil, nil
}

func clearChildren(n *xmlquery.Node) {
	n.FirstChild = nil
	n.LastChild = nil
}
