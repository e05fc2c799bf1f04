package xliff

import (
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/AdamBarwell/TranslationTest/internal/segment"
)

// CleanupEvent records one residual boundary marker stripped by the final
// cleanup pass.
type CleanupEvent struct {
	UnitID     string
	FragmentID string // id attribute of the affected <g>, or "" for plain targets
	Before     string
	After      string
}

// CleanupResidualMarkers sweeps every assembled target for boundary markers
// the decoder should already have removed and strips any it finds. It exists
// as a defense against encoder/decoder defects, not as a substitute for the
// decoder's own guarantee. The pass is idempotent: a second run over the
// same document produces no events.
func (d *Document) CleanupResidualMarkers() []CleanupEvent {
	var events []CleanupEvent

	for _, u := range d.units {
		t := u.target()
		if t == nil {
			continue
		}

		if gs := xmlquery.QuerySelectorAll(t, exprTextG); len(gs) > 0 {
			for _, g := range gs {
				if ev, ok := scrubElement(g, u.ID, g.SelectAttr("id")); ok {
					events = append(events, ev)
				}
			}
			continue
		}

		if ev, ok := scrubElement(t, u.ID, ""); ok {
			events = append(events, ev)
		}
	}

	return events
}

func scrubElement(n *xmlquery.Node, unitID, fragmentID string) (CleanupEvent, bool) {
	text := elementText(n)
	if !strings.Contains(text, segment.Boundary) {
		return CleanupEvent{}, false
	}
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, segment.Boundary, ""))
	setElementText(n, cleaned)
	return CleanupEvent{
		UnitID:     unitID,
		FragmentID: fragmentID,
		Before:     snippet(text),
		After:      snippet(cleaned),
	}, true
}

// snippet truncates text for diagnostics.
func snippet(s string) string {
	const max = 50
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
