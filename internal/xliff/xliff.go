// Package xliff parses XLIFF 1.2 translation files (Articulate Storyline
// export flavor), exposes their trans-units as translation units with styled
// fragments, writes translated targets back, and guarantees that no internal
// segment markers survive into the saved file.
//
// Two trans-unit shapes exist: datatype="plaintext" units carry a bare
// source string, datatype="x-DocumentState" units carry inline styling where
// only <g ctype="x-text"> descendants hold translatable text. Unknown
// datatypes are treated as plaintext.
package xliff

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Trans-unit datatypes with dedicated handling.
const (
	DatatypePlaintext     = "plaintext"
	DatatypeDocumentState = "x-DocumentState"
)

var (
	exprTransUnits = xpath.MustCompile("//trans-unit")
	exprFile       = xpath.MustCompile("//file")
	exprSource     = xpath.MustCompile("source")
	exprTarget     = xpath.MustCompile("target")
	exprTextG      = xpath.MustCompile(".//g[@ctype='x-text']")
	exprBpt        = xpath.MustCompile(".//bpt")
	exprEpt        = xpath.MustCompile(".//ept")
)

// Document is a parsed XLIFF file. It owns its units: a Unit holds pointers
// into the document tree and must not outlive the Document.
type Document struct {
	root  *xmlquery.Node
	units []*Unit
}

// Load reads and parses the XLIFF file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read xliff file: %w", err)
	}
	doc, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse parses an XLIFF document from r.
func Parse(r io.Reader) (*Document, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("invalid XML: %w", err)
	}

	d := &Document{root: root}
	for _, node := range xmlquery.QuerySelectorAll(root, exprTransUnits) {
		u, err := parseUnit(node)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping trans-unit %s: %v\n", node.SelectAttr("id"), err)
			continue
		}
		if u != nil {
			d.units = append(d.units, u)
		}
	}
	return d, nil
}

// Units returns the document's translation units in document order.
func (d *Document) Units() []*Unit {
	return d.units
}

// Unit returns the unit with the given id, or nil.
func (d *Document) Unit(id string) *Unit {
	for _, u := range d.units {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// SourceLanguage returns the file element's source-language attribute,
// "unknown" when absent.
func (d *Document) SourceLanguage() string {
	if f := xmlquery.QuerySelector(d.root, exprFile); f != nil {
		if lang := f.SelectAttr("source-language"); lang != "" {
			return lang
		}
	}
	return "unknown"
}

// TargetLanguage returns the file element's target-language attribute, which
// may be empty.
func (d *Document) TargetLanguage() string {
	if f := xmlquery.QuerySelector(d.root, exprFile); f != nil {
		return f.SelectAttr("target-language")
	}
	return ""
}

// Bytes serializes the document, including the XML declaration.
func (d *Document) Bytes() []byte {
	out := d.root.OutputXML(false)
	if !strings.HasPrefix(strings.TrimSpace(out), "<?xml") {
		out = `<?xml version="1.0" encoding="utf-8"?>` + "\n" + out
	}
	return []byte(out)
}

// Save writes the document to path and runs the residual-marker cleanup
// pass over the written form. If the pass had to strip anything the file is
// rewritten, so the persisted document is only final once the returned event
// list has been produced. Running Save twice in a row yields no events the
// second time.
func (d *Document) Save(path string) ([]CleanupEvent, error) {
	if err := os.WriteFile(path, d.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("failed to write output file: %w", err)
	}

	events := d.CleanupResidualMarkers()
	if len(events) > 0 {
		if err := os.WriteFile(path, d.Bytes(), 0644); err != nil {
			return events, fmt.Errorf("failed to re-save cleaned file: %w", err)
		}
	}
	return events, nil
}
