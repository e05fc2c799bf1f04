package engine

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/AdamBarwell/TranslationTest/internal/store"
	"github.com/AdamBarwell/TranslationTest/internal/translator"
	"github.com/AdamBarwell/TranslationTest/internal/validator"
	"github.com/AdamBarwell/TranslationTest/internal/xliff"
)

const testXLF = `<?xml version="1.0" encoding="utf-8"?>
<xliff version="1.2" xmlns="urn:oasis:names:tc:xliff:document:1.2">
  <file original="story.xml" source-language="en-US" target-language="fr-FR" datatype="xml">
    <body>
      <trans-unit id="u1" datatype="plaintext">
        <source>Hello</source>
      </trans-unit>
      <trans-unit id="u2" datatype="x-DocumentState" xml:space="preserve">
        <source><g id="g1" ctype="x-text">Click </g><g id="g2" ctype="x-text">here </g><g id="g3" ctype="x-text">to continue</g></source>
      </trans-unit>
      <trans-unit id="u3" datatype="plaintext">
        <source>   </source>
      </trans-unit>
    </body>
  </file>
</xliff>`

type mockService struct {
	calls int64
	fn    func(req translator.TranslateRequest) (string, error)
}

func (m *mockService) Name() string { return "mock" }

func (m *mockService) Translate(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
	atomic.AddInt64(&m.calls, 1)
	text, err := m.fn(req)
	if err != nil {
		return nil, err
	}
	return &translator.ServiceResult{ServiceName: "mock", TranslatedText: text}, nil
}

func (m *mockService) IsAvailable(ctx context.Context) error { return nil }

func frenchMock() *mockService {
	return &mockService{fn: func(req translator.TranslateRequest) (string, error) {
		if req.HasMarkers {
			return "Cliquez __SEG__ ici __SEG__ pour continuer", nil
		}
		return "Bonjour", nil
	}}
}

func testConfig() Config {
	return Config{SourceLang: "en-US", TargetLang: "fr-FR", Workers: 2}
}

func newTestEngine(t *testing.T, svc translator.TranslationService, db *store.Store) *Engine {
	t.Helper()
	e := New(svc, db, nil, testConfig())
	e.SetProgress(io.Discard)
	return e
}

func parseTestDoc(t *testing.T) *xliff.Document {
	t.Helper()
	doc, err := xliff.Parse(strings.NewReader(testXLF))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func TestRun_TranslatesDocument(t *testing.T) {
	doc := parseTestDoc(t)
	out := filepath.Join(t.TempDir(), "out.xlf")

	e := newTestEngine(t, frenchMock(), nil)
	summary, err := e.Run(context.Background(), doc, "in.xlf", out)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Translated != 2 {
		t.Errorf("Translated = %d, want 2", summary.Translated)
	}
	if summary.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", summary.Skipped)
	}
	if summary.DriftUnits != 0 {
		t.Errorf("DriftUnits = %d, want 0", summary.DriftUnits)
	}
	if summary.Report == nil || !summary.Report.Valid() {
		t.Errorf("report not valid: %+v", summary.Report)
	}

	// The written file must round-trip with intact fragment envelopes.
	saved, err := xliff.Load(out)
	if err != nil {
		t.Fatalf("Load(%q) error = %v", out, err)
	}
	if got, _ := saved.Unit("u1").TargetText(); got != "Bonjour" {
		t.Errorf("u1 target = %q, want %q", got, "Bonjour")
	}
	frags, ok := saved.Unit("u2").TargetFragmentTexts()
	if !ok {
		t.Fatal("u2 has no target")
	}
	want := []string{"Cliquez ", "ici ", "pour continuer"}
	if len(frags) != len(want) {
		t.Fatalf("u2 fragments = %v, want %v", frags, want)
	}
	for i := range want {
		if frags[i] != want[i] {
			t.Errorf("u2 fragment[%d] = %q, want %q", i, frags[i], want[i])
		}
	}
}

func TestRun_DroppedMarkersPadResult(t *testing.T) {
	svc := &mockService{fn: func(req translator.TranslateRequest) (string, error) {
		if req.HasMarkers {
			return "Cliquez ici", nil
		}
		return "Bonjour", nil
	}}

	doc := parseTestDoc(t)
	out := filepath.Join(t.TempDir(), "out.xlf")

	e := newTestEngine(t, svc, nil)
	summary, err := e.Run(context.Background(), doc, "in.xlf", out)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.DriftUnits != 1 {
		t.Errorf("DriftUnits = %d, want 1", summary.DriftUnits)
	}
	frags, _ := doc.Unit("u2").TargetFragmentTexts()
	if len(frags) != 3 {
		t.Fatalf("u2 fragments = %v, want 3 entries", frags)
	}
	if frags[0] != "Cliquez ici " || frags[1] != "" || frags[2] != "" {
		t.Errorf("u2 fragments = %q, want padded tail", frags)
	}
	// Padding produces empty targets, which the report surfaces but
	// tolerates.
	if got := summary.Report.Count(validator.KindEmptyTarget); got != 2 {
		t.Errorf("empty_target findings = %d, want 2", got)
	}
	if !summary.Report.Valid() {
		t.Error("report should stay valid with empty-target findings only")
	}
}

func TestRun_FailedUnitKeepsSource(t *testing.T) {
	svc := &mockService{fn: func(req translator.TranslateRequest) (string, error) {
		if req.UnitID == "u1" {
			return "", errors.New("service unavailable")
		}
		return "Cliquez __SEG__ ici __SEG__ pour continuer", nil
	}}

	doc := parseTestDoc(t)
	out := filepath.Join(t.TempDir(), "out.xlf")

	e := newTestEngine(t, svc, nil)
	summary, err := e.Run(context.Background(), doc, "in.xlf", out)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Failed != 1 {
		t.Errorf("Failed = %d, want 1", summary.Failed)
	}
	if summary.Translated != 1 {
		t.Errorf("Translated = %d, want 1", summary.Translated)
	}
	if doc.Unit("u1").HasTarget() {
		t.Error("failed unit u1 should have no target")
	}
	if summary.Report.Count(validator.KindMissingTarget) == 0 {
		t.Error("report should flag the missing target")
	}
}

func TestRun_RetriesThenSucceeds(t *testing.T) {
	var attempts int64
	svc := &mockService{fn: func(req translator.TranslateRequest) (string, error) {
		if req.UnitID == "u1" && atomic.AddInt64(&attempts, 1) == 1 {
			return "", errors.New("transient")
		}
		if req.HasMarkers {
			return "Cliquez __SEG__ ici __SEG__ pour continuer", nil
		}
		return "Bonjour", nil
	}}

	doc := parseTestDoc(t)
	out := filepath.Join(t.TempDir(), "out.xlf")

	cfg := testConfig()
	cfg.MaxAttempts = 3
	e := New(svc, nil, nil, cfg)
	e.SetProgress(io.Discard)

	summary, err := e.Run(context.Background(), doc, "in.xlf", out)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Failed != 0 {
		t.Errorf("Failed = %d, want 0", summary.Failed)
	}
	if got, _ := doc.Unit("u1").TargetText(); got != "Bonjour" {
		t.Errorf("u1 target = %q, want %q", got, "Bonjour")
	}
}

func TestRun_SecondRunHitsMemory(t *testing.T) {
	dir := t.TempDir()
	db, err := store.New(filepath.Join(dir, "tm.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer db.Close()

	svc := frenchMock()

	for run := 0; run < 2; run++ {
		doc := parseTestDoc(t)
		out := filepath.Join(dir, "out.xlf")
		e := newTestEngine(t, svc, db)
		summary, err := e.Run(context.Background(), doc, "in.xlf", out)
		if err != nil {
			t.Fatalf("Run() #%d error = %v", run+1, err)
		}
		if run == 1 {
			if summary.FromCache != 2 {
				t.Errorf("FromCache = %d, want 2", summary.FromCache)
			}
		}
	}

	if got := atomic.LoadInt64(&svc.calls); got != 2 {
		t.Errorf("service calls = %d, want 2 (second run served from memory)", got)
	}
}

func TestRun_CancelledBeforeWrite(t *testing.T) {
	doc := parseTestDoc(t)
	out := filepath.Join(t.TempDir(), "out.xlf")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newTestEngine(t, frenchMock(), nil)
	if _, err := e.Run(ctx, doc, "in.xlf", out); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output file should not exist after cancellation, stat err = %v", err)
	}
}
