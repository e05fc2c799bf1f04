// Package engine drives the round-trip for one document: merge each unit's
// fragments, translate through the configured service with bounded
// concurrency, reconcile and whitespace-restore the results, write targets
// in deterministic unit order, then run the final cleanup pass and the
// validator over the assembled file.
//
// Translation calls are the only blocking step and run concurrently across
// units; everything after them is sequential in document order so cleanup
// and validation diagnostics stay reproducible.
package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/AdamBarwell/TranslationTest/internal/segment"
	"github.com/AdamBarwell/TranslationTest/internal/store"
	"github.com/AdamBarwell/TranslationTest/internal/translator"
	"github.com/AdamBarwell/TranslationTest/internal/validator"
	"github.com/AdamBarwell/TranslationTest/internal/xliff"
)

type Config struct {
	SourceLang string
	TargetLang string

	// Workers bounds concurrent translation calls. Zero means 4.
	Workers int
	// MaxAttempts is the total attempts per unit including the first.
	// Zero means 1.
	MaxAttempts int

	PreserveTerms []string
	Instructions  string

	Service translator.ServiceConfig
}

type Engine struct {
	service  translator.TranslationService
	db       *store.Store // nil disables memory and checkpoints
	val      *validator.Validator
	cfg      Config
	progress io.Writer
}

// New builds an engine. db may be nil to run without translation memory or
// resume support; val may be nil for a validator without language checking.
func New(service translator.TranslationService, db *store.Store, val *validator.Validator, cfg Config) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if val == nil {
		val = validator.New()
	}
	return &Engine{
		service:  service,
		db:       db,
		val:      val,
		cfg:      cfg,
		progress: os.Stderr,
	}
}

// SetProgress redirects progress output (default os.Stderr).
func (e *Engine) SetProgress(w io.Writer) {
	e.progress = w
}

// Summary reports one completed run.
type Summary struct {
	JobID      string
	TotalUnits int
	Translated int
	Skipped    int
	Failed     int
	FromCache  int
	// DriftUnits counts units whose returned marker count differed from
	// what was sent.
	DriftUnits    int
	CleanupEvents []xliff.CleanupEvent
	Report        *validator.Report
}

type unitResult struct {
	text    string
	drift   int
	cached  bool
	skipped bool
	err     error
}

// Run translates every unit of doc and writes the assembled document to
// outputPath. inputPath identifies the job for resume lookups.
//
// Per-unit failures never abort the batch: a failed unit keeps its source
// text and is surfaced in the summary. Cancellation aborts before anything
// is written, so a partially translated run never overwrites outputPath;
// its finished units stay checkpointed for resume.
func (e *Engine) Run(ctx context.Context, doc *xliff.Document, inputPath, outputPath string) (*Summary, error) {
	units := doc.Units()
	summary := &Summary{TotalUnits: len(units)}

	checkpoints, jobID, err := e.openJob(ctx, inputPath, outputPath)
	if err != nil {
		return nil, err
	}
	summary.JobID = jobID

	results := e.translateAll(ctx, units, checkpoints, jobID)

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	// Assembly runs sequentially in document order.
	for i, u := range units {
		r := results[i]
		switch {
		case r.skipped:
			summary.Skipped++
			continue
		case r.err != nil:
			summary.Failed++
			fmt.Fprintf(e.progress, "Unit %s failed, keeping source text: %v\n", u.ID, r.err)
			continue
		}

		if r.cached {
			summary.FromCache++
		}
		if r.drift != 0 {
			summary.DriftUnits++
		}

		if err := e.assemble(u, r.text); err != nil {
			summary.Failed++
			fmt.Fprintf(e.progress, "Unit %s rejected, keeping source text: %v\n", u.ID, err)
			continue
		}
		summary.Translated++
	}

	events, err := doc.Save(outputPath)
	summary.CleanupEvents = events
	for _, ev := range events {
		fmt.Fprintf(e.progress, "Cleaned residual marker in unit %s (%s): %q -> %q\n",
			ev.UnitID, ev.FragmentID, ev.Before, ev.After)
	}
	if err != nil {
		return summary, err
	}

	summary.Report = e.val.Validate(doc, e.cfg.TargetLang)

	if e.db != nil {
		if err := e.db.CompleteJob(ctx, jobID); err != nil {
			fmt.Fprintf(e.progress, "Warning: failed to complete job record: %v\n", err)
		}
	}
	return summary, nil
}

// openJob returns checkpointed unit payloads from a resumable job, or
// creates a fresh job record.
func (e *Engine) openJob(ctx context.Context, inputPath, outputPath string) (map[string]string, string, error) {
	if e.db == nil {
		return nil, uuid.New().String(), nil
	}

	if j, err := e.db.FindRunningJob(ctx, inputPath, e.cfg.SourceLang, e.cfg.TargetLang); err == nil && j != nil {
		checkpoints, err := e.db.GetJobUnits(ctx, j.ID)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load job checkpoints: %w", err)
		}
		if len(checkpoints) > 0 {
			fmt.Fprintf(e.progress, "Resuming job %s with %d translated units\n", j.ID, len(checkpoints))
		}
		return checkpoints, j.ID, nil
	}

	jobID := uuid.New().String()
	if err := e.db.CreateJob(ctx, jobID, inputPath, outputPath, e.cfg.SourceLang, e.cfg.TargetLang); err != nil {
		return nil, "", fmt.Errorf("failed to create job record: %w", err)
	}
	return nil, jobID, nil
}

// translateAll fans translation calls out over a bounded worker pool and
// returns one result per unit, indexed by unit position.
func (e *Engine) translateAll(ctx context.Context, units []*xliff.Unit, checkpoints map[string]string, jobID string) []unitResult {
	results := make([]unitResult, len(units))

	type job struct {
		index int
		unit  *xliff.Unit
	}
	jobs := make(chan job)
	var wg sync.WaitGroup

	for w := 0; w < e.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.index] = e.translateUnit(ctx, j.unit, checkpoints, jobID)
			}
		}()
	}

feed:
	for i, u := range units {
		select {
		case jobs <- job{index: i, unit: u}:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

// translateUnit produces the raw translated payload for one unit, from a
// checkpoint, the translation memory, or the service.
func (e *Engine) translateUnit(ctx context.Context, u *xliff.Unit, checkpoints map[string]string, jobID string) unitResult {
	payload := u.TranslatableText()
	if payload == "" {
		return unitResult{skipped: true}
	}

	sent := segment.CountMarkers(payload)

	if text, ok := checkpoints[u.ID]; ok {
		return unitResult{text: text, drift: segment.CountMarkers(text) - sent, cached: true}
	}

	if e.db != nil {
		if cached, found, err := e.db.GetCachedTranslation(ctx, payload, e.cfg.SourceLang, e.cfg.TargetLang); err == nil && found {
			return unitResult{text: cached, drift: segment.CountMarkers(cached) - sent, cached: true}
		}
	}

	req := translator.TranslateRequest{
		Text:          payload,
		SourceLang:    e.cfg.SourceLang,
		TargetLang:    e.cfg.TargetLang,
		UnitID:        u.ID,
		HasMarkers:    sent > 0,
		PreserveTerms: e.cfg.PreserveTerms,
		Instructions:  e.cfg.Instructions,
	}

	var lastErr error
	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return unitResult{err: err}
		}

		res, err := e.service.Translate(ctx, e.cfg.Service, req)
		if err != nil {
			lastErr = err
		} else if res.TranslatedText == "" {
			lastErr = fmt.Errorf("empty translation from %s", res.ServiceName)
		} else {
			got := segment.CountMarkers(res.TranslatedText)
			if got != sent {
				// Expected failure mode of the port; reconciliation
				// absorbs it downstream.
				fmt.Fprintf(e.progress, "Marker drift in unit %s: sent %d, got %d\n", u.ID, sent, got)
			}
			e.remember(ctx, jobID, u.ID, payload, res, got-sent)
			return unitResult{text: res.TranslatedText, drift: got - sent}
		}

		if attempt < e.cfg.MaxAttempts {
			fmt.Fprintf(e.progress, "Retry %d/%d for unit %s: %v\n", attempt, e.cfg.MaxAttempts-1, u.ID, lastErr)
		}
	}

	return unitResult{err: lastErr}
}

func (e *Engine) remember(ctx context.Context, jobID, unitID, payload string, res *translator.ServiceResult, drift int) {
	if e.db == nil {
		return
	}
	if err := e.db.SaveUnitResult(ctx, jobID, unitID, res.TranslatedText, drift); err != nil {
		fmt.Fprintf(e.progress, "Warning: failed to checkpoint unit %s: %v\n", unitID, err)
	}
	if err := e.db.SaveToMemory(ctx, payload, e.cfg.SourceLang, e.cfg.TargetLang, res.TranslatedText, res.ServiceName); err != nil {
		fmt.Fprintf(e.progress, "Warning: failed to save memory for unit %s: %v\n", unitID, err)
	}
}

// assemble reconciles and writes one unit's translation into the document.
func (e *Engine) assemble(u *xliff.Unit, translated string) error {
	if !u.Styled() {
		u.ApplyPlain(translated)
		return nil
	}

	fragments := segment.Reconcile(translated, len(u.Fragments))
	for i := range fragments {
		fragments[i] = u.Fragments[i].Envelope.Apply(fragments[i])
	}
	return u.ApplyStyled(fragments)
}
