// Package store persists translation memory and per-job unit checkpoints in
// SQLite. Memory lets identical unit texts skip the translation port across
// runs; checkpoints let an interrupted job resume without re-translating
// finished units.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS translation_memory (
		id TEXT PRIMARY KEY,
		source_text TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		final_text TEXT NOT NULL,
		service_used TEXT,
		usage_count INTEGER DEFAULT 1,
		last_used TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source_text, source_lang, target_lang)
	);

	-- jobs tracks one translation run over one xlf file, for resume support
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		input_file TEXT NOT NULL,
		output_file TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		status TEXT DEFAULT 'running',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- job_units stores the raw translated payload per trans-unit
	CREATE TABLE IF NOT EXISTS job_units (
		job_id TEXT NOT NULL,
		unit_id TEXT NOT NULL,
		translated_text TEXT NOT NULL,
		marker_drift INTEGER DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (job_id, unit_id),
		FOREIGN KEY (job_id) REFERENCES jobs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_memory_lookup ON translation_memory(source_text, source_lang, target_lang);
	CREATE INDEX IF NOT EXISTS idx_job_units ON job_units(job_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// GetCachedTranslation returns the remembered translation for sourceText in
// the given language pair, bumping its usage counter on a hit.
func (s *Store) GetCachedTranslation(ctx context.Context, sourceText, sourceLang, targetLang string) (string, bool, error) {
	var finalText string
	err := s.db.QueryRowContext(ctx,
		`SELECT final_text FROM translation_memory WHERE source_text = ? AND source_lang = ? AND target_lang = ?`,
		normalizeText(sourceText), sourceLang, targetLang).Scan(&finalText)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE translation_memory SET usage_count = usage_count + 1, last_used = ? WHERE source_text = ? AND source_lang = ? AND target_lang = ?`,
		time.Now(), normalizeText(sourceText), sourceLang, targetLang)
	return finalText, true, err
}

// SaveToMemory remembers a finished translation for future runs.
func (s *Store) SaveToMemory(ctx context.Context, sourceText, sourceLang, targetLang, finalText, serviceUsed string) error {
	id := fmt.Sprintf("mem_%d", time.Now().UnixNano())
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO translation_memory (id, source_text, source_lang, target_lang, final_text, service_used, usage_count, last_used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		id, normalizeText(sourceText), sourceLang, targetLang, finalText, serviceUsed, time.Now(), time.Now())
	return err
}

// MemoryEntry is a row from the translation_memory table.
type MemoryEntry struct {
	ID          string
	SourceText  string
	SourceLang  string
	TargetLang  string
	FinalText   string
	ServiceUsed string
	UsageCount  int
	LastUsed    time.Time
}

// ListMemory returns all memory entries ordered by most recently used.
func (s *Store) ListMemory(ctx context.Context) ([]MemoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_text, source_lang, target_lang, final_text, COALESCE(service_used, ''), usage_count, last_used
		 FROM translation_memory ORDER BY last_used DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []MemoryEntry
	for rows.Next() {
		var e MemoryEntry
		if err := rows.Scan(&e.ID, &e.SourceText, &e.SourceLang, &e.TargetLang, &e.FinalText, &e.ServiceUsed, &e.UsageCount, &e.LastUsed); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ClearMemory removes all memory entries.
func (s *Store) ClearMemory(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM translation_memory`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MemoryStats summarises translation memory usage.
type MemoryStats struct {
	TotalEntries int
	TotalUsage   int
}

func (s *Store) Stats(ctx context.Context) (*MemoryStats, error) {
	stats := &MemoryStats{}
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(usage_count), 0) FROM translation_memory`).
		Scan(&stats.TotalEntries, &stats.TotalUsage)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Job is one translation run over one file.
type Job struct {
	ID         string
	InputFile  string
	OutputFile string
	SourceLang string
	TargetLang string
	Status     string
	CreatedAt  time.Time
}

// CreateJob records a new running job.
func (s *Store) CreateJob(ctx context.Context, id, inputFile, outputFile, sourceLang, targetLang string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, input_file, output_file, source_lang, target_lang) VALUES (?, ?, ?, ?, ?)`,
		id, inputFile, outputFile, sourceLang, targetLang)
	return err
}

// FindRunningJob returns the most recent unfinished job for the same file
// and language pair, if any, so a rerun can resume it.
func (s *Store) FindRunningJob(ctx context.Context, inputFile, sourceLang, targetLang string) (*Job, error) {
	var j Job
	err := s.db.QueryRowContext(ctx,
		`SELECT id, input_file, output_file, source_lang, target_lang, status, created_at
		 FROM jobs WHERE input_file = ? AND source_lang = ? AND target_lang = ? AND status = 'running'
		 ORDER BY created_at DESC LIMIT 1`,
		inputFile, sourceLang, targetLang).
		Scan(&j.ID, &j.InputFile, &j.OutputFile, &j.SourceLang, &j.TargetLang, &j.Status, &j.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// SaveUnitResult checkpoints one unit's raw translated payload.
func (s *Store) SaveUnitResult(ctx context.Context, jobID, unitID, translatedText string, markerDrift int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO job_units (job_id, unit_id, translated_text, marker_drift) VALUES (?, ?, ?, ?)`,
		jobID, unitID, translatedText, markerDrift)
	return err
}

// GetJobUnits returns all checkpointed unit payloads for a job as a
// unit-id → translated-text map.
func (s *Store) GetJobUnits(ctx context.Context, jobID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT unit_id, translated_text FROM job_units WHERE job_id = ?`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	units := make(map[string]string)
	for rows.Next() {
		var unitID, text string
		if err := rows.Scan(&unitID, &text); err != nil {
			return nil, err
		}
		units[unitID] = text
	}
	return units, rows.Err()
}

// CompleteJob marks a job as completed.
func (s *Store) CompleteJob(ctx context.Context, jobID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = 'completed', updated_at = ? WHERE id = ?`,
		time.Now(), jobID)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText trims whitespace and applies Unicode NFC normalization for
// consistent cache key comparison.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
