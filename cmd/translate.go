/*
Copyright © 2026 Adam Barwell

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AdamBarwell/TranslationTest/internal/detector"
	"github.com/AdamBarwell/TranslationTest/internal/engine"
	"github.com/AdamBarwell/TranslationTest/internal/store"
	"github.com/AdamBarwell/TranslationTest/internal/translator"
	"github.com/AdamBarwell/TranslationTest/internal/validator"
	"github.com/AdamBarwell/TranslationTest/internal/xliff"
)

var (
	inputFile  string
	outputFile string
	sourceLang string
	targetLang string

	serviceName string
	model       string
	baseURL     string

	workers    int
	maxRetries int

	dbPath  string
	noCache bool

	preserveTerms      []string
	extraContext       string
	translateLangCheck bool
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate an XLIFF file",
	Long: `Translate every trans-unit of an XLIFF 1.2 file in place of its
structure: plain units as-is, styled units through the boundary-marker
merge/split round trip.

Available services:
  - google   Google Cloud Translate (requires credentials)
  - openai   OpenAI chat completions (requires API key)
  - ollama   Ollama LLM (self-hosted)

Language codes default to the file's source-language and target-language
attributes; --source auto detects the language from the source text.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile == outputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		doc, err := xliff.Load(inputFile)
		if err != nil {
			return fmt.Errorf("failed to load input file: %w", err)
		}
		if len(doc.Units()) == 0 {
			return fmt.Errorf("no translatable units in %s", inputFile)
		}

		src, tgt, err := resolveLanguages(doc)
		if err != nil {
			return err
		}

		svc, err := buildService(serviceName,
			viper.GetString("api-key"), baseURL, model,
			viper.GetString("ollama-url"), viper.GetString("credentials"))
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := svc.IsAvailable(ctx); err != nil {
			return fmt.Errorf("service %s is not available: %w", svc.Name(), err)
		}

		var db *store.Store
		if !noCache && dbPath != "" {
			if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
			db, err = store.New(dbPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()
		}

		v := validator.New()
		if translateLangCheck {
			v = validator.NewWithLanguageCheck()
		}

		eng := engine.New(svc, db, v, engine.Config{
			SourceLang:    src,
			TargetLang:    tgt,
			Workers:       workers,
			MaxAttempts:   maxRetries + 1,
			PreserveTerms: preserveTerms,
			Instructions:  extraContext,
			Service: translator.ServiceConfig{
				APIKey:      viper.GetString("api-key"),
				Model:       model,
				BaseURL:     baseURL,
				Credentials: viper.GetString("credentials"),
				ProjectID:   viper.GetString("project"),
			},
		})

		if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		summary, err := eng.Run(ctx, doc, inputFile, outputFile)
		if err != nil {
			return fmt.Errorf("translation run failed: %w", err)
		}

		fmt.Printf("Successfully translated %s to %s\n", src, tgt)
		fmt.Printf("Units: %d translated, %d from cache, %d skipped, %d failed (of %d)\n",
			summary.Translated, summary.FromCache, summary.Skipped, summary.Failed, summary.TotalUnits)
		if summary.DriftUnits > 0 {
			fmt.Printf("Marker drift reconciled in %d unit(s)\n", summary.DriftUnits)
		}
		if n := len(summary.CleanupEvents); n > 0 {
			fmt.Printf("Residual markers cleaned: %d\n", n)
		}
		printReport(summary.Report)
		if !summary.Report.Valid() {
			return fmt.Errorf("validation failed for %s", outputFile)
		}
		return nil
	},
}

// resolveLanguages fills in source and target codes from flags, the file's
// language attributes, and the language detector, in that order.
func resolveLanguages(doc *xliff.Document) (string, string, error) {
	src := sourceLang
	if src == "" || src == "auto" {
		if got := doc.SourceLanguage(); got != "unknown" {
			src = got
		} else {
			var b strings.Builder
			for _, u := range doc.Units() {
				b.WriteString(u.SourceText())
				b.WriteString(" ")
			}
			det := detector.New()
			detected, ok := det.DetectISO(b.String())
			if !ok {
				return "", "", fmt.Errorf("could not detect source language; pass --source")
			}
			src = detected
		}
		fmt.Fprintf(os.Stderr, "Source language: %s\n", src)
	}

	tgt := targetLang
	if tgt == "" {
		tgt = doc.TargetLanguage()
		if tgt == "" || tgt == "unknown" {
			return "", "", fmt.Errorf("no target language in file; pass --target")
		}
		fmt.Fprintf(os.Stderr, "Target language: %s\n", tgt)
	}
	return src, tgt, nil
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input XLIFF file (required)")
	translateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output XLIFF file (required)")
	translateCmd.Flags().StringVarP(&sourceLang, "source", "s", "auto", "Source language code")
	translateCmd.Flags().StringVarP(&targetLang, "target", "t", "", "Target language code (default: from file)")

	translateCmd.Flags().StringVar(&serviceName, "service", "google", "Translation service (google, openai, ollama)")
	translateCmd.Flags().StringVarP(&model, "model", "m", "", "Model name for LLM services")
	translateCmd.Flags().StringVar(&baseURL, "base-url", "", "Override the service base URL")

	// Read through viper so XLF_* environment variables can stand in.
	translateCmd.Flags().String("api-key", "", "API key for the selected service")
	translateCmd.Flags().String("ollama-url", "http://localhost:11434", "Ollama base URL")
	translateCmd.Flags().StringP("credentials", "c", "", "Path to Google Cloud credentials")
	translateCmd.Flags().StringP("project", "p", "", "Google Cloud Project ID")

	translateCmd.Flags().IntVar(&workers, "workers", 4, "Concurrent translation calls")
	translateCmd.Flags().IntVar(&maxRetries, "max-retries", 2, "Retries per unit on service failure")

	translateCmd.Flags().StringVar(&dbPath, "db", "./data/xlftr.db", "Translation memory database path (empty to disable)")
	translateCmd.Flags().BoolVar(&noCache, "no-cache", false, "Disable translation memory and resume checkpoints")

	translateCmd.Flags().StringSliceVar(&preserveTerms, "preserve-terms", nil, "Terms to keep untranslated (comma-separated)")
	translateCmd.Flags().StringVar(&extraContext, "context", "", "Extra context passed to LLM services")
	translateCmd.Flags().BoolVar(&translateLangCheck, "check-language", false, "Verify targets read as the target language in the post-run report")

	translateCmd.MarkFlagRequired("input")
	translateCmd.MarkFlagRequired("output")

	viper.BindPFlag("api-key", translateCmd.Flags().Lookup("api-key"))
	viper.BindPFlag("ollama-url", translateCmd.Flags().Lookup("ollama-url"))
	viper.BindPFlag("credentials", translateCmd.Flags().Lookup("credentials"))
	viper.BindPFlag("project", translateCmd.Flags().Lookup("project"))
}
