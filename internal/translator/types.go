// Package translator defines the translation port and its service backends.
//
// A service receives one payload (a plain unit's text or a marker-merged
// multi-fragment payload) and returns raw translated text. Whatever comes
// back is untrusted: boundary markers may have been dropped, duplicated, or
// moved, and surrounding whitespace may differ. Repairing that is the
// segment decoder's job, never the service's; services only report.
package translator

import (
	"context"
	"time"
)

type ServiceConfig struct {
	Credentials string        `mapstructure:"credentials" json:"credentials"`
	APIKey      string        `mapstructure:"api_key" json:"api_key"`
	Model       string        `mapstructure:"model" json:"model"`
	BaseURL     string        `mapstructure:"base_url" json:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
	ProjectID   string        `mapstructure:"project_id" json:"project_id"`
}

// TranslateRequest carries one payload plus the unit metadata LLM backends
// fold into their prompt.
type TranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`

	// UnitID identifies the originating trans-unit, for diagnostics only.
	UnitID string `json:"unit_id,omitempty"`
	// HasMarkers tells LLM backends to instruct the model to keep __SEG__
	// markers verbatim.
	HasMarkers bool `json:"has_markers,omitempty"`
	// PreserveTerms lists terms (brand names, product names) that must not
	// be translated.
	PreserveTerms []string `json:"preserve_terms,omitempty"`
	// Instructions is free-form extra context appended to the prompt.
	Instructions string `json:"instructions,omitempty"`
}

type ServiceResult struct {
	ServiceName    string            `json:"service_name"`
	TranslatedText string            `json:"translated_text"`
	Confidence     float64           `json:"confidence"`
	Metadata       map[string]string `json:"metadata"`
	Latency        time.Duration     `json:"latency"`
	Error          string            `json:"error,omitempty"`
}

type TranslationService interface {
	Name() string
	Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error)
	IsAvailable(ctx context.Context) error
}
