package translator

import (
	"context"
	"fmt"
	"os"
	"time"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// GoogleService translates via the Google Cloud Translation API. Google has
// no prompt channel, so it cannot be instructed to keep __SEG__ markers;
// marker drift is simply more likely here and the reconciliation decoder
// absorbs it.
type GoogleService struct {
	credentials string
}

// NewGoogleService builds the service. credentials is an optional path to a
// service-account key file; when empty, application default credentials
// (GOOGLE_APPLICATION_CREDENTIALS) are used.
func NewGoogleService(credentials string) *GoogleService {
	return &GoogleService{credentials: credentials}
}

func (s *GoogleService) Name() string {
	return "google"
}

func (s *GoogleService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	targetLangTag, err := language.Parse(req.TargetLang)
	if err != nil {
		result.Error = fmt.Sprintf("invalid target language: %v", err)
		return result, fmt.Errorf("invalid target language: %v", err)
	}

	creds := cfg.Credentials
	if creds == "" {
		creds = s.credentials
	}
	opts := []option.ClientOption{}
	if creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		result.Error = fmt.Sprintf("failed to create client: %v", err)
		return result, fmt.Errorf("failed to create client: %v", err)
	}
	defer client.Close()

	topts := &translate.Options{Format: translate.Text}
	if req.SourceLang != "" && req.SourceLang != "auto" {
		sourceLangTag, perr := language.Parse(req.SourceLang)
		if perr == nil {
			topts.Source = sourceLangTag
		}
	}

	translations, err := client.Translate(ctx, []string{req.Text}, targetLangTag, topts)
	if err != nil {
		result.Error = fmt.Sprintf("translation failed: %v", err)
		return result, fmt.Errorf("translation failed: %v", err)
	}
	if len(translations) == 0 {
		result.Error = "no translation returned"
		return result, fmt.Errorf("no translation returned")
	}

	result.TranslatedText = translations[0].Text
	result.Confidence = 1.0
	return result, nil
}

func (s *GoogleService) IsAvailable(ctx context.Context) error {
	if s.credentials == "" && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		return fmt.Errorf("no Google credentials: set GOOGLE_APPLICATION_CREDENTIALS or pass a credentials file")
	}
	return nil
}
