package translator

import (
	"context"
	"testing"
)

func TestGoogleIsAvailable_CredentialSources(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	ctx := context.Background()

	// A flag-supplied credentials file is enough on its own.
	if err := NewGoogleService("testdata/key.json").IsAvailable(ctx); err != nil {
		t.Errorf("IsAvailable() with configured credentials = %v, want nil", err)
	}

	if err := NewGoogleService("").IsAvailable(ctx); err == nil {
		t.Error("IsAvailable() without any credentials should fail")
	}

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/etc/gcp/adc.json")
	if err := NewGoogleService("").IsAvailable(ctx); err != nil {
		t.Errorf("IsAvailable() with env credentials = %v, want nil", err)
	}
}
