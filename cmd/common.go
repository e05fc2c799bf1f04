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
	"fmt"

	"github.com/AdamBarwell/TranslationTest/internal/translator"
)

// buildService constructs a translation service from CLI parameters.
func buildService(name, apiKey, baseURL, model, ollamaURL, credentials string) (translator.TranslationService, error) {
	switch name {
	case "google":
		return translator.NewGoogleService(credentials), nil
	case "openai":
		return translator.NewOpenAIService(apiKey, baseURL, model), nil
	case "ollama":
		if model == "" {
			model = "llama3.2"
		}
		return translator.NewOllamaService(ollamaURL, model), nil
	default:
		return nil, fmt.Errorf("unknown service: %s (use google, openai or ollama)", name)
	}
}
