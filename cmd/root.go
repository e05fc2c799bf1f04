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
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "0.3.0"

var rootCmd = &cobra.Command{
	Use:   "xlftr",
	Short: "XLIFF translation round-trip tool",
	Long: `Translates Articulate Storyline XLIFF 1.2 exports while keeping their
inline structure intact. Styled units are merged with boundary markers,
sent through a single translation call, then split back into their
original fragments with whitespace restored.

Supported services: Google Translate, OpenAI, Ollama (self-hosted)

Use "xlftr translate --help" for translation options.`,
	Version: version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// .env is optional; flags and XLF_* environment variables win.
	_ = godotenv.Load()

	viper.SetEnvPrefix("XLF")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}
