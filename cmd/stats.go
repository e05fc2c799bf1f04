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

	"github.com/spf13/cobra"

	"github.com/AdamBarwell/TranslationTest/internal/xliff"
)

var statsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Show statistics for an XLIFF file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := xliff.Load(args[0])
		if err != nil {
			return fmt.Errorf("failed to load file: %w", err)
		}

		st := doc.Stats()
		fmt.Printf("File:             %s\n", args[0])
		fmt.Printf("Languages:        %s -> %s\n", st.SourceLanguage, st.TargetLanguage)
		fmt.Printf("Units:            %d (%d plaintext, %d styled)\n",
			st.TotalUnits, st.PlaintextUnits, st.StyledUnits)
		fmt.Printf("Source chars:     %d\n", st.TotalChars)
		fmt.Printf("Avg chars/unit:   %.1f\n", st.AvgChars)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
