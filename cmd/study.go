/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eslsoft/neurostudy/internal/app"
)

var studyCmd = &cobra.Command{
	Use:   "study <file.pdf>",
	Short: "Summarize a PDF and optionally quiz yourself on it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		startQuiz, _ := cmd.Flags().GetBool("quiz")
		path := filepath.Clean(args[0])
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open document: %w", err)
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("stat document: %w", err)
		}

		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			identity, err := currentIdentity(ctx, c)
			if err != nil {
				return err
			}
			doc, err := c.Study.ProcessDocument(ctx, identity, filepath.Base(path), f, info.Size())
			if err != nil {
				return err
			}
			cmd.Printf("Summary of %s:\n\n%s\n", doc.Name, doc.Summary)
			if !startQuiz {
				cmd.Println("\nRun 'neurostudy quiz start' to test yourself.")
				return nil
			}
			session, err := c.Study.StartQuiz(ctx, identity)
			if err != nil {
				return err
			}
			return runQuiz(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), session)
		})
	},
}

func init() {
	rootCmd.AddCommand(studyCmd)

	studyCmd.Flags().Bool("quiz", false, "start a quiz right after the summary")
}
