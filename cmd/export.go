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
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/neurostudy/internal/app"
	"github.com/eslsoft/neurostudy/internal/usecase/backup"
)

const (
	exportOutputKey = "backup.export.output"
	exportGzipKey   = "backup.export.gzip"
	exportGroupsKey = "backup.export.groups"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every stored record as an NDJSON backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		outputPath := viper.GetString(exportOutputKey)
		gzipEnabled := viper.GetBool(exportGzipKey)
		groups, err := groupsFromConfig(exportGroupsKey)
		if err != nil {
			return err
		}

		if outputPath == "" {
			outputPath = defaultExportFilename(gzipEnabled)
		}
		if !gzipEnabled && outputPath != "-" && strings.HasSuffix(strings.ToLower(outputPath), ".gz") {
			gzipEnabled = true
		}

		return withContainer(cmd, func(ctx context.Context, c *app.Container) (err error) {
			var (
				writer   = cmd.OutOrStdout()
				closeFns []func() error
			)

			if outputPath != "-" {
				if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
					return fmt.Errorf("create output directory: %w", err)
				}
				file, openErr := os.Create(outputPath)
				if openErr != nil {
					return fmt.Errorf("create backup file: %w", openErr)
				}
				writer = file
				closeFns = append(closeFns, file.Close)
			}

			if gzipEnabled {
				gz := gzip.NewWriter(writer)
				writer = gz
				closeFns = append([]func() error{gz.Close}, closeFns...)
			}

			defer func() {
				for _, closer := range closeFns {
					if cerr := closer(); cerr != nil && err == nil {
						err = cerr
					}
				}
			}()

			exportOpts := []backup.ExportOption{backup.WithProgressReporter(newCLIProgress(cmd.ErrOrStderr()))}
			if len(groups) > 0 {
				exportOpts = append(exportOpts, backup.WithGroups(groups))
			}

			if err := c.Backup.Export(ctx, writer, exportOpts...); err != nil {
				return fmt.Errorf("export backup: %w", err)
			}

			if outputPath == "-" {
				cmd.PrintErrln("Export complete: written to stdout")
			} else {
				cmd.Printf("Export complete: %s\n", outputPath)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "backup file path, - for stdout")
	exportCmd.Flags().Bool("gzip", false, "gzip the output")
	exportCmd.Flags().StringSlice("groups", nil, "only export these record groups (stats, users, session-progress, ...)")

	bindExportConfig()
}

func defaultExportFilename(gzipEnabled bool) string {
	ts := time.Now().UTC().Format("20060102-150405")
	filename := fmt.Sprintf("neurostudy-backup-%s.jsonl", ts)
	if gzipEnabled {
		filename += ".gz"
	}
	return filename
}

func bindExportConfig() {
	bindFlagToViper(exportOutputKey, exportCmd.Flags().Lookup("output"))
	bindFlagToViper(exportGzipKey, exportCmd.Flags().Lookup("gzip"))
	bindFlagToViper(exportGroupsKey, exportCmd.Flags().Lookup("groups"))
}

type cliProgress struct {
	out    io.Writer
	totals map[string]int
	counts map[string]int
}

func newCLIProgress(out io.Writer) *cliProgress {
	return &cliProgress{
		out:    out,
		totals: make(map[string]int),
		counts: make(map[string]int),
	}
}

func (p *cliProgress) StartGroup(group string, total int) {
	p.totals[group] = max(total, 0)
	p.counts[group] = 0
}

func (p *cliProgress) Increment(group string, delta int) {
	if delta > 0 {
		p.counts[group] += delta
	}
}

func (p *cliProgress) FinishGroup(group string) {
	fmt.Fprintf(p.out, "Exported %s: %d/%d records\n", group, p.counts[group], p.totals[group])
	delete(p.counts, group)
	delete(p.totals, group)
}
