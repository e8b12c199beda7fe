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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/neurostudy/internal/app"
	"github.com/eslsoft/neurostudy/internal/usecase/backup"
)

const (
	importInputKey        = "backup.import.input"
	importGzipKey         = "backup.import.gzip"
	importGroupsKey       = "backup.import.groups"
	importSkipExistingKey = "backup.import.skip_existing"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Restore records from an NDJSON backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		inputPath := viper.GetString(importInputKey)
		gzipEnabled := viper.GetBool(importGzipKey)
		groups, err := groupsFromConfig(importGroupsKey)
		if err != nil {
			return err
		}
		skipExisting := viper.GetBool(importSkipExistingKey)

		if inputPath == "" {
			return errors.New("specify the backup file with --input, or - for stdin")
		}
		if !gzipEnabled && inputPath != "-" && strings.HasSuffix(strings.ToLower(inputPath), ".gz") {
			gzipEnabled = true
		}

		return withContainer(cmd, func(ctx context.Context, c *app.Container) (err error) {
			var (
				reader  = cmd.InOrStdin()
				closers []func() error
			)

			if inputPath != "-" {
				file, openErr := os.Open(filepath.Clean(inputPath))
				if openErr != nil {
					return fmt.Errorf("open backup file: %w", openErr)
				}
				reader = file
				closers = append(closers, file.Close)
			}

			if gzipEnabled {
				gzr, gzErr := gzip.NewReader(reader)
				if gzErr != nil {
					for _, closer := range closers {
						_ = closer()
					}
					return fmt.Errorf("create gzip reader: %w", gzErr)
				}
				reader = gzr
				closers = append([]func() error{gzr.Close}, closers...)
			}

			defer func() {
				for _, closer := range closers {
					if cerr := closer(); cerr != nil && err == nil {
						err = cerr
					}
				}
			}()

			importOpts := []backup.ImportOption{backup.WithSkipExisting(skipExisting)}
			if len(groups) > 0 {
				importOpts = append(importOpts, backup.WithImportGroups(groups))
			}

			result, err := c.Backup.Import(ctx, reader, importOpts...)
			if err != nil {
				return fmt.Errorf("import backup: %w", err)
			}

			cmd.Printf("Import complete: %d imported, %d skipped\n", result.Imported, result.Skipped)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringP("input", "i", "", "backup file path, - for stdin")
	importCmd.Flags().Bool("gzip", false, "input is gzip compressed")
	importCmd.Flags().StringSlice("groups", nil, "only import these record groups")
	importCmd.Flags().Bool("skip-existing", false, "keep records that already exist")

	bindImportConfig()
}

func bindImportConfig() {
	bindFlagToViper(importInputKey, importCmd.Flags().Lookup("input"))
	bindFlagToViper(importGzipKey, importCmd.Flags().Lookup("gzip"))
	bindFlagToViper(importGroupsKey, importCmd.Flags().Lookup("groups"))
	bindFlagToViper(importSkipExistingKey, importCmd.Flags().Lookup("skip-existing"))
}
