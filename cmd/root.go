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
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eslsoft/neurostudy/internal/app"
	"github.com/eslsoft/neurostudy/internal/entity"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "neurostudy",
	Short: "Gamified study companion: summaries, quizzes, XP and streaks",
	Long: `neurostudy turns study material into quizzes and tracks progress with
XP, daily streaks and achievements. Records live in the configured storage
backend (sqlite by default) and are scoped to the signed-in account.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("storage-driver", "", "storage backend: memory, sqlite3, postgres, redis or mongo")
	rootCmd.PersistentFlags().String("storage-dsn", "", "storage connection string")

	bindFlagToViper("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	bindFlagToViper("storage.driver", rootCmd.PersistentFlags().Lookup("storage-driver"))
	bindFlagToViper("storage.dsn", rootCmd.PersistentFlags().Lookup("storage-dsn"))
}

// withContainer builds the application container for the lifetime of one command.
func withContainer(cmd *cobra.Command, fn func(ctx context.Context, c *app.Container) error) error {
	c, cleanup, err := app.Initialize()
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer cleanup()
	return fn(cmd.Context(), c)
}

// currentIdentity returns the signed-in account, or "" for an anonymous session.
func currentIdentity(ctx context.Context, c *app.Container) (string, error) {
	identity, err := c.Accounts.Current(ctx)
	if errors.Is(err, entity.ErrNotLoggedIn) {
		return "", nil
	}
	return identity, err
}

func requireIdentity(ctx context.Context, c *app.Container) (string, error) {
	identity, err := currentIdentity(ctx, c)
	if err != nil {
		return "", err
	}
	if identity == "" {
		return "", fmt.Errorf("%w: run 'neurostudy login' first", entity.ErrNotLoggedIn)
	}
	return identity, nil
}
