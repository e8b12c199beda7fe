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
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eslsoft/neurostudy/internal/app"
)

var signupCmd = &cobra.Command{
	Use:   "signup <email>",
	Short: "Create a local account and sign in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := passwordFromFlagOrPrompt(cmd)
		if err != nil {
			return err
		}
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			if err := c.Accounts.SignUp(ctx, args[0], password); err != nil {
				return err
			}
			return printWelcome(ctx, cmd, c, args[0])
		})
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in and record today's visit for the streak",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := passwordFromFlagOrPrompt(cmd)
		if err != nil {
			return err
		}
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			if err := c.Accounts.Login(ctx, args[0], password); err != nil {
				return err
			}
			return printWelcome(ctx, cmd, c, args[0])
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and discard any unfinished quiz",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			if err := c.Accounts.Logout(ctx); err != nil {
				return err
			}
			cmd.Println("Signed out.")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the signed-in account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			identity, err := currentIdentity(ctx, c)
			if err != nil {
				return err
			}
			if identity == "" {
				cmd.Println("Not signed in.")
				return nil
			}
			cmd.Println(identity)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(signupCmd, loginCmd, logoutCmd, whoamiCmd)

	for _, c := range []*cobra.Command{signupCmd, loginCmd} {
		c.Flags().StringP("password", "p", "", "account password (prompted when omitted)")
	}
}

func printWelcome(ctx context.Context, cmd *cobra.Command, c *app.Container, identity string) error {
	stats, err := c.Profile.BeginSession(ctx, identity)
	if err != nil {
		return err
	}
	cmd.Printf("Welcome, %s! Streak: %d day(s), XP: %d\n", strings.TrimSpace(identity), stats.Streak, stats.XP)
	return nil
}

func passwordFromFlagOrPrompt(cmd *cobra.Command) (string, error) {
	password, _ := cmd.Flags().GetString("password")
	if password != "" {
		return password, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	return readLine(bufio.NewReader(cmd.InOrStdin()))
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
