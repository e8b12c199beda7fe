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
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eslsoft/neurostudy/internal/adapter/quizfile"
	"github.com/eslsoft/neurostudy/internal/app"
	"github.com/eslsoft/neurostudy/internal/usecase"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Take quizzes and earn XP",
}

var quizStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Generate a quiz from the last processed document and play it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			identity, err := currentIdentity(ctx, c)
			if err != nil {
				return err
			}
			session, err := c.Study.StartQuiz(ctx, identity)
			if err != nil {
				return err
			}
			return runQuiz(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), session)
		})
	},
}

var quizResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Continue the unfinished quiz",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			identity, err := currentIdentity(ctx, c)
			if err != nil {
				return err
			}
			session, err := c.Quizzes.Resume(ctx, identity)
			if err != nil {
				return err
			}
			return runQuiz(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), session)
		})
	},
}

var quizPlayCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a prepared quiz from a YAML or JSON file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		file, err := quizfile.Load(path)
		if err != nil {
			return err
		}
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			identity, err := currentIdentity(ctx, c)
			if err != nil {
				return err
			}
			session, err := c.Quizzes.Start(ctx, identity, file.Questions, file.Summary)
			if err != nil {
				return err
			}
			return runQuiz(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), session)
		})
	},
}

func init() {
	rootCmd.AddCommand(quizCmd)
	quizCmd.AddCommand(quizStartCmd, quizResumeCmd, quizPlayCmd)

	quizPlayCmd.Flags().StringP("file", "f", "", "quiz file (.yaml, .yml or .json)")
	cobra.CheckErr(quizPlayCmd.MarkFlagRequired("file"))
}

// runQuiz drives the session from line-based input until it completes or
// the player quits. Quitting keeps the checkpoint.
func runQuiz(ctx context.Context, in io.Reader, out io.Writer, session *usecase.QuizSession) error {
	r := bufio.NewReader(in)
	for session.State() != usecase.QuizCompleted {
		q, _ := session.Current()
		fmt.Fprintf(out, "\nQuestion %d/%d: %s\n", session.CurrentIndex()+1, session.Total(), q.Question)
		for i, opt := range q.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
		}

		option, ok, err := promptOption(r, out, q.Options)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Progress saved. Run 'neurostudy quiz resume' to continue.")
			return nil
		}
		if err := session.Select(option); err != nil {
			return err
		}
		correct, err := session.CheckAnswer(ctx)
		if err != nil {
			return err
		}
		if correct {
			fmt.Fprintln(out, "Correct!")
		} else {
			fmt.Fprintf(out, "Incorrect. The answer is %s.\n", q.CorrectAnswer)
		}

		award, err := session.Advance(ctx)
		if err != nil {
			return err
		}
		if award != nil {
			printAward(out, session, award)
		}
	}
	return nil
}

// promptOption reads until a valid option number is entered. It reports
// false when the player types q or input ends.
func promptOption(r *bufio.Reader, out io.Writer, options []string) (string, bool, error) {
	for {
		fmt.Fprintf(out, "Answer [1-%d, q to quit]: ", len(options))
		line, err := readLine(r)
		if errors.Is(err, io.EOF) {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		line = strings.TrimSpace(line)
		if strings.EqualFold(line, "q") {
			return "", false, nil
		}
		n, convErr := strconv.Atoi(line)
		if convErr == nil && n >= 1 && n <= len(options) {
			return options[n-1], true, nil
		}
		fmt.Fprintf(out, "Enter a number between 1 and %d.\n", len(options))
	}
}

func printAward(out io.Writer, session *usecase.QuizSession, award *usecase.XPAward) {
	fmt.Fprintf(out, "\nQuiz complete! Score: %d/%d  +%d XP\n", session.Score(), session.Total(), award.XPEarned)
	for _, a := range award.Unlocked {
		fmt.Fprintf(out, "Achievement unlocked: %s (+%d XP)\n", a.Title, a.XPReward)
	}
	if award.Stats != nil {
		fmt.Fprintf(out, "Total XP: %d\n", award.Stats.XP)
	}
}
