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
	"strings"

	"github.com/spf13/cobra"

	"github.com/eslsoft/neurostudy/internal/app"
	"github.com/eslsoft/neurostudy/internal/entity"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show XP, streak, usage and recent quiz history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			identity, err := currentIdentity(ctx, c)
			if err != nil {
				return err
			}
			stats, err := c.Profile.Stats(ctx, identity)
			if err != nil {
				return err
			}
			printStats(cmd, identity, stats, c.Config.Study.MaxFreeUploads)
			return nil
		})
	},
}

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List achievements and which ones are unlocked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			identity, err := currentIdentity(ctx, c)
			if err != nil {
				return err
			}
			stats, err := c.Profile.Stats(ctx, identity)
			if err != nil {
				return err
			}
			for _, a := range entity.Achievements() {
				mark := " "
				if stats.HasAchievement(a.ID) {
					mark = "x"
				}
				cmd.Printf("[%s] %-13s %-45s +%d XP\n", mark, a.Title, a.Description, a.XPReward)
			}
			return nil
		})
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Rank local accounts by XP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			identity, err := currentIdentity(ctx, c)
			if err != nil {
				return err
			}
			entries, err := c.Leaderboard.Top(ctx, identity)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				cmd.Println("No accounts yet.")
				return nil
			}
			for _, e := range entries {
				you := ""
				if e.IsCurrentUser {
					you = " (you)"
				}
				cmd.Printf("%2d. %-20s %6d XP%s\n", e.Rank, e.Name, e.XP, you)
			}
			return nil
		})
	},
}

var languageCmd = &cobra.Command{
	Use:       "language <en|si>",
	Short:     "Set the language summaries and quizzes are generated in",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(entity.LanguageEnglish), string(entity.LanguageSinhala)},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			identity, err := requireIdentity(ctx, c)
			if err != nil {
				return err
			}
			stats, err := c.Profile.SetLanguage(ctx, identity, entity.ParseLanguage(args[0]))
			if err != nil {
				return err
			}
			cmd.Printf("Language set to %s.\n", stats.PreferredLanguage)
			return nil
		})
	},
}

var proCmd = &cobra.Command{
	Use:   "pro",
	Short: "Toggle the Pro subscription",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			identity, err := requireIdentity(ctx, c)
			if err != nil {
				return err
			}
			stats, err := c.Profile.TogglePro(ctx, identity)
			if err != nil {
				return err
			}
			if stats.IsPro {
				cmd.Println("Pro enabled: unlimited uploads and Sinhala content.")
			} else {
				cmd.Println("Pro disabled.")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd, achievementsCmd, leaderboardCmd, languageCmd, proCmd)
}

func printStats(cmd *cobra.Command, identity string, stats *entity.UserStats, maxFreeUploads int) {
	name := identity
	if name == "" {
		name = "guest (progress is not saved)"
	}
	cmd.Printf("Account:   %s\n", name)
	cmd.Printf("XP:        %d\n", stats.XP)
	cmd.Printf("Streak:    %d day(s)\n", stats.Streak)
	cmd.Printf("Quizzes:   %d\n", stats.QuizzesCompleted)
	cmd.Printf("Language:  %s\n", stats.PreferredLanguage.CodeOrDefault())
	if stats.IsPro {
		cmd.Println("Plan:      Pro")
	} else {
		cmd.Printf("Plan:      Free (%d/%d uploads used)\n", stats.UsageCount, maxFreeUploads)
	}
	if len(stats.Achievements) > 0 {
		cmd.Printf("Unlocked:  %s\n", strings.Join(stats.Achievements, ", "))
	}
	if len(stats.History) == 0 {
		return
	}
	cmd.Println("Recent quizzes:")
	for _, h := range stats.History {
		cmd.Printf("  %s  %d/%d  +%d XP\n", h.Date.Local().Format("2006-01-02 15:04"), h.Score, h.TotalQuestions, h.XPEarned)
	}
}
