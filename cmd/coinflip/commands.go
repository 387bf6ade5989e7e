package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/j-veylop/coinflip-tui/internal/flip"
	"github.com/j-veylop/coinflip-tui/internal/models"
	"github.com/j-veylop/coinflip-tui/internal/purchase"
	"github.com/j-veylop/coinflip-tui/internal/services"
	"github.com/j-veylop/coinflip-tui/internal/ui/components"
	"github.com/j-veylop/coinflip-tui/internal/version"
)

const storeTimeout = 30 * time.Second

// withManager runs fn against a started service manager.
func withManager(cmd *cobra.Command, fn func(ctx context.Context, mgr *services.Manager) error) error {
	mgr, _, cleanup, err := openManager()
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(cmd.Context(), mgr)
}

// RunFlipCommand flips once from the command line.
func RunFlipCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "flip [question]",
		Short: "Flip the coin once",
		Example: `  coinflip flip
  coinflip flip "Should I order pizza?"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args, " "))
			return withManager(cmd, func(ctx context.Context, mgr *services.Manager) error {
				res, err := mgr.Flip(ctx, question)
				switch {
				case errors.Is(err, flip.ErrTrialExpired):
					return fmt.Errorf("%w (run `%s purchase yearly` to upgrade)", err, version.Name)
				case errors.Is(err, flip.ErrDailyLimitReached):
					return fmt.Errorf("%w: %d free flips used today, come back tomorrow or go Pro", err, res.Usage.DailyLimit)
				case err != nil:
					return err
				}

				out := cmd.OutOrStdout()
				if question != "" {
					fmt.Fprintf(out, "%s\n", question)
				}
				fmt.Fprintf(out, "%s\n", res.Record.Result.Title())
				writeRemaining(out, res.Usage)
				return nil
			})
		},
	}
}

func writeRemaining(w io.Writer, u models.UsageStats) {
	switch {
	case u.Unlimited():
		fmt.Fprintf(w, "Pro: unlimited flips (%d today)\n", u.DailyFlips)
	case u.RemainingFlips == 1:
		fmt.Fprintln(w, "1 free flip left today")
	default:
		fmt.Fprintf(w, "%d free flips left today\n", u.RemainingFlips)
	}
}

// RunStatusCommand prints the trial and quota state.
func RunStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show plan, trial and today's flips",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, func(_ context.Context, mgr *services.Manager) error {
				mgr.Refresh()
				snap := mgr.Snapshot()
				out := cmd.OutOrStdout()

				fmt.Fprintf(out, "Plan:        %s\n", snap.Entitlement.Tier())
				if !snap.Entitlement.IsPro {
					fmt.Fprintf(out, "Trial:       %s\n", components.TrialBadgeText(snap.Entitlement))
				}
				if snap.Usage.Unlimited() {
					fmt.Fprintf(out, "Today:       %d flips (unlimited)\n", snap.Usage.DailyFlips)
				} else {
					fmt.Fprintf(out, "Today:       %d/%d flips, %d left\n",
						snap.Usage.DailyFlips, snap.Usage.DailyLimit, snap.Usage.RemainingFlips)
				}
				fmt.Fprintf(out, "Total:       %d flips (%d heads, %d tails)\n",
					snap.Usage.TotalFlips, snap.Usage.HeadsCount, snap.Usage.TailsCount)
				return nil
			})
		},
	}
}

// historyOutput is the --json shape of the history command.
type historyOutput struct {
	Range         string              `json:"range"`
	Flips         []models.FlipRecord `json:"flips"`
	TotalFlips    int                 `json:"totalFlips"`
	Heads         int                 `json:"heads"`
	Tails         int                 `json:"tails"`
	LongestStreak int                 `json:"longestStreak"`
	StreakOutcome models.Outcome      `json:"streakOutcome,omitempty"`
}

func parseRange(s string) (models.TimeRange, error) {
	switch strings.ToLower(s) {
	case "7d", "7", "week":
		return models.TimeRange7Days, nil
	case "30d", "30", "month":
		return models.TimeRange30Days, nil
	case "all":
		return models.TimeRangeAllTime, nil
	default:
		return 0, fmt.Errorf("invalid range %q (use 7d, 30d or all)", s)
	}
}

// RunHistoryCommand lists the visible flips and range statistics.
func RunHistoryCommand() *cobra.Command {
	var (
		asJSON    bool
		rangeFlag string
	)

	command := &cobra.Command{
		Use:   "history",
		Short: "List recent flips",
		Args:  cobra.NoArgs,
	}

	command.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	command.Flags().StringVar(&rangeFlag, "range", "7d", "statistics range: 7d, 30d or all")

	command.RunE = func(cmd *cobra.Command, args []string) error {
		tr, err := parseRange(rangeFlag)
		if err != nil {
			return err
		}

		return withManager(cmd, func(ctx context.Context, mgr *services.Manager) error {
			stats, err := mgr.History(ctx, tr)
			if err != nil {
				return fmt.Errorf("failed to load history: %w", err)
			}
			flips := mgr.Snapshot().Flips
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(historyOutput{
					Range:         tr.String(),
					Flips:         flips,
					TotalFlips:    stats.TotalFlips,
					Heads:         stats.Heads,
					Tails:         stats.Tails,
					LongestStreak: stats.LongestStreak,
					StreakOutcome: stats.StreakOutcome,
				})
			}

			if len(flips) == 0 {
				fmt.Fprintln(out, "No flips yet.")
				return nil
			}
			for _, f := range flips {
				line := fmt.Sprintf("%s  %-5s", f.Timestamp.Format("2006-01-02 15:04"), f.Result.Title())
				if f.Question != "" {
					line += "  " + f.Question
				}
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "\n%s: %d flips, %d heads, %d tails", tr, stats.TotalFlips, stats.Heads, stats.Tails)
			if stats.LongestStreak > 0 {
				fmt.Fprintf(out, ", longest streak %d %s", stats.LongestStreak, stats.StreakOutcome)
			}
			fmt.Fprintln(out)
			return nil
		})
	}

	return command
}

// RunPurchaseCommand buys a plan.
func RunPurchaseCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "purchase <plan>",
		Short:     "Buy Pro (yearly, monthly or lifetime)",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"yearly", "monthly", "lifetime"},
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := purchase.LookupPlan(args[0])
			if err != nil {
				return err
			}
			return withManager(cmd, func(ctx context.Context, mgr *services.Manager) error {
				ctx, cancel := context.WithTimeout(ctx, storeTimeout)
				defer cancel()

				if err := mgr.Purchase(ctx, plan.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Purchased %s (%s %s). Unlimited flips unlocked.\n", plan.Name, plan.Price, plan.Period)
				return nil
			})
		},
	}
}

// RunRestoreCommand restores a previous purchase.
func RunRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Restore a previous purchase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, func(ctx context.Context, mgr *services.Manager) error {
				ctx, cancel := context.WithTimeout(ctx, storeTimeout)
				defer cancel()

				err := mgr.Restore(ctx)
				if errors.Is(err, purchase.ErrNotConfirmed) {
					fmt.Fprintln(cmd.OutOrStdout(), "No previous purchase found.")
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Purchase restored. Unlimited flips unlocked.")
				return nil
			})
		},
	}
}

// RunClearHistoryCommand erases the flip log and counters.
func RunClearHistoryCommand() *cobra.Command {
	var yes bool

	command := &cobra.Command{
		Use:   "clear-history",
		Short: "Erase every recorded flip and counter",
		Args:  cobra.NoArgs,
	}
	command.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	command.RunE = func(cmd *cobra.Command, args []string) error {
		if !yes {
			return errors.New("refusing to clear history without --yes")
		}
		return withManager(cmd, func(ctx context.Context, mgr *services.Manager) error {
			if err := mgr.ClearHistory(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
			return nil
		})
	}

	return command
}

// RunDevCommand groups developer hooks. They require DEV_TOOLS=true.
func RunDevCommand() *cobra.Command {
	command := &cobra.Command{
		Use:    "dev",
		Short:  "Developer tools",
		Hidden: true,
	}

	command.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset the trial, today's flips and Pro status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, func(ctx context.Context, mgr *services.Manager) error {
				if err := mgr.DevReset(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Trial reset.")
				return nil
			})
		},
	})

	return command
}

// RunVersionCommand prints build information.
func RunVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	}
}
