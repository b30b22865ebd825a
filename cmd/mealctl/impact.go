package main

import (
	"fmt"
	"io"
	"strconv"

	"mealmaker-backend/client"
	"mealmaker-backend/models"

	"github.com/spf13/cobra"
)

func newImpactCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "impact",
		Short: "Log meals and inspect waste, savings and badges",
	}
	cmd.AddCommand(
		newImpactLogCmd(opts),
		newImpactEstimateCmd(opts),
		newImpactSummaryCmd(opts),
		newImpactBadgesCmd(opts),
		newImpactGoalCmd(opts),
		newImpactHistoryCmd(opts),
		newImpactReverseCmd(opts),
	)
	return cmd
}

func newImpactLogCmd(opts *rootOptions) *cobra.Command {
	var source, sourceID string
	cmd := &cobra.Command{
		Use:   "log INGREDIENT...",
		Short: "Record a cooking event, e.g. `log tomato:3:piece rice:200:g`",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := opts.requireUser()
			if err != nil {
				return err
			}
			items, err := parseIngredients(args)
			if err != nil {
				return err
			}
			req := &models.ImpactCalculationRequest{
				UserID:      userID,
				Ingredients: items,
				Source:      models.ImpactSource(source),
			}
			if sourceID != "" {
				req.SourceID = &sourceID
			}

			resp, err := opts.client().CalculateImpact(cmd.Context(), req)
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), resp, func(w io.Writer) {
				fmt.Fprintln(w, resp.Message)
				printTotals(w, resp.Totals)
				g := resp.Gamification
				fmt.Fprintf(w, "Streak: %d day(s)", g.Streak)
				if g.IsNewStreakRecord {
					fmt.Fprint(w, " (new record!)")
				}
				fmt.Fprintln(w)
				printGoal(w, g.WeeklyProgress)
				for _, b := range g.NewBadges {
					fmt.Fprintf(w, "New badge: %s (%s)\n", b.Name, b.Tier)
				}
			})
		},
	}
	cmd.Flags().StringVar(&source, "source", string(models.ImpactSourceRecipe), "Event source: recipe, fridge_share or manual")
	cmd.Flags().StringVar(&sourceID, "source-id", "", "Recipe or listing id")
	return cmd
}

func newImpactEstimateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "estimate INGREDIENT...",
		Short: "Preview impact without recording anything",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := parseIngredients(args)
			if err != nil {
				return err
			}
			resp, err := opts.client().EstimateImpact(cmd.Context(), items)
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), resp, func(w io.Writer) {
				fmt.Fprintln(w, "NAME\tQTY\tUNIT\tKG\tUSD\tCO2\tKNOWN")
				for _, b := range resp.Breakdown {
					fmt.Fprintf(w, "%s\t%g\t%s\t%.3f\t%.2f\t%.3f\t%t\n", b.Name, b.Quantity, b.Unit, b.WeightKg, b.CostUSD, b.CO2Kg, b.FoundInLookup)
				}
				printTotals(w, resp.Totals)
			})
		},
	}
}

func newImpactSummaryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show this week, last week and all-time totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := opts.requireUser()
			if err != nil {
				return err
			}
			resp, err := opts.client().GetSummary(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), resp, func(w io.Writer) {
				fmt.Fprintln(w, "PERIOD\tKG\tUSD\tCO2\tEVENTS")
				for _, p := range []models.PeriodSummary{resp.ThisWeek, resp.LastWeek, resp.AllTime} {
					fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%d\n", p.Period, p.WasteKg, p.MoneyUSD, p.CO2Kg, p.EventCount)
				}
				if c := resp.Comparison.WasteKgChange; c != nil {
					fmt.Fprintf(w, "vs last week: %+.1f%%\n", *c)
				}
				printGoal(w, resp.WeeklyGoal)
			})
		},
	}
}

func newImpactBadgesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "badges",
		Short: "Show streak, earned badges and the next badge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := opts.requireUser()
			if err != nil {
				return err
			}
			resp, err := opts.client().GetGamification(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), resp, func(w io.Writer) {
				fmt.Fprintf(w, "Streak: %d (best %d)", resp.Streak.Current, resp.Streak.Longest)
				if resp.Streak.IsActiveToday {
					fmt.Fprint(w, ", active today")
				}
				fmt.Fprintln(w)
				if len(resp.Badges) == 0 {
					fmt.Fprintln(w, "No badges yet")
				}
				for _, b := range resp.Badges {
					fmt.Fprintf(w, "%-16s %-6s %s\n", b.Name, b.Tier, b.Description)
				}
				if next := resp.NextBadgeProgress; next != nil && next.Progress != nil {
					fmt.Fprintf(w, "Next: %s %.0f%%\n", next.Name, client.DisplayPercentage(*next.Progress))
				}
				printGoal(w, resp.WeeklyGoal)
			})
		},
	}
}

func newImpactGoalCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "goal KG",
		Short: "Set the weekly waste-prevention goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := opts.requireUser()
			if err != nil {
				return err
			}
			goal, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid goal %q: %w", args[0], err)
			}
			resp, err := opts.client().UpdateWeeklyGoal(cmd.Context(), userID, goal)
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), resp, func(w io.Writer) {
				fmt.Fprintln(w, resp.Message)
			})
		},
	}
}

func newImpactHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent impact events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := opts.requireUser()
			if err != nil {
				return err
			}
			resp, err := opts.client().GetHistory(cmd.Context(), userID, limit)
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), resp, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tDATE\tSOURCE\tKG\tUSD\tCO2\tSTATUS")
				for _, e := range resp.Events {
					fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.2f\t%.2f\t%s\n",
						e.ID, e.CreatedAt.Format("2006-01-02"), e.Source, e.TotalWasteKg, e.TotalCostUSD, e.TotalCO2Kg, e.Status)
				}
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum events to show")
	return cmd
}

func newImpactReverseCmd(opts *rootOptions) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "reverse EVENT_ID",
		Short: "Reverse or delete a logged event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := opts.requireUser()
			if err != nil {
				return err
			}
			event, err := opts.client().ReverseEvent(cmd.Context(), userID, args[0], models.EventStatus(status))
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), event, func(w io.Writer) {
				fmt.Fprintf(w, "Event %s is now %s\n", event.ID, event.Status)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", string(models.EventStatusReversed), "New status: reversed or deleted")
	return cmd
}

func printTotals(w io.Writer, t models.ImpactTotals) {
	fmt.Fprintf(w, "Saved %.2f kg of food, $%.2f, %.2f kg CO2\n", t.WastePreventedKg, t.MoneySavedUSD, t.CO2AvoidedKg)
}

func printGoal(w io.Writer, g models.WeeklyProgress) {
	fmt.Fprintf(w, "Weekly goal (from %s): %.2f / %.2f kg (%.0f%%)\n",
		g.WeekStart, g.CurrentKg, g.GoalKg, client.DisplayPercentage(g.Percentage))
}
