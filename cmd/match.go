package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/partscope/partscope/pkg/match"
	"github.com/partscope/partscope/pkg/storage"
)

// matchCmd implements: partscope match
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match retailer offers to catalog components",
	Long: `Assigns each unmatched retailer offer to at most one canonical component.
Exact model-token matches win outright; otherwise the best fuzzy name
similarity is used when it reaches the threshold. Re-running only ever adds
matches.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		threshold, _ := cmd.Flags().GetInt("threshold")
		if !cmd.Flags().Changed("threshold") {
			threshold = viper.GetInt("match.threshold")
		}
		if threshold < 0 || threshold > 100 {
			return fmt.Errorf("threshold must be between 0 and 100")
		}

		db, err := storage.Open(dbPath(cmd))
		if err != nil {
			return err
		}
		defer db.Close()

		report, err := match.New(threshold).Run(cmd.Context(), db, category)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "KIND\tSCORE\tRETAILER\tOFFER\tCOMPONENT")
		for _, d := range report.Decisions {
			score := "-"
			if d.Kind != match.KindExact {
				score = fmt.Sprintf("%d", d.Score)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.Kind, score, d.Retailer, d.OfferName, d.ComponentName)
		}
		w.Flush()

		fmt.Printf("\nDone! Matched: %d, Unmatched: %d (Threshold=%d)\n",
			report.Matched, report.Unmatched, threshold)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)
	matchCmd.Flags().StringP("category", "c", "", "Only match offers in this category (e.g. CPU)")
	matchCmd.Flags().IntP("threshold", "t", match.DefaultThreshold, "Minimum fuzzy match score (0-100)")
}
