package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mlcompare/mlcompare/internal/store"
	"github.com/mlcompare/mlcompare/internal/ui/theme"
)

var trialsCmd = &cobra.Command{
	Use:   "trials",
	Short: "Inspect recorded classification trials",
}

var trialsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent trials, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		trials, err := s.TrialRepo().List(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query trials: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(trials) == 0 {
			fmt.Fprintln(out, "No trials recorded yet.")
			return nil
		}

		rows := make([][]string, len(trials))
		for i, t := range trials {
			rows[i] = []string{
				strconv.Itoa(t.ID),
				t.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				t.RunID.String(),
				t.Source,
				truncate(t.Model, 28),
				strconv.FormatFloat(t.Temperature, 'g', -1, 64),
				strconv.Itoa(t.Samples),
				fmt.Sprintf("%.4f", t.Accuracy),
			}
		}
		fmt.Fprintln(out, theme.Table(
			[]string{"ID", "Timestamp", "Run", "Source", "Model", "Temp", "N", "Accuracy"},
			rows,
		).Render())
		return nil
	},
}

func init() {
	trialsListCmd.Flags().IntP("limit", "n", 20, "Number of trials to show")
	trialsCmd.AddCommand(trialsListCmd)
}
