package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mlcompare/mlcompare/internal/metrics"
	"github.com/mlcompare/mlcompare/internal/store"
	"github.com/mlcompare/mlcompare/internal/ui/theme"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score an external prediction matrix against human labels",
	Long: "Scores a 0/1 prediction matrix, for example raw predictions from a " +
		"fine-tuned model, with the same per-label confusion counts and accuracy " +
		"as the classify command.",
	RunE: func(cmd *cobra.Command, args []string) error {
		predPath, _ := cmd.Flags().GetString("pred")
		truthPath := stringFlag(cmd, "truth", cfg.Files.Truth)
		metricsOut := stringFlag(cmd, "metrics-out", cfg.Files.Metrics)
		model, _ := cmd.Flags().GetString("model")
		save, _ := cmd.Flags().GetBool("save")

		numPreds := cfg.Classify.NumPreds
		if cmd.Flags().Changed("num-preds") {
			numPreds, _ = cmd.Flags().GetInt("num-preds")
		}
		if numPreds < 1 {
			return fmt.Errorf("--num-preds must be positive, got %d", numPreds)
		}

		pred, err := readMatrix(predPath)
		if err != nil {
			return err
		}
		truth, err := readMatrix(truthPath)
		if err != nil {
			return err
		}

		want, got, err := metrics.Align(truth, pred, numPreds, len(cfg.Labels))
		if err != nil {
			return fmt.Errorf("evaluate %s: %w", predPath, err)
		}
		res, err := metrics.Evaluate(want, got, cfg.Labels)
		if err != nil {
			return fmt.Errorf("evaluate %s: %w", predPath, err)
		}
		slog.Info("evaluated predictions", "file", predPath, "samples", res.Samples, "accuracy", res.Accuracy)

		if err := writeRows(metricsOut, res.Rows()); err != nil {
			return err
		}

		if save {
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := saveTrial(cmd.Context(), s.TrialRepo(), uuid.New(), store.SourceImport, model, 0, res); err != nil {
				return fmt.Errorf("save trial: %w", err)
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, theme.Title.Render("Evaluation"))
		printResult(out, res)
		fmt.Fprintln(out, theme.Hint.Render("Metrics written to "+metricsOut))
		return nil
	},
}

func init() {
	evaluateCmd.Flags().String("pred", "", "Prediction matrix (0/1 CSV, one column per label)")
	evaluateCmd.Flags().String("truth", "", "Human label matrix (0/1 CSV, one column per label)")
	evaluateCmd.Flags().String("metrics-out", "", "Where to write the metrics")
	evaluateCmd.Flags().Int("num-preds", 150, "Number of leading rows to score")
	evaluateCmd.Flags().String("model", "setfit", "Model name recorded with --save")
	evaluateCmd.Flags().Bool("save", false, "Record the result in the trials table")
	_ = evaluateCmd.MarkFlagRequired("pred")
}

// printResult renders the per-label confusion counts and overall accuracy.
func printResult(w io.Writer, res *metrics.Result) {
	rows := make([][]string, len(res.Labels))
	for i, c := range res.Labels {
		rows[i] = []string{
			c.Label,
			strconv.Itoa(c.TN),
			strconv.Itoa(c.FP),
			strconv.Itoa(c.FN),
			strconv.Itoa(c.TP),
			fmt.Sprintf("%.4f", c.Accuracy()),
		}
	}
	fmt.Fprintln(w, theme.Table([]string{"Label", "TN", "FP", "FN", "TP", "Accuracy"}, rows).Render())
	fmt.Fprintf(w, "%s %.4f over %d samples\n", theme.Label.Render("Accuracy:"), res.Accuracy, res.Samples)
}
