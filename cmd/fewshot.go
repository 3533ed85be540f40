package cmd

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlcompare/mlcompare/internal/dataset"
	"github.com/mlcompare/mlcompare/internal/ui/theme"
)

var fewshotCmd = &cobra.Command{
	Use:   "fewshot",
	Short: "Draw a per-label few-shot training sample",
	Long: "Samples, with replacement, a fixed number of training rows for every " +
		"label among the rows where that label is set. The training CSV must " +
		"have a header with one 0/1 column per label.",
	RunE: func(cmd *cobra.Command, args []string) error {
		trainPath, _ := cmd.Flags().GetString("train")
		outPath, _ := cmd.Flags().GetString("out")
		perLabel, _ := cmd.Flags().GetInt("per-label")

		seed := uint64(time.Now().UnixNano())
		if cmd.Flags().Changed("seed") {
			seed, _ = cmd.Flags().GetUint64("seed")
		}

		train, err := readTable(trainPath)
		if err != nil {
			return err
		}

		rng := rand.New(rand.NewPCG(seed, seed))
		sample, err := dataset.SampleFewShot(train, cfg.Labels, perLabel, rng)
		if err != nil {
			return fmt.Errorf("sample %s: %w", trainPath, err)
		}
		slog.Info("sampled few-shot set", "labels", len(cfg.Labels), "per_label", perLabel, "seed", seed)

		if err := writeTable(outPath, sample); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %d rows (%d per label) written to %s\n",
			theme.Label.Render("Few-shot sample:"), len(sample.Rows), perLabel, outPath)
		fmt.Fprintln(out, theme.Hint.Render(fmt.Sprintf("seed %d", seed)))
		return nil
	},
}

func init() {
	fewshotCmd.Flags().String("train", "", "Training CSV with a header and one 0/1 column per label")
	fewshotCmd.Flags().String("out", "fewshot_train.csv", "Where to write the sample")
	fewshotCmd.Flags().Int("per-label", 8, "Rows to draw for each label")
	fewshotCmd.Flags().Uint64("seed", 0, "Random seed (defaults to the current time)")
	_ = fewshotCmd.MarkFlagRequired("train")
}
