package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mlcompare/mlcompare/internal/agreement"
	"github.com/mlcompare/mlcompare/internal/dataset"
	"github.com/mlcompare/mlcompare/internal/ui/theme"
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Keep dataset rows whose annotators agree",
	Long: "Scores every annotated reflection with MASI agreement across its " +
		"annotators and writes the dataset rows whose score meets the threshold.",
	RunE: func(cmd *cobra.Command, args []string) error {
		labelSets := stringFlag(cmd, "label-sets", cfg.Files.Annotations)
		datasetPath := stringFlag(cmd, "dataset", cfg.Files.Dataset)
		outPath := stringFlag(cmd, "out", cfg.Files.Filtered)
		scoresOut, _ := cmd.Flags().GetString("scores-out")
		skipInvalid, _ := cmd.Flags().GetBool("skip-invalid")
		hasHeader, _ := cmd.Flags().GetBool("header")

		threshold := cfg.Threshold
		if cmd.Flags().Changed("threshold") {
			threshold, _ = cmd.Flags().GetFloat64("threshold")
		}
		keyColumn := cfg.KeyColumn
		if cmd.Flags().Changed("key-column") {
			keyColumn, _ = cmd.Flags().GetInt("key-column")
		}
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("threshold must be in [0, 1], got %g", threshold)
		}

		opts := dataset.DefaultAnnotationOptions()
		opts.HasHeader = hasHeader
		annotations, err := readAnnotations(labelSets, opts)
		if err != nil {
			return err
		}

		scores, err := agreement.ScoreAll(annotations)
		if err != nil {
			if !skipInvalid {
				return fmt.Errorf("score annotations (use --skip-invalid to continue past bad records): %w", err)
			}
			for _, e := range splitErrors(err) {
				slog.Warn("skipping annotation", "error", e)
			}
		}

		sum := agreement.Summarize(scores, threshold)
		slog.Info("scored annotations",
			"records", len(annotations), "scored", sum.Scored,
			"passing", sum.Passing, "threshold", threshold)

		table, err := readTable(datasetPath)
		if err != nil {
			return err
		}
		filtered, err := dataset.FilterTable(table, keyColumn, scores, threshold)
		if err != nil {
			return fmt.Errorf("filter %s: %w", datasetPath, err)
		}
		if err := writeTable(outPath, filtered); err != nil {
			return err
		}

		if scoresOut != "" {
			if err := writeScores(scoresOut, annotations, scores); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, theme.Title.Render("Agreement filter"))
		fmt.Fprintf(out, "%s %d of %d identifiers meet %.2f\n",
			theme.Label.Render("Passing:"), sum.Passing, sum.Scored, threshold)
		fmt.Fprintf(out, "%s %d of %d rows written to %s\n",
			theme.Label.Render("Dataset:"), len(filtered.Rows), len(table.Rows), outPath)
		var passing []float64
		for i, v := range sum.Distinct {
			if v >= threshold {
				passing = sum.Distinct[i:]
				break
			}
		}
		slog.Debug("agreement values", "distinct", sum.Distinct, "passing", passing)
		fmt.Fprintf(out, "%s %s\n", theme.Label.Render("Agreement values:"), joinScores(sum.Distinct))
		fmt.Fprintf(out, "%s %s\n", theme.Label.Render("Passing values:"), joinScores(passing))
		return nil
	},
}

func init() {
	filterCmd.Flags().String("label-sets", "", "Annotation CSV: identifier, serialized label-set group")
	filterCmd.Flags().String("dataset", "", "Full dataset CSV with a header row")
	filterCmd.Flags().String("out", "", "Where to write the filtered dataset")
	filterCmd.Flags().String("scores-out", "", "Optionally write per-identifier agreement scores")
	filterCmd.Flags().Float64("threshold", 0.70, "Minimum agreement, inclusive")
	filterCmd.Flags().Int("key-column", 4, "Dataset column holding the identifier (0-based)")
	filterCmd.Flags().Bool("skip-invalid", false, "Log and skip malformed or single-annotator records")
	filterCmd.Flags().Bool("header", false, "The annotation CSV has a header row")
}

// joinScores renders agreement values to four decimals, or "none".
func joinScores(vals []float64) string {
	if len(vals) == 0 {
		return "none"
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'f', 4, 64)
	}
	return strings.Join(parts, ", ")
}

// splitErrors flattens an errors.Join result.
func splitErrors(err error) []error {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}

func readAnnotations(path string, opts dataset.AnnotationOptions) ([]agreement.Annotation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open annotations: %w", err)
	}
	defer f.Close()

	annotations, err := dataset.ReadAnnotations(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return annotations, nil
}

func readTable(path string) (*dataset.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	t, err := dataset.ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func writeTable(path string, t *dataset.Table) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	if err := dataset.WriteTable(f, t); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func writeScores(path string, annotations []agreement.Annotation, scores agreement.Scores) error {
	seen := make(map[string]bool, len(annotations))
	var ids []string
	for _, a := range annotations {
		if !seen[a.ID] {
			seen[a.ID] = true
			ids = append(ids, a.ID)
		}
	}

	f, err := createFile(path)
	if err != nil {
		return err
	}
	if err := dataset.WriteScores(f, ids, scores); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
