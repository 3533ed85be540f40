package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/mlcompare/mlcompare/internal/classify"
	"github.com/mlcompare/mlcompare/internal/dataset"
	"github.com/mlcompare/mlcompare/internal/llm"
	"github.com/mlcompare/mlcompare/internal/metrics"
	"github.com/mlcompare/mlcompare/internal/store"
	"github.com/mlcompare/mlcompare/internal/ui/theme"
)

// newProvider builds the classification provider; tests swap it out.
var newProvider = llm.NewProvider

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Label reflections with an LLM and score them against human labels",
	Long: "Prompts the configured LLM for the labels of each reflection, once per " +
		"temperature, scores every trial against the human label matrix and writes " +
		"the raw predictions and metrics of the best trial.",
	RunE: func(cmd *cobra.Command, args []string) error {
		reflectionsPath := stringFlag(cmd, "reflections", cfg.Files.Reflections)
		truthPath := stringFlag(cmd, "truth", cfg.Files.Truth)
		rawOut := stringFlag(cmd, "raw-out", cfg.Files.RawPreds)
		metricsOut := stringFlag(cmd, "metrics-out", cfg.Files.Metrics)
		noStore, _ := cmd.Flags().GetBool("no-store")

		numPreds := cfg.Classify.NumPreds
		if cmd.Flags().Changed("num-preds") {
			numPreds, _ = cmd.Flags().GetInt("num-preds")
		}
		temperatures := cfg.Classify.Temperatures
		if cmd.Flags().Changed("temperature") {
			temperatures, _ = cmd.Flags().GetFloat64Slice("temperature")
		}
		structured := cfg.Classify.StructuredOutput
		if cmd.Flags().Changed("structured") {
			structured, _ = cmd.Flags().GetBool("structured")
		}

		reflections, err := readReflections(reflectionsPath, cfg.Questions)
		if err != nil {
			return err
		}
		truth, err := readMatrix(truthPath)
		if err != nil {
			return err
		}

		llmCfg, err := llm.ResolveConfig(cfg.LLM)
		if err != nil {
			return fmt.Errorf("LLM configuration: %w", err)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		runID := uuid.New()
		ctx = llm.WithRun(ctx, runID.String())

		var (
			eventRepo store.EventRepo
			trialRepo store.TrialRepo
		)
		if !noStore {
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			eventRepo = s.EventRepo()
			trialRepo = s.TrialRepo()
		}

		provider, err := newProvider(ctx, llmCfg, eventRepo)
		if err != nil {
			return err
		}

		c, err := classify.New(provider, cfg.Labels, classify.Options{
			SystemPrompt: cfg.Classify.SystemPrompt,
			MaxTokens:    cfg.Classify.MaxTokens,
			Timeout:      llmCfg.Timeout,
			Structured:   structured,
		})
		if err != nil {
			return err
		}

		slog.Info("classifying reflections",
			"run_id", runID, "provider", llmCfg.Provider, "model", provider.ModelID(),
			"reflections", len(reflections), "num_preds", numPreds,
			"temperatures", temperatures)

		best, trials, err := c.Sweep(ctx, reflections, truth, numPreds, temperatures)
		if err != nil {
			return err
		}

		if trialRepo != nil {
			for _, t := range trials {
				if err := saveTrial(ctx, trialRepo, runID, store.SourceLLM, provider.ModelID(), t.Temperature, t.Result); err != nil {
					return err
				}
			}
			slog.Info("trials recorded", "run_id", runID, "count", len(trials))
		}

		if err := writeMatrix(rawOut, classify.Matrix(best.Predictions, len(cfg.Labels))); err != nil {
			return err
		}
		if err := writeRows(metricsOut, best.Result.Rows()); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		rows := make([][]string, len(trials))
		for i, t := range trials {
			rows[i] = []string{
				strconv.FormatFloat(t.Temperature, 'g', -1, 64),
				strconv.Itoa(t.Result.Samples),
				fmt.Sprintf("%.4f", t.Result.Accuracy),
			}
		}
		fmt.Fprintln(out, theme.Title.Render("Classification trials"))
		fmt.Fprintln(out, theme.Table([]string{"Temperature", "Samples", "Accuracy"}, rows).Render())
		printResult(out, best.Result)
		fmt.Fprintf(out, "%s %g\n", theme.Label.Render("Optimal temperature:"), best.Temperature)
		fmt.Fprintln(out, theme.Hint.Render(fmt.Sprintf("Predictions written to %s, metrics to %s", rawOut, metricsOut)))
		if !noStore {
			fmt.Fprintln(out, theme.Hint.Render("Inspect the calls with: mlcompare llm list --run "+runID.String()))
		}
		return nil
	},
}

func init() {
	classifyCmd.Flags().String("reflections", "", "Headerless CSV of survey answers, one reflection per row")
	classifyCmd.Flags().String("truth", "", "Human label matrix (0/1 CSV, one column per label)")
	classifyCmd.Flags().String("raw-out", "", "Where to write the best trial's prediction matrix")
	classifyCmd.Flags().String("metrics-out", "", "Where to write the best trial's metrics")
	classifyCmd.Flags().Int("num-preds", 150, "Number of reflections to classify")
	classifyCmd.Flags().Float64Slice("temperature", []float64{0.5}, "Sampling temperatures to try")
	classifyCmd.Flags().Bool("structured", false, "Request JSON output constrained to the label list")
	classifyCmd.Flags().Bool("no-store", false, "Do not record LLM calls and trials in the database")
}

// saveTrial records one scored run.
func saveTrial(ctx context.Context, repo store.TrialRepo, runID uuid.UUID, source, model string, temperature float64, res *metrics.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}
	return repo.Save(ctx, &store.Trial{
		RunID:       runID,
		Source:      source,
		Model:       model,
		Temperature: temperature,
		Samples:     res.Samples,
		Accuracy:    res.Accuracy,
		Metrics:     data,
	})
}

func readReflections(path string, questions []string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reflections: %w", err)
	}
	defer f.Close()

	refs, err := dataset.ReadReflections(f, questions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return refs, nil
}

func readMatrix(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open label matrix: %w", err)
	}
	defer f.Close()

	m, err := dataset.ReadMatrix(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func writeMatrix(path string, m mat.Matrix) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	if err := dataset.WriteMatrix(f, m); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func writeRows(path string, rows [][]string) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	if err := dataset.WriteRows(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
