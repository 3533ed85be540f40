// Package config loads experiment configuration: defaults, then an optional
// YAML file, then MLCOMPARE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/mlcompare/mlcompare/internal/llm"
)

// Config holds all experiment configuration.
type Config struct {
	// Agreement filtering
	Threshold float64 `envconfig:"MLCOMPARE_THRESHOLD" yaml:"threshold"`
	KeyColumn int     `envconfig:"MLCOMPARE_KEY_COLUMN" yaml:"key_column"`

	// Labels are the candidate categories, in matrix column order.
	Labels []string `envconfig:"MLCOMPARE_LABELS" yaml:"labels"`

	// Questions are the survey questions, in reflection column order.
	// Questions contain commas, so they are only read from the file.
	Questions []string `ignored:"true" yaml:"questions"`

	Files Files `yaml:"files"`

	Classify ClassifyConfig `yaml:"classify"`

	// LLM carries provider settings; its environment overrides are applied
	// by llm.ResolveConfig when a provider is built.
	LLM llm.Config `ignored:"true" yaml:"llm"`
}

// Files names the default input and output paths.
type Files struct {
	Annotations string `envconfig:"MLCOMPARE_ANNOTATIONS" yaml:"annotations"`
	Dataset     string `envconfig:"MLCOMPARE_DATASET" yaml:"dataset"`
	Filtered    string `envconfig:"MLCOMPARE_FILTERED" yaml:"filtered"`
	Reflections string `envconfig:"MLCOMPARE_REFLECTIONS" yaml:"reflections"`
	Truth       string `envconfig:"MLCOMPARE_TRUTH" yaml:"truth"`
	RawPreds    string `envconfig:"MLCOMPARE_RAW_PREDS" yaml:"raw_preds"`
	Metrics     string `envconfig:"MLCOMPARE_METRICS" yaml:"metrics"`
}

// ClassifyConfig tunes LLM classification runs.
type ClassifyConfig struct {
	NumPreds         int       `envconfig:"MLCOMPARE_NUM_PREDS" yaml:"num_preds"`
	Temperatures     []float64 `envconfig:"MLCOMPARE_TEMPERATURES" yaml:"temperatures"`
	MaxTokens        int       `envconfig:"MLCOMPARE_MAX_TOKENS" yaml:"max_tokens"`
	StructuredOutput bool      `envconfig:"MLCOMPARE_STRUCTURED_OUTPUT" yaml:"structured_output"`
	SystemPrompt     string    `envconfig:"MLCOMPARE_SYSTEM_PROMPT" yaml:"system_prompt"`
}

// DefaultSystemPrompt is the persona given to the classifying model.
const DefaultSystemPrompt = "You are a software engineering professor who has just received " +
	"feedback responses from your students regarding their issues and/or experiences " +
	"with your class. You seek to help them with their issues and ensure their success " +
	"in your class."

// DefaultLabels are the four categories evaluated in the published experiment.
func DefaultLabels() []string {
	return []string{
		"Python and Coding",
		"Github",
		"Assignments",
		"Time Management and Motivation",
	}
}

// DefaultQuestions are the reflection survey questions.
func DefaultQuestions() []string {
	return []string{
		"How do you feel about the course so far?",
		"Explain why you selected the above choice(s).",
		"What was your biggest challenge(s) for these past modules?",
		"How did you overcome this challenge(s)? Or what steps did you start taking towards overcoming it?",
		"Do you have any current challenges in the course? If so, what are they?",
	}
}

// Default returns the configuration of the published experiment.
func Default() *Config {
	return &Config{
		Threshold: 0.70,
		KeyColumn: 4,
		Labels:    DefaultLabels(),
		Questions: DefaultQuestions(),
		Files: Files{
			Annotations: "annotations.csv",
			Dataset:     "dataset.csv",
			Filtered:    "filtered_dataset.csv",
			Reflections: "gpt_reflections.csv",
			Truth:       "gpt_test.csv",
			RawPreds:    "raw_gpt_preds.csv",
			Metrics:     "metrics.csv",
		},
		Classify: ClassifyConfig{
			NumPreds:     150,
			Temperatures: []float64{0.5},
			MaxTokens:    256,
			SystemPrompt: DefaultSystemPrompt,
		},
		LLM: llm.DefaultConfig(),
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// non-empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks value ranges. Provider credentials are checked only
// when a provider is built.
func (c *Config) Validate() error {
	var errs []error

	if c.Threshold < 0 || c.Threshold > 1 {
		errs = append(errs, fmt.Errorf("threshold must be in [0, 1], got %g", c.Threshold))
	}
	if c.KeyColumn < 0 {
		errs = append(errs, fmt.Errorf("key_column must be non-negative, got %d", c.KeyColumn))
	}
	if len(c.Labels) == 0 {
		errs = append(errs, errors.New("labels must not be empty"))
	}
	seen := make(map[string]bool, len(c.Labels))
	for _, l := range c.Labels {
		if l == "" {
			errs = append(errs, errors.New("labels must not contain an empty label"))
		}
		if seen[l] {
			errs = append(errs, fmt.Errorf("duplicate label %q", l))
		}
		seen[l] = true
	}
	if len(c.Questions) == 0 {
		errs = append(errs, errors.New("questions must not be empty"))
	}
	if c.Classify.NumPreds < 1 {
		errs = append(errs, fmt.Errorf("num_preds must be positive, got %d", c.Classify.NumPreds))
	}
	if len(c.Classify.Temperatures) == 0 {
		errs = append(errs, errors.New("temperatures must not be empty"))
	}
	for _, t := range c.Classify.Temperatures {
		if t < 0 || t > 2 {
			errs = append(errs, fmt.Errorf("temperature must be in [0, 2], got %g", t))
		}
	}

	return errors.Join(errs...)
}
