// Package classify labels course reflections with a hosted LLM and scores
// the predictions against human labels.
package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/mlcompare/mlcompare/internal/llm"
)

// Purpose tags every classification request in the LLM event log.
const Purpose = "reflection-classify"

// Options tunes the requests a Classifier sends.
type Options struct {
	SystemPrompt string
	MaxTokens    int

	// Timeout bounds each reflection's request, retries included.
	// Zero means no limit beyond ctx.
	Timeout time.Duration

	// Structured requests JSON output constrained to the label list.
	Structured bool
}

// Prediction is the model's answer for one reflection.
type Prediction struct {
	Raw    string    // response text as returned by the model
	Vector []float64 // 0/1 per label, in label order
	Labels []string  // labels set in Vector
}

// Classifier prompts an LLM to pick labels for reflections.
type Classifier struct {
	provider llm.Provider
	labels   []string
	opts     Options
	schema   *llm.Schema
	logger   *slog.Logger
}

// New creates a Classifier choosing among labels.
func New(provider llm.Provider, labels []string, opts Options) (*Classifier, error) {
	if provider == nil {
		return nil, errors.New("classify: nil provider")
	}
	if len(labels) == 0 {
		return nil, errors.New("classify: no labels")
	}
	c := &Classifier{
		provider: provider,
		labels:   append([]string(nil), labels...),
		opts:     opts,
		logger:   slog.Default().With("component", "classify"),
	}
	if opts.Structured {
		c.schema = labelSchema(c.labels)
	}
	return c, nil
}

// Labels returns the candidate labels in vector order.
func (c *Classifier) Labels() []string {
	return append([]string(nil), c.labels...)
}

type labelsOutput struct {
	Labels []string `json:"labels"`
}

// Classify asks the model for the labels of one reflection.
func (c *Classifier) Classify(ctx context.Context, text string, temperature float64) (*Prediction, error) {
	ctx = llm.WithPurpose(ctx, Purpose)
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	userMsg, err := buildUserMessage(text, c.labels)
	if err != nil {
		return nil, fmt.Errorf("build classification prompt: %w", err)
	}

	resp, err := c.provider.Generate(ctx, llm.Request{
		System:      c.opts.SystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userMsg}},
		Schema:      c.schema,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM classification failed: %w", err)
	}

	raw := string(resp.Content)
	pred := &Prediction{Raw: raw}

	var out labelsOutput
	if c.schema != nil && json.Unmarshal(resp.Content, &out) == nil {
		pred.Vector = fromLabels(out.Labels, c.labels)
	} else {
		pred.Vector = Encode(raw, c.labels)
	}
	for i, v := range pred.Vector {
		if v == 1 {
			pred.Labels = append(pred.Labels, c.labels[i])
		}
	}
	return pred, nil
}

// ClassifyAll classifies the first limit reflections in order. A limit of
// zero or more than len(reflections) classifies all of them. The first
// failure aborts the run.
func (c *Classifier) ClassifyAll(ctx context.Context, reflections []string, limit int, temperature float64) ([]*Prediction, error) {
	n := len(reflections)
	if limit > 0 && limit < n {
		n = limit
	}

	preds := make([]*Prediction, 0, n)
	for i := range n {
		pred, err := c.Classify(ctx, reflections[i], temperature)
		if err != nil {
			return nil, fmt.Errorf("reflection %d: %w", i+1, err)
		}
		c.logger.DebugContext(ctx, "classified reflection",
			"index", i+1, "of", n, "temperature", temperature, "labels", pred.Labels)
		preds = append(preds, pred)
	}
	return preds, nil
}

// Encode turns free-form model output into a 0/1 vector: a label is set
// when its name appears anywhere in raw. Model output is not always well
// formed but reliably contains the label names.
func Encode(raw string, labels []string) []float64 {
	v := make([]float64, len(labels))
	for i, l := range labels {
		if strings.Contains(raw, l) {
			v[i] = 1
		}
	}
	return v
}

// fromLabels encodes an exact label list; names outside labels are ignored.
func fromLabels(chosen, labels []string) []float64 {
	v := make([]float64, len(labels))
	for i, l := range labels {
		for _, ch := range chosen {
			if strings.TrimSpace(ch) == l {
				v[i] = 1
				break
			}
		}
	}
	return v
}

var userTemplate = template.Must(template.New("classify").Parse(
	`Regarding the following student feedback response enclosed in quotations: '{{.Text}}'

Choose one or more label(s) from the following list that best represents the issue(s) faced by the student. Respond only with your chosen labels enclosed in brackets.

[{{range $i, $l := .Labels}}{{if $i}}, {{end}}'{{$l}}'{{end}}]`))

func buildUserMessage(text string, labels []string) (string, error) {
	var buf bytes.Buffer
	err := userTemplate.Execute(&buf, struct {
		Text   string
		Labels []string
	}{text, labels})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
