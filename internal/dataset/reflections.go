package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ReadReflections reads a headerless table where each row holds one
// student's answers to the survey questions, and returns one prompt text
// per row: every answer prefixed with its question.
func ReadReflections(r io.Reader, questions []string) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var out []string
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read reflections: %w", err)
		}
		if len(rec) > len(questions) {
			return nil, fmt.Errorf("reflections line %d: %d answers but only %d questions configured", line, len(rec), len(questions))
		}
		var b strings.Builder
		for i, answer := range rec {
			fmt.Fprintf(&b, "%s: %s ", questions[i], answer)
		}
		out = append(out, b.String())
	}
	return out, nil
}
