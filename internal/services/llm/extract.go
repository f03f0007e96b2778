package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ternarybob/nuntium/internal/models"
)

var (
	// ErrNoJSONFound indicates the model response carried no JSON array.
	ErrNoJSONFound = errors.New("no JSON array found in response")

	// ErrShapeMismatch indicates the array parsed but did not carry
	// exactly one entry per prompted item.
	ErrShapeMismatch = errors.New("analysis entry count does not match item count")
)

// ExtractJSONArray returns the first complete JSON array embedded in
// model output. Models wrap JSON in prose and markdown fences, so the
// scanner walks the text tracking bracket depth and string state rather
// than trusting the outermost brackets.
func ExtractJSONArray(text string) (string, error) {
	start := strings.IndexByte(text, '[')
	if start < 0 {
		return "", ErrNoJSONFound
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", ErrNoJSONFound
}

// ParseAnalysis extracts and validates the analysis array from raw
// model output. A response without exactly want entries is rejected
// outright: partial analysis is indistinguishable from misaligned
// analysis, and misaligned insights attached to the wrong headlines are
// worse than no insights.
func ParseAnalysis(text string, want int) (models.AnalysisResult, error) {
	raw, err := ExtractJSONArray(text)
	if err != nil {
		return nil, err
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("failed to parse analysis array: %w", err)
	}

	if len(result) != want {
		return nil, fmt.Errorf("%w: got %d entries, want %d", ErrShapeMismatch, len(result), want)
	}

	for i := range result {
		result[i].Summary = strings.TrimSpace(result[i].Summary)
		result[i].Insight = strings.TrimSpace(result[i].Insight)
	}
	return result, nil
}
