package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/docproc-labs/docproc/internal/inference"
)

// Model output parsing. These are pure functions from free text to
// structured results. Output that does not match the expected pattern
// degrades to a safe default instead of failing — keeping a document moving
// matters more than parse fidelity, and the degraded flag lets callers log
// the difference.

const (
	defaultCategory   = "Other"
	defaultConfidence = 50
)

var (
	categoryRe   = regexp.MustCompile(`(?i)Category:\s*([^,]+)`)
	confidenceRe = regexp.MustCompile(`(?i)Confidence:\s*(\d+)`)
	summaryRe    = regexp.MustCompile(`(?i)Summary:`)
	keyPointsRe  = regexp.MustCompile(`(?i)Key Points:`)
)

// ParseClassification extracts "Category: X" and "Confidence: N" from the
// model's response. Missing or malformed parts fall back to "Other" / 50.
func ParseClassification(text string) (category string, confidence int, degraded bool) {
	category = defaultCategory
	confidence = defaultConfidence
	degraded = true

	if m := categoryRe.FindStringSubmatch(text); m != nil {
		category = strings.TrimSpace(m[1])
		degraded = false
	}
	if m := confidenceRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			confidence = n
		}
	} else {
		degraded = true
	}
	return category, confidence, degraded
}

// ParseSummarization splits the model's response into the "Summary:" block
// (everything up to a "Key Points:" marker) and the ordered bullet lines that
// follow the marker. Without a "Summary:" marker the entire response stands
// in as the summary. Bullets keep their original order with the leading "-"
// and surrounding whitespace stripped; empty lines are dropped.
func ParseSummarization(text string) (summary string, keyPoints []string, degraded bool) {
	summaryPart := text
	pointsPart := ""
	if loc := keyPointsRe.FindStringIndex(text); loc != nil {
		summaryPart = text[:loc[0]]
		pointsPart = text[loc[1]:]
	}

	if loc := summaryRe.FindStringIndex(summaryPart); loc != nil {
		summary = strings.TrimSpace(summaryPart[loc[1]:])
	} else {
		summary = strings.TrimSpace(text)
		degraded = true
	}

	for _, line := range strings.Split(pointsPart, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") {
			continue
		}
		point := strings.TrimSpace(strings.TrimPrefix(line, "-"))
		if point != "" {
			keyPoints = append(keyPoints, point)
		}
	}
	return summary, keyPoints, degraded
}

// JoinLines concatenates line units in their given order with newline
// separators and averages the per-line confidence scores. Lines without a
// score still contribute text but not confidence; with no scored lines at
// all the confidence is 0.
func JoinLines(lines []inference.Line) (text string, confidence float64) {
	parts := make([]string, 0, len(lines))
	var sum float64
	var scored int
	for _, line := range lines {
		parts = append(parts, line.Text)
		if line.Confidence != nil {
			sum += *line.Confidence
			scored++
		}
	}
	if scored > 0 {
		confidence = sum / float64(scored)
	}
	return strings.Join(parts, "\n"), confidence
}
