// Package inference holds the clients for the external OCR and generative
// services the pipeline calls. The pipeline only sees the two interfaces
// below; concrete clients are constructed once in main and injected.
package inference

import "context"

// Line is one line-level text unit from the OCR service, in page order.
// Confidence is nil when the service did not score the line.
type Line struct {
	Text       string
	Confidence *float64
}

// LineExtractor detects line-level text in a raw document (image or PDF).
type LineExtractor interface {
	ExtractLines(ctx context.Context, raw []byte) ([]Line, error)
}

// Generator produces free-form text from a single prompt with a bounded
// output length. The response is parsed by the calling stage.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
	ModelID() string
}
