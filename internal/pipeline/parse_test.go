package pipeline

import (
	"reflect"
	"testing"

	"github.com/docproc-labs/docproc/internal/inference"
)

func TestParseClassification_WellFormed(t *testing.T) {
	category, confidence, degraded := ParseClassification("Category: Invoice, Confidence: 87")
	if category != "Invoice" {
		t.Errorf("expected category Invoice, got %q", category)
	}
	if confidence != 87 {
		t.Errorf("expected confidence 87, got %d", confidence)
	}
	if degraded {
		t.Error("expected well-formed response not to be degraded")
	}
}

func TestParseClassification_Malformed(t *testing.T) {
	category, confidence, degraded := ParseClassification("not a valid response")
	if category != "Other" {
		t.Errorf("expected default category Other, got %q", category)
	}
	if confidence != 50 {
		t.Errorf("expected default confidence 50, got %d", confidence)
	}
	if !degraded {
		t.Error("expected malformed response to be flagged degraded")
	}
}

func TestParseClassification_CaseInsensitive(t *testing.T) {
	category, confidence, _ := ParseClassification("category: Receipt, confidence: 42")
	if category != "Receipt" {
		t.Errorf("expected category Receipt, got %q", category)
	}
	if confidence != 42 {
		t.Errorf("expected confidence 42, got %d", confidence)
	}
}

func TestParseClassification_MissingConfidence(t *testing.T) {
	category, confidence, degraded := ParseClassification("Category: Contract")
	if category != "Contract" {
		t.Errorf("expected category Contract, got %q", category)
	}
	if confidence != 50 {
		t.Errorf("expected default confidence 50, got %d", confidence)
	}
	if !degraded {
		t.Error("expected partial match to be flagged degraded")
	}
}

func TestParseSummarization_WellFormed(t *testing.T) {
	summary, keyPoints, degraded := ParseSummarization("Summary: A short note.\nKey Points:\n- point one\n- point two")
	if summary != "A short note." {
		t.Errorf("expected summary %q, got %q", "A short note.", summary)
	}
	if !reflect.DeepEqual(keyPoints, []string{"point one", "point two"}) {
		t.Errorf("expected key points [point one, point two], got %v", keyPoints)
	}
	if degraded {
		t.Error("expected well-formed response not to be degraded")
	}
}

func TestParseSummarization_NoKeyPointsMarker(t *testing.T) {
	summary, keyPoints, _ := ParseSummarization("Summary: Everything in one block.")
	if summary != "Everything in one block." {
		t.Errorf("expected summary to run to end of text, got %q", summary)
	}
	if len(keyPoints) != 0 {
		t.Errorf("expected no key points, got %v", keyPoints)
	}
}

func TestParseSummarization_NoSummaryMarker(t *testing.T) {
	// Without a Summary marker the whole response stands in as the summary,
	// key-points block included.
	summary, keyPoints, degraded := ParseSummarization("Just raw model text.\nKey Points:\n- only point")
	if summary != "Just raw model text.\nKey Points:\n- only point" {
		t.Errorf("expected full-text fallback, got %q", summary)
	}
	if !reflect.DeepEqual(keyPoints, []string{"only point"}) {
		t.Errorf("expected [only point], got %v", keyPoints)
	}
	if !degraded {
		t.Error("expected missing Summary marker to be flagged degraded")
	}
}

func TestParseSummarization_MultibyteSummary(t *testing.T) {
	// Characters whose lowercase form has a different byte length ('İ') must
	// not shift the marker offsets and corrupt the extracted summary.
	summary, keyPoints, degraded := ParseSummarization("Summary: İİİ done.\nKey Points:\n- point one")
	if summary != "İİİ done." {
		t.Errorf("expected summary %q, got %q", "İİİ done.", summary)
	}
	if !reflect.DeepEqual(keyPoints, []string{"point one"}) {
		t.Errorf("expected [point one], got %v", keyPoints)
	}
	if degraded {
		t.Error("expected well-formed response not to be degraded")
	}
}

func TestParseSummarization_SkipsEmptyBullets(t *testing.T) {
	_, keyPoints, _ := ParseSummarization("Summary: s\nKey Points:\n- first\n-\n\nnot a bullet\n-   second  ")
	if !reflect.DeepEqual(keyPoints, []string{"first", "second"}) {
		t.Errorf("expected [first, second], got %v", keyPoints)
	}
}

func TestJoinLines(t *testing.T) {
	text, confidence := JoinLines([]inference.Line{
		{Text: "Invoice #1", Confidence: conf(90)},
		{Text: "Total $9.00", Confidence: conf(80)},
	})
	if text != "Invoice #1\nTotal $9.00" {
		t.Errorf("expected newline-joined text, got %q", text)
	}
	if confidence != 85 {
		t.Errorf("expected mean confidence 85, got %v", confidence)
	}
}

func TestJoinLines_UnscoredLines(t *testing.T) {
	// Unscored lines contribute text but are excluded from the mean.
	text, confidence := JoinLines([]inference.Line{
		{Text: "scored", Confidence: conf(60)},
		{Text: "unscored"},
	})
	if text != "scored\nunscored" {
		t.Errorf("unexpected text %q", text)
	}
	if confidence != 60 {
		t.Errorf("expected confidence 60, got %v", confidence)
	}
}

func TestJoinLines_Empty(t *testing.T) {
	text, confidence := JoinLines(nil)
	if text != "" {
		t.Errorf("expected empty text, got %q", text)
	}
	if confidence != 0 {
		t.Errorf("expected confidence 0 with no scored lines, got %v", confidence)
	}
}
