package domain

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// OverallKey is the reserved ConfidenceMap key for the document-level score.
const OverallKey = "_overall"

// RawDocument is the opaque input to an extraction request. PageStart and
// PageEnd are 1-based inclusive and only take effect when both are set;
// a zero value means unset.
type RawDocument struct {
	Bytes       []byte
	ContentType string
	PageStart   int
	PageEnd     int
}

// PageRange returns the inclusive page range and whether it applies.
// Setting only one bound is treated the same as setting neither.
func (d *RawDocument) PageRange() (start, end int, ok bool) {
	if d.PageStart == 0 || d.PageEnd == 0 {
		return 0, 0, false
	}
	return d.PageStart, d.PageEnd, true
}

// PageRangeString renders the range as an inclusive "start-end" string for
// services that take page selections in that form, or "" when unset.
func (d *RawDocument) PageRangeString() string {
	start, end, ok := d.PageRange()
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d-%d", start, end)
}

// PageImage is one rendered page of a document, encoded for transport.
type PageImage struct {
	PageNumber int
	MIMEType   string
	Data       []byte
}

// DataURI returns the page as a base64 data URI.
func (p *PageImage) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", p.MIMEType, base64.StdEncoding.EncodeToString(p.Data))
}

// LayoutSpan is a recognized text span with the layout engine's own
// confidence that the text matches the underlying image.
type LayoutSpan struct {
	Text       string
	Confidence float64
	Offset     int
	Length     int
	Page       int
}

// LayoutResult is the output of a layout analysis pass: the full document
// text (markdown) plus per-span OCR confidences.
type LayoutResult struct {
	Content string
	Spans   []LayoutSpan
}

// TokenLogProb is one output token with the natural-log probability the model
// assigned to it at generation time.
type TokenLogProb struct {
	Token   string
	LogProb float64
}

// ConfidenceMap maps dotted/indexed field paths (e.g.
// "items[2].unit_price.amount") to confidences in [0,1]. A non-nil map always
// carries OverallKey.
type ConfidenceMap map[string]float64

// ConfidenceResult is the final output of one extraction request.
type ConfidenceResult struct {
	Data              json.RawMessage `json:"data"`
	ConfidenceScores  ConfidenceMap   `json:"confidence_scores"`
	OverallConfidence float64         `json:"overall_confidence"`
}
