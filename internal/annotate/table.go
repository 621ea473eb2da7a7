// Package annotate assembles enriched transcript sentences into the
// ordered annotation table that the pipeline emits.
package annotate

import (
	"strconv"

	"github.com/emoscribe/emoscribe/internal/timefmt"
	"github.com/emoscribe/emoscribe/internal/transcribe"
)

// Columns is the fixed column order of the annotation table. Serialization
// must never reorder these.
var Columns = []string{"Start Time", "End Time", "Sentence", "Translation", "Emotion", "Confidence (%)"}

// Outcome tags a segment as fully enriched or degraded. A degraded
// segment carries sentinel field values and the reason enrichment failed;
// the run itself continues.
type Outcome struct {
	OK     bool
	Reason string // empty when OK
}

// Segment is one transcript sentence plus its enrichment.
type Segment struct {
	Sentence    transcribe.Sentence
	Translation string // equals the original text when no translation applied
	Emotion     string
	Confidence  float64 // percent, 0-100
	Outcome     Outcome
}

// Row renders the segment in Columns order.
func (s Segment) Row() []string {
	return []string{
		timefmt.Format(s.Sentence.StartMS),
		timefmt.Format(s.Sentence.EndMS),
		s.Sentence.Text,
		s.Translation,
		s.Emotion,
		strconv.FormatFloat(s.Confidence, 'f', -1, 64),
	}
}

// Table is the ordered annotation table. Row order equals append order
// equals transcript order.
type Table struct {
	segments []Segment
}

// NewTable creates an empty table with room for n segments.
func NewTable(n int) *Table {
	return &Table{segments: make([]Segment, 0, n)}
}

// Append adds a segment at the end of the table.
func (t *Table) Append(s Segment) {
	t.segments = append(t.segments, s)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.segments) }

// Segments returns the segments in table order.
func (t *Table) Segments() []Segment { return t.segments }

// Rows renders every segment in table order.
func (t *Table) Rows() [][]string {
	rows := make([][]string, 0, len(t.segments))
	for _, s := range t.segments {
		rows = append(rows, s.Row())
	}
	return rows
}
