package chatmood

import (
	"errors"
	"strconv"
)

// Distribution holds one value per sentiment class.
//
// Lexicon entries carry un-normalized likelihoods; normalized class scores
// use the same shape. Flattened forms are always ordered negative, neutral,
// positive.
type Distribution struct {
	Negative float64
	Neutral  float64
	Positive float64
}

// Slice flattens the distribution in negative, neutral, positive order.
func (d Distribution) Slice() []float64 {
	return []float64{d.Negative, d.Neutral, d.Positive}
}

// String renders the distribution the way the joined output column does.
func (d Distribution) String() string {
	return formatScore(d.Negative) + "-" + formatScore(d.Neutral) + "-" + formatScore(d.Positive)
}

func distributionOf(v []float64) Distribution {
	return Distribution{Negative: v[0], Neutral: v[1], Positive: v[2]}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// identity is the starting point of a product of distributions.
func identity() Distribution {
	return Distribution{Negative: 1, Neutral: 1, Positive: 1}
}

// Prior returns the uninformative class score attached to messages without
// evidence.
func Prior() Distribution {
	return Distribution{Negative: 0.33, Neutral: 0.34, Positive: 0.33}
}

// Label is a discrete sentiment decision.
type Label string

const (
	Positive Label = "1"  // positive message
	Neutral  Label = "0"  // neutral message
	Negative Label = "-1" // negative message
	Unscored Label = ""   // no lexicon evidence, distinct from Neutral
)

// IsScored reports whether the label came from lexicon evidence.
func (l Label) IsScored() bool {
	return l != Unscored
}

// Prediction is the outcome of scoring one message.
type Prediction struct {
	Label    Label        // Decided label, Unscored without evidence
	Scores   Distribution // Normalized class scores, Prior without evidence
	Inferred bool         // True iff at least one token matched the lexicon
	Matched  int          // Number of tokens that matched the lexicon
}

// unscored is the prediction for messages that carry no usable evidence.
func unscored() Prediction {
	return Prediction{Label: Unscored, Scores: Prior()}
}

// DefaultMessageColumn is the column scored when none is configured.
const DefaultMessageColumn = "message"

// A Record is one input row plus the prediction attached to it.
type Record struct {
	Fields map[string]string // Input columns by name
	Prediction
}

// NewRecord creates a record holding only a message.
func NewRecord(message string) *Record {
	return &Record{Fields: map[string]string{DefaultMessageColumn: message}}
}

// Message returns the text stored under column.
func (r *Record) Message(column string) string {
	if r == nil || r.Fields == nil {
		return ""
	}
	return r.Fields[column]
}

// A Dataset is an ordered batch of records with the header they were read with.
type Dataset struct {
	Columns []string
	Records []*Record
}

var (
	// ErrNoLexicon is returned when an analyzer is built without a lexicon.
	ErrNoLexicon = errors.New("chatmood: no lexicon")
	// ErrNoTables is returned when a lexicon is built from zero tables.
	ErrNoTables = errors.New("chatmood: no lexicon tables")
	// ErrNoData is returned by Accuracy for an empty dataset.
	ErrNoData = errors.New("chatmood: no data")
	// ErrMissingColumn is returned when a required column is absent from a header.
	ErrMissingColumn = errors.New("chatmood: missing column")
	// ErrDuplicateColumn is returned when a dataset header repeats a name.
	ErrDuplicateColumn = errors.New("chatmood: duplicate column")
)
