package chatmood

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Output column names.
const (
	ColumnPrediction    = "pred_sentiment"
	ColumnClassScores   = "class_scores"
	ColumnClassNegative = "class_negative"
	ColumnClassNeutral  = "class_neutral"
	ColumnClassPositive = "class_positive"
	ColumnInferred      = "inferred"
)

var outputColumns = map[string]bool{
	ColumnPrediction:    true,
	ColumnClassScores:   true,
	ColumnClassNegative: true,
	ColumnClassNeutral:  true,
	ColumnClassPositive: true,
	ColumnInferred:      true,
}

// ScoreFormat selects how class scores are written.
type ScoreFormat string

const (
	ScoresJoined ScoreFormat = "joined" // one class_scores column, "neg-neu-pos"
	ScoresSplit  ScoreFormat = "split"  // class_negative, class_neutral, class_positive
)

// ParseScoreFormat converts a configuration string into a ScoreFormat.
func ParseScoreFormat(s string) (ScoreFormat, error) {
	switch ScoreFormat(s) {
	case "":
		return ScoresJoined, nil
	case ScoresJoined, ScoresSplit:
		return ScoreFormat(s), nil
	default:
		return "", fmt.Errorf("unknown score format %q", s)
	}
}

// ReadDataset reads a delimited file with a header row. The header must
// contain messageColumn and no name twice; every other column is passed
// through untouched.
func ReadDataset(r io.Reader, delimiter rune, messageColumn string) (*Dataset, error) {
	if messageColumn == "" {
		messageColumn = DefaultMessageColumn
	}
	cr := newReader(r, delimiter)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty dataset: %w %q", ErrMissingColumn, messageColumn)
		}
		return nil, err
	}
	if _, err := columnIndex(header, messageColumn); err != nil {
		return nil, err
	}

	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if seen[name] {
			return nil, fmt.Errorf("header column %d: %w %q", i+1, ErrDuplicateColumn, name)
		}
		seen[name] = true
		columns[i] = name
	}
	ds := &Dataset{Columns: columns}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		fields := make(map[string]string, len(columns))
		for i, name := range columns {
			fields[name] = field(row, i)
		}
		ds.Records = append(ds.Records, &Record{Fields: fields})
	}

	return ds, nil
}

// RequireColumns returns ErrMissingColumn for the first name not in the header.
func (ds *Dataset) RequireColumns(names ...string) error {
	for _, name := range names {
		found := false
		for _, c := range ds.Columns {
			if c == name {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w %q", ErrMissingColumn, name)
		}
	}
	return nil
}

// WriteOptions controls WriteDataset.
type WriteOptions struct {
	Delimiter   rune
	ScoreFormat ScoreFormat
}

// WriteDataset writes ds with its passthrough columns followed by the
// prediction columns. An unscored record gets an empty pred_sentiment so
// it cannot be confused with the neutral label "0".
func WriteDataset(w io.Writer, ds *Dataset, opts WriteOptions) error {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if opts.ScoreFormat == "" {
		opts.ScoreFormat = ScoresJoined
	}

	cw := csv.NewWriter(w)
	cw.Comma = opts.Delimiter

	var passthrough []string
	for _, c := range ds.Columns {
		if !outputColumns[c] {
			passthrough = append(passthrough, c)
		}
	}

	header := append([]string(nil), passthrough...)
	header = append(header, ColumnPrediction)
	if opts.ScoreFormat == ScoresSplit {
		header = append(header, ColumnClassNegative, ColumnClassNeutral, ColumnClassPositive)
	} else {
		header = append(header, ColumnClassScores)
	}
	header = append(header, ColumnInferred)

	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, 0, len(header))
	for _, rec := range ds.Records {
		row = row[:0]
		for _, c := range passthrough {
			row = append(row, rec.Fields[c])
		}
		row = append(row, string(rec.Label))
		if opts.ScoreFormat == ScoresSplit {
			row = append(row,
				formatScore(rec.Scores.Negative),
				formatScore(rec.Scores.Neutral),
				formatScore(rec.Scores.Positive))
		} else {
			row = append(row, rec.Scores.String())
		}
		row = append(row, strconv.FormatBool(rec.Inferred))
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
