package chatmood

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// TableSpec describes where a lexicon table lives on disk.
type TableSpec struct {
	Name      string
	Kind      TableKind
	Path      string
	Delimiter rune // 0 picks tab for .tsv files and comma otherwise
}

// DefaultTableSpecs returns the default ingestion order:
// emotes first, then emoji, then the VADER text lexicon.
func DefaultTableSpecs(dir string) []TableSpec {
	return []TableSpec{
		{Name: "emote", Kind: EmoteTable, Path: filepath.Join(dir, "emote_distribution.tsv")},
		{Name: "emoji", Kind: EmojiTable, Path: filepath.Join(dir, "emoji_distribution.tsv")},
		{Name: "vader", Kind: TextTable, Path: filepath.Join(dir, "vader_distribution.tsv")},
	}
}

func (s TableSpec) delimiter() rune {
	if s.Delimiter != 0 {
		return s.Delimiter
	}
	return DelimiterFor(s.Path)
}

// DelimiterFor picks the field delimiter from a file extension.
func DelimiterFor(path string) rune {
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		return '\t'
	}
	return ','
}

// LoadLexicon reads every table and merges them in order.
//
// Any unreadable or malformed table aborts the load; there is no partial
// lexicon.
func LoadLexicon(specs ...TableSpec) (*Lexicon, error) {
	if len(specs) == 0 {
		return nil, ErrNoTables
	}

	tables := make([]Table, 0, len(specs))
	for _, spec := range specs {
		table, err := LoadTable(spec)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}

	return BuildLexicon(tables...)
}

// LoadTable reads one lexicon table from disk.
func LoadTable(spec TableSpec) (Table, error) {
	data, err := os.ReadFile(spec.Path)
	if err != nil {
		return Table{}, fmt.Errorf("error reading lexicon table %s: %w", spec.Name, err)
	}
	return parseTable(spec, data)
}

func parseTable(spec TableSpec, data []byte) (Table, error) {
	entries, err := ReadTable(bytes.NewReader(data), spec.delimiter())
	if err != nil {
		return Table{}, fmt.Errorf("error parsing lexicon table %s (%s): %w", spec.Name, spec.Path, err)
	}
	for i := range entries {
		entries[i].Source = spec.Name
	}
	return Table{Name: spec.Name, Kind: spec.Kind, Entries: entries}, nil
}

var lexiconColumns = []string{"word", "negative", "neutral", "positive"}

// ReadTable parses delimited lexicon rows with a header naming at least
// word, negative, neutral and positive.
//
// Malformed rows are rejected rather than coerced: a missing or empty
// word, a value that does not parse, or one that is negative, NaN or
// infinite all fail with the offending line number.
func ReadTable(r io.Reader, delimiter rune) ([]LexiconEntry, error) {
	cr := newReader(r, delimiter)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty table: %w", ErrMissingColumn)
		}
		return nil, err
	}

	index, err := columnIndex(header, lexiconColumns...)
	if err != nil {
		return nil, err
	}

	var entries []LexiconEntry
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)

		word := field(row, index["word"])
		if word == "" {
			return nil, fmt.Errorf("line %d: empty word", line)
		}

		var values [3]float64
		for i, col := range lexiconColumns[1:] {
			v, err := parseLikelihood(field(row, index[col]))
			if err != nil {
				return nil, fmt.Errorf("line %d: %s for %q: %w", line, col, word, err)
			}
			values[i] = v
		}

		entries = append(entries, LexiconEntry{Word: word, Distribution: distributionOf(values[:])})
	}

	return entries, nil
}

func parseLikelihood(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("missing value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("invalid likelihood %v", v)
	}
	return v, nil
}

func newReader(r io.Reader, delimiter rune) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// columnIndex maps required column names to their header positions.
func columnIndex(header []string, required ...string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, name)
		}
	}
	return index, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
