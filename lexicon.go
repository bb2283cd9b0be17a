package chatmood

import "fmt"

// TableKind identifies the role a lexicon table plays.
type TableKind string

const (
	TextTable  TableKind = "text"  // word lexicon, e.g. VADER-derived distributions
	EmoteTable TableKind = "emote" // chat emotes; their words form the known-emote vocabulary
	EmojiTable TableKind = "emoji" // unicode emoji
)

// ParseTableKind converts a configuration string into a TableKind.
func ParseTableKind(s string) (TableKind, error) {
	switch TableKind(s) {
	case TextTable, EmoteTable, EmojiTable:
		return TableKind(s), nil
	default:
		return "", fmt.Errorf("unknown table kind %q", s)
	}
}

// LexiconEntry represents one token's per-class likelihoods.
type LexiconEntry struct {
	Word   string
	Source string // Name of the table the entry was read from
	Distribution
}

// A Table is one named source of lexicon entries.
type Table struct {
	Name    string
	Kind    TableKind
	Entries []LexiconEntry
}

// Lexicon is the merged, read-only lookup structure used for scoring.
//
// A Lexicon never changes after BuildLexicon returns, so it can be shared
// between goroutines without locking.
type Lexicon struct {
	words    map[string]LexiconEntry
	order    []string
	emotes   []string
	emoteSet EmoteSet
}

// BuildLexicon merges tables in the given order.
//
// When a word appears more than once, the first occurrence wins and later
// ones are dropped, whichever table they come from. The words of every
// EmoteTable, in their original order, become the known-emote vocabulary.
func BuildLexicon(tables ...Table) (*Lexicon, error) {
	if len(tables) == 0 {
		return nil, ErrNoTables
	}

	size := 0
	for _, t := range tables {
		size += len(t.Entries)
	}

	lex := &Lexicon{
		words: make(map[string]LexiconEntry, size),
		order: make([]string, 0, size),
	}

	for _, t := range tables {
		for _, entry := range t.Entries {
			if entry.Source == "" {
				entry.Source = t.Name
			}
			lex.add(entry)
		}
		if t.Kind == EmoteTable {
			for _, entry := range t.Entries {
				lex.emotes = append(lex.emotes, entry.Word)
			}
		}
	}
	lex.emoteSet = NewEmoteSet(lex.emotes)

	return lex, nil
}

func (lex *Lexicon) add(entry LexiconEntry) {
	if _, exists := lex.words[entry.Word]; exists {
		return
	}
	lex.words[entry.Word] = entry
	lex.order = append(lex.order, entry.Word)
}

// Lookup returns the entry for an exact, case-sensitive word.
func (lex *Lexicon) Lookup(word string) (LexiconEntry, bool) {
	entry, ok := lex.words[word]
	return entry, ok
}

// Emotes returns a copy of the known-emote vocabulary.
func (lex *Lexicon) Emotes() []string {
	return append([]string(nil), lex.emotes...)
}

// IsEmote reports whether word belongs to the known-emote vocabulary.
func (lex *Lexicon) IsEmote(word string) bool {
	_, ok := lex.emoteSet[word]
	return ok
}

// Words returns the merged words in insertion order.
func (lex *Lexicon) Words() []string {
	return append([]string(nil), lex.order...)
}

// Len returns the number of distinct words.
func (lex *Lexicon) Len() int {
	return len(lex.words)
}
