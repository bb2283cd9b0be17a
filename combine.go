package chatmood

import (
	"math"
	"strings"
	"unicode/utf8"

	"gonum.org/v1/gonum/floats"
)

// Evidence is the combined lexicon evidence for one message.
type Evidence struct {
	Products Distribution   // Per-class combination of every matched entry
	Matched  int            // Tokens that found a lexicon entry
	Matches  []LexiconEntry // Matched entries in token order
}

// Combiner aggregates the distributions of a message's tokens.
//
// Implementations strip NegationSuffix before lookup and skip tokens that
// are not in the lexicon. The Products they return need not be normalized.
type Combiner interface {
	Combine(tokens []string, lex *Lexicon) Evidence
}

// ProductCombiner multiplies matched distributions class by class, starting
// from the identity. Tokens are treated as independent evidence.
type ProductCombiner struct{}

// Combine implements Combiner.
func (ProductCombiner) Combine(tokens []string, lex *Lexicon) Evidence {
	acc := identity().Slice()
	matches := lookupAll(tokens, lex)
	for _, entry := range matches {
		floats.Mul(acc, entry.Slice())
	}
	return Evidence{Products: distributionOf(acc), Matched: len(matches), Matches: matches}
}

// LogSpaceCombiner accumulates log likelihoods and rescales so the largest
// class is 1. Ratios between classes, and therefore labels and normalized
// scores, match ProductCombiner, but long messages do not underflow.
type LogSpaceCombiner struct{}

// Combine implements Combiner.
func (LogSpaceCombiner) Combine(tokens []string, lex *Lexicon) Evidence {
	acc := make([]float64, 3)
	matches := lookupAll(tokens, lex)
	logs := make([]float64, 3)
	for _, entry := range matches {
		for i, v := range entry.Slice() {
			logs[i] = math.Log(v)
		}
		floats.Add(acc, logs)
	}

	// All classes at zero likelihood.
	top := floats.Max(acc)
	if math.IsInf(top, -1) {
		return Evidence{Matched: len(matches), Matches: matches}
	}
	for i := range acc {
		acc[i] = math.Exp(acc[i] - top)
	}
	return Evidence{Products: distributionOf(acc), Matched: len(matches), Matches: matches}
}

// lookupAll resolves tokens against lex. A negated token is looked up
// without its suffix and its distribution is used unchanged.
func lookupAll(tokens []string, lex *Lexicon) []LexiconEntry {
	var matches []LexiconEntry
	for _, token := range tokens {
		token = strings.TrimSuffix(token, NegationSuffix)
		if entry, ok := lookupEmojiForm(token, lex); ok {
			matches = append(matches, entry)
		}
	}
	return matches
}

var variationSelectors = strings.NewReplacer("\ufe0f", "", "\ufe0e", "")

// lookupEmojiForm looks token up as written, then without its variation
// selectors, then with an emoji presentation selector appended.
func lookupEmojiForm(token string, lex *Lexicon) (LexiconEntry, bool) {
	if entry, ok := lex.Lookup(token); ok {
		return entry, true
	}
	if bare := variationSelectors.Replace(token); bare != token {
		return lex.Lookup(bare)
	}
	if utf8.RuneCountInString(token) == 1 {
		return lex.Lookup(token + "\ufe0f")
	}
	return LexiconEntry{}, false
}
