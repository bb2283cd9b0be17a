package chatmood

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"
)

// NegationSuffix marks a token that occurred inside a negation scope.
const NegationSuffix = "_NEG"

// Tokenizer turns a chat message into lexicon lookup keys.
//
// Implementations must be pure with respect to their inputs and safe for
// concurrent use. A token is either a bare lookup key or the key followed
// by NegationSuffix.
type Tokenizer interface {
	Tokenize(message string, knownEmotes []string) []string
}

type segmenter interface {
	Tokenize(text string) []*sentences.Sentence
}

// ChatTokenizer is the default Tokenizer for chat messages.
//
// Known emotes and emoticons are kept verbatim, emoji are split into their
// own tokens and every other word is trimmed of punctuation and lower-cased.
// A negation cue opens a scope that lasts until scope-ending punctuation or
// the end of the sentence; tokens inside it carry NegationSuffix.
type ChatTokenizer struct {
	sanitizer *strings.Replacer
	emoticons map[string]int
	negations map[string]bool
	scopeEnds string
	stopWords *stopWordFilter

	segment   bool
	segMu     sync.Mutex
	segmenter segmenter
}

// EmoteSet is a lookup view of a known-emote vocabulary.
type EmoteSet map[string]struct{}

// NewEmoteSet builds the set of words.
func NewEmoteSet(words []string) EmoteSet {
	set := make(EmoteSet, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// TokenizerOptFunc configures a ChatTokenizer.
type TokenizerOptFunc func(*ChatTokenizer)

// UsingSanitizer replaces the character sanitizer applied before splitting.
func UsingSanitizer(x *strings.Replacer) TokenizerOptFunc {
	return func(tokenizer *ChatTokenizer) {
		tokenizer.sanitizer = x
	}
}

// UsingEmoticons replaces the set of emoticons kept verbatim.
func UsingEmoticons(x map[string]int) TokenizerOptFunc {
	return func(tokenizer *ChatTokenizer) {
		tokenizer.emoticons = x
	}
}

// UsingNegations replaces the negation cue words. Cues are matched after
// lower-casing.
func UsingNegations(words []string) TokenizerOptFunc {
	return func(tokenizer *ChatTokenizer) {
		tokenizer.negations = make(map[string]bool, len(words))
		for _, w := range words {
			tokenizer.negations[strings.ToLower(w)] = true
		}
	}
}

// UsingScopeEnds replaces the punctuation characters that close a negation scope.
func UsingScopeEnds(chars string) TokenizerOptFunc {
	return func(tokenizer *ChatTokenizer) {
		tokenizer.scopeEnds = chars
	}
}

// UsingStopWords drops stop words of the given ISO 639-1 language. An empty
// language disables filtering. Negation cues, emotes and emoji are never
// dropped.
func UsingStopWords(lang string) TokenizerOptFunc {
	return func(tokenizer *ChatTokenizer) {
		if lang == "" {
			tokenizer.stopWords = nil
			return
		}
		tokenizer.stopWords = newStopWordFilter(lang)
	}
}

// UsingSentenceSegmentation toggles punkt sentence segmentation. When off,
// the whole message is one sentence.
func UsingSentenceSegmentation(enabled bool) TokenizerOptFunc {
	return func(tokenizer *ChatTokenizer) {
		tokenizer.segment = enabled
	}
}

// NewChatTokenizer builds a tokenizer with defaults overridden by opts.
func NewChatTokenizer(opts ...TokenizerOptFunc) (*ChatTokenizer, error) {
	tok := &ChatTokenizer{
		sanitizer: sanitizer,
		emoticons: emoticons,
		scopeEnds: scopeEnds,
		segment:   true,
	}
	UsingNegations(negationCues)(tok)

	for _, applyOpt := range opts {
		applyOpt(tok)
	}

	if tok.segment {
		seg, err := english.NewSentenceTokenizer(nil)
		if err != nil {
			return nil, err
		}
		tok.segmenter = seg
	}

	return tok, nil
}

// Tokenize splits message into lookup tokens.
func (t *ChatTokenizer) Tokenize(message string, knownEmotes []string) []string {
	return t.TokenizeSet(message, NewEmoteSet(knownEmotes))
}

// TokenizeSet is Tokenize with a prebuilt emote set. The set is only read.
func (t *ChatTokenizer) TokenizeSet(message string, emotes EmoteSet) []string {
	message = t.sanitizer.Replace(message)
	if strings.TrimSpace(message) == "" {
		return nil
	}

	lower := cases.Lower(language.Und)

	var tokens []string
	for _, sentence := range t.sentences(message) {
		negated := false
		for _, field := range strings.Fields(sentence) {
			if t.isVerbatim(field, emotes) {
				tokens = append(tokens, mark(field, negated))
				continue
			}

			for _, piece := range splitEmoji(field) {
				if piece.emoji {
					tokens = append(tokens, mark(piece.text, negated))
					continue
				}

				word, closes := t.trim(piece.text)
				switch {
				case word == "":
				case t.isVerbatim(word, emotes):
					tokens = append(tokens, mark(word, negated))
				default:
					word = lower.String(word)
					if t.isNegation(word) {
						tokens = append(tokens, word)
						negated = true
					} else if t.stopWords == nil || !t.stopWords.isStopWord(word) {
						tokens = append(tokens, mark(word, negated))
					}
				}
				if closes {
					negated = false
				}
			}
		}
	}

	return tokens
}

func mark(token string, negated bool) string {
	if negated {
		return token + NegationSuffix
	}
	return token
}

func (t *ChatTokenizer) isVerbatim(s string, emotes EmoteSet) bool {
	if _, ok := emotes[s]; ok {
		return true
	}
	_, ok := t.emoticons[s]
	return ok
}

func (t *ChatTokenizer) isNegation(word string) bool {
	return t.negations[word] || strings.HasSuffix(word, "n't")
}

// trim strips leading and trailing punctuation and reports whether the
// trailing run closes a negation scope.
func (t *ChatTokenizer) trim(s string) (string, bool) {
	word := strings.TrimRightFunc(s, isTrimmable)
	closes := strings.ContainsAny(s[len(word):], t.scopeEnds)
	word = strings.TrimLeftFunc(word, isTrimmable)
	return word, closes
}

func isTrimmable(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func (t *ChatTokenizer) sentences(message string) []string {
	if t.segmenter == nil {
		return []string{message}
	}

	t.segMu.Lock()
	sents := t.segmenter.Tokenize(message)
	t.segMu.Unlock()

	if len(sents) == 0 {
		return []string{message}
	}
	out := make([]string, 0, len(sents))
	for _, s := range sents {
		out = append(out, s.Text)
	}
	return out
}

type piece struct {
	text  string
	emoji bool
}

// splitEmoji separates emoji from the surrounding text of a field. The
// field is walked by grapheme cluster, so an emoji keeps its variation
// selectors, skin tone modifiers and ZWJ sequences, a pair of regional
// indicators stays one flag and a keycap stays one token.
func splitEmoji(field string) []piece {
	var pieces []piece
	start, pos, state := 0, 0, -1
	for rest := field; rest != ""; {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if isEmoji(cluster) {
			if start < pos {
				pieces = append(pieces, piece{text: field[start:pos]})
			}
			pieces = append(pieces, piece{text: cluster, emoji: true})
			start = pos + len(cluster)
		}
		pos += len(cluster)
	}
	if start < len(field) {
		pieces = append(pieces, piece{text: field[start:]})
	}
	return pieces
}

// isEmoji reports whether a grapheme cluster is an emoji.
func isEmoji(cluster string) bool {
	r, _ := utf8.DecodeRuneInString(cluster)
	switch {
	case unicode.Is(extendedPictographic, r):
		return true
	case r >= 0x1F1E6 && r <= 0x1F1FF: // Regional indicators
		return true
	case strings.HasSuffix(cluster, "\u20e3"): // Keycap
		return strings.ContainsRune("0123456789#*", r)
	}
	return false
}

// extendedPictographic holds the Extended_Pictographic property of Unicode
// 15 emoji-data.txt.
var extendedPictographic = &unicode.RangeTable{
	R16: []unicode.Range16{
		{0x00a9, 0x00a9, 1}, {0x00ae, 0x00ae, 1}, {0x203c, 0x203c, 1},
		{0x2049, 0x2049, 1}, {0x2122, 0x2122, 1}, {0x2139, 0x2139, 1},
		{0x2194, 0x2199, 1}, {0x21a9, 0x21aa, 1}, {0x231a, 0x231b, 1},
		{0x2328, 0x2328, 1}, {0x2388, 0x2388, 1}, {0x23cf, 0x23cf, 1},
		{0x23e9, 0x23f3, 1}, {0x23f8, 0x23fa, 1}, {0x24c2, 0x24c2, 1},
		{0x25aa, 0x25ab, 1}, {0x25b6, 0x25b6, 1}, {0x25c0, 0x25c0, 1},
		{0x25fb, 0x25fe, 1}, {0x2600, 0x2605, 1}, {0x2607, 0x2612, 1},
		{0x2614, 0x2685, 1}, {0x2690, 0x2705, 1}, {0x2708, 0x2712, 1},
		{0x2714, 0x2714, 1}, {0x2716, 0x2716, 1}, {0x271d, 0x271d, 1},
		{0x2721, 0x2721, 1}, {0x2728, 0x2728, 1}, {0x2733, 0x2734, 1},
		{0x2744, 0x2744, 1}, {0x2747, 0x2747, 1}, {0x274c, 0x274c, 1},
		{0x274e, 0x274e, 1}, {0x2753, 0x2755, 1}, {0x2757, 0x2757, 1},
		{0x2763, 0x2767, 1}, {0x2795, 0x2797, 1}, {0x27a1, 0x27a1, 1},
		{0x27b0, 0x27b0, 1}, {0x27bf, 0x27bf, 1}, {0x2934, 0x2935, 1},
		{0x2b05, 0x2b07, 1}, {0x2b1b, 0x2b1c, 1}, {0x2b50, 0x2b50, 1},
		{0x2b55, 0x2b55, 1}, {0x3030, 0x3030, 1}, {0x303d, 0x303d, 1},
		{0x3297, 0x3297, 1}, {0x3299, 0x3299, 1},
	},
	R32: []unicode.Range32{
		{0x1f000, 0x1f0ff, 1}, {0x1f10d, 0x1f10f, 1}, {0x1f12f, 0x1f12f, 1},
		{0x1f16c, 0x1f171, 1}, {0x1f17e, 0x1f17f, 1}, {0x1f18e, 0x1f18e, 1},
		{0x1f191, 0x1f19a, 1}, {0x1f1ad, 0x1f1e5, 1}, {0x1f201, 0x1f20f, 1},
		{0x1f21a, 0x1f21a, 1}, {0x1f22f, 0x1f22f, 1}, {0x1f232, 0x1f23a, 1},
		{0x1f23c, 0x1f23f, 1}, {0x1f249, 0x1f3fa, 1}, {0x1f400, 0x1f53d, 1},
		{0x1f546, 0x1f64f, 1}, {0x1f680, 0x1f6ff, 1}, {0x1f774, 0x1f77f, 1},
		{0x1f7d5, 0x1f7ff, 1}, {0x1f80c, 0x1f80f, 1}, {0x1f848, 0x1f84f, 1},
		{0x1f85a, 0x1f85f, 1}, {0x1f888, 0x1f88f, 1}, {0x1f8ae, 0x1f8ff, 1},
		{0x1f90c, 0x1f93a, 1}, {0x1f93c, 0x1f945, 1}, {0x1f947, 0x1faff, 1},
		{0x1fc00, 0x1fffd, 1},
	},
	LatinOffset: 2,
}

var sanitizer = strings.NewReplacer(
	"\u201c", `"`,
	"\u201d", `"`,
	"\u2018", "'",
	"\u2019", "'",
	"&rsquo;", "'")

var scopeEnds = ".,!?;:"

var negationCues = []string{
	"aint", "ain't", "arent", "cannot", "cant", "couldnt", "didnt", "doesnt",
	"dont", "hadnt", "hasnt", "havent", "isnt", "neither", "never", "no",
	"nobody", "none", "nope", "nor", "not", "nothing", "nowhere", "shouldnt",
	"wasnt", "werent", "without", "wont", "wouldnt",
}

var emoticons = map[string]int{
	"(-_-)": 1,
	"(:":    1,
	"-_-":   1,
	"-__-":  1,
	":(":    1,
	":((":   1,
	":)":    1,
	":))":   1,
	":-(":   1,
	":-)":   1,
	":-/":   1,
	":-D":   1,
	":-P":   1,
	":-p":   1,
	":-|":   1,
	":/":    1,
	":3":    1,
	":D":    1,
	":O":    1,
	":P":    1,
	":o":    1,
	":p":    1,
	":|":    1,
	";)":    1,
	";-)":   1,
	";D":    1,
	"</3":   1,
	"<3":    1,
	"=(":    1,
	"=)":    1,
	"=D":    1,
	"D:":    1,
	"O_o":   1,
	"XD":    1,
	"^^":    1,
	"^_^":   1,
	"o_O":   1,
	"xD":    1,
	"xDD":   1,
	"¯\\_(ツ)_/¯": 1,
}
