package chatmood

import (
	"reflect"
	"testing"
)

func newTestTokenizer(t testing.TB, opts ...TokenizerOptFunc) *ChatTokenizer {
	t.Helper()
	opts = append([]TokenizerOptFunc{UsingSentenceSegmentation(false)}, opts...)
	tok, err := NewChatTokenizer(opts...)
	if err != nil {
		t.Fatalf("NewChatTokenizer failed: %v", err)
	}
	return tok
}

func TestTokenize(t *testing.T) {
	emotes := []string{"Kappa", "PogChamp", "<3"}

	tests := []struct {
		desc     string
		message  string
		expected []string
	}{
		{"Empty message", "", nil},
		{"Whitespace only", "  \t ", nil},
		{"Plain words", "Good Game", []string{"good", "game"}},
		{"Punctuation trimmed", "\"good\" game!!", []string{"good", "game"}},
		{"Known emotes kept verbatim", "Kappa PogChamp", []string{"Kappa", "PogChamp"}},
		{"Emote with trailing punctuation", "Kappa!", []string{"Kappa"}},
		{"Emoticons kept verbatim", "nice :) xD", []string{"nice", ":)", "xD"}},
		{"Emote vocabulary wins over trimming", "<3 <3", []string{"<3", "<3"}},
		{"Emoji split from words", "lol\U0001F602\U0001F602", []string{"lol", "\U0001F602", "\U0001F602"}},
		{"Emoji with skin tone", "ok \U0001F44D\U0001F3FD", []string{"ok", "\U0001F44D\U0001F3FD"}},
		{"Negation scope", "I do not like it", []string{"i", "do", "not", "like_NEG", "it_NEG"}},
		{"Contraction cue", "I don't like it", []string{"i", "don't", "like_NEG", "it_NEG"}},
		{"Curly apostrophe cue", "I don\u2019t like it", []string{"i", "don't", "like_NEG", "it_NEG"}},
		{"Scope ends at comma", "not good, great", []string{"not", "good_NEG", "great"}},
		{"Scope ends at question mark", "never again? yes", []string{"never", "again_NEG", "yes"}},
		{"Negated emote", "not Kappa", []string{"not", "Kappa_NEG"}},
		{"Negated emoji", "no \U0001F602", []string{"no", "\U0001F602_NEG"}},
		{"Upper case folded", "NOT BAD", []string{"not", "bad_NEG"}},
		{"Star emoji", "\u2b50", []string{"\u2b50"}},
		{"Star emoji after a word", "great\u2b50", []string{"great", "\u2b50"}},
		{"Flag emoji", "go \U0001F1FA\U0001F1F8!", []string{"go", "\U0001F1FA\U0001F1F8"}},
		{"Heart keeps its selector", "\u2764\ufe0f", []string{"\u2764\ufe0f"}},
		{"Watch emoji", "late\u231a", []string{"late", "\u231a"}},
		{"Keycap emoji", "top 1\ufe0f\u20e3", []string{"top", "1\ufe0f\u20e3"}},
	}

	tok := newTestTokenizer(t)
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := tok.Tokenize(tt.message, emotes)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Tokenize(%q) = %q, want %q", tt.message, got, tt.expected)
			}
		})
	}
}

func TestTokenizeWithoutEmoteVocabulary(t *testing.T) {
	tok := newTestTokenizer(t)
	got := tok.Tokenize("Kappa PogChamp", nil)
	want := []string{"kappa", "pogchamp"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %q, want %q", got, want)
	}
}

func TestTokenizeEmoteVocabularyChanges(t *testing.T) {
	tok := newTestTokenizer(t)

	first := []string{"Kappa"}
	second := []string{"PogChamp"}

	if got := tok.Tokenize("Kappa PogChamp", first); !reflect.DeepEqual(got, []string{"Kappa", "pogchamp"}) {
		t.Errorf("with %v: got %q", first, got)
	}
	if got := tok.Tokenize("Kappa PogChamp", second); !reflect.DeepEqual(got, []string{"kappa", "PogChamp"}) {
		t.Errorf("with %v: got %q", second, got)
	}
}

func TestTokenizeVocabularyMutatedInPlace(t *testing.T) {
	tok := newTestTokenizer(t)

	vocab := []string{"Kappa"}
	if got := tok.Tokenize("PogChamp", vocab); !reflect.DeepEqual(got, []string{"pogchamp"}) {
		t.Errorf("before change: got %q", got)
	}

	vocab[0] = "PogChamp"
	if got := tok.Tokenize("PogChamp", vocab); !reflect.DeepEqual(got, []string{"PogChamp"}) {
		t.Errorf("after change: got %q", got)
	}
	if got := tok.Tokenize("Kappa", vocab); !reflect.DeepEqual(got, []string{"kappa"}) {
		t.Errorf("replaced emote: got %q", got)
	}
}

func TestTokenizeSetMatchesTokenize(t *testing.T) {
	tok := newTestTokenizer(t)
	emotes := []string{"Kappa", "PogChamp"}
	message := "not Kappa, good PogChamp \U0001F602"

	got := tok.TokenizeSet(message, NewEmoteSet(emotes))
	if want := tok.Tokenize(message, emotes); !reflect.DeepEqual(got, want) {
		t.Errorf("TokenizeSet = %q, Tokenize = %q", got, want)
	}
}

func TestTokenizeSentenceBoundary(t *testing.T) {
	message := "This is not good. That was fun."
	want := []string{"this", "is", "not", "good_NEG", "that", "was", "fun"}

	segmented, err := NewChatTokenizer()
	if err != nil {
		t.Fatalf("NewChatTokenizer failed: %v", err)
	}

	for name, tok := range map[string]*ChatTokenizer{
		"segmented": segmented,
		"flat":      newTestTokenizer(t),
	} {
		t.Run(name, func(t *testing.T) {
			if got := tok.Tokenize(message, nil); !reflect.DeepEqual(got, want) {
				t.Errorf("Tokenize(%q) = %q, want %q", message, got, want)
			}
		})
	}
}

func TestTokenizeCustomNegations(t *testing.T) {
	tok := newTestTokenizer(t, UsingNegations([]string{"NAH"}), UsingScopeEnds("."))

	got := tok.Tokenize("nah good, really. fine", nil)
	want := []string{"nah", "good_NEG", "really_NEG", "fine"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %q, want %q", got, want)
	}
}

func TestTokenizeStopWords(t *testing.T) {
	tests := []struct {
		desc     string
		message  string
		expected []string
	}{
		{"Stop word dropped", "the programming", []string{"programming"}},
		{"Negation cue kept", "not the programming", []string{"not", "programming_NEG"}},
		{"Emote kept", "the Kappa", []string{"Kappa"}},
	}

	tok := newTestTokenizer(t, UsingStopWords("en"))
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := tok.Tokenize(tt.message, []string{"Kappa"})
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Tokenize(%q) = %q, want %q", tt.message, got, tt.expected)
			}
		})
	}
}

func TestSplitEmoji(t *testing.T) {
	tests := []struct {
		field    string
		expected []piece
	}{
		{"plain", []piece{{text: "plain"}}},
		{"\U0001F602", []piece{{text: "\U0001F602", emoji: true}}},
		{"a\U0001F602b", []piece{{text: "a"}, {text: "\U0001F602", emoji: true}, {text: "b"}}},
		{"\u2764\ufe0f!", []piece{{text: "\u2764\ufe0f", emoji: true}, {text: "!"}}},
		{"\U0001F468\u200d\U0001F469\u200d\U0001F467", []piece{{text: "\U0001F468\u200d\U0001F469\u200d\U0001F467", emoji: true}}},
		{"\u2b50", []piece{{text: "\u2b50", emoji: true}}},
		{"great\u2b50", []piece{{text: "great"}, {text: "\u2b50", emoji: true}}},
		{"\U0001F1FA\U0001F1F8", []piece{{text: "\U0001F1FA\U0001F1F8", emoji: true}}},
		{"\U0001F1FA\U0001F1F8\U0001F1EC\U0001F1E7", []piece{
			{text: "\U0001F1FA\U0001F1F8", emoji: true},
			{text: "\U0001F1EC\U0001F1E7", emoji: true},
		}},
		{"#\ufe0f\u20e3", []piece{{text: "#\ufe0f\u20e3", emoji: true}}},
		{"x#", []piece{{text: "x#"}}},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			if got := splitEmoji(tt.field); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("splitEmoji(%q) = %+v, want %+v", tt.field, got, tt.expected)
			}
		})
	}
}

func BenchmarkTokenize(b *testing.B) {
	tok, err := NewChatTokenizer()
	if err != nil {
		b.Fatal(err)
	}
	emotes := []string{"Kappa", "PogChamp", "LUL"}
	message := "That play was not good at all LUL but the ending PogChamp \U0001F602"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tok.Tokenize(message, emotes)
	}
}
