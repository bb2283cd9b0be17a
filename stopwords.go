package chatmood

import (
	"strings"
	"sync"
	"unicode"

	"github.com/bbalet/stopwords"
)

// stopWordFilter reports stop words for one language.
//
// The stopwords library does not export its lists, so a word is a stop
// word when cleaning it on its own leaves nothing behind. Results are
// memoized because chat vocabularies repeat heavily.
type stopWordFilter struct {
	lang string
	mu   sync.RWMutex
	memo map[string]bool
}

func newStopWordFilter(lang string) *stopWordFilter {
	return &stopWordFilter{lang: lang, memo: make(map[string]bool)}
}

func (f *stopWordFilter) isStopWord(word string) bool {
	// Only plain words are tested; the library discards digits and symbols.
	if !isWord(word) {
		return false
	}

	f.mu.RLock()
	stop, ok := f.memo[word]
	f.mu.RUnlock()
	if ok {
		return stop
	}

	stop = strings.TrimSpace(stopwords.CleanString(word, f.lang, false)) == ""

	f.mu.Lock()
	f.memo[word] = stop
	f.mu.Unlock()
	return stop
}

func isWord(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if !unicode.IsLetter(r) && r != '\'' {
			return false
		}
	}
	return true
}
