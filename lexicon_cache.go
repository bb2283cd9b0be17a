package chatmood

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Increment when the snapshot layout changes.
const lexiconSnapshotSchema uint16 = 1

// Digest identifies a set of lexicon sources by content.
type Digest [sha256.Size]byte

// String returns the hex form of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// LexiconCache stores merged lexicons on disk keyed by the digest of
// their sources, so repeated runs skip parsing large tables.
// Safe for concurrent use.
type LexiconCache struct {
	mu  sync.RWMutex
	dir string
}

type lexiconSnapshot struct {
	Schema  uint16          `msgpack:"schema"`
	Entries []snapshotEntry `msgpack:"entries"`
	Emotes  []string        `msgpack:"emotes"`
}

type snapshotEntry struct {
	Word     string  `msgpack:"w"`
	Source   string  `msgpack:"s"`
	Negative float64 `msgpack:"neg"`
	Neutral  float64 `msgpack:"neu"`
	Positive float64 `msgpack:"pos"`
}

// OpenLexiconCache opens (creating if needed) a cache directory. An empty
// dir selects $XDG_CACHE_HOME/chatmood, falling back to ~/.cache/chatmood.
func OpenLexiconCache(dir string) (*LexiconCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "chatmood")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LexiconCache{dir: dir}, nil
}

func (c *LexiconCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "lexicon", key.String()+".mp")
}

// Put writes a snapshot of lex under key, replacing any previous one atomically.
func (c *LexiconCache) Put(key Digest, lex *Lexicon) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(snapshotOf(lex)); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get returns the lexicon stored under key. A missing entry or one written
// with another schema is a miss, not an error.
func (c *LexiconCache) Get(key Digest) (*Lexicon, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var snap lexiconSnapshot
	if err := msgpack.NewDecoder(f).Decode(&snap); err != nil {
		return nil, false, err
	}
	if snap.Schema != lexiconSnapshotSchema {
		return nil, false, nil
	}
	return snap.lexicon(), true, nil
}

func snapshotOf(lex *Lexicon) *lexiconSnapshot {
	snap := &lexiconSnapshot{
		Schema:  lexiconSnapshotSchema,
		Entries: make([]snapshotEntry, 0, len(lex.order)),
		Emotes:  lex.emotes,
	}
	for _, word := range lex.order {
		e := lex.words[word]
		snap.Entries = append(snap.Entries, snapshotEntry{
			Word:     e.Word,
			Source:   e.Source,
			Negative: e.Negative,
			Neutral:  e.Neutral,
			Positive: e.Positive,
		})
	}
	return snap
}

func (snap *lexiconSnapshot) lexicon() *Lexicon {
	lex := &Lexicon{
		words:    make(map[string]LexiconEntry, len(snap.Entries)),
		order:    make([]string, 0, len(snap.Entries)),
		emotes:   snap.Emotes,
		emoteSet: NewEmoteSet(snap.Emotes),
	}
	for _, e := range snap.Entries {
		lex.add(LexiconEntry{
			Word:   e.Word,
			Source: e.Source,
			Distribution: Distribution{
				Negative: e.Negative,
				Neutral:  e.Neutral,
				Positive: e.Positive,
			},
		})
	}
	return lex
}

// LoadLexiconCached behaves like LoadLexicon but consults cache first.
//
// The cache key covers every table's name, kind, delimiter and bytes, so
// any edit to a source file produces a miss. Cache failures are logged and
// never change the result. A nil cache disables caching.
func LoadLexiconCached(cache *LexiconCache, logger zerolog.Logger, specs ...TableSpec) (*Lexicon, error) {
	if len(specs) == 0 {
		return nil, ErrNoTables
	}

	sources := make([][]byte, len(specs))
	h := sha256.New()
	for i, spec := range specs {
		data, err := os.ReadFile(spec.Path)
		if err != nil {
			return nil, fmt.Errorf("error reading lexicon table %s: %w", spec.Name, err)
		}
		sources[i] = data
		fmt.Fprintf(h, "%s\x00%s\x00%c\x00%d\x00", spec.Name, spec.Kind, spec.delimiter(), len(data))
		h.Write(data)
	}
	var key Digest
	copy(key[:], h.Sum(nil))

	if lex, ok, err := cache.Get(key); err != nil {
		logger.Warn().Err(err).Str("digest", key.String()).Msg("lexicon cache read failed")
	} else if ok {
		logger.Debug().Str("digest", key.String()).Int("words", lex.Len()).Msg("lexicon cache hit")
		return lex, nil
	}

	tables := make([]Table, 0, len(specs))
	for i, spec := range specs {
		table, err := parseTable(spec, sources[i])
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	lex, err := BuildLexicon(tables...)
	if err != nil {
		return nil, err
	}

	if err := cache.Put(key, lex); err != nil {
		logger.Warn().Err(err).Str("digest", key.String()).Msg("lexicon cache write failed")
	}
	return lex, nil
}
