package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/tsawler/chatmood"
)

type config struct {
	Lexicon lexiconConfig `toml:"lexicon"`
	Input   inputConfig   `toml:"input"`
	Output  outputConfig  `toml:"output"`
	Engine  engineConfig  `toml:"engine"`
	Cache   cacheConfig   `toml:"cache"`
	Log     logConfig     `toml:"log"`

	// directory relative paths are resolved against
	root string
}

type lexiconConfig struct {
	Dir    string        `toml:"dir"`
	Tables []tableConfig `toml:"tables"`
}

type tableConfig struct {
	Name      string `toml:"name"`
	Kind      string `toml:"kind"`
	Path      string `toml:"path"`
	Delimiter string `toml:"delimiter"`
}

type inputConfig struct {
	Format        string `toml:"format"` // auto, csv, tsv or chatlog
	MessageColumn string `toml:"message_column"`
}

type outputConfig struct {
	Format      string `toml:"format"` // csv or tsv
	ScoreFormat string `toml:"score_format"`
	SQLite      string `toml:"sqlite"`
	SQLiteTable string `toml:"sqlite_table"`
}

type engineConfig struct {
	Combiner  string `toml:"combiner"` // product or log
	Workers   int    `toml:"workers"`
	StopWords string `toml:"stopwords"`
	Segment   bool   `toml:"segment"`
}

type cacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type logConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // auto, console or json
}

func defaultConfig() config {
	return config{
		Lexicon: lexiconConfig{Dir: "lexica"},
		Input:   inputConfig{Format: "auto", MessageColumn: chatmood.DefaultMessageColumn},
		Output:  outputConfig{Format: "csv", ScoreFormat: string(chatmood.ScoresJoined), SQLiteTable: "predictions"},
		Engine:  engineConfig{Combiner: "product", Workers: 1, Segment: true},
		Log:     logConfig{Level: "info", Format: "auto"},
		root:    ".",
	}
}

// loadConfig reads an optional TOML file on top of the defaults and then
// applies CHATMOOD_* environment overrides.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	if path != "" {
		meta, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
		}
		if meta.IsDefined("lexicon", "tables") && len(cfg.Lexicon.Tables) == 0 {
			return config{}, fmt.Errorf("%s: [lexicon].tables is empty", path)
		}
		cfg.root = filepath.Dir(path)
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *config) {
	if v := os.Getenv("CHATMOOD_LEXICON_DIR"); v != "" {
		cfg.Lexicon.Dir = v
	}
	if v := os.Getenv("CHATMOOD_MESSAGE_COLUMN"); v != "" {
		cfg.Input.MessageColumn = v
	}
	if v := os.Getenv("CHATMOOD_COMBINER"); v != "" {
		cfg.Engine.Combiner = v
	}
	if v := os.Getenv("CHATMOOD_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.Workers = n
		}
	}
	if v := os.Getenv("CHATMOOD_STOPWORDS"); v != "" {
		cfg.Engine.StopWords = v
	}
	if v := os.Getenv("CHATMOOD_CACHE"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Cache.Enabled = enabled
		}
	}
	if v := os.Getenv("CHATMOOD_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("CHATMOOD_SQLITE"); v != "" {
		cfg.Output.SQLite = v
	}
	if v := os.Getenv("CHATMOOD_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CHATMOOD_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func (cfg config) validate() error {
	for i, t := range cfg.Lexicon.Tables {
		if strings.TrimSpace(t.Path) == "" {
			return fmt.Errorf("[lexicon].tables[%d]: missing path", i)
		}
		if _, err := chatmood.ParseTableKind(t.Kind); err != nil {
			return fmt.Errorf("[lexicon].tables[%d]: %w", i, err)
		}
		if utf8.RuneCountInString(unescapeDelimiter(t.Delimiter)) > 1 {
			return fmt.Errorf("[lexicon].tables[%d]: delimiter must be a single character", i)
		}
	}
	switch cfg.Input.Format {
	case "auto", "csv", "tsv", "chatlog":
	default:
		return fmt.Errorf("[input].format: unknown format %q", cfg.Input.Format)
	}
	switch cfg.Output.Format {
	case "csv", "tsv":
	default:
		return fmt.Errorf("[output].format: unknown format %q", cfg.Output.Format)
	}
	if _, err := chatmood.ParseScoreFormat(cfg.Output.ScoreFormat); err != nil {
		return fmt.Errorf("[output].score_format: %w", err)
	}
	if _, err := combinerFor(cfg.Engine.Combiner); err != nil {
		return fmt.Errorf("[engine].combiner: %w", err)
	}
	return nil
}

// tableSpecs resolves the configured tables, falling back to the default
// emote, emoji, vader trio inside the lexicon directory.
func (cfg config) tableSpecs() []chatmood.TableSpec {
	if len(cfg.Lexicon.Tables) == 0 {
		return chatmood.DefaultTableSpecs(cfg.resolve(cfg.Lexicon.Dir))
	}

	specs := make([]chatmood.TableSpec, 0, len(cfg.Lexicon.Tables))
	for _, t := range cfg.Lexicon.Tables {
		kind, _ := chatmood.ParseTableKind(t.Kind)
		name := t.Name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(t.Path), filepath.Ext(t.Path))
		}
		var delim rune
		if d := unescapeDelimiter(t.Delimiter); d != "" {
			delim, _ = utf8.DecodeRuneInString(d)
		}
		specs = append(specs, chatmood.TableSpec{
			Name:      name,
			Kind:      kind,
			Path:      cfg.resolve(t.Path),
			Delimiter: delim,
		})
	}
	return specs
}

func (cfg config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cfg.root, path)
}

func unescapeDelimiter(s string) string {
	if s == `\t` {
		return "\t"
	}
	return s
}

func combinerFor(name string) (chatmood.Combiner, error) {
	switch name {
	case "", "product":
		return chatmood.ProductCombiner{}, nil
	case "log":
		return chatmood.LogSpaceCombiner{}, nil
	default:
		return nil, fmt.Errorf("unknown combiner %q", name)
	}
}
