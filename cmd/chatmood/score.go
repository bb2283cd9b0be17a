package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tsawler/chatmood"
)

var scoreCmd = &cobra.Command{
	Use:   "score [flags] input",
	Short: "Label every message of a dataset or chat log",
	Long: `Score reads a delimited dataset (or a chat log), labels each message and
writes the records back out with pred_sentiment, class scores and inferred
columns. Use "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringP("output", "o", "-", "output file, - for stdout")
	scoreCmd.Flags().String("format", "", "input format (auto|csv|tsv|chatlog)")
	scoreCmd.Flags().String("output-format", "", "output format (csv|tsv)")
	scoreCmd.Flags().String("message-column", "", "column holding the message text")
	scoreCmd.Flags().String("score-format", "", "class score layout (joined|split)")
	scoreCmd.Flags().String("sqlite", "", "also store predictions in this SQLite database")
	addEngineFlags(scoreCmd)
}

// addEngineFlags registers the flags shared by commands that build an analyzer.
func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().String("combiner", "", "evidence combiner (product|log)")
	cmd.Flags().Int("workers", 0, "records scored concurrently, 0 keeps config")
	cmd.Flags().String("stopwords", "", "drop stop words of this ISO 639-1 language")
	cmd.Flags().Bool("no-cache", false, "do not use the lexicon snapshot cache")
}

func applyEngineFlags(cmd *cobra.Command, cfg *config) error {
	if v, _ := cmd.Flags().GetString("combiner"); v != "" {
		if _, err := combinerFor(v); err != nil {
			return err
		}
		cfg.Engine.Combiner = v
	}
	if v, _ := cmd.Flags().GetInt("workers"); v != 0 {
		cfg.Engine.Workers = v
	}
	if v, _ := cmd.Flags().GetString("stopwords"); v != "" {
		cfg.Engine.StopWords = v
	}
	if v, _ := cmd.Flags().GetBool("no-cache"); v {
		cfg.Cache.Enabled = false
	}
	return nil
}

// buildAnalyzer loads the lexicon (through the cache when enabled) and
// wires the configured tokenizer and combiner.
func buildAnalyzer(e *env) (*chatmood.Analyzer, error) {
	specs := e.cfg.tableSpecs()

	var (
		lex *chatmood.Lexicon
		err error
	)
	if e.cfg.Cache.Enabled {
		cache, cerr := chatmood.OpenLexiconCache(e.cfg.Cache.Dir)
		if cerr != nil {
			e.logger.Warn().Err(cerr).Msg("lexicon cache unavailable")
		}
		lex, err = chatmood.LoadLexiconCached(cache, e.logger, specs...)
	} else {
		lex, err = chatmood.LoadLexicon(specs...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load lexicon: %w", err)
	}
	e.logger.Info().
		Int("tables", len(specs)).
		Int("words", lex.Len()).
		Int("emotes", len(lex.Emotes())).
		Msg("lexicon loaded")

	tok, err := chatmood.NewChatTokenizer(
		chatmood.UsingStopWords(e.cfg.Engine.StopWords),
		chatmood.UsingSentenceSegmentation(e.cfg.Engine.Segment),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build tokenizer: %w", err)
	}
	combiner, err := combinerFor(e.cfg.Engine.Combiner)
	if err != nil {
		return nil, err
	}

	return chatmood.NewAnalyzer(lex,
		chatmood.WithTokenizer(tok),
		chatmood.WithCombiner(combiner),
		chatmood.WithWorkers(e.cfg.Engine.Workers),
		chatmood.WithLogger(e.logger),
	)
}

func runScore(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	if err := applyEngineFlags(cmd, &e.cfg); err != nil {
		return err
	}
	flags := cmd.Flags()
	if v, _ := flags.GetString("format"); v != "" {
		e.cfg.Input.Format = v
	}
	if v, _ := flags.GetString("output-format"); v != "" {
		e.cfg.Output.Format = v
	}
	if v, _ := flags.GetString("message-column"); v != "" {
		e.cfg.Input.MessageColumn = v
	}
	if v, _ := flags.GetString("score-format"); v != "" {
		e.cfg.Output.ScoreFormat = v
	}
	if v, _ := flags.GetString("sqlite"); v != "" {
		e.cfg.Output.SQLite = v
	}
	if err := e.cfg.validate(); err != nil {
		return err
	}

	runID := uuid.NewString()
	logger := e.logger.With().Str("run_id", runID).Logger()
	e.logger = logger

	analyzer, err := buildAnalyzer(e)
	if err != nil {
		return err
	}

	ds, err := readInput(e, args[0])
	if err != nil {
		return err
	}

	stats, err := analyzer.InferDataset(cmd.Context(), ds, e.cfg.Input.MessageColumn)
	if err != nil {
		return fmt.Errorf("inference failed: %w", err)
	}

	output, _ := flags.GetString("output")
	if err := writeOutput(e, output, ds); err != nil {
		return err
	}

	if e.cfg.Output.SQLite != "" {
		if err := storeSQLite(cmd, e, runID, ds); err != nil {
			return err
		}
	}

	logger.Info().
		Int("records", stats.Total).
		Int("inferred", stats.Inferred).
		Int("unscored", stats.Unscored).
		Dur("elapsed", stats.Elapsed).
		Msg("scoring finished")

	if !e.quiet {
		printSummary(cmd.ErrOrStderr(), ds, stats)
	}
	return nil
}

func readInput(e *env, path string) (*chatmood.Dataset, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	format := e.cfg.Input.Format
	if format == "auto" {
		format = formatFromExt(path)
	}

	if format == "chatlog" {
		ds, stats, err := chatmood.ParseChatLog(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read chat log: %w", err)
		}
		if stats.Malformed > 0 {
			e.logger.Warn().Int("lines", stats.Malformed).Msg("skipped malformed chat log lines")
		}
		e.cfg.Input.MessageColumn = chatmood.DefaultMessageColumn
		return ds, nil
	}

	delim := ','
	if format == "tsv" {
		delim = '\t'
	}
	ds, err := chatmood.ReadDataset(r, delim, e.cfg.Input.MessageColumn)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return ds, nil
}

// formatFromExt maps .tsv to tsv, .txt and .log to chatlog and anything
// else to csv.
func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv":
		return "tsv"
	case ".txt", ".log":
		return "chatlog"
	default:
		return "csv"
	}
}

func writeOutput(e *env, path string, ds *chatmood.Dataset) error {
	scoreFormat, err := chatmood.ParseScoreFormat(e.cfg.Output.ScoreFormat)
	if err != nil {
		return err
	}
	opts := chatmood.WriteOptions{Delimiter: ',', ScoreFormat: scoreFormat}
	if e.cfg.Output.Format == "tsv" {
		opts.Delimiter = '\t'
	}

	if path == "-" {
		return chatmood.WriteDataset(os.Stdout, ds, opts)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := chatmood.WriteDataset(f, ds, opts); err != nil {
		f.Close()
		return fmt.Errorf("failed to write output: %w", err)
	}
	return f.Close()
}

func storeSQLite(cmd *cobra.Command, e *env, runID string, ds *chatmood.Dataset) error {
	db, err := chatmood.OpenSQLite(e.cfg.Output.SQLite)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := chatmood.WriteSQLite(cmd.Context(), db, e.cfg.Output.SQLiteTable, runID, ds); err != nil {
		return fmt.Errorf("failed to store predictions: %w", err)
	}
	e.logger.Info().Str("database", e.cfg.Output.SQLite).Str("table", e.cfg.Output.SQLiteTable).Msg("predictions stored")
	return nil
}

func printSummary(w io.Writer, ds *chatmood.Dataset, stats chatmood.InferStats) {
	counts := map[chatmood.Label]int{}
	for _, rec := range ds.Records {
		counts[rec.Label]++
	}

	bold := color.New(color.Bold)
	fmt.Fprintf(w, "%s %d messages, %d inferred, %d unscored in %s\n",
		bold.Sprint("scored"), stats.Total, stats.Inferred, stats.Unscored, stats.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "  %s %d  %s %d  %s %d\n",
		color.GreenString("positive"), counts[chatmood.Positive],
		color.YellowString("neutral"), counts[chatmood.Neutral],
		color.RedString("negative"), counts[chatmood.Negative])
}
