package chatmood

import (
	"context"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Analyzer scores chat messages against one lexicon.
//
// An Analyzer is immutable once built and safe for concurrent use.
type Analyzer struct {
	lexicon   *Lexicon
	tokenizer Tokenizer
	combiner  Combiner
	workers   int
	logger    zerolog.Logger
}

// setTokenizer is implemented by tokenizers that accept a prebuilt emote set.
type setTokenizer interface {
	TokenizeSet(message string, emotes EmoteSet) []string
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithTokenizer replaces the default ChatTokenizer.
func WithTokenizer(t Tokenizer) Option {
	return func(a *Analyzer) {
		a.tokenizer = t
	}
}

// WithCombiner replaces the default ProductCombiner.
func WithCombiner(c Combiner) Option {
	return func(a *Analyzer) {
		a.combiner = c
	}
}

// WithWorkers sets how many records Infer scores concurrently. Values
// below 1 use GOMAXPROCS; 1 scores sequentially.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithLogger sets the logger used for batch summaries.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// NewAnalyzer creates an analyzer over lex.
func NewAnalyzer(lex *Lexicon, opts ...Option) (*Analyzer, error) {
	if lex == nil {
		return nil, ErrNoLexicon
	}

	a := &Analyzer{
		lexicon:  lex,
		combiner: ProductCombiner{},
		workers:  1,
		logger:   zerolog.Nop(),
	}
	for _, applyOpt := range opts {
		applyOpt(a)
	}

	if a.tokenizer == nil {
		tok, err := NewChatTokenizer()
		if err != nil {
			return nil, err
		}
		a.tokenizer = tok
	}
	if a.workers < 1 {
		a.workers = runtime.GOMAXPROCS(0)
	}

	return a, nil
}

// Lexicon returns the lexicon the analyzer scores against.
func (a *Analyzer) Lexicon() *Lexicon {
	return a.lexicon
}

// Explanation is the full trace of scoring one message.
type Explanation struct {
	Tokens   []string
	Evidence Evidence
	Prediction
}

// Score classifies a single message.
func (a *Analyzer) Score(message string) Prediction {
	return a.Explain(message).Prediction
}

// Explain classifies a message and keeps the intermediate tokens and evidence.
//
// A message with no tokens, no lexicon matches, or evidence whose classes
// sum to zero is left unscored with Prior() as its class scores.
func (a *Analyzer) Explain(message string) Explanation {
	exp := Explanation{Prediction: unscored()}

	if st, ok := a.tokenizer.(setTokenizer); ok {
		exp.Tokens = st.TokenizeSet(message, a.lexicon.emoteSet)
	} else {
		exp.Tokens = a.tokenizer.Tokenize(message, a.lexicon.Emotes())
	}
	if len(exp.Tokens) == 0 {
		return exp
	}

	exp.Evidence = a.combiner.Combine(exp.Tokens, a.lexicon)
	exp.Matched = exp.Evidence.Matched
	if exp.Evidence.Matched == 0 {
		return exp
	}

	scores, ok := Normalize(exp.Evidence.Products)
	if !ok {
		return exp
	}

	exp.Label = Decide(exp.Evidence.Products)
	exp.Scores = scores
	exp.Inferred = true
	return exp
}

// InferStats summarizes a batch run.
type InferStats struct {
	Total    int
	Inferred int
	Unscored int
	Elapsed  time.Duration
}

// Infer scores every record in place, reading the message from column.
//
// Previous predictions are overwritten, so running Infer twice gives the
// same result. Records keep their order; with more than one worker they
// are scored concurrently and each worker writes only its own record.
func (a *Analyzer) Infer(ctx context.Context, records []*Record, column string) (InferStats, error) {
	start := time.Now()
	if column == "" {
		column = DefaultMessageColumn
	}

	if a.workers == 1 || len(records) < 2 {
		for _, rec := range records {
			rec.Prediction = a.Score(rec.Message(column))
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(a.workers, len(records)))
		for _, rec := range records {
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				rec.Prediction = a.Score(rec.Message(column))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return InferStats{}, err
		}
	}

	stats := InferStats{Total: len(records), Elapsed: time.Since(start)}
	for _, rec := range records {
		if rec.Inferred {
			stats.Inferred++
		} else {
			stats.Unscored++
		}
	}

	a.logger.Debug().
		Int("records", stats.Total).
		Int("inferred", stats.Inferred).
		Int("unscored", stats.Unscored).
		Int("workers", a.workers).
		Dur("elapsed", stats.Elapsed).
		Msg("batch scored")

	return stats, nil
}

// InferDataset is Infer over ds.Records.
func (a *Analyzer) InferDataset(ctx context.Context, ds *Dataset, column string) (InferStats, error) {
	return a.Infer(ctx, ds.Records, column)
}
