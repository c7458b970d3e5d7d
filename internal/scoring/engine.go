// Package scoring turns a place's review set into sakura/fraud risk scores.
//
// The engine is a pure function of its input: no I/O, no clock, no shared
// mutable state. A single *Engine may be used from many goroutines.
package scoring

import "strings"

type Engine struct {
	cfg        Config
	lexicon    []lexEntry
	suffixes   []string
	similarity Similarity
}

type Option func(*Engine)

// WithSimilarity replaces the name-similarity metric (default NormalizedLevenshtein).
func WithSimilarity(fn Similarity) Option {
	return func(e *Engine) {
		if fn != nil {
			e.similarity = fn
		}
	}
}

func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:        cfg,
		lexicon:    buildLexicon(cfg.Keywords),
		similarity: NormalizedLevenshtein,
	}
	for _, s := range cfg.BusinessSuffixes {
		if n := strings.ToLower(normalizeText(s)); n != "" {
			e.suffixes = append(e.suffixes, n)
		}
	}
	if e.cfg.Language == "" {
		e.cfg.Language = LangJA
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) Config() Config { return e.cfg }

// Analyze validates the input and scores it. On a validation error no
// partial result is returned.
func (e *Engine) Analyze(in Input) (Result, error) {
	if err := validate(in); err != nil {
		return Result{}, err
	}

	signals := e.extract(in)
	hits, ratio := e.matchKeywords(in.Reviews)
	signals.FraudKeyword = ratio

	sakura := e.sakuraScore(signals)
	fraud := e.fraudScore(signals)
	fs := e.findings(signals, hits)

	return Result{
		SakuraScore:   sakura,
		FraudScore:    fraud,
		RiskLabel:     Classify(sakura, fraud),
		Signals:       signals,
		FraudKeywords: hits,
		Comments:      Explain(fs, e.cfg.Language),
		Findings:      fs,
	}, nil
}
