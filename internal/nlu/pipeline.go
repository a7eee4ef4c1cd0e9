package nlu

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/BTreeMap/DialogCore/internal/models"
)

// DefaultAnnotatorTimeout bounds each annotator call.
const DefaultAnnotatorTimeout = 1500 * time.Millisecond

// Request is what every annotator sees for one turn.
type Request struct {
	ConversationID string
	Text           string
	Normalized     string
	Tokens         []string
	CurrentEntity  *models.Entity
	// History holds prior utterances, oldest first, alternating bot and user.
	History []string
}

// Result writes an annotator's output into the bundle. Results are applied
// sequentially after every annotator has finished.
type Result func(*models.Annotations)

// Annotator produces one field of the bundle.
type Annotator interface {
	Name() string
	Annotate(ctx context.Context, req *Request) (Result, error)
}

// Opts configures a Pipeline.
type Opts struct {
	Annotators []Annotator
	Timeout    time.Duration
	Neural     NeuralGenerator
}

// Option is a functional option for NewPipeline.
type Option func(*Opts)

// WithAnnotators replaces the annotator set.
func WithAnnotators(a ...Annotator) Option {
	return func(o *Opts) { o.Annotators = a }
}

// WithTimeout sets the per-annotator timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) { o.Timeout = d }
}

// WithNeuralGenerator enables the per-turn neural future.
func WithNeuralGenerator(g NeuralGenerator) Option {
	return func(o *Opts) { o.Neural = g }
}

// Pipeline runs annotators concurrently and joins them into one bundle.
type Pipeline struct {
	annotators []Annotator
	timeout    time.Duration
	neural     NeuralGenerator
}

// NewPipeline builds a pipeline. Without WithAnnotators it runs none.
func NewPipeline(opts ...Option) *Pipeline {
	o := Opts{Timeout: DefaultAnnotatorTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultAnnotatorTimeout
	}
	return &Pipeline{annotators: o.Annotators, timeout: o.Timeout, neural: o.Neural}
}

// Annotate builds the bundle for one utterance. Annotator failures and
// timeouts are logged and leave their field nil; only cancellation of ctx
// is returned as an error.
func (p *Pipeline) Annotate(ctx context.Context, req Request) (*models.Annotations, error) {
	if req.Normalized == "" {
		req.Normalized = Normalize(req.Text)
	}
	if req.Tokens == nil {
		req.Tokens = Tokenize(req.Normalized)
	}
	ann := &models.Annotations{Text: req.Text, Normalized: req.Normalized, Tokens: req.Tokens}

	if p.neural != nil {
		ann.Neural = StartNeural(ctx, p.neural, req, p.timeout)
	}

	results := make([]Result, len(p.annotators))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range p.annotators {
		g.Go(func() error {
			start := time.Now()
			res, err := p.run(gctx, a, &req)
			if err != nil {
				slog.Warn("Pipeline.Annotate: annotator failed", "annotator", a.Name(),
					"conversation_id", req.ConversationID, "error", err, "elapsed", time.Since(start))
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}
	for _, res := range results {
		if res != nil {
			res(ann)
		}
	}
	slog.Debug("Pipeline.Annotate: bundle ready", "conversation_id", req.ConversationID,
		"normalized", ann.Normalized, "offensive", ann.IsOffensive())
	return ann, nil
}

type outcome struct {
	res Result
	err error
}

func (p *Pipeline) run(ctx context.Context, a Annotator, req *Request) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		res, err := a.Annotate(ctx, req)
		ch <- outcome{res: res, err: err}
	}()

	select {
	case o := <-ch:
		return o.res, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
