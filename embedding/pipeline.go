package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/sentsim/ai"
	"github.com/poiesic/sentsim/core"
	"github.com/poiesic/sentsim/tokenizer"
)

// Pipeline embeds text with a local inference backend.
type Pipeline struct {
	tokenizer *tokenizer.Tokenizer
	backend   ai.InferenceBackend
	logger    *slog.Logger
}

var _ ai.Embedder = (*Pipeline)(nil)

// NewPipeline creates a pipeline that tokenizes with tok and runs backend.
func NewPipeline(tok *tokenizer.Tokenizer, backend ai.InferenceBackend, opts ...Option) (*Pipeline, error) {
	if tok == nil {
		return nil, ErrTokenizerRequired
	}
	if backend == nil {
		return nil, ErrBackendRequired
	}
	s, err := applyOptions("embedding-pipeline", opts)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		tokenizer: tok,
		backend:   backend,
		logger:    s.logger,
	}, nil
}

// Embed runs one token sequence through the backend and returns the
// mean-pooled, L2-normalized sentence vector.
func (p *Pipeline) Embed(ctx context.Context, seq tokenizer.TokenSequence) ([]float32, error) {
	input := ai.ModelInput{
		InputIDs:      seq.IDs,
		AttentionMask: seq.Mask,
		SegmentIDs:    seq.Segments,
	}

	out, err := p.backend.Infer(ctx, input)
	if err != nil {
		p.logger.Error("inference failed", "tokens", seq.Len(), "err", err)
		if !errors.Is(err, core.ErrInferenceFailure) {
			err = fmt.Errorf("%w: %w", core.ErrInferenceFailure, err)
		}
		return nil, err
	}

	pooled, err := MeanPool(out, seq.Mask)
	if err != nil {
		p.logger.Error("pooling failed", "err", err)
		return nil, err
	}
	return Normalize(pooled), nil
}

// EmbedText tokenizes and embeds a single text.
func (p *Pipeline) EmbedText(ctx context.Context, text string) ([]float32, error) {
	seq := p.tokenizer.Encode(text)
	p.logger.Debug("embedding text", "length", len(text), "tokens", seq.Real())
	return p.Embed(ctx, seq)
}

// EmbedTexts embeds texts one at a time, in order.
func (p *Pipeline) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := p.EmbedText(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}
