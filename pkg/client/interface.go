package client

import (
	"context"

	"github.com/menta2k/boulder-beta/pkg/types"
)

// BetaAnalyzer turns marked holds into an annotated move list
type BetaAnalyzer interface {
	Analyze(ctx context.Context, req types.BetaRequest) (*types.BetaResponse, error)
}

// AnalyzerFunc adapts a function to BetaAnalyzer
type AnalyzerFunc func(ctx context.Context, req types.BetaRequest) (*types.BetaResponse, error)

// Analyze calls f
func (f AnalyzerFunc) Analyze(ctx context.Context, req types.BetaRequest) (*types.BetaResponse, error) {
	return f(ctx, req)
}

// LLMClient sends a single prompt, optionally with a base64 image, and
// returns the model's raw text answer
type LLMClient interface {
	SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error)
}
