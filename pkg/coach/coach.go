// Package coach produces a beta by prompting a language model with the
// ordered holds and the reach between them. Model output is sanitized,
// checked against the holds and, when unusable, replaced by the heuristic
// beta.
package coach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/menta2k/boulder-beta/pkg/client"
	"github.com/menta2k/boulder-beta/pkg/heuristic"
	"github.com/menta2k/boulder-beta/pkg/types"
)

// ErrUnusableResponse marks model output that could not be turned into a beta
var ErrUnusableResponse = errors.New("model response is not a usable beta")

// Coach asks a language model for a beta and repairs or replaces what
// comes back
type Coach struct {
	client   client.LLMClient
	model    string
	fallback client.BetaAnalyzer

	// FallbackOnError also covers transport failures with the heuristic beta
	FallbackOnError bool
}

// NewCoach creates a coach using the given model. Unusable model output is
// replaced by the heuristic beta.
func NewCoach(llm client.LLMClient, model string) *Coach {
	return &Coach{client: llm, model: model, fallback: heuristic.New()}
}

// SetFallback replaces the analyzer used when the model output is unusable.
// A nil fallback makes unusable output an error.
func (c *Coach) SetFallback(a client.BetaAnalyzer) {
	c.fallback = a
}

// Analyze implements client.BetaAnalyzer without sending the photo
func (c *Coach) Analyze(ctx context.Context, req types.BetaRequest) (*types.BetaResponse, error) {
	return c.AnalyzeWithImage(ctx, req, "")
}

// AnalyzeWithImage sends the prompt together with the base64 route photo
func (c *Coach) AnalyzeWithImage(ctx context.Context, req types.BetaRequest, imageB64 string) (*types.BetaResponse, error) {
	if err := heuristic.Validate(req); err != nil {
		return nil, err
	}

	raw, err := c.client.SimpleQuery(ctx, c.model, BuildPrompt(req), imageB64)
	if err != nil {
		if c.FallbackOnError && c.fallback != nil {
			return c.fallback.Analyze(ctx, req)
		}
		return nil, fmt.Errorf("coach query failed: %w", err)
	}

	resp, err := ParseResponse(raw)
	if err == nil {
		resp, err = validateAndAdjust(resp, heuristic.Order(req.Holds))
	}
	if err != nil {
		if c.fallback != nil {
			return c.fallback.Analyze(ctx, req)
		}
		return nil, err
	}
	return resp, nil
}

// ParseResponse extracts the beta JSON from raw model output
func ParseResponse(raw string) (*types.BetaResponse, error) {
	raw = sanitizeModelJSON(raw)
	if !strings.HasPrefix(raw, "{") {
		return nil, fmt.Errorf("%w: no JSON object found", ErrUnusableResponse)
	}

	var resp types.BetaResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnusableResponse, err)
	}
	return &resp, nil
}

// validateAndAdjust fills coordinates the model left out from the ordered
// holds, drops moves pointing at holds that do not exist and recounts the
// summary
func validateAndAdjust(resp *types.BetaResponse, stops []heuristic.Stop) (*types.BetaResponse, error) {
	moves := make([]types.Move, 0, len(resp.Moves))
	for i, m := range resp.Moves {
		if m.HoldIndex == 0 {
			m.HoldIndex = i + 1
		}
		if m.HoldIndex < 1 || m.HoldIndex > len(stops) {
			continue
		}
		s := stops[m.HoldIndex-1]
		if m.X == 0 && m.Y == 0 {
			m.X, m.Y = s.X, s.Y
		}
		if m.Label == "" {
			m.Label = fmt.Sprint(m.HoldIndex)
		}
		if m.Arrow != nil && *m.Arrow == (types.Arrow{Direction: m.Arrow.Direction}) {
			if m.HoldIndex == 1 {
				m.Arrow = nil
			} else {
				prev := stops[m.HoldIndex-2]
				m.Arrow.FromX, m.Arrow.FromY = prev.X, prev.Y
				m.Arrow.ToX, m.Arrow.ToY = s.X, s.Y
			}
		}
		m.ShortTip = strings.TrimSpace(m.ShortTip)
		moves = append(moves, m)
	}
	if len(moves) == 0 {
		return nil, fmt.Errorf("%w: no moves", ErrUnusableResponse)
	}

	resp.Moves = moves
	resp.Summary.TotalMoves = len(moves)
	resp.Summary.KeyPoints = normalizeKeyPoints(resp.Summary.KeyPoints)
	if strings.TrimSpace(resp.Summary.Difficulty) == "" {
		resp.Summary.Difficulty = "unknown"
	}
	return resp, nil
}

// normalizeKeyPoints trims, dedupes and keeps at most four key points
func normalizeKeyPoints(points []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, 4)
	for _, p := range points {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
		if len(out) == 4 {
			break
		}
	}
	return out
}

var (
	reBlock    = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reLine     = regexp.MustCompile(`(?m)^\s*//.*$`)
	reTrailing = regexp.MustCompile(`,(\s*[}\]])`)
)

// sanitizeModelJSON removes code fences, comments, and trailing commas from JSON response
func sanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	// Strip triple-backtick fences if present
	if i := strings.Index(raw, "```"); i >= 0 {
		raw = raw[i+3:]
		if nl := strings.Index(raw, "\n"); nl >= 0 {
			raw = raw[nl+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.TrimSpace(raw)

	raw = reBlock.ReplaceAllString(raw, "")
	// whole-line comments only; URLs inside strings must survive
	raw = reLine.ReplaceAllString(raw, "")
	raw = reTrailing.ReplaceAllString(raw, "$1")

	// Keep only the outermost {...}
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}
