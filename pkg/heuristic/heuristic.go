// Package heuristic is the rule-based beta generator. It orders the marked
// holds, estimates reach distances from the image height and derives tips,
// crux flags and a rough grade without any model.
package heuristic

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/menta2k/boulder-beta/pkg/geometry"
	"github.com/menta2k/boulder-beta/pkg/types"
)

// WallHeightCM is the assumed real height covered by the full image
const WallHeightCM = 400

// Errors returned for requests that cannot be analyzed
var (
	ErrNoHolds       = errors.New("hold information is required")
	ErrTooFewHolds   = errors.New("at least 2 holds are required")
	ErrInvalidHeight = errors.New("image height must be positive")
)

// Direction classes for a move between two holds
const (
	DirUp      = "up"
	DirUpLeft  = "up-left"
	DirUpRight = "up-right"
	DirLeft    = "left"
	DirRight   = "right"
)

// Analyzer implements client.BetaAnalyzer with local rules
type Analyzer struct{}

// New creates a heuristic analyzer
func New() *Analyzer {
	return &Analyzer{}
}

// Analyze validates req and builds the beta
func (a *Analyzer) Analyze(ctx context.Context, req types.BetaRequest) (*types.BetaResponse, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Build(req.Holds, req.ImageHeight), nil
}

// Validate checks the request shape the service requires
func Validate(req types.BetaRequest) error {
	switch {
	case len(req.Holds) == 0:
		return ErrNoHolds
	case len(req.Holds) < 2:
		return ErrTooFewHolds
	case req.ImageHeight <= 0:
		return ErrInvalidHeight
	}
	return nil
}

// Stop is one hold in climbing order with its position inside its group
type Stop struct {
	X, Y     float64
	HoldType types.HoldType
	Index    int // 1-based within the group
	Total    int // size of the group
}

// Order arranges holds start, middle, top, each lowest first. Foot holds are
// not part of the hand sequence.
func Order(holds []types.Hold) []Stop {
	groups := map[types.HoldType][]types.Hold{}
	for _, h := range holds {
		t := h.HoldType
		if !t.Valid() {
			t = types.HoldMiddle
		}
		groups[t] = append(groups[t], h)
	}

	var out []Stop
	for _, t := range []types.HoldType{types.HoldStart, types.HoldMiddle, types.HoldTop} {
		g := groups[t]
		sort.SliceStable(g, func(i, j int) bool { return g[i].Y > g[j].Y })
		for i, h := range g {
			out = append(out, Stop{
				X: float64(h.X), Y: float64(h.Y),
				HoldType: t, Index: i + 1, Total: len(g),
			})
		}
	}
	return out
}

// DistanceCM estimates the real distance between two points, rounded to
// one decimal
func DistanceCM(from, to types.Point, imageHeight int) float64 {
	if imageHeight <= 0 {
		return 0
	}
	cm := geometry.Distance(from, to) * WallHeightCM / float64(imageHeight)
	return math.Round(cm*10) / 10
}

// Direction classifies the move from -> to. Image y grows downward.
func Direction(from, to types.Point) string {
	dx := to.X - from.X
	dy := from.Y - to.Y

	switch {
	case math.Abs(dx) < 30 && dy > 20:
		return DirUp
	case dx > 30 && dy > 20:
		return DirUpRight
	case dx < -30 && dy > 20:
		return DirUpLeft
	case math.Abs(dy) < 20 && dx > 30:
		return DirRight
	case math.Abs(dy) < 20 && dx < -30:
		return DirLeft
	case dx > 0 && dy > 0:
		return DirUpRight
	case dx < 0 && dy > 0:
		return DirUpLeft
	}
	return DirUp
}

// MoveTip returns the short tip, the detailed tip and whether the move is a
// crux for a reach of distanceCM in direction
func MoveTip(distanceCM float64, direction string) (short, detail string, crux bool) {
	switch {
	case distanceCM > 70:
		short, detail, crux = "Dyno!", "Far away - jump or use your maximum reach", true
	case distanceCM > 50:
		short, detail, crux = "Big reach", "Bring your feet up high, then reach", true
	case distanceCM > 30:
		short, detail = "Feet first!", "Move your feet first, shift your weight, then your hand"
	default:
		short, detail = "Static", "Move slowly and stay in balance"
	}

	switch {
	case strings.Contains(direction, "left"):
		detail += " / rotate your body left"
	case strings.Contains(direction, "right"):
		detail += " / rotate your body right"
	}
	return short, detail, crux
}

// Difficulty buckets the route by its longest reach and crux count
func Difficulty(maxDistanceCM float64, cruxCount int) string {
	switch {
	case maxDistanceCM > 70 || cruxCount >= 3:
		return "V4-V5 (hard)"
	case maxDistanceCM > 50 || cruxCount >= 2:
		return "V3-V4 (upper intermediate)"
	case maxDistanceCM > 30 || cruxCount >= 1:
		return "V2-V3 (intermediate)"
	}
	return "V1-V2 (easy)"
}

// Build generates the beta for holds on an image imageHeight pixels tall
func Build(holds []types.Hold, imageHeight int) *types.BetaResponse {
	stops := Order(holds)

	var startCount int
	for _, h := range holds {
		if h.HoldType == types.HoldStart {
			startCount++
		}
	}

	moves := make([]types.Move, 0, len(stops))
	var cruxCount int
	var maxDistance float64
	for i, s := range stops {
		m := types.Move{HoldIndex: i + 1, X: s.X, Y: s.Y}

		var arrow *types.Arrow
		var distance float64
		var direction string
		if i > 0 {
			prev := stops[i-1]
			from, to := types.Point{X: prev.X, Y: prev.Y}, types.Point{X: s.X, Y: s.Y}
			distance = DistanceCM(from, to, imageHeight)
			direction = Direction(from, to)
			arrow = &types.Arrow{FromX: prev.X, FromY: prev.Y, ToX: s.X, ToY: s.Y, Direction: direction}
		}

		switch s.HoldType {
		case types.HoldStart:
			m.Icon = types.HoldStart.Style().Icon
			if s.Total > 1 {
				m.Label = fmt.Sprintf("S%d", s.Index)
				if s.Index == 1 {
					m.ShortTip = "Two-hand start"
					m.DetailTip = fmt.Sprintf("%d start holds - use both hands and feet", s.Total)
				}
			} else {
				m.Label = "Start"
				m.ShortTip = "Start!"
				m.DetailTip = "Set up your starting position"
			}

		case types.HoldTop:
			m.Icon = types.HoldTop.Style().Icon
			m.Label = "Top"
			if s.Total > 1 {
				m.Label = fmt.Sprintf("T%d", s.Index)
			}
			m.ShortTip = "Top!"
			m.DetailTip = "Match the last hold to send"
			m.Arrow = arrow

		default:
			m.Label = fmt.Sprint(s.Index)
			if arrow != nil {
				m.Arrow = arrow
				m.ShortTip, m.DetailTip, m.IsCrux = MoveTip(distance, direction)
				if m.IsCrux {
					cruxCount++
				}
				maxDistance = math.Max(maxDistance, distance)
			}
		}
		moves = append(moves, m)
	}

	var keyPoints []string
	if startCount > 1 {
		keyPoints = append(keyPoints, fmt.Sprintf("%d start holds (both hands and feet)", startCount))
	}
	if cruxCount > 0 {
		keyPoints = append(keyPoints, fmt.Sprintf("%d crux sections", cruxCount))
	}
	if maxDistance > 50 {
		keyPoints = append(keyPoints, "Contains a big reach move")
	}
	if len(keyPoints) == 0 {
		keyPoints = append(keyPoints, "Fairly stable route")
	}

	return &types.BetaResponse{
		Moves: moves,
		Summary: types.Summary{
			Difficulty: Difficulty(maxDistance, cruxCount),
			KeyPoints:  keyPoints,
			TotalMoves: len(moves),
		},
	}
}
