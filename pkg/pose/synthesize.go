// Package pose turns an ordered set of typed holds into a sequence of
// limb placements approximating the climber's body at each move, and draws
// those placements as stick figures.
//
// Synthesize is pure: it depends only on the holds it is given.
package pose

import (
	"fmt"
	"sort"

	"github.com/menta2k/boulder-beta/pkg/types"
)

// Offsets used when a limb has to be synthesized from too few holds.
const (
	singleStartReach = 30  // right hand next to a lone start hold
	singleFootSpread = 20  // feet either side of a lone foot hold
	startFootSpread  = 30  // feet either side of the start average
	startFootDrop    = 100 // feet below the start average
	footBelowHands   = 80  // feet never stay lower than this under the hands
	singleTopSpread  = 15  // hands either side of a lone top hold
)

// Partition splits holds by type, each group sorted in climbing order:
// start and foot by ascending x, middle bottom to top, top as marked.
func Partition(holds []types.Hold) (start, middle, top, foot []types.Hold) {
	for _, h := range holds {
		switch h.HoldType {
		case types.HoldStart:
			start = append(start, h)
		case types.HoldTop:
			top = append(top, h)
		case types.HoldFoot:
			foot = append(foot, h)
		default:
			middle = append(middle, h)
		}
	}
	sort.SliceStable(start, func(i, j int) bool { return start[i].X < start[j].X })
	sort.SliceStable(middle, func(i, j int) bool { return middle[i].Y > middle[j].Y })
	sort.SliceStable(foot, func(i, j int) bool { return foot[i].X < foot[j].X })
	return start, middle, top, foot
}

// Synthesize returns one pose for the start stance, one per middle hold and
// one for the top when a top hold exists.
func Synthesize(holds []types.Hold) []types.Pose {
	start, middle, top, foot := Partition(holds)

	current := startPose(start, foot)
	poses := make([]types.Pose, 0, 2+len(middle))
	poses = append(poses, current.Clone())

	leftNext := true
	for _, h := range middle {
		next := current.Clone()
		p := h.Point()
		if leftNext {
			next.LeftHand = &p
		} else {
			next.RightHand = &p
		}
		leftNext = !leftNext

		raiseFeet(&next)
		poses = append(poses, next.Clone())
		current = next
	}

	if len(top) > 0 {
		final := current.Clone()
		if len(top) >= 2 {
			final.LeftHand = point(top[0].Point())
			final.RightHand = point(top[1].Point())
		} else {
			t := top[0].Point()
			final.LeftHand = point(types.Point{X: t.X - singleTopSpread, Y: t.Y})
			final.RightHand = point(types.Point{X: t.X + singleTopSpread, Y: t.Y})
		}
		poses = append(poses, final)
	}
	return poses
}

func startPose(start, foot []types.Hold) types.Pose {
	var p types.Pose
	switch {
	case len(start) >= 2:
		p.LeftHand = point(start[0].Point())
		p.RightHand = point(start[1].Point())
	case len(start) == 1:
		s := start[0].Point()
		p.LeftHand = point(s)
		p.RightHand = point(types.Point{X: s.X + singleStartReach, Y: s.Y})
	}

	switch {
	case len(foot) >= 2:
		p.LeftFoot = point(foot[0].Point())
		p.RightFoot = point(foot[1].Point())
	case len(foot) == 1:
		f := foot[0].Point()
		p.LeftFoot = point(types.Point{X: f.X - singleFootSpread, Y: f.Y})
		p.RightFoot = point(types.Point{X: f.X + singleFootSpread, Y: f.Y})
	case len(start) > 0:
		var sx, sy float64
		for _, h := range start {
			sx += float64(h.X)
			sy += float64(h.Y)
		}
		n := float64(len(start))
		avg := types.Point{X: sx / n, Y: sy / n}
		p.LeftFoot = point(types.Point{X: avg.X - startFootSpread, Y: avg.Y + startFootDrop})
		p.RightFoot = point(types.Point{X: avg.X + startFootSpread, Y: avg.Y + startFootDrop})
	}
	return p
}

// raiseFeet lifts any foot hanging lower than footBelowHands under the
// hands. Feet are never lowered. Nothing moves until both hands are placed.
func raiseFeet(p *types.Pose) {
	if p.LeftHand == nil || p.RightHand == nil {
		return
	}
	target := (p.LeftHand.Y+p.RightHand.Y)/2 + footBelowHands
	for _, f := range []*types.Point{p.LeftFoot, p.RightFoot} {
		if f != nil && f.Y > target {
			f.Y = target
		}
	}
}

func point(p types.Point) *types.Point {
	return &p
}

// FrameKind tells where in the climb a frame sits
type FrameKind int

const (
	FrameStart FrameKind = iota
	FrameMove
	FrameTop
)

// Frame is a pose with its caption
type Frame struct {
	Kind  FrameKind
	Label string
	Pose  types.Pose
}

// Frames synthesizes the poses for holds and captions them
func Frames(holds []types.Hold) []Frame {
	_, _, top, _ := Partition(holds)
	poses := Synthesize(holds)

	frames := make([]Frame, len(poses))
	for i, p := range poses {
		f := Frame{Kind: FrameMove, Label: fmt.Sprintf("Move %d", i), Pose: p}
		switch {
		case i == 0:
			f.Kind, f.Label = FrameStart, "Start"
		case i == len(poses)-1 && len(top) > 0:
			f.Kind, f.Label = FrameTop, "Top"
		}
		frames[i] = f
	}
	return frames
}
