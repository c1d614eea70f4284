package coach

import (
	"fmt"
	"strings"

	"github.com/menta2k/boulder-beta/pkg/heuristic"
	"github.com/menta2k/boulder-beta/pkg/types"
)

const promptHeader = `You are an experienced bouldering coach. Analyze the hold sequence below and recommend the best beta (climbing sequence).`

const domainKnowledge = `## Bouldering knowledge

### Grip by hold type
- Jug: big handle, secure grip
- Crimp: small edge, fingertip power grip
- Sloper: rounded hold, friction and wrist angle matter
- Pinch: squeeze between thumb and fingers
- Pocket: one to three fingers inside

### Moves by distance
- up to 20cm: static, controlled movement
- 20-40cm: reach with body tension
- 40-60cm: dynamic move or look for an intermediate
- over 60cm: consider a dyno

### Technique by direction
- Up: foot placement is key, needs core strength
- Up-right / up-left: rotate the body, balance on the opposite foot
- Sideways: cross-over or match

### Advanced technique
- Heel hook, toe hook, flagging, drop knee, matching

### Crux criteria
- dynamic moves of 50cm or more
- sudden drop in hold size
- moves that need a change of direction
- holds that need a special body position`

const responseFormat = `## Response format
Reply with JSON only, in exactly this shape:

{
  "moves": [
    {"holdIndex": 1, "label": "Start", "icon": "🚀", "shortTip": null, "isCrux": false, "arrow": null},
    {"holdIndex": 2, "label": "1", "arrow": {"fromX": 0, "fromY": 0, "toX": 0, "toY": 0, "direction": "up-left"}, "shortTip": "Feet first!", "isCrux": false}
  ],
  "summary": {"difficulty": "V2-V3", "keyPoints": ["crux description", "key technique"], "totalMoves": %d}
}

## Rules
1. shortTip is a tip of at most three words (for example "Heel hook!", "Wide feet", "Rotate")
2. The first hold is "Start" with 🚀, the last hold is "Top" with 🏁
3. isCrux is true for moves of 40cm or more or moves that need a complex body position
4. difficulty uses the V-scale (V0 to V16)
5. keyPoints has two to four entries
6. holdIndex refers to the numbered holds above; arrows run from the previous hold
7. JSON only. No markdown, no code fences, no comments, no trailing commas.`

// BuildPrompt describes the ordered holds and the moves between them
func BuildPrompt(req types.BetaRequest) string {
	stops := heuristic.Order(req.Holds)

	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString("\n\n## Holds\n")
	for i, s := range stops {
		role := s.HoldType.String()
		switch {
		case i == 0:
			role = "start"
		case i == len(stops)-1:
			role = "top"
		}
		fmt.Fprintf(&b, "Hold %d (%s): (%.0f, %.0f)\n", i+1, role, s.X, s.Y)
	}

	b.WriteString("\n## Moves\n")
	for i := 1; i < len(stops); i++ {
		from := types.Point{X: stops[i-1].X, Y: stops[i-1].Y}
		to := types.Point{X: stops[i].X, Y: stops[i].Y}
		fmt.Fprintf(&b, "Hold %d -> %d: %s, about %.1fcm\n",
			i, i+1, heuristic.Direction(from, to), heuristic.DistanceCM(from, to, req.ImageHeight))
	}

	fmt.Fprintf(&b, "\nThe image is %dx%d pixels; y grows downward.\n\n", req.ImageWidth, req.ImageHeight)
	b.WriteString(domainKnowledge)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, responseFormat, len(stops))
	b.WriteString("\n\nGive a realistic, practical beta based on real bouldering experience.")
	return b.String()
}
