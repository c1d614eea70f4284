package types

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"
)

// Point is a 2D position. Its coordinate space depends on context:
// image-intrinsic pixels for holds, moves and poses, display or surface
// pixels inside the renderers.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HoldType classifies a marked hold
type HoldType int

const (
	HoldStart HoldType = iota
	HoldMiddle
	HoldTop
	HoldFoot

	numHoldTypes
)

// HoldTypes lists every hold type in declaration order
func HoldTypes() []HoldType {
	return []HoldType{HoldStart, HoldMiddle, HoldTop, HoldFoot}
}

// HoldStyle is the visual treatment of a hold type
type HoldStyle struct {
	Name  string
	Color color.NRGBA
	Icon  string // emoji used by the wire format and text UIs
	Glyph string // raster stand-in for Icon; empty means draw the order number
}

var holdStyles = [...]HoldStyle{
	HoldStart:  {Name: "start", Color: color.NRGBA{0x22, 0xc5, 0x5e, 0xff}, Icon: "🚀", Glyph: "S"},
	HoldMiddle: {Name: "middle", Color: color.NRGBA{0x3b, 0x82, 0xf6, 0xff}},
	HoldTop:    {Name: "top", Color: color.NRGBA{0xef, 0x44, 0x44, 0xff}, Icon: "🏁", Glyph: "T"},
	HoldFoot:   {Name: "foot", Color: color.NRGBA{0xf5, 0x9e, 0x0b, 0xff}, Icon: "🦶"},
}

// Fails to compile when a hold type is added without a style entry.
var _ = [1]struct{}{}[len(holdStyles)-int(numHoldTypes)]

// Valid reports whether t is one of the declared hold types
func (t HoldType) Valid() bool {
	return t >= 0 && t < numHoldTypes
}

// Style returns the palette entry for t. Invalid types get the middle style.
func (t HoldType) Style() HoldStyle {
	if !t.Valid() {
		return holdStyles[HoldMiddle]
	}
	return holdStyles[t]
}

func (t HoldType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("HoldType(%d)", int(t))
	}
	return holdStyles[t].Name
}

// ParseHoldType parses the wire name of a hold type
func ParseHoldType(s string) (HoldType, error) {
	for _, t := range HoldTypes() {
		if holdStyles[t].Name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown hold type %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (t HoldType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid hold type %d", int(t))
	}
	return []byte(holdStyles[t].Name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *HoldType) UnmarshalText(text []byte) error {
	parsed, err := ParseHoldType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Hold is a user-placed marker in image-intrinsic pixel coordinates.
// Order is 1-based and counts only holds of the same type.
type Hold struct {
	X        int      `json:"x"`
	Y        int      `json:"y"`
	Order    int      `json:"order"`
	HoldType HoldType `json:"holdType"`
}

// UnmarshalJSON accepts fractional coordinates, rounding halves up, and
// treats a missing holdType as middle.
func (h *Hold) UnmarshalJSON(data []byte) error {
	wire := struct {
		X        float64  `json:"x"`
		Y        float64  `json:"y"`
		Order    int      `json:"order"`
		HoldType HoldType `json:"holdType"`
	}{HoldType: HoldMiddle}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*h = Hold{
		X:        int(math.Floor(wire.X + 0.5)),
		Y:        int(math.Floor(wire.Y + 0.5)),
		Order:    wire.Order,
		HoldType: wire.HoldType,
	}
	return nil
}

// Point returns the hold position as a Point
func (h Hold) Point() Point {
	return Point{X: float64(h.X), Y: float64(h.Y)}
}

// Arrow is a move direction hint in image-intrinsic coordinates
type Arrow struct {
	FromX     float64 `json:"fromX"`
	FromY     float64 `json:"fromY"`
	ToX       float64 `json:"toX"`
	ToY       float64 `json:"toY"`
	Direction string  `json:"direction,omitempty"`
}

// Move is one annotated step of a beta
type Move struct {
	HoldIndex int     `json:"holdIndex"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Label     string  `json:"label"`
	Icon      string  `json:"icon,omitempty"`
	Arrow     *Arrow  `json:"arrow,omitempty"`
	ShortTip  string  `json:"shortTip,omitempty"`
	DetailTip string  `json:"detailTip,omitempty"`
	IsCrux    bool    `json:"isCrux"`
}

// Summary describes the beta as a whole
type Summary struct {
	Difficulty string   `json:"difficulty"`
	KeyPoints  []string `json:"keyPoints"`
	TotalMoves int      `json:"totalMoves"`
}

// BetaRequest is sent to the analysis service
type BetaRequest struct {
	Holds       []Hold `json:"holds"`
	ImageWidth  int    `json:"imageWidth"`
	ImageHeight int    `json:"imageHeight"`
}

// BetaResponse is returned by the analysis service
type BetaResponse struct {
	Moves   []Move  `json:"moves"`
	Summary Summary `json:"summary"`
}

// Pose is a snapshot of the four limb endpoints in image-intrinsic
// coordinates. Nil limbs are not placed.
type Pose struct {
	LeftHand  *Point `json:"leftHand,omitempty"`
	RightHand *Point `json:"rightHand,omitempty"`
	LeftFoot  *Point `json:"leftFoot,omitempty"`
	RightFoot *Point `json:"rightFoot,omitempty"`
}

// Clone returns a deep copy of p
func (p Pose) Clone() Pose {
	return Pose{
		LeftHand:  clonePoint(p.LeftHand),
		RightHand: clonePoint(p.RightHand),
		LeftFoot:  clonePoint(p.LeftFoot),
		RightFoot: clonePoint(p.RightFoot),
	}
}

func clonePoint(p *Point) *Point {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
