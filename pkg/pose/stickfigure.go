package pose

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/menta2k/boulder-beta/pkg/canvas"
	"github.com/menta2k/boulder-beta/pkg/geometry"
	"github.com/menta2k/boulder-beta/pkg/types"
)

// Default card size for pose thumbnails
const (
	ThumbWidth  = 150
	ThumbHeight = 200
)

// FigureStyle controls stick figure proportions. Lift, torso and drop are
// in image pixels; radii and stroke width are in card pixels.
type FigureStyle struct {
	HeadRadius   float64
	HeadLift     float64 // head center above the shoulder
	TorsoHalf    float64 // shoulder and hip distance from the body center
	DefaultDrop  float64 // foot center below the hands when no foot is placed
	StrokeWidth  float64
	JointRadius  float64
	HeadColor    color.NRGBA
	TorsoColor   color.NRGBA
	ArmColor     color.NRGBA
	LegColor     color.NRGBA
	CardFallback color.NRGBA
}

// DefaultFigureStyle returns the standard figure
func DefaultFigureStyle() FigureStyle {
	return FigureStyle{
		HeadRadius:   8,
		HeadLift:     20,
		TorsoHalf:    15,
		DefaultDrop:  60,
		StrokeWidth:  3,
		JointRadius:  4,
		HeadColor:    color.NRGBA{0xfb, 0xbf, 0x24, 0xff},
		TorsoColor:   color.NRGBA{0xff, 0xff, 0xff, 0xff},
		ArmColor:     color.NRGBA{0xef, 0x44, 0x44, 0xff},
		LegColor:     color.NRGBA{0x3b, 0x82, 0xf6, 0xff},
		CardFallback: color.NRGBA{0x1f, 0x29, 0x37, 0xff},
	}
}

// DrawStickFigure draws p onto cv. The body is laid out in image
// coordinates and every point is then multiplied by scaleX and scaleY.
// A pose without hands draws nothing.
func DrawStickFigure(cv *canvas.Canvas, p types.Pose, scaleX, scaleY float64) {
	DrawStickFigureStyle(cv, p, scaleX, scaleY, DefaultFigureStyle())
}

// DrawStickFigureStyle is DrawStickFigure with explicit proportions
func DrawStickFigureStyle(cv *canvas.Canvas, p types.Pose, scaleX, scaleY float64, st FigureStyle) {
	hands, ok := average(p.LeftHand, p.RightHand)
	if !ok {
		return
	}
	feet, ok := average(p.LeftFoot, p.RightFoot)
	if !ok {
		feet = types.Point{X: hands.X, Y: hands.Y + st.DefaultDrop}
	}

	body := geometry.Midpoint(hands, feet)
	shoulder := types.Point{X: body.X, Y: body.Y - st.TorsoHalf}
	hip := types.Point{X: body.X, Y: body.Y + st.TorsoHalf}
	head := types.Point{X: body.X, Y: shoulder.Y - st.HeadLift}

	scale := func(pt types.Point) types.Point {
		return types.Point{X: pt.X * scaleX, Y: pt.Y * scaleY}
	}
	shoulder, hip, head = scale(shoulder), scale(hip), scale(head)

	cv.StrokeLine(shoulder, hip, st.StrokeWidth, st.TorsoColor, true)
	limb := func(from types.Point, to *types.Point, col color.NRGBA) {
		if to == nil {
			return
		}
		end := scale(*to)
		cv.StrokeLine(from, end, st.StrokeWidth, col, true)
		cv.FillCircle(end, st.JointRadius, col)
	}
	limb(shoulder, p.LeftHand, st.ArmColor)
	limb(shoulder, p.RightHand, st.ArmColor)
	limb(hip, p.LeftFoot, st.LegColor)
	limb(hip, p.RightFoot, st.LegColor)
	cv.FillCircle(head, st.HeadRadius, st.HeadColor)
}

func average(a, b *types.Point) (types.Point, bool) {
	switch {
	case a != nil && b != nil:
		return geometry.Midpoint(*a, *b), true
	case a != nil:
		return *a, true
	case b != nil:
		return *b, true
	}
	return types.Point{}, false
}

// Thumbnail renders a ThumbWidth x ThumbHeight card for p. The base image
// is stretched to the card and the figure scaled per axis to match.
func Thumbnail(base image.Image, p types.Pose, intrinsic geometry.Size) (*image.RGBA, error) {
	return Card(base, p, intrinsic, geometry.Size{Width: ThumbWidth, Height: ThumbHeight}, DefaultFigureStyle())
}

// Card renders a pose card of an arbitrary size
func Card(base image.Image, p types.Pose, intrinsic, card geometry.Size, st FigureStyle) (*image.RGBA, error) {
	if !intrinsic.Valid() || !card.Valid() {
		return nil, geometry.ErrGeometryUnavailable
	}

	cv := canvas.New(card.Width, card.Height)
	cv.Fill(st.CardFallback)
	if base != nil {
		cv.DrawImage(imaging.Resize(base, card.Width, card.Height, imaging.Linear))
	}

	sx := float64(card.Width) / float64(intrinsic.Width)
	sy := float64(card.Height) / float64(intrinsic.Height)
	DrawStickFigureStyle(cv, p, sx, sy, st)
	return cv.Image(), nil
}
