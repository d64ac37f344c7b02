package window

import (
	"fmt"
	"image/color"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/soar/padroute/internal/engine"
	"github.com/soar/padroute/internal/feedback"
	"github.com/soar/padroute/internal/input"
	"github.com/soar/padroute/internal/remap"
	"github.com/soar/padroute/internal/skin"
)

var (
	background   = color.RGBA{0x1c, 0x1e, 0x24, 0xff}
	buttonColor  = color.RGBA{0x5a, 0x60, 0x70, 0xff}
	pressedColor = color.RGBA{0xd8, 0xdc, 0xe6, 0xff}
	stickColor   = color.RGBA{0x40, 0x46, 0x52, 0xff}
	knobColor    = color.RGBA{0xa0, 0xa8, 0xb8, 0xff}
	screenColor  = color.RGBA{0x10, 0x10, 0x10, 0xff}
	zoneColor    = color.RGBA{0x30, 0xc0, 0x60, 0xff}
	pendingColor = color.RGBA{0xf0, 0xc0, 0x30, 0xff}
	bubbleColor  = color.RGBA{0x20, 0x60, 0xd0, 0xe0}
)

const lineWidth = 2

var whitePixel *ebiten.Image

func white() *ebiten.Image {
	if whitePixel == nil {
		whitePixel = ebiten.NewImage(1, 1)
		whitePixel.Fill(color.White)
	}
	return whitePixel
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	sc := g.host.Scene()
	bounds := skin.Rect{Width: float64(g.width), Height: float64(g.height)}

	for _, it := range sc.Items {
		r := it.Frame.Scaled(bounds)
		switch it.Kind {
		case skin.TouchScreen:
			fill(screen, r, ebiten.GeoM{}, screenColor)
		case skin.Thumbstick:
			drawStick(screen, r, sc.Sticks[it.ID])
		default:
			v, ok := sc.Views[it.ID]
			if !ok {
				v = feedback.ViewState{ScaleX: 1, ScaleY: 1, NormalAlpha: 1}
			}
			fill(screen, r, effect(r, v), mix(buttonColor, pressedColor, v))
		}
		if sc.Hidden && !it.Inputs.HasName("menu", "flex") {
			fill(screen, r, ebiten.GeoM{}, color.RGBA{0, 0, 0, 0xa0})
		}
		if sc.Pending != "" && slices.ContainsFunc(it.Inputs.All(), func(in input.Input) bool { return in.Name() == sc.Pending }) {
			outline(screen, r, pendingColor)
		}
		if g.showZones {
			outline(screen, it.ExtendedFrame.Scaled(bounds), zoneColor)
			ebitenutil.DebugPrintAt(screen, it.ID, int(r.X)+2, int(r.Y)+2)
		}
	}

	if sc.Remapping != "" {
		drawBubbles(screen, sc, bounds)
	}
	ebitenutil.DebugPrintAt(screen, status(sc), 4, g.height-16)
	if sc.Notice != "" {
		ebitenutil.DebugPrintAt(screen, sc.Notice, 4, 4)
	}
}

// effect scales, tilts and offsets an item around its centre.
func effect(r skin.Rect, v feedback.ViewState) ebiten.GeoM {
	var m ebiten.GeoM
	m.Translate(-r.MidX(), -r.MidY())
	m.Scale(v.ScaleX, v.ScaleY)
	m.Skew(v.TiltY/4, v.TiltX/4)
	m.Translate(r.MidX()+v.OffsetX, r.MidY()+v.OffsetY)
	return m
}

// mix cross-fades the normal and selected layers by their alphas.
func mix(normal, selected color.RGBA, v feedback.ViewState) color.RGBA {
	na, sa := v.NormalAlpha, v.SelectedAlpha
	if v.Pressed && sa == 0 {
		sa = 1 - na
	}
	blend := func(a, b uint8) uint8 {
		c := float64(a)*na + float64(b)*sa
		if total := na + sa; total > 0 {
			c /= total
		}
		return uint8(min(c, 255))
	}
	return color.RGBA{blend(normal.R, selected.R), blend(normal.G, selected.G), blend(normal.B, selected.B), 0xff}
}

func drawStick(dst *ebiten.Image, r skin.Rect, s engine.Stick) {
	fill(dst, r, ebiten.GeoM{}, stickColor)
	size := min(r.Width, r.Height) / 3
	knob := skin.Rect{
		X:      r.MidX() + s.X*(r.Width-size)/2 - size/2,
		Y:      r.MidY() - s.Y*(r.Height-size)/2 - size/2,
		Width:  size,
		Height: size,
	}
	c := knobColor
	if s.Held {
		c = pressedColor
	}
	fill(dst, knob, ebiten.GeoM{}, c)
}

// drawBubbles labels every bound skin input with its physical key.
func drawBubbles(dst *ebiten.Image, sc engine.Scene, bounds skin.Rect) {
	for _, it := range sc.Items {
		r := it.Frame.Scaled(bounds)
		inputs := it.Inputs.All()
		for i, in := range inputs {
			label, ok := sc.Labels[in.Name()]
			if !ok {
				continue
			}
			x, y := r.MidX(), r.MidY()
			if it.Inputs.Kind == skin.GroupDirectional {
				x, y = directionAnchor(r, i)
			} else if len(inputs) > 1 {
				continue
			}
			w := float64(len([]rune(label))*6 + 6)
			bubble := skin.Rect{X: x - w/2, Y: y - 9, Width: w, Height: 18}
			fill(dst, bubble, ebiten.GeoM{}, bubbleColor)
			ebitenutil.DebugPrintAt(dst, label, int(bubble.X)+3, int(bubble.Y)+1)
		}
	}
}

// directionAnchor places bubbles for up, down, left and right.
func directionAnchor(r skin.Rect, i int) (float64, float64) {
	switch i {
	case 0:
		return r.MidX(), r.MinY() + 10
	case 1:
		return r.MidX(), r.MaxY() - 10
	case 2:
		return r.MinX() + 14, r.MidY()
	default:
		return r.MaxX() - 14, r.MidY()
	}
}

func status(sc engine.Scene) string {
	if sc.Remapping == "" {
		return "Ctrl+K remap keyboard  Ctrl+J remap controller  Ctrl+G game type"
	}
	switch sc.State {
	case remap.AwaitingControllerInput:
		return fmt.Sprintf("%s: press the new binding for %s (Ctrl+E cancels)", sc.Remapping, sc.Pending)
	case remap.DebouncingReEntry:
		return fmt.Sprintf("%s: saved", sc.Remapping)
	default:
		return fmt.Sprintf("%s: tap an input to remap, Ctrl+R resets, Ctrl+%s finishes", sc.Remapping, finishKey(sc.Remapping))
	}
}

func finishKey(source string) string {
	if source == engine.SourceKeyboard {
		return "K"
	}
	return "J"
}

func fill(dst *ebiten.Image, r skin.Rect, m ebiten.GeoM, c color.Color) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(r.Width, r.Height)
	op.GeoM.Translate(r.X, r.Y)
	op.GeoM.Concat(m)
	op.ColorScale.ScaleWithColor(c)
	dst.DrawImage(white(), op)
}

func outline(dst *ebiten.Image, r skin.Rect, c color.Color) {
	fill(dst, skin.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: lineWidth}, ebiten.GeoM{}, c)
	fill(dst, skin.Rect{X: r.X, Y: r.MaxY() - lineWidth, Width: r.Width, Height: lineWidth}, ebiten.GeoM{}, c)
	fill(dst, skin.Rect{X: r.X, Y: r.Y, Width: lineWidth, Height: r.Height}, ebiten.GeoM{}, c)
	fill(dst, skin.Rect{X: r.MaxX() - lineWidth, Y: r.Y, Width: lineWidth, Height: r.Height}, ebiten.GeoM{}, c)
}
