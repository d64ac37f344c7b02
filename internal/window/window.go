// Package window hosts the skin in a desktop window: mouse and touch
// contacts drive the skin, the hardware keyboard drives the keyboard
// controller, and every frame draws the skin's zones with their press
// visuals.
package window

import (
	"log"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/soar/padroute/internal/contact"
	"github.com/soar/padroute/internal/engine"
	"github.com/soar/padroute/internal/skin"
)

// Host is the routing engine as seen by the window. The window calls it
// from the game loop, which is the engine's serial context.
type Host interface {
	TouchBegan(id contact.ID, p skin.Point)
	TouchMoved(id contact.ID, p skin.Point)
	TouchEnded(id contact.ID, p skin.Point)
	TouchesMoved(samples []contact.Sample)
	Keys(pressed []string)
	Frame(dt float32)
	Scene() engine.Scene

	Traits() skin.Traits
	SetTraits(t skin.Traits)
	SetHidden(hidden bool)

	NextGameType() error

	StartRemap(source string) error
	StopRemap()
	CancelRemap()
	ResetRemap() error
	Remapping() (string, bool)
}

// Local contacts stay below the ids remote connections use.
const (
	mouseContact contact.ID = 0xFFFF
	maxContact   contact.ID = 0xFFFE
)

type pointer struct {
	id contact.ID
	p  skin.Point
}

// Game implements ebiten.Game.
type Game struct {
	host  Host
	debug bool

	width, height int

	touches   map[ebiten.TouchID]*pointer
	touchIDs  []ebiten.TouchID
	mouse     *pointer
	nextID    contact.ID
	keys      []ebiten.Key
	hidden    bool
	showZones bool

	closed atomic.Bool
}

func New(host Host, width, height int, debug bool) *Game {
	return &Game{
		host:      host,
		debug:     debug,
		width:     width,
		height:    height,
		touches:   make(map[ebiten.TouchID]*pointer),
		nextID:    1,
		showZones: debug,
	}
}

// Run opens the window and blocks until it is closed or Close is called.
// It must run on the main goroutine.
func (g *Game) Run(title string) error {
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(g.width, g.height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(g)
}

// Close ends Run at the next frame. Safe from any goroutine.
func (g *Game) Close() {
	g.closed.Store(true)
}

func (g *Game) Update() error {
	if g.closed.Load() {
		return ebiten.Termination
	}

	g.followOrientation()
	if !g.commands() {
		g.keys = inpututil.AppendPressedKeys(g.keys[:0])
		g.host.Keys(keyNames(g.keys))
	}
	g.pointers()
	g.host.Frame(float32(1 / float64(ebiten.TPS())))
	return nil
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func (g *Game) followOrientation() {
	t := g.host.Traits()
	if o := orientation(g.width, g.height); o != t.Orientation {
		t.Orientation = o
		log.Printf("Window is now %s", o)
		g.host.SetTraits(t)
	}
}

// commands handles the Control chords and reports whether Control is held,
// in which case no key reaches the keyboard controller.
func (g *Game) commands() bool {
	if !ebiten.IsKeyPressed(ebiten.KeyControl) {
		return false
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyK):
		g.toggleRemap(engine.SourceKeyboard)
	case inpututil.IsKeyJustPressed(ebiten.KeyJ):
		g.toggleRemap(engine.SourceController)
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		g.host.CancelRemap()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		if err := g.host.ResetRemap(); err != nil {
			log.Printf("Failed to reset bindings: %v", err)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyG):
		if err := g.host.NextGameType(); err != nil {
			log.Printf("Failed to switch game type: %v", err)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		g.hidden = !g.hidden
		g.host.SetHidden(g.hidden)
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		g.showZones = !g.showZones
	}
	g.host.Keys(nil)
	return true
}

func (g *Game) toggleRemap(source string) {
	if _, ok := g.host.Remapping(); ok {
		g.host.StopRemap()
		return
	}
	if err := g.host.StartRemap(source); err != nil {
		log.Printf("Failed to start remapping %s: %v", source, err)
	}
}

// pointers turns the mouse and every touch into skin contacts.
func (g *Game) pointers() {
	var moved []contact.Sample

	x, y := ebiten.CursorPosition()
	down := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	g.mouse, moved = g.track(g.mouse, mouseContact, down, g.point(x, y), moved)

	g.touchIDs = ebiten.AppendTouchIDs(g.touchIDs[:0])
	seen := make(map[ebiten.TouchID]bool, len(g.touchIDs))
	for _, tid := range g.touchIDs {
		seen[tid] = true
		tx, ty := ebiten.TouchPosition(tid)
		prev := g.touches[tid]
		var id contact.ID
		if prev == nil {
			id = g.allocate()
		}
		g.touches[tid], moved = g.track(prev, id, true, g.point(tx, ty), moved)
	}
	for tid, ptr := range g.touches {
		if !seen[tid] {
			g.host.TouchEnded(ptr.id, ptr.p)
			delete(g.touches, tid)
		}
	}

	if len(moved) > 0 {
		g.host.TouchesMoved(moved)
	}
}

// track advances one pointer. A new contact begins at once; moves are
// collected so the frame's moves reach the skin as one batch.
func (g *Game) track(ptr *pointer, id contact.ID, down bool, p skin.Point, moved []contact.Sample) (*pointer, []contact.Sample) {
	switch {
	case ptr == nil && down:
		ptr = &pointer{id: id, p: p}
		g.host.TouchBegan(id, p)
	case ptr != nil && !down:
		g.host.TouchEnded(ptr.id, ptr.p)
		ptr = nil
	case ptr != nil && ptr.p != p:
		ptr.p = p
		moved = append(moved, contact.Sample{ID: ptr.id, Point: p})
	}
	return ptr, moved
}

func (g *Game) allocate() contact.ID {
	id := g.nextID
	g.nextID++
	if g.nextID > maxContact {
		g.nextID = 1
	}
	return id
}

func (g *Game) point(x, y int) skin.Point {
	return toPoint(x, y, g.width, g.height)
}

func toPoint(x, y, width, height int) skin.Point {
	if width <= 0 || height <= 0 {
		return skin.Point{}
	}
	return skin.Point{X: float64(x) / float64(width), Y: float64(y) / float64(height)}
}

func orientation(width, height int) skin.Orientation {
	if width > height {
		return skin.Landscape
	}
	return skin.Portrait
}

func keyNames(keys []ebiten.Key) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.String())
	}
	return out
}
