package engine

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soar/padroute/internal/controller"
	"github.com/soar/padroute/internal/gamepad"
	"github.com/soar/padroute/internal/input"
	"github.com/soar/padroute/internal/keyboard"
	"github.com/soar/padroute/internal/loop"
	"github.com/soar/padroute/internal/mapping"
	"github.com/soar/padroute/internal/remap"
	"github.com/soar/padroute/internal/skin"
	"github.com/soar/padroute/internal/store"
)

type recorder struct {
	source string
	events []string
	codes  map[string]int
}

func (r *recorder) Activate(in input.Input, _ float64) {
	r.events = append(r.events, "+"+in.Name())
	if code, ok := in.Code(); ok {
		r.codes[in.Name()] = code
	}
}

func (r *recorder) Deactivate(in input.Input) {
	r.events = append(r.events, "-"+in.Name())
}

func (r *recorder) take() []string {
	out := r.events
	r.events = nil
	return out
}

var phone = skin.Traits{Device: skin.Phone, DisplayType: skin.DisplayStandard, Orientation: skin.Portrait}

// Centres of items in the built-in portrait skin.
var (
	buttonA = skin.Point{X: 0.9, Y: 0.69}
	buttonB = skin.Point{X: 0.6, Y: 0.75}
)

type fixture struct {
	engine  *Engine
	out     map[string]*recorder
	cache   *store.Cache
	writer  *store.Writer
	fs      afero.Fs
	notices []string
}

func newFixture(t *testing.T, configure ...func(*Options)) *fixture {
	t.Helper()
	f := &fixture{out: make(map[string]*recorder), fs: afero.NewMemMapFs()}

	s := store.New(f.fs, "/data")
	f.writer = store.NewWriter(s)
	t.Cleanup(f.writer.Close)
	f.cache = store.NewCache(s, f.writer)

	opts := Options{
		GameType: "gba",
		Skin:     skin.Default(),
		Traits:   phone,
		Store:    f.cache,
		Settle:   time.Millisecond,
		Outputs: []Output{func(source string) controller.Receiver {
			r := &recorder{source: source, codes: make(map[string]int)}
			f.out[source] = r
			return r
		}},
		Notice: func(msg string) { f.notices = append(f.notices, msg) },
	}
	for _, c := range configure {
		c(&opts)
	}
	e, err := New(loop.New(), opts)
	require.NoError(t, err)
	f.engine = e
	return f
}

func (f *fixture) tap(p skin.Point) {
	f.engine.TouchBegan(1, p)
	f.engine.TouchEnded(1, p)
}

func (f *fixture) settle(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool {
		f.engine.Frame(0)
		return f.engine.Scene().State == remap.Idle
	}, time.Second, time.Millisecond)
}

func TestSkinReachesCore(t *testing.T) {
	f := newFixture(t)

	f.tap(buttonA)
	assert.Equal(t, []string{"+a", "-a"}, f.out[SourceSkin].take())
	assert.Equal(t, 1, f.out[SourceSkin].codes["a"])

	require.NoError(t, f.engine.SetGameType("snes"))
	f.tap(buttonA)
	assert.Equal(t, []string{"+a", "-a"}, f.out[SourceSkin].take())
	assert.Equal(t, 0, f.out[SourceSkin].codes["a"])

	assert.ErrorIs(t, f.engine.SetGameType("n64"), mapping.ErrNotFound)
	assert.Equal(t, "snes", f.engine.GameType())
}

func TestKeyboardDefaultMapping(t *testing.T) {
	f := newFixture(t)
	r := f.out[SourceKeyboard]

	f.engine.Keys([]string{"X", "ArrowUp"})
	assert.ElementsMatch(t, []string{"+a", "+up"}, r.take())
	assert.Equal(t, 64, r.codes["up"])

	f.engine.Keys([]string{"X"})
	assert.Equal(t, []string{"-up"}, r.take())

	// A remote press of a locally held key adds nothing.
	f.engine.KeyDown("X")
	f.engine.Keys(nil)
	assert.Empty(t, r.take())
	f.engine.KeyUp("X")
	assert.Equal(t, []string{"-a"}, r.take())

	f.engine.Keys([]string{"F1"})
	assert.Empty(t, r.take(), "unbound keys reach nobody")
}

func TestStoredOverrideReplacesDefault(t *testing.T) {
	f := newFixture(t)

	ov := keyboard.DefaultMapping()
	ov.Set("Z", input.New("a", input.SkinStandard))
	require.NoError(t, f.cache.SaveOverride(keyboard.Name, "gba", ov))
	require.NoError(t, f.engine.SetGameType("gba"))

	r := f.out[SourceKeyboard]
	f.engine.Keys([]string{"X"})
	assert.Empty(t, r.take(), "an evicted key must not fall back to the default")
	f.engine.Keys([]string{"Z"})
	assert.Equal(t, []string{"+a"}, r.take())
}

func TestKeyboardRemap(t *testing.T) {
	f := newFixture(t)
	e := f.engine
	skinOut, keys := f.out[SourceSkin], f.out[SourceKeyboard]

	require.NoError(t, e.StartRemap(SourceKeyboard))
	assert.ErrorIs(t, e.StartRemap(SourceController), ErrRemapping)
	src, ok := e.Remapping()
	assert.True(t, ok)
	assert.Equal(t, SourceKeyboard, src)

	f.tap(buttonA)
	assert.Empty(t, skinOut.take(), "skin taps select while remapping")
	sc := e.Scene()
	assert.Equal(t, remap.AwaitingControllerInput, sc.State)
	assert.Equal(t, "a", sc.Pending)
	assert.Equal(t, "X", sc.Labels["a"])

	e.Keys([]string{"Z"})
	assert.Empty(t, keys.take(), "captured keys are not played")
	assert.Equal(t, remap.DebouncingReEntry, e.Scene().State)
	f.settle(t)
	assert.Equal(t, "Z", e.Scene().Labels["a"])
	e.Keys(nil)

	e.StopRemap()
	_, ok = e.Remapping()
	assert.False(t, ok)

	e.Keys([]string{"Z"})
	assert.Equal(t, []string{"+a"}, keys.take())
	e.Keys([]string{"X"})
	assert.Equal(t, []string{"-a"}, keys.take(), "X lost its binding to Z")

	f.tap(buttonA)
	assert.Equal(t, []string{"+a", "-a"}, skinOut.take())

	f.writer.Flush()
	saved, err := f.cache.LoadOverride(keyboard.Name, "gba")
	require.NoError(t, err)
	got, _ := saved.Lookup("Z")
	assert.Equal(t, "a", got.Name())
}

func TestControllerRemapAndReset(t *testing.T) {
	f := newFixture(t)
	e := f.engine
	pad := f.out[SourceController]

	e.ApplyPad(gamepad.GamepadState{Connected: true, Name: "Pad A"})
	assert.Equal(t, "Pad A", e.ControllerName())

	require.NoError(t, e.StartRemap(SourceController))
	f.tap(buttonB)
	e.ApplyPad(gamepad.GamepadState{Connected: true, Name: "Pad A", Buttons: map[string]bool{gamepad.ButtonA: true}})
	f.settle(t)
	e.ApplyPad(gamepad.GamepadState{Connected: true, Name: "Pad A"})
	e.StopRemap()
	assert.Empty(t, pad.take())

	e.ApplyPad(gamepad.GamepadState{Connected: true, Name: "Pad A", Buttons: map[string]bool{gamepad.ButtonA: true}})
	assert.Equal(t, []string{"+b"}, pad.take())
	e.ApplyPad(gamepad.GamepadState{Connected: true, Name: "Pad A"})
	pad.take()

	// Another controller has no override.
	e.ApplyPad(gamepad.GamepadState{Connected: true, Name: "Pad B", Buttons: map[string]bool{gamepad.ButtonA: true}})
	assert.Equal(t, []string{"+a"}, pad.take())
	e.ApplyPad(gamepad.GamepadState{})
	assert.Equal(t, []string{"-a"}, pad.take())

	e.ApplyPad(gamepad.GamepadState{Connected: true, Name: "Pad A"})
	require.NoError(t, e.StartRemap(SourceController))
	require.NoError(t, e.ResetRemap())
	assert.Contains(t, f.notices, "Bindings reset to default")
	assert.Equal(t, "Bindings reset to default", e.Scene().Notice)
	e.StopRemap()

	e.ApplyPad(gamepad.GamepadState{Connected: true, Name: "Pad A", Buttons: map[string]bool{gamepad.ButtonA: true}})
	assert.Equal(t, []string{"+a"}, pad.take())
}

func TestRemapBindingNotFound(t *testing.T) {
	f := newFixture(t)
	e := f.engine

	require.NoError(t, e.StartRemap(SourceController))
	f.tap(buttonA)
	e.ApplyPad(gamepad.GamepadState{Connected: true, Name: SourceController, Buttons: map[string]bool{gamepad.LeftThumbstickButton: true}})

	assert.Equal(t, []string{"Binding not found"}, f.notices)
	assert.Equal(t, remap.Idle, e.Scene().State)
	assert.Empty(t, e.Scene().Pending)

	e.CancelRemap()
	e.StopRemap()
	assert.ErrorIs(t, e.StartRemap("Mouse"), ErrUnknownSource)
}

func TestSceneTracksSkin(t *testing.T) {
	f := newFixture(t)
	e := f.engine

	sc := e.Scene()
	assert.Equal(t, phone, sc.Traits)
	assert.NotEmpty(t, sc.Items)
	assert.Empty(t, sc.Remapping)
	assert.Nil(t, sc.Labels)

	e.TouchBegan(1, buttonA)
	e.Frame(0.1)
	v, ok := e.Scene().Views["a"]
	require.True(t, ok)
	assert.True(t, v.Pressed)
	e.TouchEnded(1, buttonA)

	landscape := skin.Traits{Device: skin.Phone, DisplayType: skin.DisplayStandard, Orientation: skin.Landscape}
	e.SetTraits(landscape)
	sc = e.Scene()
	assert.Equal(t, landscape, sc.Traits)
	stick, ok := sc.Sticks["stick"]
	require.True(t, ok)
	assert.False(t, stick.Held)

	e.SetHidden(true)
	assert.True(t, e.Scene().Hidden)
}

func TestNextGameTypeCycles(t *testing.T) {
	f := newFixture(t)
	e := f.engine

	require.NoError(t, e.NextGameType())
	assert.Equal(t, "gbc", e.GameType())
	assert.Equal(t, "Game type: gbc", e.Scene().Notice)

	require.NoError(t, e.SetGameType("snes"))
	require.NoError(t, e.NextGameType())
	assert.Equal(t, "gb", e.GameType(), "wraps around")

	f.tap(buttonA)
	assert.Equal(t, []string{"+a", "-a"}, f.out[SourceSkin].take())
	assert.Equal(t, 0x01, f.out[SourceSkin].codes["a"])
}

func TestSyncedResetOfCorruptRecord(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.Sync = true })
	e := f.engine
	require.NoError(t, afero.WriteFile(f.fs, "/data/Controller/gba.yaml", []byte("{{not yaml"), 0o644))

	var results []store.Result
	f.writer.OnDone(func(r store.Result) { results = append(results, r) })

	require.NoError(t, e.StartRemap(SourceController))
	require.NoError(t, e.ResetRemap())
	e.StopRemap()
	f.writer.Flush()

	require.Len(t, results, 1)
	assert.True(t, results[0].Deleted)
	assert.NoError(t, results[0].Err)
	_, err := f.cache.LoadOverride(SourceController, "gba")
	assert.ErrorIs(t, err, mapping.ErrNotFound)
	data, err := afero.ReadFile(f.fs, "/data/Controller/gba.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "deleted: true")
}

func TestFailedWritesAreNoticed(t *testing.T) {
	f := newFixture(t)
	e := f.engine

	e.WriteDone(store.Result{Controller: "Pad", GameType: "gba"})
	assert.Empty(t, f.notices)

	e.WriteDone(store.Result{Controller: "Pad", GameType: "gba", Deleted: true, Err: afero.ErrFileNotFound})
	e.WriteDone(store.Result{Controller: "Pad", GameType: "gba", Err: afero.ErrFileNotFound})
	assert.Equal(t, []string{"Failed to reset stored bindings", "Failed to save bindings"}, f.notices)
	assert.Equal(t, "Failed to save bindings", e.Scene().Notice)
}
