package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soar/padroute/internal/controller"
	"github.com/soar/padroute/internal/input"
	"github.com/soar/padroute/internal/mapping"
)

func TestSyncDiffsHeldKeys(t *testing.T) {
	kb := New(false)
	var events []string
	kb.AddReceiver(&controller.ReceiverFuncs{
		OnActivate:   func(in input.Input, _ float64) { events = append(events, "+"+in.Name()) },
		OnDeactivate: func(in input.Input) { events = append(events, "-"+in.Name()) },
	}, nil)

	assert.Equal(t, []string{"X", "Z"}, kb.Sync([]string{"Z", "X"}))
	assert.Empty(t, kb.Sync([]string{"X", "Z"}))
	assert.Equal(t, []string{"Enter"}, kb.Sync([]string{"Enter", "X"}))
	kb.Release()

	assert.Equal(t, []string{"+X", "+Z", "-Z", "+Enter", "-Enter", "-X"}, events)
	assert.Empty(t, kb.Active())
}

func TestDefaultMappingReachesCore(t *testing.T) {
	tr, err := mapping.Builtin("gba")
	require.NoError(t, err)

	kb := New(false)
	var got []input.Input
	kb.AddReceiver(&controller.ReceiverFuncs{
		OnActivate: func(in input.Input, _ float64) { got = append(got, in) },
	}, mapping.Chain{DefaultMapping(), tr})

	kb.Sync([]string{"ArrowUp", "F5", "K"})
	require.Len(t, got, 2)
	names := []string{got[0].Name(), got[1].Name()}
	assert.ElementsMatch(t, []string{"up", "quickSave"}, names)
	for _, in := range got {
		assert.Equal(t, input.Core, in.Namespace())
	}
}

func TestDefaultMappingIsInjective(t *testing.T) {
	m := DefaultMapping()
	seen := map[string]string{}
	for _, k := range m.Keys() {
		v, _ := m.Lookup(k)
		prev, dup := seen[v.Name()]
		assert.False(t, dup, "%s and %s both bound to %s", prev, k, v.Name())
		seen[v.Name()] = k
	}
	assert.NotSame(t, DefaultMapping(), m)
}

func TestRemoteAndLocalShareKeys(t *testing.T) {
	kb := New(false)
	var events []string
	kb.AddReceiver(&controller.ReceiverFuncs{
		OnActivate:   func(in input.Input, _ float64) { events = append(events, "+"+in.Name()) },
		OnDeactivate: func(in input.Input) { events = append(events, "-"+in.Name()) },
	}, nil)

	assert.True(t, kb.Press("X"))
	assert.Empty(t, kb.Sync([]string{"X"}), "already held remotely")
	kb.Lift("X")
	assert.True(t, kb.IsActive(Key("X")), "still held locally")
	kb.Sync(nil)
	assert.False(t, kb.IsActive(Key("X")))

	kb.Press("Z")
	kb.Sync(nil)
	assert.True(t, kb.IsActive(Key("Z")), "local sync leaves remote keys alone")
	kb.Lift("Z")
	kb.Lift("Z")

	assert.Equal(t, []string{"+X", "-X", "+Z", "-Z"}, events)
}
