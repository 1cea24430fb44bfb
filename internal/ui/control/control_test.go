package control_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n7cdr/pocketwave/internal/input"
	"github.com/n7cdr/pocketwave/internal/ipc"
	"github.com/n7cdr/pocketwave/internal/ui/control"
)

type fakeParams struct {
	calls []string
}

func (f *fakeParams) StepUp(name string) error    { f.calls = append(f.calls, "stepup:"+name); return nil }
func (f *fakeParams) StepDown(name string) error   { f.calls = append(f.calls, "stepdown:"+name); return nil }
func (f *fakeParams) CycleUp(name string) error    { f.calls = append(f.calls, "cycleup:"+name); return nil }
func (f *fakeParams) CycleDown(name string) error  { f.calls = append(f.calls, "cycledown:"+name); return nil }
func (f *fakeParams) SelectDemod(name, d string) error {
	f.calls = append(f.calls, "demod:"+name+":"+d)
	return nil
}

type fakePublisher struct {
	snaps []ipc.UIState
}

func (f *fakePublisher) Publish(s ipc.UIState) error {
	f.snaps = append(f.snaps, s)
	return nil
}

func TestCursorWrapAdvancesStepIndex(t *testing.T) {
	params := &fakeParams{}
	pub := &fakePublisher{}
	menu := control.NewMenu(nil, 3)
	c := control.NewController(menu, params, pub)

	for i := 0; i < 3; i++ {
		require.NoError(t, c.HandleEvent(input.EventRight))
	}
	// three RIGHTs on FREQTUNE cycle sdr_cf's step size up three times; five
	// more wrap the 8-slot cursor back to 0, still cycling once per press.
	assert.Len(t, params.calls, 3)

	for i := 0; i < 5; i++ {
		require.NoError(t, c.HandleEvent(input.EventRight))
	}
	assert.Equal(t, 0, c.Snapshot().FTuneCursorPos)
	assert.Len(t, params.calls, 8)
}

func TestMenuScrollDownFourTimesOverSixOptions(t *testing.T) {
	options := make([]control.MenuOption, 6)
	for i := range options {
		options[i] = control.MenuOption{Name: "opt"}
	}
	menu := control.NewMenu(options, 3)
	for i := 0; i < 4; i++ {
		menu.ScrollDown()
	}
	assert.Equal(t, 4, menu.Selected)
	assert.Equal(t, 2, menu.Top)
	visible := menu.Visible()
	assert.Len(t, visible, 3)
}

func TestMenuScrollStopsAtBounds(t *testing.T) {
	options := []control.MenuOption{{Name: "a"}, {Name: "b"}}
	menu := control.NewMenu(options, 3)
	menu.ScrollUp()
	assert.Equal(t, 0, menu.Selected)
	menu.ScrollDown()
	menu.ScrollDown()
	menu.ScrollDown()
	assert.Equal(t, 1, menu.Selected)
}
