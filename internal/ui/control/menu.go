// Package control implements the UI controller: the screen/menu state
// machine that turns BtnEvents into parameter mutations and publishes an
// updated snapshot after every handled event.
package control

// Action is what selecting a Menu option does: either switch to another
// screen, or run an arbitrary callback (replacing the original's
// open-ended Python callable with an explicit closed choice).
type Action struct {
	Screen Screen
	Run    func()
}

// MenuOption is one row of the settings menu.
type MenuOption struct {
	Name   string
	Action Action
}

// Menu is the settings screen's scrollable option list, windowed to
// opsPerScreen visible rows at a time.
type Menu struct {
	Options      []MenuOption
	OpsPerScreen int
	Selected     int
	Top          int
}

// NewMenu builds a Menu over options, showing opsPerScreen rows at a time.
func NewMenu(options []MenuOption, opsPerScreen int) *Menu {
	return &Menu{Options: options, OpsPerScreen: opsPerScreen}
}

// ScrollDown moves the selection down one row, advancing the visible
// window once the selection would leave it.
func (m *Menu) ScrollDown() {
	if m.Selected >= len(m.Options)-1 {
		return
	}
	m.Selected++
	if m.Selected >= m.Top+m.OpsPerScreen {
		m.Top = m.Selected - m.OpsPerScreen + 1
	}
}

// ScrollUp moves the selection up one row, retreating the visible window
// once the selection would leave it.
func (m *Menu) ScrollUp() {
	if m.Selected <= 0 {
		return
	}
	m.Selected--
	if m.Selected < m.Top {
		m.Top = m.Selected
	}
}

// Visible returns the currently windowed slice of options.
func (m *Menu) Visible() []MenuOption {
	end := m.Top + m.OpsPerScreen
	if end > len(m.Options) {
		end = len(m.Options)
	}
	return m.Options[m.Top:end]
}

// Select returns the currently selected option's action.
func (m *Menu) Select() Action {
	return m.Options[m.Selected].Action
}
