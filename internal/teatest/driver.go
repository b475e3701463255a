// Package teatest drives bubbletea models synchronously in tests.
//
// A Driver stands in for tea.Program: it calls Update directly and runs
// every returned Cmd inline, feeding the resulting message back until the
// model goes quiet or asks to quit.
package teatest

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

// maxChain bounds how many Cmd -> Msg -> Cmd hops one Send may follow.
const maxChain = 64

// Driver owns a model under test.
type Driver struct {
	t     testing.TB
	model tea.Model
	quit  bool
}

// New wraps model. The model's Init has not run yet; call Start.
func New(t testing.TB, model tea.Model) *Driver {
	t.Helper()
	return &Driver{t: t, model: model}
}

// Start runs Init and everything it chains into.
func (d *Driver) Start() *Driver {
	d.t.Helper()
	d.run(d.model.Init())
	return d
}

// Resize delivers a window size message.
func (d *Driver) Resize(width, height int) {
	d.t.Helper()
	d.Send(tea.WindowSizeMsg{Width: width, Height: height})
}

// Send feeds msg through Update. Messages after a quit are ignored.
func (d *Driver) Send(msg tea.Msg) {
	d.t.Helper()
	if d.quit {
		return
	}
	next, cmd := d.model.Update(msg)
	d.model = next
	d.run(cmd)
}

// Press sends key presses by name: "up", "down", "enter", "esc" or a
// single rune such as "j".
func (d *Driver) Press(keys ...string) {
	d.t.Helper()
	for _, k := range keys {
		d.Send(keyMsg(k))
	}
}

// Model returns the current model.
func (d *Driver) Model() tea.Model { return d.model }

// View renders the current model.
func (d *Driver) View() string { return d.model.View() }

// Quit reports whether the model returned tea.Quit.
func (d *Driver) Quit() bool { return d.quit }

func (d *Driver) run(cmd tea.Cmd) {
	d.t.Helper()
	for hops := 0; cmd != nil; hops++ {
		if hops == maxChain {
			d.t.Fatalf("teatest: command chain longer than %d", maxChain)
		}
		msg := cmd()
		switch msg := msg.(type) {
		case nil:
			return
		case tea.QuitMsg:
			d.quit = true
			return
		case tea.BatchMsg:
			for _, sub := range msg {
				d.run(sub)
			}
			return
		default:
			var next tea.Model
			next, cmd = d.model.Update(msg)
			d.model = next
		}
	}
}

func keyMsg(name string) tea.KeyMsg {
	switch name {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
}
