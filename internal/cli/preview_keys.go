package cli

import "github.com/charmbracelet/bubbles/key"

type previewKeyMap struct {
	Next       key.Binding
	Previous   key.Binding
	Up         key.Binding
	Down       key.Binding
	Activate   key.Binding
	PanLeft    key.Binding
	PanRight   key.Binding
	TiltUp     key.Binding
	TiltDown   key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	Autorotate key.Binding
	Resume     key.Binding
	Dismiss    key.Binding
	Jump       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultPreviewKeys() previewKeyMap {
	return previewKeyMap{
		Next:       key.NewBinding(key.WithKeys("right", "n"), key.WithHelp("→/n", "next scene")),
		Previous:   key.NewBinding(key.WithKeys("left", "p"), key.WithHelp("←/p", "previous scene")),
		Up:         key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "select hotspot")),
		Down:       key.NewBinding(key.WithKeys("down", "tab"), key.WithHelp("↓/tab", "select hotspot")),
		Activate:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "activate")),
		PanLeft:    key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "pan left")),
		PanRight:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "pan right")),
		TiltUp:     key.NewBinding(key.WithKeys("k"), key.WithHelp("k", "tilt up")),
		TiltDown:   key.NewBinding(key.WithKeys("j"), key.WithHelp("j", "tilt down")),
		ZoomIn:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
		Autorotate: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "toggle autorotate")),
		Resume:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resume autorotate")),
		Dismiss:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
		Jump:       key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "go to scene")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k previewKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Previous, k.Down, k.Activate, k.Autorotate, k.Help, k.Quit}
}

func (k previewKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Previous, k.Jump},
		{k.Up, k.Down, k.Activate, k.Dismiss},
		{k.PanLeft, k.PanRight, k.TiltUp, k.TiltDown, k.ZoomIn, k.ZoomOut},
		{k.Autorotate, k.Resume, k.Help, k.Quit},
	}
}
