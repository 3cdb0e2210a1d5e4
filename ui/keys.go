package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/dgnsrekt/dictate/internal/items"
	"github.com/dgnsrekt/dictate/internal/session"
)

type keyMap struct {
	Start          key.Binding
	ReadAgain      key.Binding
	RepeatSentence key.Binding
	NextSentence   key.Binding
	NextItem       key.Binding
	End            key.Binding
	Replay         key.Binding
	Copy           key.Binding
	Reset          key.Binding
	Help           key.Binding
	Quit           key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Start: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "start"),
		),
		ReadAgain: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "read again"),
		),
		RepeatSentence: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "repeat sentence"),
		),
		NextSentence: key.NewBinding(
			key.WithKeys("s", "right"),
			key.WithHelp("s/→", "next sentence"),
		),
		NextItem: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next item"),
		),
		End: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "end test"),
		),
		Replay: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "replay answers"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy answers"),
		),
		Reset: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc", "back to setup"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// update enables the bindings that apply to v.
func (k *keyMap) update(v session.View) {
	running := v.State == session.StateRunning
	ended := v.State == session.StateEnded
	paragraph := running && v.Kind == items.KindParagraph

	k.Start.SetEnabled(v.State == session.StateIdle)
	k.ReadAgain.SetEnabled(running)
	k.RepeatSentence.SetEnabled(paragraph)
	k.NextSentence.SetEnabled(paragraph && v.Sentence < v.Sentences-1)
	k.NextItem.SetEnabled(running)
	k.End.SetEnabled(running)
	k.Replay.SetEnabled(ended)
	k.Copy.SetEnabled(ended)
	k.Reset.SetEnabled(running || ended)
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.ReadAgain, k.NextItem, k.End, k.Replay, k.Reset, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.ReadAgain, k.RepeatSentence, k.NextSentence},
		{k.NextItem, k.End, k.Replay, k.Copy},
		{k.Reset, k.Help, k.Quit},
	}
}
