package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
)

// keyMap represents key map data used by this package.
type keyMap struct {
	quit          key.Binding
	reload        key.Binding
	toggleHelp    key.Binding
	moveLeft      key.Binding
	moveRight     key.Binding
	moveUp        key.Binding
	moveDown      key.Binding
	grab          key.Binding
	drop          key.Binding
	cancel        key.Binding
	openRecord    key.Binding
	nextAttribute key.Binding
	prevAttribute key.Binding
	nextPage      key.Binding
	prevPage      key.Binding
	copyID        key.Binding
}

// KeyConfig overrides configurable bindings; blank fields keep defaults.
type KeyConfig struct {
	Grab          string
	Drop          string
	OpenRecord    string
	NextAttribute string
	CopyID        string
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		toggleHelp:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveLeft:      key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:     key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "card up")),
		moveDown:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "card down")),
		grab:          key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "grab card")),
		drop:          key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop card")),
		cancel:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel drag")),
		openRecord:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open record")),
		nextAttribute: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next grouping")),
		prevAttribute: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous grouping")),
		nextPage:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next page")),
		prevPage:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous page")),
		copyID:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy record id")),
	}
}

// applyConfig applies configured overrides onto the default bindings.
func (k *keyMap) applyConfig(cfg KeyConfig) {
	configureBinding(&k.grab, cfg.Grab, "space", "grab card")
	configureBinding(&k.drop, cfg.Drop, "enter", "drop card")
	configureBinding(&k.openRecord, cfg.OpenRecord, "o", "open record")
	configureBinding(&k.nextAttribute, cfg.NextAttribute, "tab", "next grouping")
	configureBinding(&k.copyID, cfg.CopyID, "y", "copy record id")
}

// configureBinding replaces one binding's keys and help text.
func configureBinding(binding *key.Binding, raw, fallback, desc string) {
	keys, help := parseBindingKeys(raw, fallback)
	binding.SetKeys(keys...)
	binding.SetHelp(help, desc)
}

// parseBindingKeys parses one configured key into matcher keys and help text.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	value := strings.TrimSpace(raw)
	if value == "" {
		value = fallback
	}
	if strings.EqualFold(value, "space") || value == " " {
		return []string{" ", "space"}, "space"
	}
	if utf8.RuneCountInString(value) == 1 {
		r, _ := utf8.DecodeRuneInString(value)
		if unicode.IsUpper(r) {
			return []string{value, "shift+" + string(unicode.ToLower(r))}, value
		}
		return []string{value}, value
	}
	return []string{strings.ToLower(value)}, value
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.grab, k.drop, k.cancel, k.openRecord, k.nextAttribute, k.reload, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown},
		{k.grab, k.drop, k.cancel, k.openRecord, k.copyID},
		{k.nextAttribute, k.prevAttribute, k.nextPage, k.prevPage, k.reload, k.toggleHelp, k.quit},
	}
}
