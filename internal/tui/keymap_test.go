package tui

import (
	"testing"

	"charm.land/bubbles/v2/key"
)

// TestParseBindingKeys verifies key parsing behavior for configured overrides.
func TestParseBindingKeys(t *testing.T) {
	t.Run("space aliases", func(t *testing.T) {
		keys, help := parseBindingKeys("space", ".")
		if len(keys) != 2 || keys[0] != " " || keys[1] != "space" {
			t.Fatalf("unexpected parsed space keys %#v", keys)
		}
		if help != "space" {
			t.Fatalf("unexpected space help text %q", help)
		}
	})

	t.Run("uppercase rune includes shift alias", func(t *testing.T) {
		keys, help := parseBindingKeys("Z", "z")
		if len(keys) != 2 || keys[0] != "Z" || keys[1] != "shift+z" {
			t.Fatalf("unexpected uppercase parsed keys %#v", keys)
		}
		if help != "Z" {
			t.Fatalf("unexpected uppercase help text %q", help)
		}
	})

	t.Run("multi rune lowercases key matcher", func(t *testing.T) {
		keys, help := parseBindingKeys("Ctrl+R", "r")
		if len(keys) != 1 || keys[0] != "ctrl+r" {
			t.Fatalf("unexpected multi-rune parsed keys %#v", keys)
		}
		if help != "Ctrl+R" {
			t.Fatalf("unexpected multi-rune help text %q", help)
		}
	})

	t.Run("blank uses fallback", func(t *testing.T) {
		keys, help := parseBindingKeys("", "x")
		if len(keys) != 1 || keys[0] != "x" {
			t.Fatalf("unexpected fallback parsed keys %#v", keys)
		}
		if help != "x" {
			t.Fatalf("unexpected fallback help text %q", help)
		}
	})
}

// TestConfigureBinding verifies binding override application behavior.
func TestConfigureBinding(t *testing.T) {
	b := key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "old"))
	configureBinding(&b, "v", "a", "activity log")
	keys := b.Keys()
	if len(keys) != 1 || keys[0] != "v" {
		t.Fatalf("unexpected configured keys %#v", keys)
	}
	if b.Help().Key != "v" || b.Help().Desc != "activity log" {
		t.Fatalf("unexpected configured help %#v", b.Help())
	}
}

// TestKeyMapApplyConfig verifies dynamic key map override behavior.
func TestKeyMapApplyConfig(t *testing.T) {
	k := newKeyMap()
	k.applyConfig(KeyConfig{
		Grab:          "g",
		Drop:          "D",
		OpenRecord:    "ctrl+o",
		NextAttribute: "",
		CopyID:        "c",
	})

	assertKeys := func(name string, binding key.Binding, expected ...string) {
		t.Helper()
		got := binding.Keys()
		if len(got) != len(expected) {
			t.Fatalf("%s key count mismatch got=%#v expected=%#v", name, got, expected)
		}
		for i := range expected {
			if got[i] != expected[i] {
				t.Fatalf("%s key mismatch got=%#v expected=%#v", name, got, expected)
			}
		}
	}

	assertKeys("grab", k.grab, "g")
	assertKeys("drop", k.drop, "D", "shift+d")
	assertKeys("open record", k.openRecord, "ctrl+o")
	assertKeys("next attribute", k.nextAttribute, "tab")
	assertKeys("copy id", k.copyID, "c")
	if k.drop.Help().Desc != "drop card" {
		t.Fatalf("unexpected drop help %#v", k.drop.Help())
	}
}

// TestKeyMapDefaultsIncludeDragKeys verifies grab and drop key defaults.
func TestKeyMapDefaultsIncludeDragKeys(t *testing.T) {
	k := newKeyMap()
	if got := k.grab.Keys(); len(got) != 2 || got[0] != " " || got[1] != "space" {
		t.Fatalf("unexpected grab keys %#v", got)
	}
	if got := k.drop.Keys(); len(got) != 1 || got[0] != "enter" {
		t.Fatalf("unexpected drop keys %#v", got)
	}
	if got := k.cancel.Keys(); len(got) != 1 || got[0] != "esc" {
		t.Fatalf("unexpected cancel keys %#v", got)
	}
	if len(k.ShortHelp()) == 0 || len(k.FullHelp()) != 3 {
		t.Fatal("expected short and full help bindings")
	}
}
