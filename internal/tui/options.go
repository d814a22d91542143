package tui

// Option configures a Model at construction.
type Option func(*Model)

// CardConfig controls how much of each record a card shows.
type CardConfig struct {
	MaxFields int
}

// DefaultCardConfig returns the default card layout.
func DefaultCardConfig() CardConfig {
	return CardConfig{MaxFields: 2}
}

// WithCardConfig sets how many secondary fields each card renders.
func WithCardConfig(cfg CardConfig) Option {
	return func(m *Model) {
		if cfg.MaxFields >= 0 {
			m.cards = cfg
		}
	}
}

// WithKeyConfig applies key binding overrides.
func WithKeyConfig(cfg KeyConfig) Option {
	return func(m *Model) {
		m.keys.applyConfig(cfg)
	}
}

// WithClipboard replaces the clipboard writer used by the copy binding.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

// WithTitle sets the header title.
func WithTitle(title string) Option {
	return func(m *Model) {
		if title != "" {
			m.title = title
		}
	}
}
