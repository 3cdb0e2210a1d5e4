package ui

// Config contains TUI-specific configuration.
type Config struct {
	// Title names the list being tested.
	Title string

	MaxWidth  int  `env:"DICTATE_MAX_WIDTH"  envDefault:"80"`
	AltScreen bool `env:"DICTATE_ALT_SCREEN" envDefault:"true"`
	ShowHelp  bool `env:"DICTATE_SHOW_HELP"  envDefault:"true"`
}
