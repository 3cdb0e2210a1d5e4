package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# speech engine: auto, piper, gtts or mock
engine: "auto"
# voice ID, empty picks the best ranked voice (see: dictate voices)
voice: ""
# playback volume (0.0 to 1.0)
volume: 1.0

settings:
  # seconds before an item is read the second time
  reread_gap: 5
  # seconds between announcing an item and reading it
  next_item_gap: 2
  # seconds before moving on by itself, 0 waits for you (1-7 become 8)
  auto_next_delay: 10
  # countdown or stopwatch
  timer_mode: "countdown"
  countdown_minutes: 10
  show_context: true
  randomize: false
  # 0.5 to 2.0
  reading_speed: 1.0
  # keep reading the item until you move on
  recurring_readout: false
  read_punctuation: false
  # give up on a reading after this long, 0 estimates from the text
  max_utterance_wait: "0s"

piper:
  # binary: "/usr/local/bin/piper"
  # directory holding *.onnx voice models and their .onnx.json configs
  models_dir: "~/.local/share/piper"
  timeout: "10s"

gtts:
  binary: "gtts-cli"
  requests_per_minute: 50
  # speeds at or below this are read slowly
  slow_threshold: 0.75
  timeout: "15s"

fallback:
  # piper failures in a row before auto switches to gtts
  max_failures: 3

cache:
  enabled: true
  # dir: "~/.cache/dictate/audio"
  memory_mb: 32
  disk_mb: 256
  ttl: "168h"
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the dictate config file",
	Long:    paragraph(fmt.Sprintf("\n%s the dictate config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("dictate config\ndictate config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Dictate", configPath())
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configPath())
		return nil
	},
}

// configPath is the --config flag, the file viper loaded, or the default
// location, in that order.
func configPath() string {
	if configFile != "" {
		return expandPath(configFile)
	}
	if used := viper.GetViper().ConfigFileUsed(); used != "" {
		return used
	}
	return defaultConfigFile
}

func ensureConfigFile() error {
	file := configPath()
	if file == "" {
		return errors.New("could not determine the configuration file")
	}

	if ext := path.Ext(file); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(file), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(file)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
