// Package main provides the entry point for the dictate CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	homedir "github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dgnsrekt/dictate/internal/audio"
	"github.com/dgnsrekt/dictate/internal/cache"
	"github.com/dgnsrekt/dictate/internal/items"
	"github.com/dgnsrekt/dictate/internal/session"
	"github.com/dgnsrekt/dictate/internal/speech"
	"github.com/dgnsrekt/dictate/internal/speech/engines"
	"github.com/dgnsrekt/dictate/ui"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile        string
	defaultConfigFile string
	useSample         bool
	skipSetup         bool

	// resolved in validateOptions
	engineName string
	settings   session.Settings

	rootCmd = &cobra.Command{
		Use:   "dictate [FILE|-]",
		Short: "Spelling and dictation self-tests, read aloud",
		Long: paragraph(
			fmt.Sprintf("\nRead a list of words and sentences %s, one item at a time.", keyword("aloud")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

// validateOptions reads the run settings from viper.
func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(expandPath(configFile))
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}

	engineName = viper.GetString("engine")
	if !isEngineName(engineName) {
		return fmt.Errorf("%w: %q (want one of %s)", engines.ErrUnknownEngine, engineName, strings.Join(engines.Names(), ", "))
	}

	mode, err := session.ParseTimerMode(viper.GetString("settings.timer_mode"))
	if err != nil {
		return err
	}

	speed := viper.GetFloat64("settings.reading_speed")
	if err := speech.ValidateRate(speed); err != nil {
		return fmt.Errorf("reading speed must be between %.1f and %.1f, got %.2f", speech.MinRate, speech.MaxRate, speed)
	}

	settings = session.Settings{
		RereadGap:        seconds("settings.reread_gap"),
		NextItemGap:      seconds("settings.next_item_gap"),
		AutoNextDelay:    seconds("settings.auto_next_delay"),
		TimerMode:        mode,
		CountdownMinutes: viper.GetInt("settings.countdown_minutes"),
		ShowContext:      viper.GetBool("settings.show_context"),
		Randomize:        viper.GetBool("settings.randomize"),
		ReadingSpeed:     speed,
		RecurringReadout: viper.GetBool("settings.recurring_readout"),
		ReadPunctuation:  viper.GetBool("settings.read_punctuation"),
		MaxUtteranceWait: viper.GetDuration("settings.max_utterance_wait"),
		SynthesisTimeout: synthesisTimeout(engineName),
	}.Normalize()
	return settings.Validate()
}

func isEngineName(name string) bool {
	for _, n := range engines.Names() {
		if strings.EqualFold(name, n) {
			return true
		}
	}
	return false
}

// synthesisTimeout is the longest the named engine may spend on one
// utterance. auto may try piper and then gtts.
func synthesisTimeout(name string) time.Duration {
	piper, gtts := viper.GetDuration("piper.timeout"), viper.GetDuration("gtts.timeout")
	switch strings.ToLower(name) {
	case "piper":
		return piper
	case "gtts":
		return gtts
	case "mock":
		return 0
	default:
		return piper + gtts
	}
}

// seconds reads a whole number of seconds.
func seconds(key string) time.Duration {
	return time.Duration(viper.GetInt(key)) * time.Second
}

func expandPath(path string) string {
	if expanded, err := homedir.Expand(path); err == nil {
		return expanded
	}
	return path
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// readList returns the list text and a title for it.
func readList(args []string) (string, string, error) {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}

	if arg == "" {
		if yes, err := stdinIsPipe(); err != nil {
			return "", "", err
		} else if yes {
			arg = "-"
		}
	}

	switch {
	case arg == "-":
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("unable to read from stdin: %w", err)
		}
		return string(b), "stdin", nil
	case arg != "":
		path := expandPath(arg)
		b, err := os.ReadFile(path)
		if err != nil {
			return "", "", fmt.Errorf("unable to open file: %w", err)
		}
		return string(b), filepath.Base(path), nil
	case useSample:
		return items.Sample, "sample", nil
	default:
		return "", "", nil
	}
}

func execute(cmd *cobra.Command, args []string) error {
	text, title, err := readList(args)
	if err != nil {
		return err
	}

	// Without a terminal there is nobody to test: show what would be read.
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return printItems(cmd.OutOrStdout(), text, formatText)
	}
	return runTUI(cmd.Context(), text, title)
}

func newEngine() (speech.Engine, error) {
	return engines.New(engineName, engines.Config{
		Piper: engines.PiperConfig{
			Binary:    viper.GetString("piper.binary"),
			ModelsDir: expandPath(viper.GetString("piper.models_dir")),
			Timeout:   viper.GetDuration("piper.timeout"),
		},
		GTTS: engines.GTTSConfig{
			Binary:            viper.GetString("gtts.binary"),
			RequestsPerMinute: viper.GetInt("gtts.requests_per_minute"),
			SlowThreshold:     viper.GetFloat64("gtts.slow_threshold"),
			Timeout:           viper.GetDuration("gtts.timeout"),
		},
		MaxFailures: viper.GetInt("fallback.max_failures"),
	})
}

func cacheDir() (string, error) {
	if dir := viper.GetString("cache.dir"); dir != "" {
		return expandPath(dir), nil
	}
	dir, err := gap.NewScope(gap.User, "dictate").CacheDir()
	if err != nil {
		return "", fmt.Errorf("unable to find cache directory: %w", err)
	}
	return filepath.Join(dir, "audio"), nil
}

func newCacheManager() (*cache.Manager, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, err
	}
	cfg := cache.DefaultConfig()
	cfg.DiskPath = dir
	cfg.MemoryCapacity = viper.GetInt64("cache.memory_mb") << 20
	cfg.DiskCapacity = viper.GetInt64("cache.disk_mb") << 20
	cfg.TTL = viper.GetDuration("cache.ttl")
	return cache.NewManager(cfg)
}

// voicesFor returns the engine's voices, failing when none can be tested with.
func voicesFor(ctx context.Context, engine speech.Engine) ([]speech.Voice, error) {
	voices, err := engine.Voices(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to list voices: %w", err)
	}
	if len(speech.Eligible(voices)) == 0 {
		return nil, speech.ErrNoVoices
	}
	return voices, nil
}

func runTUI(ctx context.Context, text, title string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	// Read environment to get display settings
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}
	cfg.Title = title

	engine, err := newEngine()
	if err != nil {
		return err
	}
	defer engine.Close() //nolint:errcheck
	if err := engine.Validate(); err != nil {
		return err
	}

	voices, err := voicesFor(ctx, engine)
	if err != nil {
		return err
	}
	settings.Voice, err = speech.Select(voices, viper.GetString("voice"))
	if err != nil {
		return err
	}

	playerCfg := audio.DefaultPlayerConfig()
	playerCfg.Volume = viper.GetFloat64("volume")
	player, err := audio.NewPlayer(playerCfg)
	if err != nil {
		return speech.NewSpeechError(speech.ErrorCodeAudioDevice, "unable to open audio device", err)
	}
	defer player.Close() //nolint:errcheck

	var audioCache speech.AudioCache
	if viper.GetBool("cache.enabled") {
		mgr, err := newCacheManager()
		if err != nil {
			log.Warn("Audio cache disabled", "err", err)
		} else {
			defer mgr.Close() //nolint:errcheck
			audioCache = mgr
		}
	}

	speaker := speech.NewEngineSpeaker(engine, player, audioCache)
	defer speaker.Close() //nolint:errcheck

	for {
		setup, err := runSetup(text, voices)
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		if err != nil {
			return err
		}
		text, settings = setup.List, setup.Settings

		s := session.New(setup.Items, setup.Settings, nil)
		feed := ui.NewFeed()
		runner := session.NewRunner(s, speaker, session.SystemClock(), feed)
		runner.Start(ctx)

		result, err := ui.Run(ui.NewProgram(cfg, s, runner, feed))
		_ = runner.Close()
		if err != nil {
			return err
		}
		if !result.Reset {
			return nil
		}
		log.Debug("Back to setup")
	}
}

// runSetup asks for the list and settings, or takes them as configured
// with --yes.
func runSetup(text string, voices []speech.Voice) (ui.Setup, error) {
	if !skipSetup {
		return ui.NewSetupForm(text, voices, settings).Run()
	}
	list, err := items.ParseList(text)
	if err != nil {
		return ui.Setup{}, err
	}
	return ui.Setup{List: text, Items: list, Settings: settings}, nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", configPath()))
	rootCmd.PersistentFlags().StringP("engine", "e", "auto", "speech engine ("+strings.Join(engines.Names(), ", ")+")")
	rootCmd.Flags().BoolVar(&useSample, "sample", false, "start with the sample list")
	rootCmd.Flags().BoolVarP(&skipSetup, "yes", "y", false, "skip the setup form and use the configured settings")
	rootCmd.Flags().String("voice", "", "voice ID (see dictate voices)")
	rootCmd.Flags().Float64P("speed", "s", 1.0, "reading speed (0.5 to 2)")
	rootCmd.Flags().String("timer", string(session.ModeCountdown), "timer mode (countdown or stopwatch)")
	rootCmd.Flags().IntP("minutes", "m", 10, "countdown minutes")
	rootCmd.Flags().BoolP("randomize", "r", false, "test items in random order")
	rootCmd.Flags().Bool("recurring", false, "keep reading each item until you move on")
	rootCmd.Flags().Bool("punctuation", false, "read punctuation aloud")
	rootCmd.Flags().Bool("context", true, "show the sentence around a hidden answer")

	// Config bindings
	_ = viper.BindPFlag("engine", rootCmd.PersistentFlags().Lookup("engine"))
	_ = viper.BindPFlag("voice", rootCmd.Flags().Lookup("voice"))
	_ = viper.BindPFlag("settings.reading_speed", rootCmd.Flags().Lookup("speed"))
	_ = viper.BindPFlag("settings.timer_mode", rootCmd.Flags().Lookup("timer"))
	_ = viper.BindPFlag("settings.countdown_minutes", rootCmd.Flags().Lookup("minutes"))
	_ = viper.BindPFlag("settings.randomize", rootCmd.Flags().Lookup("randomize"))
	_ = viper.BindPFlag("settings.recurring_readout", rootCmd.Flags().Lookup("recurring"))
	_ = viper.BindPFlag("settings.read_punctuation", rootCmd.Flags().Lookup("punctuation"))
	_ = viper.BindPFlag("settings.show_context", rootCmd.Flags().Lookup("context"))

	setDefaults()

	rootCmd.AddCommand(configCmd, manCmd, parseCmd, voicesCmd, cacheCmd)
}

func setDefaults() {
	defaults := session.DefaultSettings()
	viper.SetDefault("engine", "auto")
	viper.SetDefault("voice", "")
	viper.SetDefault("volume", 1.0)

	viper.SetDefault("settings.reread_gap", int(defaults.RereadGap/time.Second))
	viper.SetDefault("settings.next_item_gap", int(defaults.NextItemGap/time.Second))
	viper.SetDefault("settings.auto_next_delay", int(defaults.AutoNextDelay/time.Second))
	viper.SetDefault("settings.timer_mode", string(defaults.TimerMode))
	viper.SetDefault("settings.countdown_minutes", defaults.CountdownMinutes)
	viper.SetDefault("settings.show_context", defaults.ShowContext)
	viper.SetDefault("settings.randomize", defaults.Randomize)
	viper.SetDefault("settings.reading_speed", defaults.ReadingSpeed)
	viper.SetDefault("settings.recurring_readout", defaults.RecurringReadout)
	viper.SetDefault("settings.read_punctuation", defaults.ReadPunctuation)
	viper.SetDefault("settings.max_utterance_wait", time.Duration(0))

	viper.SetDefault("piper.binary", "")
	viper.SetDefault("piper.models_dir", "~/.local/share/piper")
	viper.SetDefault("piper.timeout", 10*time.Second)
	viper.SetDefault("gtts.binary", "gtts-cli")
	viper.SetDefault("gtts.requests_per_minute", 50)
	viper.SetDefault("gtts.slow_threshold", 0.75)
	viper.SetDefault("gtts.timeout", 15*time.Second)
	viper.SetDefault("fallback.max_failures", 3)

	cfg := cache.DefaultConfig()
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.dir", "")
	viper.SetDefault("cache.memory_mb", cfg.MemoryCapacity>>20)
	viper.SetDefault("cache.disk_mb", cfg.DiskCapacity>>20)
	viper.SetDefault("cache.ttl", cfg.TTL)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "dictate")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "dictate")}, dirs...)
	}

	if c := os.Getenv("DICTATE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	// A .env in the working directory can set DICTATE_* variables.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("Could not load .env file", "err", err)
	}

	viper.SetConfigName("dictate")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("dictate")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	defaultConfigFile = filepath.Join(dirs[0], "dictate.yml")
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
