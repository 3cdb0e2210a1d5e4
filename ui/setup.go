package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/dgnsrekt/dictate/internal/items"
	"github.com/dgnsrekt/dictate/internal/session"
	"github.com/dgnsrekt/dictate/internal/speech"
)

var speeds = []float64{0.5, 0.75, 1, 1.25, 1.5, 1.75, 2}

// Setup is what the setup form collects.
type Setup struct {
	List     string
	Items    []items.Item
	Settings session.Settings
}

// setupValues holds the form fields before they are validated.
type setupValues struct {
	list        string
	voice       string
	timerMode   string
	countdown   string
	rereadGap   string
	nextItemGap string
	autoNext    string
	speed       float64
	showContext bool
	randomize   bool
	recurring   bool
	punctuation bool
}

func newSetupValues(list string, s session.Settings) *setupValues {
	return &setupValues{
		list:        list,
		voice:       s.Voice.ID,
		timerMode:   string(s.TimerMode),
		countdown:   strconv.Itoa(s.CountdownMinutes),
		rereadGap:   formatSeconds(s.RereadGap),
		nextItemGap: formatSeconds(s.NextItemGap),
		autoNext:    formatSeconds(s.AutoNextDelay),
		speed:       s.ReadingSpeed,
		showContext: s.ShowContext,
		randomize:   s.Randomize,
		recurring:   s.RecurringReadout,
		punctuation: s.ReadPunctuation,
	}
}

// setup validates the fields and builds the run settings on top of base.
func (v *setupValues) setup(base session.Settings, voices []speech.Voice) (Setup, error) {
	parsed, err := items.ParseList(v.list)
	if err != nil {
		return Setup{}, err
	}

	voice, err := speech.Select(voices, v.voice)
	if err != nil {
		return Setup{}, err
	}

	mode, err := session.ParseTimerMode(v.timerMode)
	if err != nil {
		return Setup{}, err
	}

	minutes, err := parseCount(v.countdown, 1)
	if err != nil {
		return Setup{}, fmt.Errorf("countdown minutes: %w", err)
	}
	reread, err := parseSeconds(v.rereadGap)
	if err != nil {
		return Setup{}, fmt.Errorf("reread gap: %w", err)
	}
	gap, err := parseSeconds(v.nextItemGap)
	if err != nil {
		return Setup{}, fmt.Errorf("next item gap: %w", err)
	}
	autoNext, err := parseSeconds(v.autoNext)
	if err != nil {
		return Setup{}, fmt.Errorf("auto next delay: %w", err)
	}

	s := base
	s.Voice = voice
	s.TimerMode = mode
	s.CountdownMinutes = minutes
	s.RereadGap = reread
	s.NextItemGap = gap
	s.AutoNextDelay = autoNext
	s.ReadingSpeed = v.speed
	s.ShowContext = v.showContext
	s.Randomize = v.randomize
	s.RecurringReadout = v.recurring
	s.ReadPunctuation = v.punctuation

	return Setup{List: v.list, Items: parsed, Settings: s.Normalize()}, nil
}

var errNotNumber = errors.New("enter a whole number")

func parseCount(s string, least int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errNotNumber
	}
	if n < least {
		return 0, fmt.Errorf("must be at least %d", least)
	}
	return n, nil
}

func parseSeconds(s string) (time.Duration, error) {
	n, err := parseCount(s, 0)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}

func formatSeconds(d time.Duration) string {
	return strconv.Itoa(int(d / time.Second))
}

func validateList(s string) error {
	_, err := items.ParseList(s)
	return err
}

func validateSeconds(s string) error {
	_, err := parseSeconds(s)
	return err
}

func validateMinutes(s string) error {
	_, err := parseCount(s, 1)
	return err
}

func voiceOptions(voices []speech.Voice) []huh.Option[string] {
	grouped := speech.Grouped(voices)
	var opts []huh.Option[string]
	for _, group := range speech.GroupNames() {
		for _, v := range grouped[group] {
			opts = append(opts, huh.NewOption(group+" · "+v.String(), v.ID))
		}
	}
	return opts
}

func speedOptions() []huh.Option[float64] {
	opts := make([]huh.Option[float64], 0, len(speeds))
	for _, s := range speeds {
		opts = append(opts, huh.NewOption(strconv.FormatFloat(s, 'f', -1, 64)+"x", s))
	}
	return opts
}

// SetupForm asks for the list and the settings of the next run.
type SetupForm struct {
	form   *huh.Form
	values *setupValues
	base   session.Settings
	voices []speech.Voice
}

// NewSetupForm builds the form, prefilled with list and settings.
func NewSetupForm(list string, voices []speech.Voice, settings session.Settings) *SetupForm {
	values := newSetupValues(list, settings)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("dictate").
				Description(SetupTagline),

			huh.NewText().
				Title("List").
				Description("One word, phrase or paragraph per line. Wrap the answer in **double asterisks** to hide it.").
				Lines(10).
				CharLimit(0).
				Validate(validateList).
				Value(&values.list),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Voice").
				Options(voiceOptions(voices)...).
				Value(&values.voice),

			huh.NewSelect[float64]().
				Title("Reading speed").
				Options(speedOptions()...).
				Value(&values.speed),

			huh.NewSelect[string]().
				Title("Timer").
				Options(
					huh.NewOption("Countdown", string(session.ModeCountdown)),
					huh.NewOption("Stopwatch", string(session.ModeStopwatch)),
				).
				Value(&values.timerMode),

			huh.NewInput().
				Title("Countdown minutes").
				Validate(validateMinutes).
				Value(&values.countdown),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Seconds before reading again").
				Validate(validateSeconds).
				Value(&values.rereadGap),

			huh.NewInput().
				Title("Seconds between items").
				Validate(validateSeconds).
				Value(&values.nextItemGap),

			huh.NewInput().
				Title("Seconds before the next item").
				Description("0 waits for you. Anything under 8 is raised to 8.").
				Validate(validateSeconds).
				Value(&values.autoNext),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Show context").Value(&values.showContext),
			huh.NewConfirm().Title("Randomize order").Value(&values.randomize),
			huh.NewConfirm().Title("Keep reading each item until I move on").Value(&values.recurring),
			huh.NewConfirm().Title("Read punctuation aloud").Value(&values.punctuation),
		),
	).WithTheme(huh.ThemeCharm())

	return &SetupForm{
		form:   form,
		values: values,
		base:   settings,
		voices: voices,
	}
}

// Run shows the form and returns the result. It returns huh.ErrUserAborted
// if the user quits the form.
func (f *SetupForm) Run() (Setup, error) {
	if err := f.form.Run(); err != nil {
		return Setup{}, err
	}
	return f.values.setup(f.base, f.voices)
}
