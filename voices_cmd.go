package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/dictate/internal/speech"
)

var voicesCmd = &cobra.Command{
	Use:     "voices [QUERY]",
	Short:   "List the voices a test can use",
	Long:    paragraph(fmt.Sprintf("\nList the English and Chinese voices of the speech engine, %s first.", keyword("best"))),
	Example: paragraph("dictate voices\ndictate voices --engine gtts\ndictate voices zh"),
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		defer engine.Close() //nolint:errcheck

		voices, err := voicesFor(cmd.Context(), engine)
		if err != nil {
			return err
		}

		ranked := speech.Rank(voices)
		if len(args) == 1 {
			ranked = filterVoices(ranked, args[0])
		}
		return printVoices(cmd.OutOrStdout(), ranked, viper.GetString("voice"))
	},
}

type voiceSource []speech.Voice

func (s voiceSource) String(i int) string {
	return s[i].ID + " " + s[i].Name + " " + s[i].Lang
}

func (s voiceSource) Len() int { return len(s) }

// filterVoices keeps the voices matching query, best match first.
func filterVoices(voices []speech.Voice, query string) []speech.Voice {
	matches := fuzzy.FindFrom(query, voiceSource(voices))
	out := make([]speech.Voice, 0, len(matches))
	for _, m := range matches {
		out = append(out, voices[m.Index])
	}
	return out
}

func printVoices(w io.Writer, voices []speech.Voice, selected string) error {
	if len(voices) == 0 {
		_, err := fmt.Fprintln(w, "No matching voices.")
		return err
	}

	rows := [][]string{{"", "ID", "NAME", "LANGUAGE", "GROUP", "SCORE"}}
	for i, v := range voices {
		mark := ""
		if v.ID == selected || (selected == "" && i == 0) {
			mark = "*"
		}
		rows = append(rows, []string{mark, v.ID, v.Name, v.Lang, speech.Group(v.Lang), strconv.Itoa(speech.Score(v))})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	var b strings.Builder
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = runewidth.FillRight(cell, widths[i])
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, "  "), " ") + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
