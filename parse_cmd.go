package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dgnsrekt/dictate/internal/items"
)

type outputFormat string

const (
	formatText outputFormat = "text"
	formatYAML outputFormat = "yaml"
)

var (
	parseFormat string
	parseWatch  bool

	parseCmd = &cobra.Command{
		Use:   "parse [FILE|-]",
		Short: "Show how a list is split into test items",
		Long: paragraph(fmt.Sprintf("\n%s a list the way a test would read it: numbering removed, "+
			"hidden answers blanked and paragraphs split into sentences.", keyword("Parse"))),
		Example: paragraph("dictate parse words.txt\ndictate parse --format yaml - < words.txt\ndictate parse --watch words.txt"),
		Args:    cobra.MaximumNArgs(1),
		RunE:    runParse,
	}
)

func parseOutputFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(s)); f {
	case formatText, formatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q: use text or yaml", s)
	}
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := parseOutputFormat(parseFormat)
	if err != nil {
		return err
	}

	if parseWatch {
		if len(args) == 0 || args[0] == "-" {
			return errors.New("--watch needs a file")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return watchList(ctx, expandPath(args[0]), cmd.OutOrStdout(), format)
	}

	text, _, err := readList(args)
	if err != nil {
		return err
	}
	return printItems(cmd.OutOrStdout(), text, format)
}

// yamlItem adds the kind, which items.Item leaves out of its YAML form.
type yamlItem struct {
	Kind       string `yaml:"kind"`
	items.Item `yaml:",inline"`
}

func printItems(w io.Writer, text string, format outputFormat) error {
	list, err := items.ParseList(text)
	if err != nil {
		return err
	}

	if format == formatYAML {
		out := make([]yamlItem, 0, len(list))
		for _, it := range list {
			out = append(out, yamlItem{Kind: it.Kind.String(), Item: it})
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("unable to encode items: %w", err)
		}
		return enc.Close()
	}

	var b strings.Builder
	for i, it := range list {
		if it.IsParagraph() {
			fmt.Fprintf(&b, "%2d. paragraph, %d sentences\n", i+1, it.SentenceCount())
			for j, s := range it.Sentences {
				fmt.Fprintf(&b, "    %c. %s\n", 'a'+j, s.ToRead)
			}
			continue
		}
		fmt.Fprintf(&b, "%2d. %s\n", i+1, it.ToRead)
		if it.Context != "" {
			fmt.Fprintf(&b, "    context: %s\n", it.Context)
		}
		if it.TestedPart != it.ToRead {
			fmt.Fprintf(&b, "    answer:  %s\n", it.TestedPart)
		}
	}
	_, err = io.WriteString(w, b.String())
	return err
}

// watchList prints the items of path, then again each time it changes.
func watchList(ctx context.Context, path string, w io.Writer, format outputFormat) error {
	reprint := func() {
		b, err := os.ReadFile(path)
		if err != nil {
			log.Warn("Could not read list", "path", path, "err", err)
			return
		}
		if err := printItems(w, string(b), format); err != nil {
			fmt.Fprintln(w, err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to watch file: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	// Editors often replace the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("unable to watch file: %w", err)
	}

	reprint()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			log.Debug("List changed", "path", path, "op", ev.Op)
			fmt.Fprintln(w, "---")
			reprint()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("File watcher error", "err", err)
		}
	}
}

func init() {
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", string(formatText), "output format (text or yaml)")
	parseCmd.Flags().BoolVarP(&parseWatch, "watch", "w", false, "print again whenever the file changes")
	parseCmd.Flags().BoolVar(&useSample, "sample", false, "parse the sample list")
}
