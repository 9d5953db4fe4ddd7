// Package cli wires flags, config, the diff source, and the output mode
// together.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/revmark/revmark/internal/config"
	"github.com/revmark/revmark/internal/decoration"
	"github.com/revmark/revmark/internal/document"
	"github.com/revmark/revmark/internal/gitdiff"
	"github.com/revmark/revmark/internal/render"
	"github.com/revmark/revmark/internal/tui"
)

// Version is the revmark version. It is a var (not a const) so build tooling
// can override it via -ldflags.
var Version = "0.1.0"

// RunOptions override standard I/O and the interactive program launcher.
// Nil fields use the defaults. Overriding is useful for testing.
type RunOptions struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// StartTUI runs the interactive program. When nil, a bubbletea program on
	// the real terminal is used.
	StartTUI func(m tea.Model) error
}

// Run runs the CLI with args (typically os.Args).
//
// It returns a recommended exit code and an error, if any:
//   - 0 -> err == nil
//   - 1 -> err != nil, but the structure of args is sound
//   - 2 -> args parse error or misuse of flags
//
// In cases of errors, Run has already written a message to opts.Err || Stderr.
func Run(args []string, opts *RunOptions) (int, error) {
	argv := args
	if len(argv) > 0 {
		argv = argv[1:]
	}

	var in io.Reader = os.Stdin
	var out io.Writer = os.Stdout
	var errW io.Writer = os.Stderr
	if opts != nil {
		if opts.In != nil {
			in = opts.In
		}
		if opts.Out != nil {
			out = opts.Out
		}
		if opts.Err != nil {
			errW = opts.Err
		}
	}

	fs := flag.NewFlagSet("revmark", flag.ContinueOnError)
	fs.SetOutput(errW)
	fs.Usage = func() {
		fmt.Fprintf(errW, "usage: revmark [flags] FILE\n\nFlags:\n")
		fs.PrintDefaults()
	}

	var (
		rev        = fs.String("rev", "", "revision to diff against (default: the index)")
		wordRegex  = fs.String("word-regex", "", "word pattern for the diff")
		oldFile    = fs.String("old", "", "diff against this file instead of git")
		stdinDiff  = fs.Bool("stdin", false, "read porcelain word-diff from stdin instead of running git")
		plain      = fs.Bool("plain", false, "render once to stdout and exit")
		version    = fs.Bool("version", false, "print the version and exit")
		configPath = fs.String("config", "", "config file (default: $XDG_CONFIG_HOME/revmark/config.yaml)")
		noConfig   = fs.Bool("no-config", false, "skip loading the config file")
	)

	if err := fs.Parse(argv); err != nil {
		return 2, err
	}

	if *version {
		fmt.Fprintln(out, "revmark "+Version)
		return 0, nil
	}

	file := fs.Arg(0)
	if file == "" || fs.NArg() > 1 {
		fs.Usage()
		return 2, errors.New("exactly one FILE argument is required")
	}

	cfg, err := loadConfig(*configPath, *noConfig)
	if err != nil {
		fmt.Fprintln(errW, err)
		return 1, err
	}
	if *wordRegex == "" {
		*wordRegex = cfg.WordRegex
	}
	if *rev == "" {
		*rev = cfg.Revision
	}

	data, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintln(errW, err)
		return 1, err
	}
	doc := document.New(string(data))

	src, err := pickSource(doc, in, *stdinDiff, *oldFile, file, *rev, *wordRegex)
	if err != nil {
		fmt.Fprintln(errW, err)
		return 1, err
	}

	session := decoration.NewSession(doc)
	if _, err := session.Refresh(context.Background(), src); err != nil {
		fmt.Fprintln(errW, err)
		return 1, err
	}

	styles := cfg.Styles.Apply(render.DefaultStyles())
	stdoutTTY := isTerminal(out)
	startTUI := defaultStartTUI(in, out)
	if opts != nil && opts.StartTUI != nil {
		startTUI = opts.StartTUI
	}

	if *plain || cfg.Plain || (!stdoutTTY && (opts == nil || opts.StartTUI == nil)) {
		if !stdoutTTY {
			styles = render.PlainStyles()
		}
		fmt.Fprint(out, render.Render(doc, session.Regions(), styles))
		return 0, nil
	}

	m := tui.New(session, src, styles, filepath.Base(file))
	if err := startTUI(m); err != nil {
		fmt.Fprintln(errW, err)
		return 1, err
	}
	return 0, nil
}

func loadConfig(path string, skip bool) (config.Config, error) {
	if skip {
		return config.Config{}, nil
	}
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			// No usable XDG config home; run with defaults.
			return config.Config{}, nil
		}
		path = p
	}
	return config.Load(path)
}

// pickSource selects the diff source: a stdin payload, a local old file, or
// git against the file's repository.
func pickSource(doc *document.Document, in io.Reader, stdinDiff bool, oldFile, file, rev, wordRegex string) (gitdiff.Source, error) {
	switch {
	case stdinDiff && oldFile != "":
		return nil, errors.New("-stdin and -old are mutually exclusive")
	case stdinDiff:
		porcelain, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return gitdiff.TextSource{Porcelain: string(porcelain)}, nil
	case oldFile != "":
		old, err := os.ReadFile(oldFile)
		if err != nil {
			return nil, err
		}
		return gitdiff.LocalSource{OldText: string(old), Doc: doc, WordRegex: wordRegex}, nil
	default:
		return gitdiff.GitSource{
			Dir:       filepath.Dir(file),
			Path:      filepath.Base(file),
			Revision:  rev,
			WordRegex: wordRegex,
		}, nil
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func defaultStartTUI(in io.Reader, out io.Writer) func(tea.Model) error {
	return func(m tea.Model) error {
		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithInput(in), tea.WithOutput(out))
		_, err := p.Run()
		return err
	}
}
