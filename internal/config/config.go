// Package config loads optional user configuration from a YAML file under
// the XDG config directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/revmark/revmark/internal/render"
)

// Config is the user-editable configuration. Every field is optional; the
// zero value means "use the built-in defaults".
type Config struct {
	// WordRegex overrides the word pattern handed to the diff tool.
	WordRegex string `yaml:"word_regex"`
	// Revision is the default revision to diff against, e.g. "HEAD~1".
	Revision string `yaml:"revision"`
	// Plain renders once to stdout instead of opening the interactive view.
	Plain bool `yaml:"plain"`

	Styles StyleConfig `yaml:"styles"`
}

// StyleConfig overrides individual colors of the default palette. Values are
// anything lipgloss accepts: ANSI indexes ("224") or hex ("#ffd7d7").
type StyleConfig struct {
	AddedFg   string `yaml:"added_fg"`
	AddedBg   string `yaml:"added_bg"`
	RemovedFg string `yaml:"removed_fg"`
	RemovedBg string `yaml:"removed_bg"`
	ChangedFg string `yaml:"changed_fg"`
	ChangedBg string `yaml:"changed_bg"`
}

// DefaultPath returns the config file's path under the XDG config home. The
// file need not exist.
func DefaultPath() (string, error) {
	return xdg.ConfigFile("revmark/config.yaml")
}

// Load reads and parses the config at path. A missing file is not an error;
// it yields the zero Config. Unknown keys are rejected so typos surface
// instead of being silently ignored.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Apply returns st with any configured color overrides set.
func (sc StyleConfig) Apply(st render.Styles) render.Styles {
	st.Added = override(st.Added, sc.AddedFg, sc.AddedBg)
	st.Removed = override(st.Removed, sc.RemovedFg, sc.RemovedBg)
	st.Changed = override(st.Changed, sc.ChangedFg, sc.ChangedBg)
	st.FocusedChanged = st.Added
	return st
}

func override(s lipgloss.Style, fg, bg string) lipgloss.Style {
	if fg != "" {
		s = s.Foreground(lipgloss.Color(fg))
	}
	if bg != "" {
		s = s.Background(lipgloss.Color(bg))
	}
	return s
}
