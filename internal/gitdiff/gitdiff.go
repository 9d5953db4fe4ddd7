// Package gitdiff produces porcelain word-diff text for a document, either
// by invoking git or from in-memory texts.
package gitdiff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/revmark/revmark/internal/document"
	"github.com/revmark/revmark/internal/simplelogger"
	"github.com/revmark/revmark/internal/worddiff"
)

// Output is one diff invocation's result. A non-zero ExitCode means the
// porcelain must not be trusted; callers show no decorations for it.
type Output struct {
	ExitCode  int
	Porcelain string
}

// Source produces porcelain word-diff text for one document. Implementations
// must be safe to invoke repeatedly; every refresh calls WordDiff once.
type Source interface {
	WordDiff(ctx context.Context) (Output, error)
}

// GitSource diffs a working-tree file against a revision (or the index when
// Revision is empty) using git's porcelain word-diff mode.
type GitSource struct {
	Dir       string // working directory for git; "" means the process cwd
	Path      string // file to diff
	Revision  string // e.g. "HEAD", "HEAD~3", a sha; "" compares to the index
	WordRegex string // --word-diff-regex; "" means the default word pattern
}

func (s GitSource) WordDiff(ctx context.Context) (Output, error) {
	regex := s.WordRegex
	if regex == "" {
		regex = worddiff.DefaultWordRegex
	}

	args := []string{
		"diff",
		"-U0",
		"--diff-algorithm=minimal",
		"--word-diff=porcelain",
		"--word-diff-regex=" + regex,
	}
	if s.Revision != "" {
		args = append(args, s.Revision)
	}
	args = append(args, "--", s.Path)

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = s.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			simplelogger.Log("git diff exited %d: %s", exitErr.ExitCode(), stderr.String())
			return Output{ExitCode: exitErr.ExitCode(), Porcelain: stdout.String()}, nil
		}
		return Output{ExitCode: -1}, fmt.Errorf("run git diff: %w", err)
	}

	return Output{ExitCode: 0, Porcelain: stdout.String()}, nil
}

// TextSource serves a fixed porcelain payload, e.g. captured from stdin or
// scripted by tests.
type TextSource struct {
	Porcelain string
}

func (s TextSource) WordDiff(ctx context.Context) (Output, error) {
	return Output{ExitCode: 0, Porcelain: s.Porcelain}, nil
}

// LocalSource synthesizes porcelain for the edit from OldText to the
// document's current text, with no external tool involved.
type LocalSource struct {
	OldText   string
	Doc       *document.Document
	WordRegex string
}

func (s LocalSource) WordDiff(ctx context.Context) (Output, error) {
	porcelain, err := worddiff.Generate(s.OldText, s.Doc.Text(), s.WordRegex)
	if err != nil {
		return Output{ExitCode: -1}, err
	}
	return Output{ExitCode: 0, Porcelain: porcelain}, nil
}
