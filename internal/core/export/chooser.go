package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ncruces/zenity"
)

// ErrCancelled is returned by a PathChooser when the user declines to save
var ErrCancelled = errors.New("operation cancelled by user")

// Filter is a named file-type filter shown by interactive choosers
type Filter struct {
	Name    string
	Pattern string
}

// DefaultFilters are offered for every export
var DefaultFilters = []Filter{
	{Name: "Markdown Content", Pattern: "*.mdc"},
	{Name: "All Files", Pattern: "*"},
}

// Prompt seeds a save-path choice
type Prompt struct {
	InitialDir string
	FileName   string
	Filters    []Filter
}

// PathChooser picks where an export is written. It returns ErrCancelled
// when the user backs out.
type PathChooser interface {
	ChoosePath(ctx context.Context, p Prompt) (string, error)
}

// StaticChooser is the headless chooser: it always saves under Dir with
// the suggested name. Cancellation comes from the request instead.
type StaticChooser struct {
	Dir string
}

// ChoosePath implements PathChooser
func (c StaticChooser) ChoosePath(_ context.Context, p Prompt) (string, error) {
	dir := c.Dir
	if dir == "" {
		dir = p.InitialDir
	}
	return filepath.Join(dir, p.FileName), nil
}

// SaveFunc shows a save dialog configured by opts and returns the chosen path
type SaveFunc func(opts ...zenity.Option) (string, error)

// DialogChooser shows the platform's native save dialog and blocks until the
// user answers or ctx is done.
type DialogChooser struct {
	save SaveFunc
}

// NewDialogChooser creates a DialogChooser backed by zenity
func NewDialogChooser() *DialogChooser {
	return &DialogChooser{save: zenity.SelectFileSave}
}

// ChoosePath implements PathChooser
func (c *DialogChooser) ChoosePath(ctx context.Context, p Prompt) (string, error) {
	path, err := c.save(
		zenity.Context(ctx),
		zenity.Title("Save rule"),
		zenity.Filename(filepath.Join(p.InitialDir, p.FileName)),
		zenity.ConfirmOverwrite(),
		fileFilters(p.Filters),
	)
	if errors.Is(err, zenity.ErrCanceled) {
		return "", ErrCancelled
	}
	if err != nil {
		return "", fmt.Errorf("save dialog failed: %w", err)
	}

	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrCancelled
	}
	if filepath.Ext(path) == "" {
		path += Extension
	}
	return path, nil
}

func fileFilters(filters []Filter) zenity.FileFilters {
	out := make(zenity.FileFilters, 0, len(filters))
	for _, f := range filters {
		out = append(out, zenity.FileFilter{Name: f.Name, Patterns: []string{f.Pattern}})
	}
	return out
}
