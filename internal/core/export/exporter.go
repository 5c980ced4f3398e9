package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"rulegate/internal/core"
)

// Extension is appended to exported file names that lack it
const Extension = ".mdc"

// RequiredFields must be present on an export request, checked in order
var RequiredFields = []string{"content", "fileName"}

const (
	msgExported  = "Rule exported successfully"
	msgCancelled = "Operation cancelled by user"
)

// Request is an export call: the rule payload plus the suggested file name
type Request struct {
	Rule     core.Record
	FileName string
	// Cancel models the user declining the save without a UI
	Cancel bool
}

// RequestFromRecord splits an API payload into a Request. It reports a
// *core.ValidationError when a required field is missing.
func RequestFromRecord(rec core.Record) (*Request, error) {
	for _, field := range RequiredFields {
		if !rec.Has(field) {
			return nil, &core.ValidationError{Field: field}
		}
	}
	return &Request{
		Rule:     rec,
		FileName: core.Display(rec["fileName"]),
		Cancel:   core.Truthy(rec["cancel"]),
	}, nil
}

// Result is reported to the caller. Cancellation is a successful call with
// Success=false.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// Exporter resolves a destination and writes composed rules to it
type Exporter struct {
	fs      afero.Fs
	chooser PathChooser
	home    string
	log     *zap.Logger
}

// NewExporter creates an Exporter. home seeds the default directory; when
// empty the current user's home directory is used.
func NewExporter(fs afero.Fs, chooser PathChooser, home string, log *zap.Logger) *Exporter {
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{fs: fs, chooser: chooser, home: home, log: log}
}

// Export asks the chooser for a path, makes sure it lives under a
// cursor/rules directory and writes the composed document there.
func (e *Exporter) Export(ctx context.Context, req *Request) (*Result, error) {
	if req.Cancel {
		return cancelled(), nil
	}

	prompt := Prompt{
		InitialDir: DefaultDir(e.fs, e.home),
		FileName:   SanitizeFileName(req.FileName),
		Filters:    DefaultFilters,
	}

	chosen, err := e.chooser.ChoosePath(ctx, prompt)
	if errors.Is(err, ErrCancelled) {
		e.log.Info("export cancelled by user")
		return cancelled(), nil
	}
	if err != nil {
		return nil, err
	}

	path := e.ResolveDestination(chosen)

	dir := filepath.Dir(path)
	if err := e.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, &core.FilesystemError{Op: "mkdir", Path: dir, Err: err}
	}
	if err := afero.WriteFile(e.fs, path, []byte(Compose(req.Rule)), 0o644); err != nil {
		return nil, &core.FilesystemError{Op: "write", Path: path, Err: err}
	}

	e.log.Info("rule exported", zap.String("path", path))
	return &Result{Success: true, Message: msgExported, Path: path}, nil
}

// ResolveDestination places chosen inside a cursor/rules directory next to
// it, creating that directory when needed. Paths already inside
// cursor/rules are kept. If the directory can't be created the chosen path
// is used as-is.
func (e *Exporter) ResolveDestination(chosen string) string {
	dir := filepath.Dir(chosen)
	if InRulesDir(dir) {
		return chosen
	}

	rulesDir := filepath.Join(dir, "cursor", "rules")
	if err := e.fs.MkdirAll(rulesDir, 0o755); err != nil {
		e.log.Warn("failed to create rules directory, using chosen path",
			zap.String("dir", rulesDir),
			zap.Error(err),
		)
		return chosen
	}
	return filepath.Join(rulesDir, filepath.Base(chosen))
}

// InRulesDir reports whether the last two segments of dir are cursor/rules
func InRulesDir(dir string) bool {
	parts := strings.Split(filepath.Clean(dir), string(filepath.Separator))
	n := len(parts)
	return n >= 2 && parts[n-2] == "cursor" && parts[n-1] == "rules"
}

// SanitizeFileName keeps letters, digits, '.', '_', '-' and spaces and
// appends the .mdc extension when missing.
func SanitizeFileName(name string) string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || strings.ContainsRune("._- ", r) {
			return r
		}
		return -1
	}, name)
	if !strings.HasSuffix(clean, Extension) {
		clean += Extension
	}
	return clean
}

// DefaultDir returns home/Documents when it exists, otherwise home
func DefaultDir(fs afero.Fs, home string) string {
	docs := filepath.Join(home, "Documents")
	if ok, err := afero.DirExists(fs, docs); err == nil && ok {
		return docs
	}
	return home
}

func cancelled() *Result {
	return &Result{Success: false, Message: msgCancelled}
}
