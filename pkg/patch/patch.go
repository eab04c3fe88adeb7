// Package patch applies source modifications as an explicit, ordered list
// of records. Every record is logged and every failure says whether the
// expected text was missing or the file could not be read or written.
package patch

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// ErrPatternNotFound indicates the text a record expects is not in the file
var ErrPatternNotFound = errors.New("pattern not found")

// Status is the outcome of one record
type Status string

const (
	StatusApplied    Status = "applied"
	StatusSkipped    Status = "skipped"   // predicate false
	StatusNotPresent Status = "not-found" // optional record whose pattern is missing
)

// Substitution replaces every occurrence of Match with Replace in File
type Substitution struct {
	Name     string      // Short identifier used in logs and errors
	File     string      // Path relative to the patch root
	Match    string      // Exact text to find
	Replace  string      // Replacement text
	When     func() bool // Applicability predicate, nil means always
	Required bool        // A missing Match is fatal when set, a no-op otherwise
}

// Result records what happened to one substitution
type Result struct {
	Name   string
	File   string
	Status Status
	Count  int // Number of occurrences replaced
}

// Error describes a failed record
type Error struct {
	Record string // Record or patch file name
	File   string // File being patched
	Err    error  // ErrPatternNotFound or the underlying I/O error
}

func (e *Error) Error() string {
	return fmt.Sprintf("patch %s: %s: %v", e.Record, e.File, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsPatternNotFound reports whether err is a missing-pattern failure
func IsPatternNotFound(err error) bool {
	return errors.Is(err, ErrPatternNotFound)
}

// Patcher applies records below a root directory
type Patcher struct {
	logger *log.Logger
}

// New creates a Patcher. A nil logger discards output.
func New(logger *log.Logger) *Patcher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Patcher{logger: logger}
}

// Apply runs the substitutions in order and stops at the first failure
func (p *Patcher) Apply(root string, records []Substitution) ([]Result, error) {
	results := make([]Result, 0, len(records))

	for _, rec := range records {
		res, err := p.applyOne(root, rec)
		if err != nil {
			p.logger.Printf("patch %s: failed: %v", rec.Name, err)
			return results, err
		}
		p.logger.Printf("patch %s: %s (%s)", rec.Name, res.Status, rec.File)
		results = append(results, res)
	}

	return results, nil
}

func (p *Patcher) applyOne(root string, rec Substitution) (Result, error) {
	res := Result{Name: rec.Name, File: rec.File}

	if rec.When != nil && !rec.When() {
		res.Status = StatusSkipped
		return res, nil
	}

	path := filepath.Join(root, rec.File)
	info, err := os.Stat(path)
	if err != nil {
		return res, &Error{Record: rec.Name, File: rec.File, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return res, &Error{Record: rec.Name, File: rec.File, Err: err}
	}

	content := string(data)
	count := strings.Count(content, rec.Match)
	if count == 0 {
		if rec.Required {
			return res, &Error{Record: rec.Name, File: rec.File, Err: ErrPatternNotFound}
		}
		res.Status = StatusNotPresent
		return res, nil
	}

	content = strings.ReplaceAll(content, rec.Match, rec.Replace)
	if err := os.WriteFile(path, []byte(content), info.Mode().Perm()); err != nil {
		return res, &Error{Record: rec.Name, File: rec.File, Err: err}
	}

	res.Status = StatusApplied
	res.Count = count
	return res, nil
}

// ApplyDiff applies a git-style unified diff below root. Paths in the diff
// are relative to root after the a/ and b/ prefixes are dropped.
func (p *Patcher) ApplyDiff(root, name string, diff io.Reader) error {
	files, _, err := gitdiff.Parse(diff)
	if err != nil {
		return &Error{Record: name, File: "", Err: fmt.Errorf("parsing diff: %w", err)}
	}
	if len(files) == 0 {
		return &Error{Record: name, File: "", Err: fmt.Errorf("diff contains no files")}
	}

	for _, f := range files {
		target := f.NewName
		if f.IsDelete {
			target = f.OldName
		}
		if err := p.applyFile(root, name, target, f); err != nil {
			return err
		}
		p.logger.Printf("patch %s: applied to %s", name, target)
	}

	return nil
}

func (p *Patcher) applyFile(root, name, target string, f *gitdiff.File) error {
	path := filepath.Join(root, filepath.FromSlash(target))

	var src []byte
	mode := os.FileMode(0644)
	if !f.IsNew {
		info, err := os.Stat(path)
		if err != nil {
			return &Error{Record: name, File: target, Err: err}
		}
		mode = info.Mode().Perm()

		src, err = os.ReadFile(path)
		if err != nil {
			return &Error{Record: name, File: target, Err: err}
		}
	}

	var out bytes.Buffer
	if err := gitdiff.Apply(&out, bytes.NewReader(src), f); err != nil {
		// Any apply failure means the context or removed lines did not match
		return &Error{Record: name, File: target, Err: fmt.Errorf("%w: %v", ErrPatternNotFound, err)}
	}

	if f.IsDelete {
		if err := os.Remove(path); err != nil {
			return &Error{Record: name, File: target, Err: err}
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &Error{Record: name, File: target, Err: err}
	}
	if err := os.WriteFile(path, out.Bytes(), mode); err != nil {
		return &Error{Record: name, File: target, Err: err}
	}
	return nil
}
