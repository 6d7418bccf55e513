// Package scanner walks a repository, classifies every file, and exposes
// an iteration-aware view of which files a given review pass should touch.
// It never mutates the repository.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/boshu2/review/internal/content"
)

// Index is a structured inventory of repository files, as POSIX relative paths.
type Index struct {
	Root         string
	AllFiles     []string
	CodeFiles    []string
	TestFiles    []string
	DocsFiles    []string
	SetupFiles   []string
	ExampleFiles []string
	BinaryFiles  []string
}

// Summary renders a one-line human-readable count per bucket.
func (idx *Index) Summary() string {
	return fmt.Sprintf(
		"%d files (code=%d, tests=%d, docs=%d, setup=%d, examples=%d, binary=%d)",
		len(idx.AllFiles), len(idx.CodeFiles), len(idx.TestFiles),
		len(idx.DocsFiles), len(idx.SetupFiles), len(idx.ExampleFiles), len(idx.BinaryFiles),
	)
}

// Scanner scans one repository root.
type Scanner struct {
	Root string
}

// New returns a Scanner rooted at repoRoot, failing if it isn't a Git repo.
func New(repoRoot string) (*Scanner, error) {
	abs, err := filepath.Abs(repoRoot)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(abs, ".git")); err != nil {
		return nil, fmt.Errorf("scanner: not a git repository: %s", abs)
	}
	return &Scanner{Root: abs}, nil
}

// Scan walks the repository and returns a fully classified Index.
func (s *Scanner) Scan() (*Index, error) {
	files, err := s.walk()
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	idx := &Index{Root: s.Root, AllFiles: files}
	binarySet := map[string]bool{}

	for _, rel := range files {
		abs := filepath.Join(s.Root, filepath.FromSlash(rel))
		isBin := content.IsBinaryPath(abs)
		if isBin {
			idx.BinaryFiles = append(idx.BinaryFiles, rel)
			binarySet[rel] = true
		}

		switch Classify(rel) {
		case CategoryDoc:
			idx.DocsFiles = append(idx.DocsFiles, rel)
		case CategorySetup:
			idx.SetupFiles = append(idx.SetupFiles, rel)
		case CategoryExample:
			idx.ExampleFiles = append(idx.ExampleFiles, rel)
		case CategoryTest:
			idx.TestFiles = append(idx.TestFiles, rel)
			if !isBin {
				idx.CodeFiles = append(idx.CodeFiles, rel)
			}
		default:
			// CategoryCode and CategoryOther: treat non-binary "other" as
			// code too, so config-like files aren't silently skipped.
			if !isBin {
				idx.CodeFiles = append(idx.CodeFiles, rel)
			}
		}
	}
	return idx, nil
}

// FilesForIteration returns the ordered, deduplicated, binary-excluded file
// list for the given iteration: code+tests for 1-2, plus docs/setup/examples
// for 3 and above.
func (idx *Index) FilesForIteration(iteration int) []string {
	binarySet := map[string]bool{}
	for _, b := range idx.BinaryFiles {
		binarySet[b] = true
	}

	var combined []string
	if iteration >= 3 {
		combined = append(combined, idx.CodeFiles...)
		combined = append(combined, idx.TestFiles...)
		combined = append(combined, idx.DocsFiles...)
		combined = append(combined, idx.SetupFiles...)
		combined = append(combined, idx.ExampleFiles...)
	} else {
		combined = append(combined, idx.CodeFiles...)
		combined = append(combined, idx.TestFiles...)
	}

	seen := map[string]bool{}
	var out []string
	for _, rel := range combined {
		if binarySet[rel] || seen[rel] {
			continue
		}
		seen[rel] = true
		out = append(out, rel)
	}
	return out
}

// walk returns every non-ignored, regular file under the root as a
// POSIX-relative path, pruning ignored directories in place so heavy trees
// like node_modules are never descended into.
func (s *Scanner) walk() ([]string, error) {
	var out []string
	err := filepath.Walk(s.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(s.Root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		name := info.Name()
		if info.IsDir() {
			if IgnoreDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}
		if matchesAny(IgnoreFileGlobs, name) {
			return nil
		}
		if info.Mode()&os.ModeSymlink != 0 || !info.Mode().IsRegular() {
			return nil
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
