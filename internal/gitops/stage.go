package gitops

import (
	"os"
	"path/filepath"
)

// StagePaths stages exactly the given paths, skipping any that don't exist
// on disk (so a deletion already handled by RmPath is never re-added) and
// de-duplicating. It never stages a directory or uses -A.
func (p *Port) StagePaths(paths ...string) error {
	seen := map[string]bool{}
	var toAdd []string
	for _, path := range paths {
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		if _, err := os.Lstat(filepath.Join(p.Repo, filepath.FromSlash(path))); err != nil {
			continue
		}
		toAdd = append(toAdd, path)
	}
	if len(toAdd) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, toAdd...)
	_, err := p.runOK(args...)
	return err
}

// RmPath removes a tracked path from the index and working tree.
func (p *Port) RmPath(path string) error {
	_, err := p.runOK("rm", "-f", "--", path)
	return err
}

// MvPath renames a tracked path, staging both sides.
func (p *Port) MvPath(src, dst string) error {
	_, err := p.runOK("mv", "--", src, dst)
	return err
}

// indexHasChanges reports whether there are staged changes for paths (or
// any staged change at all, if paths is empty).
func (p *Port) indexHasChanges(paths []string) bool {
	args := []string{"diff", "--cached", "--quiet"}
	if len(paths) > 0 {
		args = append(args, "--")
		args = append(args, paths...)
	}
	res := p.run(args...)
	return !res.OK
}

// CommitScoped stages paths precisely and commits with message, restricted
// to exactly those pathspecs. If nothing is staged for paths (an idempotent
// no-op write), no commit is created.
func (p *Port) CommitScoped(message string, paths ...string) error {
	var clean []string
	for _, path := range paths {
		if path != "" {
			clean = append(clean, path)
		}
	}
	if err := p.StagePaths(clean...); err != nil {
		return err
	}
	if !p.indexHasChanges(clean) {
		if p.log != nil {
			p.log.Infow("no staged changes, skipping commit", "message", message)
		}
		return nil
	}
	args := append([]string{"commit", "-m", message, "--"}, clean...)
	_, err := p.runOK(args...)
	if err == nil && p.log != nil {
		p.log.Infow("committed", "message", message)
	}
	return err
}
