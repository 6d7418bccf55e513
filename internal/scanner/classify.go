package scanner

import (
	"path/filepath"
	"strings"
)

// Category is a scanner classification bucket.
type Category string

const (
	CategorySetup   Category = "setup"
	CategoryTest    Category = "test"
	CategoryExample Category = "example"
	CategoryDoc     Category = "doc"
	CategoryCode    Category = "code"
	CategoryOther   Category = "other"
)

// IgnoreDirs are pruned entirely during the walk. This is the union of the
// original orchestrator's DEFAULT_IGNORES and the scanner's own
// _IGNORE_DIRS, so nothing either list pruned is missed here.
var IgnoreDirs = map[string]bool{
	".git": true, ".hg": true, ".svn": true,
	"__pycache__": true, ".mypy_cache": true, ".ruff_cache": true, ".pytest_cache": true,
	"node_modules": true, "dist": true, "build": true, "target": true, ".tox": true, "htmlcov": true,
	".idea": true, ".vscode": true, ".cache": true, "logs": true, "docker-build": true,
	"venv": true, ".venv": true, "env": true,
}

// IgnoreFileGlobs skips heavy artifacts and local-state files outright.
var IgnoreFileGlobs = []string{
	"*.pyc", "*.pyo", "*.pyd", "*.so", "*.dylib",
	"*.exe", "*.dll", "*.obj", "*.a", "*.o",
	"*.class", "*.jar",
	"*.log", "*.tmp", "*.swp", "*.swo", "*~",
	".coverage", "coverage.xml",
	".DS_Store", "Thumbs.db",
}

var docExts = map[string]bool{".md": true, ".rst": true, ".adoc": true, ".txt": true}

var docBasenames = map[string]bool{
	"README": true, "CHANGELOG": true, "CONTRIBUTING": true, "LICENSE": true, "SECURITY": true,
	"CODE_OF_CONDUCT": true, "CODE-OF-CONDUCT": true,
}

var docDirHints = map[string]bool{
	"docs": true, "doc": true, "documentation": true, "guides": true, "mkdocs": true, "site": true, "book": true, ".gpt-review": true,
}

var setupBasenames = map[string]bool{
	"setup.py": true, "pyproject.toml": true, "requirements.txt": true, "requirements-dev.txt": true,
	"dev-requirements.txt": true, "Pipfile": true, "Pipfile.lock": true, "poetry.lock": true,
	"Makefile": true, "Dockerfile": true, "docker-compose.yml": true, "docker-compose.yaml": true,
	"install.sh": true, "update.sh": true,
	".pre-commit-config.yaml": true, ".pre-commit-config.yml": true,
	"MANIFEST.in": true, ".flake8": true, ".editorconfig": true,
	"package.json": true, "package-lock.json": true, "yarn.lock": true, "pnpm-lock.yaml": true,
	".gitlab-ci.yml": true, "azure-pipelines.yml": true,
	"go.mod": true, "go.sum": true,
}

var setupFileGlobs = []string{"requirements*.txt"}

var setupDirHints = []string{".github/workflows", ".github/actions", "ci", ".ci"}

var exampleHints = map[string]bool{"examples": true, "example": true, "sample": true, "samples": true}
var exampleBasenames = map[string]bool{"example_instructions.txt": true}

var testDirHints = map[string]bool{"tests": true, "test": true, "spec": true, "specs": true}

var testFilePatterns = []string{
	"test_*.py", "*_test.py",
	"*.spec.js", "*.spec.ts",
	"*_test.go", "*_test.rs", "*_test.rb", "*_test.ts", "*_test.js",
	"*_spec.rb",
}

var textCodeExts = map[string]bool{
	".py": true, ".pyi": true, ".js": true, ".jsx": true, ".ts": true, ".tsx": true, ".mjs": true, ".cjs": true,
	".go": true, ".rb": true, ".rs": true, ".c": true, ".cc": true, ".cpp": true, ".h": true, ".hpp": true,
	".java": true, ".kt": true, ".kts": true, ".scala": true, ".swift": true, ".php": true, ".pl": true, ".cs": true,
	".sh": true, ".bash": true, ".zsh": true, ".ps1": true, ".cmd": true, ".bat": true,
	".toml": true, ".ini": true, ".cfg": true, ".conf": true, ".yaml": true, ".yml": true, ".json": true, ".jsonc": true,
	".graphql": true, ".proto": true, ".sql": true, ".env": true,
	".html": true, ".htm": true, ".xhtml": true, ".xml": true, ".xsl": true, ".svg": true, ".css": true, ".scss": true, ".less": true,
	".jinja": true, ".j2": true, ".ejs": true, ".hbs": true,
}

// Classify buckets a repo-relative POSIX path by the first matching rule:
// setup basenames/globs/dir-hints, test dir-hints/filename-patterns, example
// basenames/dir-hints, documentation extension/basename/dir-hints (unless
// the extension is clearly code), code by extension, else "other".
func Classify(rel string) Category {
	parts := strings.Split(rel, "/")
	dirs := parts[:len(parts)-1]
	base := parts[len(parts)-1]
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	lowDirs := make([]string, len(dirs))
	for i, d := range dirs {
		lowDirs[i] = strings.ToLower(d)
	}

	if setupBasenames[base] || matchesAny(setupFileGlobs, base) {
		return CategorySetup
	}
	for _, hint := range setupDirHints {
		if strings.HasPrefix(rel, hint+"/") || strings.Contains(rel, "/"+hint+"/") {
			return CategorySetup
		}
	}

	if containsAny(lowDirs, testDirHints) {
		return CategoryTest
	}
	if matchesAny(testFilePatterns, base) {
		return CategoryTest
	}

	if exampleBasenames[base] {
		return CategoryExample
	}
	if containsAny(lowDirs, exampleHints) {
		return CategoryExample
	}

	if docExts[ext] {
		return CategoryDoc
	}
	if docBasenames[strings.ToUpper(stem)] {
		return CategoryDoc
	}
	for _, d := range dirs {
		if docDirHints[strings.ToLower(d)] && !textCodeExts[ext] {
			return CategoryDoc
		}
	}

	if textCodeExts[ext] {
		return CategoryCode
	}
	return CategoryOther
}

func matchesAny(globs []string, name string) bool {
	for _, g := range globs {
		if ok, _ := filepath.Match(g, name); ok {
			return true
		}
	}
	return false
}

func containsAny(haystack []string, set map[string]bool) bool {
	for _, h := range haystack {
		if set[h] {
			return true
		}
	}
	return false
}
