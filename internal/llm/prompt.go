package llm

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SubmitPatchTool is the submit_patch tool declaration, matching the
// wire schema in the patch package exactly so every transport shares it.
var SubmitPatchTool = Tool{
	Name:        "submit_patch",
	Description: "Submit exactly one complete-file patch for the current file.",
	Parameters: []byte(`{
		"type": "object",
		"additionalProperties": false,
		"required": ["op", "status"],
		"properties": {
			"op": {"type": "string", "enum": ["create", "update", "delete", "rename", "chmod"]},
			"file": {"type": "string"},
			"body": {"type": "string"},
			"body_b64": {"type": "string"},
			"target": {"type": "string"},
			"mode": {"type": "string", "pattern": "^[0-7]{3,4}$"},
			"status": {"type": "string", "enum": ["in_progress", "completed"]}
		}
	}`),
}

// ProposeReviewPlanTool is the plan-step tool declaration.
var ProposeReviewPlanTool = Tool{
	Name:        "propose_review_plan",
	Description: "Propose the review plan: description, run/test commands, hints.",
	Parameters: []byte(`{
		"type": "object",
		"additionalProperties": false,
		"required": ["description", "run_commands", "test_commands", "hints"],
		"properties": {
			"description": {"type": "string"},
			"run_commands": {"type": "array", "items": {"type": "string"}},
			"test_commands": {"type": "array", "items": {"type": "string"}},
			"hints": {"type": "array", "items": {"type": "string"}}
		}
	}`),
}

// ProposeErrorFixesTool is the error-fix-round tool declaration.
var ProposeErrorFixesTool = Tool{
	Name:        "propose_error_fixes",
	Description: "Propose complete-file fixes for the failing command output.",
	Parameters: []byte(`{
		"type": "object",
		"additionalProperties": false,
		"required": ["edits"],
		"properties": {
			"rationale": {"type": "string"},
			"edits": {
				"type": "array",
				"items": {
					"type": "object",
					"additionalProperties": false,
					"required": ["path", "action"],
					"properties": {
						"path": {"type": "string"},
						"action": {"type": "string", "enum": ["create", "update", "delete"]},
						"content": {"type": "string"},
						"notes": {"type": "string"}
					}
				}
			}
		}
	}`),
}

// SystemPromptPerFile is the per-file review turn's system prompt, forcing
// submit_patch and stating the iteration gate.
func SystemPromptPerFile(iteration int) string {
	var b strings.Builder
	b.WriteString("You are reviewing a Git repository file by file. ")
	b.WriteString("For every file you MUST call the function `submit_patch` exactly once, ")
	b.WriteString("never reply with prose. Patches always carry the complete new file content ")
	b.WriteString("(never a diff or a hunk). Preserve existing behavior unless instructed otherwise; ")
	b.WriteString("prefer minimal, targeted changes. Use exact repo-relative POSIX paths.\n")
	if iteration < 3 {
		b.WriteString("This is iteration ")
		fmt.Fprintf(&b, "%d", iteration)
		b.WriteString(" of 3: documentation, setup, example, and CI files are deferred to iteration 3. ")
		b.WriteString("If asked about one of those files, respond with an op that keeps it unchanged.\n")
	} else {
		b.WriteString("This is the final iteration: documentation, setup, example, and CI files are now in scope.\n")
	}
	return b.String()
}

// SystemPromptErrorFix is the error-fix round's system prompt.
func SystemPromptErrorFix() string {
	return "A build or test command failed. You MUST call `propose_error_fixes` exactly once " +
		"with complete-file content for every file you want changed. Never reply with prose."
}

// InstructionsBlock appends the fixed rule list onto the user's free-form
// review instructions, the way the original driver's _instructions_block did.
func InstructionsBlock(userInstructions string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(userInstructions))
	b.WriteString("\n\nRules:\n")
	b.WriteString("1. One file per patch; always the complete file, never a diff.\n")
	b.WriteString("2. Preserve existing public behavior unless the instructions say otherwise.\n")
	b.WriteString("3. Prefer minimal, targeted changes over rewrites.\n")
	b.WriteString("4. Use exact repo-relative POSIX paths for file and target.\n")
	b.WriteString("5. If a command fails, propose the next patch that addresses the failure.\n")
	return b.String()
}

// languageHints maps file extensions to a human-readable language name for
// the per-file prompt's context line.
var languageHints = map[string]string{
	".go": "Go", ".py": "Python", ".js": "JavaScript", ".ts": "TypeScript",
	".rb": "Ruby", ".rs": "Rust", ".java": "Java", ".c": "C", ".cpp": "C++",
	".md": "Markdown", ".yaml": "YAML", ".yml": "YAML", ".json": "JSON",
	".sh": "Shell", ".toml": "TOML",
}

// LanguageHint returns a best-effort language name for path's extension.
func LanguageHint(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if hint, ok := languageHints[ext]; ok {
		return hint
	}
	return "text"
}

// FileReviewPrompt builds the per-file review turn's user prompt.
func FileReviewPrompt(instructions string, iteration int, path, language, excerpt string, isBinary bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Objective:\n%s\n\n", instructions)
	fmt.Fprintf(&b, "Iteration: %d\n", iteration)
	fmt.Fprintf(&b, "File: %s\n", path)
	fmt.Fprintf(&b, "Language: %s\n\n", language)
	if isBinary {
		b.WriteString("This file is binary; its content is omitted. Reply with action=keep unless you ")
		b.WriteString("are certain the change is needed, in which case use update_binary/create_binary.\n")
	} else {
		fmt.Fprintf(&b, "Current content:\n%s\n", excerpt)
	}
	return b.String()
}

// ErrorFixPrompt builds the error-fix round's user prompt.
func ErrorFixPrompt(command string, exitCode int, outputTail string, files []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Command failed: %s\nExit code: %d\n\nOutput (tail):\n%s\n\n", command, exitCode, outputTail)
	b.WriteString("Files in scope:\n")
	for _, f := range files {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	return b.String()
}
