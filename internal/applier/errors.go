package applier

import "errors"

// Sentinel errors for the applier package, surfaced to the conversation
// driver so the model sees exactly why a patch was rejected.
var (
	ErrFileExists   = errors.New("applier: file already exists")
	ErrFileNotFound = errors.New("applier: file does not exist")
	ErrIsDirectory  = errors.New("applier: path is a directory")
	ErrOutsideRepo  = errors.New("applier: path escapes repository root")
	ErrDotGit       = errors.New("applier: refusing to operate inside .git")
)
