package normalizer

import (
	"errors"
	"fmt"
)

var (
	// ErrRead is returned when a Markdown file cannot be read.
	ErrRead = errors.New("failed to read")
	// ErrWrite is returned when the scratch file cannot be created or written.
	ErrWrite = errors.New("failed to write")
	// ErrReplace is returned when the scratch file cannot be moved over the original.
	ErrReplace = errors.New("failed to replace")
)

// FileError reports an I/O failure while processing one file.
// Kind is one of ErrRead, ErrWrite or ErrReplace; both Kind and the
// underlying cause match with errors.Is.
type FileError struct {
	Kind error
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%v %s: %v", e.Kind, e.Path, e.Err)
}

func (e *FileError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func fileError(kind error, path string, err error) error {
	return &FileError{Kind: kind, Path: path, Err: err}
}
