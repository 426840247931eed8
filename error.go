package xdftag

import (
	"errors"
	"fmt"
	"strings"
)

// FileError attributes a failure to the file being processed.
type FileError struct {
	Path  string
	cause error
}

func (e *FileError) Error() string {
	var msg strings.Builder
	fmt.Fprint(&msg, e.Path)
	if e.cause != nil {
		fmt.Fprint(&msg, ": ", e.cause)
	}
	return msg.String()
}

func (e *FileError) Unwrap() error {
	return e.cause
}

func newFileError(path string, cause error) *FileError {
	return &FileError{Path: path, cause: cause}
}

var (
	ErrOutputExists   = errors.New("output file exists already (use overwrite to replace it)")
	ErrNoMatchingFile = errors.New("no such file")
)
