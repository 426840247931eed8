package xdftag

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const workInProgressFilePattern = ".*.wip"

// writeFileAtomically replaces the target by a fully written temporary file next to it.
// Without overwrite an existing target is an error. An interrupted write leaves the target untouched.
func writeFileAtomically(target string, content []byte, mode os.FileMode, overwrite bool) (err error) {
	if !overwrite {
		if _, statErr := os.Lstat(target); statErr == nil {
			return fmt.Errorf("%w: %s", ErrOutputExists, target)
		} else if !errors.Is(statErr, os.ErrNotExist) {
			return statErr
		}
	}

	file, err := os.CreateTemp(filepath.Dir(target), filepath.Base(target)+workInProgressFilePattern)
	if err != nil { //plausible failure
		return
	}
	tempPath := file.Name()
	fileClosed := false
	defer func() {
		if !fileClosed {
			file.Close()
		}
		if err != nil {
			os.Remove(tempPath)
		}
	}()

	if _, err = file.Write(content); err != nil {
		return
	}
	if err = file.Chmod(mode.Perm()); err != nil {
		return
	}
	if err = file.Sync(); err != nil {
		return
	}
	err = file.Close()
	fileClosed = true
	if err != nil {
		return
	}
	return os.Rename(tempPath, target)
}
