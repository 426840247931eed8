package xdftag

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const fileExtension = ".xdf"

// SuffixedPath inserts the suffix before the .xdf extension (compared case-insensitively),
// or appends suffix and extension if the path has a different one.
func SuffixedPath(path string, suffix string) string {
	base := path
	extension := fileExtension
	if ext := filepath.Ext(path); strings.EqualFold(ext, fileExtension) {
		base = strings.TrimSuffix(path, ext)
		extension = ext
	}
	return base + suffix + extension
}

// hasOutputSuffix reports whether the path looks like the output of an earlier run.
func hasOutputSuffix(path string, suffix string) bool {
	if suffix == "" {
		return false
	}
	ext := filepath.Ext(path)
	if !strings.EqualFold(ext, fileExtension) {
		return false
	}
	return strings.HasSuffix(strings.TrimSuffix(path, ext), suffix)
}

// ExpandPatterns resolves glob patterns into a list of distinct paths, sorted per pattern.
// A pattern that neither matches anything nor names an existing file is reported, the others are still expanded.
func ExpandPatterns(patterns []string) (paths []string, problems []error) {
	seen := make(map[string]bool)
	add := func(path string) {
		clean := filepath.Clean(path)
		if !seen[clean] {
			seen[clean] = true
			paths = append(paths, clean)
		}
	}
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			problems = append(problems, newFileError(pattern, fmt.Errorf("bad pattern: %w", err)))
			continue
		}
		if len(matches) == 0 {
			if _, statErr := os.Stat(pattern); statErr == nil { //glob metacharacters in an actual file name
				add(pattern)
			} else if errors.Is(statErr, os.ErrNotExist) {
				problems = append(problems, newFileError(pattern, ErrNoMatchingFile))
			} else {
				problems = append(problems, newFileError(pattern, statErr))
			}
			continue
		}
		for _, match := range matches {
			if info, err := os.Stat(match); err == nil && info.IsDir() {
				continue
			}
			add(match)
		}
	}
	return
}

const dot string = "."
const dirSeparator = string(filepath.Separator)
const dotDirSeparator = dot + dirSeparator
const doubleDot = dot + dot
const doubleDotDirSeparator = doubleDot + dirSeparator

// pleasantPath turns an absolute path into something easily understandable from the working directory.
// Paths below the working directory are shown relative, with leading "./" to stress relativity (opt-out possible).
// Paths elsewhere are reflected unchanged.
func pleasantPath(absolute string, wd string, omitDotSlash bool) string {
	relative, err := filepath.Rel(wd, absolute)
	if err != nil || relative == doubleDot || strings.HasPrefix(relative, doubleDotDirSeparator) {
		return absolute
	}
	if omitDotSlash || relative == dot {
		return relative
	}
	return dotDirSeparator + relative
}

func displayablePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	wd, err := os.Getwd()
	if err != nil {
		return abs
	}
	return pleasantPath(abs, wd, true)
}
