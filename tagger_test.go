package xdftag

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/n2code/xdftag/internal/chunk"
	"github.com/n2code/xdftag/internal/xdftest"
)

type testRun struct {
	tagger Tagger
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newTestRun(config Config) testRun {
	run := testRun{out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
	config.Out = run.out
	config.ErrOut = run.errOut
	config.Plain = true
	run.tagger = New(config)
	return run
}

func writeRecording(t *testing.T, dir string, name string, mode os.FileMode) (path string, content []byte) {
	t.Helper()
	path = filepath.Join(dir, name)
	content = xdftest.Bytes(xdftest.Recording())
	require.NoError(t, os.WriteFile(path, content, mode))
	require.NoError(t, os.Chmod(path, mode))
	return
}

func dirEntries(t *testing.T, dir string) (names []string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return
}

func TestProcessFileWritesSuffixedCopy(t *testing.T) {
	dir := t.TempDir()
	input, original := writeRecording(t, dir, "rec.xdf", 0640)
	run := newTestRun(Config{})

	outcome, err := run.tagger.ProcessFile(input, []Operation{Set("subject.name", "My Name")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "rec.processed.xdf"), outcome.Output)
	assert.True(t, outcome.Result.Created)

	unchanged, err := os.ReadFile(input)
	require.NoError(t, err)
	assert.Equal(t, original, unchanged, "input is left alone")

	written, err := os.ReadFile(outcome.Output)
	require.NoError(t, err)
	value, present := showValue(t, written, "subject.name")
	assert.True(t, present)
	assert.Equal(t, "My Name", value)

	info, err := os.Stat(outcome.Output)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
	assert.ElementsMatch(t, []string{"rec.xdf", "rec.processed.xdf"}, dirEntries(t, dir))
}

func TestProcessFileRefusesToReplaceOutput(t *testing.T) {
	dir := t.TempDir()
	input, _ := writeRecording(t, dir, "rec.xdf", 0600)
	ops := []Operation{Set("a", "1")}

	_, err := newTestRun(Config{}).tagger.ProcessFile(input, ops)
	require.NoError(t, err)

	outcome, err := newTestRun(Config{}).tagger.ProcessFile(input, []Operation{Set("a", "2")})
	assert.True(t, errors.Is(err, ErrOutputExists))
	var fileErr *FileError
	require.True(t, errors.As(err, &fileErr))
	assert.Equal(t, input, fileErr.Path)
	assert.Equal(t, err, outcome.Err)
	assert.Empty(t, outcome.Output)

	_, err = newTestRun(Config{Overwrite: true}).tagger.ProcessFile(input, []Operation{Set("a", "2")})
	require.NoError(t, err)
	written, _ := os.ReadFile(filepath.Join(dir, "rec.processed.xdf"))
	value, _ := showValue(t, written, "a")
	assert.Equal(t, "2", value)
}

func TestProcessFileInPlace(t *testing.T) {
	dir := t.TempDir()
	input, _ := writeRecording(t, dir, "rec.xdf", 0644)
	run := newTestRun(Config{InPlace: true})

	outcome, err := run.tagger.ProcessFile(input, []Operation{Set("site", "A")})
	require.NoError(t, err)
	assert.Equal(t, input, outcome.Output)
	assert.Equal(t, []string{"rec.xdf"}, dirEntries(t, dir), "no temporary files remain")

	written, _ := os.ReadFile(input)
	value, present := showValue(t, written, "site")
	assert.True(t, present)
	assert.Equal(t, "A", value)
	info, _ := os.Stat(input)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	outcome, err = run.tagger.ProcessFile(input, []Operation{Set("site", "A")})
	require.NoError(t, err)
	assert.Empty(t, outcome.Output, "unchanged metadata is not rewritten in place")
}

func TestProcessFileCopiesUnchangedDocument(t *testing.T) {
	dir := t.TempDir()
	input, original := writeRecording(t, dir, "rec.xdf", 0600)

	outcome, err := newTestRun(Config{}).tagger.ProcessFile(input, []Operation{Clear("nothing")})
	require.NoError(t, err)
	assert.False(t, outcome.Result.Modified)
	copied, err := os.ReadFile(outcome.Output)
	require.NoError(t, err)
	assert.Equal(t, original, copied)
}

func TestProcessFileReadOnly(t *testing.T) {
	dir := t.TempDir()
	input, _ := writeRecording(t, dir, "rec.xdf", 0600)

	outcome, err := newTestRun(Config{}).tagger.ProcessFile(input, []Operation{Show("subject.name")})
	require.NoError(t, err)
	assert.Empty(t, outcome.Output)
	assert.Equal(t, []string{"rec.xdf"}, dirEntries(t, dir))
}

func TestProcessFileSkipsEarlierOutput(t *testing.T) {
	dir := t.TempDir()
	input, _ := writeRecording(t, dir, "rec.processed.xdf", 0600)

	outcome, err := newTestRun(Config{}).tagger.ProcessFile(input, []Operation{Set("a", "1")})
	require.NoError(t, err)
	assert.True(t, outcome.Skipped)
	assert.Nil(t, outcome.Result)

	outcome, err = newTestRun(Config{ProcessSuffixed: true}).tagger.ProcessFile(input, []Operation{Set("a", "1")})
	require.NoError(t, err)
	assert.False(t, outcome.Skipped)
	assert.Equal(t, filepath.Join(dir, "rec.processed.processed.xdf"), outcome.Output)
}

func TestProcessAllIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	first, _ := writeRecording(t, dir, "first.xdf", 0600)
	broken := filepath.Join(dir, "broken.xdf")
	require.NoError(t, os.WriteFile(broken, []byte("XDF:\x02\x01"), 0600))
	last, _ := writeRecording(t, dir, "last.xdf", 0600)
	missing := filepath.Join(dir, "missing.xdf")
	paths := []string{first, broken, last, missing}

	outcomes := newTestRun(Config{Jobs: 2, InPlace: true}).tagger.ProcessAll(paths, []Operation{Set("batch", "yes")})

	require.Len(t, outcomes, len(paths))
	for i, outcome := range outcomes {
		assert.Equal(t, paths[i], outcome.Path)
	}
	assert.NoError(t, outcomes[0].Err)
	var malformed *chunk.MalformedError
	assert.True(t, errors.As(outcomes[1].Err, &malformed))
	assert.NoError(t, outcomes[2].Err)
	assert.True(t, errors.Is(outcomes[3].Err, os.ErrNotExist))
	assert.Equal(t, 2, Failed(outcomes))

	for _, path := range []string{first, last} {
		written, _ := os.ReadFile(path)
		value, _ := showValue(t, written, "batch")
		assert.Equal(t, "yes", value)
	}
}

func TestPrintResultsText(t *testing.T) {
	dir := t.TempDir()
	input, _ := writeRecording(t, dir, "rec.xdf", 0600)
	run := newTestRun(Config{Verbosity: QuietMode, Dump: true})
	ops := []Operation{Set("subject.name", "My Name"), Set("site", "A"), Show("subject.name"), Show("age")}

	outcomes := run.tagger.ProcessAll([]string{input}, ops)
	require.NoError(t, run.tagger.PrintResults(outcomes))

	printed := run.out.String()
	assert.True(t, strings.HasPrefix(printed, "subject.name: My Name\nage: <absent>\ndesc\n"), printed)
	assert.Contains(t, printed, "name = My Name")
	assert.Contains(t, printed, "site = A")
	assert.NotContains(t, printed, "wrote", "quiet mode omits the status")
	assert.Empty(t, run.errOut.String())
}

func TestPrintResultsTextForSeveralFiles(t *testing.T) {
	dir := t.TempDir()
	first, _ := writeRecording(t, dir, "first.xdf", 0600)
	broken := filepath.Join(dir, "broken.xdf")
	require.NoError(t, os.WriteFile(broken, []byte("junk"), 0600))
	run := newTestRun(Config{})

	outcomes := run.tagger.ProcessAll([]string{first, broken}, []Operation{Set("k", "v"), Show("k")})
	require.NoError(t, run.tagger.PrintResults(outcomes))

	printed := run.out.String()
	assert.Contains(t, printed, "first.xdf:\n  k: v\n")
	assert.Contains(t, printed, "created Metadata stream 2")
	assert.Contains(t, printed, "wrote ")
	assert.Contains(t, run.errOut.String(), "error: ")
	assert.Contains(t, run.errOut.String(), "broken.xdf")
	assert.Contains(t, run.errOut.String(), "1 of 2 files failed")
}

func TestPrintResultsStructured(t *testing.T) {
	dir := t.TempDir()
	input, _ := writeRecording(t, dir, "rec.xdf", 0600)
	ops := []Operation{Set("subject.id", "subj001"), Show("subject.id")}

	jsonRun := newTestRun(Config{Format: JSONFormat, Dump: true})
	require.NoError(t, jsonRun.tagger.PrintResults(jsonRun.tagger.ProcessAll([]string{input}, ops)))
	var record fileRecord
	require.NoError(t, json.Unmarshal(jsonRun.out.Bytes(), &record))
	assert.Equal(t, input, record.File)
	assert.True(t, record.Modified)
	assert.True(t, record.Created)
	require.NotNil(t, record.Stream)
	assert.Equal(t, uint32(2), *record.Stream)
	assert.Equal(t, []ShowResult{{Key: "subject.id", Value: "subj001", Present: true}}, record.Shown)
	assert.Len(t, record.Fields, 1)

	yamlRun := newTestRun(Config{Format: YAMLFormat, Overwrite: true})
	require.NoError(t, yamlRun.tagger.PrintResults(yamlRun.tagger.ProcessAll([]string{input}, ops)))
	record = fileRecord{}
	require.NoError(t, yaml.Unmarshal(yamlRun.out.Bytes(), &record))
	assert.Equal(t, input, record.File)
	assert.Equal(t, "subj001", record.Shown[0].Value)
	assert.Empty(t, record.Fields)
}
