package xdftag

import (
	"io"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/n2code/xdftag/internal/output"
)

type VerbosityLevel int

const (
	DefaultVerbosity VerbosityLevel = iota
	VerboseMode
	QuietMode
)

type OutputFormat int

const (
	TextFormat OutputFormat = iota
	JSONFormat
	YAMLFormat
)

const DefaultSuffix = ".processed"

// Config holds all switches that concern a tagging run.
// The zero value is a sensible default: results are written next to the input with DefaultSuffix.
type Config struct {
	Verbosity       VerbosityLevel
	Format          OutputFormat
	Dump            bool   //print all fields of each file
	Suffix          string //inserted before the .xdf extension of output files, empty means DefaultSuffix
	InPlace         bool   //replace the input instead of writing a suffixed copy
	Overwrite       bool   //replace existing suffixed output files
	ProcessSuffixed bool   //also process inputs that carry the suffix already
	Jobs            int    //number of files processed in parallel, defaults to the number of CPUs
	Plain           bool   //never emit terminal escape sequences
	Logger          *zerolog.Logger
	Out             io.Writer //requested information and status, defaults to stdout
	ErrOut          io.Writer //failures, defaults to stderr
}

// FileOutcome is what happened to a single input file.
type FileOutcome struct {
	Path    string
	Output  string //written file, empty if nothing was written
	Skipped bool
	Result  *Result //nil if processing failed or was skipped
	Err     error   //*FileError if set
}

// Tagger edits the Metadata streams of XDF files on disk. Obtain one with New.
type Tagger interface {

	// ProcessFile applies the operations to a single file.
	// If any operation modifies the metadata the outcome is written according to the configured output policy,
	// otherwise the file is only read. Errors are of type *FileError and also recorded in the outcome.
	ProcessFile(path string, ops []Operation) (*FileOutcome, error)

	// ProcessAll runs ProcessFile for all paths using the configured number of parallel jobs.
	// A failing file does not affect the others. Outcomes are returned in input order.
	ProcessAll(paths []string, ops []Operation) []FileOutcome

	// PrintResults outputs shown fields, dumps, and the status of each file in the configured format.
	// Failures are reported on the error output.
	PrintResults(outcomes []FileOutcome) error
}

type tagger struct {
	config  Config
	suffix  string
	jobs    int
	log     zerolog.Logger
	printer *output.Printer
	out     io.Writer
	errOut  io.Writer
}

func New(config Config) Tagger {
	t := &tagger{config: config, suffix: config.Suffix, jobs: config.Jobs, out: config.Out, errOut: config.ErrOut}
	if t.suffix == "" {
		t.suffix = DefaultSuffix
	}
	if t.jobs < 1 {
		t.jobs = runtime.NumCPU()
	}
	if config.Logger != nil {
		t.log = *config.Logger
	} else {
		t.log = zerolog.Nop()
	}
	if t.out == nil {
		t.out = os.Stdout
	}
	if t.errOut == nil {
		t.errOut = os.Stderr
	}

	classes := []output.Class{output.Required, output.Error}
	switch config.Verbosity {
	case VerboseMode:
		classes = append(classes, output.Verbose)
		fallthrough
	case DefaultVerbosity:
		classes = append(classes, output.Normal)
	}
	t.printer = output.NewPrinter(classes, !config.Plain && isTerminal(t.out), t.out, t.errOut)
	return t
}

func isTerminal(w io.Writer) bool {
	file, isFile := w.(*os.File)
	return isFile && term.IsTerminal(int(file.Fd()))
}

func (t *tagger) ProcessFile(path string, ops []Operation) (outcome *FileOutcome, err error) {
	outcome = &FileOutcome{Path: path}
	defer func() {
		if err != nil {
			err = newFileError(path, err)
			outcome.Err = err
			outcome.Output = ""
		}
	}()
	log := t.log.With().Str("file", path).Logger()

	if !t.config.ProcessSuffixed && hasOutputSuffix(path, t.suffix) {
		log.Info().Str("suffix", t.suffix).Msg("skipping output of an earlier run")
		outcome.Skipped = true
		return outcome, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	result, err := Apply(data, ops)
	if err != nil {
		return
	}
	outcome.Result = result
	log.Debug().Int("chunks", result.Chunks).Bool("stream", result.HasStream).Uint32("id", result.StreamId).Msg("metadata located")
	for _, warning := range result.Warnings {
		log.Warn().Err(warning).Msg("ambiguous metadata")
	}
	if result.Created {
		log.Debug().Uint32("id", result.StreamId).Msg("created Metadata stream")
	}

	if !AnyModifying(ops) {
		return
	}
	content := data
	if result.Modified {
		content = result.Content
	}
	if t.config.InPlace {
		if !result.Modified {
			log.Debug().Msg("metadata unchanged, leaving file as is")
			return
		}
		outcome.Output = path
		err = writeFileAtomically(path, content, info.Mode(), true)
	} else {
		outcome.Output = SuffixedPath(path, t.suffix)
		err = writeFileAtomically(outcome.Output, content, info.Mode(), t.config.Overwrite)
	}
	if err == nil {
		log.Info().Str("output", outcome.Output).Int("bytes", len(content)).Bool("modified", result.Modified).Msg("written")
	}
	return
}

func (t *tagger) ProcessAll(paths []string, ops []Operation) []FileOutcome {
	outcomes := make([]FileOutcome, len(paths))
	var group errgroup.Group
	group.SetLimit(t.jobs)
	for i, path := range paths {
		i, path := i, path
		group.Go(func() error {
			outcome, _ := t.ProcessFile(path, ops) //failure is part of the outcome
			outcomes[i] = *outcome
			return nil
		})
	}
	_ = group.Wait()
	return outcomes
}
