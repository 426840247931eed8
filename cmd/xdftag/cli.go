package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/n2code/xdftag"
	"github.com/n2code/xdftag/cmd/xdftag/flags"
)

type CliRequest struct {
	verbose         bool
	quiet           bool
	plain           bool
	dump            bool
	suffix          string
	inPlace         bool
	overwrite       bool
	processSuffixed bool
	jobs            int
	format          xdftag.OutputFormat
	logLevel        zerolog.Level
	ops             []xdftag.Operation
	patterns        []string
}

// operationFlag collects repeated --set/--clear/--show flags into one list so that their relative order survives parsing.
type operationFlag struct {
	kind xdftag.OperationKind
	ops  *[]xdftag.Operation
}

func (f *operationFlag) String() string {
	return ""
}

func (f *operationFlag) Type() string {
	if f.kind == xdftag.SetTag {
		return "key=value"
	}
	return "key"
}

func (f *operationFlag) Set(value string) error {
	switch f.kind {
	case xdftag.SetTag:
		op, err := xdftag.ParseAssignment(value)
		if err != nil {
			return err
		}
		*f.ops = append(*f.ops, op)
	case xdftag.ClearTag:
		*f.ops = append(*f.ops, xdftag.Clear(value))
	case xdftag.ShowTag:
		*f.ops = append(*f.ops, xdftag.Show(value))
	}
	return nil
}

var formats = map[string]xdftag.OutputFormat{
	"text": xdftag.TextFormat,
	"json": xdftag.JSONFormat,
	"yaml": xdftag.YAMLFormat,
}

var logLevels = map[string]zerolog.Level{
	"error": zerolog.ErrorLevel,
	"warn":  zerolog.WarnLevel,
	"info":  zerolog.InfoLevel,
	"debug": zerolog.DebugLevel,
}

func parseFlags(args []string, out io.Writer, errOut io.Writer) (request *CliRequest, exitCode int) {
	flagSet := pflag.NewFlagSet("xdftag", pflag.ContinueOnError)
	usageOut := errOut
	flagSet.SetOutput(errOut)
	flagSet.SortFlags = false
	flagSet.Usage = func() {
		flagSet.SetOutput(usageOut)
		fmt.Fprint(usageOut, `
Usage:
   xdftag [-v|-q] [-p] [--set KEY=VALUE] [--clear KEY] [--show KEY] [--dump] [FLAG...] PATH...

 Edit the tags of the Metadata stream in XDF files. Tags are addressed by
 dotted paths, e.g. subject.name, and edits are applied in the given order.
 Unless --inplace is set, edited files are written next to the input with
 the suffix inserted before the .xdf extension. PATHs may be glob patterns.

`)
		flagSet.PrintDefaults()
		fmt.Fprint(usageOut, "\n")
	}

	request = &CliRequest{}
	var helpRequested bool
	var format, logLevel string
	flagSet.Var(&operationFlag{kind: xdftag.SetTag, ops: &request.ops}, flags.Set, "set the tag KEY to VALUE, creating nested tags as needed (repeatable)")
	flagSet.Var(&operationFlag{kind: xdftag.ClearTag, ops: &request.ops}, flags.Clear, "remove the tag KEY including nested tags (repeatable)")
	flagSet.Var(&operationFlag{kind: xdftag.ShowTag, ops: &request.ops}, flags.Show, "print the value of the tag KEY (repeatable)")
	flagSet.BoolVar(&request.dump, flags.Dump, false, "print all tags of each file as a tree")
	flagSet.StringVar(&request.suffix, flags.Suffix, xdftag.DefaultSuffix, "suffix spliced in before the .xdf ending of output files\n(an empty suffix implies --inplace)")
	flagSet.BoolVar(&request.inPlace, flags.InPlace, false, "replace the input files instead of writing suffixed copies")
	flagSet.BoolVar(&request.processSuffixed, flags.ProcessSuffixed, false, "also process files that already carry the suffix")
	flagSet.BoolVar(&request.overwrite, flags.Overwrite, false, "replace existing output files (--inplace always replaces)")
	flagSet.IntVarP(&request.jobs, flags.Jobs, flags.JobsShort, 0, "number of files processed in parallel (default: number of CPUs)")
	flagSet.StringVar(&format, flags.Format, "text", "output format of shown tags and dumps: text, json, or yaml")
	flagSet.StringVar(&logLevel, flags.LogLevel, "warn", "diagnostics on stderr: error, warn, info, or debug")
	flagSet.BoolVarP(&request.verbose, "verbose", flags.Verbose, false, "output more details on what is done (verbose mode)")
	flagSet.BoolVarP(&request.quiet, "quiet", flags.Quiet, false, "output only requested information (quiet mode)")
	flagSet.BoolVarP(&request.plain, "plain", flags.Plain, false, "never use colors or other terminal escape sequences")
	flagSet.BoolVarP(&helpRequested, "help", flags.Help, false, "display usage help")

	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(errOut, "%s\nUsage help: xdftag -h\n", err)
			exitCode = 2
			request = nil
		}
	}()

	if err = flagSet.Parse(args); err != nil {
		return
	}
	if helpRequested {
		usageOut = out
		flagSet.Usage()
		return nil, 0
	}
	if request.verbose && request.quiet {
		err = errors.New("quiet mode and verbose mode are mutually exclusive")
		return
	}
	var known bool
	if request.format, known = formats[strings.ToLower(format)]; !known {
		err = fmt.Errorf("unknown output format %q", format)
		return
	}
	if request.logLevel, known = logLevels[strings.ToLower(logLevel)]; !known {
		err = fmt.Errorf("unknown log level %q", logLevel)
		return
	}
	if request.jobs < 0 {
		err = fmt.Errorf("number of jobs must not be negative")
		return
	}
	if request.suffix == "" { //no suffix, no earlier outputs to recognize
		request.inPlace = true
		request.processSuffixed = true
	}
	if len(request.ops) == 0 && !request.dump {
		err = errors.New("nothing to do, give at least one of --set, --clear, --show, or --dump")
		return
	}
	request.patterns = flagSet.Args()
	if len(request.patterns) == 0 {
		err = errors.New("no files given")
		return
	}
	return
}

func (rq *CliRequest) logger(errOut io.Writer) *zerolog.Logger {
	writer := zerolog.ConsoleWriter{Out: errOut, NoColor: rq.plain, TimeFormat: time.TimeOnly}
	logger := zerolog.New(writer).Level(rq.logLevel).With().Timestamp().Logger()
	return &logger
}

var errFilesFailed = errors.New("not all files could be processed")

func (rq *CliRequest) execute(out io.Writer, errOut io.Writer) error {
	config := xdftag.Config{
		Format:          rq.format,
		Dump:            rq.dump,
		Suffix:          rq.suffix,
		InPlace:         rq.inPlace,
		Overwrite:       rq.overwrite,
		ProcessSuffixed: rq.processSuffixed,
		Jobs:            rq.jobs,
		Plain:           rq.plain,
		Logger:          rq.logger(errOut),
		Out:             out,
		ErrOut:          errOut,
	}
	switch {
	case rq.verbose:
		config.Verbosity = xdftag.VerboseMode
	case rq.quiet:
		config.Verbosity = xdftag.QuietMode
	}

	paths, problems := xdftag.ExpandPatterns(rq.patterns)
	for _, problem := range problems {
		fmt.Fprintf(errOut, "error: %s\n", problem)
	}

	tagger := xdftag.New(config)
	outcomes := tagger.ProcessAll(paths, rq.ops)
	if err := tagger.PrintResults(outcomes); err != nil {
		return err
	}
	if len(problems) > 0 || xdftag.Failed(outcomes) > 0 {
		return errFilesFailed
	}
	return nil
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	rq, rc := parseFlags(args, out, errOut)
	if rc != 0 || rq == nil {
		return rc
	}
	if err := rq.execute(out, errOut); err != nil {
		if !errors.Is(err, errFilesFailed) {
			fmt.Fprintln(errOut, err)
		}
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
