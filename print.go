package xdftag

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/n2code/xdftag/internal/metadata"
	"github.com/n2code/xdftag/internal/output"
)

// fileRecord is the structured rendition of a FileOutcome.
type fileRecord struct {
	File     string           `json:"file" yaml:"file"`
	Output   string           `json:"output,omitempty" yaml:"output,omitempty"`
	Skipped  bool             `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Modified bool             `json:"modified" yaml:"modified"`
	Created  bool             `json:"created,omitempty" yaml:"created,omitempty"`
	Stream   *uint32          `json:"stream,omitempty" yaml:"stream,omitempty"`
	Shown    []ShowResult     `json:"shown,omitempty" yaml:"shown,omitempty"`
	Fields   []metadata.Entry `json:"fields,omitempty" yaml:"fields,omitempty"`
	Warnings []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Error    string           `json:"error,omitempty" yaml:"error,omitempty"`
}

func (t *tagger) record(outcome FileOutcome) fileRecord {
	rec := fileRecord{File: outcome.Path, Output: outcome.Output, Skipped: outcome.Skipped}
	if outcome.Err != nil {
		rec.Error = outcome.Err.Error()
	}
	if result := outcome.Result; result != nil {
		rec.Modified = result.Modified
		rec.Created = result.Created
		if result.HasStream {
			id := result.StreamId
			rec.Stream = &id
		}
		rec.Shown = result.Shown
		if t.config.Dump {
			rec.Fields = result.Entries()
		}
		for _, warning := range result.Warnings {
			rec.Warnings = append(rec.Warnings, warning.Error())
		}
	}
	return rec
}

func (t *tagger) PrintResults(outcomes []FileOutcome) error {
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			t.printer.Out(output.Error, "%s %s\n", t.printer.Paint("error:", output.Failure...), outcome.Err)
		}
	}
	switch t.config.Format {
	case JSONFormat:
		encoder := json.NewEncoder(t.out)
		for _, outcome := range outcomes {
			if err := encoder.Encode(t.record(outcome)); err != nil {
				return fmt.Errorf("writing JSON output: %w", err)
			}
		}
		return nil
	case YAMLFormat:
		encoder := yaml.NewEncoder(t.out)
		encoder.SetIndent(2)
		for _, outcome := range outcomes {
			if err := encoder.Encode(t.record(outcome)); err != nil {
				return fmt.Errorf("writing YAML output: %w", err)
			}
		}
		return encoder.Close()
	}
	t.printText(outcomes)
	return nil
}

func (t *tagger) printText(outcomes []FileOutcome) {
	withHeadings := len(outcomes) > 1
	failed := 0
	for _, outcome := range outcomes {
		display := displayablePath(outcome.Path)
		if outcome.Err != nil {
			failed++
			continue
		}
		if outcome.Skipped {
			t.printer.Out(output.Verbose, "%s %s\n", display, t.printer.Paint("skipped", output.Dim...))
			continue
		}
		result := outcome.Result
		for _, warning := range result.Warnings {
			t.printer.Out(output.Error, "%s %s: %s\n", t.printer.Paint("warning:", output.Warning...), display, warning)
		}

		indent := 0
		if withHeadings && (len(result.Shown) > 0 || t.config.Dump) {
			t.printer.Out(output.Required, "%s:\n", display)
			indent = 2
		}
		for _, shown := range result.Shown {
			value := shown.Value
			if !shown.Present {
				value = t.printer.Paint("<absent>", output.Dim...)
			}
			t.printer.Out(output.Required, "%s\n", output.Indent(indent, shown.Key+": "+value))
		}
		if t.config.Dump {
			t.printDump(result, indent)
		}

		t.printer.Out(output.Verbose, "%s: %d chunks read\n", display, result.Chunks)
		if result.Created {
			t.printer.Out(output.Normal, "%s: %s\n", display, t.printer.Paint(fmt.Sprintf("created Metadata stream %d", result.StreamId), output.Created...))
		}
		if outcome.Output != "" {
			status := "copied unchanged to"
			if result.Modified {
				status = "wrote"
			}
			t.printer.Out(output.Normal, "%s: %s %s\n", display, t.printer.Paint(status, output.Success...), displayablePath(outcome.Output))
			if t.printer.Enabled(output.Verbose) && result.Modified {
				t.printer.Out(output.Verbose, "%s\n", output.Indent(2, output.Filesize(len(result.Content))))
			}
		}
	}
	if failed > 0 && len(outcomes) > 1 {
		t.printer.Out(output.Error, "%d of %d %s failed\n", failed, len(outcomes), output.Plural(len(outcomes), "file", "files"))
	}
}

func (t *tagger) printDump(result *Result, indent int) {
	entries := result.Entries()
	if len(entries) == 0 {
		t.printer.Out(output.Required, "%s\n", output.Indent(indent, t.printer.Paint("(no fields)", output.Dim...)))
		return
	}
	tree := output.NewVisualTree(result.DocumentRoot())
	for _, entry := range entries {
		tree.InsertField(entry.Path, entry.Value)
	}
	t.printer.Out(output.Required, "%s\n", output.Indent(indent, strings.TrimSuffix(tree.Render(), "\n")))
}

// Failed counts the outcomes with errors.
func Failed(outcomes []FileOutcome) (count int) {
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			count++
		}
	}
	return
}
