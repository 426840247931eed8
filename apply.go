package xdftag

import (
	"bytes"

	"github.com/n2code/xdftag/internal"
	"github.com/n2code/xdftag/internal/chunk"
	"github.com/n2code/xdftag/internal/metadata"
	"github.com/n2code/xdftag/internal/rewrite"
	"github.com/n2code/xdftag/internal/stream"
)

// ShowResult answers a single show operation.
type ShowResult struct {
	Key     string `json:"key" yaml:"key"`
	Value   string `json:"value,omitempty" yaml:"value,omitempty"`
	Present bool   `json:"present" yaml:"present"`
}

// Result describes the outcome of applying operations to one file's content.
type Result struct {
	Content   []byte //complete new file content, nil unless Modified
	Modified  bool
	Created   bool //a Metadata stream was added to the file
	HasStream bool //a Metadata stream exists, after applying
	StreamId  uint32
	Chunks    int //number of chunks read
	Shown     []ShowResult
	Warnings  []error
	document  *metadata.Document
}

// Entries lists all fields of the metadata document after applying the operations.
func (r *Result) Entries() []metadata.Entry {
	return r.document.Entries()
}

func (r *Result) DocumentRoot() string {
	return r.document.RootName()
}

// Apply runs the operations in order against the Metadata stream of an XDF file given as raw bytes.
// It never touches the file system. On error nothing is applied, i.e. the caller must not write anything.
// Chunks outside the Metadata stream are carried over byte for byte.
func Apply(data []byte, ops []Operation) (*Result, error) {
	paths := make([]metadata.Path, len(ops))
	for i, op := range ops {
		path, err := metadata.ParsePath(op.Key)
		if err != nil {
			return nil, err
		}
		paths[i] = path
	}

	chunks, err := chunk.Decode(data)
	if err != nil {
		return nil, err
	}
	reg, err := stream.Scan(chunks)
	if err != nil {
		return nil, err
	}

	result := &Result{Chunks: len(chunks)}
	var existing *stream.Stream
	if id, found, ignored := reg.FindMetadata(); found {
		existing, _ = reg.Get(id)
		result.HasStream = true
		result.StreamId = uint32(id)
		if len(ignored) > 0 {
			result.Warnings = append(result.Warnings, &stream.AmbiguousError{Used: id, Ignored: ignored})
		}
	}

	doc, err := loadDocument(reg, existing)
	if err != nil {
		return nil, err
	}
	result.document = doc
	before := doc.Encode()
	changed := false

	for i, op := range ops {
		switch op.Kind {
		case SetTag:
			set, err := doc.Set(paths[i], op.Value)
			if err != nil {
				return nil, err
			}
			changed = changed || set
		case ClearTag:
			cleared := doc.Clear(paths[i])
			changed = changed || cleared
		case ShowTag:
			value, present := doc.Show(paths[i])
			result.Shown = append(result.Shown, ShowResult{Key: op.Key, Value: value, Present: present})
		}
	}

	if !changed {
		return result, nil
	}
	encoded := doc.Encode()
	if bytes.Equal(before, encoded) { //edits cancelled out
		return result, nil
	}
	result.Modified = true

	target := rewrite.Target{Existing: existing}
	if existing == nil {
		created := stream.Synthesize(reg.NextAvailableId())
		target.Created = &created
		result.Created = true
		result.HasStream = true
		result.StreamId = uint32(created.Id)
	}
	result.Content, err = chunk.Encode(rewrite.Assemble(chunks, target, encoded))
	internal.AssertNoError(err, "decoded chunks fit their length form and new ones are sized minimally")
	return result, nil
}

// loadDocument reads the document of the given Metadata stream (nil if there is none).
// A stream without content chunks is seeded from the desc element of its header.
func loadDocument(reg *stream.Registry, s *stream.Stream) (*metadata.Document, error) {
	if s == nil {
		return metadata.NewDocument(), nil
	}
	if len(s.Content) > 0 {
		return metadata.Decode(reg.ContentText(s))
	}
	header, err := metadata.Decode(reg.HeaderText(s))
	if err != nil { //header is not ours to validate, start over
		return metadata.NewDocument(), nil
	}
	if desc, exists := header.Extract(metadata.DefaultRootName); exists && len(desc.Entries()) > 0 {
		return desc, nil
	}
	return metadata.NewDocument(), nil
}
