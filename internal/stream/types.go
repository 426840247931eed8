package stream

import (
	"fmt"
	"strings"

	"github.com/n2code/xdftag/internal/chunk"
)

type Id uint32

const (
	MetadataName = "Metadata"
	MetadataType = "Metadata"
)

const idSize = 4

const noChunk = -1

// Stream groups the chunks sharing a stream id. All chunk references are indices into the scanned chunk list.
type Stream struct {
	Id           Id
	Name         string //empty if the header text could not be parsed
	Type         string
	Header       int
	Content      []int //samples chunks in file order
	ClockOffsets []int
	Footer       int //noChunk if absent
}

func (s *Stream) IsMetadata() bool {
	return s.Name == MetadataName && s.Type == MetadataType
}

func (s *Stream) HasFooter() bool {
	return s.Footer != noChunk
}

func (s *Stream) String() string {
	return fmt.Sprintf("stream %d (name %q, type %q, %d content chunks)", s.Id, s.Name, s.Type, len(s.Content))
}

// Registry indexes the streams of one file.
type Registry struct {
	streams map[Id]*Stream
	order   []Id //order of header appearance
	chunks  []chunk.Chunk
}

// Synthesized holds the chunks of a stream that does not exist in the file yet.
type Synthesized struct {
	Id      Id
	Header  chunk.Chunk
	Content chunk.Chunk
}

// AmbiguousError reports Metadata streams that are ignored because an earlier one exists.
type AmbiguousError struct {
	Used    Id
	Ignored []Id
}

func (e *AmbiguousError) Error() string {
	ignored := make([]string, len(e.Ignored))
	for i, id := range e.Ignored {
		ignored[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("more than one %s stream, using stream %d and ignoring %s", MetadataName, e.Used, strings.Join(ignored, ", "))
}
