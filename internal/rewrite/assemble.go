// Package rewrite rebuilds a chunk sequence around an updated Metadata stream.
package rewrite

import (
	"github.com/n2code/xdftag/internal/chunk"
	"github.com/n2code/xdftag/internal/stream"
)

// Target names the Metadata stream to write: either an existing stream or a synthesized one (exactly one is set).
type Target struct {
	Existing *stream.Stream
	Created  *stream.Synthesized
}

func (t Target) Id() stream.Id {
	if t.Existing != nil {
		return t.Existing.Id
	}
	return t.Created.Id
}

// Assemble returns a new chunk sequence in which the target stream holds exactly one content chunk with the given text.
// Every other chunk is carried over unchanged and in order. The original slice is not modified.
func Assemble(original []chunk.Chunk, target Target, content []byte) []chunk.Chunk {
	replacement := stream.ContentChunk(target.Id(), content)
	if target.Existing == nil {
		return insertStream(original, target.Created.Header, replacement)
	}
	return replaceContent(original, target.Existing, replacement)
}

func replaceContent(original []chunk.Chunk, existing *stream.Stream, replacement chunk.Chunk) []chunk.Chunk {
	result := make([]chunk.Chunk, 0, len(original)+1)
	if len(existing.Content) == 0 {
		result = append(result, original[:existing.Header+1]...)
		result = append(result, replacement)
		return append(result, original[existing.Header+1:]...)
	}
	dropped := make(map[int]bool, len(existing.Content))
	for _, i := range existing.Content[1:] {
		dropped[i] = true
	}
	for i, c := range original {
		switch {
		case i == existing.Content[0]:
			result = append(result, replacement)
		case dropped[i]:
		default:
			result = append(result, c)
		}
	}
	return result
}

func insertStream(original []chunk.Chunk, header chunk.Chunk, content chunk.Chunk) []chunk.Chunk {
	at := ClosingRunStart(original)
	result := make([]chunk.Chunk, 0, len(original)+2)
	result = append(result, original[:at]...)
	result = append(result, header, content)
	return append(result, original[at:]...)
}

// ClosingRunStart yields the index of the first chunk of the trailing run of boundary and footer chunks,
// or len(chunks) if the file does not end with such a run.
func ClosingRunStart(chunks []chunk.Chunk) int {
	at := len(chunks)
	for at > 0 {
		switch chunks[at-1].Tag {
		case chunk.Boundary, chunk.StreamFooter:
			at--
			continue
		}
		break
	}
	return at
}
