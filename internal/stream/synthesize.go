package stream

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"

	"github.com/n2code/xdftag/internal/chunk"
)

const metadataHeaderTemplate = `<?xml version="1.0"?>
<info>
    <name>%s</name>
    <type>%s</type>
    <channel_count>0</channel_count>
    <nominal_srate>0</nominal_srate>
    <channel_format>string</channel_format>
    <source_id></source_id>
    <version>1.1000000000000001</version>
    <created_at>0</created_at>
    <uid>%s</uid>
    <session_id>default</session_id>
    <hostname>undefined</hostname>
    <desc></desc>
</info>`

// Synthesize builds a minimal Metadata stream: a header with zero channels and an empty content chunk.
func Synthesize(id Id) Synthesized {
	header := fmt.Sprintf(metadataHeaderTemplate, MetadataName, MetadataType, uuid.NewString())
	return Synthesized{
		Id:      id,
		Header:  chunk.New(chunk.StreamHeader, withId(id, []byte(header))),
		Content: ContentChunk(id, nil),
	}
}

// ContentChunk wraps text into a new samples chunk of the given stream.
func ContentChunk(id Id, text []byte) chunk.Chunk {
	return chunk.New(chunk.Samples, withId(id, text))
}

func withId(id Id, text []byte) []byte {
	payload := make([]byte, idSize, idSize+len(text))
	binary.LittleEndian.PutUint32(payload, uint32(id))
	return append(payload, text...)
}
