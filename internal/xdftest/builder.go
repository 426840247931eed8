// Package xdftest builds small XDF chunk sequences for tests.
package xdftest

import (
	"encoding/binary"
	"fmt"

	"github.com/n2code/xdftag/internal/chunk"
)

func withId(id uint32, body []byte) []byte {
	payload := binary.LittleEndian.AppendUint32(nil, id)
	return append(payload, body...)
}

func FileHeader() chunk.Chunk {
	return chunk.New(chunk.FileHeader, []byte(`<?xml version="1.0"?><info><version>1.0</version></info>`))
}

func StreamHeader(id uint32, name string, typ string) chunk.Chunk {
	return StreamHeaderText(id, fmt.Sprintf(`<?xml version="1.0"?><info><name>%s</name><type>%s</type><channel_count>1</channel_count></info>`, name, typ))
}

// StreamHeaderText builds a stream header with arbitrary XML.
func StreamHeaderText(id uint32, text string) chunk.Chunk {
	return chunk.New(chunk.StreamHeader, withId(id, []byte(text)))
}

func Samples(id uint32, body []byte) chunk.Chunk {
	return chunk.New(chunk.Samples, withId(id, body))
}

func ClockOffset(id uint32) chunk.Chunk {
	return chunk.New(chunk.ClockOffset, withId(id, make([]byte, 16)))
}

func Boundary() chunk.Chunk {
	return chunk.New(chunk.Boundary, []byte{0x43, 0xA5, 0x46, 0xDC, 0xCB, 0xF5, 0x41, 0x0F, 0xB3, 0x0E, 0xD5, 0x46, 0x73, 0x83, 0xCB, 0xE4})
}

func StreamFooter(id uint32) chunk.Chunk {
	return chunk.New(chunk.StreamFooter, withId(id, []byte(`<?xml version="1.0"?><info><first_timestamp>0</first_timestamp></info>`)))
}

// Recording is a typical file with one EEG stream (id 1) and no Metadata stream.
func Recording() []chunk.Chunk {
	return []chunk.Chunk{
		FileHeader(),
		StreamHeader(1, "EEG", "EEG"),
		Boundary(),
		Samples(1, []byte{1, 2, 3, 4, 5, 6, 7, 8}),
		ClockOffset(1),
		Samples(1, make([]byte, 600)),
		Boundary(),
		StreamFooter(1),
	}
}

// Bytes encodes the chunks and panics on failure.
func Bytes(chunks []chunk.Chunk) []byte {
	data, err := chunk.Encode(chunks)
	if err != nil {
		panic(err)
	}
	return data
}
