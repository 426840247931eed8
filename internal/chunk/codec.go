package chunk

import (
	"encoding/binary"
	"fmt"
)

const tagSize = 2 //the on-disk length includes the tag

// Decode splits a complete XDF file into its chunks. Payloads alias data.
func Decode(data []byte) ([]Chunk, error) {
	if len(data) < len(Magic) || string(data[:len(Magic)]) != Magic {
		return nil, &MalformedError{Offset: 0, Reason: "file signature " + Magic + " missing"}
	}
	var chunks []Chunk
	pos := len(Magic)
	for pos < len(data) {
		start := pos
		form := LengthForm(data[pos])
		pos++
		if !form.valid() {
			return nil, &MalformedError{Offset: int64(start), Reason: fmt.Sprintf("invalid length field width %d", form)}
		}
		width := int(form)
		if len(data)-pos < width {
			return nil, &MalformedError{Offset: int64(start), Reason: "length field truncated"}
		}
		var length uint64
		switch form {
		case Form1:
			length = uint64(data[pos])
		case Form4:
			length = uint64(binary.LittleEndian.Uint32(data[pos:]))
		case Form8:
			length = binary.LittleEndian.Uint64(data[pos:])
		}
		pos += width
		if length < tagSize {
			return nil, &MalformedError{Offset: int64(start), Reason: fmt.Sprintf("length %d too short to hold a tag", length)}
		}
		if length > uint64(len(data)-pos) {
			return nil, &MalformedError{Offset: int64(start), Reason: fmt.Sprintf("length %d exceeds the remaining %d bytes", length, len(data)-pos)}
		}
		tag := Tag(binary.LittleEndian.Uint16(data[pos:]))
		if !tag.recognized() {
			return nil, &MalformedError{Offset: int64(start), Reason: fmt.Sprintf("unrecognized tag %d", uint16(tag))}
		}
		end := pos + int(length)
		chunks = append(chunks, Chunk{Tag: tag, Form: form, Payload: data[pos+tagSize : end : end]})
		pos = end
	}
	return chunks, nil
}

// Encode serializes the chunks into a complete XDF file.
// Chunks keep the length form they were decoded with, new chunks get the minimal one.
func Encode(chunks []Chunk) ([]byte, error) {
	size := len(Magic)
	for _, c := range chunks {
		size += 1 + int(c.effectiveForm()) + tagSize + len(c.Payload)
	}
	buf := make([]byte, 0, size)
	buf = append(buf, Magic...)
	for i, c := range chunks {
		var err error
		if buf, err = AppendChunk(buf, c); err != nil {
			return nil, fmt.Errorf("encoding chunk #%d (%s) failed: %w", i, c.Tag, err)
		}
	}
	return buf, nil
}

// AppendChunk appends the wire representation of a single chunk.
func AppendChunk(buf []byte, c Chunk) ([]byte, error) {
	length := uint64(len(c.Payload)) + tagSize
	form := c.effectiveForm()
	if !form.fits(length) {
		return buf, fmt.Errorf("length %d does not fit into %d length bytes", length, form)
	}
	buf = append(buf, byte(form))
	switch form {
	case Form1:
		buf = append(buf, byte(length))
	case Form4:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(length))
	case Form8:
		buf = binary.LittleEndian.AppendUint64(buf, length)
	}
	buf = binary.LittleEndian.AppendUint16(buf, uint16(c.Tag))
	return append(buf, c.Payload...), nil
}

// MinimalForm yields the narrowest length field able to hold the given on-disk length.
func MinimalForm(length uint64) LengthForm {
	switch {
	case length <= 0xFF:
		return Form1
	case length <= 0xFFFFFFFF:
		return Form4
	default:
		return Form8
	}
}

func (c Chunk) effectiveForm() LengthForm {
	if c.Form == FormMinimal {
		return MinimalForm(uint64(len(c.Payload)) + tagSize)
	}
	return c.Form
}

func (f LengthForm) valid() bool {
	return f == Form1 || f == Form4 || f == Form8
}

func (f LengthForm) fits(length uint64) bool {
	switch f {
	case Form1:
		return length <= 0xFF
	case Form4:
		return length <= 0xFFFFFFFF
	case Form8:
		return true
	}
	return false
}
