package chunk

import "fmt"

// Magic is the file signature preceding the first chunk.
const Magic = "XDF:"

type Tag uint16

const (
	FileHeader   Tag = 1
	StreamHeader Tag = 2
	Samples      Tag = 3 //stream content
	ClockOffset  Tag = 4
	Boundary     Tag = 5
	StreamFooter Tag = 6
)

func (t Tag) String() string {
	switch t {
	case FileHeader:
		return "FileHeader"
	case StreamHeader:
		return "StreamHeader"
	case Samples:
		return "Samples"
	case ClockOffset:
		return "ClockOffset"
	case Boundary:
		return "Boundary"
	case StreamFooter:
		return "StreamFooter"
	default:
		return fmt.Sprintf("Tag(%d)", uint16(t))
	}
}

func (t Tag) recognized() bool {
	return t >= FileHeader && t <= StreamFooter
}

// CarriesStreamId reports whether the payload of such a chunk starts with a 4-byte stream id.
func (t Tag) CarriesStreamId() bool {
	switch t {
	case StreamHeader, Samples, ClockOffset, StreamFooter:
		return true
	}
	return false
}

// LengthForm is the width of the length field a chunk was read with (or shall be written with).
type LengthForm uint8

const (
	FormMinimal LengthForm = 0 //new chunk, smallest width that fits is chosen on encode
	Form1       LengthForm = 1 //short form, 1 length byte
	Form4       LengthForm = 4 //extended form, 4 length bytes
	Form8       LengthForm = 8 //extended form, 8 length bytes
)

// Chunk is a single length-prefixed, tagged record. The length on disk is derived from the payload.
type Chunk struct {
	Tag     Tag
	Form    LengthForm
	Payload []byte //excludes the tag
}

// New creates a chunk that will be written using the minimal length form.
func New(tag Tag, payload []byte) Chunk {
	return Chunk{Tag: tag, Form: FormMinimal, Payload: payload}
}

// Length is the logical payload length.
func (c Chunk) Length() int {
	return len(c.Payload)
}

type MalformedError struct {
	Offset int64 //negative if the problem is not tied to a file position
	Reason string
}

func (e *MalformedError) Error() string {
	if e.Offset < 0 {
		return "malformed chunk: " + e.Reason
	}
	return fmt.Sprintf("malformed chunk at byte %d: %s", e.Offset, e.Reason)
}
