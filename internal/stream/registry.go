package stream

import (
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"math"
	"strings"

	"github.com/n2code/xdftag/internal/chunk"
)

// Scan indexes all stream-bearing chunks by stream id.
// Chunks whose id has no preceding header are left unindexed, i.e. opaque.
func Scan(chunks []chunk.Chunk) (*Registry, error) {
	reg := &Registry{streams: make(map[Id]*Stream), chunks: chunks}
	for i, c := range chunks {
		if !c.Tag.CarriesStreamId() {
			continue
		}
		id, err := IdOf(c)
		if err != nil {
			return nil, &chunk.MalformedError{Offset: -1, Reason: fmt.Sprintf("chunk #%d (%s): %s", i, c.Tag, err)}
		}
		s, known := reg.streams[id]
		if c.Tag == chunk.StreamHeader {
			if known { //repeated header, the first one defines the stream
				continue
			}
			s = &Stream{Id: id, Header: i, Footer: noChunk}
			s.Name, s.Type, _ = ParseHeader(c.Payload[idSize:])
			reg.streams[id] = s
			reg.order = append(reg.order, id)
			continue
		}
		if !known {
			continue
		}
		switch c.Tag {
		case chunk.Samples:
			s.Content = append(s.Content, i)
		case chunk.ClockOffset:
			s.ClockOffsets = append(s.ClockOffsets, i)
		case chunk.StreamFooter:
			if !s.HasFooter() {
				s.Footer = i
			}
		}
	}
	return reg, nil
}

// IdOf extracts the stream id every stream-bearing chunk starts with.
func IdOf(c chunk.Chunk) (Id, error) {
	if len(c.Payload) < idSize {
		return 0, fmt.Errorf("payload of %d bytes too short for a stream id", len(c.Payload))
	}
	return Id(binary.LittleEndian.Uint32(c.Payload)), nil
}

// ParseHeader extracts name and type from the XML text of a stream header.
func ParseHeader(text []byte) (name string, typ string, err error) {
	var info struct {
		XMLName xml.Name `xml:"info"`
		Name    string   `xml:"name"`
		Type    string   `xml:"type"`
	}
	if err = xml.Unmarshal(text, &info); err != nil {
		return "", "", err
	}
	return strings.TrimSpace(info.Name), strings.TrimSpace(info.Type), nil
}

func (r *Registry) Get(id Id) (s *Stream, exists bool) {
	s, exists = r.streams[id]
	return
}

// Streams lists all streams in order of their header chunks.
func (r *Registry) Streams() []*Stream {
	all := make([]*Stream, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, r.streams[id])
	}
	return all
}

// FindMetadata yields the first Metadata stream by chunk order. Further matches are returned as ignored.
func (r *Registry) FindMetadata() (id Id, found bool, ignored []Id) {
	for _, candidate := range r.order {
		if !r.streams[candidate].IsMetadata() {
			continue
		}
		if !found {
			id, found = candidate, true
		} else {
			ignored = append(ignored, candidate)
		}
	}
	return
}

// NextAvailableId yields an id above all ids used by any chunk of the file.
// If the highest possible id is taken, the lowest unused one is chosen instead.
func (r *Registry) NextAvailableId() Id {
	var highest Id
	used := make(map[Id]bool)
	for _, c := range r.chunks {
		if !c.Tag.CarriesStreamId() {
			continue
		}
		if id, err := IdOf(c); err == nil {
			used[id] = true
			if id > highest {
				highest = id
			}
		}
	}
	if highest < math.MaxUint32 {
		return highest + 1
	}
	var free Id = 1
	for used[free] && free != 0 { //wraps to 0 only if every other id is taken
		free++
	}
	return free
}

// HeaderText returns the XML part of the stream's header chunk.
func (r *Registry) HeaderText(s *Stream) []byte {
	return r.chunks[s.Header].Payload[idSize:]
}

// ContentText concatenates the stream's samples payloads without their stream id prefixes.
func (r *Registry) ContentText(s *Stream) []byte {
	var text []byte
	for _, i := range s.Content {
		text = append(text, r.chunks[i].Payload[idSize:]...)
	}
	return text
}
