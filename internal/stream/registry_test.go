package stream

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n2code/xdftag/internal/chunk"
	"github.com/n2code/xdftag/internal/xdftest"
)

func TestScanIndexesStreams(t *testing.T) {
	chunks := []chunk.Chunk{
		xdftest.FileHeader(),
		xdftest.Samples(7, []byte("orphan")), //before its header, stays opaque
		xdftest.StreamHeader(7, "EEG", "EEG"),
		xdftest.StreamHeader(3, "Markers", "Markers"),
		xdftest.Samples(7, []byte("a")),
		xdftest.ClockOffset(7),
		xdftest.Samples(3, []byte("b")),
		xdftest.Samples(7, []byte("c")),
		xdftest.Boundary(),
		xdftest.StreamFooter(3),
		xdftest.StreamFooter(7),
	}

	reg, err := Scan(chunks)
	require.NoError(t, err)

	streams := reg.Streams()
	require.Len(t, streams, 2)
	assert.Equal(t, Id(7), streams[0].Id)
	assert.Equal(t, Id(3), streams[1].Id)

	eeg, exists := reg.Get(7)
	require.True(t, exists)
	assert.Equal(t, "EEG", eeg.Name)
	assert.Equal(t, "EEG", eeg.Type)
	assert.Equal(t, 2, eeg.Header)
	assert.Equal(t, []int{4, 7}, eeg.Content)
	assert.Equal(t, []int{5}, eeg.ClockOffsets)
	assert.Equal(t, 10, eeg.Footer)
	assert.Equal(t, []byte("ac"), reg.ContentText(eeg))

	markers, _ := reg.Get(3)
	assert.Equal(t, []int{6}, markers.Content)
	assert.True(t, markers.HasFooter())

	_, found, _ := reg.FindMetadata()
	assert.False(t, found)
	assert.Equal(t, Id(8), reg.NextAvailableId())
}

func TestFindMetadataPrefersFirstAndReportsOthers(t *testing.T) {
	chunks := []chunk.Chunk{
		xdftest.StreamHeader(1, "EEG", "EEG"),
		xdftest.StreamHeader(9, MetadataName, MetadataType),
		xdftest.StreamHeader(4, MetadataName, "Other"),
		xdftest.StreamHeader(5, MetadataName, MetadataType),
	}
	reg, err := Scan(chunks)
	require.NoError(t, err)

	id, found, ignored := reg.FindMetadata()
	assert.True(t, found)
	assert.Equal(t, Id(9), id)
	assert.Equal(t, []Id{5}, ignored)
}

func TestScanToleratesUnparsableHeader(t *testing.T) {
	broken := chunk.New(chunk.StreamHeader, append([]byte{2, 0, 0, 0}, []byte("<info><name>x")...))
	reg, err := Scan([]chunk.Chunk{broken})
	require.NoError(t, err)

	s, exists := reg.Get(2)
	require.True(t, exists)
	assert.Empty(t, s.Name)
	assert.False(t, s.IsMetadata())
}

func TestScanRejectsChunkWithoutStreamId(t *testing.T) {
	_, err := Scan([]chunk.Chunk{chunk.New(chunk.Samples, []byte{1, 0})})
	var malformed *chunk.MalformedError
	require.True(t, errors.As(err, &malformed))
}

func TestNextAvailableIdOfEmptyFile(t *testing.T) {
	reg, err := Scan(nil)
	require.NoError(t, err)
	assert.Equal(t, Id(1), reg.NextAvailableId())
}

func TestNextAvailableIdAfterHighestId(t *testing.T) {
	reg, err := Scan([]chunk.Chunk{
		xdftest.StreamHeader(0, "EEG", "EEG"),
		xdftest.StreamHeader(1, "EEG", "EEG"),
		xdftest.StreamHeader(math.MaxUint32, "Markers", "Markers"),
		xdftest.Samples(3, []byte{1}),
	})
	require.NoError(t, err)
	assert.Equal(t, Id(2), reg.NextAvailableId())
}

func TestSynthesize(t *testing.T) {
	synthesized := Synthesize(12)

	chunks := []chunk.Chunk{synthesized.Header, synthesized.Content}
	reg, err := Scan(chunks)
	require.NoError(t, err)

	id, found, ignored := reg.FindMetadata()
	require.True(t, found)
	assert.Equal(t, Id(12), id)
	assert.Empty(t, ignored)

	s, _ := reg.Get(12)
	assert.Equal(t, []int{1}, s.Content)
	assert.Empty(t, reg.ContentText(s))
	assert.Contains(t, string(reg.HeaderText(s)), "<channel_count>0</channel_count>")
	assert.Equal(t, chunk.FormMinimal, synthesized.Header.Form)

	other := Synthesize(12)
	assert.NotEqual(t, synthesized.Header.Payload, other.Header.Payload, "each header carries a fresh uid")
}
