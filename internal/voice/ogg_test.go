package voice

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOggWriter_Roundtrip(t *testing.T) {
	frames := [][]byte{
		bytes.Repeat([]byte{0x01}, 40),
		bytes.Repeat([]byte{0x02}, 120),
		bytes.Repeat([]byte{0x03}, 600), // spans multiple lacing segments
	}

	var buf bytes.Buffer
	w := newOggWriter(&buf)
	require.NoError(t, w.writeHeaders(2))
	require.NoError(t, w.writeFrames(frames, true))

	var packets [][]byte
	require.NoError(t, readOggPackets(&buf, func(p []byte) {
		packets = append(packets, p)
	}))

	require.Len(t, packets, 2+len(frames))
	assert.Equal(t, "OpusHead", string(packets[0][:8]))
	assert.Equal(t, "OpusTags", string(packets[1][:8]))
	for n, frame := range frames {
		assert.Equal(t, frame, packets[2+n], "frame %d mismatch", n)
	}
}

func TestOggWriter_ManyFramesSpanPages(t *testing.T) {
	frames := make([][]byte, 3*packetsPerPage+7)
	for n := range frames {
		frames[n] = []byte{byte(n), byte(n >> 8)}
	}

	var buf bytes.Buffer
	w := newOggWriter(&buf)
	require.NoError(t, w.writeHeaders(2))
	require.NoError(t, w.writeFrames(frames, true))

	count := 0
	require.NoError(t, readOggPackets(&buf, func(p []byte) {
		count++
	}))
	assert.Equal(t, 2+len(frames), count)
}

func TestOggChecksum_KnownProperties(t *testing.T) {
	// Zero input gives zero checksum with this polynomial and init value
	assert.Equal(t, uint32(0), oggChecksum(make([]byte, 16)))
	// Checksum is sensitive to every byte
	a := oggChecksum([]byte("OggS1234"))
	b := oggChecksum([]byte("OggS1235"))
	assert.NotEqual(t, a, b)
}

func TestReadOggPackets_RejectsGarbage(t *testing.T) {
	err := readOggPackets(bytes.NewReader([]byte("this is not an ogg stream, not at all")), func([]byte) {})
	assert.Error(t, err)
}

func TestReadOggPackets_EmptyStream(t *testing.T) {
	assert.NoError(t, readOggPackets(bytes.NewReader(nil), func([]byte) {
		t.Fatal("no packets expected")
	}))
}
