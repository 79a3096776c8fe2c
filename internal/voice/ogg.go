package voice

import (
	"encoding/binary"
	"io"
)

// Ogg checksums use CRC-32 with polynomial 0x04c11db7, MSB first, zero
// initial value. The stdlib crc32 tables are all reflected, so the table is
// built here.
var oggCRCTable [256]uint32

func init() {
	for i := range oggCRCTable {
		r := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if r&0x80000000 != 0 {
				r = (r << 1) ^ 0x04c11db7
			} else {
				r <<= 1
			}
		}
		oggCRCTable[i] = r
	}
}

func oggChecksum(data []byte) uint32 {
	var crc uint32
	for _, b := range data {
		crc = (crc << 8) ^ oggCRCTable[byte(crc>>24)^b]
	}
	return crc
}

const (
	oggFlagContinued = 0x01
	oggFlagBOS       = 0x02
	oggFlagEOS       = 0x04

	// Discord sends 20ms Opus frames at 48kHz
	samplesPerFrame = 960

	// One page holds at most 255 lacing values; stay well under it so a
	// page never needs continuation segments for typical voice frames.
	packetsPerPage = 50
)

// oggWriter wraps Opus packets in a minimal Ogg container that ffmpeg and
// the transcription API accept. Packet boundaries are preserved through the
// lacing table, one page per batch of frames.
type oggWriter struct {
	w       io.Writer
	serial  uint32
	pageSeq uint32
	granule uint64
}

func newOggWriter(w io.Writer) *oggWriter {
	return &oggWriter{w: w, serial: 0x59504252}
}

// writeHeaders emits the OpusHead identification page and the OpusTags
// comment page that every Ogg/Opus stream starts with.
func (o *oggWriter) writeHeaders(channels int) error {
	idHeader := make([]byte, 19)
	copy(idHeader, "OpusHead")
	idHeader[8] = 1 // version
	idHeader[9] = byte(channels)
	binary.LittleEndian.PutUint16(idHeader[10:], 0)     // pre-skip
	binary.LittleEndian.PutUint32(idHeader[12:], 48000) // input sample rate
	binary.LittleEndian.PutUint16(idHeader[16:], 0)     // output gain
	idHeader[18] = 0                                    // channel mapping family

	if err := o.writePage(oggFlagBOS, 0, [][]byte{idHeader}); err != nil {
		return err
	}

	vendor := []byte("yellpepper")
	comment := make([]byte, 8+4+len(vendor)+4)
	copy(comment, "OpusTags")
	binary.LittleEndian.PutUint32(comment[8:], uint32(len(vendor)))
	copy(comment[12:], vendor)
	binary.LittleEndian.PutUint32(comment[12+len(vendor):], 0) // comment list length

	return o.writePage(0, 0, [][]byte{comment})
}

// writeFrames emits audio pages for the given Opus frames. eos marks the
// final page of the stream.
func (o *oggWriter) writeFrames(frames [][]byte, eos bool) error {
	for start := 0; start < len(frames); start += packetsPerPage {
		end := start + packetsPerPage
		if end > len(frames) {
			end = len(frames)
		}
		batch := frames[start:end]
		o.granule += uint64(len(batch)) * samplesPerFrame

		flags := byte(0)
		if eos && end == len(frames) {
			flags = oggFlagEOS
		}
		if err := o.writePage(flags, o.granule, batch); err != nil {
			return err
		}
	}
	return nil
}

func (o *oggWriter) writePage(flags byte, granule uint64, packets [][]byte) error {
	var lacing []byte
	for _, pkt := range packets {
		n := len(pkt)
		for n >= 255 {
			lacing = append(lacing, 255)
			n -= 255
		}
		lacing = append(lacing, byte(n))
	}

	page := make([]byte, 0, 27+len(lacing)+4096)
	page = append(page, "OggS"...)
	page = append(page, 0, flags)
	page = binary.LittleEndian.AppendUint64(page, granule)
	page = binary.LittleEndian.AppendUint32(page, o.serial)
	page = binary.LittleEndian.AppendUint32(page, o.pageSeq)
	o.pageSeq++
	crcOffset := len(page)
	page = append(page, 0, 0, 0, 0)
	page = append(page, byte(len(lacing)))
	page = append(page, lacing...)
	for _, pkt := range packets {
		page = append(page, pkt...)
	}

	binary.LittleEndian.PutUint32(page[crcOffset:], oggChecksum(page))

	_, err := o.w.Write(page)
	return err
}
