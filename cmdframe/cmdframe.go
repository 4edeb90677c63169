// Package cmdframe implements the command channel's length-prefixed
// framing: a 4-byte big-endian length followed by that many bytes of
// ASCII payload, with no terminator. It is deliberately byte-stream
// agnostic — Feed can be called with whatever chunk size the transport
// happens to deliver.
package cmdframe

import "encoding/binary"

// MaxFrameLen is the declared-length safety cap. A frame claiming to be
// larger than this is treated as a framing error: the whole buffer is
// discarded since the length prefix itself cannot be trusted to resync.
const MaxFrameLen = 10 * 1024 * 1024

// Encode wraps payload with its 4-byte big-endian length prefix.
func Encode(payload []byte) []byte {
	out := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(out[0:4], uint32(len(payload)))
	copy(out[4:], payload)
	return out
}

// Framer accumulates raw bytes and extracts complete frames.
type Framer struct {
	buf          []byte
	readyFrames  [][]byte
}

// New returns an empty Framer.
func New() *Framer {
	return &Framer{}
}

// Feed appends data to the internal buffer and extracts every complete
// frame it can. Frames declaring a length over MaxFrameLen cause the
// entire buffered contents to be discarded, since framing sync has been
// lost.
func (f *Framer) Feed(data []byte) {
	f.buf = append(f.buf, data...)
	f.extract()
}

func (f *Framer) extract() {
	for len(f.buf) >= 4 {
		frameLen := binary.BigEndian.Uint32(f.buf[0:4])

		if frameLen > MaxFrameLen {
			f.buf = f.buf[:0]
			return
		}

		total := 4 + int(frameLen)
		if len(f.buf) < total {
			return
		}

		payload := make([]byte, frameLen)
		copy(payload, f.buf[4:total])
		f.readyFrames = append(f.readyFrames, payload)

		f.buf = f.buf[total:]
	}
}

// HasFrame reports whether at least one complete frame is ready to pop.
func (f *Framer) HasFrame() bool {
	return len(f.readyFrames) > 0
}

// PopFrame removes and returns the oldest ready frame. It returns nil if
// none is available.
func (f *Framer) PopFrame() []byte {
	if len(f.readyFrames) == 0 {
		return nil
	}
	frame := f.readyFrames[0]
	f.readyFrames = f.readyFrames[1:]
	return frame
}

// Reset discards all buffered and ready data.
func (f *Framer) Reset() {
	f.buf = nil
	f.readyFrames = nil
}
