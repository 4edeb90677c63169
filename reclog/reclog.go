// Package reclog writes raw received frames to disk as a sequence of
// (timestamp, length, bytes) tuples, so a capture can later be fed back
// through the replay package bit-for-bit. The tuple layout is
// host-endian, matching the original recorder's raw struct writes; this
// module fixes that host endianness to little-endian, the only
// architecture class the gateway actually ships on.
package reclog

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Recorder appends frames to a truncated capture file.
type Recorder struct {
	f          *os.File
	frameCount uint64
}

// New returns an unopened Recorder.
func New() *Recorder {
	return &Recorder{}
}

// Open truncates (or creates) path and prepares it to receive frames. Any
// previously open file is closed first.
func (r *Recorder) Open(path string) error {
	r.Close()
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("reclog: open %s: %w", path, err)
	}
	r.f = f
	r.frameCount = 0
	return nil
}

// Record appends one (timestamp, length, data) tuple. It fails without
// writing anything if the recorder is not currently open.
func (r *Recorder) Record(rxTimestampNs uint64, frame []byte) error {
	if r.f == nil {
		return fmt.Errorf("reclog: record called on closed recorder")
	}

	var header [12]byte
	binary.LittleEndian.PutUint64(header[0:8], rxTimestampNs)
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(frame)))

	if _, err := r.f.Write(header[:]); err != nil {
		return fmt.Errorf("reclog: write header: %w", err)
	}
	if len(frame) > 0 {
		if _, err := r.f.Write(frame); err != nil {
			return fmt.Errorf("reclog: write frame: %w", err)
		}
	}

	r.frameCount++
	return nil
}

// FrameCount reports how many frames have been recorded since Open.
func (r *Recorder) FrameCount() uint64 {
	return r.frameCount
}

// Close closes the underlying file, if any.
func (r *Recorder) Close() error {
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}
