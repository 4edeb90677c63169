// Package replay reads back capture files written by reclog, optionally
// pacing delivery to reproduce the original capture's timing.
package replay

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"
)

// Source reads frames back from a reclog capture file.
type Source struct {
	f    *os.File
	done bool

	speedMultiplier float64

	firstFrame   bool
	firstTSNs    uint64
	replayStart  time.Time

	framesReplayed uint64

	sleep func(time.Duration)
	now   func() time.Time
}

// New returns an unopened Source with real-time pacing (speed multiplier 1.0).
func New() *Source {
	return &Source{
		speedMultiplier: 1.0,
		firstFrame:      true,
		sleep:           time.Sleep,
		now:             time.Now,
	}
}

// Open opens path for replay. Any previously open file is closed first.
func (s *Source) Open(path string) error {
	s.Close()
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("replay: open %s: %w", path, err)
	}
	s.f = f
	s.done = false
	s.firstFrame = true
	s.framesReplayed = 0
	return nil
}

// SetSpeed changes the playback pacing. 0 means deliver frames as fast as
// possible with no sleeping; a positive value paces delivery so that
// inter-frame gaps are divided by the multiplier (2.0 plays twice as fast
// as the original capture, 0.5 half as fast).
func (s *Source) SetSpeed(multiplier float64) {
	s.speedMultiplier = multiplier
}

// Receive returns the next recorded frame, or ok=false once the capture is
// exhausted or unreadable. A paced Source may block inside Receive while
// it waits to reproduce the capture's original timing.
func (s *Source) Receive() (frame []byte, rxTimestampNs uint64, ok bool) {
	if s.f == nil || s.done {
		return nil, 0, false
	}

	var header [12]byte
	if _, err := io.ReadFull(s.f, header[:]); err != nil {
		s.done = true
		return nil, 0, false
	}
	tsNs := binary.LittleEndian.Uint64(header[0:8])
	length := binary.LittleEndian.Uint32(header[8:12])

	buf := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(s.f, buf); err != nil {
			s.done = true
			return nil, 0, false
		}
	}

	if s.speedMultiplier > 0.0 {
		if s.firstFrame {
			s.firstFrame = false
			s.firstTSNs = tsNs
			s.replayStart = s.now()
		} else {
			frameOffsetNs := tsNs - s.firstTSNs
			targetOffset := time.Duration(float64(frameOffsetNs) / s.speedMultiplier)
			elapsed := s.now().Sub(s.replayStart)
			if wait := targetOffset - elapsed; wait > 0 {
				s.sleep(wait)
			}
		}
	}

	s.framesReplayed++

	if s.atEOF() {
		s.done = true
	}

	return buf, tsNs, true
}

// atEOF peeks for end-of-file without consuming any bytes, mirroring the
// original engine's ifstream::peek() == EOF check used to flip is_done as
// soon as the just-returned tuple was the stream's last one.
func (s *Source) atEOF() bool {
	var probe [1]byte
	n, err := s.f.Read(probe[:])
	if n == 0 && err != nil {
		return true
	}
	if n > 0 {
		if _, serr := s.f.Seek(-1, io.SeekCurrent); serr != nil {
			return true
		}
	}
	return false
}

// IsDone reports whether the capture has been fully delivered.
func (s *Source) IsDone() bool {
	return s.done
}

// FramesReplayed reports how many frames Receive has successfully returned.
func (s *Source) FramesReplayed() uint64 {
	return s.framesReplayed
}

// Close closes the underlying file, if any, and marks the source done.
func (s *Source) Close() error {
	s.done = true
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
