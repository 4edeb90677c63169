package framesource

import "sentrygate/replay"

// ReplayAdapter satisfies Source over a replay.Source, letting the
// orchestrator treat a captured-traffic playback exactly like a live feed.
type ReplayAdapter struct {
	src *replay.Source
}

// NewReplayAdapter wraps an already-opened replay.Source.
func NewReplayAdapter(src *replay.Source) *ReplayAdapter {
	return &ReplayAdapter{src: src}
}

// Receive returns the next replayed frame. The timestamp recorded in the
// capture is discarded here; gateway timestamps frames at the point of
// ingestion regardless of source, matching live capture.
func (r *ReplayAdapter) Receive() (frame []byte, ok bool) {
	f, _, ok := r.src.Receive()
	return f, ok
}

// Done reports whether the capture has been fully replayed.
func (r *ReplayAdapter) Done() bool {
	return r.src.IsDone()
}

// Close closes the underlying capture file.
func (r *ReplayAdapter) Close() error {
	return r.src.Close()
}
