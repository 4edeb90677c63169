package reclog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRecordAndFileContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "capture.bin")

	r := New()
	if err := r.Open(path); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := r.Record(100, []byte{1, 2, 3}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := r.Record(200, nil); err != nil {
		t.Fatalf("Record empty frame: %v", err)
	}
	if r.FrameCount() != 2 {
		t.Fatalf("FrameCount = %d, want 2", r.FrameCount())
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	// tuple 1: 8(ts)+4(len)+3(data) = 15 bytes, tuple 2: 8+4+0 = 12 bytes
	if len(data) != 15+12 {
		t.Fatalf("file length = %d, want %d", len(data), 15+12)
	}
}

func TestOpenTruncatesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "capture.bin")

	r := New()
	if err := r.Open(path); err != nil {
		t.Fatalf("Open: %v", err)
	}
	r.Record(1, []byte{9, 9, 9, 9, 9, 9, 9, 9, 9, 9})
	r.Close()

	r2 := New()
	if err := r2.Open(path); err != nil {
		t.Fatalf("second Open: %v", err)
	}
	r2.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("file length = %d, want 0 after truncating reopen", len(data))
	}
}

func TestRecordOnClosedRecorderFailsWithoutSideEffects(t *testing.T) {
	r := New()
	if err := r.Record(1, []byte{1}); err == nil {
		t.Fatalf("expected error recording on an unopened recorder")
	}
	if r.FrameCount() != 0 {
		t.Fatalf("FrameCount = %d, want 0", r.FrameCount())
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "capture.bin")
	if err := r.Open(path); err != nil {
		t.Fatalf("Open: %v", err)
	}
	r.Record(1, []byte{1})
	r.Close()

	if err := r.Record(2, []byte{2}); err == nil {
		t.Fatalf("expected error recording after Close")
	}
	if r.FrameCount() != 1 {
		t.Fatalf("FrameCount after failed post-close record = %d, want 1", r.FrameCount())
	}
}
